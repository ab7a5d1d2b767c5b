package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/inject/component"
	"github.com/kbukum/inject/di"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/loader"
	"github.com/kbukum/inject/logger"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

const injectorComponentName = "injector"

var (
	_ component.Component   = (*injectorComponent)(nil)
	_ component.Describable = (*injectorComponent)(nil)
)

// injectorComponent builds the injector on Start and closes its root
// context on Stop. It serves the inspection server as its source.
type injectorComponent struct {
	cfg     InjectionConfig
	types   *introspect.Table
	catalog *loader.Catalog
	loaders []di.Loader
	opts    []di.Option
	log     *logger.Logger

	mu  sync.RWMutex
	inj *di.Injector
}

func (c *injectorComponent) Name() string { return injectorComponentName }

func (c *injectorComponent) Start(ctx context.Context) error {
	loaders := []di.Loader{di.LoaderFunc(c.configure)}
	if len(c.cfg.Manifests) > 0 {
		manifests, err := loader.Loaders(loader.NewFileManifestLoader(c.cfg.ManifestDirs...), c.catalog, c.cfg.Manifests...)
		if err != nil {
			return err
		}
		loaders = append(loaders, manifests...)
	}
	loaders = append(loaders, c.loaders...)

	opts := append([]di.Option{di.WithIntrospector(c.types), di.WithLogger(c.log)}, c.opts...)
	inj, err := di.New(loaders, opts...)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.inj = inj
	c.mu.Unlock()
	return nil
}

// configure applies the injection section of the configuration.
func (c *injectorComponent) configure(r *di.Registry) error {
	for _, name := range c.cfg.ActiveScopes {
		s, err := c.catalog.Scope(name)
		if err != nil {
			return err
		}
		if err := r.ActivateScopes(s); err != nil {
			return err
		}
	}
	if len(c.cfg.Allowed) == 0 {
		return nil
	}
	types := make([]introspect.InjectionType, len(c.cfg.Allowed))
	for i, name := range c.cfg.Allowed {
		it, err := introspect.ParseInjectionType(name)
		if err != nil {
			return err
		}
		types[i] = it
	}
	return r.AllowInjections(types...)
}

func (c *injectorComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	inj := c.inj
	c.inj = nil
	c.mu.Unlock()
	if inj == nil {
		return nil
	}
	return inj.Close()
}

func (c *injectorComponent) Health(ctx context.Context) component.Health {
	if c.injector() == nil {
		return component.Health{Name: injectorComponentName, Status: component.StatusUnhealthy, Message: "not built"}
	}
	return component.Health{Name: injectorComponentName, Status: component.StatusHealthy}
}

func (c *injectorComponent) Describe() component.Description {
	inj := c.injector()
	if inj == nil {
		return component.Description{Name: "Injector", Type: "injector", Details: "not built"}
	}
	return component.Description{
		Name:    "Injector",
		Type:    "injector",
		Details: fmt.Sprintf("%d bindings, scopes %v", len(inj.Bindings()), inj.ActiveScopes().Strings()),
	}
}

func (c *injectorComponent) injector() *di.Injector {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inj
}

// The inspection server reads through these; it only runs while the
// injector is built.

func (c *injectorComponent) Bindings() []di.BindingInfo {
	if inj := c.injector(); inj != nil {
		return inj.Bindings()
	}
	return nil
}

func (c *injectorComponent) ActiveScopes() marker.Set {
	if inj := c.injector(); inj != nil {
		return inj.ActiveScopes()
	}
	return nil
}

func (c *injectorComponent) Profile(t typekey.Key) (*introspect.Profile, error) {
	if inj := c.injector(); inj != nil {
		return inj.Profile(t)
	}
	return c.types.Profile(t, introspect.AllowAll())
}
