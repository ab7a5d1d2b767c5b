package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/inject/di"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/loader"
	"github.com/kbukum/inject/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	types           *introspect.Table
	catalog         *loader.Catalog
	loaders         []di.Loader
	injectorOpts    []di.Option
	summary         io.Writer
	summarySet      bool
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger instead of one built from the
// logging configuration.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithTypes sets the descriptor table the injector introspects. Its names
// are added to the manifest catalog.
func WithTypes(t *introspect.Table) Option {
	return func(o *appOptions) {
		o.types = t
	}
}

// WithCatalog sets the catalog binding manifests are resolved against.
func WithCatalog(c *loader.Catalog) Option {
	return func(o *appOptions) {
		o.catalog = c
	}
}

// WithLoaders adds code loaders. They run after the configured manifests.
func WithLoaders(loaders ...di.Loader) Option {
	return func(o *appOptions) {
		o.loaders = append(o.loaders, loaders...)
	}
}

// WithInjectorOptions passes options through to di.New.
func WithInjectorOptions(opts ...di.Option) Option {
	return func(o *appOptions) {
		o.injectorOpts = append(o.injectorOpts, opts...)
	}
}

// WithSummaryWriter sets where the startup summary is printed. nil
// suppresses it.
func WithSummaryWriter(w io.Writer) Option {
	return func(o *appOptions) {
		o.summary = w
		o.summarySet = true
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}
