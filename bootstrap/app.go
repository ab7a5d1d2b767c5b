package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/inject/component"
	"github.com/kbukum/inject/di"
	"github.com/kbukum/inject/inspect"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/loader"
	"github.com/kbukum/inject/logger"
	"github.com/kbukum/inject/observability"
)

// App runs an injector and its companion components with a uniform
// lifecycle. C is the configuration type; any struct embedding Config
// satisfies the constraint.
type App[C Settings] struct {
	Name       string
	Version    string
	Cfg        C
	Types      *introspect.Table
	Catalog    *loader.Catalog
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	injector        *injectorComponent
	inspect         *inspect.Server
	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error
	telemetry       []func(ctx context.Context) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp validates cfg, sets up logging and registers the injector and, when
// enabled, the inspection server.
func NewApp[C Settings](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Types:           o.types,
		Catalog:         o.catalog,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	if app.Types == nil {
		app.Types = introspect.NewTable()
	}
	if app.Catalog == nil {
		app.Catalog = loader.NewCatalog()
	}
	app.Catalog.AddTable(app.Types)

	app.Components = component.NewRegistry(app.Logger)
	app.Summary = NewSummary(base.Name, base.Version)
	app.Summary.out = os.Stdout
	if o.summarySet {
		app.Summary.out = o.summary
	}

	app.injector = &injectorComponent{
		cfg:     base.Injection,
		types:   app.Types,
		catalog: app.Catalog,
		loaders: o.loaders,
		opts:    o.injectorOpts,
		log:     app.Logger.WithComponent("di"),
	}
	if err := app.Components.Register(app.injector); err != nil {
		return nil, err
	}
	if base.Inspect.Enabled {
		app.inspect = inspect.NewServer(base.Inspect, base.Name, app.injector, app.Components, app.Logger)
		if err := app.Components.Register(inspect.NewComponent(app.inspect)); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Injector returns the running injector, nil before Start or after
// shutdown.
func (a *App[C]) Injector() *di.Injector { return a.injector.injector() }

// Inspect returns the inspection server, nil when disabled.
func (a *App[C]) Inspect() *inspect.Server { return a.inspect }

// RegisterComponent adds a component. Components start after the injector,
// in registration order, and stop in reverse.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback that runs once the injector is built.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that every registered component is healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the application, blocks until a signal arrives or ctx is
// canceled and shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.Shutdown(context.Background())
}

// RunTask starts the application, runs task and shuts down. A signal
// cancels the task context.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)
	if stopErr := a.Shutdown(context.Background()); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// Start initializes telemetry, starts the components and runs the startup
// hooks. A failed start stops whatever already started.
func (a *App[C]) Start(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.startup(ctx); err != nil {
		if stopErr := a.Shutdown(context.Background()); stopErr != nil {
			a.Logger.Warn("Cleanup after failed start reported errors", logger.ErrorFields("shutdown", stopErr))
		}
		return err
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.Display(a.Components)
	return nil
}

func (a *App[C]) startup(ctx context.Context) error {
	if err := a.initTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	a.Logger.Info("Phase 1: Starting components")
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if len(a.onConfigure) > 0 {
		a.Logger.Info("Phase 2: Running configuration callbacks", map[string]interface{}{
			"count": len(a.onConfigure),
		})
		for _, fn := range a.onConfigure {
			if err := fn(ctx, a); err != nil {
				return fmt.Errorf("configuration failed: %w", err)
			}
		}
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready_check", err))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}
	return nil
}

// initTelemetry installs the OTLP tracer and meter providers globally, so
// the injector built afterwards reports through them.
func (a *App[C]) initTelemetry(ctx context.Context) error {
	base := a.Cfg.GetConfig()
	if !base.Observability.Enabled {
		return nil
	}
	tp, err := observability.InitTracer(ctx, base.Observability.TracerConfig(base.Name, base.Version, base.Environment))
	if err != nil {
		return err
	}
	a.telemetry = append(a.telemetry, tp.Shutdown)

	mp, err := observability.InitMeter(ctx, base.Observability.MeterConfig(base.Name, base.Version, base.Environment))
	if err != nil {
		return err
	}
	a.telemetry = append(a.telemetry, mp.Shutdown)
	return nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or cancellation of ctx.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks, stops the components in reverse order,
// which closes the root context, and flushes telemetry. It is bounded by
// the graceful timeout.
func (a *App[C]) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})
	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("on_stop", err))
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("stop", err))
		errs = append(errs, err)
	}
	for i := len(a.telemetry) - 1; i >= 0; i-- {
		if err := a.telemetry[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.telemetry = nil

	a.Logger.Info("Application shutdown complete")
	return stderrors.Join(errs...)
}
