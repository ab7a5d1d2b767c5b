package di

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/invoke"
	"github.com/kbukum/inject/logger"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/observability"
	"github.com/kbukum/inject/typekey"
)

// Resolver answers typed requests. Injector and Context implement it.
type Resolver interface {
	Instance(t typekey.Key, qualifier marker.Marker) (any, error)
}

var (
	_ Resolver = (*Injector)(nil)
	_ Resolver = (*Context)(nil)
)

// Option configures New.
type Option func(*options)

type options struct {
	intro   introspect.Introspector
	inv     invoke.Invoker
	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.Metrics
}

// WithIntrospector sets the source of injection profiles. Without it only
// implicit zero-value construction is available.
func WithIntrospector(i introspect.Introspector) Option {
	return func(o *options) { o.intro = i }
}

// WithInvoker replaces the reflect-based invoker.
func WithInvoker(i invoke.Invoker) Option {
	return func(o *options) { o.inv = i }
}

// WithLogger sets the injector logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithTracer sets the tracer used for resolution spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func resolveOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.intro == nil {
		o.intro = introspect.NewTable()
	}
	if o.inv == nil {
		o.inv = invoke.New()
	}
	if o.log == nil {
		o.log = logger.Get("di")
	}
	if o.tracer == nil {
		o.tracer = observability.Tracer(observability.InstrumentationName)
	}
	if o.metrics == nil {
		if m, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName)); err == nil {
			o.metrics = m
		}
	}
	return o
}

// Injector is the entry point of a configured graph. It delegates every
// operation to its root context.
type Injector struct {
	root     *Context
	snapshot *Snapshot
	log      *logger.Logger
}

// New runs the loaders in order against a fresh registry, freezes it, builds
// the provider graph and performs static injection. The root context
// activates the singleton scope plus every scope the loaders activated.
func New(loaders []Loader, opts ...Option) (*Injector, error) {
	o := resolveOptions(opts)
	start := time.Now()
	_, span := o.tracer.Start(context.Background(), observability.SpanBoot)
	defer span.End()

	inj, err := boot(loaders, o)
	if err != nil {
		observability.SetSpanError(span, err)
		o.log.Error("Injector boot failed", logger.ErrorFields("boot", err))
		return nil, err
	}

	o.log.Info("Injector ready", logger.Merge(
		logger.Fields(
			logger.FieldBindings, len(inj.root.shared.bindings),
			logger.FieldScope, inj.root.local.Strings(),
			logger.FieldContextID, inj.root.id,
		),
		logger.DurationFields("boot", time.Since(start)),
	))
	return inj, nil
}

func boot(loaders []Loader, o *options) (*Injector, error) {
	reg := NewRegistry()
	for i, l := range loaders {
		if err := l.Load(reg); err != nil {
			o.log.Debug("Loader failed", logger.Fields(logger.FieldLoader, i))
			return nil, err
		}
	}
	snap, err := reg.Freeze()
	if err != nil {
		return nil, err
	}
	g, err := buildGraph(snap, o.intro)
	if err != nil {
		return nil, err
	}

	sh := &shared{
		providers: g.providers,
		bindings:  g.bindings,
		intro:     o.intro,
		inv:       o.inv,
		policy:    snap.Policy,
		obs:       &observer{log: o.log, tracer: o.tracer, metrics: o.metrics},
	}
	local := marker.Set{marker.Singleton}
	for _, s := range snap.ActiveScopes {
		local = local.Add(s)
	}
	root := newContext(nil, local, sh)

	for _, t := range snap.StaticTypes {
		if err := root.InjectStatics(t); err != nil {
			return nil, err
		}
	}
	return &Injector{root: root, snapshot: snap, log: o.log}, nil
}

// Root returns the root context.
func (i *Injector) Root() *Context { return i.root }

// Snapshot returns the frozen registry the injector was built from.
func (i *Injector) Snapshot() *Snapshot { return i.snapshot }

// Instance resolves the request for t with an optional qualifier.
func (i *Injector) Instance(t typekey.Key, qualifier marker.Marker) (any, error) {
	return i.root.Instance(t, qualifier)
}

// Provider returns a deferred handle for the request.
func (i *Injector) Provider(t typekey.Key, qualifier marker.Marker) Provider[any] {
	return i.root.Provider(t, qualifier)
}

// InjectMembers injects the member elements of target's type into target.
func (i *Injector) InjectMembers(target any) error { return i.root.InjectMembers(target) }

// InjectStatics injects the static elements of t.
func (i *Injector) InjectStatics(t typekey.Key) error { return i.root.InjectStatics(t) }

// IsSupported reports whether the injection policy allows it.
func (i *Injector) IsSupported(it introspect.InjectionType) bool { return i.root.IsSupported(it) }

// EnterScope opens a child of the root context with scope active.
func (i *Injector) EnterScope(scope marker.Marker) (*Context, error) {
	return i.root.EnterScope(scope)
}

// ActiveScopes returns the scopes active in the root context.
func (i *Injector) ActiveScopes() marker.Set { return i.root.ActiveScopes() }

// Bindings describes every request the injector answers.
func (i *Injector) Bindings() []BindingInfo { return i.root.Bindings() }

// Profile returns the injection profile of t.
func (i *Injector) Profile(t typekey.Key) (*introspect.Profile, error) { return i.root.Profile(t) }

// Close closes the root context.
func (i *Injector) Close() error {
	err := i.root.Close()
	if err != nil {
		i.log.Warn("Injector closed with errors", logger.ErrorFields("close", err))
	}
	return err
}
