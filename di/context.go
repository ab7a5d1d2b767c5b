package di

import (
	stderrors "errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/invoke"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/observability"
	"github.com/kbukum/inject/typekey"
)

// shared is the state every context of one injector reads.
type shared struct {
	providers map[Request]provider
	bindings  []BindingInfo
	intro     introspect.Introspector
	inv       invoke.Invoker
	policy    introspect.Policy
	profiles  sync.Map // typekey.Key -> *introspect.Profile
	obs       *observer
}

type slotKey struct {
	p         provider
	qualifier marker.Marker
}

type slot struct {
	mu    sync.RWMutex
	ready bool
	value any
}

// Context is a node in the scope hierarchy. It owns the cached values of
// the scopes it activates and resolves requests against its ancestors.
// A Context is safe for concurrent use.
type Context struct {
	id     string
	parent *Context
	local  marker.Set
	shared *shared

	mu     sync.Mutex
	slots  map[slotKey]*slot
	owned  []any
	closed atomic.Bool
}

func newContext(parent *Context, local marker.Set, sh *shared) *Context {
	return &Context{
		id:     uuid.NewString(),
		parent: parent,
		local:  local,
		shared: sh,
		slots:  make(map[slotKey]*slot),
	}
}

// ID returns the context identifier.
func (c *Context) ID() string { return c.id }

// Parent returns the enclosing context, or nil for the root.
func (c *Context) Parent() *Context { return c.parent }

// LocalScopes returns the scopes this context activates itself.
func (c *Context) LocalScopes() marker.Set {
	return append(marker.Set(nil), c.local...)
}

// ActiveScopes returns every scope active in c, outermost first.
func (c *Context) ActiveScopes() marker.Set {
	var chain []*Context
	for n := c; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	var out marker.Set
	for i := len(chain) - 1; i >= 0; i-- {
		for _, s := range chain[i].local {
			out = out.Add(s)
		}
	}
	return out
}

// IsActive reports whether scope is active in c.
func (c *Context) IsActive(scope marker.Marker) bool {
	return c.owner(scope) != nil
}

// owner returns the nearest context, starting at c, that activates scope.
func (c *Context) owner(scope marker.Marker) *Context {
	for n := c; n != nil; n = n.parent {
		if n.local.Contains(scope) {
			return n
		}
	}
	return nil
}

// Instance resolves the request for t with an optional qualifier.
func (c *Context) Instance(t typekey.Key, qualifier marker.Marker) (any, error) {
	return c.instance(Request{Type: t, Qualifier: qualifier}, nil)
}

// instance is a traced top-level resolution on ch.
func (c *Context) instance(req Request, ch *chain) (any, error) {
	start := time.Now()
	ctx, span := c.shared.obs.startResolve(c, req)
	v, err := c.resolve(req, ch)
	c.shared.obs.endResolve(ctx, span, c, req, start, err)
	return v, err
}

// Provider returns a deferred handle for the request.
func (c *Context) Provider(t typekey.Key, qualifier marker.Marker) Provider[any] {
	return Provider[any]{get: func() (any, error) { return c.Instance(t, qualifier) }}
}

// InjectMembers injects the member elements of target's type into target.
func (c *Context) InjectMembers(target any) error {
	if target == nil {
		return errors.InvalidBinding("inject members into nil")
	}
	t := typekey.OfValue(target)
	ctx, span := c.shared.obs.startInjection(observability.SpanInjectMembers, c, t)
	err := c.injectMembers(target, t)
	c.shared.obs.endInjection(ctx, span, "inject_members", c, t, err)
	return err
}

func (c *Context) injectMembers(target any, t typekey.Key) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	p, err := c.profile(t)
	if err != nil {
		return err
	}
	return c.injectElements(target, p.Members, nil)
}

// InjectStatics injects the static elements of t.
func (c *Context) InjectStatics(t typekey.Key) error {
	ctx, span := c.shared.obs.startInjection(observability.SpanInjectStatics, c, t)
	err := c.injectStatics(t)
	c.shared.obs.endInjection(ctx, span, "inject_statics", c, t, err)
	return err
}

func (c *Context) injectStatics(t typekey.Key) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	p, err := c.profile(t)
	if err != nil {
		return err
	}
	return c.injectElements(nil, p.Statics, nil)
}

// IsSupported reports whether the injection policy allows it.
func (c *Context) IsSupported(it introspect.InjectionType) bool {
	return c.shared.policy.Allows(it)
}

// EnterScope opens a child context in which scope is active. Values of
// scope are cached in the child and released by its Close.
func (c *Context) EnterScope(scope marker.Marker) (*Context, error) {
	if !scope.IsScope() {
		return nil, errors.InvalidBinding("enter scope with a non-scope marker " + scope.String())
	}
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	child := newContext(c, marker.Set{scope}, c.shared)
	c.shared.obs.contextOpened(child, scope)
	return child, nil
}

// Bindings describes every request the injector answers.
func (c *Context) Bindings() []BindingInfo {
	return append([]BindingInfo(nil), c.shared.bindings...)
}

// Profile returns the injection profile of t under the injector's policy.
func (c *Context) Profile(t typekey.Key) (*introspect.Profile, error) {
	return c.profile(t)
}

// Close releases the values this context owns, newest first, calling Close
// on each io.Closer. Resolving through a closed context fails with
// CONTEXT_CLOSED. Closing twice is a no-op.
func (c *Context) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.mu.Lock()
	owned := c.owned
	c.owned = nil
	c.slots = make(map[slotKey]*slot)
	c.mu.Unlock()

	var errs []error
	for i := len(owned) - 1; i >= 0; i-- {
		if closer, ok := owned[i].(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	c.shared.obs.contextClosed(c, len(owned))
	return stderrors.Join(errs...)
}

func (c *Context) checkOpen() error {
	for n := c; n != nil; n = n.parent {
		if n.closed.Load() {
			return errors.ContextClosed(n.id)
		}
	}
	return nil
}

func (c *Context) resolve(req Request, ch *chain) (any, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if h, ok := deferredOf(req.Type); ok {
		target := Request{Type: typekey.For(h.elementType()), Qualifier: req.Qualifier}
		// Get while the creating call is still running stays on its chain,
		// so re-entering a provider on that path is a cycle, not a deadlock.
		return h.bind(func() (any, error) { return c.instance(target, ch.live()) }), nil
	}
	p, ok := c.shared.providers[req]
	if !ok {
		return nil, errors.UnknownRequest(req.String())
	}
	return c.provide(p, req, ch)
}

// provide runs p unless it is already on the chain.
func (c *Context) provide(p provider, req Request, ch *chain) (any, error) {
	if ch.contains(p) {
		return nil, errors.CycleDetected(req.String(), ch.path(req))
	}
	next := ch.push(p, req)
	defer next.done.Store(true)
	return p.provide(c, req, next)
}

func (c *Context) resolveAll(deps []introspect.Dependency, ch *chain) ([]any, error) {
	args := make([]any, len(deps))
	for i, d := range deps {
		v, err := c.resolve(Request{Type: d.Type, Qualifier: d.Qualifier}, ch)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (c *Context) injectElements(target any, elems []introspect.Element, ch *chain) error {
	for _, e := range elems {
		args, err := c.resolveAll(e.Deps, ch)
		if err != nil {
			return err
		}
		if err := c.shared.inv.Apply(e, target, args); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) profile(t typekey.Key) (*introspect.Profile, error) {
	if p, ok := c.shared.profiles.Load(t); ok {
		return p.(*introspect.Profile), nil
	}
	p, err := c.shared.intro.Profile(t, c.shared.policy)
	if err != nil {
		return nil, err
	}
	actual, _ := c.shared.profiles.LoadOrStore(t, p)
	return actual.(*introspect.Profile), nil
}

// build instantiates one value for p in c.
func (c *Context) build(p provider, inst instantiator, ch *chain) (any, error) {
	v, err := inst.instantiate(c, ch)
	if err != nil {
		return nil, err
	}
	c.shared.obs.constructed(c, inst.produces(), p.strategy())
	return v, nil
}

// cached returns the value in key's slot, building it on first use. A
// failed build leaves the slot empty.
func (c *Context) cached(key slotKey, build func() (any, error)) (any, error) {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return nil, errors.ContextClosed(c.id)
	}
	s, ok := c.slots[key]
	if !ok {
		s = &slot{}
		c.slots[key] = s
	}
	c.mu.Unlock()

	s.mu.RLock()
	if s.ready {
		v := s.value
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return s.value, nil
	}
	v, err := build()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		if closer, ok := v.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, errors.ContextClosed(c.id)
	}
	c.owned = append(c.owned, v)
	c.mu.Unlock()

	s.value, s.ready = v, true
	return v, nil
}
