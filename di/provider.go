package di

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

// Strategy is the caching policy of a provider. It is fixed when the graph is
// built.
type Strategy int

const (
	// StrategyInstance always yields the bound instance.
	StrategyInstance Strategy = iota
	// StrategyTransient builds a new value on every request.
	StrategyTransient
	// StrategySingleton builds one value per owning context.
	StrategySingleton
	// StrategyMultiton builds one value per owning context and qualifier.
	StrategyMultiton
)

var strategyNames = [...]string{"instance", "transient", "singleton", "multiton"}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// MarshalText renders the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// strategyFor picks the strategy for a type carrying the given scope markers.
func strategyFor(t typekey.Key, scopes marker.Set) (Strategy, marker.Marker, error) {
	scopes = scopes.Scopes()
	switch len(scopes) {
	case 0:
		return StrategyTransient, marker.Marker{}, nil
	case 1:
		return scopeStrategy(scopes[0]), scopes[0], nil
	default:
		return 0, marker.Marker{}, errors.MultipleScopes(t.String(), scopes.Strings())
	}
}

func scopeStrategy(scope marker.Marker) Strategy {
	switch {
	case scope.IsZero():
		return StrategyTransient
	case scope.IsMultiton():
		return StrategyMultiton
	default:
		return StrategySingleton
	}
}

// provider answers a request within a context.
type provider interface {
	provide(c *Context, req Request, ch *chain) (any, error)
	strategy() Strategy
	produces() typekey.Key
}

// instantiator builds one value. Implementations resolve their own
// dependencies through c.
type instantiator interface {
	instantiate(c *Context, ch *chain) (any, error)
	produces() typekey.Key
}

func newProvider(s Strategy, scope marker.Marker, inst instantiator) provider {
	if s == StrategyTransient {
		return &transientProvider{inst: inst}
	}
	return &scopedProvider{inst: inst, scope: scope, multiton: s == StrategyMultiton}
}

type instanceProvider struct {
	value any
}

func (p *instanceProvider) provide(*Context, Request, *chain) (any, error) { return p.value, nil }
func (p *instanceProvider) strategy() Strategy                             { return StrategyInstance }
func (p *instanceProvider) produces() typekey.Key                          { return typekey.OfValue(p.value) }

// transientProvider serializes its own instantiations.
type transientProvider struct {
	mu   sync.Mutex
	inst instantiator
}

func (p *transientProvider) provide(c *Context, _ Request, ch *chain) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return c.build(p, p.inst, ch)
}

func (p *transientProvider) strategy() Strategy    { return StrategyTransient }
func (p *transientProvider) produces() typekey.Key { return p.inst.produces() }

// scopedProvider caches in the nearest context where its scope is active.
// Multiton providers keep one slot per request qualifier.
type scopedProvider struct {
	inst     instantiator
	scope    marker.Marker
	multiton bool
}

func (p *scopedProvider) provide(c *Context, req Request, ch *chain) (any, error) {
	owner := c.owner(p.scope)
	if owner == nil {
		return nil, errors.ScopeNotActive(p.inst.produces().String(), p.scope.String())
	}
	key := slotKey{p: p}
	if p.multiton {
		key.qualifier = req.Qualifier
	}
	return owner.cached(key, func() (any, error) {
		return owner.build(p, p.inst, ch)
	})
}

func (p *scopedProvider) strategy() Strategy {
	if p.multiton {
		return StrategyMultiton
	}
	return StrategySingleton
}

func (p *scopedProvider) produces() typekey.Key { return p.inst.produces() }

// standardInstantiator builds a type from its injection profile: constructor
// first, then members in profile order.
type standardInstantiator struct {
	typ typekey.Key
}

func (s *standardInstantiator) produces() typekey.Key { return s.typ }

func (s *standardInstantiator) instantiate(c *Context, ch *chain) (any, error) {
	profile, err := c.profile(s.typ)
	if err != nil {
		return nil, err
	}
	args, err := c.resolveAll(profile.Constructor.Deps, ch)
	if err != nil {
		return nil, err
	}
	v, err := c.shared.inv.Construct(profile.Constructor, args)
	if err != nil {
		return nil, err
	}
	if err := c.injectElements(v, profile.Members, ch); err != nil {
		return nil, err
	}
	return v, nil
}

// valueOf converts a provided value for storage in an aggregate of element
// type t.
func valueOf(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}
