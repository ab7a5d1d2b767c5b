package di

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

// Loader contributes bindings to a registry during boot.
type Loader interface {
	Load(r *Registry) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(r *Registry) error

// Load calls f(r).
func (f LoaderFunc) Load(r *Registry) error { return f(r) }

// BindingKind is the terminal configuration of a binding.
type BindingKind string

const (
	KindStrict BindingKind = "strict"
	KindMap    BindingKind = "map"
	KindList   BindingKind = "list"
	KindSet    BindingKind = "set"
)

// Source is what a binding produces values from: an implementation type or a
// fixed instance.
type Source struct {
	Implementation typekey.Key
	Instance       any
	HasInstance    bool
}

// Type returns the implementation type or the dynamic type of the instance.
func (s Source) Type() typekey.Key {
	if s.HasInstance {
		return typekey.OfValue(s.Instance)
	}
	return s.Implementation
}

// String describes the source for error messages and logs.
func (s Source) String() string {
	if s.HasInstance {
		return "instance of " + s.Type().String()
	}
	return s.Implementation.String()
}

// StrictOptions configures a strict binding. Without Types the binding
// answers requests for the source type itself.
type StrictOptions struct {
	Types     []typekey.Key
	Qualifier marker.Marker
}

// MapMemberOptions configures a contribution to a map aggregate of type
// map[KeyType]ValueType.
type MapMemberOptions struct {
	KeyType   typekey.Key
	ValueType typekey.Key
	Key       any
	Scope     marker.Marker
	Qualifier marker.Marker
}

// CollectionOptions configures a contribution to a list ([]ElementType) or
// set (map[ElementType]struct{}) aggregate.
type CollectionOptions struct {
	ElementType typekey.Key
	Scope       marker.Marker
	Qualifier   marker.Marker
}

// Registry accumulates bindings until it is frozen.
type Registry struct {
	mu         sync.Mutex
	frozen     bool
	handles    []*Handle
	scopes     marker.Set
	policy     introspect.Policy
	restricted bool
	statics    []typekey.Key
}

// NewRegistry creates an empty registry. The multiton scope is active and
// every injection type is allowed until AllowInjections is called.
func NewRegistry() *Registry {
	return &Registry{
		scopes: marker.Set{marker.Multiton},
		policy: introspect.AllowAll(),
	}
}

// Handle configures one binding. Exactly one As* call must succeed on every
// handle before the registry is frozen.
type Handle struct {
	registry  *Registry
	source    Source
	err       error
	kind      BindingKind
	requests  []Request
	aggregate Request
	key       any
	scope     marker.Marker
}

// AddImplementation starts a binding whose values are built from t.
func (r *Registry) AddImplementation(t typekey.Key) *Handle {
	h := &Handle{registry: r, source: Source{Implementation: t}}
	if t.IsZero() {
		h.err = errors.InvalidBinding("implementation type is required")
	}
	return r.add(h)
}

// AddInstance starts a binding that always yields v.
func (r *Registry) AddInstance(v any) *Handle {
	h := &Handle{registry: r, source: Source{Instance: v, HasInstance: true}}
	if v == nil {
		h.err = errors.InvalidBinding("instance must not be nil")
	}
	return r.add(h)
}

// Bind starts a binding whose values are built from T.
func Bind[T any](r *Registry) *Handle {
	return r.AddImplementation(typekey.Of[T]())
}

func (r *Registry) add(h *Handle) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		h.err = errors.RegistryFrozen("add a binding")
		return h
	}
	r.handles = append(r.handles, h)
	return h
}

// ActivateScopes adds scopes to the root context's active set.
func (r *Registry) ActivateScopes(scopes ...marker.Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errors.RegistryFrozen("activate scopes")
	}
	for _, s := range scopes {
		if !s.IsScope() {
			return errors.InvalidBinding(fmt.Sprintf("%q is not a scope marker", s.String()))
		}
	}
	for _, s := range scopes {
		r.scopes = r.scopes.Add(s)
	}
	return nil
}

// AllowInjections restricts the injection policy. The first call replaces
// the default allow-all policy; later calls extend it.
func (r *Registry) AllowInjections(types ...introspect.InjectionType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errors.RegistryFrozen("change the injection policy")
	}
	if !r.restricted {
		r.policy = introspect.NewPolicy()
		r.restricted = true
	}
	r.policy = r.policy.With(types...)
	return nil
}

// EnableStaticInjection requests static injection for t at boot. Only the
// most derived type of each embedding or implementation chain is kept.
func (r *Registry) EnableStaticInjection(t typekey.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errors.RegistryFrozen("enable static injection")
	}
	if t.IsZero() {
		return errors.InvalidBinding("static injection type is required")
	}
	for _, s := range r.statics {
		if s == t || t.IsAncestorOf(s) {
			return nil
		}
	}
	kept := r.statics[:0]
	for _, s := range r.statics {
		if !s.IsAncestorOf(t) {
			kept = append(kept, s)
		}
	}
	r.statics = append(kept, t)
	return nil
}

// AsStrict makes the binding answer requests for every type in o.Types, all
// with o.Qualifier.
func (h *Handle) AsStrict(o StrictOptions) error {
	return h.configure(KindStrict, func() error {
		if err := checkQualifier(o.Qualifier); err != nil {
			return err
		}
		types := o.Types
		if len(types) == 0 {
			types = []typekey.Key{h.source.Type()}
		}
		seen := make(map[typekey.Key]bool, len(types))
		for _, t := range types {
			if err := h.checkAssignable(t); err != nil {
				return err
			}
			if seen[t] {
				continue
			}
			seen[t] = true
			h.requests = append(h.requests, Request{Type: t, Qualifier: o.Qualifier})
		}
		return nil
	})
}

// AsMapMember contributes the binding to the map aggregate
// map[o.KeyType]o.ValueType under o.Key.
func (h *Handle) AsMapMember(o MapMemberOptions) error {
	return h.configure(KindMap, func() error {
		aggregate, err := typekey.MapOf(o.KeyType, o.ValueType)
		if err != nil {
			return errors.InvalidBinding(err.Error())
		}
		if o.Key == nil {
			return errors.InvalidBinding(fmt.Sprintf("map member %s needs a key", h.source))
		}
		kt := reflect.TypeOf(o.Key)
		if !kt.Comparable() || !kt.AssignableTo(o.KeyType.Type()) {
			return errors.InvalidBinding(fmt.Sprintf("map key %v of type %s is not a comparable %s", o.Key, kt, o.KeyType))
		}
		if err := h.member(o.ValueType, o.Scope, o.Qualifier); err != nil {
			return err
		}
		h.aggregate = Request{Type: aggregate, Qualifier: o.Qualifier}
		h.key = o.Key
		h.scope = o.Scope
		return nil
	})
}

// AsListMember contributes the binding to the list aggregate []o.ElementType.
// Members keep their contribution order across loaders.
func (h *Handle) AsListMember(o CollectionOptions) error {
	return h.configure(KindList, func() error {
		aggregate, err := typekey.ListOf(o.ElementType)
		if err != nil {
			return errors.InvalidBinding(err.Error())
		}
		return h.collection(aggregate, o)
	})
}

// AsSetMember contributes the binding to the set aggregate
// map[o.ElementType]struct{}. Equal members collapse into one entry.
func (h *Handle) AsSetMember(o CollectionOptions) error {
	return h.configure(KindSet, func() error {
		aggregate, err := typekey.SetOf(o.ElementType)
		if err != nil {
			return errors.InvalidBinding(err.Error())
		}
		return h.collection(aggregate, o)
	})
}

func (h *Handle) collection(aggregate typekey.Key, o CollectionOptions) error {
	if err := h.member(o.ElementType, o.Scope, o.Qualifier); err != nil {
		return err
	}
	h.aggregate = Request{Type: aggregate, Qualifier: o.Qualifier}
	h.scope = o.Scope
	return nil
}

func (h *Handle) member(element typekey.Key, scope, qualifier marker.Marker) error {
	if err := checkQualifier(qualifier); err != nil {
		return err
	}
	if !scope.IsZero() && !scope.IsScope() {
		return errors.InvalidBinding(fmt.Sprintf("%q is not a scope marker", scope.String()))
	}
	return h.checkAssignable(element)
}

func (h *Handle) configure(kind BindingKind, apply func() error) error {
	r := h.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case h.err != nil:
		return h.err
	case r.frozen:
		return errors.RegistryFrozen("configure a binding")
	case h.kind != "":
		return errors.BindingReconfigured(h.source.String())
	}
	if err := apply(); err != nil {
		h.requests = nil
		return err
	}
	h.kind = kind
	return nil
}

func (h *Handle) checkAssignable(t typekey.Key) error {
	if t.IsZero() {
		return errors.InvalidBinding(fmt.Sprintf("target type for %s is required", h.source))
	}
	if !h.source.Type().AssignableTo(t) {
		return errors.InvalidBinding(fmt.Sprintf("%s is not assignable to %s", h.source, t))
	}
	return nil
}

func checkQualifier(q marker.Marker) error {
	if !q.IsZero() && !q.IsQualifier() {
		return errors.InvalidBinding(fmt.Sprintf("%q is not a qualifier marker", q.String()))
	}
	return nil
}
