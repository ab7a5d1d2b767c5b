package introspect

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

// Introspector answers how a type is built and injected.
type Introspector interface {
	// Profile returns the injection profile of t under policy.
	Profile(t typekey.Key, policy Policy) (*Profile, error)
	// Scopes returns the scope markers attached to t.
	Scopes(t typekey.Key) marker.Set
}

// Profile is the resolved injection view of one type.
type Profile struct {
	Type        typekey.Key
	Constructor Constructor
	Members     []Element
	Statics     []Element
}

// Dependencies lists the constructor and member dependencies in injection order.
func (p *Profile) Dependencies() []Dependency {
	out := append([]Dependency(nil), p.Constructor.Deps...)
	for _, e := range p.Members {
		out = append(out, e.Deps...)
	}
	return out
}

// Table holds type descriptors. It is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Descriptor
	byName map[string]*Descriptor
}

// NewTable creates an empty descriptor table.
func NewTable() *Table {
	return &Table{
		byType: make(map[reflect.Type]*Descriptor),
		byName: make(map[string]*Descriptor),
	}
}

// Register adds descriptors. It fails on the first descriptor that carries a
// declaration mistake or describes a type or name already present.
func (t *Table) Register(ds ...*Descriptor) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, d := range ds {
		if d.err != nil {
			return d.err
		}
		if _, exists := t.byType[d.typ]; exists {
			return errors.InvalidProfile(d.typ.String(), "type is already described")
		}
		if _, exists := t.byName[d.name]; exists {
			return errors.InvalidProfile(d.typ.String(), fmt.Sprintf("name %q is already taken", d.name))
		}
		t.byType[d.typ] = d
		t.byName[d.name] = d
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (t *Table) MustRegister(ds ...*Descriptor) {
	if err := t.Register(ds...); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor of k.
func (t *Table) Lookup(k typekey.Key) (*Descriptor, bool) {
	d := t.lookup(k.Type())
	return d, d != nil
}

// Resolve returns the type registered under a catalog name.
func (t *Table) Resolve(name string) (typekey.Key, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.byName[name]
	if !ok {
		return typekey.Key{}, false
	}
	return typekey.For(d.typ), true
}

// Names returns every catalog name in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scopes returns the scope markers attached to k.
func (t *Table) Scopes(k typekey.Key) marker.Set {
	d := t.lookup(k.Type())
	if d == nil {
		return nil
	}
	return append(marker.Set(nil), d.scopes...)
}

// Profile returns the injection profile of k under policy. Exactly one
// constructor must be eligible and the type must not be abstract.
func (t *Table) Profile(k typekey.Key, policy Policy) (*Profile, error) {
	rt := k.Type()
	if rt == nil {
		return nil, errors.InvalidProfile(k.String(), "type is required")
	}
	d := t.lookup(rt)
	if rt.Kind() == reflect.Interface || (d != nil && d.abstract) {
		return nil, errors.InvalidProfile(k.String(), "type is abstract and cannot be instantiated")
	}

	candidates := implicitConstructor(rt)
	if d != nil && len(d.constructors) > 0 {
		candidates = d.constructors
	}
	var eligible []Constructor
	for _, c := range candidates {
		if policy.Allows(c.InjectionType()) {
			eligible = append(eligible, c)
		}
	}
	switch len(eligible) {
	case 0:
		return nil, errors.InvalidProfile(k.String(), "no injectable constructor found")
	case 1:
	default:
		return nil, errors.InvalidProfile(k.String(), "only one injectable constructor is allowed")
	}

	p := &Profile{Type: k, Constructor: eligible[0]}
	t.collect(rt, nil, policy, p, true, map[reflect.Type]bool{})
	return p, nil
}

// collect appends the elements of rt and of the structs it embeds, ancestors
// first. Members of embedded structs are reachable only from pointer roots.
func (t *Table) collect(rt reflect.Type, path []int, policy Policy, p *Profile, members bool, seen map[reflect.Type]bool) {
	st := rt
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if seen[st] {
		return
	}
	seen[st] = true

	if st.Kind() == reflect.Struct {
		inherit := members && rt.Kind() == reflect.Pointer
		for i := 0; i < st.NumField(); i++ {
			f := st.Field(i)
			if !f.Anonymous {
				continue
			}
			switch {
			case f.Type.Kind() == reflect.Pointer:
				t.collect(f.Type, nil, policy, p, false, seen)
			case f.Type.Kind() == reflect.Struct:
				t.collect(reflect.PointerTo(f.Type), extend(path, i), policy, p, inherit, seen)
			}
		}
	}

	d := t.lookup(rt)
	if d == nil {
		return
	}
	if members {
		for _, e := range d.members {
			if policy.Allows(e.InjectionType()) {
				e.Path = path
				p.Members = append(p.Members, e)
			}
		}
	}
	for _, e := range d.statics {
		if policy.Allows(e.InjectionType()) {
			p.Statics = append(p.Statics, e)
		}
	}
}

func (t *Table) lookup(rt reflect.Type) *Descriptor {
	if rt == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.byType[rt]
}

func implicitConstructor(rt reflect.Type) []Constructor {
	if rt.Kind() == reflect.Struct || (rt.Kind() == reflect.Pointer && rt.Elem().Kind() == reflect.Struct) {
		return []Constructor{{Access: Public, Type: rt}}
	}
	return nil
}

func extend(path []int, i int) []int {
	out := make([]int, len(path)+1)
	copy(out, path)
	out[len(path)] = i
	return out
}
