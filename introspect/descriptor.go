package introspect

import (
	"fmt"
	"go/token"
	"reflect"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Dependency is one value an injection point needs.
type Dependency struct {
	Type      typekey.Key
	Qualifier marker.Marker
}

// String renders the dependency as a request.
func (d Dependency) String() string {
	if d.Qualifier.IsZero() {
		return d.Type.String()
	}
	return d.Type.String() + " " + d.Qualifier.String()
}

// Constructor builds a value of Type. A constructor without Func produces
// the zero value of Type, or a new zeroed struct when Type is a pointer.
type Constructor struct {
	Access Access
	Deps   []Dependency
	Func   reflect.Value
	Type   reflect.Type
}

// InjectionType classifies the constructor.
func (c Constructor) InjectionType() InjectionType {
	return pick(c.Access, PublicConstructor, NonPublicConstructor)
}

// ElementKind is the shape of a member or static injection point.
type ElementKind int

const (
	FieldElement ElementKind = iota
	MethodElement
)

// Element is a field or method injection point.
//
// Member methods take the receiver as their first argument. Member fields are
// addressed by Field, an index path relative to the receiver struct. Static
// fields are set through Var. Path, when set, selects the embedded struct the
// element belongs to.
type Element struct {
	Name   string
	Kind   ElementKind
	Access Access
	Static bool
	Deps   []Dependency
	Func   reflect.Value
	Field  []int
	Var    reflect.Value
	Path   []int
}

// InjectionType classifies the element.
func (e Element) InjectionType() InjectionType {
	switch {
	case e.Static && e.Kind == FieldElement:
		return pick(e.Access, PublicStaticField, NonPublicStaticField)
	case e.Static:
		return pick(e.Access, PublicStaticMethod, NonPublicStaticMethod)
	case e.Kind == FieldElement:
		return pick(e.Access, PublicMemberField, NonPublicMemberField)
	default:
		return pick(e.Access, PublicMemberMethod, NonPublicMemberMethod)
	}
}

// Descriptor declares the injection points of one type. Build it with
// Describe and the chained methods below; the first mistake is kept and
// reported by Table.Register.
type Descriptor struct {
	name         string
	typ          reflect.Type
	constructors []Constructor
	members      []Element
	statics      []Element
	scopes       marker.Set
	abstract     bool
	err          error
}

// Describe starts a descriptor for T.
func Describe[T any]() *Descriptor {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return &Descriptor{name: t.String(), typ: t}
}

// Type returns the described type.
func (d *Descriptor) Type() typekey.Key { return typekey.For(d.typ) }

// Name returns the catalog name, the Go spelling of the type unless renamed.
func (d *Descriptor) Name() string { return d.name }

// Err returns the first declaration mistake.
func (d *Descriptor) Err() error { return d.err }

// Named sets the catalog name used by binding manifests.
func (d *Descriptor) Named(name string) *Descriptor {
	d.name = name
	return d
}

// Abstract marks the type as not instantiable.
func (d *Descriptor) Abstract() *Descriptor {
	d.abstract = true
	return d
}

// Scope attaches a scope marker to the type.
func (d *Descriptor) Scope(m marker.Marker) *Descriptor {
	if !m.IsScope() {
		return d.fail("%s is not a scope marker", m)
	}
	d.scopes = d.scopes.Add(m)
	return d
}

// Constructor declares a public constructor. fn returns the type, optionally
// with an error. qualifiers apply to the parameters by position.
func (d *Descriptor) Constructor(fn any, qualifiers ...marker.Marker) *Descriptor {
	return d.constructor(Public, fn, qualifiers)
}

// NonPublicConstructor declares a constructor that only the non-public
// constructor injection type allows.
func (d *Descriptor) NonPublicConstructor(fn any, qualifiers ...marker.Marker) *Descriptor {
	return d.constructor(NonPublic, fn, qualifiers)
}

func (d *Descriptor) constructor(access Access, fn any, qualifiers []marker.Marker) *Descriptor {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return d.fail("constructor must be a function, got %T", fn)
	}
	ft := v.Type()
	if ft.NumOut() < 1 || ft.NumOut() > 2 || !ft.Out(0).AssignableTo(d.typ) ||
		(ft.NumOut() == 2 && ft.Out(1) != errorType) {
		return d.fail("constructor %s must return %s or (%s, error)", ft, d.typ, d.typ)
	}
	deps, err := dependencies(ft, 0, qualifiers)
	if err != nil {
		return d.fail("constructor %s: %v", ft, err)
	}
	d.constructors = append(d.constructors, Constructor{Access: access, Deps: deps, Func: v, Type: d.typ})
	return d
}

// Field declares an injected struct field. The type must be a pointer to
// struct and the field must be declared directly on it.
func (d *Descriptor) Field(name string, qualifier ...marker.Marker) *Descriptor {
	if d.typ.Kind() != reflect.Pointer || d.typ.Elem().Kind() != reflect.Struct {
		return d.fail("field %s: fields are injected through a pointer to struct", name)
	}
	sf, ok := d.typ.Elem().FieldByName(name)
	if !ok || len(sf.Index) != 1 {
		return d.fail("field %s is not declared on %s", name, d.typ.Elem())
	}
	q, err := single(qualifier)
	if err != nil {
		return d.fail("field %s: %v", name, err)
	}
	d.members = append(d.members, Element{
		Name:   name,
		Kind:   FieldElement,
		Access: accessOf(sf.IsExported()),
		Deps:   []Dependency{{Type: typekey.For(sf.Type), Qualifier: q}},
		Field:  sf.Index,
	})
	return d
}

// Method declares an injected exported method of the type.
func (d *Descriptor) Method(name string, qualifiers ...marker.Marker) *Descriptor {
	if d.typ.Kind() == reflect.Interface {
		return d.fail("method %s: interface methods cannot be injected", name)
	}
	m, ok := d.typ.MethodByName(name)
	if !ok {
		return d.fail("method %s is not in the method set of %s", name, d.typ)
	}
	return d.member(name, Public, m.Func, qualifiers)
}

// Func declares a member method written as a function whose first parameter
// is the receiver. Unexported names declare non-public methods.
func (d *Descriptor) Func(name string, fn any, qualifiers ...marker.Marker) *Descriptor {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return d.fail("method %s must be a function, got %T", name, fn)
	}
	if v.Type().NumIn() < 1 || !d.typ.AssignableTo(v.Type().In(0)) {
		return d.fail("method %s must take %s as its first parameter", name, d.typ)
	}
	return d.member(name, accessOf(token.IsExported(name)), v, qualifiers)
}

func (d *Descriptor) member(name string, access Access, fn reflect.Value, qualifiers []marker.Marker) *Descriptor {
	if !returnsOnlyError(fn.Type()) {
		return d.fail("method %s must return nothing or an error", name)
	}
	deps, err := dependencies(fn.Type(), 1, qualifiers)
	if err != nil {
		return d.fail("method %s: %v", name, err)
	}
	d.members = append(d.members, Element{
		Name:   name,
		Kind:   MethodElement,
		Access: access,
		Deps:   deps,
		Func:   fn,
	})
	return d
}

// StaticVar declares an injected package-level variable. ptr points at it.
func (d *Descriptor) StaticVar(name string, ptr any, qualifier ...marker.Marker) *Descriptor {
	v := reflect.ValueOf(ptr)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return d.fail("static field %s needs a non-nil pointer, got %T", name, ptr)
	}
	q, err := single(qualifier)
	if err != nil {
		return d.fail("static field %s: %v", name, err)
	}
	d.statics = append(d.statics, Element{
		Name:   name,
		Kind:   FieldElement,
		Access: accessOf(token.IsExported(name)),
		Static: true,
		Deps:   []Dependency{{Type: typekey.For(v.Type().Elem()), Qualifier: q}},
		Var:    v.Elem(),
	})
	return d
}

// StaticFunc declares an injected package-level function.
func (d *Descriptor) StaticFunc(name string, fn any, qualifiers ...marker.Marker) *Descriptor {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return d.fail("static method %s must be a function, got %T", name, fn)
	}
	if !returnsOnlyError(v.Type()) {
		return d.fail("static method %s must return nothing or an error", name)
	}
	deps, err := dependencies(v.Type(), 0, qualifiers)
	if err != nil {
		return d.fail("static method %s: %v", name, err)
	}
	d.statics = append(d.statics, Element{
		Name:   name,
		Kind:   MethodElement,
		Access: accessOf(token.IsExported(name)),
		Static: true,
		Deps:   deps,
		Func:   v,
	})
	return d
}

func (d *Descriptor) fail(format string, args ...any) *Descriptor {
	if d.err == nil {
		d.err = errors.InvalidProfile(d.typ.String(), fmt.Sprintf(format, args...))
	}
	return d
}

func dependencies(ft reflect.Type, offset int, qualifiers []marker.Marker) ([]Dependency, error) {
	if ft.IsVariadic() {
		return nil, fmt.Errorf("variadic functions cannot be injected")
	}
	if len(qualifiers) > ft.NumIn()-offset {
		return nil, fmt.Errorf("%d qualifiers for %d parameters", len(qualifiers), ft.NumIn()-offset)
	}
	deps := make([]Dependency, 0, ft.NumIn()-offset)
	for i := offset; i < ft.NumIn(); i++ {
		var q marker.Marker
		if i-offset < len(qualifiers) {
			q = qualifiers[i-offset]
		}
		if !q.IsZero() && !q.IsQualifier() {
			return nil, fmt.Errorf("%s is not a qualifier marker", q)
		}
		deps = append(deps, Dependency{Type: typekey.For(ft.In(i)), Qualifier: q})
	}
	return deps, nil
}

func single(qualifier []marker.Marker) (marker.Marker, error) {
	switch {
	case len(qualifier) == 0:
		return marker.Marker{}, nil
	case len(qualifier) > 1:
		return marker.Marker{}, fmt.Errorf("at most one qualifier is allowed")
	case !qualifier[0].IsZero() && !qualifier[0].IsQualifier():
		return marker.Marker{}, fmt.Errorf("%s is not a qualifier marker", qualifier[0])
	}
	return qualifier[0], nil
}

func returnsOnlyError(ft reflect.Type) bool {
	return ft.NumOut() == 0 || (ft.NumOut() == 1 && ft.Out(0) == errorType)
}
