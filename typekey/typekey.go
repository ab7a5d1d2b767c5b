// Package typekey identifies types at runtime. A Key wraps a reflect.Type and
// is comparable, so it can be used as a map key or compared with ==.
package typekey

import (
	"fmt"
	"reflect"
)

// Key identifies a runtime type. The zero Key identifies no type.
type Key struct {
	t reflect.Type
}

// Of returns the key of T. Interface types are kept as interfaces.
func Of[T any]() Key {
	return Key{t: reflect.TypeOf((*T)(nil)).Elem()}
}

// For returns the key of t.
func For(t reflect.Type) Key {
	return Key{t: t}
}

// OfValue returns the dynamic type key of v, or the zero Key for nil.
func OfValue(v any) Key {
	return Key{t: reflect.TypeOf(v)}
}

// Type returns the wrapped reflect.Type, nil for the zero Key.
func (k Key) Type() reflect.Type { return k.t }

// IsZero reports whether k identifies no type.
func (k Key) IsZero() bool { return k.t == nil }

// String returns the Go spelling of the type.
func (k Key) String() string {
	if k.t == nil {
		return "<none>"
	}
	return k.t.String()
}

// Comparable reports whether values of the type can be map keys.
func (k Key) Comparable() bool {
	return k.t != nil && k.t.Comparable()
}

// IsInterface reports whether the type is an interface type.
func (k Key) IsInterface() bool {
	return k.t != nil && k.t.Kind() == reflect.Interface
}

// AssignableTo reports whether a value of k can be assigned to other.
func (k Key) AssignableTo(other Key) bool {
	if k.t == nil || other.t == nil {
		return false
	}
	return k.t.AssignableTo(other.t)
}

// IsAncestorOf reports whether other derives from k. An interface is an
// ancestor of every other type implementing it. A struct is an ancestor of
// every struct that embeds it, directly or through other embedded structs.
// Pointers are compared through their element types. A type is not its own
// ancestor.
func (k Key) IsAncestorOf(other Key) bool {
	if k.t == nil || other.t == nil || k.t == other.t {
		return false
	}
	if k.t.Kind() == reflect.Interface {
		return other.t.Implements(k.t)
	}
	base := deref(k.t)
	if base.Kind() != reflect.Struct {
		return false
	}
	return embeds(other.t, base, map[reflect.Type]bool{})
}

func embeds(t, base reflect.Type, seen map[reflect.Type]bool) bool {
	t = deref(t)
	if t.Kind() != reflect.Struct || seen[t] {
		return false
	}
	seen[t] = true
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		if deref(f.Type) == base || embeds(f.Type, base, seen) {
			return true
		}
	}
	return false
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// ListOf returns the key of a slice of elem.
func ListOf(elem Key) (Key, error) {
	if elem.t == nil {
		return Key{}, fmt.Errorf("list element type is required")
	}
	return Key{t: reflect.SliceOf(elem.t)}, nil
}

// SetOf returns the key of a set of elem, represented as map[elem]struct{}.
func SetOf(elem Key) (Key, error) {
	if elem.t == nil {
		return Key{}, fmt.Errorf("set element type is required")
	}
	if !elem.t.Comparable() {
		return Key{}, fmt.Errorf("set element type %s is not comparable", elem.t)
	}
	return Key{t: reflect.MapOf(elem.t, emptyStruct)}, nil
}

// MapOf returns the key of a map from key to value.
func MapOf(key, value Key) (Key, error) {
	if key.t == nil || value.t == nil {
		return Key{}, fmt.Errorf("map key and value types are required")
	}
	if !key.t.Comparable() {
		return Key{}, fmt.Errorf("map key type %s is not comparable", key.t)
	}
	return Key{t: reflect.MapOf(key.t, value.t)}, nil
}

var emptyStruct = reflect.TypeOf(struct{}{})

// IsSet reports whether k has the map[E]struct{} shape produced by SetOf.
func (k Key) IsSet() bool {
	return k.t != nil && k.t.Kind() == reflect.Map && k.t.Elem() == emptyStruct
}
