// Package marker defines qualifier and scope markers.
//
// A Tag declares a marker family, for example the "named" qualifier or the
// "request" scope. Tags are compared by identity: two tags created with the
// same name are different tags. A Marker is a tag plus an optional attribute
// value; two markers are equal when they share the tag and the attribute.
//
//	var Request = marker.NewScope("request").Marker()
//	var Primary = marker.NewQualifier("primary").Marker()
//	engine := marker.Named("v8")
package marker

import (
	"fmt"
	"reflect"
)

// Kind separates qualifier markers from scope markers.
type Kind int

const (
	// KindQualifier markers distinguish bindings of the same type.
	KindQualifier Kind = iota + 1
	// KindScope markers select a caching strategy.
	KindScope
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindQualifier:
		return "qualifier"
	case KindScope:
		return "scope"
	default:
		return "unknown"
	}
}

// Tag declares a marker family.
type Tag struct {
	name     string
	kind     Kind
	multiton bool
}

// NewQualifier declares a qualifier family.
func NewQualifier(name string) *Tag {
	return &Tag{name: name, kind: KindQualifier}
}

// NewScope declares a scope whose instances are cached once per context.
func NewScope(name string) *Tag {
	return &Tag{name: name, kind: KindScope}
}

// NewMultitonScope declares a scope whose instances are cached once per
// context and request qualifier.
func NewMultitonScope(name string) *Tag {
	return &Tag{name: name, kind: KindScope, multiton: true}
}

// Name returns the tag name.
func (t *Tag) Name() string { return t.name }

// Kind returns the tag kind.
func (t *Tag) Kind() Kind { return t.kind }

// IsMultiton reports whether the tag is a multiton scope.
func (t *Tag) IsMultiton() bool { return t.multiton }

// Marker returns the marker of this tag without an attribute.
func (t *Tag) Marker() Marker {
	return Marker{tag: t}
}

// With returns the marker of this tag carrying value. The value must be
// comparable; With panics otherwise.
func (t *Tag) With(value any) Marker {
	if value != nil && !reflect.TypeOf(value).Comparable() {
		panic(fmt.Sprintf("marker: attribute of @%s must be comparable, got %T", t.name, value))
	}
	return Marker{tag: t, value: value}
}

// Marker is a comparable tag instance. The zero Marker means "no marker".
type Marker struct {
	tag   *Tag
	value any
}

// IsZero reports whether m is the absent marker.
func (m Marker) IsZero() bool { return m.tag == nil }

// Tag returns the marker family, nil for the zero Marker.
func (m Marker) Tag() *Tag { return m.tag }

// Value returns the attribute value, nil when the marker has none.
func (m Marker) Value() any { return m.value }

// IsQualifier reports whether m is a qualifier marker.
func (m Marker) IsQualifier() bool { return m.tag != nil && m.tag.kind == KindQualifier }

// IsScope reports whether m is a scope marker.
func (m Marker) IsScope() bool { return m.tag != nil && m.tag.kind == KindScope }

// IsMultiton reports whether m is a multiton scope marker.
func (m Marker) IsMultiton() bool { return m.IsScope() && m.tag.multiton }

// String renders the marker as @name or @name(value).
func (m Marker) String() string {
	if m.tag == nil {
		return ""
	}
	if m.value == nil {
		return "@" + m.tag.name
	}
	return fmt.Sprintf("@%s(%v)", m.tag.name, m.value)
}

// Built-in tags.
var (
	NamedTag     = NewQualifier("named")
	SingletonTag = NewScope("singleton")
	MultitonTag  = NewMultitonScope("multiton")
)

// Built-in scope markers. Singleton is active in every root context; Multiton
// is active by default.
var (
	Singleton = SingletonTag.Marker()
	Multiton  = MultitonTag.Marker()
)

// Named returns the built-in string qualifier.
func Named(name string) Marker {
	return NamedTag.With(name)
}

// Set is an ordered set of markers.
type Set []Marker

// Contains reports whether s holds m.
func (s Set) Contains(m Marker) bool {
	for _, x := range s {
		if x == m {
			return true
		}
	}
	return false
}

// Add returns s with m appended unless already present.
func (s Set) Add(m Marker) Set {
	if s.Contains(m) {
		return s
	}
	return append(s, m)
}

// Scopes returns the scope markers of s in order.
func (s Set) Scopes() Set {
	var out Set
	for _, m := range s {
		if m.IsScope() {
			out = append(out, m)
		}
	}
	return out
}

// Strings renders every marker of s.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, m := range s {
		out[i] = m.String()
	}
	return out
}
