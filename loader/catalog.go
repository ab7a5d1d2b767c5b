package loader

import (
	"fmt"
	"strings"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

// Catalog maps manifest names to types, instances, scopes and qualifiers.
// It is not safe for concurrent modification.
type Catalog struct {
	types      map[string]typekey.Key
	instances  map[string]any
	scopes     map[string]marker.Marker
	qualifiers map[string]*marker.Tag
}

// NewCatalog returns a catalog that knows the basic map key types and the
// built-in singleton and multiton scopes.
func NewCatalog() *Catalog {
	c := &Catalog{
		types:      make(map[string]typekey.Key),
		instances:  make(map[string]any),
		scopes:     make(map[string]marker.Marker),
		qualifiers: make(map[string]*marker.Tag),
	}
	c.AddType("string", typekey.Of[string]())
	c.AddType("int", typekey.Of[int]())
	c.AddType("int64", typekey.Of[int64]())
	c.AddType("bool", typekey.Of[bool]())
	c.AddScope(marker.SingletonTag)
	c.AddScope(marker.MultitonTag)
	c.AddQualifier(marker.NamedTag)
	return c
}

// AddType registers a type under name.
func (c *Catalog) AddType(name string, k typekey.Key) *Catalog {
	c.types[name] = k
	return c
}

// AddTable registers every described type under its catalog name.
func (c *Catalog) AddTable(t *introspect.Table) *Catalog {
	for _, name := range t.Names() {
		if k, ok := t.Resolve(name); ok {
			c.types[name] = k
		}
	}
	return c
}

// AddInstance registers a ready-made value under name.
func (c *Catalog) AddInstance(name string, v any) *Catalog {
	c.instances[name] = v
	return c
}

// AddScope registers a scope tag under its name.
func (c *Catalog) AddScope(tag *marker.Tag) *Catalog {
	c.scopes[tag.Name()] = tag.Marker()
	return c
}

// AddQualifier registers a qualifier tag under its name.
func (c *Catalog) AddQualifier(tag *marker.Tag) *Catalog {
	c.qualifiers[tag.Name()] = tag
	return c
}

// Type returns the type registered under name.
func (c *Catalog) Type(name string) (typekey.Key, error) {
	k, ok := c.types[strings.TrimSpace(name)]
	if !ok {
		return typekey.Key{}, errors.InvalidBinding(fmt.Sprintf("unknown type %q", name))
	}
	return k, nil
}

// Instance returns the value registered under name.
func (c *Catalog) Instance(name string) (any, error) {
	v, ok := c.instances[name]
	if !ok {
		return nil, errors.InvalidBinding(fmt.Sprintf("unknown instance %q", name))
	}
	return v, nil
}

// Scope returns the scope registered under name. An empty name is the zero
// marker.
func (c *Catalog) Scope(name string) (marker.Marker, error) {
	if name == "" {
		return marker.Marker{}, nil
	}
	m, ok := c.scopes[strings.TrimPrefix(name, "@")]
	if !ok {
		return marker.Marker{}, errors.InvalidBinding(fmt.Sprintf("unknown scope %q", name))
	}
	return m, nil
}

// Qualifier parses a qualifier. "tag" and "tag:value" refer to a registered
// tag, with or without a string attribute; any other word is a Named
// qualifier. An empty string is the zero marker.
func (c *Catalog) Qualifier(s string) (marker.Marker, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "@")
	if s == "" {
		return marker.Marker{}, nil
	}
	name, value, hasValue := strings.Cut(s, ":")
	tag, ok := c.qualifiers[name]
	switch {
	case ok && hasValue:
		return tag.With(value), nil
	case ok:
		return tag.Marker(), nil
	case hasValue:
		return marker.Marker{}, errors.InvalidBinding(fmt.Sprintf("unknown qualifier %q", name))
	default:
		return marker.Named(s), nil
	}
}
