package loader

import (
	"fmt"
	"reflect"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/inject/di"
	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/typekey"
)

// Manifest is a declarative set of bindings.
type Manifest struct {
	Name     string    `yaml:"name"`
	Includes []string  `yaml:"includes"`
	Scopes   []string  `yaml:"scopes"`
	Allow    []string  `yaml:"allow"`
	Statics  []string  `yaml:"statics"`
	Bindings []Binding `yaml:"bindings"`
}

// Binding declares one implementation type or catalog instance and its
// terminal configuration. Exactly one of Strict, Map, List and Set is set.
type Binding struct {
	Type     string            `yaml:"type"`
	Instance string            `yaml:"instance"`
	Count    int               `yaml:"count"`
	Strict   *Strict           `yaml:"strict"`
	Map      *MapMember        `yaml:"map"`
	List     *CollectionMember `yaml:"list"`
	Set      *CollectionMember `yaml:"set"`
}

// Strict answers requests for every type in As. Without As the binding
// answers requests for its own type.
type Strict struct {
	As        []string `yaml:"as"`
	Qualifier string   `yaml:"qualifier"`
}

// MapMember contributes to map[KeyType]ValueType under Key.
type MapMember struct {
	KeyType   string `yaml:"key_type"`
	ValueType string `yaml:"value_type"`
	Key       any    `yaml:"key"`
	Scope     string `yaml:"scope"`
	Qualifier string `yaml:"qualifier"`
}

// CollectionMember contributes to a list or set of Element.
type CollectionMember struct {
	Element   string `yaml:"element"`
	Scope     string `yaml:"scope"`
	Qualifier string `yaml:"qualifier"`
}

// Parse decodes a manifest.
func Parse(data []byte) (*Manifest, error) {
	return decode(data, "<input>")
}

func decode(data []byte, origin string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.InvalidConfig(fmt.Sprintf("invalid binding manifest %s", origin)).WithCause(err)
	}
	return &m, nil
}

// Loader returns a di.Loader that applies m using the names in cat.
func (m *Manifest) Loader(cat *Catalog) di.Loader {
	return di.LoaderFunc(func(r *di.Registry) error {
		if err := m.apply(r, cat); err != nil {
			return fmt.Errorf("manifest %s: %w", m.Name, err)
		}
		return nil
	})
}

func (m *Manifest) apply(r *di.Registry, cat *Catalog) error {
	for _, name := range m.Scopes {
		s, err := cat.Scope(name)
		if err != nil {
			return err
		}
		if err := r.ActivateScopes(s); err != nil {
			return err
		}
	}

	if len(m.Allow) > 0 {
		types := make([]introspect.InjectionType, len(m.Allow))
		for i, name := range m.Allow {
			it, err := introspect.ParseInjectionType(name)
			if err != nil {
				return errors.InvalidBinding(err.Error())
			}
			types[i] = it
		}
		if err := r.AllowInjections(types...); err != nil {
			return err
		}
	}

	for _, name := range m.Statics {
		t, err := cat.Type(name)
		if err != nil {
			return err
		}
		if err := r.EnableStaticInjection(t); err != nil {
			return err
		}
	}

	for i, b := range m.Bindings {
		if err := b.apply(r, cat); err != nil {
			return fmt.Errorf("binding %d (%s): %w", i, b.source(), err)
		}
	}
	return nil
}

func (b Binding) source() string {
	if b.Instance != "" {
		return "instance " + b.Instance
	}
	return b.Type
}

func (b Binding) apply(r *di.Registry, cat *Catalog) error {
	configure, err := b.terminal(cat)
	if err != nil {
		return err
	}
	count := b.Count
	if count == 0 {
		count = 1
	}
	if count < 0 {
		return errors.InvalidBinding(fmt.Sprintf("count must be positive, got %d", b.Count))
	}

	for i := 0; i < count; i++ {
		h, err := b.handle(r, cat)
		if err != nil {
			return err
		}
		if err := configure(h); err != nil {
			return err
		}
	}
	return nil
}

func (b Binding) handle(r *di.Registry, cat *Catalog) (*di.Handle, error) {
	switch {
	case b.Type != "" && b.Instance != "":
		return nil, errors.InvalidBinding("type and instance are mutually exclusive")
	case b.Instance != "":
		v, err := cat.Instance(b.Instance)
		if err != nil {
			return nil, err
		}
		return r.AddInstance(v), nil
	case b.Type != "":
		t, err := cat.Type(b.Type)
		if err != nil {
			return nil, err
		}
		return r.AddImplementation(t), nil
	default:
		return nil, errors.InvalidBinding("type or instance is required")
	}
}

// terminal resolves every name up front and returns the configuration to
// apply to each handle.
func (b Binding) terminal(cat *Catalog) (func(*di.Handle) error, error) {
	n := 0
	for _, set := range []bool{b.Strict != nil, b.Map != nil, b.List != nil, b.Set != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, errors.InvalidBinding("exactly one of strict, map, list and set is required")
	}

	switch {
	case b.Strict != nil:
		o, err := b.Strict.options(cat)
		if err != nil {
			return nil, err
		}
		return func(h *di.Handle) error { return h.AsStrict(o) }, nil
	case b.Map != nil:
		o, err := b.Map.options(cat)
		if err != nil {
			return nil, err
		}
		return func(h *di.Handle) error { return h.AsMapMember(o) }, nil
	case b.List != nil:
		o, err := b.List.options(cat)
		if err != nil {
			return nil, err
		}
		return func(h *di.Handle) error { return h.AsListMember(o) }, nil
	default:
		o, err := b.Set.options(cat)
		if err != nil {
			return nil, err
		}
		return func(h *di.Handle) error { return h.AsSetMember(o) }, nil
	}
}

func (s *Strict) options(cat *Catalog) (di.StrictOptions, error) {
	var o di.StrictOptions
	for _, name := range s.As {
		t, err := cat.Type(name)
		if err != nil {
			return o, err
		}
		o.Types = append(o.Types, t)
	}
	q, err := cat.Qualifier(s.Qualifier)
	if err != nil {
		return o, err
	}
	o.Qualifier = q
	return o, nil
}

func (m *MapMember) options(cat *Catalog) (di.MapMemberOptions, error) {
	var o di.MapMemberOptions
	kt, err := cat.Type(m.KeyType)
	if err != nil {
		return o, err
	}
	vt, err := cat.Type(m.ValueType)
	if err != nil {
		return o, err
	}
	key, err := convertKey(m.Key, kt)
	if err != nil {
		return o, err
	}
	if o.Scope, err = cat.Scope(m.Scope); err != nil {
		return o, err
	}
	if o.Qualifier, err = cat.Qualifier(m.Qualifier); err != nil {
		return o, err
	}
	o.KeyType, o.ValueType, o.Key = kt, vt, key
	return o, nil
}

func (c *CollectionMember) options(cat *Catalog) (di.CollectionOptions, error) {
	var o di.CollectionOptions
	elem, err := cat.Type(c.Element)
	if err != nil {
		return o, err
	}
	if o.Scope, err = cat.Scope(c.Scope); err != nil {
		return o, err
	}
	if o.Qualifier, err = cat.Qualifier(c.Qualifier); err != nil {
		return o, err
	}
	o.ElementType = elem
	return o, nil
}

// convertKey converts a decoded YAML scalar to the map key type.
func convertKey(v any, kt typekey.Key) (any, error) {
	if v == nil {
		return nil, errors.InvalidBinding("map key is required")
	}
	rv := reflect.ValueOf(v)
	want := kt.Type()
	if rv.Type() == want {
		return v, nil
	}
	if want.Kind() == reflect.String && rv.Kind() != reflect.String {
		return nil, errors.InvalidBinding(fmt.Sprintf("map key %v is not a string", v))
	}
	if !rv.CanConvert(want) {
		return nil, errors.InvalidBinding(fmt.Sprintf("map key %v cannot be used as %s", v, want))
	}
	return rv.Convert(want).Interface(), nil
}
