package di

import (
	"testing"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

type motor interface{ Start() string }

type dieselEngine struct{ Power int }

func (e *dieselEngine) Start() string { return "diesel" }

type electricEngine struct{ Power int }

func (e *electricEngine) Start() string { return "electric" }

func TestAsStrictDefaultsToSourceType(t *testing.T) {
	r := NewRegistry()
	if err := Bind[*dieselEngine](r).AsStrict(StrictOptions{}); err != nil {
		t.Fatalf("AsStrict: %v", err)
	}
	if err := r.AddInstance(&electricEngine{}).AsStrict(StrictOptions{}); err != nil {
		t.Fatalf("AsStrict instance: %v", err)
	}
	s, err := r.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if len(s.Strict) != 2 {
		t.Fatalf("got %d strict bindings", len(s.Strict))
	}
	if got := s.Strict[0].Requests[0]; got != RequestOf[*dieselEngine]() {
		t.Errorf("first request = %s", got)
	}
	if got := s.Strict[1].Requests[0]; got != RequestOf[*electricEngine]() {
		t.Errorf("second request = %s", got)
	}
}

func TestHandleConfiguration(t *testing.T) {
	tests := []struct {
		name string
		run  func(r *Registry) error
		code errors.ErrorCode
	}{
		{
			name: "reconfigured",
			run: func(r *Registry) error {
				h := Bind[*dieselEngine](r)
				if err := h.AsStrict(StrictOptions{}); err != nil {
					return err
				}
				return h.AsListMember(CollectionOptions{ElementType: typekey.Of[motor]()})
			},
			code: errors.ErrCodeBindingReconfigured,
		},
		{
			name: "not assignable",
			run: func(r *Registry) error {
				return Bind[*dieselEngine](r).AsStrict(StrictOptions{Types: []typekey.Key{typekey.Of[string]()}})
			},
			code: errors.ErrCodeInvalidBinding,
		},
		{
			name: "scope as qualifier",
			run: func(r *Registry) error {
				return Bind[*dieselEngine](r).AsStrict(StrictOptions{Qualifier: marker.Singleton})
			},
			code: errors.ErrCodeInvalidBinding,
		},
		{
			name: "nil instance",
			run: func(r *Registry) error {
				return r.AddInstance(nil).AsStrict(StrictOptions{})
			},
			code: errors.ErrCodeInvalidBinding,
		},
		{
			name: "map key of wrong type",
			run: func(r *Registry) error {
				return Bind[*dieselEngine](r).AsMapMember(MapMemberOptions{
					KeyType:   typekey.Of[string](),
					ValueType: typekey.Of[motor](),
					Key:       42,
				})
			},
			code: errors.ErrCodeInvalidBinding,
		},
		{
			name: "map member without key",
			run: func(r *Registry) error {
				return Bind[*dieselEngine](r).AsMapMember(MapMemberOptions{
					KeyType:   typekey.Of[string](),
					ValueType: typekey.Of[motor](),
				})
			},
			code: errors.ErrCodeInvalidBinding,
		},
		{
			name: "qualifier as scope",
			run: func(r *Registry) error {
				return r.ActivateScopes(marker.Named("x"))
			},
			code: errors.ErrCodeInvalidBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(NewRegistry())
			if !errors.HasCode(err, tt.code) {
				t.Fatalf("got %v, want %s", err, tt.code)
			}
			if !errors.IsContractViolation(err) {
				t.Errorf("%v is not a contract violation", err)
			}
		})
	}
}

func TestFreezeValidation(t *testing.T) {
	tests := []struct {
		name string
		load func(r *Registry)
		code errors.ErrorCode
	}{
		{
			name: "two strict bindings for one request",
			load: func(r *Registry) {
				_ = Bind[*dieselEngine](r).AsStrict(StrictOptions{Types: []typekey.Key{typekey.Of[motor]()}})
				_ = Bind[*electricEngine](r).AsStrict(StrictOptions{Types: []typekey.Key{typekey.Of[motor]()}})
			},
			code: errors.ErrCodeAmbiguousBinding,
		},
		{
			name: "strict binding on an aggregate request",
			load: func(r *Registry) {
				_ = r.AddInstance("a").AsListMember(CollectionOptions{ElementType: typekey.Of[string]()})
				_ = r.AddInstance([]string{"b"}).AsStrict(StrictOptions{})
			},
			code: errors.ErrCodeAmbiguousBinding,
		},
		{
			name: "map and set share a type",
			load: func(r *Registry) {
				_ = r.AddInstance("a").AsSetMember(CollectionOptions{ElementType: typekey.Of[string]()})
				_ = r.AddInstance(struct{}{}).AsMapMember(MapMemberOptions{
					KeyType:   typekey.Of[string](),
					ValueType: typekey.Of[struct{}](),
					Key:       "b",
				})
			},
			code: errors.ErrCodeAmbiguousBinding,
		},
		{
			name: "duplicate map key",
			load: func(r *Registry) {
				opts := MapMemberOptions{KeyType: typekey.Of[string](), ValueType: typekey.Of[motor](), Key: "front"}
				_ = Bind[*dieselEngine](r).AsMapMember(opts)
				_ = Bind[*electricEngine](r).AsMapMember(opts)
			},
			code: errors.ErrCodeDuplicateMapKey,
		},
		{
			name: "unconfigured handle",
			load: func(r *Registry) {
				Bind[*dieselEngine](r)
			},
			code: errors.ErrCodeBindingIncomplete,
		},
		{
			name: "ignored nil instance",
			load: func(r *Registry) {
				_ = r.AddInstance(nil).AsStrict(StrictOptions{})
			},
			code: errors.ErrCodeInvalidBinding,
		},
		{
			name: "ignored missing implementation type",
			load: func(r *Registry) {
				_ = r.AddImplementation(typekey.Key{}).AsStrict(StrictOptions{})
			},
			code: errors.ErrCodeInvalidBinding,
		},
		{
			name: "ignored uncomparable set element",
			load: func(r *Registry) {
				_ = r.AddInstance([]string{"a"}).AsSetMember(CollectionOptions{ElementType: typekey.Of[[]string]()})
			},
			code: errors.ErrCodeBindingIncomplete,
		},
		{
			name: "conflicting aggregate scopes",
			load: func(r *Registry) {
				_ = r.AddInstance("a").AsListMember(CollectionOptions{ElementType: typekey.Of[string]()})
				_ = r.AddInstance("b").AsListMember(CollectionOptions{ElementType: typekey.Of[string](), Scope: marker.Singleton})
			},
			code: errors.ErrCodeInvalidBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			tt.load(r)
			_, err := r.Freeze()
			if !errors.HasCode(err, tt.code) {
				t.Fatalf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestQualifiedRequestsAreDistinct(t *testing.T) {
	r := NewRegistry()
	_ = Bind[*dieselEngine](r).AsStrict(StrictOptions{Types: []typekey.Key{typekey.Of[motor]()}, Qualifier: marker.Named("diesel")})
	_ = Bind[*electricEngine](r).AsStrict(StrictOptions{Types: []typekey.Key{typekey.Of[motor]()}, Qualifier: marker.Named("electric")})
	_ = Bind[*electricEngine](r).AsStrict(StrictOptions{Types: []typekey.Key{typekey.Of[motor]()}})
	if _, err := r.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
}

func TestFrozenRegistryRejectsChanges(t *testing.T) {
	r := NewRegistry()
	h := Bind[*dieselEngine](r)
	if _, err := r.Freeze(); err == nil {
		t.Fatal("expected BINDING_INCOMPLETE")
	}

	checks := map[string]error{
		"freeze":  second(r.Freeze()),
		"add":     Bind[*electricEngine](r).AsStrict(StrictOptions{}),
		"as":      h.AsStrict(StrictOptions{}),
		"scopes":  r.ActivateScopes(marker.Singleton),
		"policy":  r.AllowInjections(introspect.PublicConstructor),
		"statics": r.EnableStaticInjection(typekey.Of[*dieselEngine]()),
	}
	for name, err := range checks {
		if !errors.HasCode(err, errors.ErrCodeRegistryFrozen) {
			t.Errorf("%s: got %v, want REGISTRY_FROZEN", name, err)
		}
	}
}

func second[T any](_ T, err error) error { return err }

func TestAllowInjectionsRestrictsThenExtends(t *testing.T) {
	r := NewRegistry()
	_ = r.AllowInjections(introspect.PublicConstructor)
	_ = r.AllowInjections(introspect.PublicMemberField)
	s, err := r.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if !s.Policy.Allows(introspect.PublicMemberField) || !s.Policy.Allows(introspect.PublicConstructor) {
		t.Error("policy lost an allowed type")
	}
	if s.Policy.Allows(introspect.PublicMemberMethod) {
		t.Error("policy allows a type that was never allowed")
	}
}

type vehicle struct{ Wheels int }

type car struct {
	vehicle
	Brand string
}

type truck struct {
	car
	Load int
}

func TestEnableStaticInjectionKeepsMostDerived(t *testing.T) {
	r := NewRegistry()
	_ = r.EnableStaticInjection(typekey.Of[*car]())
	_ = r.EnableStaticInjection(typekey.Of[*vehicle]())
	_ = r.EnableStaticInjection(typekey.Of[*truck]())
	_ = r.EnableStaticInjection(typekey.Of[*dieselEngine]())
	_ = r.EnableStaticInjection(typekey.Of[*truck]())

	s, err := r.Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	want := []typekey.Key{typekey.Of[*truck](), typekey.Of[*dieselEngine]()}
	if len(s.StaticTypes) != len(want) {
		t.Fatalf("static types = %v, want %v", s.StaticTypes, want)
	}
	for i := range want {
		if s.StaticTypes[i] != want[i] {
			t.Errorf("static types[%d] = %s, want %s", i, s.StaticTypes[i], want[i])
		}
	}
}

func TestDefaultActiveScopes(t *testing.T) {
	s, err := NewRegistry().Freeze()
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if !s.ActiveScopes.Contains(marker.Multiton) {
		t.Error("multiton scope is not active by default")
	}
}
