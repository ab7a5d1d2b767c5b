package di

import (
	"fmt"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

// StrictBinding is a frozen strict binding.
type StrictBinding struct {
	Source   Source
	Requests []Request
}

// MemberBinding is a frozen contribution to a map, list or set aggregate.
type MemberBinding struct {
	Source    Source
	Kind      BindingKind
	Aggregate Request
	Key       any
	Scope     marker.Marker
}

// Snapshot is the immutable result of freezing a registry.
type Snapshot struct {
	ActiveScopes marker.Set
	Policy       introspect.Policy
	StaticTypes  []typekey.Key
	Strict       []StrictBinding
	Members      []MemberBinding
}

// Freeze validates the registry and returns its snapshot. The registry
// rejects every later change, including a second Freeze. Ambiguous requests,
// duplicate map keys, unconfigured handles and conflicting aggregate scopes
// fail here.
func (r *Registry) Freeze() (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return nil, errors.RegistryFrozen("freeze twice")
	}
	r.frozen = true

	s := &Snapshot{
		ActiveScopes: append(marker.Set(nil), r.scopes...),
		Policy:       r.policy,
		StaticTypes:  append([]typekey.Key(nil), r.statics...),
	}

	owners := make(map[Request]BindingKind)
	groupScopes := make(map[Request]marker.Marker)
	mapKeys := make(map[Request]map[any]bool)

	for _, h := range r.handles {
		if h.err != nil {
			return nil, h.err
		}
		if h.kind == "" {
			return nil, errors.BindingIncomplete(h.source.String())
		}

		if h.kind == KindStrict {
			for _, req := range h.requests {
				if _, taken := owners[req]; taken {
					return nil, errors.AmbiguousBinding(req.String())
				}
				owners[req] = KindStrict
			}
			s.Strict = append(s.Strict, StrictBinding{
				Source:   h.source,
				Requests: append([]Request(nil), h.requests...),
			})
			continue
		}

		agg := h.aggregate
		if owner, taken := owners[agg]; taken && owner != h.kind {
			return nil, errors.AmbiguousBinding(agg.String())
		}
		owners[agg] = h.kind

		if scope, seen := groupScopes[agg]; seen && scope != h.scope {
			return nil, errors.InvalidBinding(fmt.Sprintf(
				"aggregate %s has conflicting scopes %q and %q", agg, scope.String(), h.scope.String()))
		}
		groupScopes[agg] = h.scope

		if h.kind == KindMap {
			if mapKeys[agg] == nil {
				mapKeys[agg] = make(map[any]bool)
			}
			if mapKeys[agg][h.key] {
				return nil, errors.DuplicateMapKey(h.key, agg.String())
			}
			mapKeys[agg][h.key] = true
		}

		s.Members = append(s.Members, MemberBinding{
			Source:    h.source,
			Kind:      h.kind,
			Aggregate: agg,
			Key:       h.key,
			Scope:     h.scope,
		})
	}
	return s, nil
}
