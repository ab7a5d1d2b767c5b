package di

import (
	"fmt"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/typekey"
)

// BindingInfo describes one request the injector can answer.
type BindingInfo struct {
	Request        Request      `json:"-"`
	Type           string       `json:"type"`
	Qualifier      string       `json:"qualifier,omitempty"`
	Kind           BindingKind  `json:"kind"`
	Strategy       Strategy     `json:"strategy"`
	Scope          string       `json:"scope,omitempty"`
	Provider       string       `json:"provider"`
	Source         string       `json:"source,omitempty"`
	Implementation typekey.Key  `json:"-"`
	Members        []MemberInfo `json:"members,omitempty"`
}

// MemberInfo describes one member of an aggregate binding.
type MemberInfo struct {
	Provider       string      `json:"provider"`
	Source         string      `json:"source"`
	Strategy       Strategy    `json:"strategy"`
	Key            string      `json:"key,omitempty"`
	Implementation typekey.Key `json:"-"`
}

type graph struct {
	providers map[Request]provider
	bindings  []BindingInfo
}

type graphBuilder struct {
	intro   introspect.Introspector
	g       *graph
	byType  map[typekey.Key]provider
	ids     map[provider]string
	groups  map[Request]*aggregateInstantiator
	infoIdx map[Request]int
}

// buildGraph turns a snapshot into providers. Providers of implementation
// bindings are shared per implementation type, so every request bound to
// the same type reaches the same cache.
func buildGraph(s *Snapshot, intro introspect.Introspector) (*graph, error) {
	b := &graphBuilder{
		intro:   intro,
		g:       &graph{providers: make(map[Request]provider)},
		byType:  make(map[typekey.Key]provider),
		ids:     make(map[provider]string),
		groups:  make(map[Request]*aggregateInstantiator),
		infoIdx: make(map[Request]int),
	}

	for _, sb := range s.Strict {
		p, err := b.providerFor(sb.Source)
		if err != nil {
			return nil, err
		}
		for _, req := range sb.Requests {
			if err := b.bind(req, p); err != nil {
				return nil, err
			}
			b.g.bindings = append(b.g.bindings, BindingInfo{
				Request:        req,
				Type:           req.Type.String(),
				Qualifier:      req.Qualifier.String(),
				Kind:           KindStrict,
				Strategy:       p.strategy(),
				Scope:          b.scopeOf(p),
				Provider:       b.ids[p],
				Source:         sb.Source.String(),
				Implementation: sb.Source.Type(),
			})
		}
	}

	for _, mb := range s.Members {
		member, err := b.providerFor(mb.Source)
		if err != nil {
			return nil, err
		}
		agg, err := b.group(mb)
		if err != nil {
			return nil, err
		}
		agg.add(member, mb.Key)

		info := &b.g.bindings[b.infoIdx[mb.Aggregate]]
		mi := MemberInfo{
			Provider:       b.ids[member],
			Source:         mb.Source.String(),
			Strategy:       member.strategy(),
			Implementation: mb.Source.Type(),
		}
		if mb.Kind == KindMap {
			mi.Key = fmt.Sprint(mb.Key)
		}
		info.Members = append(info.Members, mi)
	}
	return b.g, nil
}

func (b *graphBuilder) providerFor(src Source) (provider, error) {
	if src.HasInstance {
		p := &instanceProvider{value: src.Instance}
		b.register(p)
		return p, nil
	}
	if p, ok := b.byType[src.Implementation]; ok {
		return p, nil
	}
	s, scope, err := strategyFor(src.Implementation, b.intro.Scopes(src.Implementation))
	if err != nil {
		return nil, err
	}
	p := newProvider(s, scope, &standardInstantiator{typ: src.Implementation})
	b.byType[src.Implementation] = p
	b.register(p)
	return p, nil
}

func (b *graphBuilder) group(mb MemberBinding) (*aggregateInstantiator, error) {
	if agg, ok := b.groups[mb.Aggregate]; ok {
		return agg, nil
	}
	agg := &aggregateInstantiator{kind: mb.Kind, typ: mb.Aggregate.Type}
	p := newProvider(scopeStrategy(mb.Scope), mb.Scope, agg)
	if err := b.bind(mb.Aggregate, p); err != nil {
		return nil, err
	}
	b.register(p)
	b.groups[mb.Aggregate] = agg
	b.infoIdx[mb.Aggregate] = len(b.g.bindings)
	b.g.bindings = append(b.g.bindings, BindingInfo{
		Request:        mb.Aggregate,
		Type:           mb.Aggregate.Type.String(),
		Qualifier:      mb.Aggregate.Qualifier.String(),
		Kind:           mb.Kind,
		Strategy:       p.strategy(),
		Scope:          mb.Scope.String(),
		Provider:       b.ids[p],
		Implementation: mb.Aggregate.Type,
	})
	return agg, nil
}

func (b *graphBuilder) bind(req Request, p provider) error {
	if _, taken := b.g.providers[req]; taken {
		return errors.AmbiguousBinding(req.String())
	}
	b.g.providers[req] = p
	return nil
}

func (b *graphBuilder) register(p provider) {
	if _, ok := b.ids[p]; !ok {
		b.ids[p] = fmt.Sprintf("p%d", len(b.ids)+1)
	}
}

func (b *graphBuilder) scopeOf(p provider) string {
	if sp, ok := p.(*scopedProvider); ok {
		return sp.scope.String()
	}
	return ""
}
