package inspect

import (
	"fmt"

	"github.com/kbukum/inject/di"
	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/typekey"
)

// Graph is the injector view Analyze needs. *di.Injector implements it.
type Graph interface {
	Bindings() []di.BindingInfo
	Profile(t typekey.Key) (*introspect.Profile, error)
}

// Node is one provider of the graph.
type Node struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Kind      string      `json:"kind"`
	Strategy  di.Strategy `json:"strategy"`
	Requests  []string    `json:"requests,omitempty"`
	DependsOn []string    `json:"depends_on,omitempty"`
	Deferred  []string    `json:"deferred,omitempty"`
}

// Missing is a dependency no binding answers.
type Missing struct {
	Provider string `json:"provider"`
	Request  string `json:"request"`
}

// Invalid is a provider whose type has no usable injection profile.
type Invalid struct {
	Provider string `json:"provider"`
	Error    string `json:"error"`
}

// Report is the result of Analyze.
type Report struct {
	Nodes   []Node     `json:"nodes"`
	Levels  [][]string `json:"levels"`
	Cycle   []string   `json:"cycle,omitempty"`
	Missing []Missing  `json:"missing,omitempty"`
	Invalid []Invalid  `json:"invalid,omitempty"`
}

// Node returns the node with id.
func (r *Report) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// LevelOf returns the level of the node with id, or -1.
func (r *Report) LevelOf(id string) int {
	for i, level := range r.Levels {
		for _, n := range level {
			if n == id {
				return i
			}
		}
	}
	return -1
}

type analysis struct {
	g         Graph
	report    *Report
	index     map[string]int
	byRequest map[di.Request]string
	sources   map[string]typekey.Key
}

// Analyze builds the dependency report of g. When the eager graph has a
// cycle it returns the report, with the nodes on or behind the cycle in
// Cycle, together with a CYCLE_DETECTED error.
func Analyze(g Graph) (*Report, error) {
	a := &analysis{
		g:         g,
		report:    &Report{},
		index:     make(map[string]int),
		byRequest: make(map[di.Request]string),
		sources:   make(map[string]typekey.Key),
	}

	for _, b := range g.Bindings() {
		n := a.node(b.Provider, b.Implementation, string(b.Kind), b.Strategy)
		n.Requests = append(n.Requests, b.Request.String())
		a.byRequest[b.Request] = b.Provider

		if b.Kind == di.KindStrict {
			a.source(b.Provider, b.Implementation, b.Strategy)
			continue
		}
		for _, m := range b.Members {
			a.node(m.Provider, m.Implementation, "member", m.Strategy)
			a.source(m.Provider, m.Implementation, m.Strategy)
			n = &a.report.Nodes[a.index[b.Provider]]
			n.DependsOn = appendOnce(n.DependsOn, m.Provider)
		}
	}

	for _, n := range a.report.Nodes {
		if t, ok := a.sources[n.ID]; ok {
			a.dependencies(n.ID, t)
		}
	}

	levels, rest := buildLevels(a.report.Nodes)
	a.report.Levels = levels
	if len(rest) > 0 {
		a.report.Cycle = rest
		return a.report, errors.CycleDetected(fmt.Sprintf("provider %s", rest[0]), rest)
	}
	return a.report, nil
}

func (a *analysis) node(id string, t typekey.Key, kind string, s di.Strategy) *Node {
	if i, ok := a.index[id]; ok {
		return &a.report.Nodes[i]
	}
	a.index[id] = len(a.report.Nodes)
	a.report.Nodes = append(a.report.Nodes, Node{ID: id, Type: t.String(), Kind: kind, Strategy: s})
	return &a.report.Nodes[len(a.report.Nodes)-1]
}

func (a *analysis) source(id string, t typekey.Key, s di.Strategy) {
	if s != di.StrategyInstance {
		a.sources[id] = t
	}
}

func (a *analysis) dependencies(id string, t typekey.Key) {
	profile, err := a.g.Profile(t)
	if err != nil {
		a.report.Invalid = append(a.report.Invalid, Invalid{Provider: id, Error: err.Error()})
		return
	}
	n := &a.report.Nodes[a.index[id]]
	for _, dep := range profile.Dependencies() {
		req := di.Request{Type: dep.Type, Qualifier: dep.Qualifier}
		if elem, ok := di.IsDeferred(dep.Type); ok {
			n.Deferred = appendOnce(n.Deferred, di.Request{Type: elem, Qualifier: dep.Qualifier}.String())
			continue
		}
		target, ok := a.byRequest[req]
		if !ok {
			a.report.Missing = append(a.report.Missing, Missing{Provider: id, Request: req.String()})
			continue
		}
		n.DependsOn = appendOnce(n.DependsOn, target)
	}
}

// buildLevels groups nodes with Kahn's algorithm, keeping node order within
// a level. It returns the ids left over when the graph has a cycle.
func buildLevels(nodes []Node) ([][]string, []string) {
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string)
	for _, n := range nodes {
		inDegree[n.ID] += 0
		for _, dep := range n.DependsOn {
			inDegree[n.ID]++
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	var levels [][]string
	done := make(map[string]bool, len(nodes))
	for len(queue) > 0 {
		levels = append(levels, queue)
		var next []string
		for _, id := range queue {
			done[id] = true
			for _, d := range dependents[id] {
				inDegree[d]--
				if inDegree[d] == 0 {
					next = append(next, d)
				}
			}
		}
		queue = next
	}

	var rest []string
	for _, n := range nodes {
		if !done[n.ID] {
			rest = append(rest, n.ID)
		}
	}
	return levels, rest
}

func appendOnce(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}
