// Package relation implements the engine's relational services:
// equality, sub-typing, and convertibility, each backed by cached edges on
// the shared type graph. Per-kind comparison logic is not known to this
// package; it is supplied by the concrete kind payload stored in a
// kind.Node, through the EqualityAnalyzer/SubTypeAnalyzer interfaces below,
// following the same structural-capability pattern already used for
// kind.Descriptor and kind.DescriptorResolver.
package relation

import (
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/typeerr"
)

// EqualityAnalyzer is implemented by a kind's payload (e.g. kinds.ClassType)
// to decide structural/nominal equality against another node of a kind it
// knows how to compare against. svc lets the analyzer recurse into the
// Equality service for nested types (field types, parameter types, ...).
type EqualityAnalyzer interface {
	AnalyzeTypeEquality(other *kind.Node, svc *Equality) *typeerr.Problem
}

// Equality implements the engine's equality service. Only positive results
// (problem == nil) are memoized as graph edges; a negative verdict is never
// cached, so markAsEqual's required propagation to "every current user of a
// or b" falls out for free — a user re-derives its own equality the next
// time it is asked, and will now find the newly-marked edge.
//
// A positive verdict reached while another pair's own analyzer is running
// (e.g. two function types comparing a parameter type pairwise) is recorded
// as a dependency: the outer pair's memoized edge is only as good as the
// inner pair's. dependents lets UnmarkAsEqual cascade: retracting a or b's
// equality also drops every edge that was derived while it held, instead of
// leaving those stale and positive in the graph.
type Equality struct {
	g *graph.Graph

	stack      []pairKey
	dependents map[pairKey]map[pairKey]bool
}

// NewEquality builds an Equality service over g.
func NewEquality(g *graph.Graph) *Equality {
	return &Equality{g: g, dependents: make(map[pairKey]map[pairKey]bool)}
}

// pairKey is an order-independent identity for an unordered pair of nodes.
type pairKey struct{ a, b string }

func normalizedPair(a, b *kind.Node) pairKey {
	ai, bi := a.Identifier(), b.Identifier()
	if ai > bi {
		ai, bi = bi, ai
	}
	return pairKey{ai, bi}
}

type equalityEdge struct {
	from, to *kind.Node
}

func (e equalityEdge) Label() graph.Label   { return graph.LabelEquality }
func (e equalityEdge) From() graph.TypeNode { return e.from }
func (e equalityEdge) To() graph.TypeNode   { return e.to }

// AreEqual reports whether a and b are equal, per GetTypeEqualityProblem.
func (e *Equality) AreEqual(a, b *kind.Node) bool {
	return e.GetTypeEqualityProblem(a, b) == nil
}

// GetTypeEqualityProblem returns nil when a and b are equal (reflexively,
// via a cached/explicit mark, or via the pair's kind-specific analyzer), or
// a Problem explaining why they are not.
func (e *Equality) GetTypeEqualityProblem(a, b *kind.Node) *typeerr.Problem {
	if a == nil || b == nil {
		return typeerr.NewProblem(typeerr.KindEquality, "cannot compare a nil type")
	}
	if a == b {
		return nil
	}
	key := normalizedPair(a, b)
	if e.cached(a, b) {
		e.recordDependency(key)
		return nil
	}

	e.stack = append(e.stack, key)
	analyzer, ok := a.Payload().(EqualityAnalyzer)
	var problem *typeerr.Problem
	if ok {
		problem = analyzer.AnalyzeTypeEquality(b, e)
	} else {
		problem = typeerr.EqualityProblem(a, b, "this kind does not support equality analysis")
	}
	e.stack = e.stack[:len(e.stack)-1]
	if problem != nil {
		return problem
	}
	e.memoize(a, b)
	e.recordDependency(key)
	return nil
}

// recordDependency attributes key's positive verdict to whichever pair is
// currently being analyzed further up the stack, if any. A top-level query
// (empty stack) has no one to attribute it to.
func (e *Equality) recordDependency(key pairKey) {
	if len(e.stack) == 0 {
		return
	}
	top := e.stack[len(e.stack)-1]
	if top == key {
		return
	}
	if e.dependents[key] == nil {
		e.dependents[key] = make(map[pairKey]bool)
	}
	e.dependents[key][top] = true
}

func (e *Equality) cached(a, b *kind.Node) bool {
	return len(e.g.GetEdges(a, b, graph.LabelEquality)) > 0 ||
		len(e.g.GetEdges(b, a, graph.LabelEquality)) > 0
}

// memoize records a positive verdict in both directions, matching
// MarkAsEqual's discipline, so the edge is discoverable from either
// endpoint regardless of which order future queries arrive in.
func (e *Equality) memoize(a, b *kind.Node) {
	if e.cached(a, b) {
		return
	}
	_ = e.g.AddEdge(equalityEdge{from: a, to: b})
	_ = e.g.AddEdge(equalityEdge{from: b, to: a})
}

// MarkAsEqual records a and b as equal directly, without running any
// analyzer, e.g. a host declaring two distinct nominal types
// interchangeable.
func (e *Equality) MarkAsEqual(a, b *kind.Node) {
	e.memoize(a, b)
}

// UnmarkAsEqual removes a previously explicit or derived equality mark
// between a and b, and cascades to every pair whose own positive verdict
// was reached while a and b were known equal. Without this, a memoized
// edge like two function types compared equal through their parameter
// types would keep reporting equal after the parameter types themselves
// stopped being equal.
func (e *Equality) UnmarkAsEqual(a, b *kind.Node) {
	e.flush(normalizedPair(a, b), make(map[pairKey]bool))
}

func (e *Equality) flush(key pairKey, seen map[pairKey]bool) {
	if seen[key] {
		return
	}
	seen[key] = true

	if na, ok := e.g.GetType(key.a); ok {
		if nb, ok2 := e.g.GetType(key.b); ok2 {
			for _, edge := range e.g.GetEdges(na, nb, graph.LabelEquality) {
				e.g.RemoveEdge(edge)
			}
			for _, edge := range e.g.GetEdges(nb, na, graph.LabelEquality) {
				e.g.RemoveEdge(edge)
			}
		}
	}

	deps := e.dependents[key]
	delete(e.dependents, key)
	for dep := range deps {
		e.flush(dep, seen)
	}
}
