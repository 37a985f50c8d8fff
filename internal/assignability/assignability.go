// Package assignability implements the assignability service:
// shortest-path search over the type graph's equality (weight 0),
// sub-type (weight 1), and implicit-conversion (weight 2) edges.
//
// The search only ever traverses edges already recorded in the graph — it
// does not itself invoke a kind's equality/sub-type analyzer for arbitrary
// intermediate pairs along a candidate path, matching how the rest of the
// engine populates those edges: explicit marks (internal/relation.SubType.
// MarkAsSubType, made by the host, by the top-class factory for each
// completed class, and by a custom kind's relationship hooks), and a
// successful direct equality/sub-type query memoizes its own edge as
// a side effect. The one exception is the source/target pair itself, which
// this package asks relation.Equality/relation.SubType about directly
// before falling back to the graph search, so a structural relation that
// was never queried before still resolves on the first assignability
// check.
package assignability

import (
	"container/heap"

	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/typeerr"
)

// Step describes one hop of a discovered assignability path, for callers
// that want to render the chain (e.g. the inspection CLI's trace output).
type Step struct {
	From, To *kind.Node
	Label    graph.Label
	Cost     int
}

// Assignability ties the graph together with the three relational
// services that supply its edge weights.
type Assignability struct {
	g    *graph.Graph
	eq   *relation.Equality
	sub  *relation.SubType
	conv *relation.Conversion
}

// New builds an Assignability service sharing g, eq, sub and conv with the
// rest of the engine.
func New(g *graph.Graph, eq *relation.Equality, sub *relation.SubType, conv *relation.Conversion) *Assignability {
	return &Assignability{g: g, eq: eq, sub: sub, conv: conv}
}

// IsAssignable reports whether source is assignable to target.
func (a *Assignability) IsAssignable(source, target *kind.Node) bool {
	_, ok := a.Path(source, target)
	return ok
}

// GetAssignabilityProblem returns nil if source is assignable to target, or
// a diagnostic otherwise.
func (a *Assignability) GetAssignabilityProblem(source, target *kind.Node) *typeerr.Problem {
	if _, ok := a.Path(source, target); ok {
		return nil
	}
	return typeerr.AssignabilityProblem(source, target)
}

// Path returns the cheapest chain of relational edges from source to
// target, if any exists. An empty, ok=true path means source and target
// are the identical node.
func (a *Assignability) Path(source, target *kind.Node) ([]Step, bool) {
	if source == nil || target == nil {
		return nil, false
	}
	if source == target {
		return nil, true
	}

	// Force direct derivation of the endpoint pair so a structural
	// relation that was never queried before still shows up as an edge
	// for the search below.
	a.eq.AreEqual(source, target)
	a.sub.IsSubType(source, target)

	return a.dijkstra(source, target)
}

type pqEntry struct {
	node *kind.Node
	dist int
	path []Step
}

type priorityQueue []*pqEntry

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)         { *pq = append(*pq, x.(*pqEntry)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra runs a standard shortest-path search from source to target over
// the graph's equality/sub-type/conversion edges, weighted 0/1/2
// respectively.
func (a *Assignability) dijkstra(source, target *kind.Node) ([]Step, bool) {
	best := map[string]int{source.Identifier(): 0}
	pq := &priorityQueue{{node: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqEntry)
		if cur.node == target {
			return cur.path, true
		}
		if d, ok := best[cur.node.Identifier()]; ok && cur.dist > d {
			continue
		}
		for _, hop := range a.outgoing(cur.node) {
			next := cur.dist + hop.Cost
			id := hop.To.Identifier()
			if d, ok := best[id]; ok && d <= next {
				continue
			}
			best[id] = next
			path := append(append([]Step{}, cur.path...), hop)
			heap.Push(pq, &pqEntry{node: hop.To, dist: next, path: path})
		}
	}
	return nil, false
}

// outgoing lists every relational edge leaving n, with its assignability
// weight.
func (a *Assignability) outgoing(n *kind.Node) []Step {
	var out []Step
	for _, e := range a.g.GetEdges(n, nil, graph.LabelEquality) {
		if to, ok := e.To().(*kind.Node); ok {
			out = append(out, Step{From: n, To: to, Label: graph.LabelEquality, Cost: 0})
		}
	}
	for _, e := range a.g.GetEdges(n, nil, graph.LabelSubType) {
		if to, ok := e.To().(*kind.Node); ok {
			out = append(out, Step{From: n, To: to, Label: graph.LabelSubType, Cost: 1})
		}
	}
	for _, e := range a.g.GetEdges(n, nil, graph.LabelConversion) {
		if a.conv.IsConvertibleImplicitly(n, mustNode(e.To())) {
			out = append(out, Step{From: n, To: mustNode(e.To()), Label: graph.LabelConversion, Cost: 2})
		}
	}
	return out
}

func mustNode(t graph.TypeNode) *kind.Node {
	n, _ := t.(*kind.Node)
	return n
}
