package relation

import (
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/kind"
)

// InvalidationFlusher keeps Equality's and SubType's positive-only cache
// honest across a node's re-initialization round-trip: once a node
// re-enters Invalid it drops every equality/subtype edge touching it
// in either direction, so a pair that used to reference it re-derives the
// relation the next time it is asked instead of replaying a verdict
// computed against the node's now-discarded contents.
//
// Conversion edges are left alone: they are never derived structurally,
// only explicitly marked by a host through MarkAsConvertible, so a
// re-initialization round-trip has no bearing on them.
type InvalidationFlusher struct {
	g   *graph.Graph
	eq  *Equality
	sub *SubType
}

// NewInvalidationFlusher builds a flusher over g and subscribes it to
// every node already present plus every node added afterwards.
func NewInvalidationFlusher(g *graph.Graph, eq *Equality, sub *SubType) *InvalidationFlusher {
	f := &InvalidationFlusher{g: g, eq: eq, sub: sub}
	g.AddListener(f, graph.ListenOptions{CallOnAddedForAllExisting: true})
	return f
}

// OnAddedType subscribes the flusher as a state listener on n so it learns
// about n's own future invalidations (the graph-level listener protocol
// only reports node addition/removal, not a live node's state changes).
func (f *InvalidationFlusher) OnAddedType(t graph.TypeNode) {
	if n, ok := t.(*kind.Node); ok {
		n.AddStateListener(f, false)
	}
}

// OnRemovedType is a no-op: graph.RemoveNode already strips every incident
// edge before this would ever fire.
func (f *InvalidationFlusher) OnRemovedType(graph.TypeNode) {}

func (f *InvalidationFlusher) OnSwitchedToIdentifiable(*kind.Node) {}
func (f *InvalidationFlusher) OnSwitchedToCompleted(*kind.Node)    {}

// OnSwitchedToInvalid flushes every cached equality/subtype edge incident
// on n, in both directions.
func (f *InvalidationFlusher) OnSwitchedToInvalid(n *kind.Node) {
	for _, label := range [...]graph.Label{graph.LabelEquality, graph.LabelSubType} {
		for _, e := range f.g.GetEdges(n, nil, label) {
			f.g.RemoveEdge(e)
		}
		for _, e := range f.g.GetEdges(nil, n, label) {
			f.g.RemoveEdge(e)
		}
	}
}
