// Package graph implements the type graph: a labeled directed multigraph of
// type nodes connected by relational edges (sub-type, conversion, equality,
// inference-cache), with a listener protocol for node addition/removal.
package graph

import "github.com/cwbudde/typir/typeerr"

// TypeNode is the minimal shape the graph needs from a type node: a stable
// identifier. The concrete node type (internal/kind.Node) lives in a
// separate package to avoid an import cycle — kind.Node depends on Graph to
// install itself, so Graph cannot depend back on kind.Node.
type TypeNode interface {
	Identifier() string
}

// Label discriminates the kind of relational edge.
type Label string

const (
	LabelSubType    Label = "subtype"
	LabelConversion Label = "conversion"
	LabelEquality   Label = "equality"
	LabelInference  Label = "inference"
)

// Edge is a directed, labeled connection between two nodes.
type Edge interface {
	Label() Label
	From() TypeNode
	To() TypeNode
}

// CycleParticipant is implemented by edges that may need to be rejected
// when adding them would close a cycle: IMPLICIT_EXPLICIT conversion
// edges; optionally sub-type edges when markAsSubType is asked to check.
// CycleClass partitions the edge set so that, e.g.,
// EXPLICIT-only conversion edges never interfere with the
// IMPLICIT_EXPLICIT cycle check; an empty CycleClass means "this edge
// instance opts out of cycle checking entirely".
type CycleParticipant interface {
	Edge
	CycleClass() string
}

// Listener is notified after a node is installed or removed from the graph.
type Listener interface {
	OnAddedType(t TypeNode)
	OnRemovedType(t TypeNode)
}

// ListenOptions configures AddListener.
type ListenOptions struct {
	// CallOnAddedForAllExisting replays OnAddedType for every type already
	// registered, synchronously, before AddListener returns ("inform-now"
	// semantics applied to the graph's own listener protocol).
	CallOnAddedForAllExisting bool
}

// Graph is the single shared mutable type graph. It is not safe for
// concurrent use from multiple goroutines — the engine is single-threaded
// cooperative; all mutation funnels through one caller at a
// time, and re-entrant calls from listeners operate on the post-mutation
// state directly (there is no separate "commit" step to race against).
type Graph struct {
	nodes    map[string]TypeNode
	altIndex map[string]TypeNode
	edges    []Edge
	byFrom   map[string][]int
	byTo     map[string][]int
	listener []Listener
}

// New creates an empty type graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]TypeNode),
		altIndex: make(map[string]TypeNode),
		byFrom:   make(map[string][]int),
		byTo:     make(map[string][]int),
	}
}

// AddNode installs t under its identifier, and optionally under altKey too
// (structural classes are additionally indexed by class name). Fails with
// *typeerr.DuplicateType if the identifier already resolves to a live
// node.
func (g *Graph) AddNode(t TypeNode, altKey string) error {
	id := t.Identifier()
	if _, exists := g.nodes[id]; exists {
		return &typeerr.DuplicateType{Identifier: id}
	}
	g.nodes[id] = t
	if altKey != "" {
		g.altIndex[altKey] = t
	}
	// O3: onAddedType fires after the node is visible via GetType.
	for _, l := range g.listener {
		l.OnAddedType(t)
	}
	return nil
}

// RemoveNode removes t and every incident edge before notifying
// listeners.
func (g *Graph) RemoveNode(t TypeNode, altKey string) {
	id := t.Identifier()
	if _, ok := g.nodes[id]; !ok {
		return
	}
	g.removeIncidentEdges(id)
	delete(g.nodes, id)
	if altKey != "" {
		delete(g.altIndex, altKey)
	}
	for _, l := range g.listener {
		l.OnRemovedType(t)
	}
}

func (g *Graph) removeIncidentEdges(id string) {
	keep := g.edges[:0:0]
	for _, e := range g.edges {
		if e.From().Identifier() == id || e.To().Identifier() == id {
			continue
		}
		keep = append(keep, e)
	}
	g.edges = keep
	g.reindexEdges()
}

func (g *Graph) reindexEdges() {
	g.byFrom = make(map[string][]int, len(g.edges))
	g.byTo = make(map[string][]int, len(g.edges))
	for i, e := range g.edges {
		from, to := e.From().Identifier(), e.To().Identifier()
		g.byFrom[from] = append(g.byFrom[from], i)
		g.byTo[to] = append(g.byTo[to], i)
	}
}

// GetType looks a node up by its stable identifier.
func (g *Graph) GetType(identifier string) (TypeNode, bool) {
	t, ok := g.nodes[identifier]
	return t, ok
}

// GetTypeByAltKey looks a node up by an auxiliary key (e.g. a structural
// class's bare class name).
func (g *Graph) GetTypeByAltKey(altKey string) (TypeNode, bool) {
	t, ok := g.altIndex[altKey]
	return t, ok
}

// GetAllRegisteredTypes returns every live node, in insertion order is not
// guaranteed (map-backed); callers that need determinism should sort by
// Identifier.
func (g *Graph) GetAllRegisteredTypes() []TypeNode {
	out := make([]TypeNode, 0, len(g.nodes))
	for _, t := range g.nodes {
		out = append(out, t)
	}
	return out
}

// AddListener registers l for future OnAddedType/OnRemovedType
// notifications, optionally replaying the current set of types first.
func (g *Graph) AddListener(l Listener, opts ListenOptions) {
	g.listener = append(g.listener, l)
	if opts.CallOnAddedForAllExisting {
		for _, t := range g.nodes {
			l.OnAddedType(t)
		}
	}
}

// RemoveListener unregisters l. No-op if l was never registered.
func (g *Graph) RemoveListener(l Listener) {
	for i, existing := range g.listener {
		if existing == l {
			g.listener = append(g.listener[:i], g.listener[i+1:]...)
			return
		}
	}
}

// AddEdge inserts e. If e is a CycleParticipant and inserting it would close
// a cycle among edges of the same CycleClass, AddEdge fails with
// *typeerr.CycleIntroduced and the graph is left unchanged.
func (g *Graph) AddEdge(e Edge) error {
	if cp, ok := e.(CycleParticipant); ok && cp.CycleClass() != "" {
		if g.reaches(e.To().Identifier(), e.From().Identifier(), cp.CycleClass()) {
			return &typeerr.CycleIntroduced{
				From: e.From().Identifier(),
				To:   e.To().Identifier(),
				Mode: cp.CycleClass(),
			}
		}
	}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	from, to := e.From().Identifier(), e.To().Identifier()
	g.byFrom[from] = append(g.byFrom[from], idx)
	g.byTo[to] = append(g.byTo[to], idx)
	return nil
}

// reaches reports whether there is a path from -> to using only edges whose
// CycleClass equals class.
func (g *Graph) reaches(from, to, class string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, idx := range g.byFrom[cur] {
			e := g.edges[idx]
			cp, ok := e.(CycleParticipant)
			if !ok || cp.CycleClass() != class {
				continue
			}
			next := e.To().Identifier()
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// RemoveEdge removes the first edge equal to e (by pointer/value identity
// through ==, as Go interfaces compare).
func (g *Graph) RemoveEdge(e Edge) {
	for i, existing := range g.edges {
		if existing == e {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			g.reindexEdges()
			return
		}
	}
}

// GetEdges returns edges matching the given filters; a nil from/to/label
// argument (empty string for label) means "don't filter on this field".
func (g *Graph) GetEdges(from, to TypeNode, label Label) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if from != nil && e.From().Identifier() != from.Identifier() {
			continue
		}
		if to != nil && e.To().Identifier() != to.Identifier() {
			continue
		}
		if label != "" && e.Label() != label {
			continue
		}
		out = append(out, e)
	}
	return out
}
