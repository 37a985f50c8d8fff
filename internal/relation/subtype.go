package relation

import (
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/typeerr"
)

// SubTypeAnalyzer is implemented by a kind's payload to decide whether this
// node is a sub-type of candidateSuper.
type SubTypeAnalyzer interface {
	AnalyzeSubType(candidateSuper *kind.Node, svc *SubType) *typeerr.Problem
}

// SubType implements the engine's sub-typing service: reflexive, cached via
// positive-only memoization exactly like Equality, and layered on top of
// Equality so that "equal implies sub-type" holds without every kind having
// to special-case it in its own analyzer.
type SubType struct {
	g   *graph.Graph
	eq  *Equality
}

// NewSubType builds a SubType service sharing g with eq.
func NewSubType(g *graph.Graph, eq *Equality) *SubType {
	return &SubType{g: g, eq: eq}
}

type subTypeEdge struct {
	from, to    *kind.Node
	cycleClass  string
}

func (e subTypeEdge) Label() graph.Label   { return graph.LabelSubType }
func (e subTypeEdge) From() graph.TypeNode { return e.from }
func (e subTypeEdge) To() graph.TypeNode   { return e.to }
func (e subTypeEdge) CycleClass() string   { return e.cycleClass }

// IsSubType reports whether sub is a sub-type of super.
func (s *SubType) IsSubType(sub, super *kind.Node) bool {
	return s.GetSubTypeProblem(sub, super) == nil
}

// GetSubTypeProblem returns nil if sub is (reflexively, via equality, via a
// cached/explicit mark, or via its kind's analyzer) a sub-type of super.
func (s *SubType) GetSubTypeProblem(sub, super *kind.Node) *typeerr.Problem {
	if sub == nil || super == nil {
		return typeerr.NewProblem(typeerr.KindSubType, "cannot compare a nil type")
	}
	if sub == super {
		return nil
	}
	if s.eq.AreEqual(sub, super) {
		return nil
	}
	if len(s.g.GetEdges(sub, super, graph.LabelSubType)) > 0 {
		return nil
	}

	analyzer, ok := sub.Payload().(SubTypeAnalyzer)
	if !ok {
		return typeerr.SubTypeProblem(sub, super, "this kind does not support sub-type analysis")
	}
	problem := analyzer.AnalyzeSubType(super, s)
	if problem == nil {
		s.memoize(sub, super, "")
	}
	return problem
}

func (s *SubType) memoize(sub, super *kind.Node, cycleClass string) {
	if len(s.g.GetEdges(sub, super, graph.LabelSubType)) > 0 {
		return
	}
	_ = s.g.AddEdge(subTypeEdge{from: sub, to: super, cycleClass: cycleClass})
}

// MarkAsSubType records sub <: super directly, e.g. a host wiring a base
// interface onto a type whose kind cannot derive the relation
// structurally. When checkForCycles is
// true the edge participates in the graph's cycle check under the
// "subtype" class, so a mark that would close a sub-typing loop is
// rejected with *typeerr.CycleIntroduced instead of silently installed.
func (s *SubType) MarkAsSubType(sub, super *kind.Node, checkForCycles bool) error {
	if len(s.g.GetEdges(sub, super, graph.LabelSubType)) > 0 {
		return nil
	}
	class := ""
	if checkForCycles {
		class = "subtype"
	}
	return s.g.AddEdge(subTypeEdge{from: sub, to: super, cycleClass: class})
}

// UnmarkAsSubType removes a previously recorded sub-type edge between sub
// and super, forcing re-derivation on the next query.
func (s *SubType) UnmarkAsSubType(sub, super *kind.Node) {
	for _, edge := range s.g.GetEdges(sub, super, graph.LabelSubType) {
		s.g.RemoveEdge(edge)
	}
}
