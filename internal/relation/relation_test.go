package relation_test

import (
	"testing"

	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/typeerr"
	"github.com/stretchr/testify/require"
)

// primitiveNode is a minimal EqualityAnalyzer/SubTypeAnalyzer backing a
// node by a bare name, enough to exercise relation's generic machinery
// without pulling in package kinds (which already depends on relation).
type primitiveNode struct {
	*kind.Node
	name      string
	superName string
}

func (p *primitiveNode) AnalyzeTypeEquality(other *kind.Node, svc *relation.Equality) *typeerr.Problem {
	o, ok := other.Payload().(*primitiveNode)
	if ok && o.name == p.name {
		return nil
	}
	return typeerr.EqualityProblem(p.Node, other, "different primitives")
}

func (p *primitiveNode) AnalyzeSubType(candidateSuper *kind.Node, svc *relation.SubType) *typeerr.Problem {
	if sup, ok := candidateSuper.Payload().(*primitiveNode); ok && sup.name == p.superName {
		return nil
	}
	return typeerr.SubTypeProblem(p.Node, candidateSuper, "no declared super")
}

// compositeNode wraps a single nested type and delegates equality to it,
// mirroring how a function type's equality recurses into a parameter type.
type compositeNode struct {
	*kind.Node
	of *kind.Node
}

func (c *compositeNode) AnalyzeTypeEquality(other *kind.Node, svc *relation.Equality) *typeerr.Problem {
	o, ok := other.Payload().(*compositeNode)
	if !ok {
		return typeerr.EqualityProblem(c.Node, other, "the other type is not a composite")
	}
	if svc.AreEqual(c.of, o.of) {
		return nil
	}
	return typeerr.EqualityProblem(c.Node, other, "nested types are not equal")
}

func addComposite(t *testing.T, g *graph.Graph, id string, of *kind.Node) *compositeNode {
	t.Helper()
	n := kind.NewNode("composite")
	n.MarkIdentifiable(id, id, id)
	c := &compositeNode{Node: n, of: of}
	n.SetPayload(c)
	require.NoError(t, g.AddNode(n, ""))
	return c
}

func setupGraph(t *testing.T) (*graph.Graph, *relation.Equality, *relation.SubType) {
	t.Helper()
	g := graph.New()
	eq := relation.NewEquality(g)
	sub := relation.NewSubType(g, eq)
	relation.NewInvalidationFlusher(g, eq, sub)
	return g, eq, sub
}

func addPrimitive(t *testing.T, g *graph.Graph, id string) *primitiveNode {
	t.Helper()
	n := kind.NewNode("primitive")
	n.MarkIdentifiable(id, id, id)
	p := &primitiveNode{Node: n, name: id}
	n.SetPayload(p)
	require.NoError(t, g.AddNode(n, ""))
	return p
}

func TestEqualityReflexive(t *testing.T) {
	g, eq, _ := setupGraph(t)
	a := addPrimitive(t, g, "integer")
	require.True(t, eq.AreEqual(a.Node, a.Node))
}

func TestEqualityDerivedAndMemoized(t *testing.T) {
	g, eq, _ := setupGraph(t)
	a := addPrimitive(t, g, "integer-a")
	b := addPrimitive(t, g, "integer-b")
	b.name = a.name

	require.True(t, eq.AreEqual(a.Node, b.Node))
	require.Len(t, g.GetEdges(a.Node, b.Node, graph.LabelEquality), 1, "positive verdict is memoized as an edge")
}

func TestEqualityNegativeVerdictNotMemoized(t *testing.T) {
	g, eq, _ := setupGraph(t)
	a := addPrimitive(t, g, "integer")
	b := addPrimitive(t, g, "string")

	require.False(t, eq.AreEqual(a.Node, b.Node))
	require.Empty(t, g.GetEdges(a.Node, b.Node, graph.LabelEquality))
}

func TestMarkAsEqualIsSymmetric(t *testing.T) {
	g, eq, _ := setupGraph(t)
	a := addPrimitive(t, g, "integer")
	b := addPrimitive(t, g, "string")

	eq.MarkAsEqual(a.Node, b.Node)
	require.True(t, eq.AreEqual(a.Node, b.Node))
	require.True(t, eq.AreEqual(b.Node, a.Node))
}

func TestUnmarkAsEqualForcesRederivation(t *testing.T) {
	g, eq, _ := setupGraph(t)
	a := addPrimitive(t, g, "integer")
	b := addPrimitive(t, g, "string")

	eq.MarkAsEqual(a.Node, b.Node)
	eq.UnmarkAsEqual(a.Node, b.Node)
	require.False(t, eq.AreEqual(a.Node, b.Node))
}

func TestUnmarkAsEqualCascadesToDerivedUsers(t *testing.T) {
	g, eq, _ := setupGraph(t)
	a := addPrimitive(t, g, "a")
	b := addPrimitive(t, g, "b")
	eq.MarkAsEqual(a.Node, b.Node)

	f := addComposite(t, g, "f", a.Node)
	before := addComposite(t, g, "before", a.Node)
	require.True(t, eq.AreEqual(f.Node, before.Node), "both wrap a, trivially equal")

	after := addComposite(t, g, "after", b.Node)
	require.True(t, eq.AreEqual(f.Node, after.Node), "f wraps a, after wraps b, and a equals b")

	eq.UnmarkAsEqual(a.Node, b.Node)

	require.False(t, eq.AreEqual(a.Node, b.Node))
	require.False(t, eq.AreEqual(f.Node, after.Node), "f-after's equality depended on a equalling b")
	require.True(t, eq.AreEqual(f.Node, before.Node), "f-before never depended on a equalling b")
}

func TestSubTypeViaEqualityFallback(t *testing.T) {
	g, _, sub := setupGraph(t)
	a := addPrimitive(t, g, "integer-a")
	b := addPrimitive(t, g, "integer-b")
	b.name = a.name

	require.True(t, sub.IsSubType(a.Node, b.Node))
}

func TestSubTypeDerivedFromAnalyzer(t *testing.T) {
	g, _, sub := setupGraph(t)
	base := addPrimitive(t, g, "number")
	child := addPrimitive(t, g, "integer")
	child.superName = "number"

	require.True(t, sub.IsSubType(child.Node, base.Node))
}

func TestMarkAsSubTypeRejectsCycle(t *testing.T) {
	g, _, sub := setupGraph(t)
	a := addPrimitive(t, g, "a")
	b := addPrimitive(t, g, "b")

	require.NoError(t, sub.MarkAsSubType(a.Node, b.Node, true))
	err := sub.MarkAsSubType(b.Node, a.Node, true)
	require.Error(t, err)
	var cyc *typeerr.CycleIntroduced
	require.ErrorAs(t, err, &cyc)
}

func TestInvalidationFlusherDropsEdgesOnReinvalidation(t *testing.T) {
	g, eq, _ := setupGraph(t)
	a := addPrimitive(t, g, "integer-a")
	b := addPrimitive(t, g, "integer-b")
	b.name = a.name

	require.True(t, eq.AreEqual(a.Node, b.Node))
	require.NotEmpty(t, g.GetEdges(a.Node, b.Node, graph.LabelEquality))

	a.Node.MarkInvalid()

	require.Empty(t, g.GetEdges(a.Node, b.Node, graph.LabelEquality))
	require.Empty(t, g.GetEdges(b.Node, a.Node, graph.LabelEquality))
}

func TestConversionExplicitDoesNotImplyImplicit(t *testing.T) {
	g := graph.New()
	conv := relation.NewConversion(g)
	a := addPrimitive(t, g, "integer")
	b := addPrimitive(t, g, "string")

	require.NoError(t, conv.MarkAsConvertible(a.Node, b.Node, relation.ConversionExplicit))
	require.True(t, conv.IsConvertibleExplicitly(a.Node, b.Node))
	require.False(t, conv.IsConvertibleImplicitly(a.Node, b.Node))
}

func TestConversionImplicitExplicitRejectsCycle(t *testing.T) {
	g := graph.New()
	conv := relation.NewConversion(g)
	a := addPrimitive(t, g, "a")
	b := addPrimitive(t, g, "b")

	require.NoError(t, conv.MarkAsConvertible(a.Node, b.Node, relation.ConversionImplicitExplicit))
	err := conv.MarkAsConvertible(b.Node, a.Node, relation.ConversionImplicitExplicit)
	require.Error(t, err)
}

func TestConversionExplicitOnlyEdgesExemptFromCycleCheck(t *testing.T) {
	g := graph.New()
	conv := relation.NewConversion(g)
	a := addPrimitive(t, g, "a")
	b := addPrimitive(t, g, "b")

	require.NoError(t, conv.MarkAsConvertible(a.Node, b.Node, relation.ConversionExplicit))
	require.NoError(t, conv.MarkAsConvertible(b.Node, a.Node, relation.ConversionExplicit))
}
