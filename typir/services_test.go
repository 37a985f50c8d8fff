package typir_test

import (
	"context"
	"testing"

	"github.com/cwbudde/typir/internal/inference"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/kinds"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/internal/resolver"
	"github.com/cwbudde/typir/internal/rules"
	"github.com/cwbudde/typir/internal/validation"
	"github.com/cwbudde/typir/typir"
	"github.com/stretchr/testify/require"
)

type intLit struct{}
type strLit struct{}
type binaryPlus struct{ left, right any }

type testLanguage struct{}

func (testLanguage) IsLanguageNode(x any) bool {
	switch x.(type) {
	case intLit, strLit, binaryPlus:
		return true
	default:
		return false
	}
}

func (testLanguage) GetLanguageNodeKey(x any) string {
	switch x.(type) {
	case intLit:
		return "intLit"
	case strLit:
		return "strLit"
	case binaryPlus:
		return "binaryPlus"
	default:
		return ""
	}
}

func (testLanguage) GetAllSuperKeys(string) []string { return nil }

func desc(n *kind.Node) resolver.NodeDescriptor { return resolver.NodeDescriptor{Node: n} }

func TestPrimitivesDedupAndInferByLanguageKey(t *testing.T) {
	svc := typir.NewServices(testLanguage{}, typir.Config{})
	integer := svc.Kinds.Primitives.Create(kinds.PrimitiveDetails{
		Name: "integer",
		InferenceRules: []kinds.PrimitiveInferenceRule{
			{LanguageKeys: []string{"intLit"}, Matches: func(any) bool { return true }},
		},
	})
	again := svc.Kinds.Primitives.Create(kinds.PrimitiveDetails{Name: "integer"})
	require.Same(t, integer.Node(), again.Node())

	inferred, problem := svc.Inference.InferType(intLit{})
	require.Nil(t, problem)
	require.Same(t, integer.Node(), inferred)
}

func TestAssignabilityAcrossMarkedConversion(t *testing.T) {
	svc := typir.NewServices(testLanguage{}, typir.Config{})
	integer := svc.Kinds.Primitives.Create(kinds.PrimitiveDetails{Name: "integer"})
	double := svc.Kinds.Primitives.Create(kinds.PrimitiveDetails{Name: "double"})

	require.False(t, svc.Assignability.IsAssignable(integer.Node(), double.Node()))

	require.NoError(t, svc.Conversion.MarkAsConvertible(integer.Node(), double.Node(), relation.ConversionImplicitExplicit))
	require.True(t, svc.Assignability.IsAssignable(integer.Node(), double.Node()))
}

func TestStructuralClassEquivalenceAndSubTyping(t *testing.T) {
	svc := typir.NewServices(testLanguage{}, typir.Config{})
	integer := svc.Kinds.Primitives.Create(kinds.PrimitiveDetails{Name: "integer"})

	point2D := svc.Kinds.Classes.Create(kinds.ClassDetails{
		Name:   "Point2D",
		Typing: kinds.Structural,
		Fields: []kinds.FieldDetails{
			{Name: "x", Type: desc(integer.Node())},
			{Name: "y", Type: desc(integer.Node())},
		},
	})
	samePoint2D := svc.Kinds.Classes.Create(kinds.ClassDetails{
		Name:   "Point2D",
		Typing: kinds.Structural,
		Fields: []kinds.FieldDetails{
			{Name: "x", Type: desc(integer.Node())},
			{Name: "y", Type: desc(integer.Node())},
		},
	})
	require.Same(t, point2D.Node(), samePoint2D.Node())

	point3D := svc.Kinds.Classes.Create(kinds.ClassDetails{
		Name:   "Point3D",
		Typing: kinds.Structural,
		Fields: []kinds.FieldDetails{
			{Name: "x", Type: desc(integer.Node())},
			{Name: "y", Type: desc(integer.Node())},
			{Name: "z", Type: desc(integer.Node())},
		},
	})
	require.True(t, svc.Subtype.IsSubType(point3D.Node(), point2D.Node()), "point3D carries every field point2D requires")
}

func TestNominalInheritanceAndTopClass(t *testing.T) {
	svc := typir.NewServices(testLanguage{}, typir.Config{})
	shape := svc.Kinds.Classes.Create(kinds.ClassDetails{Name: "Shape", Typing: kinds.Nominal})
	circle := svc.Kinds.Classes.Create(kinds.ClassDetails{
		Name:         "Circle",
		Typing:       kinds.Nominal,
		SuperClasses: []kind.Descriptor{desc(shape.Node())},
	})

	require.True(t, svc.Subtype.IsSubType(circle.Node(), shape.Node()))
	require.True(t, svc.Subtype.IsSubType(circle.Node(), svc.Kinds.TopClass.Node()))
	require.True(t, svc.Subtype.IsSubType(shape.Node(), svc.Kinds.TopClass.Node()))
}

func TestOperatorOverloadResolutionPrefersExactMatch(t *testing.T) {
	svc := typir.NewServices(testLanguage{}, typir.Config{})
	integer := svc.Kinds.Primitives.Create(kinds.PrimitiveDetails{
		Name: "integer",
		InferenceRules: []kinds.PrimitiveInferenceRule{
			{LanguageKeys: []string{"intLit"}, Matches: func(any) bool { return true }},
		},
	})
	str := svc.Kinds.Primitives.Create(kinds.PrimitiveDetails{
		Name: "string",
		InferenceRules: []kinds.PrimitiveInferenceRule{
			{LanguageKeys: []string{"strLit"}, Matches: func(any) bool { return true }},
		},
	})

	call := &kinds.CallSiteInference{
		LanguageKeys: []string{"binaryPlus"},
		Matches:      func(any) bool { return true },
		Arguments: func(ln any) []inference.CallArgument {
			b := ln.(binaryPlus)
			lt, _ := svc.Inference.InferType(b.left)
			rt, _ := svc.Inference.InferType(b.right)
			return []inference.CallArgument{{LanguageNode: b.left, Type: lt}, {LanguageNode: b.right, Type: rt}}
		},
	}

	svc.Kinds.Operators.CreateBinary("+",
		kinds.ParameterDetails{Type: desc(integer.Node())},
		kinds.ParameterDetails{Type: desc(integer.Node())},
		kinds.ParameterDetails{Type: desc(integer.Node())},
		call,
	)
	svc.Kinds.Operators.CreateBinary("+",
		kinds.ParameterDetails{Type: desc(str.Node())},
		kinds.ParameterDetails{Type: desc(str.Node())},
		kinds.ParameterDetails{Type: desc(str.Node())},
		nil,
	)

	result, problem := svc.Inference.InferType(binaryPlus{left: intLit{}, right: intLit{}})
	require.Nil(t, problem)
	require.Same(t, integer.Node(), result)
}

func TestValidationCollectsProblemsAcrossLanguageNodes(t *testing.T) {
	svc := typir.NewServices(testLanguage{}, typir.Config{})
	svc.Validation.AddStatelessRule(&validation.StatelessRule{
		Options: rules.Options{LanguageKeys: []string{"intLit"}},
		Check: func(any) []*validation.Problem {
			return []*validation.Problem{validation.New(nil, validation.SeverityWarning, "int literal flagged")}
		},
	})

	problems := svc.Validation.Validate(context.Background(), nil, []any{intLit{}, strLit{}})
	require.Len(t, problems, 1)
	require.Equal(t, validation.SeverityWarning, problems[0].Severity)
}

func TestMultiLevelNominalInheritanceIsTransitive(t *testing.T) {
	svc := typir.NewServices(testLanguage{}, typir.Config{})
	a := svc.Kinds.Classes.Create(kinds.ClassDetails{Name: "A", Typing: kinds.Nominal})
	b := svc.Kinds.Classes.Create(kinds.ClassDetails{
		Name:         "B",
		Typing:       kinds.Nominal,
		SuperClasses: []kind.Descriptor{desc(a.Node())},
	})
	c := svc.Kinds.Classes.Create(kinds.ClassDetails{
		Name:         "C",
		Typing:       kinds.Nominal,
		SuperClasses: []kind.Descriptor{desc(b.Node())},
	})

	require.True(t, svc.Subtype.IsSubType(c.Node(), a.Node()), "C is a transitive sub-type of A through B")
	require.False(t, svc.Subtype.IsSubType(a.Node(), c.Node()))
}

func TestThrowOnInheritanceCyclePolicyDoesNotAffectAcyclicClasses(t *testing.T) {
	svc := typir.NewServices(testLanguage{}, typir.Config{OnInheritanceCycle: typir.ThrowError})
	require.NotPanics(t, func() {
		svc.Kinds.Classes.Create(kinds.ClassDetails{Name: "X", Typing: kinds.Nominal})
	})
}
