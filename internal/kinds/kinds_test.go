package kinds_test

import (
	"testing"

	"github.com/cwbudde/typir/internal/assignability"
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/inference"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/kinds"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/internal/resolver"
	"github.com/cwbudde/typir/internal/rules"
	"github.com/cwbudde/typir/internal/validation"
	"github.com/stretchr/testify/require"
)

type stubLanguage struct{}

func (stubLanguage) GetLanguageNodeKey(any) string     { return "node" }
func (stubLanguage) GetAllSuperKeys(string) []string { return nil }

func newTestServices() (*kinds.Services, *inference.Resolver) {
	g := graph.New()
	registry := rules.New()
	g.AddListener(registry, graph.ListenOptions{})

	inferEngine := inference.New(registry, stubLanguage{})
	res := resolver.New(g, inferEngine)
	validationCollector := validation.New(registry, stubLanguage{})

	eq := relation.NewEquality(g)
	sub := relation.NewSubType(g, eq)
	conv := relation.NewConversion(g)
	relation.NewInvalidationFlusher(g, eq, sub)
	assign := assignability.New(g, eq, sub, conv)
	overloads := inference.NewResolver(assign, nil)

	svc := &kinds.Services{
		Graph:      g,
		Rules:      registry,
		Resolver:   res,
		Equality:   eq,
		SubType:    sub,
		Conversion: conv,
		Assign:     assign,
		Inference:  inferEngine,
		Validation: validationCollector,
	}
	return svc, overloads
}

func desc(n *kind.Node) resolver.NodeDescriptor { return resolver.NodeDescriptor{Node: n} }

func TestPrimitiveFactoryDedupsByName(t *testing.T) {
	svc, _ := newTestServices()
	f := kinds.NewPrimitiveFactory(svc)

	a := f.Create(kinds.PrimitiveDetails{Name: "integer"})
	b := f.Create(kinds.PrimitiveDetails{Name: "integer"})
	require.Same(t, a.Node(), b.Node(), "two primitives with the same name collapse onto one node")
}

func TestPrimitiveAnalyzeEquality(t *testing.T) {
	svc, _ := newTestServices()
	f := kinds.NewPrimitiveFactory(svc)
	integer := f.Create(kinds.PrimitiveDetails{Name: "integer"})
	str := f.Create(kinds.PrimitiveDetails{Name: "string"})

	require.True(t, svc.Equality.AreEqual(integer.Node(), integer.Node()))
	require.False(t, svc.Equality.AreEqual(integer.Node(), str.Node()))
}

func TestClassFactoryStructuralDedupsByFieldShape(t *testing.T) {
	svc, _ := newTestServices()
	primitives := kinds.NewPrimitiveFactory(svc)
	classes := kinds.NewClassFactory(svc)

	integer := primitives.Create(kinds.PrimitiveDetails{Name: "integer"})

	p1 := classes.Create(kinds.ClassDetails{
		Name:   "Point",
		Typing: kinds.Structural,
		Fields: []kinds.FieldDetails{{Name: "x", Type: desc(integer.Node())}},
	})
	p2 := classes.Create(kinds.ClassDetails{
		Name:   "Point",
		Typing: kinds.Structural,
		Fields: []kinds.FieldDetails{{Name: "x", Type: desc(integer.Node())}},
	})
	require.Same(t, p1.Node(), p2.Node())
}

func TestClassFactoryPanicsOnDuplicateFieldName(t *testing.T) {
	svc, _ := newTestServices()
	primitives := kinds.NewPrimitiveFactory(svc)
	classes := kinds.NewClassFactory(svc)
	integer := primitives.Create(kinds.PrimitiveDetails{Name: "integer"})

	require.Panics(t, func() {
		classes.Create(kinds.ClassDetails{
			Name:   "Bad",
			Typing: kinds.Structural,
			Fields: []kinds.FieldDetails{
				{Name: "x", Type: desc(integer.Node())},
				{Name: "x", Type: desc(integer.Node())},
			},
		})
	})
}

func TestClassFactoryPanicsWhenExceedingMaximumSuperClasses(t *testing.T) {
	svc, _ := newTestServices()
	classes := kinds.NewClassFactory(svc)

	a := classes.Create(kinds.ClassDetails{Name: "A", Typing: kinds.Nominal})
	b := classes.Create(kinds.ClassDetails{Name: "B", Typing: kinds.Nominal})

	require.Panics(t, func() {
		classes.Create(kinds.ClassDetails{
			Name:                        "C",
			Typing:                      kinds.Nominal,
			SuperClasses:                []kind.Descriptor{desc(a.Node()), desc(b.Node())},
			MaximumNumberOfSuperClasses: 1,
		})
	})
}

func TestClassFieldShadowingPrefersMostDerived(t *testing.T) {
	svc, _ := newTestServices()
	primitives := kinds.NewPrimitiveFactory(svc)
	classes := kinds.NewClassFactory(svc)
	integer := primitives.Create(kinds.PrimitiveDetails{Name: "integer"})
	str := primitives.Create(kinds.PrimitiveDetails{Name: "string"})

	base := classes.Create(kinds.ClassDetails{
		Name:   "Base",
		Typing: kinds.Nominal,
		Fields: []kinds.FieldDetails{{Name: "tag", Type: desc(integer.Node())}},
	})
	derived := classes.Create(kinds.ClassDetails{
		Name:         "Derived",
		Typing:       kinds.Nominal,
		SuperClasses: []kind.Descriptor{desc(base.Node())},
		Fields:       []kinds.FieldDetails{{Name: "tag", Type: desc(str.Node())}},
	})

	field, ok := derived.Field("tag")
	require.True(t, ok)
	require.Same(t, str.Node(), field.Type)
}

func TestClassNominalSubTypeFollowsDeclaredHierarchy(t *testing.T) {
	svc, _ := newTestServices()
	classes := kinds.NewClassFactory(svc)

	shape := classes.Create(kinds.ClassDetails{Name: "Shape", Typing: kinds.Nominal})
	circle := classes.Create(kinds.ClassDetails{
		Name:         "Circle",
		Typing:       kinds.Nominal,
		SuperClasses: []kind.Descriptor{desc(shape.Node())},
	})
	unrelated := classes.Create(kinds.ClassDetails{Name: "Unrelated", Typing: kinds.Nominal})

	require.True(t, svc.SubType.IsSubType(circle.Node(), shape.Node()))
	require.False(t, svc.SubType.IsSubType(unrelated.Node(), shape.Node()))
}

func TestClassStructuralSubTypeRequiresCompatibleFields(t *testing.T) {
	svc, _ := newTestServices()
	primitives := kinds.NewPrimitiveFactory(svc)
	classes := kinds.NewClassFactory(svc)
	integer := primitives.Create(kinds.PrimitiveDetails{Name: "integer"})

	wide := classes.Create(kinds.ClassDetails{
		Name:   "Wide",
		Typing: kinds.Structural,
		Fields: []kinds.FieldDetails{
			{Name: "x", Type: desc(integer.Node())},
			{Name: "y", Type: desc(integer.Node())},
		},
	})
	narrow := classes.Create(kinds.ClassDetails{
		Name:   "Narrow",
		Typing: kinds.Structural,
		Fields: []kinds.FieldDetails{{Name: "x", Type: desc(integer.Node())}},
	})

	require.True(t, svc.SubType.IsSubType(wide.Node(), narrow.Node()), "wide has every field narrow requires, so it is narrow's sub-type")
	require.False(t, svc.SubType.IsSubType(narrow.Node(), wide.Node()))
}

func TestTopClassFactoryWiresExistingAndFutureClasses(t *testing.T) {
	svc, _ := newTestServices()
	classes := kinds.NewClassFactory(svc)

	before := classes.Create(kinds.ClassDetails{Name: "Before", Typing: kinds.Nominal})
	top := kinds.NewTopClassFactory(svc)
	after := classes.Create(kinds.ClassDetails{Name: "After", Typing: kinds.Nominal})

	require.True(t, svc.SubType.IsSubType(before.Node(), top.Node()))
	require.True(t, svc.SubType.IsSubType(after.Node(), top.Node()))
}

func TestFunctionFactoryDedupsBySignature(t *testing.T) {
	svc, _ := newTestServices()
	primitives := kinds.NewPrimitiveFactory(svc)
	functions := kinds.NewFunctionFactory(svc, inference.NewResolver(svc.Assign, nil))
	integer := primitives.Create(kinds.PrimitiveDetails{Name: "integer"})

	f1 := functions.Create(kinds.FunctionDetails{
		Name:            "abs",
		InputParameters: []kinds.ParameterDetails{{Name: "x", Type: desc(integer.Node())}},
		OutputParameter: &kinds.ParameterDetails{Type: desc(integer.Node())},
	})
	f2 := functions.Create(kinds.FunctionDetails{
		Name:            "abs",
		InputParameters: []kinds.ParameterDetails{{Name: "x", Type: desc(integer.Node())}},
		OutputParameter: &kinds.ParameterDetails{Type: desc(integer.Node())},
	})
	require.Same(t, f1.Node(), f2.Node())
}

func TestFunctionOverloadResolutionPicksExactMatch(t *testing.T) {
	svc, _ := newTestServices()
	primitives := kinds.NewPrimitiveFactory(svc)
	overloads := inference.NewResolver(svc.Assign, nil)
	functions := kinds.NewFunctionFactory(svc, overloads)

	integer := primitives.Create(kinds.PrimitiveDetails{Name: "integer"})
	double := primitives.Create(kinds.PrimitiveDetails{Name: "double"})
	require.NoError(t, svc.Conversion.MarkAsConvertible(integer.Node(), double.Node(), relation.ConversionImplicitExplicit))

	type binaryExpr struct{ opName string }
	matches := func(ln any) bool { _, ok := ln.(binaryExpr); return ok }
	call := &kinds.CallSiteInference{
		LanguageKeys: []string{"node"},
		Matches:      matches,
		Arguments: func(any) []inference.CallArgument {
			return []inference.CallArgument{{Type: integer.Node()}, {Type: integer.Node()}}
		},
	}

	functions.Create(kinds.FunctionDetails{
		Name:            "+",
		InputParameters: []kinds.ParameterDetails{{Type: desc(integer.Node())}, {Type: desc(integer.Node())}},
		OutputParameter: &kinds.ParameterDetails{Type: desc(integer.Node())},
		CallSiteInference: call,
	})
	functions.Create(kinds.FunctionDetails{
		Name:            "+",
		InputParameters: []kinds.ParameterDetails{{Type: desc(double.Node())}, {Type: desc(double.Node())}},
		OutputParameter: &kinds.ParameterDetails{Type: desc(double.Node())},
	})

	result, problem := svc.Inference.InferType(binaryExpr{opName: "+"})
	require.Nil(t, problem)
	require.Same(t, integer.Node(), result)
}

func TestCustomFactoryDedupsByDefaultIdentifier(t *testing.T) {
	svc, _ := newTestServices()
	custom := kinds.NewCustomFactory(svc, kinds.CustomKindOptions{Name: "range"})

	r1 := custom.Create(map[string]kinds.Value{
		"low":  kinds.PrimitiveValue("1"),
		"high": kinds.PrimitiveValue("10"),
	})
	r2 := custom.Create(map[string]kinds.Value{
		"low":  kinds.PrimitiveValue("1"),
		"high": kinds.PrimitiveValue("10"),
	})
	require.Same(t, r1.Node(), r2.Node())
}

func TestCustomFactoryRelationshipHooksWireEagerly(t *testing.T) {
	svc, _ := newTestServices()
	primitives := kinds.NewPrimitiveFactory(svc)
	integer := primitives.Create(kinds.PrimitiveDetails{Name: "integer"})

	custom := kinds.NewCustomFactory(svc, kinds.CustomKindOptions{
		Name: "boxed",
		GetSuperTypesOfNew: func(*kinds.CustomType) []*kind.Node {
			return []*kind.Node{integer.Node()}
		},
	})
	boxed := custom.Create(map[string]kinds.Value{"of": kinds.PrimitiveValue("int")})

	require.True(t, svc.SubType.IsSubType(boxed.Node(), integer.Node()))
}
