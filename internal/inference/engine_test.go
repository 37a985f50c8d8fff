package inference_test

import (
	"testing"

	"github.com/cwbudde/typir/internal/inference"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/rules"
	"github.com/stretchr/testify/require"
)

type intLit struct{ value int }
type strLit struct{ value string }
type paren struct{ inner any }
type pair struct{ a, b any }

type stubLanguage struct{}

func (stubLanguage) GetLanguageNodeKey(languageNode any) string {
	switch languageNode.(type) {
	case intLit:
		return "intLit"
	case strLit:
		return "strLit"
	case paren:
		return "paren"
	case pair:
		return "pair"
	default:
		return "unknown"
	}
}

func (stubLanguage) GetAllSuperKeys(key string) []string { return nil }

func newNode(id string) *kind.Node {
	n := kind.NewNode("primitive")
	n.MarkIdentifiable(id, id, id)
	return n
}

func newEngine() *inference.Engine {
	return inference.New(rules.New(), stubLanguage{})
}

func TestInferTypeStateless(t *testing.T) {
	e := newEngine()
	integer := newNode("integer")
	e.AddRule(&inference.Rule{
		Options: rules.Options{LanguageKeys: []string{"intLit"}},
		Infer: func(languageNode any, _ *inference.Engine) inference.Result {
			if _, ok := languageNode.(intLit); !ok {
				return inference.NotApplicable()
			}
			return inference.InferredType(integer)
		},
	})

	n, problem := e.InferType(intLit{value: 1})
	require.Nil(t, problem)
	require.Same(t, integer, n)
}

func TestInferTypeNoApplicableRuleReturnsProblem(t *testing.T) {
	e := newEngine()
	_, problem := e.InferType(intLit{value: 1})
	require.NotNil(t, problem)
}

func TestInferTypeRecurse(t *testing.T) {
	e := newEngine()
	str := newNode("string")
	e.AddRule(&inference.Rule{
		Options: rules.Options{LanguageKeys: []string{"strLit"}},
		Infer: func(languageNode any, _ *inference.Engine) inference.Result {
			return inference.InferredType(str)
		},
	})
	e.AddRule(&inference.Rule{
		Options: rules.Options{LanguageKeys: []string{"paren"}},
		Infer: func(languageNode any, _ *inference.Engine) inference.Result {
			p := languageNode.(paren)
			return inference.RecurseInto(p.inner)
		},
	})

	n, problem := e.InferType(paren{inner: strLit{value: "x"}})
	require.Nil(t, problem)
	require.Same(t, str, n)
}

func TestInferTypeWithChildren(t *testing.T) {
	e := newEngine()
	integer, boolean := newNode("integer"), newNode("boolean")
	e.AddRule(&inference.Rule{
		Options: rules.Options{LanguageKeys: []string{"intLit"}},
		Infer: func(languageNode any, _ *inference.Engine) inference.Result {
			return inference.InferredType(integer)
		},
	})
	e.AddRule(&inference.Rule{
		Options: rules.Options{LanguageKeys: []string{"pair"}},
		Infer: func(languageNode any, _ *inference.Engine) inference.Result {
			p := languageNode.(pair)
			return inference.WithChildrenNodes([]any{p.a, p.b}, func(childTypes []*kind.Node) inference.Result {
				require.Len(t, childTypes, 2)
				return inference.InferredType(boolean)
			})
		},
	})

	n, problem := e.InferType(pair{a: intLit{value: 1}, b: intLit{value: 2}})
	require.Nil(t, problem)
	require.Same(t, boolean, n)
}

func TestInferTypeWithChildrenPropagatesChildProblem(t *testing.T) {
	e := newEngine()
	e.AddRule(&inference.Rule{
		Options: rules.Options{LanguageKeys: []string{"pair"}},
		Infer: func(languageNode any, _ *inference.Engine) inference.Result {
			p := languageNode.(pair)
			return inference.WithChildrenNodes([]any{p.a, p.b}, func(childTypes []*kind.Node) inference.Result {
				t.Fatal("should not be called when a child fails to infer")
				return inference.Result{}
			})
		},
	})

	_, problem := e.InferType(pair{a: intLit{value: 1}, b: strLit{value: "x"}})
	require.NotNil(t, problem)
}

func TestRemoveRuleDeregisters(t *testing.T) {
	e := newEngine()
	integer := newNode("integer")
	rule := &inference.Rule{
		Options: rules.Options{LanguageKeys: []string{"intLit"}},
		Infer: func(languageNode any, _ *inference.Engine) inference.Result {
			return inference.InferredType(integer)
		},
	}
	e.AddRule(rule)
	e.RemoveRule(rule)

	_, problem := e.InferType(intLit{value: 1})
	require.NotNil(t, problem)
}
