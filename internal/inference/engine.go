// Package inference implements the type-inference service and the
// overloaded-call resolution built on top of it.
package inference

import (
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/rules"
	"github.com/cwbudde/typir/typeerr"
)

// LanguageService is the slice of the host's LanguageService the
// inference engine needs: mapping a language node to its rule-lookup
// key, and that key's super-keys for the rule-registry fallback chain.
type LanguageService interface {
	GetLanguageNodeKey(languageNode any) string
	GetAllSuperKeys(key string) []string
}

// Result is what an inference Rule returns for one languageNode. Exactly
// one of its "which case" fields is meaningful at a time; Infer helpers in
// this package (NotApplicable, InferredType, ...) build well-formed values
// so callers never have to set more than one.
type Result struct {
	// Type is the final inferred type (the stateless "fn(node) -> Type"
	// case, and the second-phase return of a "with children" rule).
	Type *kind.Node

	// Problem reports why this rule could not infer a type for node, but
	// the rule was applicable (it recognized the node's shape).
	Problem *typeerr.Problem

	// NotApplicable means this rule does not recognize node at all; the
	// engine silently moves on to the next rule.
	NotApplicable bool

	// Recurse redirects inference to another language node entirely (the
	// stateless "OtherNode" case, e.g. unwrapping a parenthesized
	// expression).
	Recurse any

	// Children, together with WithChildren, implements the two-phase
	// "with children" rule shape: the engine infers each child's type
	// first, then calls WithChildren with the results.
	Children     []any
	WithChildren func(childTypes []*kind.Node) Result
}

// NotApplicable builds a Result signalling the rule does not recognize its
// input.
func NotApplicable() Result { return Result{NotApplicable: true} }

// InferredType builds a Result carrying a final type.
func InferredType(t *kind.Node) Result { return Result{Type: t} }

// InferenceProblem builds a Result carrying a diagnostic.
func InferenceProblem(p *typeerr.Problem) Result { return Result{Problem: p} }

// RecurseInto builds a Result redirecting inference to another node.
func RecurseInto(node any) Result { return Result{Recurse: node} }

// WithChildrenNodes builds the first phase of a two-phase rule.
func WithChildrenNodes(children []any, then func([]*kind.Node) Result) Result {
	return Result{Children: children, WithChildren: then}
}

// Rule is the common shape every inference rule is registered as (a
// pointer to one of these is what package rules uses for identity).
type Rule struct {
	Name    string
	Options rules.Options
	Infer   func(languageNode any, engine *Engine) Result
}

// Engine drives inferType(node) over the shared registry.
type Engine struct {
	registry *rules.Registry
	lang     LanguageService
}

// New builds an inference Engine over registry, using lang to resolve
// language-node keys and their super-keys.
func New(registry *rules.Registry, lang LanguageService) *Engine {
	return &Engine{registry: registry, lang: lang}
}

// AddRule registers rule with the shared RuleRegistry.
func (e *Engine) AddRule(rule *Rule) {
	e.registry.Add(rule, rule.Options)
}

// RemoveRule fully deregisters rule.
func (e *Engine) RemoveRule(rule *Rule) {
	e.registry.RemoveAll(rule)
}

// InferType runs every applicable rule for languageNode's key, in registry
// order, and returns the first type produced. If no rule produces a type,
// it returns the aggregated problems, always non-empty.
func (e *Engine) InferType(languageNode any) (*kind.Node, *typeerr.Problem) {
	key := e.lang.GetLanguageNodeKey(languageNode)
	super := e.lang.GetAllSuperKeys(key)
	candidates := e.registry.GetRulesByLanguageKey(key, super)

	var problems []*typeerr.Problem
	for _, c := range candidates {
		rule, ok := c.(*Rule)
		if !ok {
			continue
		}
		t, problem, done := e.runRule(rule, languageNode)
		if !done {
			continue
		}
		if problem != nil {
			problems = append(problems, problem)
			continue
		}
		return t, nil
	}

	if len(problems) == 0 {
		problems = append(problems, typeerr.NoApplicableRule(languageNode).Problem)
	}
	return nil, typeerr.Wrap(typeerr.KindInference, "failed to infer a type for the given node", problems...)
}

// runRule executes a single rule to its conclusion (resolving any "with
// children" continuation or Recurse redirect along the way). done is false
// only for NotApplicable, telling the caller to try the next rule.
func (e *Engine) runRule(rule *Rule, languageNode any) (*kind.Node, *typeerr.Problem, bool) {
	res := rule.Infer(languageNode, e)
	switch {
	case res.NotApplicable:
		return nil, nil, false
	case res.Problem != nil:
		return nil, res.Problem, true
	case res.Recurse != nil:
		t, problem := e.InferType(res.Recurse)
		return t, problem, true
	case len(res.Children) > 0:
		childTypes := make([]*kind.Node, 0, len(res.Children))
		var childProblems []*typeerr.Problem
		for _, child := range res.Children {
			t, problem := e.InferType(child)
			if problem != nil {
				childProblems = append(childProblems, problem)
				continue
			}
			childTypes = append(childTypes, t)
		}
		if len(childProblems) > 0 {
			return nil, typeerr.Wrap(typeerr.KindInference, "failed to infer the type of a child node", childProblems...), true
		}
		phase2 := res.WithChildren(childTypes)
		if phase2.Problem != nil {
			return nil, phase2.Problem, true
		}
		return phase2.Type, nil, true
	default:
		return res.Type, nil, true
	}
}
