// Package kinds implements the four essential kinds (primitive, class,
// function, top-class) plus a configurable custom kind. Each kind is a
// small factory over the shared internal services: it
// builds a kind.Initializer, derives the type's identifier in
// onIdentifiable, runs producedType for deduplication, and registers its
// inference/validation rules against the surviving node.
package kinds

import (
	"github.com/cwbudde/typir/internal/assignability"
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/inference"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/internal/resolver"
	"github.com/cwbudde/typir/internal/rules"
	"github.com/cwbudde/typir/internal/validation"
)

// Logger is the ambient logging surface a kind factory may trace
// dedup/wiring decisions through, structurally identical to typir.Logger
// (declared locally so this package does not import the root typir
// package, which imports kinds).
type Logger interface {
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}

// Services bundles the lower-level engine components every kind factory
// needs. It is the internal counterpart of the host-facing
// TypirServices handle assembled by the root typir package.
type Services struct {
	Graph      *graph.Graph
	Rules      *rules.Registry
	Resolver   *resolver.Resolver
	Equality   *relation.Equality
	SubType    *relation.SubType
	Conversion *relation.Conversion
	Assign     *assignability.Assignability
	Inference  *inference.Engine
	Validation *validation.Collector
	Log        Logger

	// ThrowOnInheritanceCycle selects the class kind's reaction to a cycle
	// found by its Completed-time check: panic immediately instead of
	// leaving the class stuck at Identifiable with a retrievable
	// CompletedError.
	ThrowOnInheritanceCycle bool
}

// producedType implements the engine's deduplication step: if a node
// with the same identifier is already installed, it is returned and
// collapsed is true (the caller must discard the provisional node's rules
// and re-register them against the surviving one); otherwise the
// provisional node is installed and returned as-is.
func producedType(svc *Services, altKey string, n *kind.Node) (final *kind.Node, collapsed bool, err error) {
	log := svc.Log
	if log == nil {
		log = noopLogger{}
	}
	if existing, ok := svc.Graph.GetType(n.Identifier()); ok {
		if existingNode, ok := existing.(*kind.Node); ok {
			log.Debugf("collapsed duplicate type %q onto existing node", n.Identifier())
			return existingNode, true, nil
		}
	}
	if err := svc.Graph.AddNode(n, altKey); err != nil {
		return nil, false, err
	}
	log.Debugf("installed new type %q", n.Identifier())
	return n, false, nil
}

// ruleBinding is the minimal shape every kind-level inference rule
// description reduces to before being registered: a predicate recognizing
// the language node plus the already-resolved type to return.
type ruleBinding struct {
	LanguageKeys []string
	Matches      func(languageNode any) bool
	Infer        func(languageNode any) (*kind.Node, bool)
}

// registerTypeInferenceRules wires a list of "language node of this shape
// infers to this type" bindings into the shared inference engine, bound to
// n's lifecycle: they are deregistered automatically when n leaves the
// graph.
func registerTypeInferenceRules(svc *Services, n *kind.Node, bindings []ruleBinding) []*inference.Rule {
	out := make([]*inference.Rule, 0, len(bindings))
	for _, b := range bindings {
		b := b
		r := &inference.Rule{
			Name:    "kinds.typeInference",
			Options: rules.Options{LanguageKeys: b.LanguageKeys, BoundToType: []graph.TypeNode{n}},
			Infer: func(languageNode any, _ *inference.Engine) inference.Result {
				if !b.Matches(languageNode) {
					return inference.NotApplicable()
				}
				t, ok := b.Infer(languageNode)
				if !ok {
					return inference.NotApplicable()
				}
				return inference.InferredType(t)
			},
		}
		svc.Inference.AddRule(r)
		out = append(out, r)
	}
	return out
}
