package kinds

import (
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/typeerr"
)

// PrimitiveDetails is the TypeDetails for the primitive kind: a primitive
// is identified entirely by its name ("integer", "string", ...) and is
// equal/sub-type only to itself — any relation beyond that is established
// by the host via Equality.MarkAsEqual, SubType.MarkAsSubType or
// Conversion.MarkAsConvertible.
type PrimitiveDetails struct {
	Name           string
	InferenceRules []PrimitiveInferenceRule
}

// PrimitiveInferenceRule recognizes a host language node as denoting this
// primitive (e.g. an integer-literal AST node).
type PrimitiveInferenceRule struct {
	LanguageKeys []string
	Matches      func(languageNode any) bool
}

// PrimitiveType is the payload stored on a primitive's kind.Node.
type PrimitiveType struct {
	node *kind.Node
	name string
}

func (p *PrimitiveType) Node() *kind.Node { return p.node }
func (p *PrimitiveType) Name() string     { return p.name }
func (p *PrimitiveType) String() string   { return p.name }

// AnalyzeTypeEquality implements relation.EqualityAnalyzer: a primitive is
// equal only to another primitive of the same name.
func (p *PrimitiveType) AnalyzeTypeEquality(other *kind.Node, _ *relation.Equality) *typeerr.Problem {
	if op, ok := other.Payload().(*PrimitiveType); ok && op.name == p.name {
		return nil
	}
	return typeerr.EqualityProblem(p.node, other, "primitive types are only equal to themselves")
}

// AnalyzeSubType implements relation.SubTypeAnalyzer: primitives carry no
// structural sub-type relation of their own; everything beyond reflexivity
// and equality must be marked explicitly by the host.
func (p *PrimitiveType) AnalyzeSubType(candidateSuper *kind.Node, _ *relation.SubType) *typeerr.Problem {
	return typeerr.SubTypeProblem(p.node, candidateSuper, "primitive types have no implicit sub-type relation")
}

// PrimitiveFactory is the "PrimitiveKind" factory: it builds leaf types
// with no internal structure, deduplicated purely by name.
type PrimitiveFactory struct {
	svc *Services
}

// NewPrimitiveFactory builds a PrimitiveFactory over svc.
func NewPrimitiveFactory(svc *Services) *PrimitiveFactory {
	return &PrimitiveFactory{svc: svc}
}

// Create builds (or returns the pre-existing) primitive type named
// details.Name. Primitives have no dependencies, so the returned value is
// always immediately Completed.
func (f *PrimitiveFactory) Create(details PrimitiveDetails) *PrimitiveType {
	pt := &PrimitiveType{name: details.Name}

	plan := kind.Plan{
		OnIdentifiable: func(*kind.Node) (string, string, string) {
			return "primitive-" + details.Name, details.Name, details.Name
		},
	}

	var produced *kind.Node
	kind.NewInitializer("PrimitiveKind", plan, func(init *kind.Initializer) {
		n := init.GetTypeInitial()
		n.SetPayload(pt)
		final, collapsed, err := producedType(f.svc, "", n)
		if err != nil {
			panic(err)
		}
		if collapsed {
			pt = final.Payload().(*PrimitiveType)
		} else {
			pt.node = final
			bindings := make([]ruleBinding, 0, len(details.InferenceRules))
			for _, r := range details.InferenceRules {
				r := r
				bindings = append(bindings, ruleBinding{
					LanguageKeys: r.LanguageKeys,
					Matches:      r.Matches,
					Infer:        func(any) (*kind.Node, bool) { return final, true },
				})
			}
			registerTypeInferenceRules(f.svc, final, bindings)
		}
		produced = final
		init.SetProduced(final)
	})
	_ = produced
	return pt
}
