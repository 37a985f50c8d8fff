package kinds

import (
	"strings"

	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/inference"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/internal/rules"
	"github.com/cwbudde/typir/internal/validation"
	"github.com/cwbudde/typir/typeerr"
)

// ParameterChecking selects the strategy the class kind uses to compare a
// candidate field type against the expected one (ClassDetails.
// SubtypeFieldChecking). The function kind stores FunctionDetails.
// SubtypeParameterChecking, but its AnalyzeSubType always compares
// parameters by sub-typing, whatever the value.
type ParameterChecking int

const (
	EqualType ParameterChecking = iota
	SubType
	AssignableType
)

// ParameterDetails names one input or output parameter.
type ParameterDetails struct {
	Name string
	Type kind.Descriptor
}

// CallSiteInference tells the function kind how to recognize and decompose
// a call-site language node for the whole overload group sharing Name,
// and how to key the FunctionCallArgumentsValidation opt-out.
type CallSiteInference struct {
	LanguageKeys []string
	Matches      func(languageNode any) bool
	Arguments    func(languageNode any) []inference.CallArgument
}

// FunctionDetails is the TypeDetails for the function kind.
type FunctionDetails struct {
	Name                     string
	InputParameters          []ParameterDetails
	OutputParameter          *ParameterDetails
	SubtypeParameterChecking ParameterChecking
	CallSiteInference        *CallSiteInference
	ValidateArgumentGroups   bool
}

// Parameter is a resolved function parameter.
type Parameter struct {
	Name string
	Type *kind.Node
}

// FunctionType is the payload stored on a function's kind.Node.
type FunctionType struct {
	node      *kind.Node
	name      string
	inputs    []Parameter
	output    *kind.Node
	checking  ParameterChecking
}

func (f *FunctionType) Node() *kind.Node      { return f.node }
func (f *FunctionType) Name() string          { return f.name }
func (f *FunctionType) Inputs() []Parameter   { return f.inputs }
func (f *FunctionType) Output() *kind.Node    { return f.output }
func (f *FunctionType) String() string        { return f.node.UserRepresentation() }

// AnalyzeTypeEquality implements relation.EqualityAnalyzer: equal input
// sequence (element-wise equality) and equal output.
func (f *FunctionType) AnalyzeTypeEquality(other *kind.Node, eq *relation.Equality) *typeerr.Problem {
	of, ok := other.Payload().(*FunctionType)
	if !ok {
		return typeerr.EqualityProblem(f.node, other, "the other type is not a function type")
	}
	if len(f.inputs) != len(of.inputs) {
		return typeerr.EqualityProblem(f.node, other, "different number of input parameters")
	}
	for i := range f.inputs {
		if !eq.AreEqual(f.inputs[i].Type, of.inputs[i].Type) {
			return typeerr.EqualityProblem(f.node, other, "input parameter types are not equal")
		}
	}
	return f.compareOutputEquality(of, eq)
}

func (f *FunctionType) compareOutputEquality(of *FunctionType, eq *relation.Equality) *typeerr.Problem {
	switch {
	case f.output == nil && of.output == nil:
		return nil
	case f.output == nil || of.output == nil:
		return typeerr.EqualityProblem(f.node, of.node, "one function has an output parameter and the other does not")
	case !eq.AreEqual(f.output, of.output):
		return typeerr.EqualityProblem(f.node, of.node, "output parameter types are not equal")
	default:
		return nil
	}
}

// AnalyzeSubType implements relation.SubTypeAnalyzer: contravariant inputs
// (the candidate super's input must be a sub-type of this function's
// input), covariant output.
func (f *FunctionType) AnalyzeSubType(candidateSuper *kind.Node, sub *relation.SubType) *typeerr.Problem {
	of, ok := candidateSuper.Payload().(*FunctionType)
	if !ok {
		return typeerr.SubTypeProblem(f.node, candidateSuper, "the candidate super type is not a function type")
	}
	if len(f.inputs) != len(of.inputs) {
		return typeerr.SubTypeProblem(f.node, candidateSuper, "different number of input parameters")
	}
	for i := range f.inputs {
		if !sub.IsSubType(of.inputs[i].Type, f.inputs[i].Type) {
			return typeerr.SubTypeProblem(f.node, candidateSuper, "input parameters are not contravariant")
		}
	}
	switch {
	case f.output == nil && of.output == nil:
		return nil
	case f.output == nil || of.output == nil:
		return typeerr.SubTypeProblem(f.node, candidateSuper, "output parameter presence differs")
	case !sub.IsSubType(f.output, of.output):
		return typeerr.SubTypeProblem(f.node, candidateSuper, "output parameter is not covariant")
	default:
		return nil
	}
}

type overloadGroup struct {
	name     string
	variants []*FunctionType
}

// FunctionFactory is the "FunctionKind" factory. It additionally keeps
// each function name's overload group and, on first use, registers the
// composite FunctionCallInferenceRule and companion
// FunctionCallArgumentsValidation.
type FunctionFactory struct {
	svc      *Services
	resolver *inference.Resolver
	groups   map[string]*overloadGroup
}

// NewFunctionFactory builds a FunctionFactory. resolver drives the
// overload-resolution cost computation shared by every group's composite
// rule.
func NewFunctionFactory(svc *Services, resolver *inference.Resolver) *FunctionFactory {
	return &FunctionFactory{svc: svc, resolver: resolver, groups: make(map[string]*overloadGroup)}
}

// Create builds (or returns the collapsed pre-existing) function type.
func (f *FunctionFactory) Create(details FunctionDetails) *FunctionType {
	ft := &FunctionType{name: details.Name, checking: details.SubtypeParameterChecking}

	inputRefs := make([]*kind.Reference, len(details.InputParameters))
	for i, p := range details.InputParameters {
		inputRefs[i] = kind.NewReference(f.svc.Resolver, f.svc.Graph, p.Type)
	}
	var outputRef *kind.Reference
	if details.OutputParameter != nil {
		outputRef = kind.NewReference(f.svc.Resolver, f.svc.Graph, details.OutputParameter.Type)
	}

	allRefs := append([]*kind.Reference{}, inputRefs...)
	if outputRef != nil {
		allRefs = append(allRefs, outputRef)
	}

	plan := kind.Plan{
		PreconditionsForIdentifiable:      allRefs,
		PreconditionsForCompleted:         allRefs,
		ReferencesRelevantForInvalidation: allRefs,
		OnIdentifiable: func(*kind.Node) (string, string, string) {
			id := functionIdentifier(details.Name, inputRefs, outputRef)
			repr := functionUserRepresentation(details, inputRefs, outputRef)
			return id, details.Name, repr
		},
	}

	kind.NewInitializer("FunctionKind", plan, func(init *kind.Initializer) {
		n := init.GetTypeInitial()
		ft.node = n
		ft.inputs = make([]Parameter, len(details.InputParameters))
		for i, p := range details.InputParameters {
			resolved, _ := inputRefs[i].Resolved()
			ft.inputs[i] = Parameter{Name: p.Name, Type: resolved}
		}
		if outputRef != nil {
			resolved, _ := outputRef.Resolved()
			ft.output = resolved
		}
		n.SetPayload(ft)

		final, collapsed, err := producedType(f.svc, "", n)
		if err != nil {
			panic(err)
		}
		if collapsed {
			ft = final.Payload().(*FunctionType)
		} else {
			ft.node = final
			f.addToGroup(details, final, ft)
		}
		init.SetProduced(final)
	})
	return ft
}

func (f *FunctionFactory) addToGroup(details FunctionDetails, n *kind.Node, ft *FunctionType) {
	group, exists := f.groups[details.Name]
	if !exists {
		group = &overloadGroup{name: details.Name}
		f.groups[details.Name] = group
	}
	group.variants = append(group.variants, ft)

	if !exists && details.CallSiteInference != nil {
		f.registerOverloadRules(group, details.CallSiteInference, details.ValidateArgumentGroups)
	}
}

func (f *FunctionFactory) registerOverloadRules(group *overloadGroup, call *CallSiteInference, validateGroup bool) {
	candidates := func(languageNode any) []inference.OverloadCandidate {
		return f.candidatesFor(group)
	}
	arguments := call.Arguments

	callRule := &inference.Rule{
		Name:    "kinds.functionCall:" + group.name,
		Options: rules.Options{LanguageKeys: call.LanguageKeys},
		Infer: func(languageNode any, _ *inference.Engine) inference.Result {
			if !call.Matches(languageNode) {
				return inference.NotApplicable()
			}
			winner, problem := f.resolver.Resolve(candidates(languageNode), arguments(languageNode))
			if problem != nil {
				return inference.InferenceProblem(problem)
			}
			return inference.InferredType(winner.ReturnType)
		},
	}
	f.svc.Inference.AddRule(callRule)

	if !validateGroup {
		return
	}
	validationRule := validation.NewFunctionCallArgumentsValidation(
		"kinds.functionCallArguments:"+group.name,
		rules.Options{LanguageKeys: call.LanguageKeys},
		func(any) string { return group.name },
		func(languageNode any) []inference.OverloadCandidate {
			if !call.Matches(languageNode) {
				return nil
			}
			return candidates(languageNode)
		},
		arguments,
		f.resolver,
		validation.FunctionCallArgumentsValidationOptions{},
	)
	f.svc.Validation.AddStatelessRule(validationRule)
}

func (f *FunctionFactory) candidatesFor(group *overloadGroup) []inference.OverloadCandidate {
	out := make([]inference.OverloadCandidate, 0, len(group.variants))
	for _, v := range group.variants {
		params := make([]*kind.Node, len(v.inputs))
		for i, p := range v.inputs {
			params[i] = p.Type
		}
		out = append(out, inference.OverloadCandidate{Function: v.node, Parameters: params, ReturnType: v.output})
	}
	return out
}

func functionIdentifier(name string, inputs []*kind.Reference, output *kind.Reference) string {
	var b strings.Builder
	b.WriteString("function-")
	if name == "" {
		b.WriteString("<anonymous>")
	} else {
		b.WriteString(name)
	}
	b.WriteByte('(')
	for i, r := range inputs {
		if i > 0 {
			b.WriteByte(',')
		}
		if n, ok := r.Resolved(); ok {
			b.WriteString(n.Identifier())
		}
	}
	b.WriteByte(')')
	if output != nil {
		b.WriteString("=>")
		if n, ok := output.Resolved(); ok {
			b.WriteString(n.Identifier())
		}
	}
	return b.String()
}

func functionUserRepresentation(details FunctionDetails, inputs []*kind.Reference, output *kind.Reference) string {
	var b strings.Builder
	if details.Name != "" {
		b.WriteString(details.Name)
	}
	b.WriteByte('(')
	for i, p := range details.InputParameters {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name)
			b.WriteString(": ")
		}
		if n, ok := inputs[i].Resolved(); ok {
			b.WriteString(n.UserRepresentation())
		}
	}
	b.WriteByte(')')
	if output != nil {
		b.WriteString(": ")
		if n, ok := output.Resolved(); ok {
			b.WriteString(n.UserRepresentation())
		}
	}
	return b.String()
}

var _ graph.TypeNode = (*kind.Node)(nil)
