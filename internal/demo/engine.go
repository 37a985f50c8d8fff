package demo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cwbudde/typir/internal/assignability"
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/inference"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/kinds"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/internal/resolver"
	"github.com/cwbudde/typir/internal/rules"
	"github.com/cwbudde/typir/internal/validation"
	"github.com/cwbudde/typir/typeerr"
	"github.com/cwbudde/typir/typir"
)

// Engine wires a fresh typir.Services instance to the demo language: three
// primitives, an implicit integer-to-double conversion, a "+" operator
// overloaded across them, and a small nominal/structural class hierarchy.
// It exists purely so cmd/typirctl has something real to point the engine
// at; a production host would build its own equivalent once per compiler
// instance instead.
type Engine struct {
	Services *typir.Services

	types     map[string]*kind.Node
	classes   map[string]*kinds.ClassType
	operators map[string][]*kinds.FunctionType
}

// Build assembles the demo engine. logger may be nil (the engine then logs
// nowhere).
func Build(logger typir.Logger) *Engine {
	svc := typir.NewServices(LanguageService{}, typir.Config{Logger: logger})
	e := &Engine{
		Services:  svc,
		types:     make(map[string]*kind.Node),
		classes:   make(map[string]*kinds.ClassType),
		operators: make(map[string][]*kinds.FunctionType),
	}
	e.declarePrimitives()
	e.declareConversions()
	e.declareOperators()
	e.declareClasses()
	e.declareValidation()
	return e
}

func (e *Engine) declarePrimitives() {
	integer := e.Services.Kinds.Primitives.Create(kinds.PrimitiveDetails{
		Name: "integer",
		InferenceRules: []kinds.PrimitiveInferenceRule{
			{LanguageKeys: []string{"IntLiteral"}, Matches: func(ln any) bool { _, ok := ln.(*IntLiteral); return ok }},
			{LanguageKeys: []string{"Var"}, Matches: func(ln any) bool { v, ok := ln.(*Var); return ok && v.Type == "integer" }},
		},
	})
	str := e.Services.Kinds.Primitives.Create(kinds.PrimitiveDetails{
		Name: "string",
		InferenceRules: []kinds.PrimitiveInferenceRule{
			{LanguageKeys: []string{"StringLiteral"}, Matches: func(ln any) bool { _, ok := ln.(*StringLiteral); return ok }},
			{LanguageKeys: []string{"Var"}, Matches: func(ln any) bool { v, ok := ln.(*Var); return ok && v.Type == "string" }},
		},
	})
	dbl := e.Services.Kinds.Primitives.Create(kinds.PrimitiveDetails{
		Name: "double",
		InferenceRules: []kinds.PrimitiveInferenceRule{
			{LanguageKeys: []string{"FloatLiteral"}, Matches: func(ln any) bool { _, ok := ln.(*FloatLiteral); return ok }},
			{LanguageKeys: []string{"Var"}, Matches: func(ln any) bool { v, ok := ln.(*Var); return ok && v.Type == "double" }},
		},
	})
	e.types["integer"] = integer.Node()
	e.types["string"] = str.Node()
	e.types["double"] = dbl.Node()
}

// declareConversions marks integer implicitly convertible to double, so an
// `integer + double` call resolves through the double overload at cost 2
// rather than being rejected outright.
func (e *Engine) declareConversions() {
	err := e.Services.Conversion.MarkAsConvertible(e.types["integer"], e.types["double"], relation.ConversionImplicitExplicit)
	if err != nil {
		panic(err)
	}
}

func (e *Engine) argumentsOf(op string) func(ln any) []inference.CallArgument {
	return func(ln any) []inference.CallArgument {
		b := ln.(*BinaryExpr)
		leftType, _ := e.Services.Inference.InferType(b.Left)
		rightType, _ := e.Services.Inference.InferType(b.Right)
		return []inference.CallArgument{
			{LanguageNode: b.Left, Type: leftType},
			{LanguageNode: b.Right, Type: rightType},
		}
	}
}

func (e *Engine) declareOperators() {
	matches := func(op string) func(ln any) bool {
		return func(ln any) bool {
			b, ok := ln.(*BinaryExpr)
			return ok && b.Op == op
		}
	}

	call := &kinds.CallSiteInference{
		LanguageKeys: []string{"BinaryExpr"},
		Matches:      matches("+"),
		Arguments:    e.argumentsOf("+"),
	}

	intAdd := e.Services.Kinds.Operators.CreateBinary("+",
		kinds.ParameterDetails{Name: "left", Type: resolver.NodeDescriptor{Node: e.types["integer"]}},
		kinds.ParameterDetails{Name: "right", Type: resolver.NodeDescriptor{Node: e.types["integer"]}},
		kinds.ParameterDetails{Type: resolver.NodeDescriptor{Node: e.types["integer"]}},
		call,
	)
	doubleAdd := e.Services.Kinds.Operators.CreateBinary("+",
		kinds.ParameterDetails{Name: "left", Type: resolver.NodeDescriptor{Node: e.types["double"]}},
		kinds.ParameterDetails{Name: "right", Type: resolver.NodeDescriptor{Node: e.types["double"]}},
		kinds.ParameterDetails{Type: resolver.NodeDescriptor{Node: e.types["double"]}},
		nil,
	)
	stringAdd := e.Services.Kinds.Operators.CreateBinary("+",
		kinds.ParameterDetails{Name: "left", Type: resolver.NodeDescriptor{Node: e.types["string"]}},
		kinds.ParameterDetails{Name: "right", Type: resolver.NodeDescriptor{Node: e.types["string"]}},
		kinds.ParameterDetails{Type: resolver.NodeDescriptor{Node: e.types["string"]}},
		nil,
	)
	e.operators["+"] = []*kinds.FunctionType{intAdd, doubleAdd, stringAdd}
}

func (e *Engine) declareClasses() {
	point := e.Services.Kinds.Classes.Create(kinds.ClassDetails{
		Name:   "Point",
		Typing: kinds.Structural,
		Fields: []kinds.FieldDetails{
			{Name: "x", Type: resolver.NodeDescriptor{Node: e.types["integer"]}},
			{Name: "y", Type: resolver.NodeDescriptor{Node: e.types["integer"]}},
		},
	})

	shape := e.Services.Kinds.Classes.Create(kinds.ClassDetails{
		Name:   "Shape",
		Typing: kinds.Nominal,
	})
	circle := e.Services.Kinds.Classes.Create(kinds.ClassDetails{
		Name:         "Circle",
		Typing:       kinds.Nominal,
		SuperClasses: []kind.Descriptor{resolver.NodeDescriptor{Node: shape.Node()}},
		Fields: []kinds.FieldDetails{
			{Name: "radius", Type: resolver.NodeDescriptor{Node: e.types["double"]}},
		},
	})

	e.classes["Point"] = point
	e.classes["Shape"] = shape
	e.classes["Circle"] = circle
	e.types["Point"] = point.Node()
	e.types["Shape"] = shape.Node()
	e.types["Circle"] = circle.Node()

	e.Services.Inference.AddRule(&inference.Rule{
		Name:    "demo.recordLiteral",
		Options: rules.Options{LanguageKeys: []string{"RecordLiteral"}},
		Infer: func(ln any, _ *inference.Engine) inference.Result {
			rl := ln.(*RecordLiteral)
			ct, ok := e.classes[rl.TypeName]
			if !ok {
				return inference.NotApplicable()
			}
			return inference.InferredType(ct.Node())
		},
	})

	e.Services.Inference.AddRule(&inference.Rule{
		Name:    "demo.fieldAccess",
		Options: rules.Options{LanguageKeys: []string{"FieldAccess"}},
		Infer: func(ln any, _ *inference.Engine) inference.Result {
			fa := ln.(*FieldAccess)
			return inference.WithChildrenNodes([]any{fa.Target}, func(childTypes []*kind.Node) inference.Result {
				ct, ok := childTypes[0].Payload().(*kinds.ClassType)
				if !ok {
					return inference.InferenceProblem(typeerr.NewProblem(typeerr.KindInference, "field access target is not a class type"))
				}
				field, ok := ct.Field(fa.Field)
				if !ok {
					return inference.InferenceProblem(typeerr.NewProblem(typeerr.KindInference, "class '"+ct.ClassName()+"' has no field '"+fa.Field+"'"))
				}
				return inference.InferredType(field.Type)
			})
		},
	})
}

// declareValidation registers a rule checking that a record literal's
// fields exactly match its declared class's fields, one focused check
// per rule.
func (e *Engine) declareValidation() {
	e.Services.Validation.AddStatelessRule(&validation.StatelessRule{
		Name:    "demo.recordFieldsComplete",
		Options: rules.Options{LanguageKeys: []string{"RecordLiteral"}},
		Check: func(ln any) []*validation.Problem {
			rl := ln.(*RecordLiteral)
			ct, ok := e.classes[rl.TypeName]
			if !ok {
				return []*validation.Problem{validation.New(ln, validation.SeverityError, "unknown record type '"+rl.TypeName+"'")}
			}
			var problems []*validation.Problem
			for _, f := range ct.Fields() {
				if _, given := rl.Fields[f.Name]; !given {
					problems = append(problems, validation.AtProperty(ln, "fields", nil, validation.SeverityError,
						"missing field '"+f.Name+"' required by '"+rl.TypeName+"'"))
				}
			}
			for name := range rl.Fields {
				if _, declared := ct.Field(name); !declared {
					problems = append(problems, validation.AtProperty(ln, "fields", nil, validation.SeverityWarning,
						"field '"+name+"' is not declared on '"+rl.TypeName+"'"))
				}
			}
			return problems
		},
	})
}

// Infer runs the shared inference engine over n.
func (e *Engine) Infer(n Node) (*kind.Node, *typeerr.Problem) {
	return e.Services.Inference.InferType(n)
}

// Validate runs the validation collector over nodes.
func (e *Engine) Validate(ctx context.Context, nodes []Node) []*validation.Problem {
	generic := make([]any, len(nodes))
	for i, n := range nodes {
		generic[i] = n
	}
	return e.Services.Validation.Validate(ctx, nil, generic)
}

// ListTypes renders every registered type's user representation, sorted for
// stable CLI output (the graph itself makes no ordering guarantee).
func (e *Engine) ListTypes() []string {
	nodes := e.Services.Graph.GetAllRegisteredTypes()
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if tn, ok := n.(*kind.Node); ok {
			out = append(out, fmt.Sprintf("%-10s %s", tn.Kind(), tn.UserRepresentation()))
		}
	}
	sort.Strings(out)
	return out
}

// TraceBinaryCall renders a human-readable overload-resolution trace for
// `left op right`, showing every declared overload's assignability cost
// and the winner.
func (e *Engine) TraceBinaryCall(op string, left, right Node) string {
	var b strings.Builder

	candidates, ok := e.operators[op]
	if !ok {
		fmt.Fprintf(&b, "no '%s' operator is declared\n", op)
		return b.String()
	}

	leftType, lerr := e.Infer(left)
	rightType, rerr := e.Infer(right)
	fmt.Fprintf(&b, "resolving '%s' for (%s, %s)\n", op, describe(leftType, lerr), describe(rightType, rerr))
	if lerr != nil || rerr != nil {
		return b.String()
	}

	args := []*kind.Node{leftType, rightType}
	overloadCandidates := make([]inference.OverloadCandidate, len(candidates))
	for i, c := range candidates {
		params := make([]*kind.Node, len(c.Inputs()))
		for j, p := range c.Inputs() {
			params[j] = p.Type
		}
		overloadCandidates[i] = inference.OverloadCandidate{Function: c.Node(), Parameters: params, ReturnType: c.Output()}

		detail := make([]string, len(args))
		cost, accepted := 0, true
		for j, arg := range args {
			want := params[j]
			switch {
			case arg == want:
				detail[j] = fmt.Sprintf("%s exact", arg)
			default:
				path, found := e.Services.Assignability.Path(arg, want)
				if !found {
					accepted = false
					detail[j] = fmt.Sprintf("%s not assignable to %s", arg, want)
					continue
				}
				stepCost := pathCost(path)
				cost += stepCost
				detail[j] = fmt.Sprintf("%s -> %s (cost %d)", arg, want, stepCost)
			}
		}
		status := "rejected"
		if accepted {
			status = fmt.Sprintf("accepted, cost=%d", cost)
		}
		fmt.Fprintf(&b, "  %s: %s [%s]\n", c, status, strings.Join(detail, "; "))
	}

	winner, problem := e.Services.Overloads.Resolve(overloadCandidates, []inference.CallArgument{
		{LanguageNode: left, Type: leftType},
		{LanguageNode: right, Type: rightType},
	})
	if problem != nil {
		fmt.Fprintf(&b, "result: %s\n", problem)
		return b.String()
	}
	fmt.Fprintf(&b, "winner: %s => %s\n", winner.Function, winner.ReturnType)
	return b.String()
}

func pathCost(path []assignability.Step) int {
	cost := 0
	for _, step := range path {
		switch step.Label {
		case graph.LabelSubType:
			cost++
		case graph.LabelConversion:
			cost += 2
		}
	}
	return cost
}

func describe(t *kind.Node, problem *typeerr.Problem) string {
	if problem != nil {
		return "<error: " + problem.Error() + ">"
	}
	return t.String()
}
