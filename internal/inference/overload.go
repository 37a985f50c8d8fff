package inference

import (
	"fmt"
	"sort"

	"github.com/cwbudde/typir/internal/assignability"
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/rules"
	"github.com/cwbudde/typir/typeerr"
)

// OverloadCandidate is one function variant competing at a call site.
type OverloadCandidate struct {
	Function   *kind.Node
	Parameters []*kind.Node
	ReturnType *kind.Node
}

// CallArgument is one argument at a call site, already resolved to a type.
type CallArgument struct {
	LanguageNode any
	Type         *kind.Node
}

// MatchResult is a candidate that accepted the call's arguments, together
// with the per-parameter assignability path used (nil entry = exact match)
// and the total cost of those paths.
type MatchResult struct {
	Candidate OverloadCandidate
	Paths     [][]assignability.Step
	Cost      int
}

// TieBreak picks one winner out of several equally-cheap matches, or
// reports the ambiguity as a problem instead. typir.Config.TieBreak
// installs one of these.
type TieBreak func(matches []MatchResult) (MatchResult, *typeerr.Problem)

// FirstMatchTieBreak is the default policy: the first of the tied
// matches wins, in the order the candidates were supplied.
func FirstMatchTieBreak(matches []MatchResult) (MatchResult, *typeerr.Problem) {
	return matches[0], nil
}

// ReportAmbiguityTieBreak refuses to guess: it surfaces every tied
// candidate as a single aggregated problem instead of picking one.
func ReportAmbiguityTieBreak(matches []MatchResult) (MatchResult, *typeerr.Problem) {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Candidate.Function.String()
	}
	sort.Strings(names)
	msg := fmt.Sprintf("Found %d best matching overloads: %v", len(matches), names)
	return MatchResult{}, typeerr.NewProblem(typeerr.KindInference, msg)
}

// Resolver runs overload resolution over a fixed assignability service.
type Resolver struct {
	assign   *assignability.Assignability
	tieBreak TieBreak
}

// NewResolver builds a Resolver. tieBreak may be nil, defaulting to
// FirstMatchTieBreak.
func NewResolver(assign *assignability.Assignability, tieBreak TieBreak) *Resolver {
	if tieBreak == nil {
		tieBreak = FirstMatchTieBreak
	}
	return &Resolver{assign: assign, tieBreak: tieBreak}
}

// Resolve picks the best-matching candidate for the given call arguments,
// or reports why none (or too many, ambiguously) matched.
func (r *Resolver) Resolve(candidates []OverloadCandidate, args []CallArgument) (*OverloadCandidate, *typeerr.Problem) {
	matches, problems := r.evaluate(candidates, args)

	if len(matches) == 0 {
		return nil, typeerr.Wrap(typeerr.KindInference, "no overload accepts the given arguments", problems...)
	}

	best := lowestCost(matches)
	if len(best) == 1 {
		return &best[0].Candidate, nil
	}
	winner, problem := r.tieBreak(best)
	if problem != nil {
		return nil, problem
	}
	return &winner.Candidate, nil
}

// evaluate tries every candidate against args, partitioning it into matches
// (candidates that accepted the call) and problems (why the rest did not).
func (r *Resolver) evaluate(candidates []OverloadCandidate, args []CallArgument) ([]MatchResult, []*typeerr.Problem) {
	var matches []MatchResult
	var problems []*typeerr.Problem
	for _, c := range candidates {
		m, problem := r.tryMatch(c, args)
		if problem != nil {
			problems = append(problems, problem)
			continue
		}
		matches = append(matches, m)
	}
	return matches, problems
}

// HasExactMatch reports whether any candidate matches args with zero cost
// (every parameter either identical or an exact assignability match),
// i.e. no conversion or sub-typing was needed. FunctionCallArgumentsValidation
// uses this to suppress its diagnostics when inference already succeeded
// cleanly.
func (r *Resolver) HasExactMatch(candidates []OverloadCandidate, args []CallArgument) bool {
	matches, _ := r.evaluate(candidates, args)
	for _, m := range matches {
		if m.Cost == 0 {
			return true
		}
	}
	return false
}

func (r *Resolver) tryMatch(c OverloadCandidate, args []CallArgument) (MatchResult, *typeerr.Problem) {
	if len(c.Parameters) != len(args) {
		return MatchResult{}, typeerr.NewProblem(typeerr.KindInference,
			fmt.Sprintf("'%s' expects %d argument(s), got %d", c.Function, len(c.Parameters), len(args)))
	}

	paths := make([][]assignability.Step, len(args))
	cost := 0
	for i, arg := range args {
		param := c.Parameters[i]
		if arg.Type == param {
			continue
		}
		path, ok := r.assign.Path(arg.Type, param)
		if !ok {
			return MatchResult{}, typeerr.AssignabilityProblem(arg.Type, param)
		}
		paths[i] = path
		cost += pathCost(path)
	}
	return MatchResult{Candidate: c, Paths: paths, Cost: cost}, nil
}

func pathCost(path []assignability.Step) int {
	cost := 0
	for _, step := range path {
		switch step.Label {
		case graph.LabelSubType:
			cost += 1
		case graph.LabelConversion:
			cost += 2
		}
	}
	return cost
}

func lowestCost(matches []MatchResult) []MatchResult {
	min := matches[0].Cost
	for _, m := range matches[1:] {
		if m.Cost < min {
			min = m.Cost
		}
	}
	out := matches[:0:0]
	for _, m := range matches {
		if m.Cost == min {
			out = append(out, m)
		}
	}
	return out
}

// CandidateLister and ArgumentLister let a call-site language node describe
// its overload set and its arguments without this package knowing the
// host's AST shape.
type CandidateLister func(languageNode any) []OverloadCandidate
type ArgumentLister func(languageNode any) []CallArgument

// NewFunctionCallRule builds the composite FunctionCallInferenceRule: for
// a call-site language node, it lists the competing overloads and the
// already-inferred argument types, resolves the winner, and infers the
// call's type as that winner's return type.
func NewFunctionCallRule(name string, opts rules.Options, candidates CandidateLister, arguments ArgumentLister, resolver *Resolver) *Rule {
	return &Rule{
		Name:    name,
		Options: opts,
		Infer: func(languageNode any, _ *Engine) Result {
			cands := candidates(languageNode)
			if len(cands) == 0 {
				return NotApplicable()
			}
			args := arguments(languageNode)
			winner, problem := resolver.Resolve(cands, args)
			if problem != nil {
				return InferenceProblem(problem)
			}
			return InferredType(winner.ReturnType)
		},
	}
}
