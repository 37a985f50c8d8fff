// Package typeerr holds the structured problem and error types shared across
// the engine. Recoverable conditions (a failed inference, an impossible
// sub-type relation) are returned as *Problem values, never panicked; the
// handful of fatal misuse conditions are returned as plain errors from the
// functions that detect them.
package typeerr

import (
	"fmt"
	"strings"
)

// Problem is the common shape for every relational / inference diagnostic
// produced by the engine. It is deliberately a concrete struct rather than
// one interface per problem kind: callers branch on Kind, and SubProblems
// lets a problem explain itself recursively without a type switch per level.
type Problem struct {
	Kind        string
	Message     string
	SubProblems []*Problem
}

func (p *Problem) Error() string {
	if p == nil {
		return ""
	}
	return p.Message
}

// Nested renders the problem and its sub-problems as an indented tree, used
// by the inspection CLI and by tests that want a readable failure trail.
func (p *Problem) Nested() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	p.writeNested(&b, 0)
	return b.String()
}

func (p *Problem) writeNested(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(p.Message)
	b.WriteByte('\n')
	for _, sub := range p.SubProblems {
		sub.writeNested(b, depth+1)
	}
}

// NewProblem builds a leaf problem of the given kind.
func NewProblem(kind, message string) *Problem {
	return &Problem{Kind: kind, Message: message}
}

// Wrap builds a problem of the given kind whose message embeds the causes,
// keeping each cause available via SubProblems.
func Wrap(kind, message string, causes ...*Problem) *Problem {
	return &Problem{Kind: kind, Message: message, SubProblems: causes}
}

// Problem kinds produced by the relational services.
const (
	KindEquality        = "EqualityProblem"
	KindSubType         = "SubTypeProblem"
	KindAssignability   = "AssignabilityProblem"
	KindInference       = "InferenceProblem"
	KindIndexedConflict = "IndexedTypeConflict"
	KindValueConflict   = "ValueConflict"
	KindKindConflict    = "KindConflict"
)

// EqualityProblem reports why two types were found unequal.
func EqualityProblem(a, b fmt.Stringer, reason string) *Problem {
	return NewProblem(KindEquality, fmt.Sprintf("Type '%s' is not equal to type '%s': %s", a, b, reason))
}

// SubTypeProblem reports why `sub` is not a sub-type of `super`.
func SubTypeProblem(sub, super fmt.Stringer, reason string) *Problem {
	return NewProblem(KindSubType, fmt.Sprintf("Type '%s' is not a sub-type of type '%s': %s", sub, super, reason))
}

// AssignabilityProblem reports why `source` cannot reach `target`.
func AssignabilityProblem(source, target fmt.Stringer) *Problem {
	return NewProblem(KindAssignability, fmt.Sprintf("The type '%s' is not assignable to the type '%s'.", source, target))
}

// InferenceProblem carries the language node context for a failed inference.
type InferenceProblem struct {
	*Problem
	LanguageNode      any
	InferenceCandidate any
	Rule              string
}

// NewInferenceProblem builds an InferenceProblem rooted at languageNode.
func NewInferenceProblem(languageNode any, rule, message string, causes ...*Problem) *InferenceProblem {
	return &InferenceProblem{
		Problem:      Wrap(KindInference, message, causes...),
		LanguageNode: languageNode,
		Rule:         rule,
	}
}

// NoApplicableRule is the synthetic problem added when no inference rule
// produced a type at all.
func NoApplicableRule(languageNode any) *InferenceProblem {
	return NewInferenceProblem(languageNode, "", "found no applicable inference rules")
}
