// Package validation implements the validation collector, built on the
// same RuleRegistry used by inference so host rules can be scoped by
// language key and bound-type lifecycle exactly the same way.
package validation

import "strings"

// Severity is one of the four problem severity levels.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// Problem is a single validation finding.
type Problem struct {
	LanguageNode any
	Property     string
	Index        *int
	Severity     Severity
	Message      string
	SubProblems  []*Problem
}

// Error implements the error interface so a Problem can flow through
// ordinary Go error handling when a host only cares about the first one.
func (p *Problem) Error() string {
	if p == nil {
		return ""
	}
	return p.Message
}

// New builds a leaf Problem.
func New(node any, severity Severity, message string) *Problem {
	return &Problem{LanguageNode: node, Severity: severity, Message: message}
}

// AtProperty builds a leaf Problem pinned to a specific property (and,
// for indexed properties such as a parameter list, its index).
func AtProperty(node any, property string, index *int, severity Severity, message string) *Problem {
	return &Problem{LanguageNode: node, Property: property, Index: index, Severity: severity, Message: message}
}

// Wrap builds a Problem whose message embeds the causes, keeping each
// cause available via SubProblems for structured rendering.
func Wrap(node any, severity Severity, message string, causes ...*Problem) *Problem {
	return &Problem{LanguageNode: node, Severity: severity, Message: message, SubProblems: causes}
}

// Render flattens a problem list into one string per line, indenting
// sub-problems, for the inspection CLI and for tests that just want a
// readable report.
func Render(problems []*Problem) string {
	var b strings.Builder
	for _, p := range problems {
		renderOne(&b, p, 0)
	}
	return b.String()
}

func renderOne(b *strings.Builder, p *Problem, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("[")
	b.WriteString(string(p.Severity))
	b.WriteString("] ")
	b.WriteString(p.Message)
	b.WriteByte('\n')
	for _, sub := range p.SubProblems {
		renderOne(b, sub, depth+1)
	}
}
