package typir

import "github.com/cwbudde/typir/internal/inference"

// InheritanceCyclePolicy selects what a class kind does when its
// Completed-time cycle check finds one.
type InheritanceCyclePolicy int

const (
	// ReportAsCompletionError leaves the class stuck at Identifiable; the
	// cycle is available via its TypeInitializer's CompletedError.
	ReportAsCompletionError InheritanceCyclePolicy = iota
	// ThrowError panics immediately, for hosts that treat an inheritance
	// cycle as a programming error rather than a recoverable condition.
	ThrowError
)

// TieBreak selects how overload resolution's handleMultipleBestMatches
// picks a winner among equally-cheap candidates.
type TieBreak = inference.TieBreak

// Config carries the engine's host-configurable policies: the exact
// policy for handleMultipleBestMatches and inheritance-cycle handling
// is left to the host rather than fixed by the engine.
type Config struct {
	OnInheritanceCycle InheritanceCyclePolicy
	TieBreak           TieBreak
	Logger             Logger
}

func (c Config) logger() Logger {
	if c.Logger == nil {
		return noopLogger{}
	}
	return c.Logger
}
