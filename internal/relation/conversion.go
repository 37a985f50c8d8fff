package relation

import (
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/typeerr"
)

// ConversionMode distinguishes the three conversion strengths a host can
// mark between two types.
type ConversionMode int

const (
	// ConversionNone means no conversion edge exists (the zero value, never
	// stored as an edge itself — it is the "not found" answer).
	ConversionNone ConversionMode = iota
	// ConversionExplicit allows the conversion only when the host's
	// language explicitly requests it (a cast); it never participates in
	// assignability and is exempt from cycle checking.
	ConversionExplicit
	// ConversionImplicitExplicit allows both an implicit conversion (for
	// assignability) and an explicit cast, and is the only mode subject to
	// the graph's cycle check.
	ConversionImplicitExplicit
)

type conversionEdge struct {
	from, to *kind.Node
	mode     ConversionMode
}

func (e conversionEdge) Label() graph.Label { return graph.LabelConversion }
func (e conversionEdge) From() graph.TypeNode { return e.from }
func (e conversionEdge) To() graph.TypeNode   { return e.to }

// CycleClass implements graph.CycleParticipant. Only IMPLICIT_EXPLICIT
// edges are guarded; EXPLICIT-only edges opt out by returning the empty
// class, which the graph treats as "never cycle-checked".
func (e conversionEdge) CycleClass() string {
	if e.mode == ConversionImplicitExplicit {
		return "conversion:implicit_explicit"
	}
	return ""
}

// Conversion implements the engine's convertibility service: a plain
// directed relation (no reflexivity, no equality/sub-type fallback) recorded
// entirely through explicit marks, since no kind in this engine derives
// convertibility structurally the way it derives equality or sub-typing.
type Conversion struct {
	g *graph.Graph
}

// NewConversion builds a Conversion service over g.
func NewConversion(g *graph.Graph) *Conversion {
	return &Conversion{g: g}
}

// MarkAsConvertible records that from converts to to under mode. An
// ImplicitExplicit mark that would close a cycle among other
// ImplicitExplicit marks is rejected with *typeerr.CycleIntroduced and the
// graph is left unchanged.
func (c *Conversion) MarkAsConvertible(from, to *kind.Node, mode ConversionMode) error {
	if mode == ConversionNone {
		return nil
	}
	if existing, ok := c.edgeBetween(from, to); ok {
		if existing.mode == mode {
			return nil
		}
		c.g.RemoveEdge(existing)
	}
	return c.g.AddEdge(conversionEdge{from: from, to: to, mode: mode})
}

// UnmarkAsConvertible removes any conversion mark between from and to.
func (c *Conversion) UnmarkAsConvertible(from, to *kind.Node) {
	if existing, ok := c.edgeBetween(from, to); ok {
		c.g.RemoveEdge(existing)
	}
}

func (c *Conversion) edgeBetween(from, to *kind.Node) (conversionEdge, bool) {
	for _, e := range c.g.GetEdges(from, to, graph.LabelConversion) {
		if ce, ok := e.(conversionEdge); ok {
			return ce, true
		}
	}
	return conversionEdge{}, false
}

// ModeOf reports the strongest conversion mode recorded from source to
// target, or ConversionNone if none was marked.
func (c *Conversion) ModeOf(source, target *kind.Node) ConversionMode {
	if e, ok := c.edgeBetween(source, target); ok {
		return e.mode
	}
	return ConversionNone
}

// IsConvertibleImplicitly reports whether source may be implicitly
// converted to target (used by the assignability search as a cost-2 edge).
func (c *Conversion) IsConvertibleImplicitly(source, target *kind.Node) bool {
	return c.ModeOf(source, target) == ConversionImplicitExplicit
}

// IsConvertibleExplicitly reports whether source may be converted to
// target via an explicit cast (either conversion mode allows this).
func (c *Conversion) IsConvertibleExplicitly(source, target *kind.Node) bool {
	return c.ModeOf(source, target) != ConversionNone
}

// GetConversionProblem returns nil when source converts to target
// implicitly, or a diagnostic otherwise. It never inspects explicit-only
// marks, matching assignability's use of conversion as an implicit-only
// fallback.
func (c *Conversion) GetConversionProblem(source, target *kind.Node) *typeerr.Problem {
	if c.IsConvertibleImplicitly(source, target) {
		return nil
	}
	return typeerr.NewProblem(typeerr.KindAssignability,
		"no implicit conversion marked from '"+source.String()+"' to '"+target.String()+"'")
}
