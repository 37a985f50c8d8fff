package resolver

import (
	"fmt"

	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/typeerr"
)

// InferenceEngine is the slice of the inference component the resolver
// needs for the "language node" descriptor branch. Defined here (rather
// than imported from internal/inference) to keep the dependency direction
// resolver -> inference optional: most callers only need graph-backed
// resolution and can pass nil.
type InferenceEngine interface {
	InferType(languageNode any) (*kind.Node, *typeerr.Problem)
}

// Resolver turns a kind.Descriptor into a concrete *kind.Node.
type Resolver struct {
	graph *graph.Graph
	infer InferenceEngine
}

// New builds a Resolver backed by g; infer may be nil if language-node
// descriptors will never be used (e.g. in tests that only exercise the
// graph/kind machinery directly).
func New(g *graph.Graph, infer InferenceEngine) *Resolver {
	return &Resolver{graph: g, infer: infer}
}

// TryToResolve is the non-strict variant: it returns ok=false rather than
// an error when the descriptor cannot yet be resolved.
func (r *Resolver) TryToResolve(d kind.Descriptor) (*kind.Node, bool) {
	switch v := d.(type) {
	case NodeDescriptor:
		return v.Node, v.Node != nil
	case IdentifierDescriptor:
		t, ok := r.graph.GetType(v.Identifier)
		if !ok {
			return nil, false
		}
		n, ok := t.(*kind.Node)
		return n, ok
	case *kind.Initializer:
		return v.GetTypeInitial(), true
	case *kind.Reference:
		return v.Resolved()
	case LanguageNodeDescriptor:
		if r.infer == nil {
			return nil, false
		}
		// Only a successful inference is memoizable by the caller — a
		// failure is not stable (more types may appear later), so we
		// simply report not-yet-resolved rather than caching anything
		// here.
		n, problem := r.infer.InferType(v.LanguageNode)
		if problem != nil || n == nil {
			return nil, false
		}
		return n, true
	case ThunkDescriptor:
		return r.TryToResolve(v.Thunk())
	default:
		return nil, false
	}
}

// Resolve is the strict variant: it requires the final, post-identifiable
// node and fails with *typeerr.UnresolvedReference otherwise.
func (r *Resolver) Resolve(d kind.Descriptor) (*kind.Node, error) {
	switch v := d.(type) {
	case *kind.Initializer:
		if n, ok := v.GetTypeFinal(); ok {
			return n, nil
		}
		return nil, &typeerr.UnresolvedReference{Descriptor: "initializer has not reached Identifiable"}
	case *kind.Reference:
		if n, ok := v.Resolved(); ok && n.State() >= kind.StateIdentifiable {
			return n, nil
		}
		return nil, &typeerr.UnresolvedReference{Descriptor: "reference has not resolved to an Identifiable type"}
	default:
		n, ok := r.TryToResolve(d)
		if !ok {
			return nil, &typeerr.UnresolvedReference{Descriptor: fmt.Sprintf("%T", d)}
		}
		return n, nil
	}
}
