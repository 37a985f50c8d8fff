package kinds

import (
	"github.com/cwbudde/typir/internal/graph"
	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/relation"
	"github.com/cwbudde/typir/typeerr"
)

// TopClassType is the payload of the top-class singleton: the super-type
// of every class, regardless of typing policy. It is equal only to itself
// and a sub-type only of itself.
type TopClassType struct {
	node *kind.Node
}

func (t *TopClassType) Node() *kind.Node { return t.node }
func (t *TopClassType) String() string   { return t.node.UserRepresentation() }

func (t *TopClassType) AnalyzeTypeEquality(other *kind.Node, _ *relation.Equality) *typeerr.Problem {
	return typeerr.EqualityProblem(t.node, other, "the top-class type is only equal to itself")
}

func (t *TopClassType) AnalyzeSubType(candidateSuper *kind.Node, _ *relation.SubType) *typeerr.Problem {
	return typeerr.SubTypeProblem(t.node, candidateSuper, "the top-class type has no super-type")
}

// TopClassFactory builds the single top-class node and automatically wires
// every class node the graph ever receives as its sub-type, once that
// class node reaches Completed.
type TopClassFactory struct {
	svc  *Services
	node *kind.Node
}

// NewTopClassFactory builds the top-class singleton immediately (it has no
// dependencies, so it reaches Completed synchronously) and subscribes to
// the graph so every class created afterwards — and, via
// CallOnAddedForAllExisting, every class created before — is wired as its
// sub-type.
func NewTopClassFactory(svc *Services) *TopClassFactory {
	tc := &TopClassType{}
	plan := kind.Plan{
		OnIdentifiable: func(*kind.Node) (string, string, string) {
			return "top-class", "object", "object"
		},
	}
	f := &TopClassFactory{svc: svc}
	kind.NewInitializer("TopClassKind", plan, func(init *kind.Initializer) {
		n := init.GetTypeInitial()
		tc.node = n
		n.SetPayload(tc)
		final, collapsed, err := producedType(svc, "", n)
		if err != nil {
			panic(err)
		}
		if collapsed {
			tc = final.Payload().(*TopClassType)
		} else {
			tc.node = final
		}
		f.node = final
		init.SetProduced(final)
	})

	svc.Graph.AddListener(&topClassWiring{factory: f}, graph.ListenOptions{CallOnAddedForAllExisting: true})
	return f
}

// Node returns the top-class singleton.
func (f *TopClassFactory) Node() *kind.Node { return f.node }

type topClassWiring struct {
	factory *TopClassFactory
}

func (w *topClassWiring) OnAddedType(t graph.TypeNode) {
	n, ok := t.(*kind.Node)
	if !ok {
		return
	}
	if _, isClass := n.Payload().(*ClassType); !isClass {
		return
	}
	if n == w.factory.node {
		return
	}
	n.AddStateListener(&wireOnCompleted{factory: w.factory, class: n}, true)
}

func (w *topClassWiring) OnRemovedType(graph.TypeNode) {}

type wireOnCompleted struct {
	factory *TopClassFactory
	class   *kind.Node
}

func (w *wireOnCompleted) OnSwitchedToIdentifiable(*kind.Node) {}
func (w *wireOnCompleted) OnSwitchedToCompleted(*kind.Node) {
	if w.factory.node == nil {
		return
	}
	_ = w.factory.svcSubType().MarkAsSubType(w.class, w.factory.node, false)
}
func (w *wireOnCompleted) OnSwitchedToInvalid(*kind.Node) {}

func (f *TopClassFactory) svcSubType() *relation.SubType { return f.svc.SubType }
