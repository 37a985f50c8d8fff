package kind

import "github.com/cwbudde/typir/internal/graph"

// ReferenceListener observes a Reference's resolution lifecycle.
type ReferenceListener interface {
	OnTypeReferenceResolved(n *Node)
	OnTypeReferenceInvalidated()
}

// Reference is a resolvable handle to a future node. It is itself a
// Descriptor variant, so a Reference can
// be nested inside another Reference's descriptor.
type Reference struct {
	descriptor Descriptor
	resolver   DescriptorResolver
	graphSub   *graph.Graph

	resolved *Node

	waiters   []*Waiter
	listeners []ReferenceListener

	subscribed bool
}

func (r *Reference) descriptorVariant() {}

// NewReference builds a Reference for descriptor d, trying to resolve it
// immediately. If that fails and graphSub is non-nil, the reference
// subscribes to future graph insertions and retries on each one until it
// resolves, per the "replay on every graph mutation" fallback.
func NewReference(resolver DescriptorResolver, graphSub *graph.Graph, d Descriptor) *Reference {
	r := &Reference{descriptor: d, resolver: resolver, graphSub: graphSub}
	r.tryResolve()
	if r.resolved == nil && graphSub != nil {
		graphSub.AddListener(r, graph.ListenOptions{})
		r.subscribed = true
	}
	return r
}

// OnAddedType implements graph.Listener: retry resolution on every graph
// insertion until successful, then unsubscribe.
func (r *Reference) OnAddedType(graph.TypeNode) {
	if r.resolved != nil {
		return
	}
	r.tryResolve()
	if r.resolved != nil && r.subscribed {
		r.graphSub.RemoveListener(r)
		r.subscribed = false
	}
}

// OnRemovedType implements graph.Listener; a Reference does not react to
// removals directly — if its resolved node is removed, the node's own
// invalidation (MarkInvalid, which Reference listens for as a
// StateListener) is what drives the reference back to unresolved territory
// from the node's perspective. Nothing to do here.
func (r *Reference) OnRemovedType(graph.TypeNode) {}

func (r *Reference) tryResolve() {
	if r.resolved != nil {
		return
	}
	n, ok := r.resolver.TryToResolve(r.descriptor)
	if !ok {
		return
	}
	r.resolved = n
	n.AddStateListener(r, true)
	for _, l := range r.listeners {
		l.OnTypeReferenceResolved(n)
	}
	r.notifyWaiters()
}

// Resolved reports the currently resolved node, if any.
func (r *Reference) Resolved() (*Node, bool) {
	return r.resolved, r.resolved != nil
}

// IsAtLeast reports whether the reference is resolved and its target has
// reached at least the given state.
func (r *Reference) IsAtLeast(s State) bool {
	return r.resolved != nil && r.resolved.State() >= s
}

// ExpectedIdentifier surfaces the descriptor's expected identifier, when
// derivable, for callers that want to key a direct graph lookup.
func (r *Reference) ExpectedIdentifier() (string, bool) {
	if ei, ok := r.descriptor.(ExpectedIdentifier); ok {
		return ei.ExpectedIdentifier()
	}
	if r.resolved != nil {
		return r.resolved.Identifier(), true
	}
	return "", false
}

// AddListener registers l for resolution/invalidation notifications.
func (r *Reference) AddListener(l ReferenceListener) {
	r.listeners = append(r.listeners, l)
}

func (r *Reference) addWaiter(w *Waiter) {
	r.waiters = append(r.waiters, w)
}

func (r *Reference) notifyWaiters() {
	for _, w := range r.waiters {
		w.notify()
	}
}

// The Reference itself is a StateListener on its resolved node, so that a
// node reaching a new state (or resetting to Invalid) ripples into every
// Waiter watching this reference.

func (r *Reference) OnSwitchedToIdentifiable(*Node) { r.notifyWaiters() }
func (r *Reference) OnSwitchedToCompleted(*Node)    { r.notifyWaiters() }
func (r *Reference) OnSwitchedToInvalid(*Node) {
	for _, l := range r.listeners {
		l.OnTypeReferenceInvalidated()
	}
	r.notifyWaiters()
}
