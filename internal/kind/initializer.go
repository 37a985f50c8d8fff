package kind

// Plan is the initialization plan a kind declares for a fresh node: which
// references must reach Identifiable before this node can, which must
// reach Completed, which (if reset to Invalid) should drag this node back
// to Invalid too, and the three lifecycle callbacks.
type Plan struct {
	PreconditionsForIdentifiable      []*Reference
	PreconditionsForCompleted         []*Reference
	ReferencesRelevantForInvalidation []*Reference

	// OnIdentifiable computes the node's final identifier/name/user
	// representation. Called exactly once per Invalid->Identifiable
	// transition.
	OnIdentifiable func(n *Node) (identifier, name, userRepresentation string)

	// OnCompleted runs kind-specific completion checks (e.g. the class
	// kind's inheritance-cycle check). A non-nil error/problem blocks the
	// Identifiable->Completed transition; the caller (package kinds)
	// decides whether to surface it as a validation problem or panic,
	// per the kind's configured policy.
	OnCompleted func(n *Node) error

	OnInvalidated func(n *Node)
}

// Initializer drives one
// Node through Invalid -> Identifiable -> Completed, deferring to package
// kinds for the deduplication step (producedType) because that step needs
// to talk to the Graph and RuleRegistry, neither of which this package
// depends on.
type Initializer struct {
	node *Node
	plan Plan

	identifiableWaiter *Waiter
	completedWaiter    *Waiter

	onIdentifiableReached func(*Initializer)

	final        *Node
	completedErr error
}

type waiterPhase int

const (
	phaseIdentifiable waiterPhase = iota
	phaseCompleted
)

type waiterAdapter struct {
	init  *Initializer
	phase waiterPhase
}

func (a *waiterAdapter) OnFulfilled() {
	if a.phase == phaseIdentifiable {
		a.init.tryIdentifiable()
	} else {
		a.init.tryCompleted()
	}
}

// OnInvalidated is intentionally a no-op: a precondition merely regressing
// does not, by itself, invalidate this node (only references explicitly
// listed in ReferencesRelevantForInvalidation do).
func (a *waiterAdapter) OnInvalidated() {}

// NewInitializer builds the Node and its waiters and immediately attempts
// the Start step: if all preconditions for identifiable are already met,
// the node transitions to Identifiable in the same call frame.
// onIdentifiableReached is invoked synchronously, at most once per
// Invalid->Identifiable transition, so package kinds can run producedType
// and call SetProduced.
func NewInitializer(kindName string, plan Plan, onIdentifiableReached func(*Initializer)) *Initializer {
	init := &Initializer{
		node:                  NewNode(kindName),
		plan:                  plan,
		onIdentifiableReached: onIdentifiableReached,
	}
	init.identifiableWaiter = NewWaiter(plan.PreconditionsForIdentifiable, nil)
	init.completedWaiter = NewWaiter(nil, plan.PreconditionsForCompleted)

	init.node.SetIgnorePropagator(func(ids []string) {
		init.identifiableWaiter.SetIgnoreSet(ids)
		init.completedWaiter.SetIgnoreSet(ids)
	})

	for _, r := range plan.ReferencesRelevantForInvalidation {
		r.AddListener(init)
	}

	init.identifiableWaiter.AddListener(&waiterAdapter{init, phaseIdentifiable}, true)
	init.completedWaiter.AddListener(&waiterAdapter{init, phaseCompleted}, true)
	return init
}

func (init *Initializer) tryIdentifiable() {
	if init.node.State() != StateInvalid || !init.identifiableWaiter.Fulfilled() {
		return
	}
	id, name, repr := init.plan.OnIdentifiable(init.node)
	init.node.MarkIdentifiable(id, name, repr)
	if init.onIdentifiableReached != nil {
		init.onIdentifiableReached(init)
	}
	init.tryCompleted()
}

func (init *Initializer) tryCompleted() {
	if init.node.State() != StateIdentifiable || !init.completedWaiter.Fulfilled() {
		return
	}
	init.completedErr = nil
	if init.plan.OnCompleted != nil {
		if err := init.plan.OnCompleted(init.node); err != nil {
			init.completedErr = err
			return
		}
	}
	init.node.MarkCompleted()
}

// OnTypeReferenceResolved implements ReferenceListener; invalidation refs
// don't need to act on resolution, only on invalidation.
func (init *Initializer) OnTypeReferenceResolved(*Node) {}

// OnTypeReferenceInvalidated implements ReferenceListener for references in
// ReferencesRelevantForInvalidation.
func (init *Initializer) OnTypeReferenceInvalidated() {
	if init.node.State() == StateInvalid {
		return
	}
	init.node.MarkInvalid()
	init.final = nil
	if init.plan.OnInvalidated != nil {
		init.plan.OnInvalidated(init.node)
	}
}

// GetTypeInitial returns the provisional node, even before it is
// Identifiable.
func (init *Initializer) GetTypeInitial() *Node { return init.node }

// SetProduced records the surviving node once package kinds has run
// producedType (either this node, or the pre-existing equal one it
// collapsed into).
func (init *Initializer) SetProduced(final *Node) { init.final = final }

// GetTypeFinal returns the surviving node, once known.
func (init *Initializer) GetTypeFinal() (*Node, bool) {
	return init.final, init.final != nil
}

// CompletedError surfaces the last error/problem OnCompleted returned, if
// the node is stuck at Identifiable because of one.
func (init *Initializer) CompletedError() error { return init.completedErr }

func (init *Initializer) descriptorVariant() {}
