package kind

// Descriptor is the type-descriptor union: something a
// Reference can eventually turn into a Node. The concrete variants (a bare
// node, a string identifier, an initializer, a reference, a language node,
// a thunk) are implemented in package resolver, which is the only package
// that needs to construct them; kind only needs the marker interface so
// that Reference and Initializer (themselves descriptor variants) can be
// declared here without an import cycle back to resolver.
type Descriptor interface {
	// descriptorVariant is unexported, which in Go scopes the method
	// identifier to this package: a type declared elsewhere cannot satisfy
	// Descriptor by redeclaring a same-named method of its own, only by
	// embedding DescriptorMarker and promoting this package's method.
	descriptorVariant()
}

// DescriptorMarker is embedded by every Descriptor variant declared outside
// this package (package resolver's concrete descriptors) so they can
// promote descriptorVariant instead of redeclaring it under a different,
// package-scoped identity.
type DescriptorMarker struct{}

func (DescriptorMarker) descriptorVariant() {}

// DescriptorResolver is the capability a Reference needs from whatever
// resolver was wired in: attempt, non-strictly, to turn a Descriptor into a
// Node right now. package resolver's Resolver type satisfies this
// structurally.
type DescriptorResolver interface {
	TryToResolve(d Descriptor) (*Node, bool)
}

// ExpectedIdentifier is implemented by descriptor variants that know, up
// front, which identifier they will eventually resolve to (currently just
// resolver.IdentifierDescriptor) — used by Waiter to match a pending
// Reference against its ignore-set. Reference itself does not subscribe by
// key: it retries resolution on every graph addition.
type ExpectedIdentifier interface {
	ExpectedIdentifier() (string, bool)
}
