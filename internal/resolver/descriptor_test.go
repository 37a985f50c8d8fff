package resolver_test

import (
	"testing"

	"github.com/cwbudde/typir/internal/kind"
	"github.com/cwbudde/typir/internal/resolver"
	"github.com/stretchr/testify/require"
)

// Every concrete descriptor variant must satisfy kind.Descriptor through
// the embedded kind.DescriptorMarker, not through a same-named method of
// its own: an unexported method declared in a different package never
// satisfies an unexported interface method, no matter how it is spelled.
// These assignments fail to compile if a variant ever regresses back to
// redeclaring descriptorVariant() itself.
var (
	_ kind.Descriptor = resolver.NodeDescriptor{}
	_ kind.Descriptor = resolver.IdentifierDescriptor{}
	_ kind.Descriptor = resolver.LanguageNodeDescriptor{}
	_ kind.Descriptor = resolver.ThunkDescriptor{}
	_ kind.Descriptor = (*kind.Initializer)(nil)
	_ kind.Descriptor = (*kind.Reference)(nil)
)

func TestIdentifierDescriptorExpectedIdentifier(t *testing.T) {
	d := resolver.IdentifierDescriptor{Identifier: "integer"}
	id, ok := d.ExpectedIdentifier()
	require.True(t, ok)
	require.Equal(t, "integer", id)
}

func TestTryToResolveNodeDescriptor(t *testing.T) {
	r := resolver.New(nil, nil)

	n := kind.NewNode("testKind")
	resolved, ok := r.TryToResolve(resolver.NodeDescriptor{Node: n})
	require.True(t, ok)
	require.Same(t, n, resolved)

	_, ok = r.TryToResolve(resolver.NodeDescriptor{})
	require.False(t, ok)
}

func TestTryToResolveThunkRecurses(t *testing.T) {
	r := resolver.New(nil, nil)
	n := kind.NewNode("testKind")

	thunk := resolver.ThunkDescriptor{
		Thunk: func() kind.Descriptor { return resolver.NodeDescriptor{Node: n} },
	}
	resolved, ok := r.TryToResolve(thunk)
	require.True(t, ok)
	require.Same(t, n, resolved)
}

func TestTryToResolveUnknownVariant(t *testing.T) {
	r := resolver.New(nil, nil)
	_, ok := r.TryToResolve(fakeDescriptor{})
	require.False(t, ok)
}

type fakeDescriptor struct{ kind.DescriptorMarker }
