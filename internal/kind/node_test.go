package kind_test

import (
	"testing"

	"github.com/cwbudde/typir/internal/kind"
	"github.com/stretchr/testify/require"
)

type recordingStateListener struct {
	events []string
}

func (l *recordingStateListener) OnSwitchedToIdentifiable(*kind.Node) { l.events = append(l.events, "identifiable") }
func (l *recordingStateListener) OnSwitchedToCompleted(*kind.Node)    { l.events = append(l.events, "completed") }
func (l *recordingStateListener) OnSwitchedToInvalid(*kind.Node)      { l.events = append(l.events, "invalid") }

func TestNodeStartsInvalid(t *testing.T) {
	n := kind.NewNode("primitive")
	require.Equal(t, kind.StateInvalid, n.State())
	require.Equal(t, "", n.Identifier())
	require.Equal(t, "<primitive>", n.String())
}

func TestNodeCanonicalTransitionOrder(t *testing.T) {
	n := kind.NewNode("primitive")
	l := &recordingStateListener{}
	n.AddStateListener(l, false)

	n.MarkIdentifiable("int", "Integer", "Integer")
	n.MarkCompleted()
	n.MarkInvalid()

	require.Equal(t, []string{"identifiable", "completed", "invalid"}, l.events)
	require.Equal(t, "int", n.Identifier())
}

func TestMarkIdentifiableNoopWhenNotInvalid(t *testing.T) {
	n := kind.NewNode("primitive")
	n.MarkIdentifiable("int", "Integer", "Integer")
	n.MarkIdentifiable("other", "Other", "Other")
	require.Equal(t, "int", n.Identifier())
}

func TestMarkCompletedNoopUnlessIdentifiable(t *testing.T) {
	n := kind.NewNode("primitive")
	n.MarkCompleted()
	require.Equal(t, kind.StateInvalid, n.State())
}

func TestAddStateListenerInformNowReplaysReachedTransitions(t *testing.T) {
	n := kind.NewNode("primitive")
	n.MarkIdentifiable("int", "Integer", "Integer")
	n.MarkCompleted()

	l := &recordingStateListener{}
	n.AddStateListener(l, true)

	require.Equal(t, []string{"identifiable", "completed"}, l.events)
}

func TestRemoveStateListenerStopsNotifications(t *testing.T) {
	n := kind.NewNode("primitive")
	l := &recordingStateListener{}
	n.AddStateListener(l, false)
	n.RemoveStateListener(l)

	n.MarkIdentifiable("int", "Integer", "Integer")
	require.Empty(t, l.events)
}

func TestIgnoreDependingTypesPropagatesOnlyNewIdentifiers(t *testing.T) {
	n := kind.NewNode("class")
	var propagated [][]string
	n.SetIgnorePropagator(func(ids []string) {
		propagated = append(propagated, append([]string(nil), ids...))
	})

	n.IgnoreDependingTypesDuringInitialization("A", "B")
	n.IgnoreDependingTypesDuringInitialization("B", "C")

	require.Len(t, propagated, 2)
	require.ElementsMatch(t, []string{"A", "B"}, propagated[0])
	require.ElementsMatch(t, []string{"C"}, propagated[1])
	require.True(t, n.TypesToIgnoreForCycles()["A"])
	require.True(t, n.TypesToIgnoreForCycles()["C"])
}

func TestStateString(t *testing.T) {
	require.Equal(t, "Invalid", kind.StateInvalid.String())
	require.Equal(t, "Identifiable", kind.StateIdentifiable.String())
	require.Equal(t, "Completed", kind.StateCompleted.String())
}
