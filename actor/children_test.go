package actor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func childRef(name string) *PID {
	path := RootPath(NewLocalAddress("actor", "test"), "parent").Child(name, 1)
	return NewPID(path, nil)
}

func TestChildrenEmptyToNormalViaReserve(t *testing.T) {
	c := NewChildren()
	assert.True(t, c.IsEmpty())

	c.ReserveChild("a")
	assert.False(t, c.IsEmpty())
	assert.True(t, c.IsNormal())
}

func TestChildrenReserveDuplicatePanics(t *testing.T) {
	c := NewChildren()
	c.ReserveChild("a")
	assert.Panics(t, func() { c.ReserveChild("a") })
}

func TestChildrenInitChildPromotesReservedSlot(t *testing.T) {
	c := NewChildren()
	c.ReserveChild("a")
	ref := childRef("a")
	c.InitChild(ref)

	live := c.LiveChildren()
	require.Len(t, live, 1)
	assert.True(t, live[0].Equal(ref))
	assert.NotNil(t, c.Stats("a"))
}

func TestChildrenShallDieTransitionsToTerminating(t *testing.T) {
	c := NewChildren()
	c.ReserveChild("a")
	ref := childRef("a")
	c.InitChild(ref)

	c.ShallDie(ref)
	assert.Equal(t, childrenTerminating, c.snapshot().kind)
	// UserRequest reason: is_terminating is reserved for the Termination
	// reason, and is_normal should still hold per spec.md §4.5.
	assert.False(t, c.IsTerminating())
	assert.True(t, c.IsNormal())
}

func TestChildrenRemoveEmptiesToDieReturnsToNormal(t *testing.T) {
	c := NewChildren()
	c.ReserveChild("a")
	ref := childRef("a")
	c.InitChild(ref)
	c.ShallDie(ref)

	c.Remove(ref)
	assert.False(t, c.IsTerminating())
	assert.False(t, c.HasLiveChildren())
}

func TestChildrenRemoveWithTerminationReasonGoesToTerminated(t *testing.T) {
	c := NewChildren()
	c.ReserveChild("a")
	ref := childRef("a")
	c.InitChild(ref)

	refs := c.StopAllForTermination()
	require.Len(t, refs, 1)
	assert.True(t, c.IsTerminating())

	c.Remove(ref)
	assert.True(t, c.IsTerminated())
}

func TestChildrenTerminatedIsAbsorbing(t *testing.T) {
	c := NewChildren()
	c.StopAllForTermination() // Empty -> Terminated directly
	assert.True(t, c.IsTerminated())

	assert.Panics(t, func() { c.ReserveChild("a") })
	c.ShallDie(childRef("a")) // no-op, should not panic
	assert.True(t, c.IsTerminated())
}

func TestChildrenReserveWhileTerminatingForTerminationPanics(t *testing.T) {
	c := NewChildren()
	c.ReserveChild("a")
	ref := childRef("a")
	c.InitChild(ref)
	c.StopAllForTermination()

	assert.Panics(t, func() { c.ReserveChild("b") })
}

func TestChildrenReserveWhileTerminatingForRecreationIsAllowed(t *testing.T) {
	c := NewChildren()
	c.ReserveChild("a")
	ref := childRef("a")
	c.InitChild(ref)
	refs := c.StopAllForRecreate(errors.New("boom"))
	require.Len(t, refs, 1)

	assert.NotPanics(t, func() { c.ReserveChild("b") })
}

func TestChildrenNamesInChildrenAndReservedAreDisjoint(t *testing.T) {
	c := NewChildren()
	c.ReserveChild("a")
	c.ReserveChild("b")
	ref := childRef("a")
	c.InitChild(ref)

	// "a" is now live, "b" is still reserved; re-reserving either must panic.
	assert.Panics(t, func() { c.ReserveChild("a") })
	assert.Panics(t, func() { c.ReserveChild("b") })
}

func TestChildrenSetTerminationReasonFailsWhenNotTerminating(t *testing.T) {
	c := NewChildren()
	ok := c.SetTerminationReason(reasonTermination, nil)
	assert.False(t, ok)
}

func TestChildrenSetTerminationReasonSucceedsWhenTerminating(t *testing.T) {
	c := NewChildren()
	c.ReserveChild("a")
	ref := childRef("a")
	c.InitChild(ref)
	c.ShallDie(ref)

	ok := c.SetTerminationReason(reasonTermination, nil)
	assert.True(t, ok)
	assert.True(t, c.IsTerminating())
	assert.False(t, c.IsNormal())
}

func TestChildrenLiveChildrenOrderedByName(t *testing.T) {
	c := NewChildren()
	for _, n := range []string{"c", "a", "b"} {
		c.ReserveChild(n)
		c.InitChild(childRef(n))
	}
	live := c.LiveChildren()
	require.Len(t, live, 3)
	assert.Equal(t, "a", live[0].Path().Name())
	assert.Equal(t, "b", live[1].Path().Name())
	assert.Equal(t, "c", live[2].Path().Name())
}
