package clockx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClock_New_DefaultCapacity(t *testing.T) {
	c := New(0)
	require.NotNil(t, c)
	require.Equal(t, 1, c.Capacity())
}

func TestClock_SelectVictim_NoCandidates(t *testing.T) {
	c := New(3)
	id, ok := c.SelectVictim(nil)
	require.False(t, ok)
	require.Equal(t, -1, id)
}

func TestClock_SelectVictim_PrefersUnreferenced(t *testing.T) {
	c := New(3)
	c.Touch(0)
	c.Touch(2)
	// slot 1 never touched, so its ref bit is clear.

	victim, ok := c.SelectVictim([]int{0, 1, 2})
	require.True(t, ok)
	require.Equal(t, 1, victim)
}

func TestClock_SelectVictim_GivesSecondChance(t *testing.T) {
	c := New(2)
	c.Touch(0)
	c.Touch(1)

	// Both referenced: first pass clears both ref bits and the hand
	// comes back around to pick a victim on the second pass.
	victim, ok := c.SelectVictim([]int{0, 1})
	require.True(t, ok)
	require.Contains(t, []int{0, 1}, victim)
}

func TestClock_SelectVictim_DoesNotRemoveCandidate(t *testing.T) {
	c := New(2)
	victim, ok := c.SelectVictim([]int{0, 1})
	require.True(t, ok)

	// Calling again with the same candidate set must still succeed: the
	// victim was not removed from any internal tracking set.
	victim2, ok := c.SelectVictim([]int{0, 1})
	require.True(t, ok)
	require.Contains(t, []int{0, 1}, victim)
	require.Contains(t, []int{0, 1}, victim2)
}

func TestClock_TouchAndClearRef_BoundsChecked(t *testing.T) {
	c := New(2)
	// Out of range must not panic.
	c.Touch(-1)
	c.Touch(5)
	c.ClearRef(-1)
	c.ClearRef(5)
}

func TestClock_SetPosition(t *testing.T) {
	c := New(4)
	c.SetPosition(2)
	require.Equal(t, 2, c.Position())

	// Out of range resets to 0.
	c.SetPosition(99)
	require.Equal(t, 0, c.Position())
}
