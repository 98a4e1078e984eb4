package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection(t *testing.T) {
	var c Collection[StateID, *State]
	var events []string
	c.Added.Connect(func(s *State) { events = append(events, "added") })
	c.Removing.Connect(func(s *State) {
		assert.True(t, c.Has(s.ID()), "still present while removing")
		events = append(events, "removing")
	})
	c.Removed.Connect(func(s *State) {
		assert.False(t, c.Has(s.ID()))
		events = append(events, "removed")
	})

	assert.Equal(t, StateID(1), c.NextID())
	require.NoError(t, c.Add(NewState(1, 1, 0)))
	require.NoError(t, c.Add(NewState(5, 1, 0)))
	require.NoError(t, c.Insert(-3, NewState(2, 1, 0)))
	require.NoError(t, c.Insert(99, NewState(3, 1, 0)))
	assert.Equal(t, []StateID{2, 1, 5, 3}, c.IDs())
	assert.Equal(t, 2, c.IndexOf(5))
	assert.Equal(t, StateID(6), c.NextID())

	assert.ErrorIs(t, c.Add(NewState(5, 1, 0)), ErrDuplicateID)

	_, err := c.Remove(5)
	require.NoError(t, err)
	_, err = c.Remove(5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, -1, c.IndexOf(5))
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"added", "added", "added", "added", "removing", "removed"}, events)
}
