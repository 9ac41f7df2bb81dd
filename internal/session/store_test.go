package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReplacesExistingSession(t *testing.T) {
	st := NewStore()

	first, err := NewBetSession(7, []MatchPrompt{{MatchID: 1, Label: "A vs B"}})
	require.NoError(t, err)
	st.Put(first)

	second, err := NewBetSession(7, []MatchPrompt{{MatchID: 2, Label: "C vs D"}})
	require.NoError(t, err)
	st.Put(second)

	got, ok := st.Get(7)
	require.True(t, ok)
	assert.Same(t, second, got, "a new session silently replaces the old one")
}

func TestStoreHasActiveAndRemove(t *testing.T) {
	st := NewStore()
	assert.False(t, st.HasActive(7))

	sess, err := NewBetSession(7, []MatchPrompt{{MatchID: 1, Label: "A vs B"}})
	require.NoError(t, err)
	st.Put(sess)
	assert.True(t, st.HasActive(7))
	assert.False(t, st.HasActive(8))

	st.Remove(7)
	assert.False(t, st.HasActive(7))
}
