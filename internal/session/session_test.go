package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScore(t *testing.T) {
	cases := []struct {
		in   string
		home string
		away string
		ok   bool
	}{
		{"2-1", "2", "1", true},
		{"0:0", "0", "0", true},
		{"12-3", "12", "3", true},
		{" 2 - 1 ", "2", "1", true},
		{"-12", "", "12", true}, // loose on purpose
		{"3-", "", "", false},   // too short after cleanup
		{"2--1", "", "", false},
		{"2:1:0", "", "", false},
		{"2-1:0", "", "", false},
		{"2 1", "", "", false},
		{"a-1", "", "", false},
		{"2–1", "", "", false}, // en dash is not a delimiter
		{"", "", "", false},
		{"2-1-1", "", "", false},
		{"ab-1", "", "", false},
		{"210", "", "", false}, // no delimiter
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.in), func(t *testing.T) {
			home, away, ok := ValidateScore(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.home, home)
				assert.Equal(t, tc.away, away)
			}
		})
	}
}

func TestBetSessionWalk(t *testing.T) {
	matches := []MatchPrompt{
		{MatchID: 1, Label: "Alpha vs Beta"},
		{MatchID: 2, Label: "Gamma vs Delta"},
		{MatchID: 3, Label: "Epsilon vs Zeta"},
	}
	sess, err := NewBetSession(42, matches)
	require.NoError(t, err)

	_, ok := sess.Current()
	assert.False(t, ok, "no current fixture before first advance")

	for i, want := range matches {
		m, more := sess.Next()
		require.True(t, more)
		assert.Equal(t, want.MatchID, m.MatchID)
		assert.Equal(t, i, sess.Index())

		cur, ok := sess.Current()
		require.True(t, ok)
		assert.Equal(t, want.MatchID, cur.MatchID)
	}

	_, more := sess.Next()
	assert.False(t, more, "walk completes after last fixture")
}

func TestNewBetSessionRequiresMatches(t *testing.T) {
	_, err := NewBetSession(42, nil)
	assert.ErrorIs(t, err, ErrNoMatches)
}
