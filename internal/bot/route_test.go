package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAuthWinsOverEverything(t *testing.T) {
	// An unregistered sender never reaches a session or a command handler,
	// even with a guessed command string and a stale session.
	assert.Equal(t, RouteRejected, Classify(false, true, true, true))
	assert.Equal(t, RouteRejected, Classify(false, true, false, true))
	assert.Equal(t, RouteRejected, Classify(false, false, false, false))
}

func TestClassifySessionBeforeCommand(t *testing.T) {
	// "2-1" mid-dialog must feed the session, not command parsing.
	assert.Equal(t, RouteSession, Classify(true, true, true, true))
	assert.Equal(t, RouteSession, Classify(true, true, true, false))
}

func TestClassifyCommandAndFallback(t *testing.T) {
	assert.Equal(t, RouteCommand, Classify(true, true, false, true))
	assert.Equal(t, RouteFallback, Classify(true, true, false, false))
}

func TestClassifyNonText(t *testing.T) {
	assert.Equal(t, RouteUnsupported, Classify(true, false, false, false))
}
