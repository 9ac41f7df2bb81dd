package session

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNoMatches is returned when a session is requested with nothing to predict.
var ErrNoMatches = errors.New("session: no matches to collect bets for")

// MatchPrompt is one fixture presented to the participant during bet input.
type MatchPrompt struct {
	MatchID int64
	Label   string
}

// BetSession walks a participant through upcoming fixtures one at a time.
// The cursor starts before the first match; Next advances and returns the
// fixture to present, or reports completion when the list is exhausted.
type BetSession struct {
	userID  int64
	matches []MatchPrompt
	cursor  int
}

// NewBetSession creates a session over the given fixtures.
func NewBetSession(userID int64, matches []MatchPrompt) (*BetSession, error) {
	if len(matches) == 0 {
		return nil, ErrNoMatches
	}
	return &BetSession{
		userID:  userID,
		matches: matches,
		cursor:  -1,
	}, nil
}

// UserID returns the owner of the session.
func (s *BetSession) UserID() int64 { return s.userID }

// Current returns the fixture the participant is being asked about.
// Before the first Next call there is no current fixture.
func (s *BetSession) Current() (MatchPrompt, bool) {
	if s.cursor < 0 || s.cursor >= len(s.matches) {
		return MatchPrompt{}, false
	}
	return s.matches[s.cursor], true
}

// Next advances the cursor and returns the next fixture to present.
// The second return value is false once all fixtures have been walked.
func (s *BetSession) Next() (MatchPrompt, bool) {
	s.cursor++
	if s.cursor >= len(s.matches) {
		return MatchPrompt{}, false
	}
	return s.matches[s.cursor], true
}

// Index returns the zero-based cursor position.
func (s *BetSession) Index() int { return s.cursor }

// Len returns the number of fixtures in the session.
func (s *BetSession) Len() int { return len(s.matches) }

// ValidateScore checks a score prediction and splits it into home and away
// parts. Accepted shapes: digits around a single "-" or ":" delimiter, with
// any whitespace removed first. Parts are not required to be non-empty
// numbers; "-12" passes while "3-" fails only on length. That looseness is
// kept on purpose to match established behaviour.
func ValidateScore(text string) (home, away string, ok bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	if len(cleaned) < 3 {
		return "", "", false
	}

	for _, r := range cleaned {
		if !unicode.IsDigit(r) && r != '-' && r != ':' {
			return "", "", false
		}
	}

	var sep string
	switch {
	case strings.Contains(cleaned, "-") && strings.Contains(cleaned, ":"):
		return "", "", false
	case strings.Contains(cleaned, "-"):
		sep = "-"
	case strings.Contains(cleaned, ":"):
		sep = ":"
	default:
		return "", "", false
	}

	parts := strings.Split(cleaned, sep)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
