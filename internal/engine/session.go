// File path: internal/engine/session.go
package engine

import (
	"fmt"
	"strings"
	"sync"
)

const (
	historyTurns   = 3
	summaryMaxRune = 200
)

// Turn is one completed question/answer exchange. Summary is a truncated
// answer, enough to carry context into the next prompt without replaying the
// full text.
type Turn struct {
	Question string
	Method   Method
	Summary  string
}

// Session holds per-conversation state. The caller owns the session and
// passes it into every Ask; sessions are independent, so concurrent sessions
// need no coordination beyond this struct's own lock.
type Session struct {
	mu    sync.Mutex
	turns []Turn
}

func NewSession() *Session {
	return &Session{}
}

// Append records a finished turn, truncating the answer to a short summary.
func (s *Session) Append(question string, method Method, answer string) {
	summary := answer
	if runes := []rune(summary); len(runes) > summaryMaxRune {
		summary = string(runes[:summaryMaxRune]) + "..."
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, Turn{Question: question, Method: method, Summary: summary})
}

// Recent returns up to the last n turns, oldest first.
func (s *Session) Recent(n int) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || len(s.turns) == 0 {
		return nil
	}
	start := len(s.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// Len reports the number of recorded turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Clear drops all recorded turns.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// History serializes the recent turns for prompt preambles. Empty when the
// session has no turns.
func (s *Session) History() string {
	turns := s.Recent(historyTurns)
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", turn.Question, turn.Summary)
	}
	return strings.TrimRight(b.String(), "\n")
}
