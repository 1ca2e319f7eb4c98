package rules

import (
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
)

// scripted replays queued values, then returns 0 forever.
type scripted struct {
	vals []int
}

func (s *scripted) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v % n
}

// dice queues die faces for RollDice.
func dice(faces ...int) *scripted {
	s := &scripted{}
	for _, f := range faces {
		s.vals = append(s.vals, f-1)
	}
	return s
}

func newTestGame(t *testing.T, rules models.Rules, n int) (*Engine, *models.GameState) {
	t.Helper()
	e := New(board.MustLoad())
	seats := []models.Seat{{Id: "a", Username: "Alice"}, {Id: "b", Username: "Bob"}, {Id: "c", Username: "Cara"}}
	st, err := e.InitializeGame(rules, seats[:n], &scripted{})
	if err != nil {
		t.Fatalf("InitializeGame() failed: %v", err)
	}
	return e, st
}

func mustResolve(t *testing.T, e *Engine, st *models.GameState, actor string, act Action, src Source) (*models.GameState, []models.Event) {
	t.Helper()
	if src == nil {
		src = &scripted{}
	}
	next, events, err := e.Resolve(st, actor, act, src)
	if err != nil {
		t.Fatalf("Resolve(%s, %s) failed: %v", actor, act.Kind(), err)
	}
	return next, events
}

func hasEvent(events []models.Event, kind models.EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}
