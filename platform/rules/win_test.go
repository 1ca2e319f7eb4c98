package rules

import (
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
)

func TestMoneyGoalWin(t *testing.T) {
	rules := models.DefaultRules()
	rules.WinningCondition = models.WinCondition{Type: models.WinMoneyGoal, Value: 5000}
	e, st := newTestGame(t, rules, 2)
	st.CommunityChest = models.Deck{Order: []int{0, 1, 2, 3, 4, 5, 6, 7}}
	st.Players[0].Balance = 4900

	if w := e.CheckWinCondition(st); w != nil {
		t.Fatalf("Expected no winner at 4900, got %s", w.Id)
	}

	st, events := mustResolve(t, e, st, "a", Roll{}, dice(1, 1))
	if st.Players[0].Balance != 5100 {
		t.Fatalf("Expected 5100 after the bank error, got %d", st.Players[0].Balance)
	}
	if st.Winner != "a" || st.Phase != models.PhaseGameOver {
		t.Errorf("Expected A to win, got %q in %s", st.Winner, st.Phase)
	}
	if !hasEvent(events, models.EventWinner) {
		t.Error("Expected a winner event")
	}

	first := e.CheckWinCondition(st)
	second := e.CheckWinCondition(st)
	if first == nil || second == nil || first.Id != second.Id {
		t.Error("Expected CheckWinCondition to be idempotent")
	}
}

func TestTimeLimitWin(t *testing.T) {
	rules := models.DefaultRules()
	rules.WinningCondition = models.WinCondition{Type: models.WinTimeLimit, Value: 10}
	e, st := newTestGame(t, rules, 2)

	st.TurnCount = 19
	if w := e.CheckWinCondition(st); w != nil {
		t.Fatalf("Expected no winner before 10 rounds, got %s", w.Id)
	}

	st.TurnCount = 20
	if w := e.CheckWinCondition(st); w == nil || w.Id != "a" {
		t.Errorf("Expected the first seat to win a tie, got %v", w)
	}

	st.Players[1].Properties = []models.Holding{{SpaceId: 1}}
	if w := e.CheckWinCondition(st); w == nil || w.Id != "b" {
		t.Errorf("Expected the wealthier player to win, got %v", w)
	}
}

func TestLastPlayerStanding(t *testing.T) {
	e, st := newTestGame(t, models.DefaultRules(), 3)
	st.Players[0].Bankrupt = true
	if w := e.CheckWinCondition(st); w != nil {
		t.Fatalf("Expected no winner with two players left, got %s", w.Id)
	}
	st.Players[2].Bankrupt = true
	if w := e.CheckWinCondition(st); w == nil || w.Id != "b" {
		t.Errorf("Expected B to win, got %v", w)
	}
}
