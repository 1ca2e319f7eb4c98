package rules

import (
	"github.com/DedS3t/monopoly-engine/app/models"
)

// CheckWinCondition returns the winner, or nil while the game goes on. It only reads st.
//
// The last player standing always wins. Otherwise time_limit picks the wealthiest active player
// once turnCount reaches value*activePlayers (ties go to the earliest seat), and money_goal picks
// the first active player in seat order holding at least value in cash.
func (e *Engine) CheckWinCondition(st *models.GameState) *models.Player {
	var active []*models.Player
	for i := range st.Players {
		if !st.Players[i].Bankrupt {
			active = append(active, &st.Players[i])
		}
	}
	if len(active) == 1 {
		return active[0]
	}
	if len(active) == 0 {
		return nil
	}

	cond := st.Rules.WinningCondition
	switch cond.Type {
	case models.WinTimeLimit:
		if st.TurnCount >= cond.Value*len(active) {
			richest := active[0]
			best := e.CalculateWealth(richest)
			for _, p := range active[1:] {
				if w := e.CalculateWealth(p); w > best {
					richest, best = p, w
				}
			}
			return richest
		}
	case models.WinMoneyGoal:
		for _, p := range active {
			if p.Balance >= cond.Value {
				return p
			}
		}
	}
	return nil
}
