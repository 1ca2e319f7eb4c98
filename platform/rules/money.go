package rules

import (
	"github.com/DedS3t/monopoly-engine/app/models"
)

// pay moves amount from one seat to another (or the bank) in one step. A payer left with negative
// cash becomes insolvent instead of the transfer being refused.
func (t *turn) pay(from, amount, to int) {
	t.st.Players[from].Balance -= amount
	if to != bank {
		t.credit(to, amount)
	}
	t.checkInsolvent(from, to)
}

func (t *turn) credit(idx, amount int) {
	t.st.Players[idx].Balance += amount
	t.checkSolvent(idx)
}

func (t *turn) insolvency(idx int) int {
	id := t.st.Players[idx].Id
	for i, in := range t.st.Insolvencies {
		if in.Player == id {
			return i
		}
	}
	return -1
}

func (t *turn) checkInsolvent(idx, creditor int) {
	p := t.player(idx)
	if p.Balance >= 0 || t.insolvency(idx) >= 0 {
		return
	}
	in := models.Insolvency{Player: p.Id}
	if creditor != bank {
		in.Creditor = t.st.Players[creditor].Id
	}
	t.st.Insolvencies = append(t.st.Insolvencies, in)

	ev := models.Event{Kind: models.EventInsolvent, Player: p.Id, Target: in.Creditor, Space: -1, Amount: -p.Balance}
	if t.e.IsBankrupt(p) {
		ev.Info = "debt exceeds liquidation value"
	}
	t.emit(ev)
}

func (t *turn) checkSolvent(idx int) {
	i := t.insolvency(idx)
	if i < 0 || t.st.Players[idx].Balance < 0 {
		return
	}
	t.st.Insolvencies = append(t.st.Insolvencies[:i], t.st.Insolvencies[i+1:]...)
	t.emit(models.Event{Kind: models.EventSolvent, Player: t.st.Players[idx].Id, Space: -1, Amount: t.st.Players[idx].Balance})
}

// bankrupt retires a player. Buildings go back to the bank; the bare holdings and any jail cards
// pass to a player creditor, or back to the bank when the bank was owed. Outstanding debt is void.
func (t *turn) bankrupt(idx int, creditorId string) {
	p := t.player(idx)

	heir := -1
	if creditorId != "" {
		if c := t.st.PlayerIndex(creditorId); c >= 0 && !t.st.Players[c].Bankrupt {
			heir = c
		}
	}
	for _, h := range p.Properties {
		h.Houses, h.Hotels = 0, 0
		if heir >= 0 {
			t.st.Players[heir].Properties = append(t.st.Players[heir].Properties, h)
		}
	}
	if heir >= 0 {
		t.st.Players[heir].JailFreeCards += p.JailFreeCards
	}

	p.Properties = []models.Holding{}
	p.Balance = 0
	p.Jail = false
	p.JailTurnsRemaining = 0
	p.JailFreeCards = 0
	p.Bankrupt = true
	if i := t.insolvency(idx); i >= 0 {
		t.st.Insolvencies = append(t.st.Insolvencies[:i], t.st.Insolvencies[i+1:]...)
	}
	t.emit(models.Event{Kind: models.EventBankrupt, Player: p.Id, Target: creditorId, Space: -1})

	if idx == t.st.CurrentPlayer {
		t.st.PendingPurchase = nil
		t.st.RollAgain = false
		if t.st.ActivePlayers() > 1 {
			t.endTurn()
		}
	}
}
