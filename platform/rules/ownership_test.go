package rules

import (
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
)

func TestRentMonopolyBonus(t *testing.T) {
	e, st := newTestGame(t, models.DefaultRules(), 2)
	a := &st.Players[0]

	a.Properties = []models.Holding{{SpaceId: 3}}
	if got := e.CalculateRent(*a.Holding(3), a, st.Players, st.Rules); got != 4 {
		t.Errorf("Expected base rent 4 without the set, got %d", got)
	}

	a.Properties = []models.Holding{{SpaceId: 1}, {SpaceId: 3}}
	if got := e.CalculateRent(*a.Holding(3), a, st.Players, st.Rules); got != 8 {
		t.Errorf("Expected doubled rent 8 with the set, got %d", got)
	}

	a.Properties[1].Houses = 1
	if got := e.CalculateRent(*a.Holding(3), a, st.Players, st.Rules); got != 20 {
		t.Errorf("Expected plain 1-house rent 20, got %d", got)
	}

	a.Properties[1] = models.Holding{SpaceId: 3, Hotels: 1}
	if got := e.CalculateRent(*a.Holding(3), a, st.Players, st.Rules); got != 450 {
		t.Errorf("Expected hotel rent 450, got %d", got)
	}
}

func TestRentRailroads(t *testing.T) {
	e, st := newTestGame(t, models.DefaultRules(), 2)
	a := &st.Players[0]
	want := []int{25, 50, 100, 200}
	for i, id := range []int{5, 15, 25, 35} {
		a.Properties = append(a.Properties, models.Holding{SpaceId: id})
		if got := e.CalculateRent(*a.Holding(5), a, st.Players, st.Rules); got != want[i] {
			t.Errorf("With %d railroads expected %d, got %d", i+1, want[i], got)
		}
	}
}

func TestRentUtilityMultiplier(t *testing.T) {
	e, st := newTestGame(t, models.DefaultRules(), 2)
	a := &st.Players[0]
	a.Properties = []models.Holding{{SpaceId: 12}}
	if got := e.CalculateRent(a.Properties[0], a, st.Players, st.Rules); got != 4 {
		t.Errorf("Expected multiplier 4, got %d", got)
	}
	a.Properties = append(a.Properties, models.Holding{SpaceId: 28})
	if got := e.CalculateRent(a.Properties[0], a, st.Players, st.Rules); got != 10 {
		t.Errorf("Expected multiplier 10, got %d", got)
	}
}

func TestRentZeroWhenMortgagedOrJailed(t *testing.T) {
	rules := models.DefaultRules()
	rules.NoRentInJail = true
	e, st := newTestGame(t, rules, 2)
	a := &st.Players[0]

	a.Properties = []models.Holding{{SpaceId: 39, Mortgaged: true}}
	if got := e.CalculateRent(a.Properties[0], a, st.Players, st.Rules); got != 0 {
		t.Errorf("Expected no rent on a mortgaged space, got %d", got)
	}

	a.Properties[0].Mortgaged = false
	a.Jail = true
	if got := e.CalculateRent(a.Properties[0], a, st.Players, st.Rules); got != 0 {
		t.Errorf("Expected no rent while the owner is in jail, got %d", got)
	}

	st.Rules.NoRentInJail = false
	if got := e.CalculateRent(a.Properties[0], a, st.Players, st.Rules); got != 50 {
		t.Errorf("Expected rent 50 when jail does not matter, got %d", got)
	}
}

func TestWealthAndLiquidation(t *testing.T) {
	e, st := newTestGame(t, models.DefaultRules(), 2)
	a := &st.Players[0]
	a.Balance = 100
	a.Properties = []models.Holding{
		{SpaceId: 1, Houses: 2},       // 60 + 2*50
		{SpaceId: 3, Hotels: 1},       // 60 + 5*50
		{SpaceId: 5, Mortgaged: true}, // 200/2
	}

	if got := e.CalculateWealth(a); got != 100+160+310+100 {
		t.Errorf("Expected wealth 670, got %d", got)
	}
	if got := e.LiquidationValue(a); got != 110+185+100 {
		t.Errorf("Expected liquidation value 395, got %d", got)
	}

	a.Balance = -395
	if e.IsBankrupt(a) {
		t.Error("Expected a player who can exactly cover the debt not to be bankrupt")
	}
	a.Balance = -396
	if !e.IsBankrupt(a) {
		t.Error("Expected bankruptcy when the debt exceeds liquidation value")
	}
}

func TestOwnerOfAndCanBuy(t *testing.T) {
	e, st := newTestGame(t, models.DefaultRules(), 2)
	st.Players[1].Properties = []models.Holding{{SpaceId: 39}}

	if idx, ok := OwnerOf(39, st.Players); !ok || idx != 1 {
		t.Errorf("Expected owner 1, got %d (%v)", idx, ok)
	}
	if _, ok := OwnerOf(37, st.Players); ok {
		t.Error("Expected Park Place to be unowned")
	}

	a := &st.Players[0]
	if CanBuy(a, e.board.Space(39), st.Players) {
		t.Error("Expected an owned space not to be buyable")
	}
	if !CanBuy(a, e.board.Space(37), st.Players) {
		t.Error("Expected Park Place to be buyable")
	}
	if CanBuy(a, e.board.Space(4), st.Players) {
		t.Error("Expected a tax space not to be buyable")
	}
	a.Balance = 349
	if CanBuy(a, e.board.Space(37), st.Players) {
		t.Error("Expected Park Place to be unaffordable with 349")
	}

	h := Buy(e.board.Space(37))
	if h != (models.Holding{SpaceId: 37}) {
		t.Errorf("Expected a bare holding, got %+v", h)
	}
}
