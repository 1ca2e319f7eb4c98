package rules

import (
	"github.com/DedS3t/monopoly-engine/app/models"
)

// land resolves the space the player is standing on.
func (t *turn) land(idx int) {
	p := t.player(idx)
	space := t.e.board.Space(p.Pos)

	switch space.Kind {
	case models.KindProperty, models.KindRailroad, models.KindUtility:
		t.landOwnable(idx, space)

	case models.KindTax:
		t.emit(models.Event{Kind: models.EventTaxPaid, Player: p.Id, Space: space.Id, Amount: space.Amount, Info: space.Name})
		t.pay(idx, space.Amount, bank)
		if t.st.Rules.TaxesToFreeParking {
			t.st.FreeParkingPot += space.Amount
		}

	case models.KindChance:
		t.drawCard(idx, models.DeckChance)

	case models.KindCommunityChest:
		t.drawCard(idx, models.DeckCommunityChest)

	case models.KindGoToJail:
		t.sendToJail(idx, space.Name)

	case models.KindFreeParking:
		if t.st.Rules.TaxesToFreeParking && t.st.FreeParkingPot > 0 {
			pot := t.st.FreeParkingPot
			t.st.FreeParkingPot = 0
			t.emit(models.Event{Kind: models.EventParkingCollected, Player: p.Id, Space: space.Id, Amount: pot})
			t.credit(idx, pot)
		}
	}
}

func (t *turn) landOwnable(idx int, space models.Space) {
	p := t.player(idx)
	ownerIdx, owned := OwnerOf(space.Id, t.st.Players)
	if !owned {
		id := space.Id
		t.st.PendingPurchase = &id
		t.emit(models.Event{Kind: models.EventPurchaseAvailable, Player: p.Id, Space: space.Id, Amount: space.Price, Info: space.Name})
		return
	}
	if ownerIdx == idx {
		return
	}

	owner := t.player(ownerIdx)
	rent := t.e.CalculateRent(*owner.Holding(space.Id), owner, t.st.Players, t.st.Rules)
	if space.Kind == models.KindUtility {
		rent *= t.st.Dice[0] + t.st.Dice[1]
	}
	if rent == 0 {
		t.emit(models.Event{Kind: models.EventNoRent, Player: p.Id, Target: owner.Id, Space: space.Id, Info: space.Name})
		return
	}
	t.emit(models.Event{Kind: models.EventRentPaid, Player: p.Id, Target: owner.Id, Space: space.Id, Amount: rent, Info: space.Name})
	t.pay(idx, rent, ownerIdx)
}

func (t *turn) deck(kind models.DeckKind) *models.Deck {
	if kind == models.DeckChance {
		return &t.st.Chance
	}
	return &t.st.CommunityChest
}

// draw takes the next card. An exhausted deck is reshuffled into a fresh permutation first,
// so a card can only come round again after every other card has been seen.
func (t *turn) draw(kind models.DeckKind) models.Card {
	cards := t.e.board.Cards(kind)
	d := t.deck(kind)
	if d.Cursor >= len(d.Order) {
		d.Order = shuffle(len(cards), t.src)
		d.Cursor = 0
	}
	card := cards[d.Order[d.Cursor]]
	d.Cursor++
	return card
}

func (t *turn) drawCard(idx int, kind models.DeckKind) {
	p := t.player(idx)
	card := t.draw(kind)
	t.emit(models.Event{Kind: models.EventCardDrawn, Player: p.Id, Space: p.Pos, Info: card.Text})

	switch card.Action {
	case models.CardMoveTo:
		t.move(idx, stepsTo(p.Pos, card.Target))

	case models.CardMoveRelative:
		if card.Spaces >= 0 {
			t.move(idx, card.Spaces)
			return
		}
		p.Pos, _ = Advance(p.Pos, card.Spaces)
		t.emit(models.Event{Kind: models.EventMoved, Player: p.Id, Space: p.Pos, Amount: card.Spaces})
		t.land(idx)

	case models.CardCollect:
		t.emit(models.Event{Kind: models.EventCollected, Player: p.Id, Space: -1, Amount: card.Amount})
		t.credit(idx, card.Amount)

	case models.CardPay:
		t.emit(models.Event{Kind: models.EventPaid, Player: p.Id, Space: -1, Amount: card.Amount})
		t.pay(idx, card.Amount, bank)

	case models.CardCollectFromAll:
		for j := range t.st.Players {
			if j == idx || t.st.Players[j].Bankrupt {
				continue
			}
			t.emit(models.Event{Kind: models.EventPaid, Player: t.st.Players[j].Id, Target: p.Id, Space: -1, Amount: card.Amount})
			t.pay(j, card.Amount, idx)
		}

	case models.CardPayAll:
		for j := range t.st.Players {
			if j == idx || t.st.Players[j].Bankrupt {
				continue
			}
			t.emit(models.Event{Kind: models.EventPaid, Player: p.Id, Target: t.st.Players[j].Id, Space: -1, Amount: card.Amount})
			t.pay(idx, card.Amount, j)
		}

	case models.CardGoToJail:
		t.sendToJail(idx, card.Text)

	case models.CardJailFree:
		p.JailFreeCards++
		t.emit(models.Event{Kind: models.EventJailCardGained, Player: p.Id, Space: -1})
	}
}
