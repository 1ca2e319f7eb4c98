package rules

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
)

const bank = -1

// turn carries one Resolve call: the working copy of the state and the events so far.
type turn struct {
	e      *Engine
	st     *models.GameState
	src    Source
	events []models.Event
}

func (t *turn) emit(ev models.Event) {
	t.events = append(t.events, ev)
}

func (t *turn) player(idx int) *models.Player {
	return &t.st.Players[idx]
}

func (t *turn) apply(idx int, act Action) error {
	p := t.player(idx)
	if p.Bankrupt {
		return invalid("%s is bankrupt", p.Username)
	}

	switch act.(type) {
	case MortgageProperty, SellBuilding, DeclareBankruptcy:
		// liquidation is open to whoever owes money, even off-turn
		if idx != t.st.CurrentPlayer && t.insolvency(idx) < 0 {
			return ErrNotPlayersTurn
		}
	default:
		if idx != t.st.CurrentPlayer {
			return ErrNotPlayersTurn
		}
		if len(t.st.Insolvencies) > 0 {
			return invalid("outstanding debts must be settled first")
		}
	}

	switch a := act.(type) {
	case Roll:
		return t.roll(idx)
	case Purchase:
		return t.buy(idx)
	case Decline:
		return t.decline(idx)
	case BuildHouse:
		return t.build(idx, a.Space)
	case SellBuilding:
		return t.sell(idx, a.Space)
	case MortgageProperty:
		return t.mortgage(idx, a.Space)
	case UnmortgageProperty:
		return t.unmortgage(idx, a.Space)
	case EndTurn:
		if t.st.Phase != models.PhaseTurnOver {
			return invalid("you cannot end your turn during %s", t.st.Phase)
		}
		t.endTurn()
		return nil
	case PayJailBail:
		return t.payBail(idx)
	case UseJailCard:
		return t.useJailCard(idx)
	case DeclareBankruptcy:
		in := t.insolvency(idx)
		if in < 0 {
			return invalid("only an insolvent player can declare bankruptcy")
		}
		t.bankrupt(idx, t.st.Insolvencies[in].Creditor)
		return nil
	}
	return invalid("unsupported action %s", act.Kind())
}

func (t *turn) roll(idx int) error {
	if t.st.Phase != models.PhaseRolling {
		return invalid("you cannot roll during %s", t.st.Phase)
	}
	p := t.player(idx)
	d1, d2 := RollDice(t.src)
	t.st.Dice = [2]int{d1, d2}
	t.emit(models.Event{Kind: models.EventDiceRolled, Player: p.Id, Space: -1, Dice: t.st.Dice, Amount: d1 + d2})
	doubles := IsDoubles(d1, d2)

	if p.Jail {
		t.rollInJail(idx, doubles)
		return nil
	}

	if doubles {
		t.st.DoublesCount++
		if t.st.DoublesCount == 3 {
			t.sendToJail(idx, "three doubles in a row")
			t.st.Phase = models.PhaseTurnOver
			return nil
		}
	}
	t.st.RollAgain = doubles
	t.move(idx, d1+d2)
	t.settlePhase()
	return nil
}

func (t *turn) rollInJail(idx int, doubles bool) {
	p := t.player(idx)
	t.st.RollAgain = false
	switch {
	case doubles:
		t.release(idx, "rolled doubles")
	case p.JailTurnsRemaining > 0:
		p.JailTurnsRemaining--
		t.emit(models.Event{Kind: models.EventJailStay, Player: p.Id, Space: p.Pos, Amount: p.JailTurnsRemaining})
		t.st.Phase = models.PhaseTurnOver
		return
	case p.JailFreeCards > 0:
		p.JailFreeCards--
		t.emit(models.Event{Kind: models.EventJailCardUsed, Player: p.Id, Space: p.Pos})
		t.release(idx, "used a get out of jail free card")
	default:
		bail := t.st.Rules.JailBail
		t.emit(models.Event{Kind: models.EventBailPaid, Player: p.Id, Space: p.Pos, Amount: bail})
		t.pay(idx, bail, bank)
		t.release(idx, "paid bail")
	}
	t.move(idx, t.st.Dice[0]+t.st.Dice[1])
	t.settlePhase()
}

func (t *turn) release(idx int, why string) {
	p := t.player(idx)
	p.Jail = false
	p.JailTurnsRemaining = 0
	t.emit(models.Event{Kind: models.EventReleased, Player: p.Id, Space: p.Pos, Info: why})
}

func (t *turn) payBail(idx int) error {
	p := t.player(idx)
	if !p.Jail || t.st.Phase != models.PhaseRolling {
		return invalid("bail can only be paid from jail before rolling")
	}
	bail := t.st.Rules.JailBail
	if p.Balance < bail {
		return funds(bail, p.Balance)
	}
	t.emit(models.Event{Kind: models.EventBailPaid, Player: p.Id, Space: p.Pos, Amount: bail})
	t.pay(idx, bail, bank)
	t.release(idx, "paid bail")
	return nil
}

func (t *turn) useJailCard(idx int) error {
	p := t.player(idx)
	if !p.Jail || t.st.Phase != models.PhaseRolling {
		return invalid("a jail card can only be used from jail before rolling")
	}
	if p.JailFreeCards == 0 {
		return invalid("you have no get out of jail free card")
	}
	p.JailFreeCards--
	t.emit(models.Event{Kind: models.EventJailCardUsed, Player: p.Id, Space: p.Pos})
	t.release(idx, "used a get out of jail free card")
	return nil
}

// move advances the player, credits the start salary when passed, then resolves the landing.
// A move that ends on go-to-jail earns no salary.
func (t *turn) move(idx, steps int) {
	p := t.player(idx)
	from := p.Pos
	pos, passed := Advance(from, steps)
	p.Pos = pos
	t.emit(models.Event{Kind: models.EventMoved, Player: p.Id, Space: pos, Amount: steps})
	if passed && t.e.board.Space(pos).Kind != models.KindGoToJail {
		t.emit(models.Event{Kind: models.EventPassedStart, Player: p.Id, Space: board.StartPosition, Amount: t.st.Rules.GoSalary})
		t.credit(idx, t.st.Rules.GoSalary)
	}
	t.land(idx)
}

func (t *turn) sendToJail(idx int, why string) {
	p := t.player(idx)
	p.Pos = board.JailPosition
	p.Jail = true
	p.JailTurnsRemaining = t.st.Rules.JailTurns
	if idx == t.st.CurrentPlayer {
		t.st.RollAgain = false
		t.st.DoublesCount = 0
	}
	t.emit(models.Event{Kind: models.EventSentToJail, Player: p.Id, Space: board.JailPosition, Info: why})
}

// settlePhase picks the phase once the mover's landing has been resolved.
func (t *turn) settlePhase() {
	switch {
	case t.st.PendingPurchase != nil:
		t.st.Phase = models.PhaseBuying
	case t.st.RollAgain:
		t.st.Phase = models.PhaseRolling
	default:
		t.st.Phase = models.PhaseTurnOver
	}
}

func (t *turn) endTurn() {
	cur := t.st.Current()
	t.emit(models.Event{Kind: models.EventTurnEnded, Player: cur.Id, Space: -1, Amount: t.st.TurnCount})

	n := len(t.st.Players)
	for step := 1; step <= n; step++ {
		next := (t.st.CurrentPlayer + step) % n
		if !t.st.Players[next].Bankrupt {
			t.st.CurrentPlayer = next
			break
		}
	}
	t.st.DoublesCount = 0
	t.st.RollAgain = false
	t.st.PendingPurchase = nil
	t.st.TurnCount++
	t.st.Phase = models.PhaseRolling
}

func (t *turn) buy(idx int) error {
	if t.st.Phase != models.PhaseBuying || t.st.PendingPurchase == nil {
		return invalid("there is nothing to buy")
	}
	p := t.player(idx)
	space := t.e.board.Space(*t.st.PendingPurchase)
	if !CanBuy(p, space, t.st.Players) {
		if p.Balance < space.Price {
			return funds(space.Price, p.Balance)
		}
		return invalid("%s cannot be bought", space.Name)
	}
	t.pay(idx, space.Price, bank)
	p.Properties = append(p.Properties, Buy(space))
	t.st.PendingPurchase = nil
	t.emit(models.Event{Kind: models.EventBought, Player: p.Id, Space: space.Id, Amount: space.Price, Info: space.Name})
	t.settlePhase()
	return nil
}

func (t *turn) decline(idx int) error {
	if t.st.Phase != models.PhaseBuying || t.st.PendingPurchase == nil {
		return invalid("there is nothing to decline")
	}
	p := t.player(idx)
	space := t.e.board.Space(*t.st.PendingPurchase)
	t.emit(models.Event{Kind: models.EventDeclined, Player: p.Id, Space: space.Id, Info: space.Name})
	if t.st.Rules.AuctionUnpurchased {
		t.emit(models.Event{Kind: models.EventAuctionRequired, Space: space.Id, Amount: space.Price, Info: space.Name})
	}
	t.st.PendingPurchase = nil
	t.settlePhase()
	return nil
}

func (t *turn) build(idx, spaceId int) error {
	if spaceId < 0 || spaceId >= board.Size {
		return invalid("space %d is not on the board", spaceId)
	}
	p := t.player(idx)
	if err := t.e.checkBuild(p, spaceId, t.st.Rules); err != nil {
		return err
	}
	space := t.e.board.Space(spaceId)
	h := p.Holding(spaceId)
	*h = Build(*h)
	t.pay(idx, space.HouseCost, bank)
	t.emit(models.Event{Kind: models.EventBuilt, Player: p.Id, Space: spaceId, Amount: space.HouseCost, Info: buildingInfo(*h)})
	return nil
}

func (t *turn) sell(idx, spaceId int) error {
	if spaceId < 0 || spaceId >= board.Size {
		return invalid("space %d is not on the board", spaceId)
	}
	p := t.player(idx)
	if err := t.e.checkSell(p, spaceId, t.st.Rules); err != nil {
		return err
	}
	space := t.e.board.Space(spaceId)
	h := p.Holding(spaceId)
	*h = SellHouse(*h)
	t.emit(models.Event{Kind: models.EventHouseSold, Player: p.Id, Space: spaceId, Amount: space.HouseCost / 2, Info: buildingInfo(*h)})
	t.credit(idx, space.HouseCost/2)
	return nil
}

func (t *turn) mortgage(idx, spaceId int) error {
	if spaceId < 0 || spaceId >= board.Size {
		return invalid("space %d is not on the board", spaceId)
	}
	p := t.player(idx)
	if err := t.e.checkMortgage(p, spaceId, t.st.Rules); err != nil {
		return err
	}
	space := t.e.board.Space(spaceId)
	h := p.Holding(spaceId)
	*h = Mortgage(*h)
	t.emit(models.Event{Kind: models.EventMortgaged, Player: p.Id, Space: spaceId, Amount: space.MortgageValue(), Info: space.Name})
	t.credit(idx, space.MortgageValue())
	return nil
}

func (t *turn) unmortgage(idx, spaceId int) error {
	if spaceId < 0 || spaceId >= board.Size {
		return invalid("space %d is not on the board", spaceId)
	}
	p := t.player(idx)
	if err := t.e.checkUnmortgage(p, spaceId, t.st.Rules); err != nil {
		return err
	}
	space := t.e.board.Space(spaceId)
	h := p.Holding(spaceId)
	*h = Unmortgage(*h)
	t.pay(idx, space.MortgageValue(), bank)
	t.emit(models.Event{Kind: models.EventUnmortgaged, Player: p.Id, Space: spaceId, Amount: space.MortgageValue(), Info: space.Name})
	return nil
}

func buildingInfo(h models.Holding) string {
	switch {
	case h.Hotels > 0:
		return "hotel"
	case h.Houses == 1:
		return "1 house"
	}
	return fmt.Sprintf("%d houses", h.Houses)
}
