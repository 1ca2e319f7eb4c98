package rules

import (
	"github.com/DedS3t/monopoly-engine/app/models"
)

// OwnerOf scans every player's holdings for spaceId. O(players*holdings).
func OwnerOf(spaceId int, players []models.Player) (int, bool) {
	for i := range players {
		if players[i].Holding(spaceId) != nil {
			return i, true
		}
	}
	return -1, false
}

// ownsGroup reports whether the player holds every space of the group.
func (e *Engine) ownsGroup(p *models.Player, group string) bool {
	ids := e.board.Group(group)
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if p.Holding(id) == nil {
			return false
		}
	}
	return true
}

func (e *Engine) countKind(p *models.Player, kind models.SpaceKind) int {
	n := 0
	for _, h := range p.Properties {
		if e.board.Space(h.SpaceId).Kind == kind {
			n++
		}
	}
	return n
}

// CalculateRent returns the rent owed for landing on holding. For utilities it returns the
// multiplier (4 or 10) that the caller applies to the roll total.
func (e *Engine) CalculateRent(holding models.Holding, owner *models.Player, players []models.Player, rules models.Rules) int {
	if rules.NoRentInJail && owner.Jail {
		return 0
	}
	if holding.Mortgaged {
		return 0
	}

	space := e.board.Space(holding.SpaceId)
	switch space.Kind {
	case models.KindProperty:
		if holding.Hotels > 0 {
			return space.Rent[5]
		}
		rent := space.Rent[holding.Houses]
		if holding.Houses == 0 && e.ownsGroup(owner, space.Group) {
			rent *= 2
		}
		return rent
	case models.KindRailroad:
		n := e.countKind(owner, models.KindRailroad)
		if n < 1 {
			return 0
		}
		if n > len(space.Rent) {
			n = len(space.Rent)
		}
		return space.Rent[n-1]
	case models.KindUtility:
		if e.countKind(owner, models.KindUtility) >= 2 {
			return 10
		}
		return 4
	}
	return 0
}

// CalculateWealth values a player at full asset value: used for the time-limit win.
func (e *Engine) CalculateWealth(p *models.Player) int {
	total := p.Balance
	for _, h := range p.Properties {
		s := e.board.Space(h.SpaceId)
		value := s.Price
		if h.Mortgaged {
			value /= 2
		}
		value += h.Houses * s.HouseCost
		value += h.Hotels * s.HouseCost * 5
		total += value
	}
	return total
}

// LiquidationValue is what the holdings would raise in a forced sale: buildings at half cost.
func (e *Engine) LiquidationValue(p *models.Player) int {
	total := 0
	for _, h := range p.Properties {
		s := e.board.Space(h.SpaceId)
		value := s.Price
		if h.Mortgaged {
			value = s.Price / 2
		}
		value += h.Houses * s.HouseCost / 2
		value += h.Hotels * s.HouseCost * 5 / 2
		total += value
	}
	return total
}

func (e *Engine) IsBankrupt(p *models.Player) bool {
	return p.Balance+e.LiquidationValue(p) < 0
}
