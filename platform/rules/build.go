package rules

import (
	"github.com/DedS3t/monopoly-engine/app/models"
)

// groupLevels returns the min and max build level across a group the player fully owns.
func (e *Engine) groupLevels(p *models.Player, group string) (min, max int) {
	min = 5
	for _, id := range e.board.Group(group) {
		lvl := 0
		if h := p.Holding(id); h != nil {
			lvl = h.Level()
		}
		if lvl < min {
			min = lvl
		}
		if lvl > max {
			max = lvl
		}
	}
	return min, max
}

func (e *Engine) checkBuild(p *models.Player, spaceId int, rules models.Rules) error {
	space := e.board.Space(spaceId)
	if space.Kind != models.KindProperty {
		return invalid("%s cannot be built on", space.Name)
	}
	h := p.Holding(spaceId)
	if h == nil {
		return invalid("you do not own %s", space.Name)
	}
	if h.Mortgaged {
		return invalid("%s is mortgaged", space.Name)
	}
	if !e.ownsGroup(p, space.Group) {
		return invalid("you need the whole %s group to build", space.Group)
	}
	if h.Hotels > 0 {
		return invalid("%s already has a hotel", space.Name)
	}
	if rules.EvenBuildRule {
		if min, _ := e.groupLevels(p, space.Group); h.Level() != min {
			return invalid("build evenly: other %s properties must catch up first", space.Group)
		}
	}
	if p.Balance < space.HouseCost {
		return funds(space.HouseCost, p.Balance)
	}
	return nil
}

// CanBuild reports whether p may put one more house (or the hotel) on spaceId.
func (e *Engine) CanBuild(p *models.Player, spaceId int, rules models.Rules) bool {
	return e.checkBuild(p, spaceId, rules) == nil
}

// Build adds one house; a fifth build turns four houses into a hotel.
func Build(h models.Holding) models.Holding {
	switch {
	case h.Hotels > 0:
	case h.Houses < 4:
		h.Houses++
	default:
		h.Houses = 0
		h.Hotels = 1
	}
	return h
}

func (e *Engine) checkSell(p *models.Player, spaceId int, rules models.Rules) error {
	space := e.board.Space(spaceId)
	h := p.Holding(spaceId)
	if h == nil {
		return invalid("you do not own %s", space.Name)
	}
	if h.Level() == 0 {
		return invalid("%s has no buildings", space.Name)
	}
	if rules.EvenBuildRule {
		if _, max := e.groupLevels(p, space.Group); h.Level() != max {
			return invalid("sell evenly: sell from the most built %s property first", space.Group)
		}
	}
	return nil
}

func (e *Engine) CanSellHouse(p *models.Player, spaceId int, rules models.Rules) bool {
	return e.checkSell(p, spaceId, rules) == nil
}

// SellHouse undoes one build step; a hotel goes back to four houses.
func SellHouse(h models.Holding) models.Holding {
	switch {
	case h.Hotels > 0:
		h.Hotels = 0
		h.Houses = 4
	case h.Houses > 0:
		h.Houses--
	}
	return h
}

func (e *Engine) checkMortgage(p *models.Player, spaceId int, rules models.Rules) error {
	if !rules.MortgageAllowed {
		return invalid("mortgages are disabled in this room")
	}
	space := e.board.Space(spaceId)
	h := p.Holding(spaceId)
	if h == nil {
		return invalid("you do not own %s", space.Name)
	}
	if h.Mortgaged {
		return invalid("%s is already mortgaged", space.Name)
	}
	if space.Kind == models.KindProperty {
		if _, max := e.groupLevels(p, space.Group); max > 0 {
			return invalid("sell the buildings in the %s group first", space.Group)
		}
	}
	return nil
}

func (e *Engine) checkUnmortgage(p *models.Player, spaceId int, rules models.Rules) error {
	if !rules.MortgageAllowed {
		return invalid("mortgages are disabled in this room")
	}
	space := e.board.Space(spaceId)
	h := p.Holding(spaceId)
	if h == nil {
		return invalid("you do not own %s", space.Name)
	}
	if !h.Mortgaged {
		return invalid("%s is not mortgaged", space.Name)
	}
	if p.Balance < space.MortgageValue() {
		return funds(space.MortgageValue(), p.Balance)
	}
	return nil
}

func (e *Engine) CanMortgage(p *models.Player, spaceId int, rules models.Rules) bool {
	return e.checkMortgage(p, spaceId, rules) == nil
}

func (e *Engine) CanUnmortgage(p *models.Player, spaceId int, rules models.Rules) bool {
	return e.checkUnmortgage(p, spaceId, rules) == nil
}

func Mortgage(h models.Holding) models.Holding {
	h.Mortgaged = true
	return h
}

func Unmortgage(h models.Holding) models.Holding {
	h.Mortgaged = false
	return h
}
