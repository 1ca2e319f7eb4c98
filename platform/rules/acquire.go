package rules

import (
	"github.com/DedS3t/monopoly-engine/app/models"
)

// CanBuy reports whether p may buy the space right now.
func CanBuy(p *models.Player, space models.Space, players []models.Player) bool {
	if !space.Kind.Ownable() || space.Price <= 0 {
		return false
	}
	if p.Balance < space.Price {
		return false
	}
	_, owned := OwnerOf(space.Id, players)
	return !owned
}

// Buy manufactures the holding record. Debiting the price and attaching the holding is up to the caller.
func Buy(space models.Space) models.Holding {
	return models.Holding{SpaceId: space.Id}
}
