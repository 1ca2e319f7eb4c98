package models

type EventKind string

const (
	EventDiceRolled        EventKind = "dice-rolled"
	EventMoved             EventKind = "moved"
	EventPassedStart       EventKind = "passed-start"
	EventPurchaseAvailable EventKind = "purchase-available"
	EventBought            EventKind = "bought"
	EventDeclined          EventKind = "declined"
	EventAuctionRequired   EventKind = "auction-required"
	EventRentPaid          EventKind = "rent-paid"
	EventNoRent            EventKind = "no-rent"
	EventTaxPaid           EventKind = "tax-paid"
	EventCardDrawn         EventKind = "card-drawn"
	EventCollected         EventKind = "collected"
	EventPaid              EventKind = "paid"
	EventSentToJail        EventKind = "sent-to-jail"
	EventJailStay          EventKind = "jail-stay"
	EventReleased          EventKind = "released"
	EventBailPaid          EventKind = "bail-paid"
	EventJailCardUsed      EventKind = "jail-card-used"
	EventJailCardGained    EventKind = "jail-card-gained"
	EventParkingCollected  EventKind = "parking-collected"
	EventBuilt             EventKind = "built"
	EventHouseSold         EventKind = "house-sold"
	EventMortgaged         EventKind = "mortgaged"
	EventUnmortgaged       EventKind = "unmortgaged"
	EventInsolvent         EventKind = "insolvent"
	EventSolvent           EventKind = "solvent"
	EventBankrupt          EventKind = "bankrupt"
	EventTurnEnded         EventKind = "turn-ended"
	EventWinner            EventKind = "winner"
)

// Event is something notable that happened while resolving an action.
// Space is -1 when no space is involved.
type Event struct {
	Kind   EventKind `json:"kind"`
	Player string    `json:"player,omitempty"`
	Target string    `json:"target,omitempty"`
	Space  int       `json:"space"`
	Amount int       `json:"amount,omitempty"`
	Dice   [2]int    `json:"dice"`
	Info   string    `json:"info,omitempty"`
}
