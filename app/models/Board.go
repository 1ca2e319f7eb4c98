package models

type SpaceKind string

const (
	KindGo             SpaceKind = "go"
	KindProperty       SpaceKind = "property"
	KindRailroad       SpaceKind = "railroad"
	KindUtility        SpaceKind = "utility"
	KindTax            SpaceKind = "tax"
	KindChance         SpaceKind = "chance"
	KindCommunityChest SpaceKind = "community-chest"
	KindJail           SpaceKind = "jail"
	KindFreeParking    SpaceKind = "free-parking"
	KindGoToJail       SpaceKind = "go-to-jail"
)

// Ownable reports whether a space of this kind can be bought.
func (k SpaceKind) Ownable() bool {
	return k == KindProperty || k == KindRailroad || k == KindUtility
}

type Space struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	Kind      SpaceKind `json:"type"`
	Group     string    `json:"group,omitempty"`
	Price     int       `json:"price,omitempty"`
	Rent      []int     `json:"rent,omitempty"`
	HouseCost int       `json:"housecost,omitempty"`
	Amount    int       `json:"amount,omitempty"` // tax spaces only
}

// MortgageValue is what the bank lends against the space, and what it takes to lift the mortgage.
func (s Space) MortgageValue() int {
	return s.Price / 2
}

type CardAction string

const (
	CardMoveTo         CardAction = "move-to"
	CardMoveRelative   CardAction = "move-relative"
	CardCollect        CardAction = "collect"
	CardPay            CardAction = "pay"
	CardCollectFromAll CardAction = "collect-from-all"
	CardPayAll         CardAction = "pay-all"
	CardGoToJail       CardAction = "go-to-jail"
	CardJailFree       CardAction = "jail-free"
)

type Card struct {
	Text   string     `json:"text"`
	Action CardAction `json:"action"`
	Target int        `json:"target,omitempty"` // move-to
	Spaces int        `json:"spaces,omitempty"` // move-relative, negative moves back
	Amount int        `json:"amount,omitempty"`
}

type DeckKind string

const (
	DeckChance         DeckKind = "chance"
	DeckCommunityChest DeckKind = "community-chest"
)
