package models

import (
	"encoding/json"
	"time"
)

const (
	RoomWaiting    = "waiting"
	RoomInProgress = "in progress"
	RoomFinished   = "finished"
)

// Room is the lobby row. Live game state is kept in redis, not here.
type Room struct {
	tableName struct{} `pg:"rooms"`

	Id         string    `pg:",pk" json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Host_id    string    `json:"hostId"`
	MaxPlayers int       `json:"maxPlayers"`
	IsPrivate  bool      `pg:",use_zero" json:"isPrivate"` // hidden from the open list, joinable by code
	Rules      Rules     `pg:",notnull" json:"rules"`
	Winner_id  string    `json:"winnerId,omitempty"`
	CreatedAt  time.Time `pg:"default:now()" json:"createdAt"`
	UpdatedAt  time.Time `pg:"default:now()" json:"updatedAt"`
}

type GameCreateDto struct {
	Name       string          `json:"name"`
	MaxPlayers int             `json:"maxPlayers"`
	Preset     string          `json:"preset"`
	IsPrivate  bool            `json:"isPrivate"`
	Rules      json.RawMessage `json:"rules"` // applied over the preset, field by field
}

// ReadyDto defaults to ready when the body leaves it out.
type ReadyDto struct {
	Ready *bool `json:"ready"`
}

type VerifyGameDto struct {
	Code string `query:"code"`
}

type ActionDto struct {
	Type  string `json:"type"`
	Space int    `json:"space"`
}

type WinType string

const (
	WinBankruptcy WinType = "bankruptcy"
	WinTimeLimit  WinType = "time_limit"
	WinMoneyGoal  WinType = "money_goal"
)

type WinCondition struct {
	Type  WinType `json:"type" yaml:"type"`
	Value int     `json:"value,omitempty" yaml:"value"` // rounds for time_limit, cash for money_goal
}

// Rules is the custom rule set chosen when the room was created.
type Rules struct {
	StartingCash       int          `json:"startingCash" yaml:"starting_cash"`
	MortgageAllowed    bool         `json:"mortgageAllowed" yaml:"mortgage_allowed"`
	AuctionUnpurchased bool         `json:"auctionUnpurchased" yaml:"auction_unpurchased"`
	EvenBuildRule      bool         `json:"evenBuildRule" yaml:"even_build_rule"`
	TaxesToFreeParking bool         `json:"taxesToFreeParking" yaml:"taxes_to_free_parking"`
	NoRentInJail       bool         `json:"noRentInJail" yaml:"no_rent_in_jail"`
	WinningCondition   WinCondition `json:"winningCondition" yaml:"winning_condition"`

	GoSalary  int `json:"goSalary" yaml:"go_salary"`
	JailBail  int `json:"jailBail" yaml:"jail_bail"`
	JailTurns int `json:"jailTurns" yaml:"jail_turns"`
}

func DefaultRules() Rules {
	return Rules{
		StartingCash:     1500,
		MortgageAllowed:  true,
		EvenBuildRule:    true,
		WinningCondition: WinCondition{Type: WinBankruptcy},
		GoSalary:         200,
		JailBail:         50,
		JailTurns:        2,
	}
}

type Phase string

const (
	PhaseRolling  Phase = "rolling"
	PhaseBuying   Phase = "buying"
	PhaseTurnOver Phase = "turn-over"
	PhaseGameOver Phase = "game-over"
)

// Deck is a shuffled draw order over a card list. Cursor == len(Order) means exhausted.
type Deck struct {
	Order  []int `json:"order"`
	Cursor int   `json:"cursor"`
}

// Insolvency marks a player whose cash went negative and who still has to liquidate or go bankrupt.
// Creditor is empty when the bank is owed.
type Insolvency struct {
	Player   string `json:"player"`
	Creditor string `json:"creditor,omitempty"`
}

type GameState struct {
	Players         []Player     `json:"players"`
	CurrentPlayer   int          `json:"currentPlayerIndex"`
	Phase           Phase        `json:"phase"`
	Dice            [2]int       `json:"dice"`
	DoublesCount    int          `json:"doublesCount"`
	RollAgain       bool         `json:"rollAgain"`
	TurnCount       int          `json:"turnCount"`
	FreeParkingPot  int          `json:"freeParkingPot"`
	PendingPurchase *int         `json:"availableProperty,omitempty"`
	Chance          Deck         `json:"chanceCards"`
	CommunityChest  Deck         `json:"communityChestCards"`
	Insolvencies    []Insolvency `json:"insolvencies,omitempty"`
	Winner          string       `json:"winner,omitempty"`
	Rules           Rules        `json:"customRules"`
}

// Clone returns a deep copy; the engine only ever mutates clones.
func (g *GameState) Clone() *GameState {
	c := *g
	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		p.Properties = append(p.Properties[:0:0], p.Properties...)
		c.Players[i] = p
	}
	if g.PendingPurchase != nil {
		v := *g.PendingPurchase
		c.PendingPurchase = &v
	}
	c.Chance.Order = append(g.Chance.Order[:0:0], g.Chance.Order...)
	c.CommunityChest.Order = append(g.CommunityChest.Order[:0:0], g.CommunityChest.Order...)
	c.Insolvencies = append(g.Insolvencies[:0:0], g.Insolvencies...)
	return &c
}

// PlayerIndex returns the seat of the player with id, or -1.
func (g *GameState) PlayerIndex(id string) int {
	for i := range g.Players {
		if g.Players[i].Id == id {
			return i
		}
	}
	return -1
}

func (g *GameState) Current() *Player {
	return &g.Players[g.CurrentPlayer]
}

// ActivePlayers counts players who are not bankrupt.
func (g *GameState) ActivePlayers() int {
	n := 0
	for _, p := range g.Players {
		if !p.Bankrupt {
			n++
		}
	}
	return n
}
