package models

// Player is a seat inside a running game. Players are never removed, only marked bankrupt.
type Player struct {
	Id                 string    `json:"id"`
	Username           string    `json:"username"`
	Balance            int       `json:"balance"`
	Pos                int       `json:"pos"`
	Properties         []Holding `json:"properties"`
	Jail               bool      `json:"jail"`
	JailTurnsRemaining int       `json:"jailTurnsRemaining"`
	JailFreeCards      int       `json:"jailFreeCards"`
	Bankrupt           bool      `json:"bankrupt"`
}

// Holding is a player's ownership record for one space.
// Houses and Hotels are never both non-zero; four houses convert to one hotel.
type Holding struct {
	SpaceId   int  `json:"spaceId"`
	Houses    int  `json:"houses"`
	Hotels    int  `json:"hotels"`
	Mortgaged bool `json:"mortgaged"`
}

// Level is the build level of a holding: 0-4 houses, 5 for a hotel.
func (h Holding) Level() int {
	if h.Hotels > 0 {
		return 5
	}
	return h.Houses
}

// Holding returns the player's holding on spaceId, or nil.
func (p *Player) Holding(spaceId int) *Holding {
	for i := range p.Properties {
		if p.Properties[i].SpaceId == spaceId {
			return &p.Properties[i]
		}
	}
	return nil
}

// Seat is who sits down when a game is initialized.
type Seat struct {
	Id       string
	Username string
}

// RoomPlayer is the lobby membership row.
type RoomPlayer struct {
	tableName struct{} `pg:"room_players"`

	Room_id  string `pg:",pk" json:"roomId"`
	User_id  string `pg:",pk" json:"userId"`
	Username string `json:"username"`
	Seat     int    `pg:",use_zero" json:"seat"`
	Ready    bool   `pg:",use_zero" json:"ready"`
}
