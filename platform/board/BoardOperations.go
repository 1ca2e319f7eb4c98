package board

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/DedS3t/monopoly-engine/app/models"
)

const (
	Size          = 40
	StartPosition = 0
	JailPosition  = 10
)

//go:embed properties.json
var defaultCatalog []byte

type catalog struct {
	Version int            `json:"version"`
	Spaces  []models.Space `json:"spaces"`
	Chance  []models.Card  `json:"chance"`
	Chest   []models.Card  `json:"chest"`
}

// Board is the immutable space and card catalog. It is built once and only read afterwards.
type Board struct {
	Version int
	spaces  []models.Space
	groups  map[string][]int
	decks   map[models.DeckKind][]models.Card
}

// LoadProperties parses the embedded catalog.
func LoadProperties() (*Board, error) {
	return Parse(defaultCatalog)
}

// MustLoad is LoadProperties for process start, where a broken catalog is fatal.
func MustLoad() *Board {
	b, err := LoadProperties()
	if err != nil {
		panic(err)
	}
	return b
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Board, error) {
	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("board: cannot parse catalog: %w", err)
	}
	if len(c.Spaces) != Size {
		return nil, fmt.Errorf("board: expected %d spaces, got %d", Size, len(c.Spaces))
	}

	b := &Board{
		Version: c.Version,
		spaces:  make([]models.Space, Size),
		groups:  make(map[string][]int),
		decks: map[models.DeckKind][]models.Card{
			models.DeckChance:         c.Chance,
			models.DeckCommunityChest: c.Chest,
		},
	}
	seen := make([]bool, Size)
	for _, s := range c.Spaces {
		if s.Id < 0 || s.Id >= Size || seen[s.Id] {
			return nil, fmt.Errorf("board: bad or duplicate space id %d", s.Id)
		}
		seen[s.Id] = true
		if err := validateSpace(s); err != nil {
			return nil, fmt.Errorf("board: space %d (%s): %w", s.Id, s.Name, err)
		}
		b.spaces[s.Id] = s
		if s.Kind.Ownable() {
			b.groups[s.Group] = append(b.groups[s.Group], s.Id)
		}
	}
	for _, ids := range b.groups {
		sort.Ints(ids)
	}
	if len(b.groups["railroad"]) != 4 || len(b.groups["utility"]) != 2 {
		return nil, errors.New("board: expected 4 railroads and 2 utilities")
	}
	if b.spaces[JailPosition].Kind != models.KindJail {
		return nil, fmt.Errorf("board: space %d must be the jail", JailPosition)
	}
	for kind, cards := range b.decks {
		if len(cards) == 0 {
			return nil, fmt.Errorf("board: %s deck is empty", kind)
		}
		for _, card := range cards {
			if card.Action == models.CardMoveTo && (card.Target < 0 || card.Target >= Size) {
				return nil, fmt.Errorf("board: card %q targets space %d", card.Text, card.Target)
			}
		}
	}
	return b, nil
}

func validateSpace(s models.Space) error {
	switch s.Kind {
	case models.KindProperty:
		if s.Group == "" || s.Group == "railroad" || s.Group == "utility" {
			return errors.New("property needs a color group")
		}
		if len(s.Rent) != 6 || s.Price <= 0 || s.HouseCost <= 0 {
			return errors.New("property needs price, house cost and 6 rent tiers")
		}
	case models.KindRailroad:
		if s.Group != "railroad" || len(s.Rent) != 4 || s.Price <= 0 {
			return errors.New("railroad needs price and 4 rent tiers")
		}
	case models.KindUtility:
		if s.Group != "utility" || s.Price <= 0 {
			return errors.New("utility needs a price")
		}
	case models.KindTax:
		if s.Amount <= 0 {
			return errors.New("tax needs an amount")
		}
	case models.KindGo, models.KindChance, models.KindCommunityChest, models.KindJail,
		models.KindFreeParking, models.KindGoToJail:
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	return nil
}

func (b *Board) GetByPos(pos int) (models.Space, error) {
	if pos < 0 || pos >= Size {
		return models.Space{}, errors.New("not found")
	}
	return b.spaces[pos], nil
}

// Space is GetByPos for ids already known to be on the board.
func (b *Board) Space(id int) models.Space {
	return b.spaces[id]
}

func (b *Board) Spaces() []models.Space {
	return append([]models.Space(nil), b.spaces...)
}

// Group returns the space ids of a color group (or "railroad" / "utility").
func (b *Board) Group(name string) []int {
	return b.groups[name]
}

// GroupNames lists every group, sorted.
func (b *Board) GroupNames() []string {
	names := make([]string, 0, len(b.groups))
	for name := range b.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *Board) Cards(kind models.DeckKind) []models.Card {
	return b.decks[kind]
}
