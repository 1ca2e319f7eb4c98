// Package rules is the Monopoly rules engine. Every exported operation is a pure function over
// an explicit game snapshot: it never performs I/O, never keeps state between calls and never
// mutates the snapshot it is handed.
package rules

import (
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
)

const (
	MinPlayers = 2
	MaxPlayers = 8

	MinStartingCash = 500
	MaxStartingCash = 10000
)

// Engine binds the rules to a board catalog. It holds no mutable state and is safe to share.
type Engine struct {
	board *board.Board
}

func New(b *board.Board) *Engine {
	return &Engine{board: b}
}

func (e *Engine) Board() *board.Board {
	return e.board
}

// ValidateRules checks a rule set before a game is created with it.
func ValidateRules(r models.Rules) error {
	if r.StartingCash < MinStartingCash || r.StartingCash > MaxStartingCash {
		return fmt.Errorf("%w: starting cash must be between %d and %d", ErrInvalidConfig, MinStartingCash, MaxStartingCash)
	}
	if r.GoSalary < 0 || r.JailBail < 0 || r.JailTurns < 0 {
		return fmt.Errorf("%w: salary, bail and jail turns cannot be negative", ErrInvalidConfig)
	}
	switch r.WinningCondition.Type {
	case models.WinBankruptcy:
	case models.WinTimeLimit, models.WinMoneyGoal:
		if r.WinningCondition.Value <= 0 {
			return fmt.Errorf("%w: %s needs a positive value", ErrInvalidConfig, r.WinningCondition.Type)
		}
	default:
		return fmt.Errorf("%w: unknown winning condition %q", ErrInvalidConfig, r.WinningCondition.Type)
	}
	return nil
}

// InitializeGame seats the players in the given order with the configured starting cash.
func (e *Engine) InitializeGame(r models.Rules, seats []models.Seat, src Source) (*models.GameState, error) {
	if err := ValidateRules(r); err != nil {
		return nil, err
	}
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, fmt.Errorf("%w: a game needs %d to %d players, got %d", ErrInvalidConfig, MinPlayers, MaxPlayers, len(seats))
	}

	st := &models.GameState{
		Players: make([]models.Player, 0, len(seats)),
		Phase:   models.PhaseRolling,
		Chance: models.Deck{
			Order: shuffle(len(e.board.Cards(models.DeckChance)), src),
		},
		CommunityChest: models.Deck{
			Order: shuffle(len(e.board.Cards(models.DeckCommunityChest)), src),
		},
		Rules: r,
	}
	seen := make(map[string]bool, len(seats))
	for _, s := range seats {
		if s.Id == "" || seen[s.Id] {
			return nil, fmt.Errorf("%w: player ids must be unique and non-empty", ErrInvalidConfig)
		}
		seen[s.Id] = true
		st.Players = append(st.Players, models.Player{
			Id:         s.Id,
			Username:   s.Username,
			Balance:    r.StartingCash,
			Pos:        board.StartPosition,
			Properties: []models.Holding{},
		})
	}
	return st, nil
}

// Validate checks that an externally supplied snapshot satisfies the engine's invariants.
// Any failure is ErrStateInconsistent.
func (e *Engine) Validate(st *models.GameState) error {
	if st == nil {
		return inconsistent("no game state")
	}
	if err := ValidateRules(st.Rules); err != nil {
		return inconsistent("%v", err)
	}
	if len(st.Players) < MinPlayers || len(st.Players) > MaxPlayers {
		return inconsistent("%d players seated", len(st.Players))
	}
	if st.CurrentPlayer < 0 || st.CurrentPlayer >= len(st.Players) {
		return inconsistent("current player index %d out of range", st.CurrentPlayer)
	}
	switch st.Phase {
	case models.PhaseRolling, models.PhaseBuying, models.PhaseTurnOver, models.PhaseGameOver:
	default:
		return inconsistent("unknown phase %q", st.Phase)
	}
	if st.Winner == "" && st.Current().Bankrupt {
		return inconsistent("current player %s is bankrupt", st.Current().Id)
	}
	if st.FreeParkingPot < 0 || st.DoublesCount < 0 || st.DoublesCount > 2 {
		return inconsistent("negative pot or bad doubles counter")
	}

	ids := make(map[string]bool, len(st.Players))
	owner := make(map[int]string)
	for _, p := range st.Players {
		if p.Id == "" || ids[p.Id] {
			return inconsistent("duplicate or empty player id %q", p.Id)
		}
		ids[p.Id] = true
		if p.Pos < 0 || p.Pos >= board.Size {
			return inconsistent("player %s at position %d", p.Id, p.Pos)
		}
		if p.JailTurnsRemaining < 0 || p.JailFreeCards < 0 {
			return inconsistent("player %s has negative jail counters", p.Id)
		}
		if p.Bankrupt && len(p.Properties) > 0 {
			return inconsistent("bankrupt player %s still holds property", p.Id)
		}
		for _, h := range p.Properties {
			if err := e.validateHolding(h); err != nil {
				return inconsistent("player %s: %v", p.Id, err)
			}
			if prev, dup := owner[h.SpaceId]; dup {
				return inconsistent("space %d owned by both %s and %s", h.SpaceId, prev, p.Id)
			}
			owner[h.SpaceId] = p.Id
		}
	}

	if (st.Phase == models.PhaseBuying) != (st.PendingPurchase != nil) {
		return inconsistent("pending purchase does not match phase %s", st.Phase)
	}
	if st.PendingPurchase != nil {
		id := *st.PendingPurchase
		if id < 0 || id >= board.Size || !e.board.Space(id).Kind.Ownable() {
			return inconsistent("pending purchase of space %d", id)
		}
		if _, taken := owner[id]; taken {
			return inconsistent("pending purchase of owned space %d", id)
		}
	}
	if err := validateDeck(st.Chance, len(e.board.Cards(models.DeckChance))); err != nil {
		return inconsistent("chance deck: %v", err)
	}
	if err := validateDeck(st.CommunityChest, len(e.board.Cards(models.DeckCommunityChest))); err != nil {
		return inconsistent("community chest deck: %v", err)
	}
	for _, in := range st.Insolvencies {
		if !ids[in.Player] || (in.Creditor != "" && !ids[in.Creditor]) {
			return inconsistent("insolvency refers to unknown player")
		}
	}
	if st.Winner != "" && !ids[st.Winner] {
		return inconsistent("winner %s is not seated", st.Winner)
	}
	return nil
}

func (e *Engine) validateHolding(h models.Holding) error {
	if h.SpaceId < 0 || h.SpaceId >= board.Size {
		return fmt.Errorf("holding on space %d", h.SpaceId)
	}
	s := e.board.Space(h.SpaceId)
	if !s.Kind.Ownable() {
		return fmt.Errorf("holding on unownable space %d", h.SpaceId)
	}
	if h.Houses < 0 || h.Houses > 4 || h.Hotels < 0 || h.Hotels > 1 {
		return fmt.Errorf("space %d has %d houses and %d hotels", h.SpaceId, h.Houses, h.Hotels)
	}
	if h.Houses > 0 && h.Hotels > 0 {
		return fmt.Errorf("space %d has houses and a hotel", h.SpaceId)
	}
	if h.Level() > 0 && (s.Kind != models.KindProperty || h.Mortgaged) {
		return fmt.Errorf("space %d cannot carry buildings", h.SpaceId)
	}
	return nil
}

func validateDeck(d models.Deck, size int) error {
	if len(d.Order) != size {
		return fmt.Errorf("expected %d cards, got %d", size, len(d.Order))
	}
	seen := make([]bool, size)
	for _, i := range d.Order {
		if i < 0 || i >= size || seen[i] {
			return fmt.Errorf("order is not a permutation")
		}
		seen[i] = true
	}
	if d.Cursor < 0 || d.Cursor > size {
		return fmt.Errorf("cursor %d out of range", d.Cursor)
	}
	return nil
}

// Resolve applies one action by actor to a snapshot. On success it returns a new snapshot and the
// events produced; on failure it returns prev untouched with the error. prev is never modified.
func (e *Engine) Resolve(prev *models.GameState, actor string, act Action, src Source) (*models.GameState, []models.Event, error) {
	if act == nil {
		return prev, nil, invalid("no action")
	}
	if err := e.Validate(prev); err != nil {
		return prev, nil, err
	}
	if prev.Winner != "" || prev.Phase == models.PhaseGameOver {
		return prev, nil, invalid("the game is over")
	}
	idx := prev.PlayerIndex(actor)
	if idx < 0 {
		return prev, nil, fmt.Errorf("%w: %s is not seated in this game", ErrNotPlayersTurn, actor)
	}

	t := &turn{e: e, st: prev.Clone(), src: src}
	if err := t.apply(idx, act); err != nil {
		return prev, nil, err
	}
	if w := e.CheckWinCondition(t.st); w != nil {
		t.st.Winner = w.Id
		t.st.Phase = models.PhaseGameOver
		t.st.PendingPurchase = nil
		t.emit(models.Event{Kind: models.EventWinner, Player: w.Id, Space: -1, Amount: w.Balance})
	}
	return t.st, t.events, nil
}
