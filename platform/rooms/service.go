// Package rooms runs games on top of the rules engine: it owns the lobby lifecycle and serialises
// actions per room behind the store's lock.
package rooms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/pkg"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/DedS3t/monopoly-engine/platform/logging"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	"github.com/DedS3t/monopoly-engine/platform/rules"
	"github.com/sirupsen/logrus"
)

const (
	codeLength        = 8
	defaultMaxPlayers = 4
)

// Repository persists rooms and their members.
type Repository interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListOpenRooms(ctx context.Context) ([]models.Room, error)
	AddPlayer(ctx context.Context, player models.RoomPlayer) error
	RemovePlayer(ctx context.Context, roomId, userId string) error
	Players(ctx context.Context, roomId string) ([]models.RoomPlayer, error)
	// SetStatus returns queries.ErrRoomStarted when moving a room that is not waiting to in progress.
	SetStatus(ctx context.Context, roomId, status, winner string) error
	SetReady(ctx context.Context, roomId, userId string, ready bool) error
	DeleteRoom(ctx context.Context, roomId string) error
}

// StateStore keeps running games. LoadState returns cache.ErrNotFound for a room without a game.
type StateStore interface {
	LoadState(ctx context.Context, room string) (*models.GameState, error)
	SaveState(ctx context.Context, room string, st *models.GameState) error
	AppendEvents(ctx context.Context, room string, events []models.Event) error
	Events(ctx context.Context, room string, from int) ([]models.Event, error)
	Lock(ctx context.Context, room string, ttl time.Duration) (func() error, error)
	Delete(ctx context.Context, room string) error
}

// Broadcaster pushes a payload to everyone watching a room.
type Broadcaster interface {
	Broadcast(room, event string, payload interface{})
}

// Journal records every accepted action.
type Journal interface {
	Record(ctx context.Context, room, actor string, action models.ActionDto, events []models.Event) error
}

type Deps struct {
	Repo    Repository
	Store   StateStore
	Hub     Broadcaster
	Journal Journal
	Engine  *rules.Engine
	Presets config.Presets
	LockTTL time.Duration
	Source  rules.Source
	Log     *logrus.Entry
}

type Service struct {
	repo    Repository
	store   StateStore
	hub     Broadcaster
	journal Journal
	engine  *rules.Engine
	presets config.Presets
	lockTTL time.Duration
	src     rules.Source
	log     *logrus.Entry
}

// lockedSource makes a *rand.Rand safe to share between rooms.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

func NewService(d Deps) *Service {
	s := &Service{
		repo:    d.Repo,
		store:   d.Store,
		hub:     d.Hub,
		journal: d.Journal,
		engine:  d.Engine,
		presets: d.Presets,
		lockTTL: d.LockTTL,
		src:     d.Source,
		log:     d.Log,
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 5 * time.Second
	}
	if s.src == nil {
		s.src = &lockedSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
	}
	if s.log == nil {
		s.log = logging.New("rooms")
	}
	return s
}

// SetHub attaches the broadcaster once the push server exists.
func (s *Service) SetHub(hub Broadcaster) {
	s.hub = hub
}

func (s *Service) broadcast(room, event string, payload interface{}) {
	if s.hub != nil {
		s.hub.Broadcast(room, event, payload)
	}
}

func (s *Service) Presets() []string {
	return s.presets.Names()
}

// Create opens a room with the chosen preset, optionally overridden field by field, and seats the host.
func (s *Service) Create(ctx context.Context, hostId, hostName string, dto models.GameCreateDto) (*models.Room, error) {
	r, err := s.presets.Get(dto.Preset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rules.ErrInvalidConfig, err)
	}
	if len(dto.Rules) > 0 {
		if err := json.Unmarshal(dto.Rules, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", rules.ErrInvalidConfig, err)
		}
	}
	if err := rules.ValidateRules(r); err != nil {
		return nil, err
	}

	max := dto.MaxPlayers
	if max == 0 {
		max = defaultMaxPlayers
	}
	if max < rules.MinPlayers || max > rules.MaxPlayers {
		return nil, fmt.Errorf("%w: rooms hold %d to %d players", rules.ErrInvalidConfig, rules.MinPlayers, rules.MaxPlayers)
	}

	room := &models.Room{
		Id:         pkg.RandString(codeLength),
		Name:       dto.Name,
		Status:     models.RoomWaiting,
		Host_id:    hostId,
		MaxPlayers: max,
		IsPrivate:  dto.IsPrivate,
		Rules:      r,
	}
	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	if err := s.repo.AddPlayer(ctx, models.RoomPlayer{Room_id: room.Id, User_id: hostId, Username: hostName}); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"room": room.Id, "user": hostId}).Info("room created")
	return room, nil
}

func (s *Service) Rooms(ctx context.Context) ([]models.Room, error) {
	return s.repo.ListOpenRooms(ctx)
}

func (s *Service) Room(ctx context.Context, roomId string) (*models.Room, error) {
	return s.repo.GetRoom(ctx, roomId)
}

func (s *Service) Players(ctx context.Context, roomId string) ([]models.RoomPlayer, error) {
	if _, err := s.repo.GetRoom(ctx, roomId); err != nil {
		return nil, err
	}
	return s.repo.Players(ctx, roomId)
}

// lock takes the room lock that serialises every change to a room, lobby and game alike.
func (s *Service) lock(ctx context.Context, roomId string) (func(), error) {
	unlock, err := s.store.Lock(ctx, roomId, s.lockTTL)
	if err != nil {
		return nil, err
	}
	return func() { s.release(roomId, unlock) }, nil
}

// Join seats a user in a waiting room. Joining a room twice is a no-op.
func (s *Service) Join(ctx context.Context, roomId, userId, username string) ([]models.RoomPlayer, error) {
	if _, err := s.repo.GetRoom(ctx, roomId); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, roomId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	room, err := s.repo.GetRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	players, err := s.repo.Players(ctx, roomId)
	if err != nil {
		return nil, err
	}
	seat := 0
	for _, p := range players {
		if p.User_id == userId {
			return players, nil
		}
		if p.Seat >= seat {
			seat = p.Seat + 1
		}
	}
	if room.Status != models.RoomWaiting {
		return nil, ErrRoomStarted
	}
	if len(players) >= room.MaxPlayers {
		return nil, ErrRoomFull
	}

	player := models.RoomPlayer{Room_id: roomId, User_id: userId, Username: username, Seat: seat}
	if err := s.repo.AddPlayer(ctx, player); err != nil {
		return nil, err
	}
	players = append(players, player)
	s.log.WithFields(logrus.Fields{"room": roomId, "user": userId}).Info("player joined")
	s.broadcast(roomId, "player-join", players)
	return players, nil
}

// Leave takes a user out of a waiting room; the last one out closes it. Seats in a running game
// stay until the player goes bankrupt.
func (s *Service) Leave(ctx context.Context, roomId, userId string) error {
	if _, err := s.repo.GetRoom(ctx, roomId); err != nil {
		return err
	}
	unlock, err := s.lock(ctx, roomId)
	if err != nil {
		return err
	}
	defer unlock()

	room, err := s.repo.GetRoom(ctx, roomId)
	if err != nil {
		return err
	}
	if room.Status != models.RoomWaiting {
		return ErrRoomStarted
	}
	players, err := s.repo.Players(ctx, roomId)
	if err != nil {
		return err
	}
	if !seated(players, userId) {
		return ErrNotInRoom
	}
	if err := s.repo.RemovePlayer(ctx, roomId, userId); err != nil {
		return err
	}

	log := s.log.WithFields(logrus.Fields{"room": roomId, "user": userId})
	if len(players) == 1 {
		log.Info("last player left, closing room")
		if err := s.repo.DeleteRoom(ctx, roomId); err != nil {
			return err
		}
		return s.store.Delete(ctx, roomId)
	}
	log.Info("player left")
	s.broadcast(roomId, "player-left", userId)
	return nil
}

// SetReady flags a seated player as ready (or not) while the room waits.
func (s *Service) SetReady(ctx context.Context, roomId, userId string, ready bool) ([]models.RoomPlayer, error) {
	if _, err := s.repo.GetRoom(ctx, roomId); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, roomId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	room, err := s.repo.GetRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomWaiting {
		return nil, ErrRoomStarted
	}
	if err := s.repo.SetReady(ctx, roomId, userId, ready); err != nil {
		if errors.Is(err, queries.ErrPlayerNotFound) {
			return nil, ErrNotInRoom
		}
		return nil, err
	}
	players, err := s.repo.Players(ctx, roomId)
	if err != nil {
		return nil, err
	}
	s.broadcast(roomId, "player-ready", players)
	return players, nil
}

func seated(players []models.RoomPlayer, userId string) bool {
	for _, p := range players {
		if p.User_id == userId {
			return true
		}
	}
	return false
}

// Start deals the game for the seated players in seat order. Only the host may start it, and only once.
func (s *Service) Start(ctx context.Context, roomId, userId string) (*models.GameState, error) {
	if _, err := s.repo.GetRoom(ctx, roomId); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, roomId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	room, err := s.repo.GetRoom(ctx, roomId)
	if err != nil {
		return nil, err
	}
	if room.Host_id != userId {
		return nil, ErrNotHost
	}
	if room.Status != models.RoomWaiting {
		return nil, ErrRoomStarted
	}
	if _, err := s.store.LoadState(ctx, roomId); err == nil {
		return nil, ErrRoomStarted
	} else if !errors.Is(err, cache.ErrNotFound) {
		return nil, err
	}
	players, err := s.repo.Players(ctx, roomId)
	if err != nil {
		return nil, err
	}
	if len(players) < rules.MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	seats := make([]models.Seat, 0, len(players))
	for _, p := range players {
		seats = append(seats, models.Seat{Id: p.User_id, Username: p.Username})
	}
	st, err := s.engine.InitializeGame(room.Rules, seats, s.src)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"room": roomId, "players": len(seats)})
	if err := s.store.SaveState(ctx, roomId, st); err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, roomId, models.RoomInProgress, ""); err != nil {
		if derr := s.store.Delete(ctx, roomId); derr != nil {
			log.WithError(derr).Error("failed to drop game after status update failed")
		}
		return nil, err
	}
	log.Info("game started")
	s.broadcast(roomId, "game-start", st)
	return st, nil
}

func (s *Service) release(roomId string, unlock func() error) {
	if err := unlock(); err != nil {
		s.log.WithField("room", roomId).WithError(err).Warn("failed to release room lock")
	}
}

// Update is what Act returns and what watchers of the room receive.
type Update struct {
	State  *models.GameState `json:"state"`
	Events []models.Event    `json:"events"`
}

// Act resolves one action under the room lock, persists the result and pushes it to the room.
func (s *Service) Act(ctx context.Context, roomId, userId string, dto models.ActionDto) (*Update, error) {
	act, err := rules.DecodeAction(dto)
	if err != nil {
		return nil, err
	}
	log := s.log.WithFields(logrus.Fields{"room": roomId, "user": userId, "action": dto.Type})

	unlock, err := s.lock(ctx, roomId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	prev, err := s.loadState(ctx, roomId)
	if err != nil {
		return nil, err
	}
	next, events, err := s.engine.Resolve(prev, userId, act, s.src)
	if err != nil {
		if errors.Is(err, rules.ErrStateInconsistent) {
			log.WithError(err).Error("stored game state is inconsistent")
		} else {
			log.WithError(err).Debug("action rejected")
		}
		return nil, err
	}

	if err := s.store.SaveState(ctx, roomId, next); err != nil {
		return nil, err
	}
	if err := s.store.AppendEvents(ctx, roomId, events); err != nil {
		log.WithError(err).Error("failed to append events")
	}
	if s.journal != nil {
		if err := s.journal.Record(ctx, roomId, userId, dto, events); err != nil {
			log.WithError(err).Warn("failed to journal action")
		}
	}
	log.WithField("events", len(events)).Debug("action applied")

	update := &Update{State: next, Events: events}
	s.broadcast(roomId, "game-update", update)

	if next.Winner != "" {
		// state is saved by now; the lobby row may lag behind
		if err := s.repo.SetStatus(ctx, roomId, models.RoomFinished, next.Winner); err != nil {
			log.WithError(err).Error("failed to mark room finished")
		}
		log.WithField("winner", next.Winner).Info("game over")
		s.broadcast(roomId, "game-over", next.Winner)
	}
	return update, nil
}

func (s *Service) loadState(ctx context.Context, roomId string) (*models.GameState, error) {
	st, err := s.store.LoadState(ctx, roomId)
	if errors.Is(err, cache.ErrNotFound) {
		if _, err := s.repo.GetRoom(ctx, roomId); err != nil {
			return nil, err
		}
		return nil, ErrGameNotStarted
	}
	return st, err
}

func (s *Service) State(ctx context.Context, roomId string) (*models.GameState, error) {
	return s.loadState(ctx, roomId)
}

// Events returns the room's event log from index from on.
func (s *Service) Events(ctx context.Context, roomId string, from int) ([]models.Event, error) {
	if _, err := s.loadState(ctx, roomId); err != nil {
		return nil, err
	}
	return s.store.Events(ctx, roomId, from)
}
