package rooms

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/queries"
)

// MemoryRepository is a process-local Repository for single-node runs and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	rooms   map[string]models.Room
	players map[string][]models.RoomPlayer
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rooms:   make(map[string]models.Room),
		players: make(map[string][]models.RoomPlayer),
	}
}

func (m *MemoryRepository) CreateRoom(_ context.Context, room *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.Id]; ok {
		return fmt.Errorf("room %s already exists", room.Id)
	}
	now := time.Now()
	room.CreatedAt, room.UpdatedAt = now, now
	m.rooms[room.Id] = *room
	return nil
}

func (m *MemoryRepository) GetRoom(_ context.Context, id string) (*models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, queries.ErrRoomNotFound
	}
	return &room, nil
}

func (m *MemoryRepository) ListOpenRooms(_ context.Context) ([]models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rooms := []models.Room{}
	for _, room := range m.rooms {
		if room.Status == models.RoomWaiting && !room.IsPrivate {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].CreatedAt.After(rooms[j].CreatedAt) })
	return rooms, nil
}

func (m *MemoryRepository) AddPlayer(_ context.Context, player models.RoomPlayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[player.Room_id]; !ok {
		return queries.ErrRoomNotFound
	}
	for _, p := range m.players[player.Room_id] {
		if p.User_id == player.User_id {
			return fmt.Errorf("%s already in room %s", player.User_id, player.Room_id)
		}
		if p.Seat == player.Seat {
			return fmt.Errorf("seat %d of room %s is taken", player.Seat, player.Room_id)
		}
	}
	m.players[player.Room_id] = append(m.players[player.Room_id], player)
	return nil
}

func (m *MemoryRepository) RemovePlayer(_ context.Context, roomId, userId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.players[roomId][:0]
	for _, p := range m.players[roomId] {
		if p.User_id != userId {
			kept = append(kept, p)
		}
	}
	m.players[roomId] = kept
	return nil
}

func (m *MemoryRepository) Players(_ context.Context, roomId string) ([]models.RoomPlayer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	players := append([]models.RoomPlayer{}, m.players[roomId]...)
	sort.Slice(players, func(i, j int) bool { return players[i].Seat < players[j].Seat })
	return players, nil
}

func (m *MemoryRepository) SetStatus(_ context.Context, roomId, status, winner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomId]
	if !ok {
		return queries.ErrRoomNotFound
	}
	if status == models.RoomInProgress && room.Status != models.RoomWaiting {
		return queries.ErrRoomStarted
	}
	room.Status = status
	room.Winner_id = winner
	room.UpdatedAt = time.Now()
	m.rooms[roomId] = room
	return nil
}

func (m *MemoryRepository) SetReady(_ context.Context, roomId, userId string, ready bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.players[roomId] {
		if p.User_id == userId {
			m.players[roomId][i].Ready = ready
			return nil
		}
	}
	return queries.ErrPlayerNotFound
}

func (m *MemoryRepository) DeleteRoom(_ context.Context, roomId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomId)
	delete(m.players, roomId)
	return nil
}

// MemoryStore is a process-local StateStore. Lock ignores the ttl: a holder keeps the lock until it releases it.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*models.GameState
	events map[string][]models.Event
	locks  map[string]chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*models.GameState),
		events: make(map[string][]models.Event),
		locks:  make(map[string]chan struct{}),
	}
}

func (m *MemoryStore) LoadState(_ context.Context, room string) (*models.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[room]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return st.Clone(), nil
}

func (m *MemoryStore) SaveState(_ context.Context, room string, st *models.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[room] = st.Clone()
	return nil
}

func (m *MemoryStore) AppendEvents(_ context.Context, room string, events []models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[room] = append(m.events[room], events...)
	return nil
}

func (m *MemoryStore) Events(_ context.Context, room string, from int) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.events[room]
	if from < 0 {
		from = 0
	}
	if from >= len(all) {
		return []models.Event{}, nil
	}
	return append([]models.Event{}, all[from:]...), nil
}

func (m *MemoryStore) Lock(ctx context.Context, room string, _ time.Duration) (func() error, error) {
	m.mu.Lock()
	l, ok := m.locks[room]
	if !ok {
		l = make(chan struct{}, 1)
		m.locks[room] = l
	}
	m.mu.Unlock()

	select {
	case l <- struct{}{}:
		var once sync.Once
		return func() error {
			once.Do(func() { <-l })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s", cache.ErrLockTimeout, room)
	}
}

func (m *MemoryStore) Delete(_ context.Context, room string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, room)
	delete(m.events, room)
	delete(m.locks, room)
	return nil
}
