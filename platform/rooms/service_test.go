package rooms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	"github.com/DedS3t/monopoly-engine/platform/rules"
)

// queue hands out pushed die faces and 0 once empty.
type queue struct {
	mu   sync.Mutex
	vals []int
}

func (q *queue) push(faces ...int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, f := range faces {
		q.vals = append(q.vals, f-1)
	}
}

func (q *queue) Intn(n int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.vals) == 0 {
		return 0
	}
	v := q.vals[0]
	q.vals = q.vals[1:]
	return v % n
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Broadcast(room, event string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func (r *recorder) saw(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

type memJournal struct {
	entries int
}

func (j *memJournal) Record(context.Context, string, string, models.ActionDto, []models.Event) error {
	j.entries++
	return nil
}

type fixture struct {
	svc     *Service
	repo    *MemoryRepository
	store   *MemoryStore
	hub     *recorder
	journal *memJournal
	dice    *queue
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil)
}

// newFixtureWith lets a test put a wrapper around the memory repository.
func newFixtureWith(t *testing.T, wrap func(*MemoryRepository) Repository) *fixture {
	t.Helper()
	presets, err := config.LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets() failed: %v", err)
	}
	f := &fixture{
		repo:    NewMemoryRepository(),
		store:   NewMemoryStore(),
		hub:     &recorder{},
		journal: &memJournal{},
		dice:    &queue{},
	}
	var repo Repository = f.repo
	if wrap != nil {
		repo = wrap(f.repo)
	}
	f.svc = NewService(Deps{
		Repo:    repo,
		Store:   f.store,
		Hub:     f.hub,
		Journal: f.journal,
		Engine:  rules.New(board.MustLoad()),
		Presets: presets,
		Source:  f.dice,
	})
	return f
}

// slowRepo stalls between reading the players and acting on them, and can fail one status change.
type slowRepo struct {
	*MemoryRepository
	delay      time.Duration
	failStatus string
}

func (r *slowRepo) Players(ctx context.Context, roomId string) ([]models.RoomPlayer, error) {
	time.Sleep(r.delay)
	return r.MemoryRepository.Players(ctx, roomId)
}

func (r *slowRepo) SetStatus(ctx context.Context, roomId, status, winner string) error {
	if status == r.failStatus {
		return errors.New("connection reset")
	}
	return r.MemoryRepository.SetStatus(ctx, roomId, status, winner)
}

// startedRoom returns a running two player game: a (host) then b.
func (f *fixture) startedRoom(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	room, err := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{Name: "test"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := f.svc.Join(ctx, room.Id, "b", "Bob"); err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	if _, err := f.svc.Start(ctx, room.Id, "a"); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return room.Id
}

func TestCreateAppliesPresetAndOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{
		Name:   "rich",
		Preset: "quick",
		Rules:  []byte(`{"startingCash": 2000}`),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if room.Rules.StartingCash != 2000 || room.Rules.WinningCondition.Type != models.WinTimeLimit {
		t.Errorf("Expected quick rules with 2000 cash, got %+v", room.Rules)
	}
	if room.Status != models.RoomWaiting || room.MaxPlayers != 4 || len(room.Id) != 8 {
		t.Errorf("Unexpected room: %+v", room)
	}
	players, _ := f.svc.Players(ctx, room.Id)
	if len(players) != 1 || players[0].User_id != "a" {
		t.Errorf("Expected the host to be seated, got %+v", players)
	}
}

func TestCreateRejectsBadConfig(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := []models.GameCreateDto{
		{Preset: "chaos"},
		{Rules: []byte(`{"startingCash": 100}`)},
		{Rules: []byte(`{"startingCash": "lots"}`)},
		{MaxPlayers: 9},
	}
	for i, dto := range bad {
		if _, err := f.svc.Create(ctx, "a", "Alice", dto); !errors.Is(err, rules.ErrInvalidConfig) {
			t.Errorf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestJoinRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room, _ := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{MaxPlayers: 2})

	players, err := f.svc.Join(ctx, room.Id, "b", "Bob")
	if err != nil || len(players) != 2 || players[1].Seat != 1 {
		t.Fatalf("Expected b in seat 1, got %+v (%v)", players, err)
	}
	if !f.hub.saw("player-join") {
		t.Error("Expected a player-join broadcast")
	}
	if again, err := f.svc.Join(ctx, room.Id, "b", "Bob"); err != nil || len(again) != 2 {
		t.Errorf("Expected a repeated join to be a no-op, got %v", err)
	}
	if _, err := f.svc.Join(ctx, room.Id, "c", "Cara"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
	if _, err := f.svc.Join(ctx, "NOPE", "c", "Cara"); !errors.Is(err, queries.ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestLeaveClosesEmptyRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room, _ := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{})
	f.svc.Join(ctx, room.Id, "b", "Bob")

	if err := f.svc.Leave(ctx, room.Id, "c"); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("Expected ErrNotInRoom, got %v", err)
	}
	if err := f.svc.Leave(ctx, room.Id, "b"); err != nil {
		t.Fatalf("Leave() failed: %v", err)
	}
	if !f.hub.saw("player-left") {
		t.Error("Expected a player-left broadcast")
	}
	if err := f.svc.Leave(ctx, room.Id, "a"); err != nil {
		t.Fatalf("Leave() failed: %v", err)
	}
	if _, err := f.svc.Room(ctx, room.Id); !errors.Is(err, queries.ErrRoomNotFound) {
		t.Errorf("Expected the empty room to be gone, got %v", err)
	}
}

func TestStartRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room, _ := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{})

	if _, err := f.svc.Start(ctx, room.Id, "a"); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Errorf("Expected ErrNotEnoughPlayers, got %v", err)
	}
	f.svc.Join(ctx, room.Id, "b", "Bob")
	if _, err := f.svc.Start(ctx, room.Id, "b"); !errors.Is(err, ErrNotHost) {
		t.Errorf("Expected ErrNotHost, got %v", err)
	}

	st, err := f.svc.Start(ctx, room.Id, "a")
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if len(st.Players) != 2 || st.Players[0].Id != "a" || st.Players[1].Balance != 1500 {
		t.Errorf("Expected a then b with starting cash, got %+v", st.Players)
	}
	got, _ := f.svc.Room(ctx, room.Id)
	if got.Status != models.RoomInProgress {
		t.Errorf("Expected the room in progress, got %s", got.Status)
	}
	if !f.hub.saw("game-start") {
		t.Error("Expected a game-start broadcast")
	}

	if _, err := f.svc.Start(ctx, room.Id, "a"); !errors.Is(err, ErrRoomStarted) {
		t.Errorf("Expected ErrRoomStarted, got %v", err)
	}
	if _, err := f.svc.Join(ctx, room.Id, "c", "Cara"); !errors.Is(err, ErrRoomStarted) {
		t.Errorf("Expected ErrRoomStarted on a late join, got %v", err)
	}
	if err := f.svc.Leave(ctx, room.Id, "b"); !errors.Is(err, ErrRoomStarted) {
		t.Errorf("Expected ErrRoomStarted on leaving a running game, got %v", err)
	}
}

func TestActPersistsAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.startedRoom(t)

	f.dice.push(1, 2)
	update, err := f.svc.Act(ctx, room, "a", models.ActionDto{Type: "roll"})
	if err != nil {
		t.Fatalf("Act(roll) failed: %v", err)
	}
	if update.State.Players[0].Pos != 3 || update.State.Phase != models.PhaseBuying {
		t.Errorf("Expected A on Baltic with an offer, got %+v", update.State.Players[0])
	}

	if _, err := f.svc.Act(ctx, room, "a", models.ActionDto{Type: "buy"}); err != nil {
		t.Fatalf("Act(buy) failed: %v", err)
	}
	st, err := f.svc.State(ctx, room)
	if err != nil {
		t.Fatalf("State() failed: %v", err)
	}
	if st.Players[0].Balance != 1440 || st.Players[0].Holding(3) == nil {
		t.Errorf("Expected the purchase to be stored, got %+v", st.Players[0])
	}

	all, _ := f.svc.Events(ctx, room, 0)
	if len(all) < 4 {
		t.Errorf("Expected the roll and buy events in the log, got %d", len(all))
	}
	tail, _ := f.svc.Events(ctx, room, len(all)-1)
	if len(tail) != 1 || tail[0].Kind != models.EventBought {
		t.Errorf("Expected the last event to be the purchase, got %+v", tail)
	}
	if f.journal.entries != 2 {
		t.Errorf("Expected 2 journal entries, got %d", f.journal.entries)
	}
	if !f.hub.saw("game-update") {
		t.Error("Expected a game-update broadcast")
	}
}

func TestActRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.startedRoom(t)

	if _, err := f.svc.Act(ctx, room, "b", models.ActionDto{Type: "roll"}); !errors.Is(err, rules.ErrNotPlayersTurn) {
		t.Errorf("Expected ErrNotPlayersTurn, got %v", err)
	}
	if _, err := f.svc.Act(ctx, room, "a", models.ActionDto{Type: "trade"}); !errors.Is(err, rules.ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction, got %v", err)
	}
	if _, err := f.svc.Act(ctx, "NOPE", "a", models.ActionDto{Type: "roll"}); !errors.Is(err, queries.ErrRoomNotFound) {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}

	waiting, _ := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{})
	if _, err := f.svc.Act(ctx, waiting.Id, "a", models.ActionDto{Type: "roll"}); !errors.Is(err, ErrGameNotStarted) {
		t.Errorf("Expected ErrGameNotStarted, got %v", err)
	}
	if f.journal.entries != 0 {
		t.Errorf("Expected rejected actions not to be journaled, got %d", f.journal.entries)
	}
}

func TestActFinishesRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.startedRoom(t)

	st, _ := f.store.LoadState(ctx, room)
	st.Players[1].Balance = -100
	st.Insolvencies = []models.Insolvency{{Player: "b", Creditor: "a"}}
	f.store.SaveState(ctx, room, st)

	update, err := f.svc.Act(ctx, room, "b", models.ActionDto{Type: "declare-bankruptcy"})
	if err != nil {
		t.Fatalf("Act(declare-bankruptcy) failed: %v", err)
	}
	if update.State.Winner != "a" {
		t.Errorf("Expected A to win, got %q", update.State.Winner)
	}
	got, _ := f.svc.Room(ctx, room)
	if got.Status != models.RoomFinished || got.Winner_id != "a" {
		t.Errorf("Expected a finished room won by A, got %+v", got)
	}
	if !f.hub.saw("game-over") {
		t.Error("Expected a game-over broadcast")
	}
}

func TestActWaitsForRoomLock(t *testing.T) {
	f := newFixture(t)
	room := f.startedRoom(t)

	unlock, err := f.store.Lock(context.Background(), room, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := f.svc.Act(ctx, room, "a", models.ActionDto{Type: "roll"}); !errors.Is(err, cache.ErrLockTimeout) {
		t.Errorf("Expected ErrLockTimeout while another action holds the room, got %v", err)
	}
}

func TestConcurrentActionsAreSerialised(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.startedRoom(t)

	st, _ := f.store.LoadState(ctx, room)
	st.Players[0].Properties = []models.Holding{{SpaceId: 1}, {SpaceId: 3}}
	f.store.SaveState(ctx, room, st)

	var wg sync.WaitGroup
	var mu sync.Mutex
	built := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(space int) {
			defer wg.Done()
			_, err := f.svc.Act(ctx, room, "a", models.ActionDto{Type: "build", Space: space})
			if err == nil {
				mu.Lock()
				built++
				mu.Unlock()
			} else if !errors.Is(err, rules.ErrInvalidAction) {
				t.Errorf("Unexpected error: %v", err)
			}
		}([]int{1, 3}[i%2])
	}
	wg.Wait()

	st, _ = f.svc.State(ctx, room)
	a := st.Players[0]
	houses := a.Holding(1).Level() + a.Holding(3).Level()
	if built == 0 || houses != built {
		t.Errorf("Expected one stored house per accepted build, got %d houses for %d builds", houses, built)
	}
	if a.Balance != 1500-50*built {
		t.Errorf("Expected %d, got %d", 1500-50*built, a.Balance)
	}
}

func TestConcurrentStartDealsOnce(t *testing.T) {
	f := newFixtureWith(t, func(m *MemoryRepository) Repository {
		return &slowRepo{MemoryRepository: m, delay: 10 * time.Millisecond}
	})
	ctx := context.Background()
	room, _ := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{})
	f.svc.Join(ctx, room.Id, "b", "Bob")

	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Start(ctx, room.Id, "a")
			if err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			} else if !errors.Is(err, ErrRoomStarted) {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if started != 1 {
		t.Errorf("Expected exactly one start, got %d", started)
	}
	if n := f.hub.count("game-start"); n != 1 {
		t.Errorf("Expected one game-start broadcast, got %d", n)
	}
}

func TestStartRefusesExistingGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room, _ := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{})
	f.svc.Join(ctx, room.Id, "b", "Bob")

	f.store.SaveState(ctx, room.Id, &models.GameState{Rules: models.DefaultRules()})
	if _, err := f.svc.Start(ctx, room.Id, "a"); !errors.Is(err, ErrRoomStarted) {
		t.Errorf("Expected ErrRoomStarted over a stored game, got %v", err)
	}
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	f := newFixtureWith(t, func(m *MemoryRepository) Repository {
		return &slowRepo{MemoryRepository: m, delay: 5 * time.Millisecond}
	})
	ctx := context.Background()
	room, _ := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{MaxPlayers: 3})

	var wg sync.WaitGroup
	var mu sync.Mutex
	joined := 0
	for _, id := range []string{"b", "c", "d", "e", "f"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.svc.Join(ctx, room.Id, id, id)
			if err == nil {
				mu.Lock()
				joined++
				mu.Unlock()
			} else if !errors.Is(err, ErrRoomFull) {
				t.Errorf("Unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	players, _ := f.repo.Players(ctx, room.Id)
	if joined != 2 || len(players) != 3 {
		t.Fatalf("Expected 2 joins and 3 players, got %d joins and %+v", joined, players)
	}
	for i, p := range players {
		if p.Seat != i {
			t.Errorf("Expected seats 0..2, got %+v", players)
			break
		}
	}
}

func TestPrivateRoomsAndReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hidden, _ := f.svc.Create(ctx, "a", "Alice", models.GameCreateDto{Name: "hidden", IsPrivate: true})
	open, _ := f.svc.Create(ctx, "c", "Cara", models.GameCreateDto{Name: "open"})

	list, _ := f.svc.Rooms(ctx)
	if len(list) != 1 || list[0].Id != open.Id {
		t.Errorf("Expected only the public room listed, got %+v", list)
	}
	if got, err := f.svc.Room(ctx, hidden.Id); err != nil || !got.IsPrivate {
		t.Errorf("Expected the private room by code, got %+v (%v)", got, err)
	}

	if _, err := f.svc.Join(ctx, hidden.Id, "b", "Bob"); err != nil {
		t.Fatalf("Join() failed: %v", err)
	}
	players, err := f.svc.SetReady(ctx, hidden.Id, "b", true)
	if err != nil {
		t.Fatalf("SetReady() failed: %v", err)
	}
	if players[0].Ready || !players[1].Ready {
		t.Errorf("Expected only Bob ready, got %+v", players)
	}
	if !f.hub.saw("player-ready") {
		t.Error("Expected a player-ready broadcast")
	}
	if _, err := f.svc.SetReady(ctx, hidden.Id, "z", true); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("Expected ErrNotInRoom, got %v", err)
	}

	f.svc.Start(ctx, hidden.Id, "a")
	if _, err := f.svc.SetReady(ctx, hidden.Id, "b", false); !errors.Is(err, ErrRoomStarted) {
		t.Errorf("Expected ErrRoomStarted once the game runs, got %v", err)
	}
}

func TestActSurvivesFailedFinish(t *testing.T) {
	f := newFixtureWith(t, func(m *MemoryRepository) Repository {
		return &slowRepo{MemoryRepository: m, failStatus: models.RoomFinished}
	})
	ctx := context.Background()
	room := f.startedRoom(t)

	st, _ := f.store.LoadState(ctx, room)
	st.Players[1].Balance = -100
	st.Insolvencies = []models.Insolvency{{Player: "b", Creditor: "a"}}
	f.store.SaveState(ctx, room, st)

	update, err := f.svc.Act(ctx, room, "b", models.ActionDto{Type: "declare-bankruptcy"})
	if err != nil {
		t.Fatalf("Expected the committed action to succeed, got %v", err)
	}
	if update.State.Winner != "a" || !f.hub.saw("game-over") {
		t.Errorf("Expected A to win with a game-over broadcast, got %q", update.State.Winner)
	}
	stored, _ := f.svc.State(ctx, room)
	if stored.Winner != "a" {
		t.Errorf("Expected the stored game to be over, got %q", stored.Winner)
	}
}

func TestDeleteFreesRoomLock(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	unlock, err := s.Lock(ctx, "R1", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	unlock()
	s.Delete(ctx, "R1")
	if _, ok := s.locks["R1"]; ok {
		t.Error("Expected the lock of a deleted room to be dropped")
	}
}
