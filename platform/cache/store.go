package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/gomodule/redigo/redis"
	uuid "github.com/satori/go.uuid"
)

var ErrLockTimeout = errors.New("cache: timed out waiting for room lock")

const lockRetry = 20 * time.Millisecond

// unlockScript deletes the lock only if it still holds our token, so an expired holder
// cannot release a lock someone else has since taken.
var unlockScript = redis.NewScript(1, `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Store keeps live games in redis: the snapshot at <room>.state, the event log at <room>.events
// and the per-room lock at <room>.lock.
type Store struct {
	pool *redis.Pool
}

func NewStore(pool *redis.Pool) *Store {
	return &Store{pool: pool}
}

func stateKey(room string) string  { return fmt.Sprintf("%s.state", room) }
func eventsKey(room string) string { return fmt.Sprintf("%s.events", room) }
func lockKey(room string) string   { return fmt.Sprintf("%s.lock", room) }

func (s *Store) conn(ctx context.Context) (redis.Conn, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return conn, nil
}

func (s *Store) LoadState(ctx context.Context, room string) (*models.GameState, error) {
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	data, err := Get(conn, stateKey(room))
	if err != nil {
		return nil, err
	}
	st := new(models.GameState)
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("cache: decode state of %s: %w", room, err)
	}
	return st, nil
}

func (s *Store) SaveState(ctx context.Context, room string, st *models.GameState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("cache: encode state of %s: %w", room, err)
	}
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return Set(conn, stateKey(room), data)
}

func (s *Store) AppendEvents(ctx context.Context, room string, events []models.Event) error {
	values := make([]interface{}, 0, len(events))
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("cache: encode event: %w", err)
		}
		values = append(values, data)
	}
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return RPush(conn, eventsKey(room), values)
}

// Events returns the room's event log starting at index from.
func (s *Store) Events(ctx context.Context, room string, from int) ([]models.Event, error) {
	if from < 0 {
		from = 0
	}
	conn, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	raw, err := LRange(conn, eventsKey(room), from)
	if err != nil {
		return nil, err
	}
	events := make([]models.Event, 0, len(raw))
	for _, data := range raw {
		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("cache: decode event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Lock takes the room lock, retrying until ctx is done. The returned func releases it.
func (s *Store) Lock(ctx context.Context, room string, ttl time.Duration) (func() error, error) {
	token := uuid.NewV4().String()
	key := lockKey(room)

	for {
		conn, err := s.conn(ctx)
		if err != nil {
			return nil, err
		}
		ok, err := SetNX(conn, key, token, ttl)
		conn.Close()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, room)
		case <-time.After(lockRetry):
		}
	}

	return func() error {
		conn := s.pool.Get()
		defer conn.Close()
		if _, err := unlockScript.Do(conn, key, token); err != nil {
			return fmt.Errorf("cache: unlock %s: %w", room, err)
		}
		return nil
	}, nil
}

// Delete drops the room's game and event log. The lock is left to expire, since the caller
// may still hold it.
func (s *Store) Delete(ctx context.Context, room string) error {
	conn, err := s.conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return Del(conn, stateKey(room), eventsKey(room))
}
