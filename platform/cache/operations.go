package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

var ErrNotFound = errors.New("cache: not found")

func Get(conn redis.Conn, key string) ([]byte, error) {
	data, err := redis.Bytes(conn.Do("GET", key))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", key, err)
	}
	return data, nil
}

func Set(conn redis.Conn, key string, value interface{}) error {
	reply, err := redis.String(conn.Do("SET", key, value))
	if err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	if reply != "OK" {
		return fmt.Errorf("cache: set %s: unexpected reply %q", key, reply)
	}
	return nil
}

// SetNX sets key only when it is absent, expiring it after ttl. It reports whether the key was set.
func SetNX(conn redis.Conn, key string, value interface{}, ttl time.Duration) (bool, error) {
	_, err := redis.String(conn.Do("SET", key, value, "NX", "PX", ttl.Milliseconds()))
	if errors.Is(err, redis.ErrNil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: setnx %s: %w", key, err)
	}
	return true, nil
}

func Del(conn redis.Conn, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := conn.Do("DEL", redis.Args{}.AddFlat(keys)...)
	if err != nil {
		return fmt.Errorf("cache: del: %w", err)
	}
	return nil
}

func RPush(conn redis.Conn, key string, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	_, err := conn.Do("RPUSH", redis.Args{}.Add(key).AddFlat(values)...)
	if err != nil {
		return fmt.Errorf("cache: rpush %s: %w", key, err)
	}
	return nil
}

// LRange returns the list items from index from to the end.
func LRange(conn redis.Conn, key string, from int) ([][]byte, error) {
	values, err := redis.ByteSlices(conn.Do("LRANGE", key, from, -1))
	if err != nil {
		return nil, fmt.Errorf("cache: lrange %s: %w", key, err)
	}
	return values, nil
}
