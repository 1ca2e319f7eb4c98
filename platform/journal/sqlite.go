// Package journal keeps an append-only record of every accepted action in SQLite.
// Uses the pure-Go modernc.org/sqlite driver.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/DedS3t/monopoly-engine/app/models"
)

type Journal struct {
	db *sql.DB
}

// Entry is one accepted action and the events it produced. Seq starts at 1 per room.
type Entry struct {
	Room      string
	Seq       int
	Actor     string
	Action    models.ActionDto
	Events    []models.Event
	CreatedAt time.Time
}

// Open creates or opens the journal at path, creating parent directories and the schema.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("journal: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: cannot open database: %w", err)
	}
	// one writer keeps seq allocation race free
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: cannot connect to database: %w", err)
	}
	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: migration failed: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room TEXT NOT NULL,
			seq INTEGER NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			space INTEGER NOT NULL DEFAULT 0,
			events TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (room, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_actions_room ON actions(room, seq);
	`
	_, err := j.db.Exec(schema)
	return err
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends an action to the room's journal.
func (j *Journal) Record(ctx context.Context, room, actor string, action models.ActionDto, events []models.Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("journal: encode events: %w", err)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM actions WHERE room = ?`, room).Scan(&seq); err != nil {
		return fmt.Errorf("journal: next seq: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO actions (room, seq, actor, action, space, events) VALUES (?, ?, ?, ?, ?, ?)`,
		room, seq, actor, action.Type, action.Space, string(data))
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return tx.Commit()
}

// Entries returns the room's journal in order.
func (j *Journal) Entries(ctx context.Context, room string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT room, seq, actor, action, space, events, created_at FROM actions WHERE room = ? ORDER BY seq`, room)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			data      string
			createdAt any
		)
		if err := rows.Scan(&e.Room, &e.Seq, &e.Actor, &e.Action.Type, &e.Action.Space, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		switch v := createdAt.(type) {
		case time.Time:
			e.CreatedAt = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				e.CreatedAt = parsed
			}
		}
		if err := json.Unmarshal([]byte(data), &e.Events); err != nil {
			return nil, fmt.Errorf("journal: decode events: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Rooms lists every room with journal entries.
func (j *Journal) Rooms(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT DISTINCT room FROM actions ORDER BY room`)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var rooms []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}
