package database

import (
	"context"
	"fmt"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

// migrations bring tables created by older builds up to date. Each statement is idempotent.
var migrations = []string{
	`ALTER TABLE rooms ADD COLUMN IF NOT EXISTS is_private boolean NOT NULL DEFAULT false`,
	`ALTER TABLE room_players ADD COLUMN IF NOT EXISTS ready boolean NOT NULL DEFAULT false`,
	`CREATE UNIQUE INDEX IF NOT EXISTS room_players_seat_idx ON room_players (room_id, seat)`,
}

func PostgreSQLConnection(cfg config.DBConfig) *pg.DB {
	return pg.Connect(&pg.Options{
		User:     cfg.User,
		Addr:     cfg.Addr,
		Password: cfg.Password,
		Database: cfg.Name,
	})
}

// CreateSchema creates the lobby tables if they are missing.
func CreateSchema(ctx context.Context, db *pg.DB) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	for _, model := range []interface{}{(*models.Room)(nil), (*models.RoomPlayer)(nil)} {
		err := db.Model(model).CreateTable(&orm.CreateTableOptions{IfNotExists: true})
		if err != nil {
			return fmt.Errorf("database: create table: %w", err)
		}
	}
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database: migrate: %w", err)
		}
	}
	return nil
}
