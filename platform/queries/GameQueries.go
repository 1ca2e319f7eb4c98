package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/go-pg/pg/v10"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomStarted    = errors.New("game already started")
	ErrPlayerNotFound = errors.New("player not in room")
)

// RoomQueries is the postgres side of the lobby: rooms and who sits in them.
type RoomQueries struct {
	db *pg.DB
}

func New(db *pg.DB) *RoomQueries {
	return &RoomQueries{db: db}
}

func (q *RoomQueries) CreateRoom(ctx context.Context, room *models.Room) error {
	if _, err := q.db.ModelContext(ctx, room).Insert(); err != nil {
		return fmt.Errorf("queries: create room: %w", err)
	}
	return nil
}

func (q *RoomQueries) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	room := &models.Room{Id: id}
	err := q.db.ModelContext(ctx, room).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("queries: get room: %w", err)
	}
	return room, nil
}

func (q *RoomQueries) ListOpenRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := q.db.ModelContext(ctx, &rooms).
		Where("status = ?", models.RoomWaiting).
		Where("is_private IS NOT TRUE").
		Order("created_at DESC").
		Select()
	if err != nil {
		return nil, fmt.Errorf("queries: list rooms: %w", err)
	}
	return rooms, nil
}

func (q *RoomQueries) AddPlayer(ctx context.Context, player models.RoomPlayer) error {
	if _, err := q.db.ModelContext(ctx, &player).Insert(); err != nil {
		return fmt.Errorf("queries: add player: %w", err)
	}
	return nil
}

func (q *RoomQueries) RemovePlayer(ctx context.Context, roomId, userId string) error {
	_, err := q.db.ModelContext(ctx, (*models.RoomPlayer)(nil)).
		Where("room_id = ? AND user_id = ?", roomId, userId).
		Delete()
	if err != nil {
		return fmt.Errorf("queries: remove player: %w", err)
	}
	return nil
}

// Players lists the room's members in seat order.
func (q *RoomQueries) Players(ctx context.Context, roomId string) ([]models.RoomPlayer, error) {
	var players []models.RoomPlayer
	err := q.db.ModelContext(ctx, &players).
		Where("room_id = ?", roomId).
		Order("seat ASC").
		Select()
	if err != nil {
		return nil, fmt.Errorf("queries: list players: %w", err)
	}
	return players, nil
}

// SetStatus moves the room to status. Starting only succeeds from waiting, so two hosts racing
// to start get ErrRoomStarted on the loser.
func (q *RoomQueries) SetStatus(ctx context.Context, roomId, status, winner string) error {
	query := q.db.ModelContext(ctx, &models.Room{Id: roomId}).
		Set("status = ?", status).
		Set("winner_id = ?", winner).
		Set("updated_at = ?", time.Now()).
		WherePK()
	if status == models.RoomInProgress {
		query = query.Where("status = ?", models.RoomWaiting)
	}
	res, err := query.Update()
	if err != nil {
		return fmt.Errorf("queries: set status: %w", err)
	}
	if res.RowsAffected() > 0 {
		return nil
	}
	exists, err := q.db.ModelContext(ctx, (*models.Room)(nil)).Where("id = ?", roomId).Exists()
	if err != nil {
		return fmt.Errorf("queries: set status: %w", err)
	}
	if exists {
		return ErrRoomStarted
	}
	return ErrRoomNotFound
}

func (q *RoomQueries) SetReady(ctx context.Context, roomId, userId string, ready bool) error {
	res, err := q.db.ModelContext(ctx, (*models.RoomPlayer)(nil)).
		Set("ready = ?", ready).
		Where("room_id = ? AND user_id = ?", roomId, userId).
		Update()
	if err != nil {
		return fmt.Errorf("queries: set ready: %w", err)
	}
	if res.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// DeleteRoom removes the room and its members in one transaction.
func (q *RoomQueries) DeleteRoom(ctx context.Context, roomId string) error {
	return q.db.RunInTransaction(ctx, func(tx *pg.Tx) error {
		if _, err := tx.ModelContext(ctx, (*models.RoomPlayer)(nil)).Where("room_id = ?", roomId).Delete(); err != nil {
			return fmt.Errorf("queries: delete players: %w", err)
		}
		if _, err := tx.ModelContext(ctx, (*models.Room)(nil)).Where("id = ?", roomId).Delete(); err != nil {
			return fmt.Errorf("queries: delete room: %w", err)
		}
		return nil
	})
}
