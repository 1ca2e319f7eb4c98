package rooms

import (
	"errors"

	"github.com/DedS3t/monopoly-engine/platform/queries"
)

var (
	ErrRoomFull         = errors.New("room is full")
	ErrRoomStarted      = queries.ErrRoomStarted
	ErrGameNotStarted   = errors.New("game has not started")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotInRoom        = errors.New("you are not in this room")
	ErrNotEnoughPlayers = errors.New("not enough players")
)
