package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/auth"
	"github.com/DedS3t/monopoly-engine/platform/logging"
	"github.com/DedS3t/monopoly-engine/platform/rooms"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const namespace = "/"

var errMissingRoom = errors.New("game_id not passed")

// Rooms is the part of the room service the socket server drives.
type Rooms interface {
	Join(ctx context.Context, roomId, userId, username string) ([]models.RoomPlayer, error)
	Leave(ctx context.Context, roomId, userId string) error
	Act(ctx context.Context, roomId, userId string, dto models.ActionDto) (*rooms.Update, error)
	State(ctx context.Context, roomId string) (*models.GameState, error)
}

// request is the JSON body of every client event.
type request struct {
	GameId string `json:"game_id"`
	Token  string `json:"token"`
	Type   string `json:"type"`
	Space  int    `json:"space"`
}

type Server struct {
	io      *socketio.Server
	rooms   Rooms
	secret  []byte
	timeout time.Duration
	log     *logrus.Entry
}

func NewServer(secret []byte) (*Server, error) {
	io, err := socketio.NewServer(nil)
	if err != nil {
		return nil, err
	}
	s := &Server{
		io:      io,
		secret:  secret,
		timeout: 10 * time.Second,
		log:     logging.New("sockets"),
	}
	s.register()
	return s, nil
}

// Bind attaches the room service; events arriving before Bind are refused.
func (s *Server) Bind(r Rooms) {
	s.rooms = r
}

// Broadcast sends payload as a JSON string to everyone in room.
func (s *Server) Broadcast(room, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.WithError(err).WithField("event", event).Error("failed to encode broadcast")
		return
	}
	s.io.BroadcastToRoom(namespace, room, event, string(data))
}

func (s *Server) parse(raw string) (request, auth.Claims, error) {
	var req request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return req, auth.Claims{}, err
	}
	if req.GameId == "" {
		return req, auth.Claims{}, errMissingRoom
	}
	claims, err := auth.Parse(s.secret, req.Token)
	return req, claims, err
}

func (s *Server) fail(c socketio.Conn, err error) {
	c.Emit("error-message", err.Error())
}

func (s *Server) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Server) register() {
	s.io.OnConnect(namespace, func(c socketio.Conn) error {
		c.SetContext("")
		s.log.WithField("conn", c.ID()).Debug("connected")
		return nil
	})

	s.io.OnEvent(namespace, "join-game", func(c socketio.Conn, raw string) {
		req, claims, err := s.parse(raw)
		if err != nil {
			s.fail(c, err)
			c.Emit("failed")
			return
		}
		if s.rooms == nil {
			c.Emit("error-message", "server is starting")
			return
		}
		ctx, cancel := s.ctx()
		defer cancel()
		// watchers of a running game re-join their seat, so only waiting rooms reject
		players, err := s.rooms.Join(ctx, req.GameId, claims.UserId, claims.Username)
		if err != nil && !errors.Is(err, rooms.ErrRoomStarted) {
			s.fail(c, err)
			c.Emit("failed")
			return
		}
		c.Join(req.GameId)
		c.SetContext(claims.UserId)
		s.log.WithFields(logrus.Fields{"room": req.GameId, "user": claims.UserId}).Info("socket joined room")

		if st, err := s.rooms.State(ctx, req.GameId); err == nil {
			data, _ := json.Marshal(st)
			c.Emit("game-state", string(data))
			return
		}
		data, _ := json.Marshal(players)
		c.Emit("joined-game", string(data))
	})

	s.io.OnEvent(namespace, "leave-game", func(c socketio.Conn, raw string) {
		req, claims, err := s.parse(raw)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Leave(req.GameId)
		if s.rooms == nil {
			return
		}
		ctx, cancel := s.ctx()
		defer cancel()
		if err := s.rooms.Leave(ctx, req.GameId, claims.UserId); err != nil && !errors.Is(err, rooms.ErrRoomStarted) {
			s.fail(c, err)
		}
	})

	s.io.OnEvent(namespace, "action", func(c socketio.Conn, raw string) {
		req, claims, err := s.parse(raw)
		if err != nil {
			s.fail(c, err)
			return
		}
		if s.rooms == nil {
			c.Emit("error-message", "server is starting")
			return
		}
		ctx, cancel := s.ctx()
		defer cancel()
		// the update itself reaches the room through Broadcast
		if _, err := s.rooms.Act(ctx, req.GameId, claims.UserId, models.ActionDto{Type: req.Type, Space: req.Space}); err != nil {
			s.fail(c, err)
		}
	})

	s.io.OnError(namespace, func(c socketio.Conn, err error) {
		s.log.WithError(err).Warn("socket error")
	})

	s.io.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		s.log.WithFields(logrus.Fields{"conn": c.ID(), "reason": reason}).Debug("disconnected")
		c.LeaveAll()
	})
}

// Handler serves socket.io behind CORS for the given origins.
func (s *Server) Handler(origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
	})
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", s.io)
	return c.Handler(mux)
}

// Serve runs the socket.io event loop until Close.
func (s *Server) Serve() error {
	return s.io.Serve()
}

func (s *Server) Close() error {
	return s.io.Close()
}
