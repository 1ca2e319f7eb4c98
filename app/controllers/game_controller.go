package controllers

import (
	"errors"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/pkg"
	"github.com/DedS3t/monopoly-engine/platform/auth"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	"github.com/DedS3t/monopoly-engine/platform/rooms"
	"github.com/DedS3t/monopoly-engine/platform/rules"
	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	svc *rooms.Service
}

func NewGameController(svc *rooms.Service) *GameController {
	return &GameController{svc: svc}
}

// StatusOf maps a service error onto the HTTP status the client sees.
func StatusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, rules.ErrInvalidAction), errors.Is(err, rules.ErrInvalidConfig):
		return fiber.StatusBadRequest
	case errors.Is(err, rules.ErrInsufficientFunds):
		return fiber.StatusPaymentRequired
	case errors.Is(err, rules.ErrNotPlayersTurn), errors.Is(err, rooms.ErrNotHost), errors.Is(err, rooms.ErrNotInRoom):
		return fiber.StatusForbidden
	case errors.Is(err, queries.ErrRoomNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, rooms.ErrRoomFull), errors.Is(err, rooms.ErrRoomStarted),
		errors.Is(err, rooms.ErrGameNotStarted), errors.Is(err, rooms.ErrNotEnoughPlayers):
		return fiber.StatusConflict
	case errors.Is(err, auth.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, cache.ErrLockTimeout):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler as {"error": msg}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return c.Status(StatusOf(err)).JSON(fiber.Map{"error": err.Error()})
}

func claimsOf(c *fiber.Ctx) (auth.Claims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return auth.FromToken(token)
}

func (g *GameController) CreateGame(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return err
	}
	gameCreateDto := new(models.GameCreateDto)
	if err := c.BodyParser(gameCreateDto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	room, err := g.svc.Create(c.Context(), claims.UserId, claims.Username, *gameCreateDto)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": room.Id, "rules": room.Rules})
}

func (g *GameController) GetAllAvailGames(c *fiber.Ctx) error {
	games, err := g.svc.Rooms(c.Context())
	if err != nil {
		return err
	}
	if games == nil {
		games = []models.Room{}
	}
	return c.JSON(games)
}

func (g *GameController) VerifyGame(c *fiber.Ctx) error {
	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	room, err := g.svc.Room(c.Context(), verifyGameDto.Code)
	if errors.Is(err, queries.ErrRoomNotFound) {
		return c.JSON(fiber.Map{"status": false})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": room.Status == models.RoomWaiting, "room": room})
}

func (g *GameController) Presets(c *fiber.Ctx) error {
	return c.JSON(g.svc.Presets())
}

func (g *GameController) Players(c *fiber.Ctx) error {
	players, err := g.svc.Players(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(players)
}

func (g *GameController) Join(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return err
	}
	players, err := g.svc.Join(c.Context(), c.Params("id"), claims.UserId, claims.Username)
	if err != nil {
		return err
	}
	return c.JSON(players)
}

func (g *GameController) Ready(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return err
	}
	var body models.ReadyDto
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	ready := body.Ready == nil || *body.Ready
	players, err := g.svc.SetReady(c.Context(), c.Params("id"), claims.UserId, ready)
	if err != nil {
		return err
	}
	return c.JSON(players)
}

func (g *GameController) Leave(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return err
	}
	if err := g.svc.Leave(c.Context(), c.Params("id"), claims.UserId); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (g *GameController) Start(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return err
	}
	st, err := g.svc.Start(c.Context(), c.Params("id"), claims.UserId)
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (g *GameController) Action(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return err
	}
	actionDto := new(models.ActionDto)
	if err := c.BodyParser(actionDto); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	update, err := g.svc.Act(c.Context(), c.Params("id"), claims.UserId, *actionDto)
	if err != nil {
		return err
	}
	return c.JSON(update)
}

func (g *GameController) State(c *fiber.Ctx) error {
	st, err := g.svc.State(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (g *GameController) Events(c *fiber.Ctx) error {
	events, err := g.svc.Events(c.Context(), c.Params("id"), pkg.Atoi(c.Query("from"), 0))
	if err != nil {
		return err
	}
	if events == nil {
		events = []models.Event{}
	}
	return c.JSON(events)
}
