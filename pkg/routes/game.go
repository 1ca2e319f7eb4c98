package routes

import (
	"github.com/DedS3t/monopoly-engine/app/controllers"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
)

// PublicRoutes need no token: browsing the lobby and watching games.
func PublicRoutes(a *fiber.App, g *controllers.GameController) {
	route := a.Group("/game")
	route.Get("/all", g.GetAllAvailGames)
	route.Get("/verify", g.VerifyGame)
	route.Get("/presets", g.Presets)
	route.Get("/:id/players", g.Players)
	route.Get("/:id/state", g.State)
	route.Get("/:id/events", g.Events)
}

// PrivateRoutes are registered behind the JWT middleware.
func PrivateRoutes(a *fiber.App, g *controllers.GameController, secret []byte) {
	a.Use(jwtware.New(jwtware.Config{
		SigningKey: secret,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		},
	}))

	route := a.Group("/game")
	route.Post("/create", g.CreateGame)
	route.Post("/:id/join", g.Join)
	route.Post("/:id/ready", g.Ready)
	route.Post("/:id/leave", g.Leave)
	route.Post("/:id/start", g.Start)
	route.Post("/:id/action", g.Action)

	a.Get("/user/cur", controllers.Cur)
}
