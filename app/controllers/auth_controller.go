package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// Cur returns the identity carried by the bearer token.
func Cur(c *fiber.Ctx) error {
	claims, err := claimsOf(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user_id": claims.UserId, "username": claims.Username})
}
