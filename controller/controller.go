package controller

import (
	"chat-service/model"
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func success(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    data,
	})
}

// failure renders a typed service error as a 400 with its code; anything
// else is an infrastructure failure and stays opaque.
func failure(c *fiber.Ctx, err error) error {
	if svcErr, ok := service.AsError(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": svcErr.Message,
			"data": fiber.Map{
				"code":    svcErr.Code,
				"missing": svcErr.Missing,
			},
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  "error",
		"message": "Internal server error",
		"data":    nil,
	})
}

func badInput(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": "Review your input",
		"data":    nil,
	})
}

// currentUser resolves the JWT identity on the request to an active user.
func currentUser(c *fiber.Ctx, users *service.UserService) (*model.User, error) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	return users.GetCurrent(claims["telegramId"].(string))
}
