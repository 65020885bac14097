package controller

import (
	"context"
	"time"

	"chat-service/database"
	"chat-service/service"
	"chat-service/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	users *service.UserService
}

func NewAuthController(users *service.UserService) *AuthController {
	return &AuthController{users: users}
}

type AuthLoginInput struct {
	ID        string  `json:"id"`
	Username  *string `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
	PhotoURL  *string `json:"photo_url"`
	AuthDate  int64   `json:"auth_date"`
	Hash      string  `json:"hash"`
}

type AuthRenewTokenInput struct {
	RefreshToken string `json:"refresh_token"`
}

// Login accepts the Telegram login-widget callback, verifies its hash and
// issues tokens; the user record is created on first login.
func (a *AuthController) Login(c *fiber.Ctx) error {
	input := new(AuthLoginInput)
	if err := c.BodyParser(input); err != nil {
		return badInput(c)
	}

	tokens, err := a.users.LoginFromTelegram(service.LoginRequest{
		TelegramID: input.ID,
		Username:   input.Username,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		PhotoURL:   input.PhotoURL,
		AuthDate:   time.Unix(input.AuthDate, 0),
		Hash:       input.Hash,
	})
	if err != nil {
		return failure(c, err)
	}

	// Save refresh token to Redis
	if err := database.Redis[0].Set(context.Background(), input.ID, tokens.RefreshToken, 0).Err(); err != nil {
		return failure(c, err)
	}

	return success(c, fiber.Map{
		"access":     tokens.Token,
		"refresh":    tokens.RefreshToken,
		"expires_at": tokens.ExpiresAt,
	})
}

// TokenRenew swaps a refresh token for a fresh pair. A refresh token works
// once: the Redis copy is the currently valid one.
func (a *AuthController) TokenRenew(c *fiber.Ctx) error {
	renew := new(AuthRenewTokenInput)
	if err := c.BodyParser(renew); err != nil {
		return badInput(c)
	}

	claims, err := utils.CheckAndExtractTokenMetadata(renew.RefreshToken, "JWT_REFRESH_KEY")
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid token",
			"data":    nil,
		})
	}

	userToken, err := database.Redis[0].Get(context.Background(), claims.TelegramID).Result()
	if err != nil {
		return failure(c, err)
	}
	if userToken != renew.RefreshToken {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized, your refresh token was already used",
			"data":    nil,
		})
	}

	tokens, err := utils.GenerateTokens(claims.TelegramID)
	if err != nil {
		return failure(c, err)
	}

	if err := database.Redis[0].Set(context.Background(), claims.TelegramID, tokens.Refresh, 0).Err(); err != nil {
		return failure(c, err)
	}

	return success(c, fiber.Map{
		"access":     tokens.Access,
		"refresh":    tokens.Refresh,
		"expires_at": tokens.Expires,
	})
}
