package router

import (
	"chat-service/controller"
	"chat-service/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func Rest(
	app *fiber.App,
	auth *controller.AuthController,
	user *controller.UserController,
	chat *controller.ChatController,
	file *controller.FileController,
	enforcer *casbin.Enforcer,
) {
	api := app.Group("/v1", logger.New())

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Post("/login", auth.Login)
	authGroup.Post("/token/renew", auth.TokenRenew)

	// User
	userGroup := api.Group("/user", middleware.JWT())
	userGroup.Get("/profile", user.Profile)
	userGroup.Put("/profile", user.UpdateProfile)
	userGroup.Get("/search", user.Search)

	// Chat
	chatGroup := api.Group("/chat", middleware.JWT())
	chatGroup.Get("/list", chat.List)
	chatGroup.Post("/create", chat.Create)
	chatGroup.Post("/direct", chat.Direct)
	chatGroup.Get("/:id/members", chat.Members)
	chatGroup.Post("/:id/members", chat.AddMembers)
	chatGroup.Get("/:id/messages", chat.Messages)

	// File
	fileGroup := api.Group("/file", middleware.JWT())
	fileGroup.Post("/upload", file.Upload)
	fileGroup.Get("/:hash", file.Serve)

	// Admin
	adminGroup := api.Group("/admin", middleware.JWT(), middleware.RBAC(enforcer))
	adminGroup.Get("/users", user.ListAll)
}
