package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chat-service/config"
	"chat-service/controller"
	"chat-service/database"
	"chat-service/event"
	"chat-service/event/listener"
	"chat-service/repository"
	"chat-service/router"
	"chat-service/service"
	"chat-service/socketio"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	log.SetPrefix("chat-service: ")

	rest := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		AppName:               "chat-service",
	})

	rest.Use(cors.New())

	database.RedisConnect()
	database.PostgresConnect()
	enforcer := database.Casbin()

	broker := event.Connect([]string{
		// Connect to queues
		"api",
		"backoffice",
	})

	socket := socketio.Init(rest)

	// Run "api" listener
	go listener.Api(socket)

	// Subscribe listener channel to "api" events
	broker.Subscribe([]event.SubscribeListener{
		{
			Queue:   "api",
			Channel: listener.ApiChannel,
		},
	})

	// Replay event logs
	broker.Replay()

	db := database.Postgres
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	memberRepo := repository.NewChatMemberRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	fileRepo := repository.NewFileRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	userService := service.NewUserService(userRepo, socket, enforcer, config.Config("TELEGRAM_BOT_TOKEN"))
	chatService := service.NewChatService(db, chatRepo, memberRepo, userRepo, socket, broker)
	fileService := service.NewFileService(fileRepo, config.Config("FILE_STORAGE_DIR"))
	messageService := service.NewMessageService(
		db,
		messageRepo,
		statusRepo,
		attachmentRepo,
		chatRepo,
		userRepo,
		fileService,
		chatService,
		socket,
		broker,
	)

	router.Rest(
		rest,
		controller.NewAuthController(userService),
		controller.NewUserController(userService),
		controller.NewChatController(userService, chatService, messageService),
		controller.NewFileController(userService, fileService),
		enforcer,
	)
	router.Socket(socket, userService, chatService, messageService)

	go rest.Listen(fmt.Sprintf(":%s", config.Config("SERVER_PORT")))

	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	socket.IO().Close(nil)
	broker.Close()
	os.Exit(0)
}
