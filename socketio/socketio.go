package socketio

import (
	"context"
	"fmt"
	"time"

	"chat-service/config"
	"chat-service/database"
	"chat-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/socket.io-go-redis/adapter"
	r_type "github.com/zishang520/socket.io-go-redis/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// Server wraps the socket.io server. Every authenticated client sits in a
// private room named after its telegram id; group chats additionally have
// a shared topic room that members join on subscription. The redis adapter
// fans rooms out across instances.
type Server struct {
	io *socket.Server
}

func Init(app *fiber.App) *Server {
	log.DEBUG = config.Config("SOCKET_DEBUG") == "true"

	options := socket.DefaultServerOptions()
	options.SetServeClient(true)
	options.SetAllowEIO3(true)
	options.SetPingInterval(25 * time.Second)
	options.SetPingTimeout(20 * time.Second)
	options.SetMaxHttpBufferSize(100000000)
	options.SetConnectTimeout(45 * time.Second)
	options.SetAdapter(&adapter.RedisAdapterBuilder{
		Redis: r_type.NewRedisClient(context.Background(), database.Redis[1]),
		Opts:  &adapter.RedisAdapterOptions{},
	})

	io := socket.NewServer(nil, nil)

	io.Use(func(client *socket.Socket, next func(*socket.ExtendedError)) {
		token, auth := client.Conn().Request().Query().Get("token")

		if auth {
			claims, err := utils.CheckAndExtractTokenMetadata(token, "JWT_ACCESS_KEY")

			if err == nil {
				client.Join(socket.Room(claims.TelegramID))
				client.SetData(claims)
			}
		}

		next(nil)
	})

	app.Get("/socket.io/", adaptor.HTTPHandler(io.ServeHandler(options)))
	app.Post("/socket.io/", adaptor.HTTPHandler(io.ServeHandler(options)))

	return &Server{io: io}
}

func (s *Server) IO() *socket.Server {
	return s.io
}

// DeliverToUser pushes the payload to the user's private room.
func (s *Server) DeliverToUser(telegramID string, payload any) {
	s.io.To(socket.Room(telegramID)).Emit("messages", payload)
}

// DeliverToChatTopic pushes the payload to the chat's topic room.
func (s *Server) DeliverToChatTopic(chatID uint, payload any) {
	s.io.To(socket.Room(ChatRoom(chatID))).Emit("messages", payload)
}

// ChatRoom names the topic room for a group chat.
func ChatRoom(chatID uint) string {
	return fmt.Sprintf("chat:%d", chatID)
}
