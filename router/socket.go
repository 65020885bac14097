package router

import (
	"encoding/json"
	"log"

	"chat-service/model"
	"chat-service/service"
	"chat-service/socketio"
	"chat-service/utils"

	"github.com/zishang520/socket.io/v2/socket"
)

type socketError struct {
	Code    service.Code `json:"code"`
	Message string       `json:"message"`
	Missing []uint       `json:"missing,omitempty"`
}

// Socket registers the real-time API. Every handler resolves the caller
// from the handshake token, binds its single JSON argument and answers on
// the event it was called with; failures answer on "<event>_error".
func Socket(
	server *socketio.Server,
	users *service.UserService,
	chats *service.ChatService,
	messages *service.MessageService,
) {
	server.IO().On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		client.On("me", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			me, err := users.Me(caller.TelegramID)
			if err != nil {
				emitError(client, "me", err)
				return
			}
			client.Emit("me", me)
		})

		client.On("profile_update", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := service.ProfileUpdateRequest{}
			if !bind(client, "profile_update", args, &req) {
				return
			}
			updated, err := users.UpdateProfile(caller, req)
			if err != nil {
				emitError(client, "profile_update", err)
				return
			}
			client.Emit("profile_update", updated)
		})

		client.On("user_search", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := struct {
				Username string `json:"username"`
			}{}
			if !bind(client, "user_search", args, &req) {
				return
			}
			found, err := users.SearchByUsername(caller, req.Username)
			if err != nil {
				emitError(client, "user_search", err)
				return
			}
			client.Emit("user_search", found)
		})

		client.On("chat_create", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := struct {
				Title string `json:"title"`
			}{}
			if !bind(client, "chat_create", args, &req) {
				return
			}
			chat, err := chats.CreateGroupChat(caller, req.Title)
			if err != nil {
				emitError(client, "chat_create", err)
				return
			}
			client.Emit("chat_create", chat)
		})

		client.On("chat_direct", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := struct {
				TelegramID string `json:"telegram_id"`
			}{}
			if !bind(client, "chat_direct", args, &req) {
				return
			}
			target, err := users.GetCurrent(req.TelegramID)
			if err != nil {
				emitError(client, "chat_direct", err)
				return
			}
			chat, err := chats.ResolveOrCreateDirectChat(caller, target)
			if err != nil {
				emitError(client, "chat_direct", err)
				return
			}
			client.Emit("chat_direct", chat)
		})

		client.On("chat_list", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := struct {
				Limit  int `json:"limit"`
				Offset int `json:"offset"`
			}{}
			if len(args) > 0 && !bind(client, "chat_list", args, &req) {
				return
			}
			summaries, err := chats.GetChats(caller, req.Limit, req.Offset)
			if err != nil {
				emitError(client, "chat_list", err)
				return
			}
			client.Emit("chat_list", summaries)
		})

		client.On("chat_members_add", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := struct {
				ChatID  uint   `json:"chat_id"`
				UserIDs []uint `json:"user_ids"`
			}{}
			if !bind(client, "chat_members_add", args, &req) {
				return
			}
			added, err := chats.AddMembers(req.ChatID, caller, req.UserIDs)
			if err != nil {
				emitError(client, "chat_members_add", err)
				return
			}
			client.Emit("chat_members_add", added)
		})

		// chat_subscribe joins the group topic room; membership is checked
		// so nobody can listen in on a chat they are not part of.
		client.On("chat_subscribe", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := struct {
				ChatID uint `json:"chat_id"`
			}{}
			if !bind(client, "chat_subscribe", args, &req) {
				return
			}
			if err := chats.AssertMember(req.ChatID, caller.ID); err != nil {
				emitError(client, "chat_subscribe", err)
				return
			}
			client.Join(socket.Room(socketio.ChatRoom(req.ChatID)))
			client.Emit("chat_subscribe", req)
		})

		client.On("message_send", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := service.SendMessageRequest{}
			if !bind(client, "message_send", args, &req) {
				return
			}
			sent, err := messages.SendMessage(caller, req)
			if err != nil {
				emitError(client, "message_send", err)
				return
			}
			client.Emit("message_send", sent)
		})

		client.On("chat_messages", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := service.ChatMessagesRequest{}
			if !bind(client, "chat_messages", args, &req) {
				return
			}
			page, err := messages.GetChatMessages(caller, req)
			if err != nil {
				emitError(client, "chat_messages", err)
				return
			}
			client.Emit("chat_messages", page)
		})

		client.On("message_update", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := service.UpdateMessageRequest{}
			if !bind(client, "message_update", args, &req) {
				return
			}
			updated, err := messages.UpdateMessage(caller, req)
			if err != nil {
				emitError(client, "message_update", err)
				return
			}
			client.Emit("message_update", updated)
		})

		client.On("messages_delete", func(args ...interface{}) {
			caller, ok := identity(client, users)
			if !ok {
				return
			}
			req := service.DeleteMessagesRequest{}
			if !bind(client, "messages_delete", args, &req) {
				return
			}
			page, err := messages.DeleteMessages(caller, req)
			if err != nil {
				emitError(client, "messages_delete", err)
				return
			}
			client.Emit("messages_delete", page)
		})
	})
}

func identity(client *socket.Socket, users *service.UserService) (*model.User, bool) {
	claims, ok := client.Data().(*utils.TokenMetadata)
	if !ok || claims == nil {
		client.Emit("error", socketError{Message: "unauthenticated"})
		return nil, false
	}
	caller, err := users.GetCurrent(claims.TelegramID)
	if err != nil {
		emitError(client, "auth", err)
		return nil, false
	}
	return caller, true
}

// bind decodes the first event argument into dst through JSON.
func bind(client *socket.Socket, event string, args []interface{}, dst any) bool {
	if len(args) == 0 {
		client.Emit(event+"_error", socketError{Message: "missing payload"})
		return false
	}
	raw, err := json.Marshal(args[0])
	if err == nil {
		err = json.Unmarshal(raw, dst)
	}
	if err != nil {
		log.Printf("bad [%s] payload: %v", event, err)
		client.Emit(event+"_error", socketError{Message: "malformed payload"})
		return false
	}
	return true
}

func emitError(client *socket.Socket, event string, err error) {
	if svcErr, ok := service.AsError(err); ok {
		client.Emit(event+"_error", socketError{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Missing: svcErr.Missing,
		})
		return
	}
	log.Printf("[%s] failed: %v", event, err)
	client.Emit(event+"_error", socketError{Message: "internal error"})
}
