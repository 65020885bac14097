package controller

import (
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
)

type ChatController struct {
	users    *service.UserService
	chats    *service.ChatService
	messages *service.MessageService
}

func NewChatController(users *service.UserService, chats *service.ChatService, messages *service.MessageService) *ChatController {
	return &ChatController{users: users, chats: chats, messages: messages}
}

type ChatCreateInput struct {
	Title string `json:"title"`
}

type ChatDirectInput struct {
	TelegramID string `json:"telegram_id"`
}

type ChatAddMembersInput struct {
	UserIDs []uint `json:"user_ids"`
}

func (ch *ChatController) Create(c *fiber.Ctx) error {
	user, err := currentUser(c, ch.users)
	if err != nil {
		return failure(c, err)
	}

	input := new(ChatCreateInput)
	if err := c.BodyParser(input); err != nil {
		return badInput(c)
	}

	chat, err := ch.chats.CreateGroupChat(user, input.Title)
	if err != nil {
		return failure(c, err)
	}
	return success(c, chat)
}

// Direct resolves (or lazily creates) the single direct chat between the
// caller and the named user.
func (ch *ChatController) Direct(c *fiber.Ctx) error {
	user, err := currentUser(c, ch.users)
	if err != nil {
		return failure(c, err)
	}

	input := new(ChatDirectInput)
	if err := c.BodyParser(input); err != nil {
		return badInput(c)
	}

	target, err := ch.users.GetCurrent(input.TelegramID)
	if err != nil {
		return failure(c, err)
	}
	chat, err := ch.chats.ResolveOrCreateDirectChat(user, target)
	if err != nil {
		return failure(c, err)
	}
	return success(c, chat)
}

func (ch *ChatController) List(c *fiber.Ctx) error {
	user, err := currentUser(c, ch.users)
	if err != nil {
		return failure(c, err)
	}

	summaries, err := ch.chats.GetChats(user, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return failure(c, err)
	}
	return success(c, summaries)
}

func (ch *ChatController) Members(c *fiber.Ctx) error {
	user, err := currentUser(c, ch.users)
	if err != nil {
		return failure(c, err)
	}

	chatID, err := c.ParamsInt("id")
	if err != nil {
		return badInput(c)
	}
	if err := ch.chats.AssertMember(uint(chatID), user.ID); err != nil {
		return failure(c, err)
	}

	members, err := ch.chats.ListMembers(uint(chatID))
	if err != nil {
		return failure(c, err)
	}
	return success(c, members)
}

func (ch *ChatController) AddMembers(c *fiber.Ctx) error {
	user, err := currentUser(c, ch.users)
	if err != nil {
		return failure(c, err)
	}

	chatID, err := c.ParamsInt("id")
	if err != nil {
		return badInput(c)
	}
	input := new(ChatAddMembersInput)
	if err := c.BodyParser(input); err != nil {
		return badInput(c)
	}

	added, err := ch.chats.AddMembers(uint(chatID), user, input.UserIDs)
	if err != nil {
		return failure(c, err)
	}
	return success(c, added)
}

// Messages serves one history page; reading it advances the caller's
// pending statuses to READ.
func (ch *ChatController) Messages(c *fiber.Ctx) error {
	user, err := currentUser(c, ch.users)
	if err != nil {
		return failure(c, err)
	}

	chatID, err := c.ParamsInt("id")
	if err != nil {
		return badInput(c)
	}
	req := service.ChatMessagesRequest{
		ChatID: uint(chatID),
		Limit:  c.QueryInt("limit"),
	}
	if before := c.QueryInt("before_id"); before > 0 {
		beforeID := uint(before)
		req.BeforeID = &beforeID
	}

	page, err := ch.messages.GetChatMessages(user, req)
	if err != nil {
		return failure(c, err)
	}
	return success(c, page)
}
