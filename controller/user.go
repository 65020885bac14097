package controller

import (
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	users *service.UserService
}

func NewUserController(users *service.UserService) *UserController {
	return &UserController{users: users}
}

func (u *UserController) Profile(c *fiber.Ctx) error {
	user, err := currentUser(c, u.users)
	if err != nil {
		return failure(c, err)
	}
	me, err := u.users.Me(user.TelegramID)
	if err != nil {
		return failure(c, err)
	}
	return success(c, me)
}

func (u *UserController) UpdateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c, u.users)
	if err != nil {
		return failure(c, err)
	}

	input := new(service.ProfileUpdateRequest)
	if err := c.BodyParser(input); err != nil {
		return badInput(c)
	}

	updated, err := u.users.UpdateProfile(user, *input)
	if err != nil {
		return failure(c, err)
	}
	return success(c, updated)
}

func (u *UserController) Search(c *fiber.Ctx) error {
	user, err := currentUser(c, u.users)
	if err != nil {
		return failure(c, err)
	}

	found, err := u.users.SearchByUsername(user, c.Query("username"))
	if err != nil {
		return failure(c, err)
	}
	return success(c, found)
}

// ListAll serves the admin user listing; the RBAC middleware gates access.
func (u *UserController) ListAll(c *fiber.Ctx) error {
	users, err := u.users.ListAll()
	if err != nil {
		return failure(c, err)
	}
	return success(c, users)
}
