package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"chat-service/model"
	"chat-service/repository"
	"chat-service/utils"
)

// PolicyStore receives role grouping for newly created users. Satisfied by
// *casbin.Enforcer.
type PolicyStore interface {
	AddGroupingPolicy(params ...interface{}) (bool, error)
}

type UserService struct {
	users    *repository.UserRepository
	notifier Notifier
	policies PolicyStore
	// botToken keys the Telegram login hash check; injected at
	// construction, never read from ambient state.
	botToken string
}

func NewUserService(users *repository.UserRepository, notifier Notifier, policies PolicyStore, botToken string) *UserService {
	return &UserService{
		users:    users,
		notifier: notifier,
		policies: policies,
		botToken: botToken,
	}
}

// LoginRequest is the Telegram login-widget callback payload.
type LoginRequest struct {
	TelegramID string    `json:"telegram_id"`
	Username   *string   `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   *string   `json:"last_name"`
	PhotoURL   *string   `json:"photo_url"`
	AuthDate   time.Time `json:"auth_date"`
	Hash       string    `json:"hash"`
}

type ProfileUpdateRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// LoginFromTelegram verifies the login-widget hash, creates the user on
// first sight and issues tokens. An existing profile is left untouched;
// profile fields change only through UpdateProfile.
func (s *UserService) LoginFromTelegram(req LoginRequest) (*TokenDTO, error) {
	if err := s.verifyHash(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByTelegramID(req.TelegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		authDate := req.AuthDate
		user = &model.User{
			TelegramID: req.TelegramID,
			Username:   req.Username,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			PhotoURL:   req.PhotoURL,
			AuthDate:   &authDate,
			Role:       "user",
		}
		if err := s.users.Create(user); err != nil {
			return nil, err
		}
		if s.policies != nil {
			s.policies.AddGroupingPolicy(user.TelegramID, user.Role)
		}
		log.Printf("user %s registered", user.TelegramID)
	}

	tokens, err := utils.GenerateTokens(user.TelegramID)
	if err != nil {
		return nil, err
	}
	return &TokenDTO{
		Token:        tokens.Access,
		RefreshToken: tokens.Refresh,
		ExpiresAt:    tokens.Expires,
	}, nil
}

func (s *UserService) verifyHash(req LoginRequest) error {
	params := map[string]string{
		"id":         req.TelegramID,
		"first_name": req.FirstName,
		"auth_date":  fmt.Sprintf("%d", req.AuthDate.Unix()),
	}
	if req.LastName != nil {
		params["last_name"] = *req.LastName
	}
	if req.Username != nil {
		params["username"] = *req.Username
	}
	if req.PhotoURL != nil {
		params["photo_url"] = *req.PhotoURL
	}

	calculated := utils.TelegramLoginHash(params, s.botToken)
	if !strings.EqualFold(calculated, req.Hash) {
		return errTelegramNotValid("telegram login hash mismatch")
	}
	return nil
}

// GetCurrent resolves the caller identity to an active user.
func (s *UserService) GetCurrent(telegramID string) (*model.User, error) {
	user, err := s.users.FindByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotFound(telegramID)
	}
	return user, nil
}

func (s *UserService) Me(telegramID string) (*UserDTO, error) {
	user, err := s.GetCurrent(telegramID)
	if err != nil {
		return nil, err
	}
	dto := userDTO(user)
	return &dto, nil
}

// UpdateProfile changes only the supplied fields; omitted ones keep their
// stored value.
func (s *UserService) UpdateProfile(caller *model.User, req ProfileUpdateRequest) (*UserDTO, error) {
	if req.Username != nil {
		taken, err := s.users.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errUserAlreadyExists(*req.Username)
		}
		caller.Username = req.Username
	}
	if req.FirstName != nil {
		caller.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		caller.LastName = req.LastName
	}

	if err := s.users.Save(caller); err != nil {
		return nil, err
	}
	dto := userDTO(caller)
	return &dto, nil
}

// SearchByUsername finds one user by username fragment and pushes the hit
// to the caller's private channel.
func (s *UserService) SearchByUsername(caller *model.User, keyword string) (*UserDTO, error) {
	user, err := s.users.SearchByUsername(keyword)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	dto := userDTO(user)
	s.notifier.DeliverToUser(caller.TelegramID, dto)
	return &dto, nil
}

func (s *UserService) ListAll() ([]UserDTO, error) {
	users, err := s.users.FindAll()
	if err != nil {
		return nil, err
	}
	dtos := make([]UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, userDTO(&users[i]))
	}
	return dtos, nil
}
