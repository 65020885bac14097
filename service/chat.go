package service

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"chat-service/model"
	"chat-service/repository"

	"gorm.io/gorm"
)

type ChatService struct {
	db       *gorm.DB
	chats    *repository.ChatRepository
	members  *repository.ChatMemberRepository
	users    *repository.UserRepository
	notifier Notifier
	events   EventSink
}

func NewChatService(
	db *gorm.DB,
	chats *repository.ChatRepository,
	members *repository.ChatMemberRepository,
	users *repository.UserRepository,
	notifier Notifier,
	events EventSink,
) *ChatService {
	return &ChatService{
		db:       db,
		chats:    chats,
		members:  members,
		users:    users,
		notifier: notifier,
		events:   events,
	}
}

// ResolveOrCreateDirectChat returns the canonical direct chat for the pair,
// creating it (chat plus both memberships, one transaction) when absent.
// Two callers racing on the same pair cannot produce two chats: the loser
// hits the pair-key uniqueness constraint and retries as a lookup.
func (s *ChatService) ResolveOrCreateDirectChat(sender, target *model.User) (*model.Chat, error) {
	if sender.ID == target.ID {
		return nil, errInvalidOperation("cannot open a direct chat with yourself")
	}

	existing, err := s.chats.FindDirectChat(sender.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	pairKey := model.DirectPairKey(sender.ID, target.ID)
	chat := &model.Chat{IsGroup: false, PairKey: &pairKey}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.chats.WithTx(tx).Create(chat); err != nil {
			return err
		}
		now := time.Now()
		return s.members.WithTx(tx).CreateAll([]model.ChatMember{
			{JoinedDate: now, IsOwner: true, ChatID: chat.ID, UserID: sender.ID},
			{JoinedDate: now, IsOwner: false, ChatID: chat.ID, UserID: target.ID},
		})
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			// Lost the race; the winner's chat is the canonical one.
			return s.chats.FindDirectChat(sender.ID, target.ID)
		}
		return nil, err
	}

	s.emit("chat_created", chatDTO(chat))
	log.Printf("direct chat %d created for users %d and %d", chat.ID, sender.ID, target.ID)
	return chat, nil
}

// CreateGroupChat creates a titled group with the caller as its owner and
// pushes the new chat to the owner's private channel.
func (s *ChatService) CreateGroupChat(owner *model.User, title string) (*ChatDTO, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errInvalidOperation("group title must not be blank")
	}

	chat := &model.Chat{Title: &title, IsGroup: true}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.chats.WithTx(tx).Create(chat); err != nil {
			return err
		}
		return s.members.WithTx(tx).Create(&model.ChatMember{
			JoinedDate: time.Now(),
			IsOwner:    true,
			ChatID:     chat.ID,
			UserID:     owner.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	dto := chatDTO(chat)
	s.notifier.DeliverToUser(owner.TelegramID, dto)
	s.emit("chat_created", dto)
	log.Printf("group chat %d created by user %d", chat.ID, owner.ID)
	return &dto, nil
}

func (s *ChatService) emit(action string, payload any) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal %s event: %v", action, err)
		return
	}
	if err := s.events.Emit("api", action, data, true); err != nil {
		log.Printf("emit %s event: %v", action, err)
	}
}

// AddMembers adds the given users as non-owner members. The caller is
// silently dropped from the list; already present users are skipped so no
// member ever holds two active memberships.
func (s *ChatService) AddMembers(chatID uint, requestedBy *model.User, userIDs []uint) ([]MemberDTO, error) {
	chat, err := s.chats.FindByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, errChatNotFound(chatID)
	}

	owner, err := s.members.IsOwner(chatID, requestedBy.ID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, errNotOwner()
	}

	candidates := make([]uint, 0, len(userIDs))
	for _, id := range userIDs {
		if id != requestedBy.ID {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return []MemberDTO{}, nil
	}

	found, err := s.users.FindAllByIDs(candidates)
	if err != nil {
		return nil, err
	}
	foundSet := make(map[uint]model.User, len(found))
	for _, u := range found {
		foundSet[u.ID] = u
	}
	var missing []uint
	for _, id := range candidates {
		if _, ok := foundSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, errUnknownMembers(missing)
	}

	now := time.Now()
	created := make([]model.ChatMember, 0, len(candidates))
	for _, id := range candidates {
		member, err := s.members.Exists(chatID, id)
		if err != nil {
			return nil, err
		}
		if member {
			continue
		}
		created = append(created, model.ChatMember{
			JoinedDate: now,
			IsOwner:    false,
			ChatID:     chatID,
			UserID:     id,
		})
	}
	if len(created) > 0 {
		if err := s.members.CreateAll(created); err != nil {
			return nil, err
		}
	}

	dtos := make([]MemberDTO, 0, len(created))
	for i := range created {
		dto := memberDTO(&created[i])
		dtos = append(dtos, dto)
		s.notifier.DeliverToUser(foundSet[created[i].UserID].TelegramID, dto)
	}
	return dtos, nil
}

// AssertMember fails unless user holds a non-deleted membership in chat.
func (s *ChatService) AssertMember(chatID, userID uint) error {
	member, err := s.members.Exists(chatID, userID)
	if err != nil {
		return err
	}
	if !member {
		return errNotChatMember()
	}
	return nil
}

// ListMembers returns the chat's active memberships, order insignificant.
func (s *ChatService) ListMembers(chatID uint) ([]model.ChatMember, error) {
	return s.members.FindAllByChat(chatID)
}

// GetChats serves the caller's chat summaries and mirrors them to the
// caller's private channel.
func (s *ChatService) GetChats(caller *model.User, limit, offset int) ([]model.ChatSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	summaries, err := s.chats.GetSummaries(caller.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	s.notifier.DeliverToUser(caller.TelegramID, summaries)
	return summaries, nil
}
