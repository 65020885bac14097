package repository

import (
	"errors"

	"chat-service/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	base[model.Chat]
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{base[model.Chat]{db: db}}
}

func (r *ChatRepository) WithTx(tx *gorm.DB) *ChatRepository {
	return NewChatRepository(tx)
}

func (r *ChatRepository) Create(chat *model.Chat) error {
	return r.db.Create(chat).Error
}

// FindDirectChat looks up the canonical direct chat for an unordered user
// pair via its pair key.
func (r *ChatRepository) FindDirectChat(userA, userB uint) (*model.Chat, error) {
	var chat model.Chat
	pairKey := model.DirectPairKey(userA, userB)
	err := r.db.
		Where("pair_key = ? AND is_group = ? AND deleted = ?", pairKey, false, false).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetSummaries returns the caller's chats newest-activity-first, each with
// the count of the caller's status rows still in SENT.
func (r *ChatRepository) GetSummaries(userID uint, limit, offset int) ([]model.ChatSummary, error) {
	var summaries []model.ChatSummary
	err := r.db.Raw(`
		SELECT c.id                AS chat_id,
		       c.title             AS title,
		       c.is_group          AS is_group,
		       MAX(m.created_date) AS last_message_time,
		       COUNT(CASE WHEN ms.status = 'SENT' AND ms.user_id = @user THEN 1 END) AS new_messages
		FROM chats c
		         JOIN chat_members cm
		              ON cm.chat_id = c.id
		                  AND cm.user_id = @user
		                  AND cm.deleted = false
		         LEFT JOIN messages m
		                   ON m.chat_id = c.id
		                       AND m.deleted = false
		         LEFT JOIN message_statuses ms
		                   ON ms.message_id = m.id
		                       AND ms.user_id = @user
		                       AND ms.deleted = false
		WHERE c.deleted = false
		GROUP BY c.id, c.title, c.is_group
		ORDER BY last_message_time DESC NULLS LAST
		LIMIT @limit OFFSET @offset`,
		map[string]interface{}{"user": userID, "limit": limit, "offset": offset},
	).Scan(&summaries).Error
	return summaries, err
}

type ChatMemberRepository struct {
	base[model.ChatMember]
}

func NewChatMemberRepository(db *gorm.DB) *ChatMemberRepository {
	return &ChatMemberRepository{base[model.ChatMember]{db: db}}
}

func (r *ChatMemberRepository) WithTx(tx *gorm.DB) *ChatMemberRepository {
	return NewChatMemberRepository(tx)
}

func (r *ChatMemberRepository) Create(member *model.ChatMember) error {
	return r.db.Create(member).Error
}

func (r *ChatMemberRepository) CreateAll(members []model.ChatMember) error {
	return r.db.Create(&members).Error
}

// FindAllByChat returns the non-deleted memberships with users preloaded.
func (r *ChatMemberRepository) FindAllByChat(chatID uint) ([]model.ChatMember, error) {
	var members []model.ChatMember
	err := r.db.Preload("User").
		Where("chat_id = ? AND deleted = ?", chatID, false).
		Find(&members).Error
	return members, err
}

func (r *ChatMemberRepository) Exists(chatID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.ChatMember{}).
		Where("chat_id = ? AND user_id = ? AND deleted = ?", chatID, userID, false).
		Count(&count).Error
	return count > 0, err
}

func (r *ChatMemberRepository) IsOwner(chatID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.ChatMember{}).
		Where("chat_id = ? AND user_id = ? AND is_owner = ? AND deleted = ?", chatID, userID, true, false).
		Count(&count).Error
	return count > 0, err
}
