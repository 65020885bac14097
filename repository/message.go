package repository

import (
	"errors"

	"chat-service/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	base[model.Message]
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{base[model.Message]{db: db}}
}

func (r *MessageRepository) WithTx(tx *gorm.DB) *MessageRepository {
	return NewMessageRepository(tx)
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.db.Create(msg).Error
}

func (r *MessageRepository) Save(msg *model.Message) error {
	return r.db.Save(msg).Error
}

// TopID returns the id of the newest non-deleted message in the chat; ok is
// false when the chat has none.
func (r *MessageRepository) TopID(chatID uint) (uint, bool, error) {
	var msg model.Message
	err := r.db.
		Where("chat_id = ? AND deleted = ?", chatID, false).
		Order("id DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return msg.ID, true, nil
}

// PageBefore returns up to limit non-deleted messages with id strictly
// below beforeID, newest first. Keyset pagination over the monotonic id
// keeps pages stable while older rows are soft-deleted underneath.
func (r *MessageRepository) PageBefore(chatID, beforeID uint, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.
		Where("chat_id = ? AND deleted = ? AND id < ?", chatID, false, beforeID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
