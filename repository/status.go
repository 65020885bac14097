package repository

import (
	"chat-service/model"

	"gorm.io/gorm"
)

type StatusRepository struct {
	base[model.MessageStatus]
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{base[model.MessageStatus]{db: db}}
}

func (r *StatusRepository) WithTx(tx *gorm.DB) *StatusRepository {
	return NewStatusRepository(tx)
}

func (r *StatusRepository) CreateAll(statuses []model.MessageStatus) error {
	return r.db.Create(&statuses).Error
}

// FindAllByUserAndChat returns the user's non-deleted status rows for every
// message in the chat.
func (r *StatusRepository) FindAllByUserAndChat(userID, chatID uint) ([]model.MessageStatus, error) {
	var statuses []model.MessageStatus
	err := r.db.
		Where("user_id = ? AND deleted = ?", userID, false).
		Where("message_id IN (?)", r.db.Model(&model.Message{}).
			Select("id").
			Where("chat_id = ?", chatID)).
		Find(&statuses).Error
	return statuses, err
}

func (r *StatusRepository) FindAllByMessageIDs(messageIDs []uint) ([]model.MessageStatus, error) {
	var statuses []model.MessageStatus
	err := r.db.
		Where("message_id IN ? AND deleted = ?", messageIDs, false).
		Find(&statuses).Error
	return statuses, err
}

// AdvanceToRead bulk-moves the user's SENT rows to READ for messages in the
// chat addressed to the user. Idempotent: rows already READ are untouched
// and never regress.
func (r *StatusRepository) AdvanceToRead(userID, chatID uint) (int64, error) {
	res := r.db.Model(&model.MessageStatus{}).
		Where("user_id = ? AND status = ? AND deleted = ?", userID, model.StatusSent, false).
		Where("message_id IN (?)", r.db.Model(&model.Message{}).
			Select("id").
			Where("chat_id = ? AND recipient_id = ? AND deleted = ?", chatID, userID, false)).
		Update("status", model.StatusRead)
	return res.RowsAffected, res.Error
}
