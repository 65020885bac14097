package repository

import (
	"errors"

	"chat-service/model"

	"gorm.io/gorm"
)

type FileRepository struct {
	base[model.AppFile]
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{base[model.AppFile]{db: db}}
}

func (r *FileRepository) Create(file *model.AppFile) error {
	return r.db.Create(file).Error
}

// FindBySha256 dedups uploads: identical bytes resolve to the same record.
func (r *FileRepository) FindBySha256(hash string) (*model.AppFile, error) {
	var file model.AppFile
	err := r.db.Where("sha256_hash = ?", hash).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) FindByCustomHash(hash string) (*model.AppFile, error) {
	var file model.AppFile
	err := r.db.Where("custom_hash = ? AND deleted = ?", hash, false).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

type AttachmentRepository struct {
	base[model.Attachment]
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{base[model.Attachment]{db: db}}
}

func (r *AttachmentRepository) WithTx(tx *gorm.DB) *AttachmentRepository {
	return NewAttachmentRepository(tx)
}

func (r *AttachmentRepository) Create(attachment *model.Attachment) error {
	return r.db.Create(attachment).Error
}

func (r *AttachmentRepository) FindAllByMessage(messageID uint) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := r.db.Preload("File").
		Where("message_id = ? AND deleted = ?", messageID, false).
		Find(&attachments).Error
	return attachments, err
}
