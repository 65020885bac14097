package repository

import (
	"errors"

	"chat-service/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	base[model.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{base[model.User]{db: db}}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return NewUserRepository(tx)
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) Save(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) FindByTelegramID(telegramID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("telegram_id = ? AND deleted = ?", telegramID, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindAllByIDs(ids []uint) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("id IN ? AND deleted = ?", ids, false).Find(&users).Error
	return users, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).
		Where("username = ? AND deleted = ?", username, false).
		Count(&count).Error
	return count > 0, err
}

// SearchByUsername returns the first non-deleted user whose username
// contains the keyword, case-insensitive.
func (r *UserRepository) SearchByUsername(keyword string) (*model.User, error) {
	var user model.User
	err := r.db.
		Where("deleted = ? AND lower(username) LIKE lower(?)", false, "%"+keyword+"%").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Where("deleted = ?", false).Find(&users).Error
	return users, err
}
