package repository

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"
)

// base holds the soft-delete plumbing shared by every repository: reads
// filter deleted rows, Trash flips the flag instead of removing the row.
type base[T any] struct {
	db *gorm.DB
}

// FindByID returns the non-deleted row or nil if absent/trashed.
func (b base[T]) FindByID(id uint) (*T, error) {
	var entity T
	err := b.db.Where("id = ? AND deleted = ?", id, false).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindAnyByID returns the row regardless of its deleted flag.
func (b base[T]) FindAnyByID(id uint) (*T, error) {
	var entity T
	err := b.db.Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Trash soft-deletes the row. Trashing an absent or already-deleted row is
// a no-op returning nil.
func (b base[T]) Trash(id uint) (*T, error) {
	entity, err := b.FindByID(id)
	if err != nil || entity == nil {
		return nil, err
	}
	if err := b.db.Model(entity).Update("deleted", true).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

// TrashList trashes each id independently; one failing id does not roll
// back the others.
func (b base[T]) TrashList(ids []uint) []*T {
	trashed := make([]*T, 0, len(ids))
	for _, id := range ids {
		entity, err := b.Trash(id)
		if err != nil {
			log.Printf("trash %d: %v", id, err)
			continue
		}
		if entity != nil {
			trashed = append(trashed, entity)
		}
	}
	return trashed
}

// IsDuplicateKey reports whether err is a uniqueness-constraint violation.
// GORM translates driver errors when the dialector supports it; the string
// checks cover postgres (23505) and sqlite ("UNIQUE constraint failed").
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
