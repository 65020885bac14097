package model

import "time"

// User is created on the first successful Telegram login and soft-deleted
// only. TelegramID is the stable external identity every operation keys on.
type User struct {
	Base
	TelegramID string     `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username   *string    `json:"username"`
	FirstName  string     `gorm:"not null" json:"first_name"`
	LastName   *string    `json:"last_name"`
	PhotoURL   *string    `json:"photo_url"`
	AuthDate   *time.Time `json:"auth_date"`
	Role       string     `gorm:"default:user" json:"role"`
}
