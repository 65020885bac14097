package model

import "time"

// Base carries the audit fields shared by every persisted entity.
// Rows are never hard-deleted; Deleted flips to true instead and every
// read query filters it out.
type Base struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedDate  time.Time `gorm:"autoCreateTime" json:"created_date"`
	ModifiedDate time.Time `gorm:"autoUpdateTime" json:"modified_date"`
	Deleted      bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedBy    string    `json:"-"`
	UpdatedBy    string    `json:"-"`
}
