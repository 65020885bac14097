package model

import (
	"fmt"
	"time"
)

// Chat is a conversation. A direct chat (IsGroup=false) has no title,
// exactly two active members and a PairKey; a group chat has a title and
// one owner member.
type Chat struct {
	Base
	Title   *string `json:"title"`
	IsGroup bool    `gorm:"not null" json:"is_group"`

	// PairKey is "minUserID:maxUserID" for direct chats and null for
	// groups. The unique index is what guarantees at most one direct
	// chat per unordered user pair under concurrent creation.
	PairKey *string `gorm:"uniqueIndex" json:"-"`
}

// DirectPairKey builds the canonical unordered-pair key for a direct chat.
func DirectPairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// ChatMember is one user's membership in one chat.
type ChatMember struct {
	Base
	JoinedDate time.Time `gorm:"not null" json:"joined_date"`
	IsOwner    bool      `gorm:"not null" json:"is_owner"`
	ChatID     uint      `gorm:"not null;index" json:"chat_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Chat       Chat      `gorm:"foreignKey:ChatID" json:"-"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
}

// ChatSummary is the per-chat aggregate served by the chat list: last
// activity plus how many of the caller's status rows are still SENT.
type ChatSummary struct {
	ChatID          uint       `gorm:"column:chat_id" json:"chat_id"`
	Title           *string    `gorm:"column:title" json:"title"`
	IsGroup         bool       `gorm:"column:is_group" json:"is_group"`
	LastMessageTime *time.Time `gorm:"column:last_message_time" json:"last_message_time"`
	NewMessages     int64      `gorm:"column:new_messages" json:"new_messages"`
}
