package model

// Message is one chat message. IDs are monotonic and double as the
// pagination cursor. RecipientID is set only on direct-chat messages;
// ReplyToID must reference a message in the same chat.
type Message struct {
	Base
	Content     *string `json:"content"`
	Caption     *string `json:"caption"`
	ChatID      uint    `gorm:"not null;index" json:"chat_id"`
	SenderID    uint    `gorm:"not null;index" json:"sender_id"`
	RecipientID *uint   `json:"recipient_id"`
	ReplyToID   *uint   `json:"reply_to_id"`
}

// AppFile is a content-addressed file record. Sha256Hash dedups identical
// bytes; CustomHash is the obfuscated name handed out to clients.
type AppFile struct {
	Base
	OwnerID    uint   `gorm:"not null" json:"owner_id"`
	FilePath   string `gorm:"not null" json:"-"`
	Sha256Hash string `gorm:"uniqueIndex;not null" json:"-"`
	CustomHash string `gorm:"uniqueIndex;not null" json:"custom_hash"`
	MimeType   string `gorm:"not null" json:"mime_type"`
	Size       int64  `json:"size"`
	Duration   *int   `json:"duration"`
	Height     *int   `json:"height"`
	Width      *int   `json:"width"`
}

// Attachment links a backing file to a message. Many attachments may point
// at the same AppFile; the row itself is never mutated.
type Attachment struct {
	Base
	FileID    uint    `gorm:"not null" json:"file_id"`
	MessageID uint    `gorm:"not null;index" json:"message_id"`
	File      AppFile `gorm:"foreignKey:FileID" json:"-"`
}

// MessageStatus is the delivery state of one message for one member.
// Exactly one non-deleted row exists per (message, member) at creation:
// READ for the sender, SENT for everyone else.
type MessageStatus struct {
	Base
	MessageID uint   `gorm:"not null;index" json:"message_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Status    Status `gorm:"not null" json:"status"`
}
