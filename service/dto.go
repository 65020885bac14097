package service

import (
	"time"

	"chat-service/model"
)

type TokenDTO struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type UserDTO struct {
	ID         uint       `json:"id"`
	TelegramID string     `json:"telegram_id"`
	Username   *string    `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   *string    `json:"last_name"`
	PhotoURL   *string    `json:"photo_url"`
	AuthDate   *time.Time `json:"auth_date"`
}

type ChatDTO struct {
	ID          uint      `json:"id"`
	Title       *string   `json:"title"`
	IsGroup     bool      `json:"is_group"`
	CreatedDate time.Time `json:"created_date"`
}

type MemberDTO struct {
	ID         uint      `json:"id"`
	ChatID     uint      `json:"chat_id"`
	UserID     uint      `json:"user_id"`
	IsOwner    bool      `json:"is_owner"`
	JoinedDate time.Time `json:"joined_date"`
}

type AttachmentInfo struct {
	ID         *uint  `json:"id"`
	CustomHash string `json:"custom_hash"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	Duration   *int   `json:"duration"`
	Height     *int   `json:"height"`
	Width      *int   `json:"width"`
}

type MessageDTO struct {
	ID          uint             `json:"id"`
	ChatID      uint             `json:"chat_id"`
	SenderID    uint             `json:"sender_id"`
	RecipientID *uint            `json:"recipient_id"`
	ReplyToID   *uint            `json:"reply_to_id"`
	Content     *string          `json:"content"`
	Caption     *string          `json:"caption"`
	CreatedDate time.Time        `json:"created_date"`
	Status      model.Status     `json:"status"`
	Attachments []AttachmentInfo `json:"attachments"`
}

type ChatPageDTO struct {
	Messages     []MessageDTO `json:"messages"`
	NextBeforeID *uint        `json:"next_before_id"`
	HasMore      bool         `json:"has_more"`
}

func userDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		TelegramID: u.TelegramID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		PhotoURL:   u.PhotoURL,
		AuthDate:   u.AuthDate,
	}
}

func chatDTO(c *model.Chat) ChatDTO {
	return ChatDTO{
		ID:          c.ID,
		Title:       c.Title,
		IsGroup:     c.IsGroup,
		CreatedDate: c.CreatedDate,
	}
}

func memberDTO(m *model.ChatMember) MemberDTO {
	return MemberDTO{
		ID:         m.ID,
		ChatID:     m.ChatID,
		UserID:     m.UserID,
		IsOwner:    m.IsOwner,
		JoinedDate: m.JoinedDate,
	}
}

func messageDTO(m *model.Message, status model.Status, attachments []AttachmentInfo) MessageDTO {
	if attachments == nil {
		attachments = []AttachmentInfo{}
	}
	return MessageDTO{
		ID:          m.ID,
		ChatID:      m.ChatID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		ReplyToID:   m.ReplyToID,
		Content:     m.Content,
		Caption:     m.Caption,
		CreatedDate: m.CreatedDate,
		Status:      status,
		Attachments: attachments,
	}
}

func attachmentInfo(a *model.Attachment, f *model.AppFile) AttachmentInfo {
	id := a.ID
	return AttachmentInfo{
		ID:         &id,
		CustomHash: f.CustomHash,
		MimeType:   f.MimeType,
		Size:       f.Size,
		Duration:   f.Duration,
		Height:     f.Height,
		Width:      f.Width,
	}
}
