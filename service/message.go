package service

import (
	"encoding/json"
	"log"

	"chat-service/model"
	"chat-service/repository"

	"gorm.io/gorm"
)

// EventSink receives domain events after commit. Satisfied by
// *event.Broker; nil disables emission.
type EventSink interface {
	Emit(service string, action string, data []byte, logged bool) error
}

type MessageService struct {
	db          *gorm.DB
	messages    *repository.MessageRepository
	statuses    *repository.StatusRepository
	attachments *repository.AttachmentRepository
	chats       *repository.ChatRepository
	users       *repository.UserRepository
	files       *FileService
	directory   *ChatService
	notifier    Notifier
	events      EventSink
}

func NewMessageService(
	db *gorm.DB,
	messages *repository.MessageRepository,
	statuses *repository.StatusRepository,
	attachments *repository.AttachmentRepository,
	chats *repository.ChatRepository,
	users *repository.UserRepository,
	files *FileService,
	directory *ChatService,
	notifier Notifier,
	events EventSink,
) *MessageService {
	return &MessageService{
		db:          db,
		messages:    messages,
		statuses:    statuses,
		attachments: attachments,
		chats:       chats,
		users:       users,
		files:       files,
		directory:   directory,
		notifier:    notifier,
		events:      events,
	}
}

type SendMessageRequest struct {
	IsGroup      bool    `json:"is_group"`
	ChatID       *uint   `json:"chat_id"`
	ToTelegramID *string `json:"to_telegram_id"`
	Content      *string `json:"content"`
	Caption      *string `json:"caption"`
	ReplyToID    *uint   `json:"reply_to_id"`
	FileHash     *string `json:"file_hash"`
}

type ChatMessagesRequest struct {
	ChatID   uint  `json:"chat_id"`
	BeforeID *uint `json:"before_id"`
	Limit    int   `json:"limit"`
}

type UpdateMessageRequest struct {
	MessageID uint    `json:"message_id"`
	ChatID    uint    `json:"chat_id"`
	Content   *string `json:"content"`
	Caption   *string `json:"caption"`
}

type DeleteMessagesRequest struct {
	ChatID     uint   `json:"chat_id"`
	BeforeID   *uint  `json:"before_id"`
	Limit      int    `json:"limit"`
	MessageIDs []uint `json:"message_ids"`
}

// SendMessage runs the send pipeline: resolve chat, enforce membership,
// validate the reply target, persist message + attachment + one status row
// per member in a single transaction, then fan out after commit. The
// sender's own status row is created READ, everyone else's SENT.
func (s *MessageService) SendMessage(sender *model.User, req SendMessageRequest) (*MessageDTO, error) {
	chat, recipient, err := s.resolveChat(sender, req)
	if err != nil {
		return nil, err
	}

	if err := s.directory.AssertMember(chat.ID, sender.ID); err != nil {
		return nil, err
	}

	if req.ReplyToID != nil {
		replyTo, err := s.messages.FindByID(*req.ReplyToID)
		if err != nil {
			return nil, err
		}
		if replyTo == nil {
			return nil, errMessageNotFound(*req.ReplyToID)
		}
		if replyTo.ChatID != chat.ID {
			return nil, errChatConflict(chat.ID)
		}
	}

	var file *model.AppFile
	if req.FileHash != nil {
		if file, err = s.files.Resolve(*req.FileHash); err != nil {
			return nil, err
		}
	}

	msg := &model.Message{
		Content:   req.Content,
		Caption:   req.Caption,
		ChatID:    chat.ID,
		SenderID:  sender.ID,
		ReplyToID: req.ReplyToID,
	}
	if recipient != nil {
		msg.RecipientID = &recipient.ID
	}

	var attachments []AttachmentInfo
	var members []model.ChatMember
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.messages.WithTx(tx).Create(msg); err != nil {
			return err
		}

		if file != nil {
			attachment := &model.Attachment{FileID: file.ID, MessageID: msg.ID}
			if err := s.attachments.WithTx(tx).Create(attachment); err != nil {
				return err
			}
			attachments = []AttachmentInfo{attachmentInfo(attachment, file)}
		}

		var err error
		if members, err = s.directory.members.WithTx(tx).FindAllByChat(chat.ID); err != nil {
			return err
		}
		rows := make([]model.MessageStatus, 0, len(members))
		for _, member := range members {
			status := model.StatusSent
			if member.UserID == sender.ID {
				status = model.StatusRead
			}
			rows = append(rows, model.MessageStatus{
				MessageID: msg.ID,
				UserID:    member.UserID,
				Status:    status,
			})
		}
		return s.statuses.WithTx(tx).CreateAll(rows)
	})
	if err != nil {
		return nil, err
	}

	dto := messageDTO(msg, model.StatusRead, attachments)
	for _, member := range members {
		s.notifier.DeliverToUser(member.User.TelegramID, dto)
	}
	if chat.IsGroup {
		s.notifier.DeliverToChatTopic(chat.ID, dto)
	}
	s.emit("message_sent", dto)

	log.Printf("message %d sent to chat %d by user %d", msg.ID, chat.ID, sender.ID)
	return &dto, nil
}

// GetChatMessages serves one page of non-deleted history, newest first,
// each message annotated with the caller's own status. Viewing history is
// the read receipt: the caller's pending SENT rows in the chat advance to
// READ as a side effect.
func (s *MessageService) GetChatMessages(caller *model.User, req ChatMessagesRequest) (*ChatPageDTO, error) {
	chat, err := s.chats.FindByID(req.ChatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, errChatNotFound(req.ChatID)
	}

	if req.BeforeID != nil {
		cursor, err := s.messages.FindAnyByID(*req.BeforeID)
		if err != nil {
			return nil, err
		}
		if cursor != nil && cursor.Deleted {
			return nil, errCursorInvalidated(*req.BeforeID)
		}
	}

	page, err := s.buildPage(caller, chat.ID, req.BeforeID, req.Limit)
	if err != nil {
		return nil, err
	}

	s.notifier.DeliverToUser(caller.TelegramID, page)
	if _, err := s.statuses.AdvanceToRead(caller.ID, chat.ID); err != nil {
		return nil, err
	}
	return page, nil
}

// UpdateMessage edits content and/or caption; omitted fields stay as they
// are. Only the original sender may edit, and the updated payload is
// re-fanned-out to every current member.
func (s *MessageService) UpdateMessage(caller *model.User, req UpdateMessageRequest) (*MessageDTO, error) {
	msg, err := s.messages.FindByID(req.MessageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errMessageNotFound(req.MessageID)
	}
	if msg.SenderID != caller.ID {
		return nil, errConflictMessage()
	}

	chat, err := s.chats.FindByID(req.ChatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, errChatNotFound(req.ChatID)
	}
	if msg.ChatID != chat.ID {
		return nil, errChatConflict(chat.ID)
	}

	if req.Content != nil {
		msg.Content = req.Content
	}
	if req.Caption != nil {
		msg.Caption = req.Caption
	}
	if err := s.messages.Save(msg); err != nil {
		return nil, err
	}

	// Defensive default: the caller's row should exist (it is created at
	// send time), SENT stands in when it does not.
	statuses, err := s.statusesByMessage(caller.ID, chat.ID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachmentInfos(msg.ID)
	if err != nil {
		return nil, err
	}
	dto := messageDTO(msg, statusOrSent(statuses, msg.ID), attachments)

	members, err := s.directory.ListMembers(chat.ID)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		s.notifier.DeliverToUser(member.User.TelegramID, dto)
	}
	s.emit("message_updated", dto)
	return &dto, nil
}

// DeleteMessages soft-deletes the messages and their status rows. Each id
// is trashed independently; one failure does not undo the rest. A caller
// paging from one of the deleted ids gets CursorInvalidated instead of a
// page silently anchored on a dead row.
func (s *MessageService) DeleteMessages(caller *model.User, req DeleteMessagesRequest) (*ChatPageDTO, error) {
	chat, err := s.chats.FindByID(req.ChatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, errChatNotFound(req.ChatID)
	}

	s.messages.TrashList(req.MessageIDs)

	rows, err := s.statuses.FindAllByMessageIDs(req.MessageIDs)
	if err != nil {
		return nil, err
	}
	statusIDs := make([]uint, 0, len(rows))
	for _, row := range rows {
		statusIDs = append(statusIDs, row.ID)
	}
	s.statuses.TrashList(statusIDs)

	if req.BeforeID != nil {
		for _, id := range req.MessageIDs {
			if id == *req.BeforeID {
				return nil, errCursorInvalidated(*req.BeforeID)
			}
		}
	}

	page, err := s.buildPage(caller, chat.ID, req.BeforeID, req.Limit)
	if err != nil {
		return nil, err
	}
	s.notifier.DeliverToUser(caller.TelegramID, page)
	s.emit("messages_deleted", map[string]any{"chat_id": chat.ID, "message_ids": req.MessageIDs})

	log.Printf("%d message(s) trashed in chat %d by user %d", len(req.MessageIDs), chat.ID, caller.ID)
	return page, nil
}

// StatusFor returns the user's status row value for a message, defaulting
// to SENT when no row exists.
func (s *MessageService) StatusFor(userID, chatID, messageID uint) (model.Status, error) {
	statuses, err := s.statusesByMessage(userID, chatID)
	if err != nil {
		return "", err
	}
	return statusOrSent(statuses, messageID), nil
}

func (s *MessageService) resolveChat(sender *model.User, req SendMessageRequest) (*model.Chat, *model.User, error) {
	if req.IsGroup {
		if req.ChatID == nil {
			return nil, nil, errInvalidOperation("chat id is required for group messages")
		}
		chat, err := s.chats.FindByID(*req.ChatID)
		if err != nil {
			return nil, nil, err
		}
		if chat == nil {
			return nil, nil, errChatNotFound(*req.ChatID)
		}
		if !chat.IsGroup {
			return nil, nil, errNotAGroupChat(chat.ID)
		}
		return chat, nil, nil
	}

	if req.ToTelegramID == nil {
		return nil, nil, errInvalidOperation("recipient is required for direct messages")
	}
	target, err := s.users.FindByTelegramID(*req.ToTelegramID)
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		return nil, nil, errUserNotFound(*req.ToTelegramID)
	}
	chat, err := s.directory.ResolveOrCreateDirectChat(sender, target)
	if err != nil {
		return nil, nil, err
	}
	return chat, target, nil
}

// buildPage assembles one descending page. The bound is beforeID when the
// caller supplies one, otherwise just past the newest non-deleted message;
// an empty chat yields an empty page. hasMore is the conservative
// page-is-full heuristic, not an exact count.
func (s *MessageService) buildPage(caller *model.User, chatID uint, beforeID *uint, limit int) (*ChatPageDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	bound := uint(0)
	if beforeID != nil {
		bound = *beforeID
	} else {
		topID, ok, err := s.messages.TopID(chatID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &ChatPageDTO{Messages: []MessageDTO{}}, nil
		}
		bound = topID + 1
	}

	messages, err := s.messages.PageBefore(chatID, bound, limit)
	if err != nil {
		return nil, err
	}
	statuses, err := s.statusesByMessage(caller.ID, chatID)
	if err != nil {
		return nil, err
	}

	dtos := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		attachments, err := s.attachmentInfos(msg.ID)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, messageDTO(msg, statusOrSent(statuses, msg.ID), attachments))
	}

	page := &ChatPageDTO{
		Messages: dtos,
		HasMore:  len(dtos) == limit,
	}
	if len(dtos) > 0 {
		last := dtos[len(dtos)-1].ID
		page.NextBeforeID = &last
	}
	return page, nil
}

func (s *MessageService) statusesByMessage(userID, chatID uint) (map[uint]model.Status, error) {
	rows, err := s.statuses.FindAllByUserAndChat(userID, chatID)
	if err != nil {
		return nil, err
	}
	statuses := make(map[uint]model.Status, len(rows))
	for _, row := range rows {
		statuses[row.MessageID] = row.Status
	}
	return statuses, nil
}

func statusOrSent(statuses map[uint]model.Status, messageID uint) model.Status {
	if status, ok := statuses[messageID]; ok {
		return status
	}
	return model.StatusSent
}

func (s *MessageService) attachmentInfos(messageID uint) ([]AttachmentInfo, error) {
	rows, err := s.attachments.FindAllByMessage(messageID)
	if err != nil {
		return nil, err
	}
	infos := make([]AttachmentInfo, 0, len(rows))
	for i := range rows {
		infos = append(infos, attachmentInfo(&rows[i], &rows[i].File))
	}
	return infos, nil
}

func (s *MessageService) emit(action string, payload any) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal %s event: %v", action, err)
		return
	}
	if err := s.events.Emit("api", action, data, true); err != nil {
		log.Printf("emit %s event: %v", action, err)
	}
}
