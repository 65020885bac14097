package service

import (
	"sync"
	"testing"
	"time"

	"chat-service/model"
	"chat-service/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testBotToken = "12345:test-bot-token"

// fakeNotifier records fan-out instead of pushing to sockets.
type fakeNotifier struct {
	mu     sync.Mutex
	users  map[string][]any
	topics map[uint][]any
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		users:  make(map[string][]any),
		topics: make(map[uint][]any),
	}
}

func (f *fakeNotifier) DeliverToUser(telegramID string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[telegramID] = append(f.users[telegramID], payload)
}

func (f *fakeNotifier) DeliverToChatTopic(chatID uint, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics[chatID] = append(f.topics[chatID], payload)
}

func (f *fakeNotifier) userCount(telegramID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users[telegramID])
}

func (f *fakeNotifier) topicCount(chatID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.topics[chatID])
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every goroutine on the same in-memory DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Chat{},
		&model.ChatMember{},
		&model.Message{},
		&model.MessageStatus{},
		&model.AppFile{},
		&model.Attachment{},
	))
	return db
}

type fixture struct {
	db       *gorm.DB
	notifier *fakeNotifier

	userRepo   *repository.UserRepository
	chatRepo   *repository.ChatRepository
	memberRepo *repository.ChatMemberRepository
	msgRepo    *repository.MessageRepository
	statusRepo *repository.StatusRepository

	users    *UserService
	chats    *ChatService
	files    *FileService
	messages *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	notifier := newFakeNotifier()

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	memberRepo := repository.NewChatMemberRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	fileRepo := repository.NewFileRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	users := NewUserService(userRepo, notifier, nil, testBotToken)
	chats := NewChatService(db, chatRepo, memberRepo, userRepo, notifier, nil)
	files := NewFileService(fileRepo, t.TempDir())
	messages := NewMessageService(
		db, msgRepo, statusRepo, attachmentRepo, chatRepo, userRepo,
		files, chats, notifier, nil,
	)

	return &fixture{
		db:         db,
		notifier:   notifier,
		userRepo:   userRepo,
		chatRepo:   chatRepo,
		memberRepo: memberRepo,
		msgRepo:    msgRepo,
		statusRepo: statusRepo,
		users:      users,
		chats:      chats,
		files:      files,
		messages:   messages,
	}
}

func (f *fixture) user(t *testing.T, telegramID, username string) *model.User {
	t.Helper()
	authDate := time.Now()
	user := &model.User{
		TelegramID: telegramID,
		Username:   &username,
		FirstName:  username,
		AuthDate:   &authDate,
		Role:       "user",
	}
	require.NoError(t, f.userRepo.Create(user))
	return user
}

// directChat opens the canonical direct chat between two users.
func (f *fixture) directChat(t *testing.T, a, b *model.User) *model.Chat {
	t.Helper()
	chat, err := f.chats.ResolveOrCreateDirectChat(a, b)
	require.NoError(t, err)
	return chat
}

// groupChat creates a group owned by the first user with the rest added.
func (f *fixture) groupChat(t *testing.T, title string, owner *model.User, members ...*model.User) *model.Chat {
	t.Helper()
	dto, err := f.chats.CreateGroupChat(owner, title)
	require.NoError(t, err)
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	if len(ids) > 0 {
		_, err = f.chats.AddMembers(dto.ID, owner, ids)
		require.NoError(t, err)
	}
	chat, err := f.chatRepo.FindByID(dto.ID)
	require.NoError(t, err)
	return chat
}

// send pushes a direct message and returns its DTO.
func (f *fixture) send(t *testing.T, from, to *model.User, content string) *MessageDTO {
	t.Helper()
	dto, err := f.messages.SendMessage(from, SendMessageRequest{
		ToTelegramID: &to.TelegramID,
		Content:      &content,
	})
	require.NoError(t, err)
	return dto
}

func (f *fixture) statusOf(t *testing.T, messageID, userID uint) model.Status {
	t.Helper()
	var row model.MessageStatus
	err := f.db.
		Where("message_id = ? AND user_id = ? AND deleted = ?", messageID, userID, false).
		First(&row).Error
	require.NoError(t, err)
	return row.Status
}

func requireCode(t *testing.T, err error, code Code) {
	t.Helper()
	require.Error(t, err)
	svcErr, ok := AsError(err)
	require.True(t, ok, "expected a typed service error, got %v", err)
	require.Equal(t, code, svcErr.Code)
}
