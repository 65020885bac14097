package service

import (
	"sync"
	"testing"

	"chat-service/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrCreateDirectChatReusesExisting(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")
	bob := f.user(t, "1002", "bob")

	first, err := f.chats.ResolveOrCreateDirectChat(alice, bob)
	require.NoError(t, err)
	require.False(t, first.IsGroup)

	// Same pair in either order resolves to the same chat.
	second, err := f.chats.ResolveOrCreateDirectChat(alice, bob)
	require.NoError(t, err)
	reversed, err := f.chats.ResolveOrCreateDirectChat(bob, alice)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, reversed.ID)

	var count int64
	require.NoError(t, f.db.Model(&model.Chat{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResolveOrCreateDirectChatCreatesBothMemberships(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")
	bob := f.user(t, "1002", "bob")

	chat := f.directChat(t, alice, bob)

	members, err := f.chats.ListMembers(chat.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	byUser := map[uint]model.ChatMember{}
	for _, m := range members {
		byUser[m.UserID] = m
	}
	assert.True(t, byUser[alice.ID].IsOwner)
	assert.False(t, byUser[bob.ID].IsOwner)
}

func TestResolveOrCreateDirectChatWithSelf(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")

	_, err := f.chats.ResolveOrCreateDirectChat(alice, alice)
	requireCode(t, err, CodeInvalidOperation)
}

func TestResolveOrCreateDirectChatConcurrent(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")
	bob := f.user(t, "1002", "bob")

	const workers = 8
	results := make([]uint, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chat, err := f.chats.ResolveOrCreateDirectChat(alice, bob)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = chat.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}

	var count int64
	require.NoError(t, f.db.Model(&model.Chat{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "racing creators must converge on one chat")
}

func TestCreateGroupChatRequiresTitle(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")

	_, err := f.chats.CreateGroupChat(alice, "   ")
	requireCode(t, err, CodeInvalidOperation)
}

func TestCreateGroupChatOwnerMembership(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")

	dto, err := f.chats.CreateGroupChat(alice, "team")
	require.NoError(t, err)
	require.True(t, dto.IsGroup)

	members, err := f.chats.ListMembers(dto.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.True(t, members[0].IsOwner)
	assert.Equal(t, alice.ID, members[0].UserID)
	assert.Equal(t, 1, f.notifier.userCount(alice.TelegramID))
}

func TestAddMembersOnlyOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")
	bob := f.user(t, "1002", "bob")
	carol := f.user(t, "1003", "carol")
	chat := f.groupChat(t, "team", alice, bob)

	_, err := f.chats.AddMembers(chat.ID, bob, []uint{carol.ID})
	requireCode(t, err, CodeNotOwner)
}

func TestAddMembersUnknownIDs(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")
	bob := f.user(t, "1002", "bob")
	chat := f.groupChat(t, "team", alice)

	_, err := f.chats.AddMembers(chat.ID, alice, []uint{bob.ID, 777, 888})
	requireCode(t, err, CodeUnknownMembers)

	svcErr, _ := AsError(err)
	assert.ElementsMatch(t, []uint{777, 888}, svcErr.Missing)

	// Nothing was added when part of the list is unknown.
	members, listErr := f.chats.ListMembers(chat.ID)
	require.NoError(t, listErr)
	assert.Len(t, members, 1)
}

func TestAddMembersSkipsRequesterAndExisting(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")
	bob := f.user(t, "1002", "bob")
	carol := f.user(t, "1003", "carol")
	chat := f.groupChat(t, "team", alice, bob)

	added, err := f.chats.AddMembers(chat.ID, alice, []uint{alice.ID, bob.ID, carol.ID})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, carol.ID, added[0].UserID)

	members, err := f.chats.ListMembers(chat.ID)
	require.NoError(t, err)
	assert.Len(t, members, 3)
	assert.Equal(t, 1, f.notifier.userCount(carol.TelegramID))
}

func TestAddMembersChatNotFound(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")

	_, err := f.chats.AddMembers(999, alice, []uint{alice.ID})
	requireCode(t, err, CodeChatNotFound)
}

func TestGetChatsSummaries(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")
	bob := f.user(t, "1002", "bob")

	f.send(t, alice, bob, "hi")
	f.send(t, alice, bob, "still there?")

	summaries, err := f.chats.GetChats(bob, 0, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 2, summaries[0].NewMessages)
	assert.NotNil(t, summaries[0].LastMessageTime)

	// Reading the chat drains the unread counter.
	_, err = f.messages.GetChatMessages(bob, ChatMessagesRequest{ChatID: summaries[0].ChatID})
	require.NoError(t, err)

	summaries, err = f.chats.GetChats(bob, 0, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 0, summaries[0].NewMessages)
}

func TestAssertMember(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")
	bob := f.user(t, "1002", "bob")
	outsider := f.user(t, "1003", "carol")
	chat := f.directChat(t, alice, bob)

	require.NoError(t, f.chats.AssertMember(chat.ID, alice.ID))
	requireCode(t, f.chats.AssertMember(chat.ID, outsider.ID), CodeNotChatMember)
}
