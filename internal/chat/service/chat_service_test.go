package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gochat/internal/chat/service/mocks"
	"gochat/internal/common"
	"gochat/internal/dbmongo"
	"gochat/internal/memstore"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedService(t *testing.T) (ChatService, *mocks.MockConversationRepository, *mocks.MockUserDirectory) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockConversationRepository(ctrl)
	mockUsers := mocks.NewMockUserDirectory(ctrl)
	return NewChatService(mockRepo, mockUsers, common.NewPlainSealer()), mockRepo, mockUsers
}

func TestChatService_FindOrCreateConversation(t *testing.T) {
	ctx := context.Background()
	existing := &dbmongo.Conversation{ID: "c1", Participants: []string{"a", "b"}, PairKey: "a:b"}

	tests := []struct {
		name        string
		userA       string
		userB       string
		mockSetup   func(repo *mocks.MockConversationRepository)
		wantID      string
		expectError bool
		errorKind   common.ErrorKind
	}{
		{
			name:  "existing conversation in either order",
			userA: "b",
			userB: "a",
			mockSetup: func(repo *mocks.MockConversationRepository) {
				repo.EXPECT().GetConversationByPair(ctx, "a:b").Return(existing, nil)
			},
			wantID: "c1",
		},
		{
			name:  "creates on first contact",
			userA: "a",
			userB: "b",
			mockSetup: func(repo *mocks.MockConversationRepository) {
				repo.EXPECT().GetConversationByPair(ctx, "a:b").Return(nil, common.ErrRecordNotFound)
				repo.EXPECT().CreateConversation(ctx, gomock.Any()).DoAndReturn(
					func(_ context.Context, conv *dbmongo.Conversation) error {
						assert.Equal(t, []string{"a", "b"}, conv.Participants)
						conv.ID = "new"
						return nil
					})
			},
			wantID: "new",
		},
		{
			name:  "lost create race falls back to lookup",
			userA: "a",
			userB: "b",
			mockSetup: func(repo *mocks.MockConversationRepository) {
				gomock.InOrder(
					repo.EXPECT().GetConversationByPair(ctx, "a:b").Return(nil, common.ErrRecordNotFound),
					repo.EXPECT().CreateConversation(ctx, gomock.Any()).Return(common.ErrDuplicateKey),
					repo.EXPECT().GetConversationByPair(ctx, "a:b").Return(existing, nil),
				)
			},
			wantID: "c1",
		},
		{
			name:        "same user twice",
			userA:       "a",
			userB:       "a",
			mockSetup:   func(repo *mocks.MockConversationRepository) {},
			expectError: true,
			errorKind:   common.KindValidation,
		},
		{
			name:        "empty participant",
			userA:       "",
			userB:       "b",
			mockSetup:   func(repo *mocks.MockConversationRepository) {},
			expectError: true,
			errorKind:   common.KindValidation,
		},
		{
			name:  "store failure",
			userA: "a",
			userB: "b",
			mockSetup: func(repo *mocks.MockConversationRepository) {
				repo.EXPECT().GetConversationByPair(ctx, "a:b").Return(nil, errors.New("database connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newMockedService(t)
			tt.mockSetup(repo)

			conv, err := svc.FindOrCreateConversation(ctx, tt.userA, tt.userB)
			if tt.expectError {
				assert.Error(t, err)
				if tt.errorKind != "" {
					assert.True(t, common.IsKind(err, tt.errorKind))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, conv.ID)
		})
	}
}

func TestChatService_AppendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown conversation", func(t *testing.T) {
		svc, repo, _ := newMockedService(t)
		repo.EXPECT().GetConversation(ctx, "nope").Return(nil, common.ErrRecordNotFound)

		_, err := svc.AppendMessage(ctx, "nope", "a", "hi")
		assert.True(t, common.IsKind(err, common.KindNotFound))
	})

	t.Run("sender outside conversation", func(t *testing.T) {
		svc, repo, _ := newMockedService(t)
		repo.EXPECT().GetConversation(ctx, "c1").Return(&dbmongo.Conversation{ID: "c1", Participants: []string{"a", "b"}}, nil)

		_, err := svc.AppendMessage(ctx, "c1", "z", "hi")
		assert.True(t, common.IsKind(err, common.KindValidation))
	})

	t.Run("empty text", func(t *testing.T) {
		svc, repo, _ := newMockedService(t)
		repo.EXPECT().GetConversation(ctx, "c1").Return(&dbmongo.Conversation{ID: "c1", Participants: []string{"a", "b"}}, nil)

		_, err := svc.AppendMessage(ctx, "c1", "a", "   ")
		assert.True(t, common.IsKind(err, common.KindValidation))
	})

	t.Run("timestamp is strictly after the last message", func(t *testing.T) {
		svc, repo, _ := newMockedService(t)
		future := time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)
		repo.EXPECT().GetConversation(ctx, "c1").Return(&dbmongo.Conversation{
			ID:           "c1",
			Participants: []string{"a", "b"},
			Messages:     []dbmongo.Message{{SenderID: "b", Text: "from the future", Timestamp: future}},
		}, nil)
		repo.EXPECT().AppendMessage(ctx, "c1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, msg dbmongo.Message) error {
				assert.True(t, msg.Timestamp.After(future))
				assert.Equal(t, dbmongo.MessageDelivered, msg.Status)
				return nil
			})

		msg, err := svc.AppendMessage(ctx, "c1", "a", "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", msg.Text)
	})

	t.Run("stale append re-reads and retries", func(t *testing.T) {
		svc, repo, _ := newMockedService(t)
		base := time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)
		racer := dbmongo.Message{SenderID: "b", Text: "won the race", Timestamp: base}
		gomock.InOrder(
			repo.EXPECT().GetConversation(ctx, "c1").
				Return(&dbmongo.Conversation{ID: "c1", Participants: []string{"a", "b"}}, nil),
			repo.EXPECT().AppendMessage(ctx, "c1", gomock.Any()).Return(common.ErrStaleWrite),
			repo.EXPECT().GetConversation(ctx, "c1").
				Return(&dbmongo.Conversation{ID: "c1", Participants: []string{"a", "b"}, Messages: []dbmongo.Message{racer}}, nil),
			repo.EXPECT().AppendMessage(ctx, "c1", gomock.Any()).DoAndReturn(
				func(_ context.Context, _ string, msg dbmongo.Message) error {
					assert.True(t, msg.Timestamp.After(base))
					return nil
				}),
		)

		_, err := svc.AppendMessage(ctx, "c1", "a", "hello")
		require.NoError(t, err)
	})

	t.Run("gives up after repeated stale writes", func(t *testing.T) {
		svc, repo, _ := newMockedService(t)
		repo.EXPECT().GetConversation(ctx, "c1").
			Return(&dbmongo.Conversation{ID: "c1", Participants: []string{"a", "b"}}, nil).
			Times(maxAppendAttempts)
		repo.EXPECT().AppendMessage(ctx, "c1", gomock.Any()).Return(common.ErrStaleWrite).Times(maxAppendAttempts)

		_, err := svc.AppendMessage(ctx, "c1", "a", "hello")
		assert.ErrorIs(t, err, common.ErrStaleWrite)
	})
}

func TestChatService_SendMessage(t *testing.T) {
	ctx := context.Background()
	alice := &dbmongo.User{ID: "a", FriendIDs: []string{"b"}}
	bob := &dbmongo.User{ID: "b", FriendIDs: []string{"a"}}
	carol := &dbmongo.User{ID: "c"}

	t.Run("not friends", func(t *testing.T) {
		svc, _, users := newMockedService(t)
		users.EXPECT().GetUserByID(ctx, "c").Return(carol, nil)
		users.EXPECT().GetUserByID(ctx, "a").Return(alice, nil)

		_, err := svc.SendMessage(ctx, SendInput{SenderID: "c", ReceiverID: "a", Text: "hi"})
		assert.Equal(t, "Users must be friends to exchange messages", common.Reason(err))
		assert.True(t, common.IsKind(err, common.KindAuthorization))
	})

	t.Run("unknown receiver", func(t *testing.T) {
		svc, _, users := newMockedService(t)
		users.EXPECT().GetUserByID(ctx, "a").Return(alice, nil)
		users.EXPECT().GetUserByID(ctx, "ghost").Return(nil, common.ErrRecordNotFound)

		_, err := svc.SendMessage(ctx, SendInput{SenderID: "a", ReceiverID: "ghost", Text: "hi"})
		assert.True(t, common.IsKind(err, common.KindNotFound))
	})

	t.Run("initial send only opens the conversation", func(t *testing.T) {
		svc, repo, users := newMockedService(t)
		users.EXPECT().GetUserByID(ctx, "a").Return(alice, nil)
		users.EXPECT().GetUserByID(ctx, "b").Return(bob, nil)
		repo.EXPECT().GetConversationByPair(ctx, "a:b").
			Return(&dbmongo.Conversation{ID: "c1", Participants: []string{"a", "b"}}, nil)

		res, err := svc.SendMessage(ctx, SendInput{SenderID: "a", ReceiverID: "b", IsInitial: true})
		require.NoError(t, err)
		assert.Equal(t, "c1", res.ConversationID)
		assert.Nil(t, res.Message)
	})
}

func newStoreBacked(t *testing.T, sealer common.TextSealer) (ChatService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.Users.CreateUser(ctx, &dbmongo.User{ID: "U1", Username: "u1", FriendIDs: []string{"U2"}}))
	require.NoError(t, store.Users.CreateUser(ctx, &dbmongo.User{ID: "U2", Username: "u2", FriendIDs: []string{"U1"}}))
	return NewChatService(store.Conversations, store.Users, sealer), store
}

func TestScenario_HiThere(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStoreBacked(t, common.NewPlainSealer())

	first, err := svc.SendMessage(ctx, SendInput{SenderID: "U1", ReceiverID: "U2", Text: "hi"})
	require.NoError(t, err)
	second, err := svc.SendMessage(ctx, SendInput{SenderID: "U2", ReceiverID: "U1", Text: "there"})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	convs, err := svc.ListConversationsForUser(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	require.Len(t, convs[0].Messages, 2)
	assert.Equal(t, "hi", convs[0].Messages[0].Text)
	assert.Equal(t, "there", convs[0].Messages[1].Text)
	assert.False(t, convs[0].Messages[1].Timestamp.Before(convs[0].Messages[0].Timestamp))

	delta, err := svc.MessagesSince(ctx, first.ConversationID, first.Message.Timestamp.Add(-time.Nanosecond))
	require.NoError(t, err)
	assert.Len(t, delta, 2)
}

func TestMessagesSince_CursorOnLastSeenTimestamp(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStoreBacked(t, common.NewPlainSealer())
	frozen := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.(*chatService).now = func() time.Time { return frozen }

	first, err := svc.SendMessage(ctx, SendInput{SenderID: "U1", ReceiverID: "U2", Text: "first"})
	require.NoError(t, err)

	seen, err := svc.MessagesSince(ctx, first.ConversationID, time.Time{})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	cursor := seen[0].Timestamp

	_, err = svc.SendMessage(ctx, SendInput{SenderID: "U2", ReceiverID: "U1", Text: "second"})
	require.NoError(t, err)

	delta, err := svc.MessagesSince(ctx, first.ConversationID, cursor)
	require.NoError(t, err)
	require.Len(t, delta, 1)
	assert.Equal(t, "second", delta[0].Text)
	assert.True(t, delta[0].Timestamp.After(cursor))
}

func TestConcurrentAppend_TimestampsStrictlyIncrease(t *testing.T) {
	ctx := context.Background()
	svc, _ := newStoreBacked(t, common.NewPlainSealer())
	conv, err := svc.FindOrCreateConversation(ctx, "U1", "U2")
	require.NoError(t, err)

	const senders = 16
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from := "U1"
			if i%2 == 1 {
				from = "U2"
			}
			_, err := svc.AppendMessage(ctx, conv.ID, from, "ping")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := svc.MessagesSince(ctx, conv.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, senders)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}
}

func TestConcurrentFindOrCreate_Converges(t *testing.T) {
	ctx := context.Background()
	svc, store := newStoreBacked(t, common.NewPlainSealer())

	ids := make([]string, 32)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "U1", "U2"
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := svc.FindOrCreateConversation(ctx, a, b)
			if assert.NoError(t, err) {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	convs, err := store.Conversations.ListConversationsForUser(ctx, "U2")
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestChatService_SealsTextAtRest(t *testing.T) {
	ctx := context.Background()
	sealer, err := common.NewTextSealer("AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8=")
	require.NoError(t, err)
	svc, store := newStoreBacked(t, sealer)

	res, err := svc.SendMessage(ctx, SendInput{SenderID: "U1", ReceiverID: "U2", Text: "secret"})
	require.NoError(t, err)

	raw, err := store.Conversations.GetConversation(ctx, res.ConversationID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret", raw.Messages[0].Text)

	conv, err := svc.GetConversation(ctx, res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "secret", conv.Messages[0].Text)
}
