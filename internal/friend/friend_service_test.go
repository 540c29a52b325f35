package friend

import (
	"context"
	"errors"
	"testing"

	"gochat/internal/common"
	"gochat/internal/dbmongo"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	svc      FriendService
	requests *MockFriendRepository
	users    *MockUserLedger
	tokens   *RequestTokens
}

// inlineTx runs the unit of work directly on the caller's context.
type inlineTx struct{}

func (inlineTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newFixture(t *testing.T) *serviceFixture {
	ctrl := gomock.NewController(t)
	f := &serviceFixture{
		requests: NewMockFriendRepository(ctrl),
		users:    NewMockUserLedger(ctrl),
		tokens:   NewRequestTokens("test-secret"),
	}
	f.svc = NewFriendService(f.requests, f.users, inlineTx{}, f.tokens)
	return f
}

func TestFriendService_SendRequest(t *testing.T) {
	ctx := context.Background()
	alice := &dbmongo.User{ID: "u1", Username: "alice"}
	bob := &dbmongo.User{ID: "u2", Username: "bob"}
	friendOfBob := &dbmongo.User{ID: "u1", Username: "alice", FriendIDs: []string{"u2"}}

	tests := []struct {
		name       string
		sender     string
		receiver   string
		setup      func(f *serviceFixture)
		wantKind   common.ErrorKind
		wantReason string
	}{
		{
			name:     "success",
			sender:   "u1",
			receiver: "u2",
			setup: func(f *serviceFixture) {
				f.users.EXPECT().GetUserByID(ctx, "u1").Return(alice, nil)
				f.users.EXPECT().GetUserByID(ctx, "u2").Return(bob, nil)
				f.requests.EXPECT().FindPendingBetween(ctx, "u1", "u2").Return(nil, common.ErrRecordNotFound)
				f.requests.EXPECT().CreateRequest(ctx, gomock.Any()).DoAndReturn(
					func(_ context.Context, req *dbmongo.FriendRequest) error {
						assert.Equal(t, dbmongo.RequestPending, req.Status)
						assert.Equal(t, "u1:u2", req.PairKey)
						assert.NotEmpty(t, req.RequestToken)
						return nil
					})
			},
		},
		{
			name:       "self request",
			sender:     "u1",
			receiver:   "u1",
			setup:      func(f *serviceFixture) {},
			wantKind:   common.KindConflict,
			wantReason: "Cannot send friend request to yourself",
		},
		{
			name:     "missing ids",
			sender:   "",
			receiver: "u2",
			setup:    func(f *serviceFixture) {},
			wantKind: common.KindValidation,
		},
		{
			name:     "unknown receiver",
			sender:   "u1",
			receiver: "ghost",
			setup: func(f *serviceFixture) {
				f.users.EXPECT().GetUserByID(ctx, "u1").Return(alice, nil)
				f.users.EXPECT().GetUserByID(ctx, "ghost").Return(nil, common.ErrRecordNotFound)
			},
			wantKind:   common.KindNotFound,
			wantReason: "User not found",
		},
		{
			name:     "already friends",
			sender:   "u1",
			receiver: "u2",
			setup: func(f *serviceFixture) {
				f.users.EXPECT().GetUserByID(ctx, "u1").Return(friendOfBob, nil)
				f.users.EXPECT().GetUserByID(ctx, "u2").Return(bob, nil)
			},
			wantKind:   common.KindConflict,
			wantReason: "Users are already friends",
		},
		{
			name:     "friendship recorded only on the receiver",
			sender:   "u1",
			receiver: "u2",
			setup: func(f *serviceFixture) {
				f.users.EXPECT().GetUserByID(ctx, "u1").Return(alice, nil)
				f.users.EXPECT().GetUserByID(ctx, "u2").Return(&dbmongo.User{ID: "u2", Username: "bob", FriendIDs: []string{"u1"}}, nil)
			},
			wantKind:   common.KindConflict,
			wantReason: "Users are already friends",
		},
		{
			name:     "pending in reverse direction",
			sender:   "u1",
			receiver: "u2",
			setup: func(f *serviceFixture) {
				f.users.EXPECT().GetUserByID(ctx, "u1").Return(alice, nil)
				f.users.EXPECT().GetUserByID(ctx, "u2").Return(bob, nil)
				f.requests.EXPECT().FindPendingBetween(ctx, "u1", "u2").
					Return(&dbmongo.FriendRequest{SenderID: "u2", ReceiverID: "u1"}, nil)
			},
			wantKind:   common.KindConflict,
			wantReason: "Friend request already sent",
		},
		{
			name:     "lost insert race",
			sender:   "u1",
			receiver: "u2",
			setup: func(f *serviceFixture) {
				f.users.EXPECT().GetUserByID(ctx, "u1").Return(alice, nil)
				f.users.EXPECT().GetUserByID(ctx, "u2").Return(bob, nil)
				f.requests.EXPECT().FindPendingBetween(ctx, "u1", "u2").Return(nil, common.ErrRecordNotFound)
				f.requests.EXPECT().CreateRequest(ctx, gomock.Any()).Return(common.ErrDuplicateKey)
			},
			wantKind:   common.KindConflict,
			wantReason: "Friend request already sent",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			tc.setup(f)

			req, err := f.svc.SendRequest(ctx, tc.sender, tc.receiver)
			if tc.wantKind == "" {
				require.NoError(t, err)
				require.NotNil(t, req)
				return
			}
			require.Error(t, err)
			assert.True(t, common.IsKind(err, tc.wantKind), "got %v", err)
			if tc.wantReason != "" {
				assert.Equal(t, tc.wantReason, common.Reason(err))
			}
		})
	}
}

func TestFriendService_AcceptRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("receiver accepts", func(t *testing.T) {
		f := newFixture(t)
		tok, _ := f.tokens.Generate("u1", "u2")
		pending := &dbmongo.FriendRequest{RequestToken: tok, SenderID: "u1", ReceiverID: "u2", Status: dbmongo.RequestPending}
		accepted := *pending
		accepted.Status = dbmongo.RequestAccepted

		gomock.InOrder(
			f.requests.EXPECT().GetPendingByToken(ctx, tok).Return(pending, nil),
			f.requests.EXPECT().ResolvePending(ctx, tok, dbmongo.RequestAccepted, gomock.Any()).Return(&accepted, nil),
		)
		f.users.EXPECT().AddFriend(ctx, "u1", "u2").Return(nil)
		f.users.EXPECT().AddFriend(ctx, "u2", "u1").Return(nil)

		got, err := f.svc.AcceptRequest(ctx, tok, "u2")
		require.NoError(t, err)
		assert.Equal(t, dbmongo.RequestAccepted, got.Status)
	})

	t.Run("sender cannot accept", func(t *testing.T) {
		f := newFixture(t)
		tok, _ := f.tokens.Generate("u1", "u2")
		f.requests.EXPECT().GetPendingByToken(ctx, tok).
			Return(&dbmongo.FriendRequest{RequestToken: tok, SenderID: "u1", ReceiverID: "u2", Status: dbmongo.RequestPending}, nil)

		_, err := f.svc.AcceptRequest(ctx, tok, "u1")
		assert.True(t, common.IsKind(err, common.KindAuthorization))
	})

	t.Run("forged token", func(t *testing.T) {
		f := newFixture(t)
		forged, _ := NewRequestTokens("someone-else").Generate("u1", "u2")

		_, err := f.svc.AcceptRequest(ctx, forged, "u2")
		assert.True(t, common.IsKind(err, common.KindNotFound))
	})

	t.Run("already resolved", func(t *testing.T) {
		f := newFixture(t)
		tok, _ := f.tokens.Generate("u1", "u2")
		f.requests.EXPECT().GetPendingByToken(ctx, tok).Return(nil, common.ErrRecordNotFound)

		_, err := f.svc.AcceptRequest(ctx, tok, "u2")
		assert.Equal(t, "Friend request not found", common.Reason(err))
	})

	t.Run("lost the transition race", func(t *testing.T) {
		f := newFixture(t)
		tok, _ := f.tokens.Generate("u1", "u2")
		f.requests.EXPECT().GetPendingByToken(ctx, tok).
			Return(&dbmongo.FriendRequest{RequestToken: tok, SenderID: "u1", ReceiverID: "u2", Status: dbmongo.RequestPending}, nil)
		f.requests.EXPECT().ResolvePending(ctx, tok, dbmongo.RequestAccepted, gomock.Any()).Return(nil, common.ErrRecordNotFound)

		_, err := f.svc.AcceptRequest(ctx, tok, "u2")
		assert.True(t, common.IsKind(err, common.KindNotFound))
	})

	t.Run("friend write fails", func(t *testing.T) {
		f := newFixture(t)
		tok, _ := f.tokens.Generate("u1", "u2")
		pending := &dbmongo.FriendRequest{RequestToken: tok, SenderID: "u1", ReceiverID: "u2", Status: dbmongo.RequestPending}
		f.requests.EXPECT().GetPendingByToken(ctx, tok).Return(pending, nil)
		f.requests.EXPECT().ResolvePending(ctx, tok, dbmongo.RequestAccepted, gomock.Any()).Return(pending, nil)
		f.users.EXPECT().AddFriend(ctx, "u1", "u2").Return(errors.New("write failed"))

		_, err := f.svc.AcceptRequest(ctx, tok, "u2")
		assert.EqualError(t, err, "write failed")
	})
}

func TestFriendService_RejectRequest(t *testing.T) {
	ctx := context.Background()

	for _, actor := range []string{"u1", "u2"} {
		t.Run("party "+actor+" rejects", func(t *testing.T) {
			f := newFixture(t)
			tok, _ := f.tokens.Generate("u1", "u2")
			pending := &dbmongo.FriendRequest{RequestToken: tok, SenderID: "u1", ReceiverID: "u2", Status: dbmongo.RequestPending}
			rejected := *pending
			rejected.Status = dbmongo.RequestRejected

			f.requests.EXPECT().GetPendingByToken(ctx, tok).Return(pending, nil)
			f.requests.EXPECT().ResolvePending(ctx, tok, dbmongo.RequestRejected, gomock.Any()).Return(&rejected, nil)

			got, err := f.svc.RejectRequest(ctx, tok, actor)
			require.NoError(t, err)
			assert.Equal(t, dbmongo.RequestRejected, got.Status)
		})
	}

	t.Run("outsider", func(t *testing.T) {
		f := newFixture(t)
		tok, _ := f.tokens.Generate("u1", "u2")
		f.requests.EXPECT().GetPendingByToken(ctx, tok).
			Return(&dbmongo.FriendRequest{RequestToken: tok, SenderID: "u1", ReceiverID: "u2", Status: dbmongo.RequestPending}, nil)

		_, err := f.svc.RejectRequest(ctx, tok, "u3")
		assert.True(t, common.IsKind(err, common.KindAuthorization))
	})
}

func TestFriendService_ListPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.users.EXPECT().GetUserByID(ctx, "u1").Return(&dbmongo.User{ID: "u1"}, nil)
	f.requests.EXPECT().ListPendingForUser(ctx, "u1").Return([]*dbmongo.FriendRequest{
		{RequestToken: "t-sent", SenderID: "u1", ReceiverID: "u2"},
		{RequestToken: "t-recv", SenderID: "u3", ReceiverID: "u1"},
		{RequestToken: "t-orphan", SenderID: "u9", ReceiverID: "u1"},
	}, nil)
	f.users.EXPECT().GetUsersByIDs(ctx, []string{"u2", "u3", "u9"}).Return([]*dbmongo.User{
		{ID: "u2", Username: "bob"},
		{ID: "u3", Username: "carol"},
	}, nil)

	got, err := f.svc.ListPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, DirectionSent, got[0].Type)
	assert.Equal(t, "bob", got[0].OtherUser.Username)
	assert.Equal(t, DirectionReceived, got[1].Type)
	assert.Equal(t, "carol", got[1].OtherUser.Username)
}
