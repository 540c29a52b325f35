// Package gateway aggregates the read paths polled by clients. Nothing here
// writes; every call can be repeated freely.
package gateway

import (
	"context"
	"time"

	"gochat/internal/common"
	"gochat/internal/dbmongo"
	"gochat/internal/friend"
	"gochat/internal/user"

	"golang.org/x/sync/errgroup"
)

type FriendsReader interface {
	ListFriends(ctx context.Context, userID string) ([]*dbmongo.User, error)
}

type PendingReader interface {
	ListPending(ctx context.Context, userID string) ([]friend.PendingRequest, error)
}

type ConversationReader interface {
	GetConversation(ctx context.Context, conversationID string) (*dbmongo.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]*dbmongo.Conversation, error)
	MessagesSince(ctx context.Context, conversationID string, since time.Time) ([]dbmongo.Message, error)
}

type GroupReader interface {
	GetGroup(ctx context.Context, groupID string) (*dbmongo.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]user.Profile, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]*dbmongo.Group, error)
	GroupMessagesSince(ctx context.Context, groupID string, since time.Time) ([]dbmongo.GroupMessage, error)
}

// Snapshot is everything a client needs to refresh its home screens.
type Snapshot struct {
	UserID        string                  `json:"userId"`
	Friends       []user.Profile          `json:"friends"`
	Pending       []friend.PendingRequest `json:"pending"`
	Conversations []*dbmongo.Conversation `json:"conversations"`
	Groups        []*dbmongo.Group        `json:"groups"`
	GeneratedAt   time.Time               `json:"generatedAt"`
}

type Service struct {
	friends       FriendsReader
	pending       PendingReader
	conversations ConversationReader
	groups        GroupReader
}

func NewService(friends FriendsReader, pending PendingReader, conversations ConversationReader, groups GroupReader) *Service {
	return &Service{
		friends:       friends,
		pending:       pending,
		conversations: conversations,
		groups:        groups,
	}
}

func (s *Service) Friends(ctx context.Context, userID string) ([]user.Profile, error) {
	users, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToProfiles(users), nil
}

func (s *Service) PendingRequests(ctx context.Context, userID string) ([]friend.PendingRequest, error) {
	return s.pending.ListPending(ctx, userID)
}

func (s *Service) ConversationsForUser(ctx context.Context, userID string) ([]*dbmongo.Conversation, error) {
	return s.conversations.ListConversationsForUser(ctx, userID)
}

// MessagesSince returns the conversation's messages after since, for one of
// its participants.
func (s *Service) MessagesSince(ctx context.Context, viewerID, conversationID string, since time.Time) ([]dbmongo.Message, error) {
	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !common.ContainsID(conv.Participants, viewerID) {
		return nil, common.AuthorizationError("Caller is not a participant in this conversation")
	}
	return s.conversations.MessagesSince(ctx, conversationID, since)
}

func (s *Service) GroupsForUser(ctx context.Context, userID string) ([]*dbmongo.Group, error) {
	return s.groups.ListGroupsForUser(ctx, userID)
}

// Group, GroupMessagesSince and Members are visible to group members only.
func (s *Service) Group(ctx context.Context, viewerID, groupID string) (*dbmongo.Group, error) {
	g, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !common.ContainsID(g.MemberIDs, viewerID) {
		return nil, common.AuthorizationError("Caller is not a member of this group")
	}
	return g, nil
}

func (s *Service) GroupMessagesSince(ctx context.Context, viewerID, groupID string, since time.Time) ([]dbmongo.GroupMessage, error) {
	if _, err := s.Group(ctx, viewerID, groupID); err != nil {
		return nil, err
	}
	return s.groups.GroupMessagesSince(ctx, groupID, since)
}

func (s *Service) Members(ctx context.Context, viewerID, groupID string) ([]user.Profile, error) {
	if _, err := s.Group(ctx, viewerID, groupID); err != nil {
		return nil, err
	}
	return s.groups.ListMembers(ctx, groupID)
}

// Snapshot runs the four per-user reads concurrently. The first failure
// cancels the rest.
func (s *Service) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	snap := &Snapshot{UserID: userID}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		friends, err := s.Friends(ctx, userID)
		snap.Friends = friends
		return err
	})
	g.Go(func() error {
		pending, err := s.PendingRequests(ctx, userID)
		snap.Pending = pending
		return err
	})
	g.Go(func() error {
		convs, err := s.ConversationsForUser(ctx, userID)
		snap.Conversations = convs
		return err
	})
	g.Go(func() error {
		groups, err := s.GroupsForUser(ctx, userID)
		snap.Groups = groups
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.GeneratedAt = time.Now().UTC()
	return snap, nil
}
