package group

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gochat/internal/common"
	"gochat/internal/dbmongo"
	"gochat/internal/logger"
	"gochat/internal/metrics"
	"gochat/internal/user"

	"github.com/microcosm-cc/bluemonday"
)

// UserDirectory resolves group creators, members and senders.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*dbmongo.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]*dbmongo.User, error)
}

type CreateInput struct {
	Name      string   `json:"name"`
	CreatorID string   `json:"creatorId"`
	MemberIDs []string `json:"memberIds"`
}

type GroupService interface {
	CreateGroup(ctx context.Context, in CreateInput) (*dbmongo.Group, error)
	AddMembers(ctx context.Context, groupID string, memberIDs []string, requesterID string) (*dbmongo.Group, error)
	SendGroupMessage(ctx context.Context, groupID, senderID, text string) (*dbmongo.GroupMessage, error)
	GetGroup(ctx context.Context, groupID string) (*dbmongo.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]user.Profile, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]*dbmongo.Group, error)
	GroupMessagesSince(ctx context.Context, groupID string, since time.Time) ([]dbmongo.GroupMessage, error)
}

type groupService struct {
	groups    GroupRepository
	users     UserDirectory
	sealer    common.TextSealer
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewGroupService(groups GroupRepository, users UserDirectory, sealer common.TextSealer) GroupService {
	return &groupService{
		groups:    groups,
		users:     users,
		sealer:    sealer,
		sanitizer: bluemonday.StrictPolicy(),
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *groupService) CreateGroup(ctx context.Context, in CreateInput) (*dbmongo.Group, error) {
	name := strings.TrimSpace(s.sanitizer.Sanitize(in.Name))
	if name == "" {
		return nil, common.ValidationError("Group name is required")
	}
	if in.CreatorID == "" {
		return nil, common.ValidationError("creatorId is required")
	}

	members := common.UniqueIDs(append([]string{in.CreatorID}, in.MemberIDs...)...)
	if len(members) < 2 {
		return nil, common.ValidationError("A group needs at least 2 members")
	}

	if _, err := s.users.GetUserByID(ctx, in.CreatorID); err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("Creator not found")
		}
		return nil, err
	}
	if err := s.requireUsers(ctx, members); err != nil {
		return nil, err
	}

	g := &dbmongo.Group{
		ID:        dbmongo.NewID(),
		Name:      name,
		CreatorID: in.CreatorID,
		MemberIDs: members,
		Messages:  []dbmongo.GroupMessage{},
		CreatedAt: s.now(),
	}
	if err := s.groups.CreateGroup(ctx, g); err != nil {
		return nil, err
	}

	metrics.GroupsCreated.Inc()
	logger.Info("group created", "group_id", g.ID, "creator_id", g.CreatorID, "members", len(members))
	return g, nil
}

// AddMembers is creator-only. Members already present are left as they are.
func (s *groupService) AddMembers(ctx context.Context, groupID string, memberIDs []string, requesterID string) (*dbmongo.Group, error) {
	g, err := s.lookupGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if requesterID != g.CreatorID {
		return nil, common.AuthorizationError("Only the group creator can add members")
	}

	ids := common.UniqueIDs(memberIDs...)
	if len(ids) == 0 {
		return nil, common.ValidationError("No member IDs provided")
	}
	if err := s.requireUsers(ctx, ids); err != nil {
		return nil, err
	}

	updated, err := s.groups.AddMembers(ctx, groupID, ids)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("Group not found")
		}
		return nil, err
	}
	return updated, nil
}

const maxAppendAttempts = 32

func (s *groupService) SendGroupMessage(ctx context.Context, groupID, senderID, text string) (*dbmongo.GroupMessage, error) {
	g, err := s.lookupGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !common.ContainsID(g.MemberIDs, senderID) {
		return nil, common.AuthorizationError("Sender is not a member of this group")
	}
	if strings.TrimSpace(text) == "" {
		return nil, common.ValidationError("Message text cannot be empty")
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("User not found")
		}
		return nil, err
	}

	sealed, err := s.sealer.Seal(text)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		var last time.Time
		if n := len(g.Messages); n > 0 {
			last = g.Messages[n-1].Timestamp
		}
		// username is fixed at write time; later renames do not touch history
		msg := dbmongo.GroupMessage{
			SenderID:       senderID,
			SenderUsername: sender.Username,
			Text:           sealed,
			Timestamp:      common.NextTimestamp(s.now(), last),
			Status:         dbmongo.MessageDelivered,
		}

		err = s.groups.AppendMessage(ctx, groupID, msg)
		switch {
		case err == nil:
			metrics.MessagesPosted.WithLabelValues("group").Inc()
			msg.Text = text
			return &msg, nil
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, common.NotFoundError("Group not found")
		case !errors.Is(err, common.ErrStaleWrite):
			return nil, err
		case attempt+1 == maxAppendAttempts:
			return nil, fmt.Errorf("append to group %s: %w", groupID, err)
		}

		if g, err = s.groups.GetGroup(ctx, groupID); err != nil {
			if errors.Is(err, common.ErrRecordNotFound) {
				return nil, common.NotFoundError("Group not found")
			}
			return nil, err
		}
	}
}

func (s *groupService) GetGroup(ctx context.Context, groupID string) (*dbmongo.Group, error) {
	return s.lookupGroup(ctx, groupID)
}

func (s *groupService) ListMembers(ctx context.Context, groupID string) ([]user.Profile, error) {
	g, err := s.lookupGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	members, err := s.users.GetUsersByIDs(ctx, g.MemberIDs)
	if err != nil {
		return nil, err
	}
	return user.ToProfiles(members), nil
}

func (s *groupService) ListGroupsForUser(ctx context.Context, userID string) ([]*dbmongo.Group, error) {
	if userID == "" {
		return nil, common.ValidationError("userId is required")
	}
	groups, err := s.groups.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if err := s.open(g); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func (s *groupService) GroupMessagesSince(ctx context.Context, groupID string, since time.Time) ([]dbmongo.GroupMessage, error) {
	g, err := s.lookupGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	out := []dbmongo.GroupMessage{}
	for _, msg := range g.Messages {
		if msg.Timestamp.After(since) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *groupService) lookupGroup(ctx context.Context, groupID string) (*dbmongo.Group, error) {
	if groupID == "" {
		return nil, common.ValidationError("groupId is required")
	}
	g, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("Group not found")
		}
		return nil, err
	}
	if err := s.open(g); err != nil {
		return nil, err
	}
	return g, nil
}

// requireUsers fails with the first id that does not resolve to a user.
func (s *groupService) requireUsers(ctx context.Context, ids []string) error {
	found, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(found))
	for _, u := range found {
		known[u.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return common.ValidationError("Invalid member ID: " + id)
		}
	}
	return nil
}

func (s *groupService) open(g *dbmongo.Group) error {
	for i := range g.Messages {
		text, err := s.sealer.Open(g.Messages[i].Text)
		if err != nil {
			return err
		}
		g.Messages[i].Text = text
	}
	return nil
}
