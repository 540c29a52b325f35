package friend

import (
	"context"
	"errors"
	"time"

	"gochat/internal/common"
	"gochat/internal/dbmongo"
	"gochat/internal/logger"
	"gochat/internal/metrics"
	"gochat/internal/user"
)

// UserLedger is the slice of the user store the relationship service needs.
type UserLedger interface {
	GetUserByID(ctx context.Context, userID string) (*dbmongo.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]*dbmongo.User, error)
	AddFriend(ctx context.Context, userID, friendID string) error
}

// Transactor runs fn as one atomic unit against the store. Writes made with
// the ctx passed to fn commit or roll back together.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Direction of a pending request relative to the user listing it.
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

type PendingRequest struct {
	RequestToken string       `json:"requestToken"`
	Type         string       `json:"type"`
	OtherUser    user.Profile `json:"otherUser"`
	RequestDate  time.Time    `json:"requestDate"`
}

type FriendService interface {
	SendRequest(ctx context.Context, senderID, receiverID string) (*dbmongo.FriendRequest, error)
	AcceptRequest(ctx context.Context, token, actorID string) (*dbmongo.FriendRequest, error)
	RejectRequest(ctx context.Context, token, actorID string) (*dbmongo.FriendRequest, error)
	ListPending(ctx context.Context, userID string) ([]PendingRequest, error)
}

type friendService struct {
	requests FriendRepository
	users    UserLedger
	tx       Transactor
	tokens   *RequestTokens
	now      func() time.Time
}

func NewFriendService(requests FriendRepository, users UserLedger, tx Transactor, tokens *RequestTokens) FriendService {
	return &friendService{
		requests: requests,
		users:    users,
		tx:       tx,
		tokens:   tokens,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *friendService) SendRequest(ctx context.Context, senderID, receiverID string) (*dbmongo.FriendRequest, error) {
	if senderID == "" || receiverID == "" {
		return nil, common.ValidationError("senderId and receiverId are required")
	}
	if senderID == receiverID {
		return nil, common.ConflictError("Cannot send friend request to yourself")
	}

	sender, err := s.lookupUser(ctx, senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.lookupUser(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if common.ContainsID(sender.FriendIDs, receiverID) || common.ContainsID(receiver.FriendIDs, senderID) {
		return nil, common.ConflictError("Users are already friends")
	}

	_, err = s.requests.FindPendingBetween(ctx, senderID, receiverID)
	switch {
	case err == nil:
		return nil, common.ConflictError("Friend request already sent")
	case !errors.Is(err, common.ErrRecordNotFound):
		return nil, err
	}

	token, err := s.tokens.Generate(senderID, receiverID)
	if err != nil {
		return nil, err
	}

	req := &dbmongo.FriendRequest{
		ID:           dbmongo.NewID(),
		RequestToken: token,
		SenderID:     senderID,
		ReceiverID:   receiverID,
		PairKey:      common.PairKey(senderID, receiverID),
		Status:       dbmongo.RequestPending,
		CreatedAt:    s.now(),
	}

	// a concurrent request for the same pair loses on the partial unique index
	if err := s.requests.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return nil, common.ConflictError("Friend request already sent")
		}
		return nil, err
	}

	metrics.FriendRequests.WithLabelValues("sent").Inc()
	logger.Info("friend request sent", "sender_id", senderID, "receiver_id", receiverID)
	return req, nil
}

func (s *friendService) AcceptRequest(ctx context.Context, token, actorID string) (*dbmongo.FriendRequest, error) {
	req, err := s.pendingRequest(ctx, token)
	if err != nil {
		return nil, err
	}
	if actorID != req.ReceiverID {
		return nil, common.AuthorizationError("Only the receiver can accept a friend request")
	}

	// the transition and both friendship edges commit together; a failed
	// edge write leaves the request pending so the accept can be retried
	var resolved *dbmongo.FriendRequest
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		if resolved, err = s.resolve(ctx, token, dbmongo.RequestAccepted); err != nil {
			return err
		}
		if err := s.users.AddFriend(ctx, resolved.SenderID, resolved.ReceiverID); err != nil {
			return err
		}
		return s.users.AddFriend(ctx, resolved.ReceiverID, resolved.SenderID)
	})
	if err != nil {
		return nil, err
	}

	metrics.FriendRequests.WithLabelValues(dbmongo.RequestAccepted).Inc()
	logger.Info("friend request accepted", "sender_id", resolved.SenderID, "receiver_id", resolved.ReceiverID)
	return resolved, nil
}

// RejectRequest declines a request as the receiver or withdraws it as the sender.
func (s *friendService) RejectRequest(ctx context.Context, token, actorID string) (*dbmongo.FriendRequest, error) {
	req, err := s.pendingRequest(ctx, token)
	if err != nil {
		return nil, err
	}
	if actorID != req.ReceiverID && actorID != req.SenderID {
		return nil, common.AuthorizationError("Not a party to this friend request")
	}

	resolved, err := s.resolve(ctx, token, dbmongo.RequestRejected)
	if err != nil {
		return nil, err
	}
	metrics.FriendRequests.WithLabelValues(dbmongo.RequestRejected).Inc()

	logger.Info("friend request rejected", "sender_id", resolved.SenderID, "receiver_id", resolved.ReceiverID, "actor_id", actorID)
	return resolved, nil
}

func (s *friendService) ListPending(ctx context.Context, userID string) ([]PendingRequest, error) {
	if _, err := s.lookupUser(ctx, userID); err != nil {
		return nil, err
	}

	reqs, err := s.requests.ListPendingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	otherIDs := make([]string, 0, len(reqs))
	for _, req := range reqs {
		otherIDs = append(otherIDs, otherParty(req, userID))
	}
	others, err := s.users.GetUsersByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*dbmongo.User, len(others))
	for _, u := range others {
		byID[u.ID] = u
	}

	out := make([]PendingRequest, 0, len(reqs))
	for _, req := range reqs {
		other, ok := byID[otherParty(req, userID)]
		if !ok {
			logger.Warn("pending request references unknown user", "request_id", req.ID)
			continue
		}
		direction := DirectionReceived
		if req.SenderID == userID {
			direction = DirectionSent
		}
		out = append(out, PendingRequest{
			RequestToken: req.RequestToken,
			Type:         direction,
			OtherUser:    user.ToProfile(other),
			RequestDate:  req.CreatedAt,
		})
	}
	return out, nil
}

// pendingRequest resolves a token to its pending request. Forged, unknown and
// already-resolved tokens all read as not found.
func (s *friendService) pendingRequest(ctx context.Context, token string) (*dbmongo.FriendRequest, error) {
	if _, err := s.tokens.Parse(token); err != nil {
		return nil, common.NotFoundError("Friend request not found")
	}
	req, err := s.requests.GetPendingByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("Friend request not found")
		}
		return nil, err
	}
	return req, nil
}

func (s *friendService) resolve(ctx context.Context, token, status string) (*dbmongo.FriendRequest, error) {
	resolved, err := s.requests.ResolvePending(ctx, token, status, s.now())
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("Friend request not found")
		}
		return nil, err
	}
	return resolved, nil
}

func (s *friendService) lookupUser(ctx context.Context, userID string) (*dbmongo.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("User not found")
		}
		return nil, err
	}
	return u, nil
}

func otherParty(req *dbmongo.FriendRequest, userID string) string {
	if req.SenderID == userID {
		return req.ReceiverID
	}
	return req.SenderID
}
