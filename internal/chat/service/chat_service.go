package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gochat/internal/chat/repository"
	"gochat/internal/common"
	"gochat/internal/dbmongo"
	"gochat/internal/logger"
	"gochat/internal/metrics"
)

// UserDirectory resolves users for the send path.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*dbmongo.User, error)
}

// SendInput is the body of POST /messages/send.
type SendInput struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
	IsInitial  bool   `json:"isInitial"`
}

// SendResult carries the conversation and, unless the send was an initial
// open, the appended message.
type SendResult struct {
	ConversationID string           `json:"conversationId"`
	Message        *dbmongo.Message `json:"message,omitempty"`
}

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	FindOrCreateConversation(ctx context.Context, userA, userB string) (*dbmongo.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, senderID, text string) (*dbmongo.Message, error)
	SendMessage(ctx context.Context, in SendInput) (*SendResult, error)
	GetConversation(ctx context.Context, conversationID string) (*dbmongo.Conversation, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]*dbmongo.Conversation, error)
	MessagesSince(ctx context.Context, conversationID string, since time.Time) ([]dbmongo.Message, error)
}

type chatService struct {
	repo   repository.ConversationRepository
	users  UserDirectory
	sealer common.TextSealer
	now    func() time.Time
}

// Constructor used in DI/wire
func NewChatService(r repository.ConversationRepository, users UserDirectory, sealer common.TextSealer) ChatService {
	return &chatService{
		repo:   r,
		users:  users,
		sealer: sealer,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// FindOrCreateConversation returns the single conversation for the unordered
// pair, creating it on first contact. Callers racing on the same pair all get
// the winner's conversation.
func (s *chatService) FindOrCreateConversation(ctx context.Context, userA, userB string) (*dbmongo.Conversation, error) {
	if userA == "" || userB == "" {
		return nil, common.ValidationError("Both participants are required")
	}
	if userA == userB {
		return nil, common.ValidationError("Cannot start a conversation with yourself")
	}

	pairKey := common.PairKey(userA, userB)
	conv, err := s.repo.GetConversationByPair(ctx, pairKey)
	if err == nil {
		return s.open(conv)
	}
	if !errors.Is(err, common.ErrRecordNotFound) {
		return nil, err
	}

	conv = repository.NewConversation(userA, userB, s.now())
	err = s.repo.CreateConversation(ctx, conv)
	switch {
	case err == nil:
		metrics.ConversationsCreated.Inc()
		logger.Info("conversation created", "conversation_id", conv.ID, "pair", pairKey)
		return conv, nil
	case errors.Is(err, common.ErrDuplicateKey):
		// someone else created it between our lookup and insert
		existing, err := s.repo.GetConversationByPair(ctx, pairKey)
		if err != nil {
			return nil, err
		}
		return s.open(existing)
	default:
		return nil, err
	}
}

// maxAppendAttempts bounds retries when concurrent senders keep winning the
// conditional append.
const maxAppendAttempts = 32

func (s *chatService) AppendMessage(ctx context.Context, conversationID, senderID, text string) (*dbmongo.Message, error) {
	if conversationID == "" {
		return nil, common.ValidationError("conversationId is required")
	}

	conv, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !common.ContainsID(conv.Participants, senderID) {
		return nil, common.ValidationError("Sender is not a participant")
	}
	if strings.TrimSpace(text) == "" {
		return nil, common.ValidationError("Message text cannot be empty")
	}

	sealed, err := s.sealer.Seal(text)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		var last time.Time
		if n := len(conv.Messages); n > 0 {
			last = conv.Messages[n-1].Timestamp
		}
		stored := dbmongo.Message{
			SenderID:  senderID,
			Text:      sealed,
			Timestamp: common.NextTimestamp(s.now(), last),
			Status:    dbmongo.MessageDelivered,
		}

		err = s.repo.AppendMessage(ctx, conversationID, stored)
		switch {
		case err == nil:
			metrics.MessagesPosted.WithLabelValues("direct").Inc()
			stored.Text = text
			return &stored, nil
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, common.NotFoundError("Conversation not found")
		case !errors.Is(err, common.ErrStaleWrite):
			return nil, err
		case attempt+1 == maxAppendAttempts:
			return nil, fmt.Errorf("append to conversation %s: %w", conversationID, err)
		}

		// another message landed first; pick a timestamp after it
		if conv, err = s.loadConversation(ctx, conversationID); err != nil {
			return nil, err
		}
	}
}

func (s *chatService) loadConversation(ctx context.Context, conversationID string) (*dbmongo.Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("Conversation not found")
		}
		return nil, err
	}
	return conv, nil
}

// SendMessage is the HTTP send path: both users must exist and be friends.
// An initial send only opens the conversation.
func (s *chatService) SendMessage(ctx context.Context, in SendInput) (*SendResult, error) {
	if in.SenderID == "" || in.ReceiverID == "" {
		return nil, common.ValidationError("senderId and receiverId are required")
	}

	sender, err := s.lookupUser(ctx, in.SenderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.lookupUser(ctx, in.ReceiverID); err != nil {
		return nil, err
	}
	if !common.ContainsID(sender.FriendIDs, in.ReceiverID) {
		return nil, common.AuthorizationError("Users must be friends to exchange messages")
	}

	conv, err := s.FindOrCreateConversation(ctx, in.SenderID, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if in.IsInitial {
		return &SendResult{ConversationID: conv.ID}, nil
	}

	msg, err := s.AppendMessage(ctx, conv.ID, in.SenderID, in.Text)
	if err != nil {
		return nil, err
	}
	return &SendResult{ConversationID: conv.ID, Message: msg}, nil
}

func (s *chatService) GetConversation(ctx context.Context, conversationID string) (*dbmongo.Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("Conversation not found")
		}
		return nil, err
	}
	return s.open(conv)
}

func (s *chatService) ListConversationsForUser(ctx context.Context, userID string) ([]*dbmongo.Conversation, error) {
	if userID == "" {
		return nil, common.ValidationError("userId is required")
	}
	convs, err := s.repo.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i, conv := range convs {
		if convs[i], err = s.open(conv); err != nil {
			return nil, err
		}
	}
	return convs, nil
}

// MessagesSince returns messages strictly after since; a zero since returns
// the whole history.
func (s *chatService) MessagesSince(ctx context.Context, conversationID string, since time.Time) ([]dbmongo.Message, error) {
	conv, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	out := []dbmongo.Message{}
	for _, msg := range conv.Messages {
		if msg.Timestamp.After(since) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *chatService) open(conv *dbmongo.Conversation) (*dbmongo.Conversation, error) {
	for i := range conv.Messages {
		text, err := s.sealer.Open(conv.Messages[i].Text)
		if err != nil {
			return nil, err
		}
		conv.Messages[i].Text = text
	}
	return conv, nil
}

func (s *chatService) lookupUser(ctx context.Context, userID string) (*dbmongo.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrRecordNotFound) {
			return nil, common.NotFoundError("User not found")
		}
		return nil, err
	}
	return u, nil
}
