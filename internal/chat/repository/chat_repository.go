package repository

import (
	"context"
	"time"

	"gochat/internal/common"
	"gochat/internal/dbmongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationRepository stores pairwise conversations with their messages
// embedded. There is at most one conversation per pairKey.
type ConversationRepository interface {
	// CreateConversation returns common.ErrDuplicateKey when the pair already
	// has a conversation.
	CreateConversation(ctx context.Context, conv *dbmongo.Conversation) error
	GetConversation(ctx context.Context, conversationID string) (*dbmongo.Conversation, error)
	GetConversationByPair(ctx context.Context, pairKey string) (*dbmongo.Conversation, error)
	AppendMessage(ctx context.Context, conversationID string, msg dbmongo.Message) error
	ListConversationsForUser(ctx context.Context, userID string) ([]*dbmongo.Conversation, error)
}

type chatRepo struct {
	conversations *mongo.Collection
}

func NewChatRepository(mc *dbmongo.MongoClient) ConversationRepository {
	return &chatRepo{conversations: mc.Collection(dbmongo.ConversationsCollection)}
}

// CreateConversation upserts on pairKey. An existing document is left
// untouched and reported as a duplicate; two racing upserts surface as a
// duplicate-key error from the unique index.
func (r *chatRepo) CreateConversation(ctx context.Context, conv *dbmongo.Conversation) error {
	if conv.ID == "" {
		conv.ID = dbmongo.NewID()
	}
	if conv.Messages == nil {
		conv.Messages = []dbmongo.Message{}
	}

	res, err := r.conversations.UpdateOne(ctx,
		bson.M{"pairKey": conv.PairKey},
		bson.M{"$setOnInsert": conv},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return dbmongo.TranslateError(err)
	}
	if res.UpsertedCount == 0 {
		return common.ErrDuplicateKey
	}
	return nil
}

func (r *chatRepo) GetConversation(ctx context.Context, conversationID string) (*dbmongo.Conversation, error) {
	return r.findOne(ctx, bson.M{"_id": conversationID})
}

func (r *chatRepo) GetConversationByPair(ctx context.Context, pairKey string) (*dbmongo.Conversation, error) {
	return r.findOne(ctx, bson.M{"pairKey": pairKey})
}

// AppendMessage pushes msg only while no stored message is at or after its
// timestamp, so timestamps stay strictly increasing in commit order. A lost
// race reports ErrStaleWrite.
func (r *chatRepo) AppendMessage(ctx context.Context, conversationID string, msg dbmongo.Message) error {
	res, err := r.conversations.UpdateOne(ctx,
		bson.M{
			"_id":                conversationID,
			"messages.timestamp": bson.M{"$not": bson.M{"$gte": msg.Timestamp}},
		},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$max":  bson.M{"updatedAt": msg.Timestamp},
		},
	)
	if err != nil {
		return dbmongo.TranslateError(err)
	}
	if res.MatchedCount == 0 {
		return r.missOrStale(ctx, conversationID)
	}
	return nil
}

func (r *chatRepo) missOrStale(ctx context.Context, conversationID string) error {
	err := r.conversations.FindOne(ctx,
		bson.M{"_id": conversationID},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if err != nil {
		return dbmongo.TranslateError(err)
	}
	return common.ErrStaleWrite
}

func (r *chatRepo) ListConversationsForUser(ctx context.Context, userID string) ([]*dbmongo.Conversation, error) {
	cursor, err := r.conversations.Find(ctx,
		bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	convs := []*dbmongo.Conversation{}
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *chatRepo) findOne(ctx context.Context, filter bson.M) (*dbmongo.Conversation, error) {
	var conv dbmongo.Conversation
	if err := r.conversations.FindOne(ctx, filter).Decode(&conv); err != nil {
		return nil, dbmongo.TranslateError(err)
	}
	return &conv, nil
}

// NewConversation builds the document for a canonical pair.
func NewConversation(userA, userB string, now time.Time) *dbmongo.Conversation {
	lo, hi := common.CanonicalPair(userA, userB)
	return &dbmongo.Conversation{
		ID:           dbmongo.NewID(),
		Participants: []string{lo, hi},
		PairKey:      common.PairKey(lo, hi),
		Messages:     []dbmongo.Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
