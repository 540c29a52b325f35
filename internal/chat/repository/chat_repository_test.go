package repository

import (
	"context"
	"testing"
	"time"

	"gochat/internal/common"
	"gochat/internal/dbmongo"
	"gochat/internal/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNewConversation_Canonical(t *testing.T) {
	now := time.Now().UTC()
	a := NewConversation("zed", "amy", now)
	b := NewConversation("amy", "zed", now)

	assert.Equal(t, []string{"amy", "zed"}, a.Participants)
	assert.Equal(t, a.PairKey, b.PairKey)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, a.Messages)
}

// The in-memory store must honour the same contract as the Mongo repository.
func TestConversationRepository_MemstoreContract(t *testing.T) {
	ctx := context.Background()
	var repo ConversationRepository = memstore.New().Conversations
	now := time.Now().UTC()

	conv := NewConversation("u1", "u2", now)
	require.NoError(t, repo.CreateConversation(ctx, conv))
	assert.ErrorIs(t, repo.CreateConversation(ctx, NewConversation("u2", "u1", now)), common.ErrDuplicateKey)

	require.NoError(t, repo.AppendMessage(ctx, conv.ID, dbmongo.Message{SenderID: "u1", Text: "hi", Timestamp: now}))
	require.NoError(t, repo.AppendMessage(ctx, conv.ID, dbmongo.Message{SenderID: "u2", Text: "there", Timestamp: now.Add(time.Millisecond)}))

	got, err := repo.GetConversationByPair(ctx, common.PairKey("u2", "u1"))
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "hi", got.Messages[0].Text)

	_, err = repo.GetConversation(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
}

func TestConversationRepository_MemstoreRejectsStaleAppend(t *testing.T) {
	ctx := context.Background()
	var repo ConversationRepository = memstore.New().Conversations
	base := time.Now().UTC().Truncate(time.Millisecond)
	conv := NewConversation("u1", "u2", base)
	require.NoError(t, repo.CreateConversation(ctx, conv))

	require.NoError(t, repo.AppendMessage(ctx, conv.ID, dbmongo.Message{SenderID: "u1", Text: "a", Timestamp: base}))
	assert.ErrorIs(t, repo.AppendMessage(ctx, conv.ID, dbmongo.Message{SenderID: "u2", Text: "same", Timestamp: base}), common.ErrStaleWrite)
	assert.ErrorIs(t, repo.AppendMessage(ctx, conv.ID, dbmongo.Message{SenderID: "u2", Text: "older", Timestamp: base.Add(-time.Second)}), common.ErrStaleWrite)
	require.NoError(t, repo.AppendMessage(ctx, conv.ID, dbmongo.Message{SenderID: "u2", Text: "b", Timestamp: base.Add(time.Millisecond)}))

	got, err := repo.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "a", got.Messages[0].Text)
	assert.Equal(t, "b", got.Messages[1].Text)
}

func TestChatRepo_Mongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create upserts new pair", func(mt *mtest.T) {
		repo := &chatRepo{conversations: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "c1"}}}},
		))

		err := repo.CreateConversation(context.Background(), NewConversation("u1", "u2", time.Now()))
		assert.NoError(mt, err)
	})

	mt.Run("create on existing pair is a duplicate", func(mt *mtest.T) {
		repo := &chatRepo{conversations: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.CreateConversation(context.Background(), NewConversation("u1", "u2", time.Now()))
		assert.ErrorIs(mt, err, common.ErrDuplicateKey)
	})

	mt.Run("racing upsert hits unique index", func(mt *mtest.T) {
		repo := &chatRepo{conversations: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: conversations index: uniq_pair",
		}))

		err := repo.CreateConversation(context.Background(), NewConversation("u1", "u2", time.Now()))
		assert.ErrorIs(mt, err, common.ErrDuplicateKey)
	})

	mt.Run("append to unknown conversation", func(mt *mtest.T) {
		repo := &chatRepo{conversations: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 0},
				bson.E{Key: "nModified", Value: 0},
			),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		err := repo.AppendMessage(context.Background(), "missing", dbmongo.Message{Text: "hi"})
		assert.ErrorIs(mt, err, common.ErrRecordNotFound)
	})

	mt.Run("append behind a newer message is stale", func(mt *mtest.T) {
		repo := &chatRepo{conversations: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 0},
				bson.E{Key: "nModified", Value: 0},
			),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "_id", Value: "c1"}}),
		)

		err := repo.AppendMessage(context.Background(), "c1", dbmongo.Message{Text: "hi", Timestamp: time.Now()})
		assert.ErrorIs(mt, err, common.ErrStaleWrite)
	})

	mt.Run("append lands", func(mt *mtest.T) {
		repo := &chatRepo{conversations: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.AppendMessage(context.Background(), "c1", dbmongo.Message{Text: "hi", Timestamp: time.Now()})
		assert.NoError(mt, err)
	})

	mt.Run("get by pair decodes document", func(mt *mtest.T) {
		repo := &chatRepo{conversations: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "participants", Value: bson.A{"u1", "u2"}},
			{Key: "pairKey", Value: "u1:u2"},
			{Key: "messages", Value: bson.A{}},
		}))

		conv, err := repo.GetConversationByPair(context.Background(), "u1:u2")
		require.NoError(mt, err)
		assert.Equal(mt, "c1", conv.ID)
		assert.Equal(mt, []string{"u1", "u2"}, conv.Participants)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := &chatRepo{conversations: mt.Coll}
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetConversation(context.Background(), "nope")
		assert.ErrorIs(mt, err, common.ErrRecordNotFound)
	})
}
