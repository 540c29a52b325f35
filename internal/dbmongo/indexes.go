package dbmongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpecs lists the indexes each collection needs. Uniqueness for
// usernames, request tokens, pending requests per pair and conversations per
// pair is enforced here rather than in application code.
func IndexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_username")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("idx_email")},
		},
		FriendRequestsCollection: {
			{Keys: bson.D{{Key: "requestToken", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_request_token")},
			{
				Keys: bson.D{{Key: "pairKey", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("uniq_pending_pair").
					SetPartialFilterExpression(bson.M{"status": RequestPending}),
			},
			{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("idx_receiver_status")},
			{Keys: bson.D{{Key: "senderId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("idx_sender_status")},
		},
		ConversationsCollection: {
			{Keys: bson.D{{Key: "pairKey", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_pair")},
			{Keys: bson.D{{Key: "participants", Value: 1}}, Options: options.Index().SetName("idx_participants")},
		},
		GroupsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("idx_name")},
			{Keys: bson.D{{Key: "creatorId", Value: 1}}, Options: options.Index().SetName("idx_creator")},
			{Keys: bson.D{{Key: "memberIds", Value: 1}}, Options: options.Index().SetName("idx_members")},
		},
	}
}

// EnsureIndexes creates every index in IndexSpecs. It is idempotent.
func (mc *MongoClient) EnsureIndexes(ctx context.Context) error {
	for collection, models := range IndexSpecs() {
		if _, err := mc.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
