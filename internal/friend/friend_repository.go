package friend

import (
	"context"
	"time"

	"gochat/internal/common"
	"gochat/internal/dbmongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendRepository stores friend requests. Pending requests are unique per
// unordered pair; CreateRequest returns common.ErrDuplicateKey when one exists.
type FriendRepository interface {
	CreateRequest(ctx context.Context, req *dbmongo.FriendRequest) error
	GetPendingByToken(ctx context.Context, token string) (*dbmongo.FriendRequest, error)

	// ResolvePending moves a pending request to status in a single conditional
	// write. Only one caller can win; everyone else gets common.ErrRecordNotFound.
	ResolvePending(ctx context.Context, token, status string, at time.Time) (*dbmongo.FriendRequest, error)

	FindPendingBetween(ctx context.Context, userA, userB string) (*dbmongo.FriendRequest, error)
	ListPendingForUser(ctx context.Context, userID string) ([]*dbmongo.FriendRequest, error)
}

type friendRepository struct {
	requests *mongo.Collection
}

func NewFriendRepository(mc *dbmongo.MongoClient) FriendRepository {
	return &friendRepository{requests: mc.Collection(dbmongo.FriendRequestsCollection)}
}

func (r *friendRepository) CreateRequest(ctx context.Context, req *dbmongo.FriendRequest) error {
	if req.ID == "" {
		req.ID = dbmongo.NewID()
	}
	_, err := r.requests.InsertOne(ctx, req)
	return dbmongo.TranslateError(err)
}

func (r *friendRepository) GetPendingByToken(ctx context.Context, token string) (*dbmongo.FriendRequest, error) {
	var req dbmongo.FriendRequest
	err := r.requests.FindOne(ctx, bson.M{
		"requestToken": token,
		"status":       dbmongo.RequestPending,
	}).Decode(&req)
	if err != nil {
		return nil, dbmongo.TranslateError(err)
	}
	return &req, nil
}

func (r *friendRepository) ResolvePending(ctx context.Context, token, status string, at time.Time) (*dbmongo.FriendRequest, error) {
	filter := bson.M{"requestToken": token, "status": dbmongo.RequestPending}
	update := bson.M{"$set": bson.M{"status": status, "resolvedAt": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req dbmongo.FriendRequest
	if err := r.requests.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req); err != nil {
		return nil, dbmongo.TranslateError(err)
	}
	return &req, nil
}

func (r *friendRepository) FindPendingBetween(ctx context.Context, userA, userB string) (*dbmongo.FriendRequest, error) {
	var req dbmongo.FriendRequest
	err := r.requests.FindOne(ctx, bson.M{
		"pairKey": common.PairKey(userA, userB),
		"status":  dbmongo.RequestPending,
	}).Decode(&req)
	if err != nil {
		return nil, dbmongo.TranslateError(err)
	}
	return &req, nil
}

func (r *friendRepository) ListPendingForUser(ctx context.Context, userID string) ([]*dbmongo.FriendRequest, error) {
	filter := bson.M{
		"status": dbmongo.RequestPending,
		"$or": []bson.M{
			{"senderId": userID},
			{"receiverId": userID},
		},
	}
	cursor, err := r.requests.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	requests := []*dbmongo.FriendRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}
