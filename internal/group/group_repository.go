package group

import (
	"context"

	"gochat/internal/common"
	"gochat/internal/dbmongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GroupRepository interface {
	CreateGroup(ctx context.Context, g *dbmongo.Group) error
	GetGroup(ctx context.Context, groupID string) (*dbmongo.Group, error)

	// AddMembers unions memberIDs into the member set and returns the group
	// as stored afterwards.
	AddMembers(ctx context.Context, groupID string, memberIDs []string) (*dbmongo.Group, error)
	AppendMessage(ctx context.Context, groupID string, msg dbmongo.GroupMessage) error
	ListGroupsForUser(ctx context.Context, userID string) ([]*dbmongo.Group, error)
}

type groupRepository struct {
	groups *mongo.Collection
}

func NewGroupRepository(mc *dbmongo.MongoClient) GroupRepository {
	return &groupRepository{groups: mc.Collection(dbmongo.GroupsCollection)}
}

func (r *groupRepository) CreateGroup(ctx context.Context, g *dbmongo.Group) error {
	if g.ID == "" {
		g.ID = dbmongo.NewID()
	}
	if g.Messages == nil {
		g.Messages = []dbmongo.GroupMessage{}
	}
	_, err := r.groups.InsertOne(ctx, g)
	return dbmongo.TranslateError(err)
}

func (r *groupRepository) GetGroup(ctx context.Context, groupID string) (*dbmongo.Group, error) {
	var g dbmongo.Group
	if err := r.groups.FindOne(ctx, bson.M{"_id": groupID}).Decode(&g); err != nil {
		return nil, dbmongo.TranslateError(err)
	}
	return &g, nil
}

func (r *groupRepository) AddMembers(ctx context.Context, groupID string, memberIDs []string) (*dbmongo.Group, error) {
	var g dbmongo.Group
	err := r.groups.FindOneAndUpdate(ctx,
		bson.M{"_id": groupID},
		bson.M{"$addToSet": bson.M{"memberIds": bson.M{"$each": memberIDs}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err != nil {
		return nil, dbmongo.TranslateError(err)
	}
	return &g, nil
}

// AppendMessage follows the conversation rule: the write only lands when msg
// is newer than every stored message, otherwise ErrStaleWrite.
func (r *groupRepository) AppendMessage(ctx context.Context, groupID string, msg dbmongo.GroupMessage) error {
	res, err := r.groups.UpdateOne(ctx,
		bson.M{
			"_id":                groupID,
			"messages.timestamp": bson.M{"$not": bson.M{"$gte": msg.Timestamp}},
		},
		bson.M{"$push": bson.M{"messages": msg}},
	)
	if err != nil {
		return dbmongo.TranslateError(err)
	}
	if res.MatchedCount == 0 {
		err := r.groups.FindOne(ctx,
			bson.M{"_id": groupID},
			options.FindOne().SetProjection(bson.M{"_id": 1}),
		).Err()
		if err != nil {
			return dbmongo.TranslateError(err)
		}
		return common.ErrStaleWrite
	}
	return nil
}

func (r *groupRepository) ListGroupsForUser(ctx context.Context, userID string) ([]*dbmongo.Group, error) {
	cursor, err := r.groups.Find(ctx,
		bson.M{"memberIds": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	groups := []*dbmongo.Group{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
