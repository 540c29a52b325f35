package user

import (
	"context"
	"time"

	"gochat/internal/dbmongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository is the Identity Ledger's storage contract. Implementations
// return common.ErrRecordNotFound and common.ErrDuplicateKey.
type UserRepository interface {
	CreateUser(ctx context.Context, user *dbmongo.User) error
	GetUserByID(ctx context.Context, userID string) (*dbmongo.User, error)
	GetUserByUsername(ctx context.Context, username string) (*dbmongo.User, error)
	GetUserByEmail(ctx context.Context, email string) (*dbmongo.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]*dbmongo.User, error)
	ListUsers(ctx context.Context) ([]*dbmongo.User, error)

	// AddFriend adds friendID to userID's friend set; adding twice is a no-op.
	AddFriend(ctx context.Context, userID, friendID string) error

	// UpdateProfile overwrites username, email and names of user.ID.
	UpdateProfile(ctx context.Context, user *dbmongo.User) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

type userRepository struct {
	users *mongo.Collection
}

func NewUserRepository(mc *dbmongo.MongoClient) UserRepository {
	return &userRepository{users: mc.Collection(dbmongo.UsersCollection)}
}

func (r *userRepository) CreateUser(ctx context.Context, user *dbmongo.User) error {
	if user.ID == "" {
		user.ID = dbmongo.NewID()
	}
	if user.FriendIDs == nil {
		user.FriendIDs = []string{}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := r.users.InsertOne(ctx, user)
	return dbmongo.TranslateError(err)
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*dbmongo.User, error) {
	var user dbmongo.User
	err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return nil, dbmongo.TranslateError(err)
	}
	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*dbmongo.User, error) {
	var user dbmongo.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, dbmongo.TranslateError(err)
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*dbmongo.User, error) {
	var user dbmongo.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, dbmongo.TranslateError(err)
	}
	return &user, nil
}

func (r *userRepository) GetUsersByIDs(ctx context.Context, userIDs []string) ([]*dbmongo.User, error) {
	if len(userIDs) == 0 {
		return []*dbmongo.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
}

func (r *userRepository) ListUsers(ctx context.Context) ([]*dbmongo.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *userRepository) AddFriend(ctx context.Context, userID, friendID string) error {
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"friendIds": friendID}},
	)
	if err != nil {
		return dbmongo.TranslateError(err)
	}
	if res.MatchedCount == 0 {
		return dbmongo.TranslateError(mongo.ErrNoDocuments)
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *dbmongo.User) error {
	return r.set(ctx, user.ID, bson.M{
		"username":  user.Username,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
	})
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.set(ctx, userID, bson.M{"passwordHash": hash})
}

func (r *userRepository) set(ctx context.Context, userID string, fields bson.M) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": fields})
	if err != nil {
		return dbmongo.TranslateError(err)
	}
	if res.MatchedCount == 0 {
		return dbmongo.TranslateError(mongo.ErrNoDocuments)
	}
	return nil
}

func (r *userRepository) find(ctx context.Context, filter bson.M) ([]*dbmongo.User, error) {
	cursor, err := r.users.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	users := []*dbmongo.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
