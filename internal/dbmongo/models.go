package dbmongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Friend request statuses. pending is the only non-terminal state.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// Message statuses (advisory).
const (
	MessageDelivered = "delivered"
	MessageRead      = "read"
)

type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	FirstName    string    `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string    `bson:"lastName,omitempty" json:"lastName,omitempty"`
	FriendIDs    []string  `bson:"friendIds" json:"friendIds"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// FriendRequest is addressed externally only by RequestToken; ID is the
// storage key and never leaves the service.
type FriendRequest struct {
	ID           string     `bson:"_id" json:"-"`
	RequestToken string     `bson:"requestToken" json:"requestToken"`
	SenderID     string     `bson:"senderId" json:"senderId"`
	ReceiverID   string     `bson:"receiverId" json:"receiverId"`
	PairKey      string     `bson:"pairKey" json:"-"`
	Status       string     `bson:"status" json:"status"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	ResolvedAt   *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

type Conversation struct {
	ID           string    `bson:"_id" json:"conversationId"`
	Participants []string  `bson:"participants" json:"participants"`
	PairKey      string    `bson:"pairKey" json:"-"`
	Messages     []Message `bson:"messages" json:"messages"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Message struct {
	SenderID  string    `bson:"senderId" json:"senderId"`
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Status    string    `bson:"status" json:"status"`
}

type Group struct {
	ID        string         `bson:"_id" json:"groupId"`
	Name      string         `bson:"name" json:"name"`
	CreatorID string         `bson:"creatorId" json:"creatorId"`
	MemberIDs []string       `bson:"memberIds" json:"memberIds"`
	Messages  []GroupMessage `bson:"messages" json:"-"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}

type GroupMessage struct {
	SenderID       string    `bson:"senderId" json:"senderId"`
	SenderUsername string    `bson:"senderUsername" json:"senderUsername"`
	Text           string    `bson:"text" json:"text"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
	Status         string    `bson:"status" json:"status"`
}

// NewID returns a fresh document key in ObjectID hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}
