// Package memstore is an in-process document store with the same guarantees
// the MongoDB repositories rely on: unique keys, conditional single-document
// updates and ordered array appends. It backs tests and STORE_DRIVER=memory.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"gochat/internal/common"
	"gochat/internal/dbmongo"
)

// Store groups one repository per collection.
type Store struct {
	Users          *Users
	FriendRequests *FriendRequests
	Conversations  *Conversations
	Groups         *Groups
}

func New() *Store {
	return &Store{
		Users:          &Users{byID: map[string]*dbmongo.User{}, byUsername: map[string]string{}},
		FriendRequests: &FriendRequests{byID: map[string]*dbmongo.FriendRequest{}, byToken: map[string]string{}, pendingPair: map[string]string{}},
		Conversations:  &Conversations{byID: map[string]*dbmongo.Conversation{}, byPair: map[string]string{}},
		Groups:         &Groups{byID: map[string]*dbmongo.Group{}},
	}
}

type txKey struct{}

// journal collects what a transaction must undo on failure and what it
// defers until commit.
type journal struct {
	undo   []func()
	commit []func()
}

func journalFrom(ctx context.Context) *journal {
	j, _ := ctx.Value(txKey{}).(*journal)
	return j
}

// WithTransaction runs fn so that its writes through this store either all
// stay or are all undone. A resolved request keeps its pair slot until
// commit, so no second pending request for the pair can slip in meanwhile.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	j := &journal{}
	if err := fn(context.WithValue(ctx, txKey{}, j)); err != nil {
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		return err
	}
	for _, f := range j.commit {
		f()
	}
	return nil
}

// Users implements user.UserRepository.
type Users struct {
	mu         sync.RWMutex
	byID       map[string]*dbmongo.User
	byUsername map[string]string
}

func (s *Users) CreateUser(ctx context.Context, u *dbmongo.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = dbmongo.NewID()
	}
	if _, taken := s.byUsername[u.Username]; taken {
		return common.ErrDuplicateKey
	}
	if _, taken := s.byID[u.ID]; taken {
		return common.ErrDuplicateKey
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.byID[u.ID] = copyUser(u)
	s.byUsername[u.Username] = u.ID
	return nil
}

func (s *Users) GetUserByID(ctx context.Context, userID string) (*dbmongo.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[userID]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	return copyUser(u), nil
}

func (s *Users) GetUserByUsername(ctx context.Context, username string) (*dbmongo.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	return copyUser(s.byID[id]), nil
}

func (s *Users) GetUserByEmail(ctx context.Context, email string) (*dbmongo.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.byID {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrRecordNotFound
}

func (s *Users) GetUsersByIDs(ctx context.Context, userIDs []string) ([]*dbmongo.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*dbmongo.User{}
	for _, id := range common.UniqueIDs(userIDs...) {
		if u, ok := s.byID[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	sortUsers(out)
	return out, nil
}

func (s *Users) ListUsers(ctx context.Context) ([]*dbmongo.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*dbmongo.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, copyUser(u))
	}
	sortUsers(out)
	return out, nil
}

func (s *Users) AddFriend(ctx context.Context, userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return common.ErrRecordNotFound
	}
	if common.ContainsID(u.FriendIDs, friendID) {
		return nil
	}
	u.FriendIDs = append(u.FriendIDs, friendID)

	if j := journalFrom(ctx); j != nil {
		j.undo = append(j.undo, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			kept := u.FriendIDs[:0]
			for _, id := range u.FriendIDs {
				if id != friendID {
					kept = append(kept, id)
				}
			}
			u.FriendIDs = kept
		})
	}
	return nil
}

func (s *Users) UpdateProfile(ctx context.Context, user *dbmongo.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[user.ID]
	if !ok {
		return common.ErrRecordNotFound
	}
	if owner, taken := s.byUsername[user.Username]; taken && owner != u.ID {
		return common.ErrDuplicateKey
	}
	delete(s.byUsername, u.Username)
	s.byUsername[user.Username] = u.ID
	u.Username = user.Username
	u.Email = user.Email
	u.FirstName = user.FirstName
	u.LastName = user.LastName
	return nil
}

func (s *Users) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[userID]
	if !ok {
		return common.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

// FriendRequests implements friend.FriendRepository.
type FriendRequests struct {
	mu          sync.RWMutex
	byID        map[string]*dbmongo.FriendRequest
	byToken     map[string]string
	pendingPair map[string]string // partial unique index on pairKey where status=pending
}

func (s *FriendRequests) CreateRequest(ctx context.Context, req *dbmongo.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.ID == "" {
		req.ID = dbmongo.NewID()
	}
	if _, taken := s.byToken[req.RequestToken]; taken {
		return common.ErrDuplicateKey
	}
	if req.Status == dbmongo.RequestPending {
		if _, taken := s.pendingPair[req.PairKey]; taken {
			return common.ErrDuplicateKey
		}
		s.pendingPair[req.PairKey] = req.ID
	}
	stored := *req
	s.byID[req.ID] = &stored
	s.byToken[req.RequestToken] = req.ID
	return nil
}

func (s *FriendRequests) GetPendingByToken(ctx context.Context, token string) (*dbmongo.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[token]
	if !ok || s.byID[id].Status != dbmongo.RequestPending {
		return nil, common.ErrRecordNotFound
	}
	found := *s.byID[id]
	return &found, nil
}

func (s *FriendRequests) ResolvePending(ctx context.Context, token, status string, at time.Time) (*dbmongo.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byToken[token]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	req := s.byID[id]
	if req.Status != dbmongo.RequestPending {
		return nil, common.ErrRecordNotFound
	}
	req.Status = status
	resolvedAt := at
	req.ResolvedAt = &resolvedAt

	if j := journalFrom(ctx); j != nil {
		j.undo = append(j.undo, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			req.Status = dbmongo.RequestPending
			req.ResolvedAt = nil
		})
		j.commit = append(j.commit, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.pendingPair[req.PairKey] == id {
				delete(s.pendingPair, req.PairKey)
			}
		})
	} else {
		delete(s.pendingPair, req.PairKey)
	}

	resolved := *req
	return &resolved, nil
}

func (s *FriendRequests) FindPendingBetween(ctx context.Context, userA, userB string) (*dbmongo.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pendingPair[common.PairKey(userA, userB)]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	found := *s.byID[id]
	return &found, nil
}

func (s *FriendRequests) ListPendingForUser(ctx context.Context, userID string) ([]*dbmongo.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*dbmongo.FriendRequest{}
	for _, id := range s.pendingPair {
		req := s.byID[id]
		if req.SenderID == userID || req.ReceiverID == userID {
			found := *req
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Conversations implements the chat ConversationRepository.
type Conversations struct {
	mu     sync.RWMutex
	byID   map[string]*dbmongo.Conversation
	byPair map[string]string
}

func (s *Conversations) CreateConversation(ctx context.Context, conv *dbmongo.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv.ID == "" {
		conv.ID = dbmongo.NewID()
	}
	if _, taken := s.byPair[conv.PairKey]; taken {
		return common.ErrDuplicateKey
	}
	s.byID[conv.ID] = copyConversation(conv)
	s.byPair[conv.PairKey] = conv.ID
	return nil
}

func (s *Conversations) GetConversation(ctx context.Context, conversationID string) (*dbmongo.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.byID[conversationID]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	return copyConversation(conv), nil
}

func (s *Conversations) GetConversationByPair(ctx context.Context, pairKey string) (*dbmongo.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPair[pairKey]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	return copyConversation(s.byID[id]), nil
}

func (s *Conversations) AppendMessage(ctx context.Context, conversationID string, msg dbmongo.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.byID[conversationID]
	if !ok {
		return common.ErrRecordNotFound
	}
	if n := len(conv.Messages); n > 0 && !msg.Timestamp.After(conv.Messages[n-1].Timestamp) {
		return common.ErrStaleWrite
	}
	conv.Messages = append(conv.Messages, msg)
	if msg.Timestamp.After(conv.UpdatedAt) {
		conv.UpdatedAt = msg.Timestamp
	}
	return nil
}

func (s *Conversations) ListConversationsForUser(ctx context.Context, userID string) ([]*dbmongo.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*dbmongo.Conversation{}
	for _, conv := range s.byID {
		if common.ContainsID(conv.Participants, userID) {
			out = append(out, copyConversation(conv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Groups implements group.GroupRepository.
type Groups struct {
	mu   sync.RWMutex
	byID map[string]*dbmongo.Group
}

func (s *Groups) CreateGroup(ctx context.Context, g *dbmongo.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = dbmongo.NewID()
	}
	if _, taken := s.byID[g.ID]; taken {
		return common.ErrDuplicateKey
	}
	s.byID[g.ID] = copyGroup(g)
	return nil
}

func (s *Groups) GetGroup(ctx context.Context, groupID string) (*dbmongo.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.byID[groupID]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	return copyGroup(g), nil
}

func (s *Groups) AddMembers(ctx context.Context, groupID string, memberIDs []string) (*dbmongo.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.byID[groupID]
	if !ok {
		return nil, common.ErrRecordNotFound
	}
	for _, id := range memberIDs {
		if !common.ContainsID(g.MemberIDs, id) {
			g.MemberIDs = append(g.MemberIDs, id)
		}
	}
	return copyGroup(g), nil
}

func (s *Groups) AppendMessage(ctx context.Context, groupID string, msg dbmongo.GroupMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.byID[groupID]
	if !ok {
		return common.ErrRecordNotFound
	}
	if n := len(g.Messages); n > 0 && !msg.Timestamp.After(g.Messages[n-1].Timestamp) {
		return common.ErrStaleWrite
	}
	g.Messages = append(g.Messages, msg)
	return nil
}

func (s *Groups) ListGroupsForUser(ctx context.Context, userID string) ([]*dbmongo.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*dbmongo.Group{}
	for _, g := range s.byID {
		if common.ContainsID(g.MemberIDs, userID) {
			out = append(out, copyGroup(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func copyUser(u *dbmongo.User) *dbmongo.User {
	c := *u
	c.FriendIDs = append([]string{}, u.FriendIDs...)
	return &c
}

func copyConversation(conv *dbmongo.Conversation) *dbmongo.Conversation {
	c := *conv
	c.Participants = append([]string{}, conv.Participants...)
	c.Messages = append([]dbmongo.Message{}, conv.Messages...)
	return &c
}

func copyGroup(g *dbmongo.Group) *dbmongo.Group {
	c := *g
	c.MemberIDs = append([]string{}, g.MemberIDs...)
	c.Messages = append([]dbmongo.GroupMessage{}, g.Messages...)
	return &c
}

func sortUsers(users []*dbmongo.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
}
