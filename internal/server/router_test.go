package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chathandler "gochat/internal/chat/handler"
	chatservice "gochat/internal/chat/service"
	"gochat/internal/common"
	"gochat/internal/friend"
	"gochat/internal/gateway"
	"gochat/internal/group"
	"gochat/internal/memstore"
	"gochat/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T, pinger Pinger) *httptest.Server {
	t.Helper()
	store := memstore.New()
	tokens := common.NewTokenManager("test-secret", time.Hour)
	sealer := common.NewPlainSealer()

	users := user.NewUserService(store.Users, tokens)
	friends := friend.NewFriendService(store.FriendRequests, store.Users, store, friend.NewRequestTokens("friend-secret"))
	chat := chatservice.NewChatService(store.Conversations, store.Users, sealer)
	groups := group.NewGroupService(store.Groups, store.Users, sealer)

	router := NewRouter(tokens, nil, pinger, Handlers{
		User:    user.NewHandler(users),
		Friend:  friend.NewHandler(friends),
		Chat:    chathandler.NewChatHandler(chat),
		Group:   group.NewHandler(groups),
		Gateway: gateway.NewHandler(gateway.NewService(users, friends, chat, groups)),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) call(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func register(t *testing.T, base, username string) (*client, string) {
	t.Helper()
	c := &client{t: t, base: base}
	var resp struct {
		Token string       `json:"token"`
		User  user.Profile `json:"user"`
	}
	status := c.call(http.MethodPost, "/users/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "Password123",
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	c.token = resp.Token
	return c, resp.User.ID
}

func TestRouter_EndToEnd(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	alice, aliceID := register(t, srv.URL, "alice")
	bob, bobID := register(t, srv.URL, "bob")

	// messaging before friendship is refused
	status := alice.call(http.MethodPost, "/messages/send", map[string]string{
		"senderId": aliceID, "receiverId": bobID, "text": "hi",
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = alice.call(http.MethodPost, "/friends/add", map[string]string{
		"senderId": aliceID, "receiverId": bobID,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var pending struct {
		Requests []friend.PendingRequest `json:"requests"`
	}
	require.Equal(t, http.StatusOK, bob.call(http.MethodGet, "/friends/pending", nil, &pending))
	require.Len(t, pending.Requests, 1)
	token := pending.Requests[0].RequestToken

	// only the receiver may accept
	assert.Equal(t, http.StatusForbidden, alice.call(http.MethodPost, "/friends/accept/"+token, nil, nil))
	require.Equal(t, http.StatusOK, bob.call(http.MethodPost, "/friends/accept/"+token, nil, nil))
	assert.Equal(t, http.StatusNotFound, bob.call(http.MethodPost, "/friends/accept/"+token, nil, nil))

	var sent chatservice.SendResult
	require.Equal(t, http.StatusOK, alice.call(http.MethodPost, "/messages/send", map[string]string{
		"senderId": aliceID, "receiverId": bobID, "text": "hi",
	}, &sent))
	require.Equal(t, http.StatusOK, bob.call(http.MethodPost, "/messages/send", map[string]string{
		"senderId": bobID, "receiverId": aliceID, "text": "there",
	}, nil))

	var snap gateway.Snapshot
	require.Equal(t, http.StatusOK, bob.call(http.MethodGet, "/sync/"+bobID, nil, &snap))
	require.Len(t, snap.Friends, 1)
	assert.Equal(t, aliceID, snap.Friends[0].ID)
	assert.Empty(t, snap.Pending)
	require.Len(t, snap.Conversations, 1)
	assert.Equal(t, sent.ConversationID, snap.Conversations[0].ID)
	require.Len(t, snap.Conversations[0].Messages, 2)
	assert.Equal(t, "hi", snap.Conversations[0].Messages[0].Text)
	assert.Equal(t, "there", snap.Conversations[0].Messages[1].Text)
}

func TestRouter_ProfileAndOwnership(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	alice, aliceID := register(t, srv.URL, "alice")
	bob, _ := register(t, srv.URL, "bob")

	assert.Equal(t, http.StatusConflict, alice.call(http.MethodPut, "/profile/update", map[string]string{"username": "bob"}, nil))
	assert.Equal(t, http.StatusConflict, alice.call(http.MethodPut, "/profile/update", map[string]string{"email": "bob@example.com"}, nil))
	require.Equal(t, http.StatusOK, alice.call(http.MethodPut, "/profile/update", map[string]string{"username": "alicia"}, nil))

	var got struct {
		Profile user.ProfileDetails `json:"profile"`
	}
	require.Equal(t, http.StatusOK, alice.call(http.MethodGet, "/profile", nil, &got))
	assert.Equal(t, "alicia", got.Profile.Username)
	assert.Equal(t, 0, got.Profile.FriendCount)

	assert.Equal(t, http.StatusBadRequest, alice.call(http.MethodPut, "/profile/update-password", map[string]string{
		"currentPassword": "wrong", "newPassword": "Password456",
	}, nil))
	require.Equal(t, http.StatusOK, alice.call(http.MethodPut, "/profile/update-password", map[string]string{
		"currentPassword": "Password123", "newPassword": "Password456",
	}, nil))
	anon := &client{t: t, base: srv.URL}
	assert.Equal(t, http.StatusOK, anon.call(http.MethodPost, "/users/login", map[string]string{
		"username": "alicia", "password": "Password456",
	}, nil))

	// per-user reads belong to their owner
	assert.Equal(t, http.StatusForbidden, bob.call(http.MethodGet, "/sync/"+aliceID, nil, nil))
	assert.Equal(t, http.StatusForbidden, bob.call(http.MethodGet, "/friends?userId="+aliceID, nil, nil))
	assert.Equal(t, http.StatusForbidden, bob.call(http.MethodGet, "/profile?userId="+aliceID, nil, nil))
	assert.Equal(t, http.StatusForbidden, bob.call(http.MethodPut, "/profile/update", map[string]string{
		"userId": aliceID, "username": "mallory",
	}, nil))
}

func TestRouter_RequiresAuth(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	anon := &client{t: t, base: srv.URL}

	assert.Equal(t, http.StatusUnauthorized, anon.call(http.MethodGet, "/sync/u1", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, anon.call(http.MethodPost, "/groups/create", map[string]string{}, nil))

	anon.token = "garbage"
	assert.Equal(t, http.StatusUnauthorized, anon.call(http.MethodGet, "/friends", nil, nil))
}

func TestRouter_Health(t *testing.T) {
	healthy := newTestServer(t, stubPinger{})
	anon := &client{t: t, base: healthy.URL}
	assert.Equal(t, http.StatusOK, anon.call(http.MethodGet, "/health", nil, nil))

	down := newTestServer(t, stubPinger{err: errors.New("no reachable servers")})
	anon = &client{t: t, base: down.URL}
	assert.Equal(t, http.StatusServiceUnavailable, anon.call(http.MethodGet, "/health", nil, nil))
}

func TestRouter_MetricsIsPublic(t *testing.T) {
	srv := newTestServer(t, stubPinger{})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Preflight(t *testing.T) {
	srv := newTestServer(t, stubPinger{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/messages/send", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
