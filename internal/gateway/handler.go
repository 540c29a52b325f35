package gateway

import (
	"net/http"
	"strconv"
	"time"

	"gochat/internal/common"

	"github.com/gorilla/mux"
)

type Handler struct {
	gateway *Service
}

func NewHandler(gateway *Service) *Handler {
	return &Handler{gateway: gateway}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/friends", h.Friends).Methods(http.MethodGet)
	r.HandleFunc("/friends/pending", h.Pending).Methods(http.MethodGet)
	r.HandleFunc("/messages/{conversationId}", h.Messages).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{userId}", h.Conversations).Methods(http.MethodGet)
	r.HandleFunc("/groups", h.Groups).Methods(http.MethodGet)
	r.HandleFunc("/groups/{id}", h.Group).Methods(http.MethodGet)
	r.HandleFunc("/groups/{id}/messages", h.GroupMessages).Methods(http.MethodGet)
	r.HandleFunc("/groups/{id}/members", h.Members).Methods(http.MethodGet)
	r.HandleFunc("/sync/{userId}", h.Sync).Methods(http.MethodGet)
}

func (h *Handler) Friends(w http.ResponseWriter, r *http.Request) {
	userID, err := ownUserID(r, r.URL.Query().Get("userId"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	friends, err := h.gateway.Friends(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	userID, err := ownUserID(r, r.URL.Query().Get("userId"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	requests, err := h.gateway.PendingRequests(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	since, err := parseSince(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	conversationID := mux.Vars(r)["conversationId"]
	messages, err := h.gateway.MessagesSince(r.Context(), callerID(r), conversationID, since)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"conversationId": conversationID,
		"messages":       messages,
	})
}

func (h *Handler) Conversations(w http.ResponseWriter, r *http.Request) {
	userID, err := ownUserID(r, mux.Vars(r)["userId"])
	if err != nil {
		common.WriteError(w, err)
		return
	}
	convs, err := h.gateway.ConversationsForUser(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": convs})
}

func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	userID, err := ownUserID(r, r.URL.Query().Get("userId"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	groups, err := h.gateway.GroupsForUser(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

func (h *Handler) Group(w http.ResponseWriter, r *http.Request) {
	g, err := h.gateway.Group(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) GroupMessages(w http.ResponseWriter, r *http.Request) {
	since, err := parseSince(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	groupID := mux.Vars(r)["id"]
	messages, err := h.gateway.GroupMessagesSince(r.Context(), callerID(r), groupID, since)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"groupId":  groupID,
		"messages": messages,
	})
}

func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.gateway.Members(r.Context(), callerID(r), mux.Vars(r)["id"])
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	userID, err := ownUserID(r, mux.Vars(r)["userId"])
	if err != nil {
		common.WriteError(w, err)
		return
	}
	snap, err := h.gateway.Snapshot(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, snap)
}

func callerID(r *http.Request) string {
	id, _ := common.UserIDFromContext(r.Context())
	return id
}

// ownUserID resolves the user a per-user read is about. Empty means the
// caller; anyone else is refused.
func ownUserID(r *http.Request, userID string) (string, error) {
	if userID == "" {
		userID = callerID(r)
	}
	if err := common.RequireCaller(r.Context(), userID); err != nil {
		return "", err
	}
	return userID, nil
}

// parseSince accepts RFC 3339 or unix milliseconds. Absent means everything.
func parseSince(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return time.Time{}, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, common.ValidationError("since must be RFC 3339 or unix milliseconds")
	}
	return ts, nil
}
