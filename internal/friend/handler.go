package friend

import (
	"context"
	"net/http"

	"gochat/internal/common"
	"gochat/internal/dbmongo"

	"github.com/gorilla/mux"
)

type Handler struct {
	friendService FriendService
}

func NewHandler(friendService FriendService) *Handler {
	return &Handler{friendService: friendService}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/friends/add", h.SendRequest).Methods(http.MethodPost)
	r.HandleFunc("/friends/accept/{token}", h.AcceptRequest).Methods(http.MethodPost)
	r.HandleFunc("/friends/reject/{token}", h.RejectRequest).Methods(http.MethodPost)
}

func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SenderID   string `json:"senderId"`
		ReceiverID string `json:"receiverId"`
	}
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.RequireCaller(r.Context(), req.SenderID); err != nil {
		common.WriteError(w, err)
		return
	}

	created, err := h.friendService.SendRequest(r.Context(), req.SenderID, req.ReceiverID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Friend request sent successfully",
		"request": created,
	})
}

func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.friendService.AcceptRequest, "Friend request accepted")
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.friendService.RejectRequest, "Friend request rejected")
}

type transitionFunc func(ctx context.Context, token, actorID string) (*dbmongo.FriendRequest, error)

// The acting user is always the authenticated caller; a userId in the body,
// when present, must agree with it.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, fn transitionFunc, message string) {
	token := mux.Vars(r)["token"]

	callerID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.AuthorizationError("Caller does not match acting user"))
		return
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if r.ContentLength > 0 {
		if err := common.DecodeJSON(r, &body); err != nil {
			common.WriteError(w, err)
			return
		}
	}
	if body.UserID != "" {
		if err := common.RequireCaller(r.Context(), body.UserID); err != nil {
			common.WriteError(w, err)
			return
		}
	}

	if _, err := fn(r.Context(), token, callerID); err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]string{
		"message":      message,
		"requestToken": token,
	})
}
