package group

import (
	"net/http"

	"gochat/internal/common"

	"github.com/gorilla/mux"
)

type Handler struct {
	groupService GroupService
}

func NewHandler(groupService GroupService) *Handler {
	return &Handler{groupService: groupService}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/groups/create", h.CreateGroup).Methods(http.MethodPost)
	r.HandleFunc("/groups/{id}/send", h.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/groups/{id}/add-member", h.AddMembers).Methods(http.MethodPost)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.RequireCaller(r.Context(), req.CreatorID); err != nil {
		common.WriteError(w, err)
		return
	}

	g, err := h.groupService.CreateGroup(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SenderID string `json:"senderId"`
		Text     string `json:"text"`
	}
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.RequireCaller(r.Context(), req.SenderID); err != nil {
		common.WriteError(w, err)
		return
	}

	msg, err := h.groupService.SendGroupMessage(r.Context(), mux.Vars(r)["id"], req.SenderID, req.Text)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, msg)
}

// AddMembers accepts {"memberIds": [...], "requesterId": "..."}; requesterId
// defaults to the authenticated caller.
func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberIDs   []string `json:"memberIds"`
		RequesterID string   `json:"requesterId"`
	}
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.RequesterID == "" {
		req.RequesterID, _ = common.UserIDFromContext(r.Context())
	}
	if err := common.RequireCaller(r.Context(), req.RequesterID); err != nil {
		common.WriteError(w, err)
		return
	}

	g, err := h.groupService.AddMembers(r.Context(), mux.Vars(r)["id"], req.MemberIDs, req.RequesterID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Members added successfully",
		"memberIds": g.MemberIDs,
	})
}
