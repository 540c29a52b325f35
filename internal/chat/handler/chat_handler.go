// Package handler exposes the direct-message write path over HTTP.
package handler

import (
	"net/http"

	"gochat/internal/chat/service"
	"gochat/internal/common"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/messages/send", h.SendMessage).Methods(http.MethodPost)
}

// SendMessage opens (isInitial) or writes to the conversation between sender
// and receiver and returns its id.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req service.SendInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := common.RequireCaller(r.Context(), req.SenderID); err != nil {
		common.WriteError(w, err)
		return
	}

	res, err := h.chatService.SendMessage(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, res)
}
