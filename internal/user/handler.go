package user

import (
	"net/http"

	"gochat/internal/common"

	"github.com/gorilla/mux"
)

// Handler exposes registration, login and user discovery over HTTP.
type Handler struct {
	userService UserService
}

func NewHandler(userService UserService) *Handler {
	return &Handler{userService: userService}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/users/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.GetProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile/update", h.UpdateProfile).Methods(http.MethodPut)
	r.HandleFunc("/profile/update-password", h.UpdatePassword).Methods(http.MethodPut)
}

type authResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    Profile `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	user, token, err := h.userService.RegisterUser(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, authResponse{
		Status:  "success",
		Message: "User registered successfully",
		Token:   token,
		User:    ToProfile(user),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	user, token, err := h.userService.LoginUser(r.Context(), req.Username, req.Password)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, authResponse{
		Status:  "success",
		Message: "Login successful",
		Token:   token,
		User:    ToProfile(user),
	})
}

// ListUsers returns users the caller could still befriend.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := callerOrSelf(r, r.URL.Query().Get("currentUserId"))
	if err != nil {
		common.WriteError(w, err)
		return
	}

	users, err := h.userService.ListNonFriends(r.Context(), currentUserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"users":  ToProfiles(users),
	})
}

// callerOrSelf returns userID, or the authenticated caller when it is empty,
// and fails unless the two agree.
func callerOrSelf(r *http.Request, userID string) (string, error) {
	if userID == "" {
		userID, _ = common.UserIDFromContext(r.Context())
	}
	if err := common.RequireCaller(r.Context(), userID); err != nil {
		return "", err
	}
	return userID, nil
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := callerOrSelf(r, r.URL.Query().Get("userId"))
	if err != nil {
		common.WriteError(w, err)
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"profile": profile,
	})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileUpdate
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	userID, err := callerOrSelf(r, req.UserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	req.UserID = userID

	profile, err := h.userService.UpdateProfile(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID          string `json:"userId"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	userID, err := callerOrSelf(r, req.UserID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Password updated successfully",
	})
}
