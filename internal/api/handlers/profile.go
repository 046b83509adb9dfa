package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marcus/code-playground/internal/api/middleware"
	"github.com/marcus/code-playground/internal/domain"
	"github.com/marcus/code-playground/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type UpdateNicknameRequest struct {
	Nickname string `json:"nickname"`
}

// UpdateNickname changes the stored nickname only. The caller's current
// session keeps its issuance-time claims until the next login.
func (h *ProfileHandler) UpdateNickname(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateNicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.profileService.UpdateNickname(r.Context(), identity.ID, req.Nickname)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyNickname) {
			http.Error(w, "Nickname must not be empty", http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
