package handlers

import (
	"net/http"
	"strings"

	"github.com/dom/coinshelf/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateProfileRequest changes only the fields present in the body. An empty
// username clears it.
type UpdateProfileRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Bio         *string `json:"bio" validate:"omitempty,max=1000"`
	ShowEmail   *bool   `json:"show_email"`
	ShowValues  *bool   `json:"show_values"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.profileService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, "profile.GetProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "profile.UpdateProfile", err)
		return
	}
	if req.Username != nil {
		if username := strings.TrimSpace(*req.Username); username != "" {
			if err := validate.Var(username, "min=3,max=30,excludesall= @/"); err != nil {
				http.Error(w, "username must be 3 to 30 characters without spaces, @ or /", http.StatusBadRequest)
				return
			}
		}
	}

	user, err := h.profileService.Update(r.Context(), userID, service.ProfileInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		ShowEmail:   req.ShowEmail,
		ShowValues:  req.ShowValues,
	})
	if err != nil {
		writeError(w, r, "profile.UpdateProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
