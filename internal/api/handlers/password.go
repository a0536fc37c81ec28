package handlers

import (
	"net/http"

	"github.com/dom/coinshelf/internal/service"
)

type PasswordHandler struct {
	passwordService *service.PasswordService
}

func NewPasswordHandler(passwordService *service.PasswordService) *PasswordHandler {
	return &PasswordHandler{passwordService: passwordService}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=128"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,max=128"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ChangePasswordResponse struct {
	Message          string `json:"message"`
	NotificationSent bool   `json:"notification_sent"`
}

func (h *PasswordHandler) Change(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "password.Change", err)
		return
	}

	sent, err := h.passwordService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(w, r, "password.Change", err)
		return
	}

	writeJSON(w, http.StatusOK, ChangePasswordResponse{
		Message:          "Password changed successfully",
		NotificationSent: sent,
	})
}

// Forgot answers the same way whether or not the address is registered.
func (h *PasswordHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "password.Forgot", err)
		return
	}

	if err := h.passwordService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, "password.Forgot", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: service.ForgotPasswordMessage})
}

func (h *PasswordHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "password.Reset", err)
		return
	}

	if err := h.passwordService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, "password.Reset", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password has been reset successfully"})
}
