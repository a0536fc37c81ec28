package handlers

import (
	"net/http"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type RegisterResponse struct {
	Message          string       `json:"message"`
	User             UserResponse `json:"user"`
	WelcomeEmailSent bool         `json:"welcome_email_sent"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "auth.Register", err)
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, "auth.Register", err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Message:          "User registered successfully",
		User:             newUserResponse(result.User),
		WelcomeEmailSent: result.WelcomeEmailSent,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "auth.Login", err)
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "auth.Login", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, "auth.Me", err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Email: u.Email}
}
