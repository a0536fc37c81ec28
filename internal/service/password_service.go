package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/coinshelf/internal/config"
	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/logger"
	mailer "github.com/dom/coinshelf/internal/mail"
	"github.com/dom/coinshelf/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// ForgotPasswordMessage is returned whether or not the account exists.
const ForgotPasswordMessage = "If an account with that email exists, a password reset link has been sent."

type PasswordService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	mailer    mailer.Mailer
	cfg       *config.Config
	now       func() time.Time
}

func NewPasswordService(userRepo repository.UserRepository, resetRepo repository.PasswordResetRepository, m mailer.Mailer, cfg *config.Config) *PasswordService {
	if m == nil {
		m = mailer.LogMailer{}
	}
	return &PasswordService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		mailer:    m,
		cfg:       cfg,
		now:       time.Now,
	}
}

func validateNewPassword(password string) error {
	if len(password) < MinPasswordLength {
		return domain.Invalidf("new password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

// ChangePassword replaces the password after checking the current one and
// reports whether the notification mail went out. Existing tokens stay valid.
func (s *PasswordService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) (bool, error) {
	if current == "" || next == "" {
		return false, domain.Invalidf("current and new password are required")
	}
	if err := validateNewPassword(next); err != nil {
		return false, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return false, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return false, err
	}

	if err := s.mailer.SendPasswordChanged(ctx, user.Email); err != nil {
		logger.Log.Warn("password changed mail not sent", zap.String("user_id", userID.String()), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// ForgotPassword issues a reset token and mails the link when the account
// exists. Callers must respond identically whatever the outcome.
func (s *PasswordService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Invalidf("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			logger.Log.Error("forgot password lookup failed", zap.Error(err))
		}
		return nil
	}

	now := s.now()
	token := &domain.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.PasswordResetTTL),
	}
	if err := s.resetRepo.Create(ctx, token); err != nil {
		logger.Log.Error("failed to store reset token", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, s.ResetURL(token.Token)); err != nil {
		logger.Log.Warn("password reset mail not sent", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return nil
}

func (s *PasswordService) ResetURL(token string) string {
	return s.cfg.FrontendURL + "/?token=" + token
}

func (s *PasswordService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return domain.Invalidf("token and new password are required")
	}
	if err := validateNewPassword(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.resetRepo.Redeem(ctx, token, s.now(), string(hash))
}
