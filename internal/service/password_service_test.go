package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/mail/mocks"
	"github.com/dom/coinshelf/internal/repository/postgres"
	"github.com/dom/coinshelf/internal/service"
	"github.com/dom/coinshelf/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPasswordService_ChangePassword(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	ctx := context.Background()

	tests := []struct {
		name     string
		current  func(real string) string
		next     string
		mailErr  error
		wantErr  error
		wantSent bool
	}{
		{
			name:     "changes password and notifies",
			current:  func(real string) string { return real },
			next:     "brand-new-pass",
			wantSent: true,
		},
		{
			name:     "notification failure is reported, not fatal",
			current:  func(real string) string { return real },
			next:     "brand-new-pass",
			mailErr:  errors.New("smtp down"),
			wantSent: false,
		},
		{
			name:    "wrong current password",
			current: func(string) string { return "not-it" },
			next:    "brand-new-pass",
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name:    "new password too short",
			current: func(real string) string { return real },
			next:    "abc",
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)
			user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

			mailer := &mocks.MockMailer{}
			mailer.On("SendPasswordChanged", mock.Anything, user.Email).Return(tt.mailErr).Maybe()
			passwordService := service.NewPasswordService(repos.User, repos.PasswordReset, mailer, cfg)
			authService := service.NewAuthService(repos.User, testutil.NewMockMailer(), cfg)

			sent, err := passwordService.ChangePassword(ctx, user.ID, tt.current(password), tt.next)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, err := authService.Login(ctx, user.Email, password)
				assert.NoError(t, err, "old password must keep working")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSent, sent)

			_, err = authService.Login(ctx, user.Email, tt.next)
			assert.NoError(t, err)
			_, err = authService.Login(ctx, user.Email, password)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}

func TestPasswordService_ForgotAndReset(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithEmail("forgetful@example.com").Build(t, testDB.DB)

	var resetURL string
	mailer := &mocks.MockMailer{}
	mailer.On("SendPasswordReset", mock.Anything, user.Email, mock.Anything).
		Run(func(args mock.Arguments) { resetURL = args.String(2) }).
		Return(nil)

	passwordService := service.NewPasswordService(repos.User, repos.PasswordReset, mailer, cfg)
	authService := service.NewAuthService(repos.User, testutil.NewMockMailer(), cfg)

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		require.NoError(t, passwordService.ForgotPassword(ctx, "stranger@example.com"))
		mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, "stranger@example.com", mock.Anything)
	})

	t.Run("empty email is rejected", func(t *testing.T) {
		assert.ErrorIs(t, passwordService.ForgotPassword(ctx, "  "), domain.ErrInvalidInput)
	})

	t.Run("reset link redeems once", func(t *testing.T) {
		require.NoError(t, passwordService.ForgotPassword(ctx, "Forgetful@Example.com"))
		require.True(t, strings.HasPrefix(resetURL, cfg.FrontendURL+"/?token="), resetURL)
		token := strings.TrimPrefix(resetURL, cfg.FrontendURL+"/?token=")

		require.NoError(t, passwordService.ResetPassword(ctx, token, "after-reset"))
		_, err := authService.Login(ctx, user.Email, "after-reset")
		assert.NoError(t, err)

		err = passwordService.ResetPassword(ctx, token, "second-try")
		assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := &domain.PasswordResetToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			Token:     uuid.NewString(),
			CreatedAt: time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		require.NoError(t, repos.PasswordReset.Create(ctx, expired))

		err := passwordService.ResetPassword(ctx, expired.Token, "too-late-now")
		assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		err := passwordService.ResetPassword(ctx, uuid.NewString(), "whatever-pass")
		assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
	})

	t.Run("short password is rejected before the token is spent", func(t *testing.T) {
		require.NoError(t, passwordService.ForgotPassword(ctx, user.Email))
		token := strings.TrimPrefix(resetURL, cfg.FrontendURL+"/?token=")

		assert.ErrorIs(t, passwordService.ResetPassword(ctx, token, "abc"), domain.ErrInvalidInput)
		assert.NoError(t, passwordService.ResetPassword(ctx, token, "long-enough"))
	})
}
