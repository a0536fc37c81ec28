package mail_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dom/coinshelf/internal/config"
	"github.com/dom/coinshelf/internal/mail"
	"github.com/dom/coinshelf/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposer_PasswordReset(t *testing.T) {
	c := mail.NewComposer("https://mycoinshelf.com")
	msg := c.PasswordReset("ann@example.com", "https://mycoinshelf.com/?token=abc")

	html, text, err := c.Render(msg)
	require.NoError(t, err)

	assert.Equal(t, "Reset your CoinShelf password", msg.Subject)
	assert.Contains(t, html, "https://mycoinshelf.com/?token=abc")
	assert.Contains(t, text, "https://mycoinshelf.com/?token=abc")
	assert.Contains(t, text, "expires in one hour")
}

type captured struct {
	mu   sync.Mutex
	form map[string]string
	path string
}

func fakeMailgun(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			require.ErrorIs(t, err, http.ErrNotMultipart)
		}
		c.mu.Lock()
		c.path = r.URL.Path
		c.form = map[string]string{}
		for k, v := range r.PostForm {
			c.form[k] = strings.Join(v, ",")
		}
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"id":"<1@mg.example>","message":"Queued. Thank you."}`))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func testConfig(apiBase string) *config.Config {
	return &config.Config{
		FrontendURL:    "https://mycoinshelf.com",
		MailgunDomain:  "mg.example",
		MailgunAPIKey:  "key-test",
		MailgunAPIBase: apiBase,
		MailFrom:       "CoinShelf <no-reply@mg.example>",
	}
}

func TestMailgunMailer_SendWelcome(t *testing.T) {
	srv, got := fakeMailgun(t, http.StatusOK)
	m := metrics.New()
	mailer := mail.NewMailgunMailer(testConfig(srv.URL+"/v3"), m.MailSent)

	require.NoError(t, mailer.SendWelcome(context.Background(), "ann@example.com"))

	assert.Equal(t, "/v3/mg.example/messages", got.path)
	assert.Equal(t, "ann@example.com", got.form["to"])
	assert.Equal(t, "Welcome to CoinShelf", got.form["subject"])
	assert.Contains(t, got.form["html"], "Welcome to CoinShelf!")
	assert.NotEmpty(t, got.form["text"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailSent.WithLabelValues(mail.TemplateWelcome, "success")))
}

func TestMailgunMailer_SendFailure(t *testing.T) {
	srv, _ := fakeMailgun(t, http.StatusUnauthorized)
	m := metrics.New()
	mailer := mail.NewMailgunMailer(testConfig(srv.URL+"/v3"), m.MailSent)

	err := mailer.SendPasswordChanged(context.Background(), "ann@example.com")
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailSent.WithLabelValues(mail.TemplatePasswordChanged, "error")))
}

func TestNew_FallsBackToLogMailer(t *testing.T) {
	mailer := mail.New(&config.Config{}, nil)
	_, ok := mailer.(mail.LogMailer)
	require.True(t, ok)
	assert.ErrorIs(t, mailer.SendWelcome(context.Background(), "a@b.c"), mail.ErrMailDisabled)
}
