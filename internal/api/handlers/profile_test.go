package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/coinshelf/internal/testutil"
)

func TestProfileHandler(t *testing.T) {
	ts := testutil.NewTestServer(t)
	e, user := authed(t, ts, "profile@example.com")
	other, _ := authed(t, ts, "other@example.com")

	e.GET("/api/profile").Expect().Status(http.StatusOK).
		JSON().Object().
		HasValue("id", user.ID.String()).
		HasValue("email", "profile@example.com").
		NotContainsKey("password_hash")

	e.PUT("/api/profile").
		WithJSON(map[string]any{"username": "coinfan", "display_name": "Coin Fan", "show_email": true}).
		Expect().Status(http.StatusOK).
		JSON().Object().
		HasValue("username", "coinfan").
		HasValue("display_name", "Coin Fan").
		HasValue("show_email", true).
		HasValue("show_values", true)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		e.PUT("/api/profile").WithJSON(map[string]any{"bio": "Rands mostly"}).
			Expect().Status(http.StatusOK).
			JSON().Object().
			HasValue("username", "coinfan").
			HasValue("bio", "Rands mostly")
	})

	t.Run("username rules", func(t *testing.T) {
		for _, username := range []string{"ab", "has space", "a@b.c", "x/y"} {
			e.PUT("/api/profile").WithJSON(map[string]any{"username": username}).
				Expect().Status(http.StatusBadRequest)
		}
	})

	t.Run("taken username", func(t *testing.T) {
		other.PUT("/api/profile").WithJSON(map[string]any{"username": "coinfan"}).
			Expect().Status(http.StatusConflict)
	})

	t.Run("empty username clears it", func(t *testing.T) {
		e.PUT("/api/profile").WithJSON(map[string]any{"username": ""}).
			Expect().Status(http.StatusOK).
			JSON().Object().Value("username").IsNull()
	})
}
