package restapi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subops/console-realtime/internal/adapters/secondary/restapi"
	apperrors "github.com/subops/console-realtime/internal/core/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *restapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return restapi.New(restapi.Config{
		BaseURL:           server.URL,
		Token:             "test-token",
		RequestTimeout:    2 * time.Second,
		RequestsPerSecond: 100,
		Burst:             10,
	}, testLogger())
}

func TestClient_UnreadCount(t *testing.T) {
	ctx := context.Background()

	t.Run("operator path carries the bearer token", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/v1/notifications/unread-count", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"count": 7}`))
		})

		count, err := client.UnreadCount(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, 7, count)
	})

	t.Run("admin flag switches to the admin path", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/admin/notifications/unread-count", r.URL.Path)
			_, _ = w.Write([]byte(`{"count": 2}`))
		})

		count, err := client.UnreadCount(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("negative count is clamped to zero", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"count": -3}`))
		})

		count, err := client.UnreadCount(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestClient_Notifications(t *testing.T) {
	ctx := context.Background()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notifications", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"notifications": [
			{"id": 1, "ticketId": 10, "title": "VPN down", "isRead": false},
			{"id": 2, "ticketId": 11, "title": "Refund", "isRead": true}
		]}`))
	})

	list, err := client.Notifications(ctx, false, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.EqualValues(t, 10, list[0].TicketID)
	assert.Equal(t, "VPN down", list[0].Title)
	assert.True(t, list[1].IsRead)
}

func TestClient_MarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("posts to the per-notification read endpoint", func(t *testing.T) {
		var gotPath, gotMethod string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotMethod = r.Method
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, client.MarkRead(ctx, true, 42))
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "/api/v1/admin/notifications/42/read", gotPath)
	})

	t.Run("mark all read", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		})

		require.NoError(t, client.MarkAllRead(ctx, false))
		assert.Equal(t, "/api/v1/notifications/read-all", gotPath)
	})
}

func TestClient_Me(t *testing.T) {
	ctx := context.Background()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 77, "username": "operator7", "isAdmin": true, "balanceKopeks": 150000}`))
	})

	profile, err := client.Me(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 77, profile.ID)
	assert.Equal(t, "operator7", profile.Username)
	assert.True(t, profile.IsAdmin)
	assert.EqualValues(t, 150000, profile.BalanceKopeks)
}

func TestClient_ErrorMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("401 maps to ErrUnauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.UnreadCount(ctx, false)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := client.MarkRead(ctx, false, 99)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("other statuses map to ErrUnexpectedStatus", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.Me(ctx)
		assert.ErrorIs(t, err, apperrors.ErrUnexpectedStatus)
	})

	t.Run("malformed body is a decode error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := client.UnreadCount(ctx, false)
		assert.Error(t, err)
	})
}
