// Package restapi is the REST boundary client for the subscription backend:
// ticket-notification counts and lists, mark-read, and the operator profile.
package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/subops/console-realtime/internal/core/domain"
	apperrors "github.com/subops/console-realtime/internal/core/errors"
)

// Config holds REST client configuration.
type Config struct {
	BaseURL           string
	Token             string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the backend REST API. All requests carry the pre-issued
// bearer token and pass through a client-side rate limiter so a burst of
// push events cannot stampede the backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger.With("component", "restapi"),
	}
}

// UnreadCount fetches the authoritative unread notification count.
func (c *Client) UnreadCount(ctx context.Context, admin bool) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, notificationPath(admin)+"/unread-count", &out); err != nil {
		return 0, fmt.Errorf("fetch unread count: %w", err)
	}
	if out.Count < 0 {
		// never trust a negative count
		out.Count = 0
	}
	return out.Count, nil
}

// Notifications fetches the most recent ticket notifications.
func (c *Client) Notifications(ctx context.Context, admin bool, limit int) ([]domain.TicketNotification, error) {
	var out struct {
		Notifications []domain.TicketNotification `json:"notifications"`
	}
	path := fmt.Sprintf("%s?limit=%d", notificationPath(admin), limit)
	if err := c.do(ctx, http.MethodGet, path, &out); err != nil {
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}
	return out.Notifications, nil
}

// MarkRead marks one notification read. The server-side transition is
// is_read false→true, so repeating the call on a network retry is safe.
func (c *Client) MarkRead(ctx context.Context, admin bool, notificationID int64) error {
	path := fmt.Sprintf("%s/%d/read", notificationPath(admin), notificationID)
	if err := c.do(ctx, http.MethodPost, path, nil); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification read.
func (c *Client) MarkAllRead(ctx context.Context, admin bool) error {
	if err := c.do(ctx, http.MethodPost, notificationPath(admin)+"/read-all", nil); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Me fetches the authenticated operator's profile.
func (c *Client) Me(ctx context.Context) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", &out); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &out, nil
}

func notificationPath(admin bool) string {
	if admin {
		return "/api/v1/admin/notifications"
	}
	return "/api/v1/notifications"
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s %s returned %d", apperrors.ErrUnexpectedStatus, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
