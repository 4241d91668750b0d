// Package ports defines the interfaces between the realtime core and its
// collaborators: the query cache, the presentation stores and the REST
// boundary of the subscription backend.
package ports

import (
	"context"

	"github.com/subops/console-realtime/internal/core/domain"
)

// CacheInvalidator marks query-cache entries stale so the next read
// re-fetches from the backend. Invalidation is idempotent; invalidating an
// unknown key is a no-op.
type CacheInvalidator interface {
	Invalidate(keys ...string)
}

// UserRefresher re-fetches the authenticated operator's profile after
// events that change it server-side (balance, ban state, subscription).
type UserRefresher interface {
	RefreshUser(ctx context.Context) error
}

// ToastPresenter shows a toast and returns its id.
type ToastPresenter interface {
	Show(toast domain.Toast) string
}

// ModalPresenter shows the singleton success modal for a primary
// financial/subscription outcome.
type ModalPresenter interface {
	Show(outcome domain.SuccessOutcome)
}

// NotificationAPI is the ticket-notification surface of the backend. The
// admin flag selects the admin or operator endpoint variant. Mark-read calls
// are safe to repeat: the server transition is is_read false→true only.
type NotificationAPI interface {
	UnreadCount(ctx context.Context, admin bool) (int, error)
	Notifications(ctx context.Context, admin bool, limit int) ([]domain.TicketNotification, error)
	MarkRead(ctx context.Context, admin bool, notificationID int64) error
	MarkAllRead(ctx context.Context, admin bool) error
}

// ProfileAPI fetches the authenticated operator's profile.
type ProfileAPI interface {
	Me(ctx context.Context) (*domain.Profile, error)
}
