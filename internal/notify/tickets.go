package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/subops/console-realtime/internal/cache"
	"github.com/subops/console-realtime/internal/core/domain"
	"github.com/subops/console-realtime/internal/core/ports"
	"github.com/subops/console-realtime/internal/realtime"
)

// TicketBell owns the ticket event family end to end: role-routed toasts,
// the unread counter, and mark-read round-trips. The generic router never
// touches ticket events, so a ticket reply produces exactly one toast.
//
// Role routing: the admin bell reacts to ticket.new and ticket.user_reply;
// the operator bell reacts to ticket.admin_reply.
type TicketBell struct {
	admin    bool
	api      ports.NotificationAPI
	cache    ports.CacheInvalidator
	toasts   ports.ToastPresenter
	navigate func(ticketID int64) // click-through to the ticket screen, may be nil
	logger   *slog.Logger

	mu     sync.Mutex
	unread int
}

func NewTicketBell(
	admin bool,
	api ports.NotificationAPI,
	invalidator ports.CacheInvalidator,
	toasts ports.ToastPresenter,
	navigate func(ticketID int64),
	logger *slog.Logger,
) *TicketBell {
	return &TicketBell{
		admin:    admin,
		api:      api,
		cache:    invalidator,
		toasts:   toasts,
		navigate: navigate,
		logger:   logger.With("component", "ticket_bell", "admin", admin),
	}
}

// Bind subscribes the bell to the bus and returns its unsubscribe function.
func (b *TicketBell) Bind(bus *realtime.Bus) func() {
	return bus.Subscribe(b.Handle)
}

// Handle reacts to ticket events addressed to this bell's role.
func (b *TicketBell) Handle(ctx context.Context, msg domain.Message) {
	if !msg.IsTicket() {
		return
	}

	var title string
	switch msg.Type {
	case domain.EventTicketNew:
		if !b.admin {
			return
		}
		title = "New ticket"
	case domain.EventTicketUserReply:
		if !b.admin {
			return
		}
		title = "New reply in ticket"
	case domain.EventTicketAdminReply:
		if b.admin {
			return
		}
		title = "Support replied"
	default:
		b.logger.Debug("unknown ticket event", "event_type", msg.Type)
		return
	}

	if msg.Title != "" {
		title = title + ": " + msg.Title
	}
	text := msg.Text
	if text == "" {
		text = "Open the ticket to read the message"
	}

	var onClick func()
	if b.navigate != nil && msg.TicketID != nil {
		ticketID := *msg.TicketID
		onClick = func() { b.navigate(ticketID) }
	}

	b.toasts.Show(domain.Toast{
		Type:    domain.ToastInfo,
		Title:   title,
		Message: text,
		Icon:    "📨",
		OnClick: onClick,
	})

	b.cache.Invalidate(b.cacheKey())

	// The counter is server-owned: re-fetch rather than increment.
	if err := b.Refresh(ctx); err != nil {
		b.logger.Warn("unread refresh failed after push", "error", err)
	}
}

// Refresh replaces the local unread count with the server's value. Used as
// the fallback poller's fetch and after each push notification.
func (b *TicketBell) Refresh(ctx context.Context) error {
	count, err := b.api.UnreadCount(ctx, b.admin)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.unread = count
	b.mu.Unlock()
	return nil
}

// Unread returns the last known unread count.
func (b *TicketBell) Unread() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unread
}

// MarkRead marks one notification read server-side, then re-fetches the
// count. The count never decrements locally without the round-trip.
func (b *TicketBell) MarkRead(ctx context.Context, notificationID int64) error {
	if err := b.api.MarkRead(ctx, b.admin, notificationID); err != nil {
		return err
	}
	b.cache.Invalidate(b.cacheKey())
	return b.Refresh(ctx)
}

// MarkAllRead marks every notification read server-side.
func (b *TicketBell) MarkAllRead(ctx context.Context) error {
	if err := b.api.MarkAllRead(ctx, b.admin); err != nil {
		return err
	}
	b.cache.Invalidate(b.cacheKey())
	return b.Refresh(ctx)
}

// Notifications fetches the recent notification list for this bell's role.
func (b *TicketBell) Notifications(ctx context.Context, limit int) ([]domain.TicketNotification, error) {
	return b.api.Notifications(ctx, b.admin, limit)
}

func (b *TicketBell) cacheKey() string {
	if b.admin {
		return cache.KeyAdminTicketNotifications
	}
	return cache.KeyTicketNotifications
}
