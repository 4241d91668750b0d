// Package notify contains the consumers of the realtime bus: the generic
// notification router and the ticket bell.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/subops/console-realtime/internal/cache"
	"github.com/subops/console-realtime/internal/core/domain"
	"github.com/subops/console-realtime/internal/core/ports"
	"github.com/subops/console-realtime/internal/realtime"
)

// longToastDuration keeps warnings and errors on screen longer than the
// store default.
const longToastDuration = 10 * time.Second

// Fallback copy used when the server sends no message/reason/description.
const (
	fallbackAutopayFailed   = "Automatic payment could not be completed"
	fallbackAccountBanned   = "Your account has been blocked"
	fallbackAccountUnbanned = "Your account has been unblocked"
	fallbackAccountWarning  = "Please check your account"
	fallbackExpired         = "Your subscription has expired. Renew to restore access."
	fallbackTrafficReset    = "Your traffic counter has been reset"
	fallbackReferralJoined  = "Someone joined with your referral link"
)

// Router decides, per event type, the user-visible effect: a toast, the
// success modal, or cache invalidation only. It deliberately ignores the
// ticket event family, which the ticket bell owns exclusively, so ticket
// notifications are never shown twice.
type Router struct {
	cache  ports.CacheInvalidator
	toasts ports.ToastPresenter
	modal  ports.ModalPresenter
	user   ports.UserRefresher
	logger *slog.Logger
}

func NewRouter(
	invalidator ports.CacheInvalidator,
	toasts ports.ToastPresenter,
	modal ports.ModalPresenter,
	user ports.UserRefresher,
	logger *slog.Logger,
) *Router {
	return &Router{
		cache:  invalidator,
		toasts: toasts,
		modal:  modal,
		user:   user,
		logger: logger.With("component", "notification_router"),
	}
}

// Bind subscribes the router to the bus and returns its unsubscribe
// function.
func (r *Router) Bind(bus *realtime.Bus) func() {
	return bus.Subscribe(r.Handle)
}

// Handle routes one decoded message.
func (r *Router) Handle(ctx context.Context, msg domain.Message) {
	if msg.IsTicket() {
		// Owned by the ticket bell.
		return
	}

	switch msg.Type {
	case domain.EventBalanceTopup:
		r.modal.Show(domain.SuccessOutcome{
			Kind:             domain.OutcomeBalanceTopup,
			AmountKopeks:     msg.Amount(),
			NewBalanceKopeks: newBalance(msg),
		})
		r.cache.Invalidate(cache.KeyBalance, cache.KeyTransactions)
		r.refreshUser(ctx)

	case domain.EventBalanceChange:
		toastType := domain.ToastSuccess
		if msg.Amount() < 0 {
			toastType = domain.ToastInfo
		}
		text := msg.Description
		if text == "" {
			text = msg.Amount().Signed()
		}
		r.toasts.Show(domain.Toast{
			Type:    toastType,
			Title:   "Balance updated",
			Message: text,
			Icon:    "💰",
		})
		r.cache.Invalidate(cache.KeyBalance, cache.KeyTransactions)
		r.refreshUser(ctx)

	case domain.EventSubscriptionActivated:
		r.modal.Show(domain.SuccessOutcome{
			Kind:       domain.OutcomeSubscriptionActivated,
			ExpiresAt:  msg.ExpiresAt,
			TariffName: msg.TariffName,
		})
		r.cache.Invalidate(cache.KeySubscription, cache.KeyBalance)
		r.refreshUser(ctx)

	case domain.EventSubscriptionRenewed:
		r.modal.Show(domain.SuccessOutcome{
			Kind:         domain.OutcomeSubscriptionRenewed,
			AmountKopeks: msg.Amount(),
			NewExpiresAt: msg.NewExpiresAt,
		})
		r.cache.Invalidate(cache.KeySubscription, cache.KeyBalance)
		r.refreshUser(ctx)

	case domain.EventSubscriptionExpiring:
		days := 0
		if msg.DaysLeft != nil {
			days = *msg.DaysLeft
		}
		r.toasts.Show(domain.Toast{
			Type:     domain.ToastWarning,
			Title:    "Subscription expiring",
			Message:  expiringText(days),
			Icon:     "⏳",
			Duration: longToastDuration,
		})

	case domain.EventSubscriptionExpired:
		r.toasts.Show(domain.Toast{
			Type:     domain.ToastError,
			Title:    "Subscription expired",
			Message:  fallbackExpired,
			Icon:     "⛔",
			Duration: longToastDuration,
		})
		r.cache.Invalidate(cache.KeySubscription)
		r.refreshUser(ctx)

	case domain.EventSubscriptionDailyDebit:
		r.toasts.Show(domain.Toast{
			Type:    domain.ToastInfo,
			Title:   "Daily charge",
			Message: fmt.Sprintf("%s charged for today", msg.Amount()),
			Icon:    "📅",
		})
		r.cache.Invalidate(cache.KeyBalance)
		r.refreshUser(ctx)

	case domain.EventSubscriptionTrafficReset:
		r.toasts.Show(domain.Toast{
			Type:    domain.ToastInfo,
			Title:   "Traffic reset",
			Message: fallbackTrafficReset,
			Icon:    "🔄",
		})
		r.cache.Invalidate(cache.KeySubscription)

	case domain.EventSubscriptionDevicesPurchased:
		outcome := domain.SuccessOutcome{
			Kind:         domain.OutcomeDevicesPurchased,
			AmountKopeks: msg.Amount(),
		}
		if msg.DevicesAdded != nil {
			outcome.DevicesAdded = *msg.DevicesAdded
		}
		if msg.NewDeviceLimit != nil {
			outcome.NewDeviceLimit = *msg.NewDeviceLimit
		}
		r.modal.Show(outcome)
		r.cache.Invalidate(cache.KeySubscription, cache.KeyBalance, cache.KeyTransactions)
		r.refreshUser(ctx)

	case domain.EventAutopaySuccess:
		r.toasts.Show(domain.Toast{
			Type:    domain.ToastSuccess,
			Title:   "Auto-payment",
			Message: fmt.Sprintf("Auto-payment of %s completed", msg.Amount()),
			Icon:    "✅",
		})
		r.cache.Invalidate(cache.KeySubscription, cache.KeyBalance)
		r.refreshUser(ctx)

	case domain.EventAutopayFailed:
		text := msg.Reason
		if text == "" {
			text = fallbackAutopayFailed
		}
		r.toasts.Show(domain.Toast{
			Type:     domain.ToastError,
			Title:    "Auto-payment failed",
			Message:  text,
			Icon:     "❌",
			Duration: longToastDuration,
		})

	case domain.EventAutopayInsufficientFunds:
		r.toasts.Show(domain.Toast{
			Type:     domain.ToastWarning,
			Title:    "Insufficient funds",
			Message:  fmt.Sprintf("Auto-payment needs %s, balance is %s", msg.Required(), msg.Balance()),
			Icon:     "⚠️",
			Duration: longToastDuration,
		})

	case domain.EventAccountBanned:
		text := msg.Reason
		if text == "" {
			text = fallbackAccountBanned
		}
		r.toasts.Show(domain.Toast{
			Type:     domain.ToastError,
			Title:    "Account blocked",
			Message:  text,
			Icon:     "🚫",
			Duration: longToastDuration,
		})
		r.refreshUser(ctx)

	case domain.EventAccountUnbanned:
		r.toasts.Show(domain.Toast{
			Type:    domain.ToastSuccess,
			Title:   "Account unblocked",
			Message: fallbackAccountUnbanned,
			Icon:    "🎉",
		})
		r.refreshUser(ctx)

	case domain.EventAccountWarning:
		text := msg.Text
		if text == "" {
			text = fallbackAccountWarning
		}
		r.toasts.Show(domain.Toast{
			Type:     domain.ToastWarning,
			Title:    "Warning",
			Message:  text,
			Icon:     "⚠️",
			Duration: longToastDuration,
		})

	case domain.EventReferralBonus:
		text := fmt.Sprintf("You received %s", msg.Bonus())
		if msg.ReferralName != "" {
			text = fmt.Sprintf("You received %s for %s", msg.Bonus(), msg.ReferralName)
		}
		r.toasts.Show(domain.Toast{
			Type:    domain.ToastSuccess,
			Title:   "Referral bonus",
			Message: text,
			Icon:    "🎁",
		})
		r.cache.Invalidate(cache.KeyBalance, cache.KeyReferralStats)
		r.refreshUser(ctx)

	case domain.EventReferralRegistered:
		text := fallbackReferralJoined
		if msg.ReferralName != "" {
			text = fmt.Sprintf("%s joined with your referral link", msg.ReferralName)
		}
		r.toasts.Show(domain.Toast{
			Type:    domain.ToastSuccess,
			Title:   "New referral",
			Message: text,
			Icon:    "👥",
		})
		r.cache.Invalidate(cache.KeyReferralStats)

	case domain.EventPaymentReceived:
		r.toasts.Show(domain.Toast{
			Type:    domain.ToastSuccess,
			Title:   "Payment received",
			Message: fmt.Sprintf("Payment of %s received", msg.Amount()),
			Icon:    "💳",
		})
		r.cache.Invalidate(cache.KeyBalance, cache.KeyTransactions)
		r.refreshUser(ctx)

	default:
		// Forward-compatible: unknown event types decode fine and simply
		// have no routing entry yet.
		r.logger.Debug("no route for event type", "event_type", msg.Type)
	}
}

func (r *Router) refreshUser(ctx context.Context) {
	if err := r.user.RefreshUser(ctx); err != nil {
		r.logger.Warn("user refresh failed", "error", err)
	}
}

func newBalance(msg domain.Message) domain.Kopeks {
	if msg.NewBalanceKopeks != nil {
		return domain.Kopeks(*msg.NewBalanceKopeks)
	}
	return 0
}

func expiringText(days int) string {
	switch days {
	case 1:
		return "Your subscription expires tomorrow"
	default:
		return fmt.Sprintf("Your subscription expires in %d days", days)
	}
}
