package notify_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subops/console-realtime/internal/core/domain"
	"github.com/subops/console-realtime/internal/core/mocks"
	"github.com/subops/console-realtime/internal/notify"
	"github.com/subops/console-realtime/internal/realtime"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func newRouterFixture() (*notify.Router, *mocks.MockCacheInvalidator, *mocks.MockToastPresenter, *mocks.MockModalPresenter, *mocks.MockUserRefresher) {
	mockCache := mocks.NewMockCacheInvalidator()
	mockToasts := mocks.NewMockToastPresenter()
	mockModal := mocks.NewMockModalPresenter()
	mockUser := mocks.NewMockUserRefresher()
	router := notify.NewRouter(mockCache, mockToasts, mockModal, mockUser, testLogger())
	return router, mockCache, mockToasts, mockModal, mockUser
}

func TestRouter_BalanceTopup(t *testing.T) {
	ctx := context.Background()
	router, mockCache, mockToasts, mockModal, mockUser := newRouterFixture()

	mockModal.On("Show", domain.SuccessOutcome{
		Kind:             domain.OutcomeBalanceTopup,
		AmountKopeks:     50000,
		NewBalanceKopeks: 150000,
	}).Return()
	mockCache.On("Invalidate", []string{"balance", "transactions"}).Return()
	mockUser.On("RefreshUser", ctx).Return(nil)

	router.Handle(ctx, domain.Message{
		Type:             domain.EventBalanceTopup,
		AmountKopeks:     int64Ptr(50000),
		NewBalanceKopeks: int64Ptr(150000),
	})

	mockModal.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockUser.AssertExpectations(t)

	// A modal outcome never also creates a toast.
	mockToasts.AssertNotCalled(t, "Show", mock.Anything)
}

func TestRouter_SubscriptionExpiring(t *testing.T) {
	ctx := context.Background()
	router, mockCache, mockToasts, mockModal, mockUser := newRouterFixture()

	var shown domain.Toast
	mockToasts.On("Show", mock.AnythingOfType("domain.Toast")).
		Run(func(args mock.Arguments) {
			shown = args.Get(0).(domain.Toast)
		}).
		Return("toast-1")

	router.Handle(ctx, domain.Message{
		Type:     domain.EventSubscriptionExpiring,
		DaysLeft: intPtr(3),
	})

	mockToasts.AssertExpectations(t)
	assert.Equal(t, domain.ToastWarning, shown.Type)
	assert.Contains(t, shown.Message, "3 days")
	assert.GreaterOrEqual(t, shown.Duration, 8*time.Second)

	// Expiring warnings touch nothing else.
	mockCache.AssertNotCalled(t, "Invalidate", mock.Anything)
	mockModal.AssertNotCalled(t, "Show", mock.Anything)
	mockUser.AssertNotCalled(t, "RefreshUser", mock.Anything)
}

func TestRouter_BalanceChange(t *testing.T) {
	ctx := context.Background()

	t.Run("positive amount is a success toast", func(t *testing.T) {
		router, mockCache, mockToasts, _, mockUser := newRouterFixture()

		var shown domain.Toast
		mockToasts.On("Show", mock.AnythingOfType("domain.Toast")).
			Run(func(args mock.Arguments) { shown = args.Get(0).(domain.Toast) }).
			Return("toast-1")
		mockCache.On("Invalidate", []string{"balance", "transactions"}).Return()
		mockUser.On("RefreshUser", ctx).Return(nil)

		router.Handle(ctx, domain.Message{
			Type:         domain.EventBalanceChange,
			AmountKopeks: int64Ptr(2500),
		})

		assert.Equal(t, domain.ToastSuccess, shown.Type)
		assert.Equal(t, "+25.00 ₽", shown.Message)
	})

	t.Run("negative amount is an info toast", func(t *testing.T) {
		router, mockCache, mockToasts, _, mockUser := newRouterFixture()

		var shown domain.Toast
		mockToasts.On("Show", mock.AnythingOfType("domain.Toast")).
			Run(func(args mock.Arguments) { shown = args.Get(0).(domain.Toast) }).
			Return("toast-1")
		mockCache.On("Invalidate", []string{"balance", "transactions"}).Return()
		mockUser.On("RefreshUser", ctx).Return(nil)

		router.Handle(ctx, domain.Message{
			Type:         domain.EventBalanceChange,
			AmountKopeks: int64Ptr(-2500),
		})

		assert.Equal(t, domain.ToastInfo, shown.Type)
	})

	t.Run("server description wins over generated text", func(t *testing.T) {
		router, mockCache, mockToasts, _, mockUser := newRouterFixture()

		var shown domain.Toast
		mockToasts.On("Show", mock.AnythingOfType("domain.Toast")).
			Run(func(args mock.Arguments) { shown = args.Get(0).(domain.Toast) }).
			Return("toast-1")
		mockCache.On("Invalidate", mock.Anything).Return()
		mockUser.On("RefreshUser", ctx).Return(nil)

		router.Handle(ctx, domain.Message{
			Type:         domain.EventBalanceChange,
			AmountKopeks: int64Ptr(2500),
			Description:  "Promo credit",
		})

		assert.Equal(t, "Promo credit", shown.Message)
	})
}

func TestRouter_ModalOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("subscription renewed", func(t *testing.T) {
		router, mockCache, _, mockModal, mockUser := newRouterFixture()

		mockModal.On("Show", domain.SuccessOutcome{
			Kind:         domain.OutcomeSubscriptionRenewed,
			AmountKopeks: 19900,
			NewExpiresAt: "2026-10-01T00:00:00Z",
		}).Return()
		mockCache.On("Invalidate", []string{"subscription", "balance"}).Return()
		mockUser.On("RefreshUser", ctx).Return(nil)

		router.Handle(ctx, domain.Message{
			Type:         domain.EventSubscriptionRenewed,
			AmountKopeks: int64Ptr(19900),
			NewExpiresAt: "2026-10-01T00:00:00Z",
		})

		mockModal.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("devices purchased", func(t *testing.T) {
		router, mockCache, _, mockModal, mockUser := newRouterFixture()

		mockModal.On("Show", domain.SuccessOutcome{
			Kind:           domain.OutcomeDevicesPurchased,
			AmountKopeks:   5000,
			DevicesAdded:   2,
			NewDeviceLimit: 5,
		}).Return()
		mockCache.On("Invalidate", []string{"subscription", "balance", "transactions"}).Return()
		mockUser.On("RefreshUser", ctx).Return(nil)

		router.Handle(ctx, domain.Message{
			Type:           domain.EventSubscriptionDevicesPurchased,
			AmountKopeks:   int64Ptr(5000),
			DevicesAdded:   intPtr(2),
			NewDeviceLimit: intPtr(5),
		})

		mockModal.AssertExpectations(t)
	})
}

func TestRouter_FallbackCopy(t *testing.T) {
	ctx := context.Background()

	t.Run("autopay failure without reason uses literal fallback", func(t *testing.T) {
		router, _, mockToasts, _, _ := newRouterFixture()

		var shown domain.Toast
		mockToasts.On("Show", mock.AnythingOfType("domain.Toast")).
			Run(func(args mock.Arguments) { shown = args.Get(0).(domain.Toast) }).
			Return("toast-1")

		router.Handle(ctx, domain.Message{Type: domain.EventAutopayFailed})

		assert.Equal(t, domain.ToastError, shown.Type)
		assert.Equal(t, "Automatic payment could not be completed", shown.Message)
	})

	t.Run("server reason wins", func(t *testing.T) {
		router, _, mockToasts, _, _ := newRouterFixture()

		var shown domain.Toast
		mockToasts.On("Show", mock.AnythingOfType("domain.Toast")).
			Run(func(args mock.Arguments) { shown = args.Get(0).(domain.Toast) }).
			Return("toast-1")

		router.Handle(ctx, domain.Message{
			Type:   domain.EventAutopayFailed,
			Reason: "Card expired",
		})

		assert.Equal(t, "Card expired", shown.Message)
	})
}

func TestRouter_TrafficResetStillToastsAndInvalidates(t *testing.T) {
	ctx := context.Background()
	router, mockCache, mockToasts, _, mockUser := newRouterFixture()

	mockToasts.On("Show", mock.AnythingOfType("domain.Toast")).Return("toast-1")
	mockCache.On("Invalidate", []string{"subscription"}).Return()

	router.Handle(ctx, domain.Message{Type: domain.EventSubscriptionTrafficReset})

	mockToasts.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockUser.AssertNotCalled(t, "RefreshUser", mock.Anything)
}

func TestRouter_TicketFamilyIsExcluded(t *testing.T) {
	ctx := context.Background()
	router, mockCache, mockToasts, mockModal, mockUser := newRouterFixture()

	for _, eventType := range []string{
		domain.EventTicketNew,
		domain.EventTicketAdminReply,
		domain.EventTicketUserReply,
		"ticket.future_subtype",
	} {
		router.Handle(ctx, domain.Message{Type: eventType, TicketID: int64Ptr(1)})
	}

	mockToasts.AssertNotCalled(t, "Show", mock.Anything)
	mockModal.AssertNotCalled(t, "Show", mock.Anything)
	mockCache.AssertNotCalled(t, "Invalidate", mock.Anything)
	mockUser.AssertNotCalled(t, "RefreshUser", mock.Anything)
}

func TestRouter_UnknownTypeIsIgnored(t *testing.T) {
	ctx := context.Background()
	router, mockCache, mockToasts, mockModal, mockUser := newRouterFixture()

	require.NotPanics(t, func() {
		router.Handle(ctx, domain.Message{Type: "gift.received"})
	})

	mockToasts.AssertNotCalled(t, "Show", mock.Anything)
	mockModal.AssertNotCalled(t, "Show", mock.Anything)
	mockCache.AssertNotCalled(t, "Invalidate", mock.Anything)
	mockUser.AssertNotCalled(t, "RefreshUser", mock.Anything)
}

func TestRouter_OnBusWithTicketBell(t *testing.T) {
	// A ticket event published on the shared bus reaches the ticket bell
	// and produces exactly one toast: the generic router filters the
	// family out, the bell handles it.
	ctx := context.Background()

	mockCache := mocks.NewMockCacheInvalidator()
	mockToasts := mocks.NewMockToastPresenter()
	mockModal := mocks.NewMockModalPresenter()
	mockUser := mocks.NewMockUserRefresher()
	mockAPI := mocks.NewMockNotificationAPI()

	mockToasts.On("Show", mock.AnythingOfType("domain.Toast")).Return("toast-1").Once()
	mockCache.On("Invalidate", []string{"admin-ticket-notifications"}).Return()
	mockAPI.On("UnreadCount", ctx, true).Return(4, nil)

	bus := realtime.NewBus(testLogger())
	router := notify.NewRouter(mockCache, mockToasts, mockModal, mockUser, testLogger())
	bell := notify.NewTicketBell(true, mockAPI, mockCache, mockToasts, nil, testLogger())

	defer router.Bind(bus)()
	defer bell.Bind(bus)()

	bus.Publish(ctx, domain.Message{
		Type:     domain.EventTicketNew,
		TicketID: int64Ptr(9),
		Title:    "Login broken",
	})

	mockToasts.AssertExpectations(t)
	assert.Equal(t, 4, bell.Unread())
	mockModal.AssertNotCalled(t, "Show", mock.Anything)
}
