// Package mocks provides testify mocks for the core ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/subops/console-realtime/internal/core/domain"
)

// MockCacheInvalidator is a mock implementation of ports.CacheInvalidator
type MockCacheInvalidator struct {
	mock.Mock
}

func NewMockCacheInvalidator() *MockCacheInvalidator {
	return &MockCacheInvalidator{}
}

func (m *MockCacheInvalidator) Invalidate(keys ...string) {
	m.Called(keys)
}

// MockUserRefresher is a mock implementation of ports.UserRefresher
type MockUserRefresher struct {
	mock.Mock
}

func NewMockUserRefresher() *MockUserRefresher {
	return &MockUserRefresher{}
}

func (m *MockUserRefresher) RefreshUser(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockToastPresenter is a mock implementation of ports.ToastPresenter
type MockToastPresenter struct {
	mock.Mock
}

func NewMockToastPresenter() *MockToastPresenter {
	return &MockToastPresenter{}
}

func (m *MockToastPresenter) Show(toast domain.Toast) string {
	args := m.Called(toast)
	return args.String(0)
}

// MockModalPresenter is a mock implementation of ports.ModalPresenter
type MockModalPresenter struct {
	mock.Mock
}

func NewMockModalPresenter() *MockModalPresenter {
	return &MockModalPresenter{}
}

func (m *MockModalPresenter) Show(outcome domain.SuccessOutcome) {
	m.Called(outcome)
}

// MockNotificationAPI is a mock implementation of ports.NotificationAPI
type MockNotificationAPI struct {
	mock.Mock
}

func NewMockNotificationAPI() *MockNotificationAPI {
	return &MockNotificationAPI{}
}

func (m *MockNotificationAPI) UnreadCount(ctx context.Context, admin bool) (int, error) {
	args := m.Called(ctx, admin)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationAPI) Notifications(ctx context.Context, admin bool, limit int) ([]domain.TicketNotification, error) {
	args := m.Called(ctx, admin, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketNotification), args.Error(1)
}

func (m *MockNotificationAPI) MarkRead(ctx context.Context, admin bool, notificationID int64) error {
	args := m.Called(ctx, admin, notificationID)
	return args.Error(0)
}

func (m *MockNotificationAPI) MarkAllRead(ctx context.Context, admin bool) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

// MockProfileAPI is a mock implementation of ports.ProfileAPI
type MockProfileAPI struct {
	mock.Mock
}

func NewMockProfileAPI() *MockProfileAPI {
	return &MockProfileAPI{}
}

func (m *MockProfileAPI) Me(ctx context.Context) (*domain.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
