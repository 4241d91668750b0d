package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subops/console-realtime/internal/cache"
	"github.com/subops/console-realtime/internal/core/domain"
	"github.com/subops/console-realtime/internal/core/mocks"
	"github.com/subops/console-realtime/internal/notify"
)

func TestUserRefresher_RefreshUser(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the cached profile", func(t *testing.T) {
		store := cache.NewStore(testLogger())
		store.Set(cache.KeyUser, &domain.Profile{ID: 1, Username: "stale"})

		mockAPI := mocks.NewMockProfileAPI()
		mockAPI.On("Me", ctx).Return(&domain.Profile{ID: 1, Username: "fresh"}, nil)

		refresher := notify.NewUserRefresher(store, mockAPI, testLogger())
		require.NoError(t, refresher.RefreshUser(ctx))

		v, ok := store.Peek(cache.KeyUser)
		require.True(t, ok)
		assert.Equal(t, "fresh", v.(*domain.Profile).Username)
	})

	t.Run("fetch failure leaves the entry invalid", func(t *testing.T) {
		store := cache.NewStore(testLogger())
		store.Set(cache.KeyUser, &domain.Profile{ID: 1, Username: "stale"})

		mockAPI := mocks.NewMockProfileAPI()
		mockAPI.On("Me", ctx).Return(nil, errors.New("backend down"))

		refresher := notify.NewUserRefresher(store, mockAPI, testLogger())
		require.Error(t, refresher.RefreshUser(ctx))

		_, ok := store.Peek(cache.KeyUser)
		assert.False(t, ok)
	})
}
