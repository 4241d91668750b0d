package notify

import (
	"context"
	"log/slog"

	"github.com/subops/console-realtime/internal/cache"
	"github.com/subops/console-realtime/internal/core/ports"
)

// UserRefresher implements the router's "refresh user" effect: drop the
// cached profile and re-fetch it from the backend.
type UserRefresher struct {
	store  *cache.Store
	api    ports.ProfileAPI
	logger *slog.Logger
}

func NewUserRefresher(store *cache.Store, api ports.ProfileAPI, logger *slog.Logger) *UserRefresher {
	return &UserRefresher{
		store:  store,
		api:    api,
		logger: logger.With("component", "user_refresher"),
	}
}

// RefreshUser invalidates the profile entry and re-fetches it.
func (r *UserRefresher) RefreshUser(ctx context.Context) error {
	r.store.Invalidate(cache.KeyUser)
	_, err := r.store.Get(ctx, cache.KeyUser, func(ctx context.Context) (any, error) {
		return r.api.Me(ctx)
	})
	return err
}
