// Package profile caches the signed-in user's account data, replacing
// repeated profile fetches on every page with a TTL'd read-through.
package profile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/studentstore/storefront-client/pkg/api"
	"github.com/studentstore/storefront-client/pkg/cache"
	"github.com/studentstore/storefront-client/pkg/events"
	"github.com/studentstore/storefront-client/pkg/logging"
)

// ProfileTTL is how long a cached profile stays valid.
const ProfileTTL = 15 * time.Minute

// API is the profile capability of the StudentStore client.
// *api.Client implements it.
type API interface {
	GetProfile(ctx context.Context) (*api.Profile, error)
}

var profileKey = cache.Key{Namespace: "profile"}

// Service is a read-through cache over the profile endpoint.
type Service struct {
	api     API
	manager *cache.Manager
	logger  zerolog.Logger
}

// NewService creates a profile service.
func NewService(apiClient API, manager *cache.Manager) *Service {
	if apiClient == nil {
		panic("api client cannot be nil")
	}
	return &Service{
		api:     apiClient,
		manager: manager,
		logger:  logging.NewLogger("profile"),
	}
}

// Get returns the profile, preferring the cached copy.
func (s *Service) Get(ctx context.Context) (*api.Profile, error) {
	var cached api.Profile
	if err := s.manager.Get(ctx, profileKey, &cached); err == nil {
		return &cached, nil
	}

	fetched, err := s.api.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	_ = s.manager.Set(ctx, profileKey, fetched, ProfileTTL)
	return fetched, nil
}

// Invalidate drops the cached profile, e.g. after the user edited it.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.manager.InvalidateKey(ctx, profileKey)
}

// BindLogout clears the cached profile when the session ends.
// Returns the unsubscribe function.
func (s *Service) BindLogout(bus *events.Bus) func() {
	return bus.Subscribe(events.TopicUserLogout, func(events.Event) {
		if err := s.Invalidate(context.Background()); err != nil {
			s.logger.Warn().Err(err).Msg("Profile invalidation failed")
		}
	})
}
