// Package wishlist maintains the user's saved-product membership with
// optimistic updates and a cached membership set.
package wishlist

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/studentstore/storefront-client/pkg/cache"
	"github.com/studentstore/storefront-client/pkg/events"
	"github.com/studentstore/storefront-client/pkg/logging"
	"github.com/studentstore/storefront-client/pkg/reaction"
)

// MembershipTTL is how long the cached membership set stays valid.
const MembershipTTL = 10 * time.Minute

// API is the wishlist capability of the StudentStore client.
// *api.Client implements it.
type API interface {
	ListWishlist(ctx context.Context) ([]string, error)
	AddWishlistItem(ctx context.Context, productID string) error
	RemoveWishlistItem(ctx context.Context, productID string) error
}

// Service holds the local wishlist membership for one signed-in user and
// keeps it in sync with the server. Mutations apply optimistically and
// roll back if the server call fails; every settled change publishes
// TopicWishlistUpdated so other components refresh.
type Service struct {
	api     API
	manager *cache.Manager
	bus     *events.Bus
	userID  string
	logger  zerolog.Logger

	mu      sync.Mutex
	members map[string]struct{}
}

// NewService creates a wishlist service for the given user.
func NewService(apiClient API, manager *cache.Manager, bus *events.Bus, userID string) *Service {
	if apiClient == nil {
		panic("api client cannot be nil")
	}
	return &Service{
		api:     apiClient,
		manager: manager,
		bus:     bus,
		userID:  userID,
		logger:  logging.NewLogger("wishlist"),
		members: make(map[string]struct{}),
	}
}

func (s *Service) cacheKey() cache.Key {
	return cache.Key{
		Namespace: "wishlist",
		Params:    map[string]string{"user": s.userID},
	}
}

// Load populates the membership set, preferring the cached copy and
// falling back to the API.
func (s *Service) Load(ctx context.Context) error {
	var ids []string
	err := s.manager.Get(ctx, s.cacheKey(), &ids)
	if err != nil {
		ids, err = s.api.ListWishlist(ctx)
		if err != nil {
			return err
		}
		_ = s.manager.Set(ctx, s.cacheKey(), ids, MembershipTTL)
	}

	s.mu.Lock()
	s.members = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.members[id] = struct{}{}
	}
	s.mu.Unlock()

	return nil
}

// Contains reports whether a product is in the local membership set.
func (s *Service) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[productID]
	return ok
}

// ProductIDs returns the membership set in stable order.
func (s *Service) ProductIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Add saves a product optimistically: membership flips immediately and
// reverts if the server rejects the call.
func (s *Service) Add(ctx context.Context, productID string) error {
	return s.mutate(ctx, productID, true, s.api.AddWishlistItem)
}

// Remove drops a product optimistically, with rollback on failure.
func (s *Service) Remove(ctx context.Context, productID string) error {
	return s.mutate(ctx, productID, false, s.api.RemoveWishlistItem)
}

func (s *Service) mutate(ctx context.Context, productID string, present bool, commit func(context.Context, string) error) error {
	s.mu.Lock()
	_, was := s.members[productID]
	mutation := reaction.Begin(
		func() { s.setMembership(productID, present) },
		func() { s.setMembership(productID, was) },
	)
	s.mu.Unlock()

	if err := commit(ctx, productID); err != nil {
		s.mu.Lock()
		mutation.Rollback()
		s.mu.Unlock()

		s.logger.Warn().
			Err(err).
			Str("product", productID).
			Bool("add", present).
			Msg("Wishlist update rolled back")
		return err
	}

	s.mu.Lock()
	mutation.Confirm()
	ids := make([]string, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	// Refresh the cached set and notify other components
	_ = s.manager.Set(ctx, s.cacheKey(), ids, MembershipTTL)
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: events.TopicWishlistUpdated})
	}

	return nil
}

// setMembership must be called with the mutex held.
func (s *Service) setMembership(productID string, present bool) {
	if present {
		s.members[productID] = struct{}{}
	} else {
		delete(s.members, productID)
	}
}
