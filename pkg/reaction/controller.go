package reaction

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/studentstore/storefront-client/pkg/api"
	"github.com/studentstore/storefront-client/pkg/logging"
)

// Prometheus metrics for reaction operations.
var (
	reactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentstore_reactions_total",
		Help: "Total reaction requests by kind and server outcome",
	}, []string{"kind", "outcome"})

	reactionRollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studentstore_reaction_rollbacks_total",
		Help: "Total optimistic reaction updates rolled back on failure",
	})

	reactionCooldownRejects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studentstore_reaction_cooldown_rejects_total",
		Help: "Total reaction requests rejected by the client-side cooldown",
	})
)

// ErrCooldown is returned when a reaction on the same item arrives within
// the cooldown window. The request is rejected client-side; no state
// changes and nothing is sent.
var ErrCooldown = errors.New("reaction cooldown active")

// Reactor is the API capability the controller needs.
// *api.Client implements it.
type Reactor interface {
	React(ctx context.Context, postID string, kind api.ReactionType) (*api.ReactionResult, error)
}

// Config holds controller configuration.
type Config struct {
	// Cooldown is the minimum interval between reactions on the same item.
	// Bounds the request rate from rapid repeated clicks.
	Cooldown time.Duration
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		Cooldown: 1 * time.Second,
	}
}

// Controller applies reactions optimistically and reconciles them against
// the server outcome.
type Controller struct {
	reactor Reactor
	config  Config
	logger  zerolog.Logger

	mu        sync.Mutex
	states    map[string]State
	lastReact map[string]time.Time
	now       func() time.Time
}

// NewController creates a reaction controller.
func NewController(reactor Reactor, config Config) *Controller {
	if reactor == nil {
		panic("reactor cannot be nil")
	}
	if config.Cooldown <= 0 {
		config.Cooldown = DefaultConfig().Cooldown
	}
	return &Controller{
		reactor:   reactor,
		config:    config,
		logger:    logging.NewLogger("reaction"),
		states:    make(map[string]State),
		lastReact: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Seed installs the server-rendered state for an item, typically from a
// freshly fetched page.
func (c *Controller) Seed(itemID string, state State) {
	c.mu.Lock()
	c.states[itemID] = state
	c.mu.Unlock()
}

// State returns the current local state for an item.
func (c *Controller) State(itemID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[itemID]
}

// React places kind on the item: the local state transitions immediately,
// then the server outcome replaces the optimistic guess.
// The returned state is the settled one (optimistic on success-in-flight
// paths never escapes; on error the prior state is restored and returned).
func (c *Controller) React(ctx context.Context, itemID string, kind api.ReactionType) (State, error) {
	c.mu.Lock()

	if last, ok := c.lastReact[itemID]; ok && c.now().Sub(last) < c.config.Cooldown {
		c.mu.Unlock()
		reactionCooldownRejects.Inc()
		return c.State(itemID), ErrCooldown
	}
	c.lastReact[itemID] = c.now()

	prior := c.states[itemID]
	mutation := Begin(
		func() { c.states[itemID] = prior.Apply(kind) },
		func() { c.states[itemID] = prior },
	)
	c.mu.Unlock()

	result, err := c.reactor.React(ctx, itemID, kind)
	if err != nil {
		c.mu.Lock()
		mutation.Rollback()
		c.mu.Unlock()
		reactionRollbacksTotal.Inc()

		c.logger.Warn().
			Err(err).
			Str("item", itemID).
			Str("kind", string(kind)).
			Msg("Reaction rolled back")
		return prior, err
	}

	// Counts recomputed from the server outcome, not the optimistic guess
	final := Reconcile(prior, kind, result.Action)

	c.mu.Lock()
	mutation.Confirm()
	c.states[itemID] = final
	c.mu.Unlock()

	reactionsTotal.WithLabelValues(string(kind), string(result.Action)).Inc()

	c.logger.Debug().
		Str("item", itemID).
		Str("kind", string(kind)).
		Str("action", string(result.Action)).
		Msg("Reaction settled")

	return final, nil
}
