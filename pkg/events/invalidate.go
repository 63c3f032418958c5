package events

import (
	"context"

	"github.com/studentstore/storefront-client/pkg/cache"
	"github.com/studentstore/storefront-client/pkg/logging"
)

// BindInvalidation subscribes cache invalidation to the given topics.
// When an event carries a Resource, only that namespace is cleared;
// otherwise every bound namespace of the topic is. Returns a function
// removing all subscriptions.
func BindInvalidation(bus *Bus, manager *cache.Manager, bindings map[Topic][]string) func() {
	logger := logging.NewLogger("cache-invalidation")

	var unsubscribes []func()
	for topic, namespaces := range bindings {
		namespaces := namespaces
		unsub := bus.Subscribe(topic, func(event Event) {
			targets := namespaces
			if event.Resource != "" {
				targets = []string{event.Resource}
			}
			for _, namespace := range targets {
				if err := manager.Invalidate(context.Background(), namespace); err != nil {
					logger.Warn().
						Err(err).
						Str("topic", string(event.Topic)).
						Str("namespace", namespace).
						Msg("Invalidation failed")
					continue
				}
				logger.Debug().
					Str("topic", string(event.Topic)).
					Str("namespace", namespace).
					Msg("Namespace invalidated")
			}
		})
		unsubscribes = append(unsubscribes, unsub)
	}

	return func() {
		for _, unsub := range unsubscribes {
			unsub()
		}
	}
}
