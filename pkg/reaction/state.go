// Package reaction implements optimistic like/dislike updates with server
// reconciliation and a per-item cooldown.
package reaction

import (
	"github.com/studentstore/storefront-client/pkg/api"
)

// State is the reaction state of one post as the UI sees it.
// At most one reaction per user per item.
type State struct {
	LikesCount    int              `json:"likes_count"`
	DislikesCount int              `json:"dislikes_count"`
	UserReaction  api.ReactionType `json:"user_reaction,omitempty"` // empty = none
}

// Apply returns the optimistic state after the user places kind:
// toggling the same reaction removes it, switching moves one count to the
// other, both counts adjusted within the same transition.
func (s State) Apply(kind api.ReactionType) State {
	next := s

	switch {
	case s.UserReaction == kind:
		// Toggle off
		next.decrement(kind)
		next.UserReaction = ""
	case s.UserReaction == "":
		// New reaction
		next.increment(kind)
		next.UserReaction = kind
	default:
		// Switch
		next.decrement(s.UserReaction)
		next.increment(kind)
		next.UserReaction = kind
	}

	return next
}

// Reconcile recomputes the state from the server-reported outcome applied
// to the pre-optimistic state. Counts derive from the action rather than
// the optimistic guess, so a mismatch self-heals on response.
func Reconcile(prior State, kind api.ReactionType, action api.ReactionAction) State {
	next := prior

	switch action {
	case api.ReactionAdded:
		next.increment(kind)
		next.UserReaction = kind
	case api.ReactionRemoved:
		next.decrement(kind)
		next.UserReaction = ""
	case api.ReactionUpdated:
		if prior.UserReaction != "" && prior.UserReaction != kind {
			next.decrement(prior.UserReaction)
		}
		next.increment(kind)
		next.UserReaction = kind
	}

	return next
}

func (s *State) increment(kind api.ReactionType) {
	switch kind {
	case api.ReactionLike:
		s.LikesCount++
	case api.ReactionDislike:
		s.DislikesCount++
	}
}

func (s *State) decrement(kind api.ReactionType) {
	switch kind {
	case api.ReactionLike:
		if s.LikesCount > 0 {
			s.LikesCount--
		}
	case api.ReactionDislike:
		if s.DislikesCount > 0 {
			s.DislikesCount--
		}
	}
}
