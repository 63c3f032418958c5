// Package search implements client-side re-ranking of an already-fetched
// list against a free-text query, without a server round trip.
package search

import (
	"sort"
	"strings"
)

// Scoring weights. The owner directive dominates all partial text matches,
// and content owned by the directive target outranks a stranger's matching
// content.
const (
	weightOwnerExact     = 100
	weightOwnerContent   = 50
	weightPrimaryHit     = 10
	weightSecondaryHit   = 5
	ownerDirectivePrefix = "user:"
)

// Fields tells the ranker where to look inside an item.
type Fields[T any] struct {
	// Primary is the main text field (e.g. post title, product name).
	Primary func(T) string

	// Secondary is the supporting text field (e.g. author display name).
	Secondary func(T) string

	// Owner is the exact identifier the "user:" directive matches against
	// (e.g. author email). May be nil if the directive is unused.
	Owner func(T) string
}

// Query is a parsed search input.
type Query struct {
	// Owner is the identifier from a "user:<identifier>" directive, if any.
	Owner string

	// Tokens are the remaining free-text terms, lowercased.
	Tokens []string
}

// ParseQuery splits a raw query into the owner directive and free-text
// tokens.
func ParseQuery(raw string) Query {
	var query Query
	for _, field := range strings.Fields(raw) {
		if rest, ok := strings.CutPrefix(field, ownerDirectivePrefix); ok && rest != "" {
			query.Owner = rest
			continue
		}
		query.Tokens = append(query.Tokens, strings.ToLower(field))
	}
	return query
}

// Rank reorders items by relevance to the query. Pure and stable:
// matches sort by score descending (ties broken by distinct matched token
// count descending), items that match nothing keep their original relative
// order and follow all matches. Safe to call on every keystroke; debouncing
// is the caller's concern.
func Rank[T any](items []T, rawQuery string, fields Fields[T]) []T {
	query := ParseQuery(rawQuery)
	if query.Owner == "" && len(query.Tokens) == 0 {
		return append([]T(nil), items...)
	}

	type scored struct {
		item          T
		score         int
		matchedTokens int
	}

	ranked := make([]scored, len(items))
	for i, item := range items {
		score, matched := scoreItem(item, query, fields)
		ranked[i] = scored{item: item, score: score, matchedTokens: matched}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].matchedTokens > ranked[j].matchedTokens
	})

	result := make([]T, len(ranked))
	for i, entry := range ranked {
		result[i] = entry.item
	}
	return result
}

// scoreItem computes one item's score and its distinct matched token count.
func scoreItem[T any](item T, query Query, fields Fields[T]) (int, int) {
	score := 0

	ownerMatch := false
	if query.Owner != "" && fields.Owner != nil {
		ownerMatch = fields.Owner(item) == query.Owner
		if ownerMatch {
			score += weightOwnerExact
		}
	}

	var primary, secondary string
	if fields.Primary != nil {
		primary = strings.ToLower(fields.Primary(item))
	}
	if fields.Secondary != nil {
		secondary = strings.ToLower(fields.Secondary(item))
	}

	matched := 0
	for _, token := range query.Tokens {
		primaryHit := primary != "" && strings.Contains(primary, token)
		secondaryHit := secondary != "" && strings.Contains(secondary, token)
		if !primaryHit && !secondaryHit {
			continue
		}
		matched++

		if ownerMatch {
			// The directive target's own content outranks a stranger's
			score += weightOwnerContent
			continue
		}
		if primaryHit {
			score += weightPrimaryHit
		}
		if secondaryHit {
			score += weightSecondaryHit
		}
	}

	return score, matched
}
