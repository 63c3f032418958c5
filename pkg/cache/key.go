package cache

import (
	"fmt"
	"sort"
	"strings"
)

// keyPrefix is the global prefix for all StudentStore cache keys.
const keyPrefix = "studentstore"

// Key identifies a cached payload within a namespace.
type Key struct {
	// Namespace groups related entries (e.g. "posts", "category:42", "profile")
	Namespace string

	// Params are the request parameters that distinguish entries within the
	// namespace (e.g. {"page": "2", "sort": "hot"})
	Params map[string]string
}

// PageKey builds a key for one page of a paginated listing.
func PageKey(namespace string, page int, sort string) Key {
	params := map[string]string{"page": fmt.Sprintf("%d", page)}
	if sort != "" {
		params["sort"] = sort
	}
	return Key{Namespace: namespace, Params: params}
}

// String generates a deterministic cache key string.
// Format: studentstore:namespace:param1=val1:param2=val2
//
// Example:
//
//	studentstore:category:42:page=2:sort=hot
func (k Key) String() string {
	parts := []string{keyPrefix}

	namespace := strings.Trim(k.Namespace, ":")
	if namespace != "" {
		parts = append(parts, namespace)
	}

	// Params sorted for determinism
	if len(k.Params) > 0 {
		names := make([]string, 0, len(k.Params))
		for name := range k.Params {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Params[name]))
		}
	}

	return strings.Join(parts, ":")
}

// NamespacePrefix returns the key prefix shared by every entry in a
// namespace. Used for prefix invalidation and sweeping.
func NamespacePrefix(namespace string) string {
	namespace = strings.Trim(namespace, ":")
	if namespace == "" {
		return keyPrefix + ":"
	}
	return keyPrefix + ":" + namespace + ":"
}
