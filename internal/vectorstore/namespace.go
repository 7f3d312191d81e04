package vectorstore

import (
	"regexp"
	"strings"
)

// UncategorizedNamespace is always present in both indexes.
const UncategorizedNamespace = "uncategorized"

// placeholderPrefix marks namespace-seeding vectors so ListNamespaces can
// filter them back out — they must never be visible to callers.
const placeholderPrefix = "_namespace_init_"

var nonAlphanumericRun = regexp.MustCompile(`[^a-z0-9]+`)

// Namespace derives a namespace string from a category label: lowercase,
// collapse non-alphanumeric runs to a single underscore, trim edge
// underscores. Empty or fully-non-alphanumeric input maps to the reserved
// uncategorized namespace. This is a pure function: two category labels
// that agree case-insensitively modulo non-alphanumerics always derive the
// same namespace.
func Namespace(category string) string {
	lower := strings.ToLower(strings.TrimSpace(category))
	collapsed := nonAlphanumericRun.ReplaceAllString(lower, "_")
	trimmed := strings.Trim(collapsed, "_")
	if trimmed == "" {
		return UncategorizedNamespace
	}
	return trimmed
}

func placeholderID(namespace string) string {
	return placeholderPrefix + namespace
}

func isPlaceholderID(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}
