package util

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// GenUUID generates a new UUID string. Used for pipeline run identifiers.
func GenUUID() string {
	return uuid.New().String()
}

// GenShortUUID generates a short, URL-safe unique identifier.
// Used for document UIDs that appear in URLs and filenames.
func GenShortUUID() string {
	return shortuuid.New()
}

// HasPrefixes returns true if the string s has any of the given prefixes.
func HasPrefixes(src string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(src, prefix) {
			return true
		}
	}
	return false
}

// TruncateString truncates s to at most max runes, appending "..." when cut.
func TruncateString(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
