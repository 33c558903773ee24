// Package slug derives URL-safe identifiers from titles and names.
package slug

import (
	"regexp"
	"strings"
)

var nonAlphanumericRun = regexp.MustCompile(`[^a-z0-9]+`)

// Generate lowercases s, replaces each run of characters outside [a-z0-9]
// with a single hyphen and trims hyphens from both ends.
// Example: "Rosa Canina! (rossa)" → "rosa-canina-rossa"
func Generate(s string) string {
	result := nonAlphanumericRun.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(result, "-")
}

// Resolve returns explicit when it is non-empty, otherwise the slug derived
// from source.
func Resolve(explicit, source string) string {
	if explicit != "" {
		return explicit
	}
	return Generate(source)
}
