package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphenRuns   = regexp.MustCompile(`-+`)
)

// GenerateSlug turns free text into a URL slug: lowercase, hyphens for
// spaces, a-z0-9- only, no repeated or dangling hyphens.
func GenerateSlug(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	hyphenated := strings.ReplaceAll(lower, " ", "-")
	cleaned := slugInvalidChars.ReplaceAllString(hyphenated, "")
	normalized := slugHyphenRuns.ReplaceAllString(cleaned, "-")
	return strings.Trim(normalized, "-")
}

// SubdirectorySlug builds the executive-education subdirectory slug format
// from an organization key and a course title.
func SubdirectorySlug(orgKey, title string) string {
	return fmt.Sprintf("executive-education/%s", GenerateSlug(orgKey+" "+title))
}

// NextAvailableSlug returns base if unused, otherwise base-2, base-3, ...
// taken is consulted through the callback so callers can scope the lookup
// (per partner) and see slugs claimed earlier in the same batch.
func NextAvailableSlug(base string, taken func(string) bool) string {
	slug := base
	counter := 2

	for taken(slug) {
		slug = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}

	return slug
}
