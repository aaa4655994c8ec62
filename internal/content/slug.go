package content

import (
	"fmt"

	"github.com/goliatone/go-slug"
)

// ProjectSlug returns explicit when it is a valid slug, otherwise a slug
// derived from title. An invalid explicit slug is an error rather than being
// silently rewritten.
func ProjectSlug(explicit, title string) (string, error) {
	if explicit != "" {
		if !slug.IsValid(explicit) {
			return "", fmt.Errorf("slug %q is not URL-safe", explicit)
		}
		return explicit, nil
	}

	normalized, err := slug.Normalize(title)
	if err != nil {
		return "", fmt.Errorf("derive slug from %q: %w", title, err)
	}
	if normalized == "" {
		return "", fmt.Errorf("title %q yields an empty slug", title)
	}
	return normalized, nil
}
