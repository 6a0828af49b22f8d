package blog

import (
	"fmt"
	"strings"

	"blogdesk/internal/models"
)

// VisibilitySelector restricts a listing to public, private or all records.
type VisibilitySelector string

const (
	SelectAll     VisibilitySelector = "all"
	SelectPublic  VisibilitySelector = "public"
	SelectPrivate VisibilitySelector = "private"
)

// ParseVisibilitySelector accepts all, public or private. Empty means all.
func ParseVisibilitySelector(raw string) (VisibilitySelector, error) {
	value := VisibilitySelector(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "":
		return SelectAll, nil
	case SelectAll, SelectPublic, SelectPrivate:
		return value, nil
	default:
		return "", fmt.Errorf("invalid visibility filter %q (want all, public or private)", raw)
	}
}

// Allows reports whether a record with visibility v passes the selector.
func (s VisibilitySelector) Allows(v models.Visibility) bool {
	if s == SelectAll || s == "" {
		return true
	}
	return string(s) == string(v)
}

// Filter returns the records that pass sel and match query, in their
// original order. The input slice is never modified.
func Filter(list []models.Blog, query string, sel VisibilitySelector) []models.Blog {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Blog, 0, len(list))
	for _, b := range list {
		if !sel.Allows(b.Visibility) {
			continue
		}
		if needle != "" && !matches(b, needle) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// matches expects needle to be lowercased already.
func matches(b models.Blog, needle string) bool {
	for _, haystack := range []string{b.Title, b.Description, b.Author.Name, string(b.Visibility)} {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}
