package models

import (
	"fmt"
	"strings"
)

// Visibility controls whether a blog post is shown on the public site.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility normalizes raw visibility input.
func ParseVisibility(raw string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(raw))); v {
	case VisibilityPublic, VisibilityPrivate:
		return v, nil
	default:
		return "", fmt.Errorf("invalid visibility %q", raw)
	}
}

// VisibilityFromPublished maps the admin form's published toggle.
func VisibilityFromPublished(published bool) Visibility {
	if published {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

func (v Visibility) String() string {
	return string(v)
}
