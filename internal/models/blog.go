package models

import "time"

const (
	DefaultTitle         = "Untitled Blog"
	DefaultImageURL      = "https://via.placeholder.com/300x180"
	DefaultExternalLink  = "https://medium.com/@fedkiit"
	DefaultAuthorName    = "Unknown"
	DefaultAuthorDept    = "N/A"
	DefaultDraftDept     = "General"
	DefaultApprovedBy    = "System"
	DisplayDateLayout    = "02-01-2006"
	SubmissionDateLayout = "2006-01-02"
)

// Author identifies who wrote a blog post.
type Author struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Blog is the canonical blog record. Every field is populated once a record
// has passed through normalization.
type Blog struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Summary      string     `json:"summary"`
	ImageURL     string     `json:"image_url"`
	PublishedAt  time.Time  `json:"published_at"`
	Author       Author     `json:"author"`
	ExternalLink string     `json:"external_link"`
	Visibility   Visibility `json:"visibility"`
	Category     string     `json:"category"`
}

// Approval is the moderation stamp stored alongside a blog post.
type Approval struct {
	Status     bool   `json:"status"`
	ApprovedBy string `json:"approvedBy"`
}
