package blog

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"blogdesk/internal/models"
)

// ErrMissingID is returned when an edit or delete targets a record without an id.
var ErrMissingID = errors.New("blog id is missing")

var imageURLPattern = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|gif|webp|svg)(\?.*)?$`)

// ValidationError reports the first draft field that blocks submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Draft is an editable copy of a blog record. Editing never touches the
// canonical record it was created from.
type Draft struct {
	ID           string `json:"id,omitempty" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Description  string `json:"description" yaml:"description"`
	ImageURL     string `json:"image_url,omitempty" yaml:"image_url"`
	ImageFile    string `json:"image_file,omitempty" yaml:"image_file"`
	Date         string `json:"date" yaml:"date"`
	AuthorName   string `json:"author" yaml:"author"`
	Department   string `json:"department" yaml:"department"`
	ExternalLink string `json:"link" yaml:"link"`
	Published    bool   `json:"published" yaml:"published"`
}

// NewDraft returns an empty draft dated today.
func NewDraft(now time.Time) Draft {
	return Draft{Date: now.Format(models.SubmissionDateLayout)}
}

// DraftFromBlog prepares a record for editing.
func DraftFromBlog(b models.Blog) (Draft, error) {
	if strings.TrimSpace(b.ID) == "" {
		return Draft{}, ErrMissingID
	}
	description := b.Description
	if description == "" {
		description = b.Summary
	}
	department := b.Author.Department
	if department == models.DefaultAuthorDept {
		department = ""
	}
	image := b.ImageURL
	if image == models.DefaultImageURL {
		image = ""
	}
	return Draft{
		ID:           b.ID,
		Title:        b.Title,
		Description:  description,
		ImageURL:     image,
		Date:         b.PublishedAt.Format(models.SubmissionDateLayout),
		AuthorName:   b.Author.Name,
		Department:   department,
		ExternalLink: b.ExternalLink,
		Published:    b.Visibility == models.VisibilityPublic,
	}, nil
}

// Validate checks required fields in form order and returns the first failure.
func (d Draft) Validate() error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return &ValidationError{Field: "title", Message: "Blog title is required."}
	case strings.TrimSpace(d.ImageFile) == "" && !IsImageURL(d.ImageURL):
		return &ValidationError{Field: "image", Message: "Blog featured image is required (upload or valid image link)."}
	case strings.TrimSpace(d.Date) == "":
		return &ValidationError{Field: "date", Message: "Blog publication date is required."}
	case strings.TrimSpace(d.AuthorName) == "":
		return &ValidationError{Field: "author", Message: "Blog author is required."}
	case strings.TrimSpace(d.Department) == "":
		return &ValidationError{Field: "department", Message: "Blog department is required."}
	case strings.TrimSpace(d.Description) == "":
		return &ValidationError{Field: "description", Message: "Meta description is required."}
	}
	return nil
}

// IsImageURL reports whether raw is an http(s) link to an image file.
func IsImageURL(raw string) bool {
	return imageURLPattern.MatchString(strings.TrimSpace(raw))
}

// AuthorJSON encodes the author the way the blog API stores it.
func (d Draft) AuthorJSON() string {
	author := models.Author{Name: d.AuthorName, Department: d.departmentOrDefault()}
	data, _ := json.Marshal(author)
	return string(data)
}

// FormFields returns the multipart text fields for a create or update.
func (d Draft) FormFields() map[string]string {
	approval, _ := json.Marshal(models.Approval{Status: true, ApprovedBy: models.DefaultApprovedBy})
	return map[string]string{
		"title":      d.Title,
		"author":     d.AuthorJSON(),
		"blogLink":   d.ExternalLink,
		"desc":       d.Description,
		"summary":    d.Description,
		"date":       d.Date,
		"visibility": models.VisibilityFromPublished(d.Published).String(),
		"category":   d.departmentOrDefault(),
		"approval":   string(approval),
	}
}

// ApplyAutofill fills the draft from extracted article data. Fields the
// result does not carry keep their current value.
func (d Draft) ApplyAutofill(result models.AutofillResult) Draft {
	if result.Title != "" {
		d.Title = result.Title
	}
	if result.Author != "" {
		d.AuthorName = result.Author
	}
	if result.Description != "" {
		d.Description = result.Description
	}
	if result.Thumbnail != "" {
		d.ImageURL = result.Thumbnail
		d.ImageFile = ""
	}
	if result.PublishedDate != "" {
		if parsed, ok := ParseDate(result.PublishedDate); ok {
			d.Date = parsed.Format(models.SubmissionDateLayout)
		}
	}
	return d
}

// ApplySummary replaces the description with a generated summary.
func (d Draft) ApplySummary(summary string) Draft {
	if strings.TrimSpace(summary) != "" {
		d.Description = summary
	}
	return d
}

func (d Draft) departmentOrDefault() string {
	if strings.TrimSpace(d.Department) == "" {
		return models.DefaultDraftDept
	}
	return d.Department
}
