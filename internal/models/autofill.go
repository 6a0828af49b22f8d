package models

// AutofillResult carries the fields extracted from an external article.
// Every field is optional.
type AutofillResult struct {
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	Description   string `json:"description,omitempty"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
}

// Empty reports whether nothing could be extracted.
func (a AutofillResult) Empty() bool {
	return a.Title == "" && a.Author == "" && a.Description == "" && a.Thumbnail == "" && a.PublishedDate == ""
}
