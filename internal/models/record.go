package models

import "time"

// BlogRecord is a blog as the API stores and serves it. Author and Approval
// hold the JSON strings the admin form submits, so list responses carry the
// same loose shapes the normalizer accepts.
type BlogRecord struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"desc"`
	Summary     string    `json:"summary,omitempty"`
	Image       string    `json:"image,omitempty"`
	Date        string    `json:"date,omitempty"`
	Author      string    `json:"author,omitempty"`
	BlogLink    string    `json:"blogLink,omitempty"`
	Visibility  string    `json:"visibility"`
	Category    string    `json:"category,omitempty"`
	Approval    string    `json:"approval,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
