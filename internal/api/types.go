package api

import (
	"encoding/json"
	"time"

	"blogdesk/internal/models"
)

// ErrorResponse is the JSON error body returned by the blog API.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
}

// HealthResponse is the response from GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session issued by a successful login.
type LoginResponse = models.Session

// ListBlogsResponse is the raw list payload. Records are kept raw so the
// normalizer sees every historical shape.
type ListBlogsResponse struct {
	Blogs []json.RawMessage `json:"blogs"`
}

// BlogResponse is returned by create and update.
type BlogResponse struct {
	Message string          `json:"message"`
	Blog    json.RawMessage `json:"blog,omitempty"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// LinkRequest names the article an AI helper should read.
type LinkRequest struct {
	MediumLink string `json:"mediumLink"`
}

// SummaryResponse is the response from POST /api/gemini/summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// AutofillResponse is the response from POST /api/gemini/autofill.
type AutofillResponse = models.AutofillResult

// AdminUser is a provisioned account as the admin endpoints report it.
type AdminUser struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Profile   models.Profile `json:"profile"`
	Disabled  bool           `json:"disabled"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AdminUserCreateRequest is the body of POST /api/admin/users.
type AdminUserCreateRequest struct {
	Profile  models.Profile `json:"profile"`
	Password string         `json:"password"`
}

// AdminUserSetDisabledRequest toggles whether an account may log in.
type AdminUserSetDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// AdminUserDeleteResponse confirms a deleted account.
type AdminUserDeleteResponse struct {
	Email   string `json:"email"`
	Deleted bool   `json:"deleted"`
}
