package models

import "time"

// Member access levels.
const (
	AccessMember = "member"
	AccessAdmin  = "admin"
)

// Profile is the member profile returned after login.
type Profile struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Pic      string `json:"pic,omitempty"`
	RollNo   string `json:"rollNo,omitempty"`
	School   string `json:"school,omitempty"`
	College  string `json:"college,omitempty"`
	MobileNo string `json:"mobileNo,omitempty"`
	Year     string `json:"year,omitempty"`
	Access   string `json:"access"`
}

// IsAdmin reports whether the profile may manage blog posts.
func (p Profile) IsAdmin() bool {
	return p.Access == AccessAdmin
}

// Session is an authenticated login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Profile   `json:"user"`
}
