package users

import (
	"context"
	"strings"
)

// User is the read-only projection of the upstream account attached to each
// request by the session resolver. It is never cached across requests.
type User struct {
	PK              int    `json:"pk,omitempty"`               // Upstream primary key
	UUID            string `json:"uuid,omitempty"`             // Stable public identifier
	Username        string `json:"username,omitempty"`         // Unique username
	Email           string `json:"email,omitempty"`            // User's email address
	FirstName       string `json:"first_name,omitempty"`       // First name of the user
	LastName        string `json:"last_name,omitempty"`        // Last name of the user
	ProfilePic      string `json:"profile_pic,omitempty"`      // Avatar URL
	DateJoined      string `json:"date_joined,omitempty"`      // As reported upstream
	IsStaff         bool   `json:"is_staff,omitempty"`         // Staff flag
	PublicProfile   bool   `json:"public_profile,omitempty"`   // Profile visible to others
	HasPassword     bool   `json:"has_password,omitempty"`     // False for social-only accounts
	DisablePassword bool   `json:"disable_password,omitempty"` // Password login disabled
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

type contextKey struct{}

// NewContext attaches u to ctx. A nil u records an anonymous request.
func NewContext(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the current user or nil when the request is anonymous.
func FromContext(ctx context.Context) *User {
	u, _ := ctx.Value(contextKey{}).(*User)
	return u
}
