// Package domain contains the core data types for the CampEase client.
// This package has zero dependencies on the wire or storage layers and is
// imported by every other internal package (api, store, session, booking,
// notify).
package domain

// Role is the authorization role carried by a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the identity half of a session, as returned by the backend on
// login/register and by GET /profile.
type User struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	DisplayName string            `json:"name"`
	Role        Role              `json:"role"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// Session binds a validated user identity to its bearer token.
// Exactly one session is active per client at a time; it is persisted to the
// local credential store on every mutation and destroyed on logout or failed
// token validation.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// IsAdmin reports whether the session's user carries the admin role.
func (s Session) IsAdmin() bool {
	return s.User.Role == RoleAdmin
}
