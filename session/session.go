package session

import (
	"time"
)

// Token is the opaque bearer credential returned by the backend on login.
// It is attached to outbound requests as-is and never inspected beyond
// presence or absence.
type Token string

// Credentials carries what the login form collects. It exists only for the
// duration of a login call and is never persisted.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	BranchCode string `json:"branchCode,omitempty"` // Branch portal only
}

// Principal is the identity and role information about the logged-in user.
// Role is a free-form display string ("Branch Manager", "ADMIN"); it carries
// no authorization weight.
type Principal struct {
	ID         string `json:"id"`                   // Unique identifier for the user
	Username   string `json:"username"`             // Login name
	Name       string `json:"name,omitempty"`       // Display name, synthesized from Username when the backend omits it
	Email      string `json:"email,omitempty"`      // User's email address
	Role       string `json:"role"`                 // Display role string
	CustomerID string `json:"customerId,omitempty"` // Customer portal scope
	BranchID   string `json:"branchId,omitempty"`   // Branch portal scope
}

// Session is the in-memory record proving an authenticated principal.
// A process holds at most one Session at a time; its existence is the sole
// authorization signal.
type Session struct {
	Principal Principal // Who is logged in
	Token     Token     // Opaque bearer credential
	IssuedAt  time.Time // When the session was established; zero when hydrated from storage
}
