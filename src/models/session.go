package models

import "time"

// Session is an anonymous browser session, created the first time a client
// asks for a CSRF token. It is not tied to a login; the access token cookie
// is what identifies the user.
type Session struct {
	ID        string    `db:"id"`
	CSRFToken string    `db:"csrf_token"`
	ExpiresAt time.Time `db:"expires_at"`
}
