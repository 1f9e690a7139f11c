package models

import "time"

// Session is a server-side login session. Many sessions may exist per
// user; expiry is enforced by queries, expired rows are not reaped
// automatically.
type Session struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ExpirationDate time.Time `json:"expiration_date"`
}
