package models

import "time"

// User is a dashboard account. Watchlists hang off users; the scraping core
// never touches this type.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	SessionToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActive   time.Time `json:"lastActive"`
}
