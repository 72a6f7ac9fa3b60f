package models

import "time"

// Subscriber is a registered digest recipient with a personal watchlist.
type Subscriber struct {
	ID         string    `json:"id" badgerhold:"key"`
	Name       string    `json:"name" validate:"required"`
	Email      string    `json:"email" validate:"required,email"`
	Assets     []string  `json:"assets"`
	Industries []string  `json:"industries"`
	Active     bool      `json:"active"`
	// SendHour/SendMinute is the subscriber's daily delivery slot in
	// server-local time, used only in serve mode.
	SendHour   int       `json:"send_hour" validate:"gte=0,lte=23"`
	SendMinute int       `json:"send_minute" validate:"gte=0,lte=59"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasWatchlist reports whether the subscriber follows at least one
// asset or industry.
func (s *Subscriber) HasWatchlist() bool {
	return len(s.Assets) > 0 || len(s.Industries) > 0
}
