package models

import "time"

// SharedContext holds the run-scoped and subscriber-scoped synthesis
// sections that frame the per-unit research cards in a digest.
type SharedContext struct {
	News      string `json:"news"`
	Overview  string `json:"overview"`
	Risk      string `json:"risk"`
	Timeframe string `json:"timeframe"`
}

// Digest is a fully composed email for one subscriber.
type Digest struct {
	SubscriberID string    `json:"subscriber_id"`
	To           string    `json:"to"`
	Subject      string    `json:"subject"`
	HTMLBody     string    `json:"html_body"`
	TextBody     string    `json:"text_body"`
	CardCount    int       `json:"card_count"`
	ComposedAt   time.Time `json:"composed_at"`
}
