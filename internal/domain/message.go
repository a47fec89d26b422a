package domain

import "time"

// ExchangeMessage is an append-only free-text entry on an exchange
// thread. No edit or delete semantics exist.
type ExchangeMessage struct {
	ID         string
	ExchangeID string
	AuthorID   string
	Body       string
	CreatedAt  time.Time
}
