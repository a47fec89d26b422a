package domain

import "time"

// Score bounds for ratings.
const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// MaxRatingCommentLen caps free-text comments, matching the column size.
const MaxRatingCommentLen = 300

// Rating is a scored review tied to one exchange and one (author,
// recipient) ordered pair. At most one rating per (exchange, author).
type Rating struct {
	ID          string
	ExchangeID  string
	AuthorID    string
	RecipientID string
	Score       int
	Comment     string
	CreatedAt   time.Time
}

// Reputation is the derived aggregate for a rating recipient. It is a
// rebuildable projection, never authoritative on its own.
type Reputation struct {
	UserID  string  `json:"user_id"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}
