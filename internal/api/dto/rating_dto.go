package dto

import "time"

// SubmitRatingRequest payload.
type SubmitRatingRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// RatingResponse is the view of a submitted rating.
type RatingResponse struct {
	ID          string    `json:"id"`
	ExchangeID  string    `json:"exchange_id"`
	AuthorID    string    `json:"author_id"`
	RecipientID string    `json:"recipient_id"`
	Score       int       `json:"score"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReputationResponse is the derived aggregate for a user.
type ReputationResponse struct {
	UserID  string  `json:"user_id"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}
