package events

import (
	"time"

	"github.com/spec-kit/exchange-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventExchangeProposed  EventType = "exchange_proposed"
	EventExchangeConfirmed EventType = "exchange_confirmed"
	EventExchangeStarted   EventType = "exchange_started"
	EventExchangeCompleted EventType = "exchange_completed"
	EventExchangeCancelled EventType = "exchange_cancelled"
	EventRatingSubmitted   EventType = "rating_submitted"
	EventMessageAdded      EventType = "exchange_message_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ExchangeID string      `json:"exchange_id"`
	ActorID    string      `json:"actor_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// ExchangeProposedPayload payload.
type ExchangeProposedPayload struct {
	ServiceID            string  `json:"service_id"`
	RequesterID          string  `json:"requester_id"`
	ProviderID           string  `json:"provider_id"`
	CounterpartServiceID *string `json:"counterpart_service_id,omitempty"`
	EstimatedCredits     int     `json:"estimated_credits"`
}

// ExchangeStatusPayload payload for confirm/start/cancel transitions.
type ExchangeStatusPayload struct {
	OldStatus domain.ExchangeStatus `json:"old_status"`
	NewStatus domain.ExchangeStatus `json:"new_status"`
}

// ExchangeCompletedPayload payload.
type ExchangeCompletedPayload struct {
	RequesterID    string `json:"requester_id"`
	ProviderID     string `json:"provider_id"`
	SettledCredits int    `json:"settled_credits"`
}

// RatingSubmittedPayload payload.
type RatingSubmittedPayload struct {
	RatingID    string `json:"rating_id"`
	RecipientID string `json:"recipient_id"`
	Score       int    `json:"score"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	MessageID   string `json:"message_id"`
	AuthorID    string `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}
