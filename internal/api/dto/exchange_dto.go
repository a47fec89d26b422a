package dto

import (
	"time"

	"github.com/spec-kit/exchange-service/internal/domain"
)

// ProposeExchangeRequest payload.
type ProposeExchangeRequest struct {
	ServiceID            string  `json:"service_id"`
	CounterpartServiceID *string `json:"counterpart_service_id"`
	Hours                int     `json:"hours"`
}

// ExchangeResponse is the full exchange view for participants.
type ExchangeResponse struct {
	ID                   string                `json:"id"`
	ServiceID            string                `json:"service_id"`
	RequesterID          string                `json:"requester_id"`
	ProviderID           string                `json:"provider_id"`
	CounterpartServiceID *string               `json:"counterpart_service_id"`
	Status               domain.ExchangeStatus `json:"status"`
	Hours                int                   `json:"hours"`
	AgreedCredits        *int                  `json:"agreed_credits"`
	SettledAt            *time.Time            `json:"settled_at"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body string `json:"body"`
}

// MessageResponse represents a thread entry.
type MessageResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
