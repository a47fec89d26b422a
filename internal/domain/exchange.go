package domain

import "time"

// ExchangeStatus enumerates lifecycle states for exchanges. The values
// are the Spanish tokens persisted in the intercambio table.
type ExchangeStatus string

const (
	ExchangeStatusPending    ExchangeStatus = "pendiente"
	ExchangeStatusConfirmed  ExchangeStatus = "confirmado"
	ExchangeStatusInProgress ExchangeStatus = "en_progreso"
	ExchangeStatusCompleted  ExchangeStatus = "completado"
	ExchangeStatusCancelled  ExchangeStatus = "cancelado"
)

// exchangeTransitions is the directed lifecycle graph. Cancellation is
// the only escape and is closed once work has started.
var exchangeTransitions = map[ExchangeStatus][]ExchangeStatus{
	ExchangeStatusPending:    {ExchangeStatusConfirmed, ExchangeStatusCancelled},
	ExchangeStatusConfirmed:  {ExchangeStatusInProgress, ExchangeStatusCancelled},
	ExchangeStatusInProgress: {ExchangeStatusCompleted},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to ExchangeStatus) bool {
	for _, next := range exchangeTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status ExchangeStatus) bool {
	return len(exchangeTransitions[status]) == 0
}

// Exchange is the aggregate for a single service-for-credits transaction
// between a requester and a provider. CounterpartServiceID records an
// optional barter pairing; it is context only and never settled.
type Exchange struct {
	ID                   string
	ServiceID            string
	RequesterID          string
	ProviderID           string
	CounterpartServiceID *string
	Status               ExchangeStatus
	Hours                int
	AgreedCredits        *int
	SettledAt            *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Participant reports whether the given user is one of the two sides.
func (e *Exchange) Participant(userID string) bool {
	return e.RequesterID == userID || e.ProviderID == userID
}

// Counterparty returns the other participant for a given user id.
func (e *Exchange) Counterparty(userID string) string {
	if e.RequesterID == userID {
		return e.ProviderID
	}
	return e.RequesterID
}
