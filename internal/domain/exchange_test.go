package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/exchange-service/internal/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    domain.ExchangeStatus
		to      domain.ExchangeStatus
		allowed bool
	}{
		{"pending to confirmed", domain.ExchangeStatusPending, domain.ExchangeStatusConfirmed, true},
		{"pending to cancelled", domain.ExchangeStatusPending, domain.ExchangeStatusCancelled, true},
		{"pending to in progress", domain.ExchangeStatusPending, domain.ExchangeStatusInProgress, false},
		{"pending to completed", domain.ExchangeStatusPending, domain.ExchangeStatusCompleted, false},
		{"confirmed to in progress", domain.ExchangeStatusConfirmed, domain.ExchangeStatusInProgress, true},
		{"confirmed to cancelled", domain.ExchangeStatusConfirmed, domain.ExchangeStatusCancelled, true},
		{"confirmed to completed", domain.ExchangeStatusConfirmed, domain.ExchangeStatusCompleted, false},
		{"in progress to completed", domain.ExchangeStatusInProgress, domain.ExchangeStatusCompleted, true},
		{"in progress to cancelled", domain.ExchangeStatusInProgress, domain.ExchangeStatusCancelled, false},
		{"completed is terminal", domain.ExchangeStatusCompleted, domain.ExchangeStatusCancelled, false},
		{"cancelled is terminal", domain.ExchangeStatusCancelled, domain.ExchangeStatusConfirmed, false},
		{"no self loop", domain.ExchangeStatusPending, domain.ExchangeStatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, domain.CanTransition(tc.from, tc.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, domain.IsTerminal(domain.ExchangeStatusCompleted))
	assert.True(t, domain.IsTerminal(domain.ExchangeStatusCancelled))
	assert.False(t, domain.IsTerminal(domain.ExchangeStatusPending))
	assert.False(t, domain.IsTerminal(domain.ExchangeStatusConfirmed))
	assert.False(t, domain.IsTerminal(domain.ExchangeStatusInProgress))
}

func TestParticipantAndCounterparty(t *testing.T) {
	exchange := &domain.Exchange{RequesterID: "u-1", ProviderID: "u-2"}

	assert.True(t, exchange.Participant("u-1"))
	assert.True(t, exchange.Participant("u-2"))
	assert.False(t, exchange.Participant("u-3"))

	assert.Equal(t, "u-2", exchange.Counterparty("u-1"))
	assert.Equal(t, "u-1", exchange.Counterparty("u-2"))
}
