package service

import (
	"github.com/spec-kit/exchange-service/internal/domain"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// ProposalDraft is the output of a successful pre-admission check.
type ProposalDraft struct {
	Service            *domain.Service
	CounterpartService *domain.Service
	Hours              int
	EstimatedCredits   int
}

// ValidateProposal checks a proposed exchange before it is admitted
// into the state machine. It never mutates state. The balance check is
// a soft pre-check only; the ledger re-validates at completion, since
// price and duration may be renegotiated before confirmation.
func ValidateProposal(requester *domain.User, target *domain.Service, counterpart *domain.Service, hours int) (*ProposalDraft, error) {
	if target == nil {
		return nil, apperrors.NewValidationError("requested service does not exist", nil)
	}
	if target.ProviderID == requester.ID {
		return nil, apperrors.NewValidationError("cannot request your own service", map[string]any{
			"service_id": target.ID,
		})
	}
	if hours <= 0 {
		return nil, apperrors.NewValidationError("hours must be positive", map[string]any{"hours": hours})
	}
	if counterpart != nil && counterpart.ProviderID != requester.ID {
		return nil, apperrors.NewValidationError("counterpart service must belong to the requester", map[string]any{
			"counterpart_service_id": counterpart.ID,
		})
	}

	estimated := target.HourlyPrice * hours
	if requester.Credits < estimated {
		return nil, apperrors.NewValidationError("estimated cost exceeds current balance", map[string]any{
			"estimated_credits": estimated,
			"balance":           requester.Credits,
		})
	}

	return &ProposalDraft{
		Service:            target,
		CounterpartService: counterpart,
		Hours:              hours,
		EstimatedCredits:   estimated,
	}, nil
}
