package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/events"
	"github.com/spec-kit/exchange-service/internal/observability"
	"github.com/spec-kit/exchange-service/internal/repository"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// ExchangeService governs the exchange lifecycle: proposal through
// settlement. Every transition is permission-checked against the acting
// user and applied with compare-and-swap so concurrent transitions on
// the same exchange resolve to exactly one winner.
type ExchangeService struct {
	exchanges    repository.ExchangeRepository
	services     repository.ServiceRepository
	users        repository.UserRepository
	ledger       repository.LedgerRepository
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	defaultHours int
}

// ExchangeDependencies bundles requirements for the exchange service.
type ExchangeDependencies struct {
	ExchangeRepo repository.ExchangeRepository
	ServiceRepo  repository.ServiceRepository
	UserRepo     repository.UserRepository
	LedgerRepo   repository.LedgerRepository
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	DefaultHours int
}

// ProposeInput describes an exchange proposal.
type ProposeInput struct {
	ServiceID            string
	CounterpartServiceID *string
	Hours                int
}

// NewExchangeService constructs the service.
func NewExchangeService(deps ExchangeDependencies) *ExchangeService {
	defaultHours := deps.DefaultHours
	if defaultHours <= 0 {
		defaultHours = 1
	}
	return &ExchangeService{
		exchanges:    deps.ExchangeRepo,
		services:     deps.ServiceRepo,
		users:        deps.UserRepo,
		ledger:       deps.LedgerRepo,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		defaultHours: defaultHours,
	}
}

// Propose validates and creates a pending exchange. No ledger effect.
func (s *ExchangeService) Propose(ctx context.Context, requesterID string, input ProposeInput) (*domain.Exchange, error) {
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": requesterID})
		}
		return nil, err
	}

	target, err := s.services.GetByID(ctx, input.ServiceID)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}

	var counterpart *domain.Service
	if input.CounterpartServiceID != nil {
		counterpart, err = s.services.GetByID(ctx, *input.CounterpartServiceID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewValidationError("counterpart service does not exist", nil)
			}
			return nil, err
		}
	}

	hours := input.Hours
	if hours <= 0 {
		hours = s.defaultHours
	}

	draft, err := ValidateProposal(requester, target, counterpart, hours)
	if err != nil {
		return nil, err
	}

	exchange := &domain.Exchange{
		ServiceID:            draft.Service.ID,
		RequesterID:          requester.ID,
		ProviderID:           draft.Service.ProviderID,
		CounterpartServiceID: input.CounterpartServiceID,
		Status:               domain.ExchangeStatusPending,
		Hours:                draft.Hours,
	}
	if err := s.exchanges.Create(ctx, exchange); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventExchangeProposed, exchange.ID, requester.ID, events.ExchangeProposedPayload{
		ServiceID:            exchange.ServiceID,
		RequesterID:          exchange.RequesterID,
		ProviderID:           exchange.ProviderID,
		CounterpartServiceID: exchange.CounterpartServiceID,
		EstimatedCredits:     draft.EstimatedCredits,
	})
	return exchange, nil
}

// Confirm moves a pending exchange to confirmado. Only the provider may
// confirm. The credit cost is snapshotted here from the catalog's
// current price and is immutable afterwards.
func (s *ExchangeService) Confirm(ctx context.Context, exchangeID, actorID string) (*domain.Exchange, error) {
	exchange, err := s.getExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if exchange.ProviderID != actorID {
		return nil, apperrors.NewForbidden("only the provider may confirm")
	}
	if exchange.Status != domain.ExchangeStatusPending {
		return nil, apperrors.NewInvalidState("only pending exchanges can be confirmed", map[string]any{
			"current": string(exchange.Status),
		})
	}

	service, err := s.services.GetByID(ctx, exchange.ServiceID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": exchange.ServiceID})
		}
		return nil, err
	}

	cost := service.HourlyPrice * exchange.Hours
	if err := s.exchanges.Confirm(ctx, exchange.ID, exchange.Hours, cost); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventExchangeConfirmed, exchange.ID, actorID, events.ExchangeStatusPayload{
		OldStatus: domain.ExchangeStatusPending,
		NewStatus: domain.ExchangeStatusConfirmed,
	})
	return s.getExchange(ctx, exchangeID)
}

// Start moves a confirmed exchange to en_progreso. Either participant
// may start; there is no ledger effect.
func (s *ExchangeService) Start(ctx context.Context, exchangeID, actorID string) (*domain.Exchange, error) {
	exchange, err := s.getExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if !exchange.Participant(actorID) {
		return nil, apperrors.NewForbidden("only participants may start the exchange")
	}

	if err := s.exchanges.UpdateStatus(ctx, exchange.ID, domain.ExchangeStatusConfirmed, domain.ExchangeStatusInProgress); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventExchangeStarted, exchange.ID, actorID, events.ExchangeStatusPayload{
		OldStatus: domain.ExchangeStatusConfirmed,
		NewStatus: domain.ExchangeStatusInProgress,
	})
	return s.getExchange(ctx, exchangeID)
}

// Complete moves an in-progress exchange to completado and settles the
// snapshotted cost from requester to provider as one atomic effect. On
// insufficient credits nothing is applied and the exchange remains
// en_progreso, so it can be retried or abandoned.
func (s *ExchangeService) Complete(ctx context.Context, exchangeID, actorID string) (*domain.Exchange, error) {
	exchange, err := s.getExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if !exchange.Participant(actorID) {
		return nil, apperrors.NewForbidden("only participants may complete the exchange")
	}
	if exchange.AgreedCredits == nil {
		return nil, apperrors.NewInvalidState("exchange has no agreed cost", map[string]any{
			"current": string(exchange.Status),
		})
	}

	amount := *exchange.AgreedCredits
	err = s.exchanges.Complete(ctx, exchange.ID, func(tx pgx.Tx) error {
		return s.ledger.TransferInTx(ctx, tx, exchange.RequesterID, exchange.ProviderID, amount)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSettlement(amount)
	s.publish(ctx, events.EventExchangeCompleted, exchange.ID, actorID, events.ExchangeCompletedPayload{
		RequesterID:    exchange.RequesterID,
		ProviderID:     exchange.ProviderID,
		SettledCredits: amount,
	})
	return s.getExchange(ctx, exchangeID)
}

// Cancel aborts an exchange from pendiente or confirmado. Nothing has
// been transferred yet, so there is no ledger effect.
func (s *ExchangeService) Cancel(ctx context.Context, exchangeID, actorID string) (*domain.Exchange, error) {
	exchange, err := s.getExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if !exchange.Participant(actorID) {
		return nil, apperrors.NewForbidden("only participants may cancel the exchange")
	}
	if !domain.CanTransition(exchange.Status, domain.ExchangeStatusCancelled) {
		return nil, apperrors.NewInvalidState("exchange can no longer be cancelled", map[string]any{
			"current": string(exchange.Status),
		})
	}

	if err := s.exchanges.UpdateStatus(ctx, exchange.ID, exchange.Status, domain.ExchangeStatusCancelled); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventExchangeCancelled, exchange.ID, actorID, events.ExchangeStatusPayload{
		OldStatus: exchange.Status,
		NewStatus: domain.ExchangeStatusCancelled,
	})
	return s.getExchange(ctx, exchangeID)
}

// GetForUser fetches an exchange ensuring the caller participates.
func (s *ExchangeService) GetForUser(ctx context.Context, userID, exchangeID string) (*domain.Exchange, error) {
	exchange, err := s.getExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if !exchange.Participant(userID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return exchange, nil
}

// ListForUser returns exchanges where the user is a participant.
func (s *ExchangeService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Exchange, error) {
	return s.exchanges.ListForUser(ctx, userID, limit, offset)
}

func (s *ExchangeService) getExchange(ctx context.Context, id string) (*domain.Exchange, error) {
	exchange, err := s.exchanges.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("exchange", map[string]any{"exchange_id": id})
		}
		return nil, err
	}
	return exchange, nil
}

func (s *ExchangeService) publish(ctx context.Context, eventType events.EventType, exchangeID, actorID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ExchangeID: exchangeID,
		ActorID:    actorID,
		Timestamp:  time.Now(),
		Payload:    payload,
	})
}
