package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/events"
	"github.com/spec-kit/exchange-service/internal/repository"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// MessageService guards the append-only exchange thread: the exchange
// must exist and the author must be a participant.
type MessageService struct {
	messages   repository.MessageRepository
	exchanges  repository.ExchangeRepository
	dispatcher events.Dispatcher
}

// NewMessageService constructs the service.
func NewMessageService(messages repository.MessageRepository, exchanges repository.ExchangeRepository, dispatcher events.Dispatcher) *MessageService {
	return &MessageService{messages: messages, exchanges: exchanges, dispatcher: dispatcher}
}

// AddMessage appends a message to an exchange thread.
func (s *MessageService) AddMessage(ctx context.Context, authorID, exchangeID, body string) (*domain.ExchangeMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}

	exchange, err := s.exchanges.GetByID(ctx, exchangeID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("exchange", map[string]any{"exchange_id": exchangeID})
		}
		return nil, err
	}
	if !exchange.Participant(authorID) {
		return nil, apperrors.NewForbidden("only participants may post to this exchange")
	}

	message := &domain.ExchangeMessage{
		ExchangeID: exchange.ID,
		AuthorID:   authorID,
		Body:       body,
	}
	if err := s.messages.Append(ctx, message); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		preview := message.Body
		if utf8.RuneCountInString(preview) > 80 {
			preview = string([]rune(preview)[:80])
		}
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:         uuid.NewString(),
			Type:       events.EventMessageAdded,
			ExchangeID: exchange.ID,
			ActorID:    authorID,
			Timestamp:  time.Now(),
			Payload: events.MessageAddedPayload{
				MessageID:   message.ID,
				AuthorID:    authorID,
				BodyPreview: preview,
			},
		})
	}
	return message, nil
}

// ListMessages returns the thread for a participant, oldest first.
func (s *MessageService) ListMessages(ctx context.Context, userID, exchangeID string, limit, offset int) ([]domain.ExchangeMessage, error) {
	exchange, err := s.exchanges.GetByID(ctx, exchangeID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("exchange", map[string]any{"exchange_id": exchangeID})
		}
		return nil, err
	}
	if !exchange.Participant(userID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.messages.ListByExchange(ctx, exchangeID, limit, offset)
}
