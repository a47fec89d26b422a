package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exchange-service/internal/api/dto"
	"github.com/spec-kit/exchange-service/internal/auth"
	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/service"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// ExchangesHandler exposes the exchange lifecycle endpoints.
type ExchangesHandler struct {
	exchanges *service.ExchangeService
	messages  *service.MessageService
	ratings   *service.RatingService
}

// NewExchangesHandler constructs handler.
func NewExchangesHandler(exchangeService *service.ExchangeService, messageService *service.MessageService, ratingService *service.RatingService) *ExchangesHandler {
	return &ExchangesHandler{exchanges: exchangeService, messages: messageService, ratings: ratingService}
}

// Propose handles POST /exchanges.
func (h *ExchangesHandler) Propose(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ProposeExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ServiceID == "" {
		return apperrors.NewValidationError("service_id required", nil)
	}

	exchange, err := h.exchanges.Propose(c.Context(), principal.User.ID, service.ProposeInput{
		ServiceID:            req.ServiceID,
		CounterpartServiceID: req.CounterpartServiceID,
		Hours:                req.Hours,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": exchangeResponse(exchange)})
}

// List handles GET /exchanges.
func (h *ExchangesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := parsePagination(c)
	exchanges, err := h.exchanges.ListForUser(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.ExchangeResponse, 0, len(exchanges))
	for i := range exchanges {
		items = append(items, exchangeResponse(&exchanges[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /exchanges/:id.
func (h *ExchangesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	exchange, err := h.exchanges.GetForUser(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": exchangeResponse(exchange)})
}

// Confirm handles POST /exchanges/:id/confirm.
func (h *ExchangesHandler) Confirm(c *fiber.Ctx) error {
	return h.transition(c, h.exchanges.Confirm)
}

// Start handles POST /exchanges/:id/start.
func (h *ExchangesHandler) Start(c *fiber.Ctx) error {
	return h.transition(c, h.exchanges.Start)
}

// Complete handles POST /exchanges/:id/complete.
func (h *ExchangesHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.exchanges.Complete)
}

// Cancel handles POST /exchanges/:id/cancel.
func (h *ExchangesHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.exchanges.Cancel)
}

// AddMessage handles POST /exchanges/:id/messages.
func (h *ExchangesHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	message, err := h.messages.AddMessage(c.Context(), principal.User.ID, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(message)})
}

// ListMessages handles GET /exchanges/:id/messages.
func (h *ExchangesHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := parsePagination(c)
	messages, err := h.messages.ListMessages(c.Context(), principal.User.ID, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, messageResponse(&messages[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SubmitRating handles POST /exchanges/:id/ratings.
func (h *ExchangesHandler) SubmitRating(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SubmitRatingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	rating, err := h.ratings.SubmitRating(c.Context(), principal.User.ID, service.RatingInput{
		ExchangeID: c.Params("id"),
		Score:      req.Score,
		Comment:    req.Comment,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ratingResponse(rating)})
}

func (h *ExchangesHandler) transition(c *fiber.Ctx, op func(ctx context.Context, exchangeID, actorID string) (*domain.Exchange, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	exchange, err := op(c.Context(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": exchangeResponse(exchange)})
}
