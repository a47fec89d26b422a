package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exchange-service/internal/api/dto"
	"github.com/spec-kit/exchange-service/internal/auth"
	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/service"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// ServicesHandler exposes the catalog endpoints.
type ServicesHandler struct {
	catalog *service.CatalogService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(catalogService *service.CatalogService) *ServicesHandler {
	return &ServicesHandler{catalog: catalogService}
}

// List handles GET /services.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	if providerID := c.Query("provider_id"); providerID != "" {
		services, err := h.catalog.ListByProvider(c.Context(), providerID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": serviceItems(services)})
	}

	limit, offset := parsePagination(c)
	services, err := h.catalog.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceItems(services)})
}

// Get handles GET /services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	svc, err := h.catalog.Lookup(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// Create handles POST /services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	svc, err := h.catalog.Create(c.Context(), principal.User.ID, service.ServiceInput{
		Title:       req.Title,
		Description: req.Description,
		HourlyPrice: req.HourlyPrice,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": serviceResponse(svc)})
}

// Update handles PUT /services/:id.
func (h *ServicesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	svc, err := h.catalog.Update(c.Context(), principal.User.ID, principal.Role, c.Params("id"), service.ServiceInput{
		Title:       req.Title,
		Description: req.Description,
		HourlyPrice: req.HourlyPrice,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// Delete handles DELETE /services/:id.
func (h *ServicesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.catalog.Delete(c.Context(), principal.User.ID, principal.Role, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func serviceItems(services []domain.Service) []dto.ServiceResponse {
	items := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		items = append(items, serviceResponse(&services[i]))
	}
	return items
}
