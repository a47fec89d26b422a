package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/repository"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// CatalogService serves catalog reads for the exchange core and the
// owner-guarded CRUD around it. Reads are never cached: confirmed
// exchanges snapshot the price instead of trusting a later read.
type CatalogService struct {
	services repository.ServiceRepository
}

// ServiceInput describes a catalog create/update payload.
type ServiceInput struct {
	Title       string
	Description string
	HourlyPrice int
}

// NewCatalogService constructs the service.
func NewCatalogService(services repository.ServiceRepository) *CatalogService {
	return &CatalogService{services: services}
}

// Lookup fetches a service by id.
func (s *CatalogService) Lookup(ctx context.Context, serviceID string) (*domain.Service, error) {
	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": serviceID})
		}
		return nil, err
	}
	return service, nil
}

// ListByProvider returns a provider's offerings.
func (s *CatalogService) ListByProvider(ctx context.Context, providerID string) ([]domain.Service, error) {
	return s.services.ListByProvider(ctx, providerID)
}

// List returns a page of the catalog.
func (s *CatalogService) List(ctx context.Context, limit, offset int) ([]domain.Service, error) {
	return s.services.List(ctx, limit, offset)
}

// Create registers a new offering owned by the caller.
func (s *CatalogService) Create(ctx context.Context, providerID string, input ServiceInput) (*domain.Service, error) {
	if err := validateServiceInput(input); err != nil {
		return nil, err
	}
	service := &domain.Service{
		ProviderID:  providerID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		HourlyPrice: input.HourlyPrice,
	}
	if err := s.services.Create(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}

// Update edits an offering. Only the owner or an admin may edit.
func (s *CatalogService) Update(ctx context.Context, actorID string, actorRole domain.Role, serviceID string, input ServiceInput) (*domain.Service, error) {
	service, err := s.Lookup(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if service.ProviderID != actorID && actorRole != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only the owner may edit this service")
	}
	if err := validateServiceInput(input); err != nil {
		return nil, err
	}

	service.Title = strings.TrimSpace(input.Title)
	service.Description = strings.TrimSpace(input.Description)
	service.HourlyPrice = input.HourlyPrice
	if err := s.services.Update(ctx, service); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": serviceID})
		}
		return nil, err
	}
	return service, nil
}

// Delete removes an offering. Dependent exchanges follow the schema's
// cascade rules: requested-service rows go, counterpart references null.
func (s *CatalogService) Delete(ctx context.Context, actorID string, actorRole domain.Role, serviceID string) error {
	service, err := s.Lookup(ctx, serviceID)
	if err != nil {
		return err
	}
	if service.ProviderID != actorID && actorRole != domain.RoleAdmin {
		return apperrors.NewForbidden("only the owner may delete this service")
	}
	if err := s.services.Delete(ctx, serviceID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("service", map[string]any{"service_id": serviceID})
		}
		return err
	}
	return nil
}

func validateServiceInput(input ServiceInput) error {
	title := strings.TrimSpace(input.Title)
	if n := utf8.RuneCountInString(title); n < 3 || n > 100 {
		return apperrors.NewValidationError("title must be between 3 and 100 characters", nil)
	}
	description := strings.TrimSpace(input.Description)
	if n := utf8.RuneCountInString(description); n < 10 || n > 600 {
		return apperrors.NewValidationError("description must be between 10 and 600 characters", nil)
	}
	if input.HourlyPrice < domain.MinHourlyPrice || input.HourlyPrice > domain.MaxHourlyPrice {
		return apperrors.NewValidationError("hourly price must be between 1 and 10 credits", map[string]any{
			"hourly_price": input.HourlyPrice,
		})
	}
	return nil
}
