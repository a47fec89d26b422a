package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/exchange-service/internal/auth"
	"github.com/spec-kit/exchange-service/internal/config"
	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/repository"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// AuthService coordinates registration and login flows. Only the salted
// hash of a password is ever stored.
type AuthService struct {
	users           repository.UserRepository
	skills          repository.SkillRepository
	tokenMgr        *auth.TokenManager
	bcryptCost      int
	startingCredits int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	SkillRepo repository.SkillRepository
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
	Location string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:           deps.UserRepo,
		skills:          deps.SkillRepo,
		tokenMgr:        auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:      cfg.Auth.BcryptCost,
		startingCredits: cfg.Exchange.StartingCredits,
	}
}

// TokenManager exposes the underlying token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterUser creates a new member with the configured starting credits.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if input.Age < domain.MinUserAge || input.Age > domain.MaxUserAge {
		return nil, "", time.Time{}, apperrors.NewValidationError("age must be between 18 and 120", map[string]any{"age": input.Age})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Age:          input.Age,
		Location:     strings.TrimSpace(input.Location),
		Credits:      s.startingCredits,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// LoginUser authenticates a member.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Profile returns a user and their skill tags.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, []domain.Skill, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, nil, err
	}
	skills, err := s.skills.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, skills, nil
}

// ListUsers returns a page of members for the admin panel.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.users.List(ctx, limit, offset)
}
