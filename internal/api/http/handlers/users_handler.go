package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exchange-service/internal/api/dto"
	"github.com/spec-kit/exchange-service/internal/auth"
	"github.com/spec-kit/exchange-service/internal/service"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

// UsersHandler exposes auth and profile endpoints.
type UsersHandler struct {
	auth    *service.AuthService
	ratings *service.RatingService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, ratingService *service.RatingService) *UsersHandler {
	return &UsersHandler{auth: authService, ratings: ratingService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	user, token, exp, err := h.auth.RegisterUser(c.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Location: req.Location,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.LoginUser(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, skills, err := h.auth.Profile(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}

	skillItems := make([]dto.SkillResponse, 0, len(skills))
	for _, skill := range skills {
		skillItems = append(skillItems, dto.SkillResponse{ID: skill.ID, Name: skill.Name})
	}
	return c.JSON(fiber.Map{"data": dto.ProfileResponse{
		User:   userResponse(user),
		Skills: skillItems,
	}})
}

// Reputation handles GET /users/:id/reputation.
func (h *UsersHandler) Reputation(c *fiber.Ctx) error {
	rep, err := h.ratings.AggregateFor(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ReputationResponse{
		UserID:  rep.UserID,
		Count:   rep.Count,
		Average: rep.Average,
	}})
}

// Ratings handles GET /users/:id/ratings.
func (h *UsersHandler) Ratings(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	ratings, err := h.ratings.ListForRecipient(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.RatingResponse, 0, len(ratings))
	for i := range ratings {
		items = append(items, ratingResponse(&ratings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListUsers handles GET /admin/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	users, err := h.auth.ListUsers(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
