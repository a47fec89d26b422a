package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/exchange-service/internal/api/dto"
	"github.com/spec-kit/exchange-service/internal/domain"
)

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		Location:  user.Location,
		Credits:   user.Credits,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func serviceResponse(service *domain.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:          service.ID,
		ProviderID:  service.ProviderID,
		Title:       service.Title,
		Description: service.Description,
		HourlyPrice: service.HourlyPrice,
		CreatedAt:   service.CreatedAt,
	}
}

func exchangeResponse(exchange *domain.Exchange) dto.ExchangeResponse {
	return dto.ExchangeResponse{
		ID:                   exchange.ID,
		ServiceID:            exchange.ServiceID,
		RequesterID:          exchange.RequesterID,
		ProviderID:           exchange.ProviderID,
		CounterpartServiceID: exchange.CounterpartServiceID,
		Status:               exchange.Status,
		Hours:                exchange.Hours,
		AgreedCredits:        exchange.AgreedCredits,
		SettledAt:            exchange.SettledAt,
		CreatedAt:            exchange.CreatedAt,
		UpdatedAt:            exchange.UpdatedAt,
	}
}

func ratingResponse(rating *domain.Rating) dto.RatingResponse {
	return dto.RatingResponse{
		ID:          rating.ID,
		ExchangeID:  rating.ExchangeID,
		AuthorID:    rating.AuthorID,
		RecipientID: rating.RecipientID,
		Score:       rating.Score,
		Comment:     rating.Comment,
		CreatedAt:   rating.CreatedAt,
	}
}

func messageResponse(message *domain.ExchangeMessage) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        message.ID,
		AuthorID:  message.AuthorID,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, fallback int) int {
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
