package dto

import "time"

// ServiceRequest payload for catalog create/update.
type ServiceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	HourlyPrice int    `json:"hourly_price"`
}

// ServiceResponse is the catalog view of an offering.
type ServiceResponse struct {
	ID          string    `json:"id"`
	ProviderID  string    `json:"provider_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HourlyPrice int       `json:"hourly_price"`
	CreatedAt   time.Time `json:"created_at"`
}
