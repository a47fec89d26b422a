package domain

import "time"

// Hourly price bounds for offered services.
const (
	MinHourlyPrice = 1
	MaxHourlyPrice = 10
)

// Service is an offering listed in the catalog, priced in credits per hour.
type Service struct {
	ID          string
	ProviderID  string
	Title       string
	Description string
	HourlyPrice int
	CreatedAt   time.Time
}
