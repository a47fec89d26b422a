package domain

import "time"

// Role enumerates platform roles stored in the rol table.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "usuario"
)

// Age bounds accepted at registration.
const (
	MinUserAge = 18
	MaxUserAge = 120
)

// User is the domain model for platform members. Credits is mutated
// only by the ledger under exchange-state-machine control.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          int
	Location     string
	Credits      int
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
