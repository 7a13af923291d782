package dto

import (
	"time"

	"github.com/spec-kit/quote-service/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffLoginResponse returns the issued token and capability set.
type StaffLoginResponse struct {
	Token        string              `json:"token"`
	ExpiresAt    time.Time           `json:"expires_at"`
	StaffID      string              `json:"staff_id"`
	Name         string              `json:"name"`
	Role         domain.StaffRole    `json:"role"`
	Capabilities []domain.Capability `json:"capabilities"`
}
