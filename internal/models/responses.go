package models

import "time"

// MessageResponse is the success envelope of operations without a projection.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse carries a freshly issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AvailabilityResponse answers the username/email availability checks.
type AvailabilityResponse struct {
	Available bool `json:"available"`
}
