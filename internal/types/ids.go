package types

import (
	"github.com/google/uuid"
)

// RequestID identifies one API request for log correlation.
type RequestID string

// APIKeyID identifies a provisioned API key record.
type APIKeyID string

// NewRequestID generates a UUIDv7 request identifier.
// Time-ordered IDs keep request logs sortable by arrival.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRequestID() RequestID {
	return RequestID(uuid.Must(uuid.NewV7()).String())
}

// NewAPIKeyID generates a UUIDv7 API key identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewAPIKeyID() APIKeyID {
	return APIKeyID(uuid.Must(uuid.NewV7()).String())
}

// ParseAPIKeyID validates and converts a string to APIKeyID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseAPIKeyID(s string) (APIKeyID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return APIKeyID(s), nil
}
