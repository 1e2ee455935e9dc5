package service

import (
	"github.com/google/uuid"
)

// TokenService defines the interface for generating and validating API access
// tokens. This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateToken creates a signed access token for a given user.
	GenerateToken(userID uuid.UUID) (string, error)

	// ValidateToken checks a token string and returns the user it was issued to.
	ValidateToken(tokenString string) (uuid.UUID, error)
}
