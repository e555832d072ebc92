package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomasvidal/stockpilot-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Tokens are minted by the identity provider in production; the mint helper
// exists for tooling and tests.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	LocationID *uuid.UUID
	Role       enums.ActorRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT presented by callers.
type AccessTokenClaims struct {
	UserID     uuid.UUID       `json:"user_id"`
	LocationID *uuid.UUID      `json:"location_id,omitempty"`
	Role       enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
