package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/gocart-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload is what the caller supplies when minting.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	// JTI links the token to its refresh session. Empty means a random id.
	JTI string
}

func (p AccessTokenPayload) validate() error {
	if p.UserID == uuid.Nil {
		return errors.New("user id is required")
	}
	if !p.Role.IsValid() {
		return fmt.Errorf("invalid user role %q", p.Role)
	}
	return nil
}

func (p AccessTokenPayload) claims() AccessTokenClaims {
	jti := strings.TrimSpace(p.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	return AccessTokenClaims{
		UserID: p.UserID,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: p.UserID.String(),
			ID:      jti,
		},
	}
}

type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
