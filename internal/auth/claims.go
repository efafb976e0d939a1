package auth

import (
	"time"

	"github.com/mirrorlog/mirrorlog-server/internal/domain"
)

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Issuer    string    `json:"iss"`
	Subject   string    `json:"sub"`
	Audience  string    `json:"aud"`
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// IsAdmin reports whether the token was issued for an admin user.
func (c *AccessClaims) IsAdmin() bool {
	return c.Role == string(domain.RoleAdmin)
}
