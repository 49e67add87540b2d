package transfer

import "github.com/golang-jwt/jwt/v5"

// AuthClaims are the claims of an access token issued by the auth provider.
// The user id is the standard subject claim.
type AuthClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
