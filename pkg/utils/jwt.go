package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/adwola-api/internal/transfer"
)

const tokenLeeway = 30 * time.Second

var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier resolves a bearer token to the claims of its user.
type TokenVerifier interface {
	Verify(tokenString string) (*transfer.AuthClaims, error)
}

type tokenVerifier struct {
	parser  *jwt.Parser
	keyfunc jwt.Keyfunc
}

// NewHMACVerifier accepts HS256 tokens signed with the provider's shared secret.
func NewHMACVerifier(secretKey string) TokenVerifier {
	return &tokenVerifier{
		parser: jwt.NewParser(
			jwt.WithLeeway(tokenLeeway),
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		),
		keyfunc: func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
	}
}

// NewJWKSVerifier accepts asymmetric tokens whose keys are published at jwksURL.
func NewJWKSVerifier(jwksURL string) (TokenVerifier, error) {
	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}

	return &tokenVerifier{
		parser: jwt.NewParser(
			jwt.WithLeeway(tokenLeeway),
			jwt.WithValidMethods([]string{
				jwt.SigningMethodRS256.Name,
				jwt.SigningMethodES256.Name,
				jwt.SigningMethodRS384.Name,
				jwt.SigningMethodRS512.Name,
			}),
		),
		keyfunc: keyProvider.Keyfunc,
	}, nil
}

func (v *tokenVerifier) Verify(tokenString string) (*transfer.AuthClaims, error) {
	token, err := v.parser.ParseWithClaims(tokenString, &transfer.AuthClaims{}, v.keyfunc)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	claims, ok := token.Claims.(*transfer.AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}

	return claims, nil
}

// GenerateToken signs an HS256 token for userID. It is used for local
// development and tests; production tokens come from the auth provider.
func GenerateToken(secretKey, userID string, tokenDuration time.Duration) (string, error) {
	claims := transfer.AuthClaims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "adwola",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secretKey))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return signedToken, nil
}

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
