package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dotoriham/backend/internal/domain"
)

// SocialProfile holds the identity claims extracted from a social
// provider's ID token.
type SocialProfile struct {
	Email string
	Name  string
	Image string
}

type socialClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// SocialVerifier validates OIDC ID tokens from a social login provider
// using its published JWKS. Keys are cached and refreshed by keyfunc
// based on HTTP cache headers.
type SocialVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewSocialVerifier creates a verifier for the provider's JWKS endpoint.
func NewSocialVerifier(jwksURL string, logger *slog.Logger) (*SocialVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("create JWKS client: %w", err)
	}

	logger.Info("social verifier initialized", "jwks_url", jwksURL)

	return &SocialVerifier{jwks: jwks, logger: logger}, nil
}

// VerifyIDToken validates an ID token and extracts the profile claims.
func (v *SocialVerifier) VerifyIDToken(idToken string) (*SocialProfile, error) {
	var claims socialClaims
	token, err := jwt.ParseWithClaims(idToken, &claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}))
	if err != nil || !token.Valid {
		v.logger.Debug("social ID token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if claims.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	return &SocialProfile{
		Email: claims.Email,
		Name:  claims.Name,
		Image: claims.Picture,
	}, nil
}
