package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dotoriham/backend/internal/domain"
)

const (
	tokenTypeAccess     = "access"
	tokenTypeInvitation = "invitation"
)

type accessClaims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type invitationClaims struct {
	TokenType  string `json:"token_type"`
	FolderID   string `json:"folder_id"`
	SharedType string `json:"shared_type"`
	jwt.RegisteredClaims
}

// JWTProvider implements TokenProvider with HS256-signed tokens.
type JWTProvider struct {
	secret        []byte
	accessTTL     time.Duration
	invitationTTL time.Duration
	logger        *slog.Logger
}

// NewJWTProvider creates a token provider signing with the given secret.
func NewJWTProvider(secret string, accessTTL, invitationTTL time.Duration, logger *slog.Logger) (*JWTProvider, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &JWTProvider{
		secret:        []byte(secret),
		accessTTL:     accessTTL,
		invitationTTL: invitationTTL,
		logger:        logger,
	}, nil
}

// ResolveAccount validates an access token and returns the account id.
func (p *JWTProvider) ResolveAccount(credential string) (string, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(credential, &claims, p.keyFunc,
		jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		p.logger.Debug("access token rejected", "error", err)
		return "", domain.ErrUnauthorized
	}
	if claims.TokenType != tokenTypeAccess || claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}

// SignAccess issues an access token for the account.
func (p *JWTProvider) SignAccess(accountID string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.accessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// SignInvitation issues a time-limited invitation token.
func (p *JWTProvider) SignInvitation(ic InvitationClaims) (string, error) {
	now := time.Now()
	claims := invitationClaims{
		TokenType:  tokenTypeInvitation,
		FolderID:   ic.FolderID,
		SharedType: ic.SharedType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.invitationTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign invitation token: %w", err)
	}
	return signed, nil
}

// VerifyInvitation decodes an invitation token.
func (p *JWTProvider) VerifyInvitation(token string) (*InvitationClaims, error) {
	var claims invitationClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, p.keyFunc,
		jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		p.logger.Debug("invitation token rejected", "error", err)
		return nil, domain.ErrInvalidInvitation
	}
	if claims.TokenType != tokenTypeInvitation || claims.FolderID == "" {
		return nil, domain.ErrInvalidInvitation
	}
	return &InvitationClaims{
		FolderID:   claims.FolderID,
		SharedType: claims.SharedType,
	}, nil
}

func (p *JWTProvider) keyFunc(t *jwt.Token) (interface{}, error) {
	return p.secret, nil
}
