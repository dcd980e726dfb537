package services

import (
	"context"

	"github.com/dotoriham/backend/internal/domain/models"
)

// AccountService handles account provisioning and profile access
type AccountService interface {
	// SocialLogin signs an existing account in, or registers it and
	// provisions the default folder on first contact
	SocialLogin(ctx context.Context, req *SocialLoginRequest) (*LoginResult, error)

	// GetProfile returns the account's profile
	GetProfile(ctx context.Context, accountID string) (*models.Account, error)

	// RegisterDeliveryToken stores the push delivery token used by
	// reminder subscriptions
	RegisterDeliveryToken(ctx context.Context, accountID, token string) error
}

// SocialLoginRequest carries the verified claims of a social ID token
type SocialLoginRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	SocialType    string `json:"social_type"`
	DeliveryToken string `json:"delivery_token"`
}

// LoginResult is the outcome of a login: the account, a signed access
// token, and whether the account already existed.
type LoginResult struct {
	Account      *models.Account `json:"account"`
	AccessToken  string          `json:"access_token"`
	IsRegistered bool            `json:"is_registered"`
}
