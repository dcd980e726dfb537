package repositories

import (
	"context"

	"github.com/dotoriham/backend/internal/domain/models"
)

// AccountRepository defines data access operations for accounts
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *models.Account) error

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetByEmail retrieves an account by email; returns (nil, nil) when
	// no account exists so sign-up can branch without error plumbing
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// Update persists profile and delivery-token changes
	Update(ctx context.Context, account *models.Account) error
}
