package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/repositories"
)

// PostgresAccountRepository implements the AccountRepository interface
type PostgresAccountRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(config *RepositoryConfig) repositories.AccountRepository {
	return &PostgresAccountRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const accountColumns = `id, email, name, image, social_type, delivery_token, remind_cycle, created_at, updated_at`

// Create creates a new account
func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.RemindCycle == 0 {
		account.RemindCycle = models.DefaultRemindCycleDays
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, name, image, social_type, delivery_token, remind_cycle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Accounts)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		account.ID,
		account.Email,
		account.Name,
		account.Image,
		account.SocialType,
		account.DeliveryToken,
		account.RemindCycle,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("account '%s': %w", account.Email, domain.ErrConflict)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *PostgresAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, accountColumns, r.tables.Accounts)
	return r.scanAccount(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id), id)
}

// GetByEmail retrieves an account by email; (nil, nil) when absent
func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1`, accountColumns, r.tables.Accounts)

	account, err := r.scanAccount(GetExecutor(ctx, r.pool).QueryRow(ctx, query, email), email)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// Update persists profile and delivery-token changes
func (r *PostgresAccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, image = $2, delivery_token = $3, remind_cycle = $4, updated_at = $5
		WHERE id = $6
	`, r.tables.Accounts)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		account.Name,
		account.Image,
		account.DeliveryToken,
		account.RemindCycle,
		time.Now(),
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresAccountRepository) scanAccount(row interface{ Scan(...interface{}) error }, key string) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.Name, &a.Image, &a.SocialType,
		&a.DeliveryToken, &a.RemindCycle, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("account %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}
