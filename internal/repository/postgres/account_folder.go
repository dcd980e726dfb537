package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/repositories"
)

// PostgresAccountFolderRepository implements the AccountFolderRepository interface
type PostgresAccountFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAccountFolderRepository creates a new membership repository
func NewAccountFolderRepository(config *RepositoryConfig) repositories.AccountFolderRepository {
	return &PostgresAccountFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a membership row. The (account, root folder) pair is
// unique, so re-invitations surface as conflicts at the store level too.
func (r *PostgresAccountFolderRepository) Create(ctx context.Context, m *models.AccountFolder) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (account_id, folder_id, authority, created_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.AccountFolders)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		m.AccountID, m.FolderID, m.Authority, m.CreatedAt)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("membership for folder %s: %w", m.FolderID, domain.ErrAlreadyInvited)
		}
		return fmt.Errorf("create membership: %w", err)
	}

	return nil
}

// Get retrieves the membership an account holds for a root folder
func (r *PostgresAccountFolderRepository) Get(ctx context.Context, accountID, rootFolderID string) (*models.AccountFolder, error) {
	query := fmt.Sprintf(`
		SELECT account_id, folder_id, authority, created_at
		FROM %s WHERE account_id = $1 AND folder_id = $2
	`, r.tables.AccountFolders)

	var m models.AccountFolder
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, accountID, rootFolderID).Scan(
		&m.AccountID, &m.FolderID, &m.Authority, &m.CreatedAt)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("membership for folder %s: %w", rootFolderID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}

	return &m, nil
}

// Delete removes an account's membership for a root folder
func (r *PostgresAccountFolderRepository) Delete(ctx context.Context, accountID, rootFolderID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE account_id = $1 AND folder_id = $2
	`, r.tables.AccountFolders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, accountID, rootFolderID)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("membership for folder %s: %w", rootFolderID, domain.ErrNotFound)
	}

	return nil
}

// ListAccountIDs lists every account holding a membership for the root
func (r *PostgresAccountFolderRepository) ListAccountIDs(ctx context.Context, rootFolderID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT account_id FROM %s WHERE folder_id = $1
	`, r.tables.AccountFolders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, rootFolderID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return ids, nil
}
