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

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = `id, parent_id, root_folder_id, name, emoji, position, bookmark_count, shared_type, created_at, updated_at`

// Create creates a new folder. Ids are generated application-side so a
// root folder can reference itself as root in the same insert.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if folder.RootFolderID == "" {
		folder.RootFolderID = folder.ID
	}
	now := time.Now()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, parent_id, root_folder_id, name, emoji, position, bookmark_count, shared_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.tables.Folders)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ID,
		folder.ParentID,
		folder.RootFolderID,
		folder.Name,
		folder.Emoji,
		folder.Index,
		folder.BookmarkCount,
		folder.SharedType,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	var folder models.Folder
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.ParentID,
		&folder.RootFolderID,
		&folder.Name,
		&folder.Emoji,
		&folder.Index,
		&folder.BookmarkCount,
		&folder.SharedType,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// Update persists name, emoji and shared type changes
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, emoji = $2, shared_type = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.Name,
		folder.Emoji,
		folder.SharedType,
		time.Now(),
		folder.ID,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a single folder row
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("cannot delete folder with children: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate children ordered by sibling index
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id = $1
		ORDER BY position ASC, created_at ASC
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, query, parentID)
}

// CountChildren counts immediate children
func (r *PostgresFolderRepository) CountChildren(ctx context.Context, parentID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_id = $1`, r.tables.Folders)

	var count int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, parentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return count, nil
}

// ListTopLevel lists the account's top-level folders ordered by index
func (r *PostgresFolderRepository) ListTopLevel(ctx context.Context, accountID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s f
		JOIN %s af ON af.folder_id = f.id
		WHERE af.account_id = $1 AND f.parent_id IS NULL
		ORDER BY f.position ASC, f.created_at ASC
	`, prefixColumns("f", folderColumns), r.tables.Folders, r.tables.AccountFolders)

	return r.queryFolders(ctx, query, accountID)
}

// ListByAccount lists every folder reachable from the account's
// memberships, flat, ordered by sibling index.
func (r *PostgresFolderRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s f
		JOIN %s af ON af.folder_id = f.root_folder_id
		WHERE af.account_id = $1
		ORDER BY f.position ASC, f.created_at ASC
	`, prefixColumns("f", folderColumns), r.tables.Folders, r.tables.AccountFolders)

	return r.queryFolders(ctx, query, accountID)
}

// Reorder rewrites sibling indices so each folder in orderedIDs carries
// its slice position. Runs as one statement so the scope is never seen
// half-renumbered.
func (r *PostgresFolderRepository) Reorder(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s f
		SET position = x.ord - 1, updated_at = now()
		FROM unnest($1::uuid[]) WITH ORDINALITY AS x(id, ord)
		WHERE f.id = x.id
	`, r.tables.Folders)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, orderedIDs); err != nil {
		return fmt.Errorf("reorder siblings: %w", err)
	}
	return nil
}

// SetParent rewrites a folder's parent reference (nil = top-level)
func (r *PostgresFolderRepository) SetParent(ctx context.Context, folderID string, parentID *string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET parent_id = $1, updated_at = now() WHERE id = $2
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, parentID, folderID)
	if err != nil {
		return fmt.Errorf("set parent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	return nil
}

// SetSubtreeRoot rewrites root_folder_id for the folder and all of its
// descendants using a recursive CTE.
func (r *PostgresFolderRepository) SetSubtreeRoot(ctx context.Context, folderID, rootID string) error {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %s WHERE id = $1
			UNION ALL
			SELECT f.id FROM %s f JOIN subtree s ON f.parent_id = s.id
		)
		UPDATE %s SET root_folder_id = $2, updated_at = now()
		WHERE id IN (SELECT id FROM subtree)
	`, r.tables.Folders, r.tables.Folders, r.tables.Folders)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID, rootID); err != nil {
		return fmt.Errorf("set subtree root: %w", err)
	}
	return nil
}

// AdjustBookmarkCount adds delta to a folder's denormalized count
func (r *PostgresFolderRepository) AdjustBookmarkCount(ctx context.Context, folderID string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET bookmark_count = bookmark_count + $1, updated_at = now() WHERE id = $2
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, delta, folderID)
	if err != nil {
		return fmt.Errorf("adjust bookmark count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.ParentID,
			&folder.RootFolderID,
			&folder.Name,
			&folder.Emoji,
			&folder.Index,
			&folder.BookmarkCount,
			&folder.SharedType,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
