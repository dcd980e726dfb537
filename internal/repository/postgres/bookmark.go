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

// PostgresBookmarkRepository implements the BookmarkRepository interface
type PostgresBookmarkRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewBookmarkRepository creates a new bookmark repository
func NewBookmarkRepository(config *RepositoryConfig) repositories.BookmarkRepository {
	return &PostgresBookmarkRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const bookmarkColumns = `id, account_id, folder_id, folder_name, folder_emoji, link, title, description, image, click_count, remind_time, remind_list, deleted, delete_time, saved_at`

// Create creates a new bookmark
func (r *PostgresBookmarkRepository) Create(ctx context.Context, bookmark *models.Bookmark) error {
	if bookmark.ID == "" {
		bookmark.ID = uuid.NewString()
	}
	if bookmark.SavedAt.IsZero() {
		bookmark.SavedAt = time.Now()
	}
	if bookmark.RemindList == nil {
		bookmark.RemindList = []models.Remind{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, account_id, folder_id, folder_name, folder_emoji, link, title, description, image, click_count, remind_time, remind_list, deleted, delete_time, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, r.tables.Bookmarks)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		bookmark.ID,
		bookmark.AccountID,
		bookmark.FolderID,
		bookmark.FolderName,
		bookmark.FolderEmoji,
		bookmark.Link,
		bookmark.Title,
		bookmark.Description,
		bookmark.Image,
		bookmark.ClickCount,
		bookmark.RemindTime,
		bookmark.RemindList,
		bookmark.Deleted,
		bookmark.DeleteTime,
		bookmark.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("create bookmark: %w", err)
	}

	return nil
}

// GetByID retrieves a bookmark by ID (deleted or live)
func (r *PostgresBookmarkRepository) GetByID(ctx context.Context, id string) (*models.Bookmark, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, bookmarkColumns, r.tables.Bookmarks)

	var b models.Bookmark
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&b.ID, &b.AccountID, &b.FolderID, &b.FolderName, &b.FolderEmoji,
		&b.Link, &b.Title, &b.Description, &b.Image, &b.ClickCount,
		&b.RemindTime, &b.RemindList, &b.Deleted, &b.DeleteTime, &b.SavedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("bookmark %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get bookmark: %w", err)
	}

	return &b, nil
}

// Update persists all mutable fields of a bookmark
func (r *PostgresBookmarkRepository) Update(ctx context.Context, bookmark *models.Bookmark) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, folder_name = $2, folder_emoji = $3, title = $4,
		    description = $5, click_count = $6, remind_time = $7, remind_list = $8,
		    deleted = $9, delete_time = $10
		WHERE id = $11
	`, r.tables.Bookmarks)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		bookmark.FolderID,
		bookmark.FolderName,
		bookmark.FolderEmoji,
		bookmark.Title,
		bookmark.Description,
		bookmark.ClickCount,
		bookmark.RemindTime,
		bookmark.RemindList,
		bookmark.Deleted,
		bookmark.DeleteTime,
		bookmark.ID,
	)
	if err != nil {
		return fmt.Errorf("update bookmark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bookmark %s: %w", bookmark.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a bookmark row permanently
func (r *PostgresBookmarkRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Bookmarks)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bookmark %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListLiveByFolder lists the non-deleted bookmarks of a folder
func (r *PostgresBookmarkRepository) ListLiveByFolder(ctx context.Context, folderID string) ([]models.Bookmark, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = $1 AND deleted = FALSE
		ORDER BY saved_at DESC
	`, bookmarkColumns, r.tables.Bookmarks)

	return r.queryBookmarks(ctx, query, folderID)
}

// SoftDeleteByFolder marks every live bookmark of the folder deleted
func (r *PostgresBookmarkRepository) SoftDeleteByFolder(ctx context.Context, folderID string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET deleted = TRUE, delete_time = $1
		WHERE folder_id = $2 AND deleted = FALSE
	`, r.tables.Bookmarks)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, at, folderID); err != nil {
		return fmt.Errorf("soft delete by folder: %w", err)
	}
	return nil
}

// UpdateFolderLabel rewrites the denormalized folder name/emoji on every
// live bookmark of the folder.
func (r *PostgresBookmarkRepository) UpdateFolderLabel(ctx context.Context, folderID, name, emoji string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET folder_name = $1, folder_emoji = $2
		WHERE folder_id = $3 AND deleted = FALSE
	`, r.tables.Bookmarks)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, name, emoji, folderID); err != nil {
		return fmt.Errorf("update folder label: %w", err)
	}
	return nil
}

// PageByFolder pages live bookmarks of a folder by recency
func (r *PostgresBookmarkRepository) PageByFolder(ctx context.Context, folderID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error) {
	where := `folder_id = $1 AND deleted = FALSE`
	if remindOnly {
		where += ` AND remind_time IS NOT NULL`
	}
	return r.queryPage(ctx, where, page, folderID)
}

// PageByAccount pages the account's live bookmarks by recency
func (r *PostgresBookmarkRepository) PageByAccount(ctx context.Context, accountID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error) {
	where := `account_id = $1 AND deleted = FALSE`
	if remindOnly {
		where += ` AND remind_time IS NOT NULL`
	}
	return r.queryPage(ctx, where, page, accountID)
}

// PageTrashByAccount pages the account's soft-deleted bookmarks
func (r *PostgresBookmarkRepository) PageTrashByAccount(ctx context.Context, accountID string, page models.Pageable) (*models.BookmarkPage, error) {
	return r.queryPage(ctx, `account_id = $1 AND deleted = TRUE`, page, accountID)
}

// ListRemindAfter lists live bookmarks of the account whose remind time
// is after the given date (YYYY-MM-DD).
func (r *PostgresBookmarkRepository) ListRemindAfter(ctx context.Context, accountID, afterDate string) ([]models.Bookmark, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE account_id = $1 AND deleted = FALSE AND remind_time > $2
		ORDER BY saved_at DESC
	`, bookmarkColumns, r.tables.Bookmarks)

	return r.queryBookmarks(ctx, query, accountID, afterDate)
}

// DeleteTrashBefore hard-deletes trash entries soft-deleted before the
// cutoff, returning the number of rows removed.
func (r *PostgresBookmarkRepository) DeleteTrashBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE deleted = TRUE AND delete_time < $1
	`, r.tables.Bookmarks)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge trash: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *PostgresBookmarkRepository) queryPage(ctx context.Context, where string, page models.Pageable, arg interface{}) (*models.BookmarkPage, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Bookmarks, where)

	var total int64
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, fmt.Errorf("count bookmarks: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s
		ORDER BY saved_at DESC
		LIMIT $2 OFFSET $3
	`, bookmarkColumns, r.tables.Bookmarks, where)

	bookmarks, err := r.queryBookmarks(ctx, query, arg, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	if bookmarks == nil {
		bookmarks = []models.Bookmark{}
	}

	return &models.BookmarkPage{
		Content:    bookmarks,
		Page:       page.Page,
		Size:       page.Size,
		TotalCount: total,
	}, nil
}

func (r *PostgresBookmarkRepository) queryBookmarks(ctx context.Context, query string, args ...interface{}) ([]models.Bookmark, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []models.Bookmark
	for rows.Next() {
		var b models.Bookmark
		err := rows.Scan(
			&b.ID, &b.AccountID, &b.FolderID, &b.FolderName, &b.FolderEmoji,
			&b.Link, &b.Title, &b.Description, &b.Image, &b.ClickCount,
			&b.RemindTime, &b.RemindList, &b.Deleted, &b.DeleteTime, &b.SavedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}

	return bookmarks, nil
}
