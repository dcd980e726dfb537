package repositories

import (
	"context"
	"time"

	"github.com/dotoriham/backend/internal/domain/models"
)

// BookmarkRepository defines data access operations for bookmarks,
// including the soft-delete/trash state.
type BookmarkRepository interface {
	// Create creates a new bookmark
	Create(ctx context.Context, bookmark *models.Bookmark) error

	// GetByID retrieves a bookmark by ID (deleted or live)
	GetByID(ctx context.Context, id string) (*models.Bookmark, error)

	// Update persists all mutable fields of a bookmark
	Update(ctx context.Context, bookmark *models.Bookmark) error

	// Delete removes a bookmark row permanently
	Delete(ctx context.Context, id string) error

	// ListLiveByFolder lists the non-deleted bookmarks of a folder
	ListLiveByFolder(ctx context.Context, folderID string) ([]models.Bookmark, error)

	// SoftDeleteByFolder marks every live bookmark of the folder deleted
	SoftDeleteByFolder(ctx context.Context, folderID string, at time.Time) error

	// UpdateFolderLabel rewrites the denormalized folder name/emoji on
	// every live bookmark of the folder
	UpdateFolderLabel(ctx context.Context, folderID, name, emoji string) error

	// PageByFolder pages live bookmarks of a folder by recency;
	// remindOnly restricts to bookmarks carrying a remind time
	PageByFolder(ctx context.Context, folderID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error)

	// PageByAccount pages the account's live bookmarks by recency
	PageByAccount(ctx context.Context, accountID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error)

	// PageTrashByAccount pages the account's soft-deleted bookmarks
	PageTrashByAccount(ctx context.Context, accountID string, page models.Pageable) (*models.BookmarkPage, error)

	// ListRemindAfter lists live bookmarks of the account whose remind
	// time is after the given date (YYYY-MM-DD)
	ListRemindAfter(ctx context.Context, accountID, afterDate string) ([]models.Bookmark, error)

	// DeleteTrashBefore hard-deletes trash entries soft-deleted before
	// the cutoff, returning the number of rows removed
	DeleteTrashBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
