package services

import (
	"context"

	"github.com/dotoriham/backend/internal/domain/models"
)

// BookmarkService handles bookmark business logic and keeps the
// denormalized folder counts consistent.
type BookmarkService interface {
	// AddBookmark saves a link, optionally into a folder. Duplicate live
	// links within the folder are rejected.
	AddBookmark(ctx context.Context, accountID string, folderID *string, req *AddBookmarkRequest) (*models.Bookmark, error)

	// DeleteBookmarks soft-deletes the given bookmarks into the trash
	DeleteBookmarks(ctx context.Context, ids []string) error

	// UpdateBookmark overwrites title and description
	UpdateBookmark(ctx context.Context, id string, req *UpdateBookmarkRequest) (*models.Bookmark, error)

	// IncreaseClickCount bumps the click counter
	IncreaseClickCount(ctx context.Context, id string) (*models.Bookmark, error)

	// MoveBookmark moves one bookmark into another folder as a single
	// logical unit; moving to the current folder is a no-op
	MoveBookmark(ctx context.Context, id, nextFolderID string) error

	// MoveBookmarkList moves several bookmarks into the same folder
	MoveBookmarkList(ctx context.Context, ids []string, nextFolderID string) error

	// ToggleOnRemind subscribes the account's delivery token to the bookmark
	ToggleOnRemind(ctx context.Context, accountID, bookmarkID string) error

	// ToggleOffRemind removes the account's reminder subscription
	ToggleOffRemind(ctx context.Context, accountID, bookmarkID string) error

	// PageByFolder pages a folder's live bookmarks by recency
	PageByFolder(ctx context.Context, folderID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error)

	// PageByAccount pages the account's live bookmarks by recency
	PageByAccount(ctx context.Context, accountID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error)

	// TodayRemindBookmarks lists the bookmarks due for a reminder today
	TodayRemindBookmarks(ctx context.Context, accountID string) ([]models.Bookmark, error)
}

// TrashService handles the soft-deleted bookmark lifecycle
type TrashService interface {
	// ListTrash pages the account's trash by recency
	ListTrash(ctx context.Context, accountID string, page models.Pageable) (*models.BookmarkPage, error)

	// Restore brings bookmarks back from the trash, re-incrementing the
	// owning folder's count when the folder still exists
	Restore(ctx context.Context, ids []string) error

	// PermanentDelete removes trash entries for good
	PermanentDelete(ctx context.Context, ids []string) error

	// PurgeExpired hard-deletes trash entries older than the cutoff
	PurgeExpired(ctx context.Context, retentionDays int) (int64, error)
}

// AddBookmarkRequest represents a bookmark creation request
type AddBookmarkRequest struct {
	Link        string `json:"link"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Remind      bool   `json:"remind"`
}

// UpdateBookmarkRequest represents a bookmark update request
type UpdateBookmarkRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
