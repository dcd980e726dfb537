package repositories

import (
	"context"

	"github.com/dotoriham/backend/internal/domain/models"
)

// FolderRepository defines data access operations for folders and the
// tree-shape queries built on them.
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// Update persists name, emoji and shared type changes
	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes a single folder row
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate children ordered by sibling index
	ListChildren(ctx context.Context, parentID string) ([]models.Folder, error)

	// CountChildren counts immediate children
	CountChildren(ctx context.Context, parentID string) (int, error)

	// ListTopLevel lists the account's top-level folders (all roots the
	// account holds a membership for) ordered by sibling index
	ListTopLevel(ctx context.Context, accountID string) ([]models.Folder, error)

	// ListByAccount lists every folder reachable from the account's
	// memberships (whole shared subtrees included), flat
	ListByAccount(ctx context.Context, accountID string) ([]models.Folder, error)

	// Reorder rewrites sibling indices: each folder in orderedIDs gets
	// its slice position as index
	Reorder(ctx context.Context, orderedIDs []string) error

	// SetParent rewrites a folder's parent reference (nil = top-level)
	SetParent(ctx context.Context, folderID string, parentID *string) error

	// SetSubtreeRoot rewrites root_folder_id for a folder and all of its
	// descendants
	SetSubtreeRoot(ctx context.Context, folderID, rootID string) error

	// AdjustBookmarkCount adds delta to a folder's denormalized count
	AdjustBookmarkCount(ctx context.Context, folderID string, delta int) error
}

// AccountFolderRepository manages the membership join records between
// accounts and root folders.
type AccountFolderRepository interface {
	// Create inserts a membership row
	Create(ctx context.Context, membership *models.AccountFolder) error

	// Get retrieves the membership an account holds for a root folder
	Get(ctx context.Context, accountID, rootFolderID string) (*models.AccountFolder, error)

	// Delete removes an account's membership for a root folder
	Delete(ctx context.Context, accountID, rootFolderID string) error

	// ListAccountIDs lists every account holding a membership for the root
	ListAccountIDs(ctx context.Context, rootFolderID string) ([]string, error)
}
