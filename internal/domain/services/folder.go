package services

import (
	"context"

	"github.com/dotoriham/backend/internal/domain/models"
)

// FolderService handles folder tree business logic
type FolderService interface {
	// CreateFolder creates a folder, top-level when the request carries
	// no parent, and records ownership for new roots
	CreateFolder(ctx context.Context, accountID string, req *CreateFolderRequest) (*models.Folder, error)

	// CreateDefaultFolder provisions the starter folder for a new account
	CreateDefaultFolder(ctx context.Context, accountID string) (*models.Folder, error)

	// RenameFolder overwrites the folder name and returns it
	RenameFolder(ctx context.Context, id, name string) (string, error)

	// ChangeEmoji overwrites the folder emoji and returns it
	ChangeEmoji(ctx context.Context, id, emoji string) (string, error)

	// DeleteFolder cascades over the subtree: descendant folders are
	// removed deepest-first, their bookmarks soft-deleted
	DeleteFolder(ctx context.Context, id string) error

	// DeleteFolderList deletes several folders with the same cascade
	DeleteFolderList(ctx context.Context, ids []string) error

	// ListChildren lists the immediate children in sibling order
	ListChildren(ctx context.Context, id string) ([]models.FolderListItem, error)

	// ListAncestorChain lists the chain from the topmost ancestor down to
	// the folder itself (root first)
	ListAncestorChain(ctx context.Context, id string) ([]models.FolderListItem, error)

	// BuildForest builds the full-tree snapshot for the account,
	// including trees reachable through invitee memberships
	BuildForest(ctx context.Context, accountID string) (*models.Forest, error)
}

// FolderMoveService executes reorder and reparent requests
type FolderMoveService interface {
	// MoveFolder classifies the request by current topology and applies
	// the matching strategy; sibling indices stay contiguous either way
	MoveFolder(ctx context.Context, accountID, folderID string, req *MoveFolderRequest) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	Emoji    *string `json:"emoji,omitempty"`
	ParentID *string `json:"parent_id,omitempty"` // nil or "" = top-level
}

// MoveFolderRequest carries a drag-and-drop move target
type MoveFolderRequest struct {
	NextParentID *string `json:"next_parent_id"` // nil = top-level scope
	NextIndex    int     `json:"next_index"`
}
