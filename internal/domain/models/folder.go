package models

import (
	"time"
)

// SharedType marks whether a root folder has been opened for sharing.
type SharedType string

const (
	SharedTypeNone SharedType = "NONE"
	SharedTypeEdit SharedType = "EDIT"
)

// Authority is the role an account holds over a root folder's subtree.
type Authority string

const (
	AuthorityOwner   Authority = "OWNER"
	AuthorityInvitee Authority = "INVITEE"
)

// Folder is one node of the bookmark tree. Parent/child relations are kept
// as ids; children are derived by querying parent_id ordered by index.
type Folder struct {
	ID            string     `json:"id" db:"id"`
	ParentID      *string    `json:"parent_id" db:"parent_id"` // NULL = top-level
	RootFolderID  string     `json:"root_folder_id" db:"root_folder_id"`
	Name          string     `json:"name" db:"name"`
	Emoji         *string    `json:"emoji,omitempty" db:"emoji"`
	Index         int        `json:"index" db:"position"`
	BookmarkCount int        `json:"bookmark_count" db:"bookmark_count"`
	SharedType    SharedType `json:"shared_type" db:"shared_type"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder is the top of its tree.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// EmojiOrEmpty returns the emoji, defaulting to "" when absent.
func (f *Folder) EmojiOrEmpty() string {
	if f.Emoji == nil {
		return ""
	}
	return *f.Emoji
}

// AccountFolder grants an account OWNER or INVITEE authority over a root
// folder's subtree. At most one membership exists per account per root.
type AccountFolder struct {
	AccountID string    `json:"account_id" db:"account_id"`
	FolderID  string    `json:"folder_id" db:"folder_id"` // always a root folder id
	Authority Authority `json:"authority" db:"authority"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FolderListItem is the display tuple used by child and ancestor listings.
type FolderListItem struct {
	ID    string `json:"id"`
	Emoji string `json:"emoji"`
	Name  string `json:"name"`
}

// ForestItemData carries the display fields of one forest node.
type ForestItemData struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// ForestItem is one entry of the forest snapshot. The pseudo-node keyed
// "root" has no data and lists the top-level folder ids as children.
type ForestItem struct {
	ID       string          `json:"id"`
	Children []string        `json:"children"`
	Data     *ForestItemData `json:"data,omitempty"`
}

// Forest is the full-tree snapshot consumed by client rendering.
// The items map is keyed by folder id plus the literal key "root";
// this exact shape is a client compatibility surface.
type Forest struct {
	RootID string                `json:"rootId"`
	Items  map[string]ForestItem `json:"items"`
}
