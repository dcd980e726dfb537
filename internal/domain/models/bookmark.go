package models

import (
	"time"
)

// Remind is one per-account reminder subscription on a bookmark. The
// delivery token identifies the device the push is sent to; delivery
// itself is an external collaborator.
type Remind struct {
	RemindTime    string `json:"remind_time"`
	DeliveryToken string `json:"delivery_token"`
}

// Bookmark is a saved link. Folder name/emoji are denormalized copies of
// the owning folder's display data, re-propagated on rename and emoji
// change. Deleted bookmarks stay in the trash until restored or purged.
type Bookmark struct {
	ID          string     `json:"id" db:"id"`
	AccountID   string     `json:"account_id" db:"account_id"`
	FolderID    *string    `json:"folder_id" db:"folder_id"` // NULL = unfiled
	FolderName  *string    `json:"folder_name,omitempty" db:"folder_name"`
	FolderEmoji *string    `json:"folder_emoji,omitempty" db:"folder_emoji"`
	Link        string     `json:"link" db:"link"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Image       string     `json:"image" db:"image"`
	ClickCount  int        `json:"click_count" db:"click_count"`
	RemindTime  *string    `json:"remind_time,omitempty" db:"remind_time"`
	RemindList  []Remind   `json:"remind_list" db:"remind_list"`
	Deleted     bool       `json:"deleted" db:"deleted"`
	DeleteTime  *time.Time `json:"delete_time,omitempty" db:"delete_time"`
	SavedAt     time.Time  `json:"saved_at" db:"saved_at"`
}

// HasRemindFor reports whether the bookmark already carries a reminder
// subscription for the given delivery token.
func (b *Bookmark) HasRemindFor(token string) bool {
	for _, r := range b.RemindList {
		if r.DeliveryToken == token {
			return true
		}
	}
	return false
}

// Pageable carries recency-ordered pagination parameters.
type Pageable struct {
	Page int
	Size int
}

// Offset returns the row offset for the page.
func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// BookmarkPage is one page of bookmarks ordered by recency.
type BookmarkPage struct {
	Content    []Bookmark `json:"content"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalCount int64      `json:"total_count"`
}
