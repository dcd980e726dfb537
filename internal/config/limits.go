package config

const (
	// MaxChildFolders is the fan-out bound of the tree: a folder may hold
	// at most this many direct children.
	MaxChildFolders = 8

	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxFolderNameLength = 255

	// MaxBookmarkTitleLength is the maximum length for bookmark titles.
	MaxBookmarkTitleLength = 255

	// MaxLinkLength is the maximum length for bookmark links.
	MaxLinkLength = 2048

	// DefaultPageSize is applied when a paging request carries no size.
	DefaultPageSize = 20

	// MaxPageSize caps a single page of bookmarks.
	MaxPageSize = 100
)
