package domain

import (
	"errors"
)

// Sentinel errors for the core taxonomy - match with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrFolderCapacity indicates a folder already holds the maximum
	// number of direct children.
	ErrFolderCapacity = errors.New("folder capacity exceeded")

	// ErrInvalidMove indicates a move request that would corrupt the tree
	// (cycle, or a malformed reorder target).
	ErrInvalidMove = errors.New("invalid folder move")

	// ErrDuplicateBookmark indicates the target folder already contains a
	// live bookmark with the same link.
	ErrDuplicateBookmark = errors.New("bookmark already exists in folder")

	// ErrAlreadyInvited indicates the account already holds a membership
	// for the shared root folder.
	ErrAlreadyInvited = errors.New("account already invited")

	// ErrInvalidInvitation indicates a tampered, expired or wrongly typed
	// invitation token.
	ErrInvalidInvitation = errors.New("invalid invitation")

	// ErrFolderNotRoot indicates an attempt to share or accept a folder
	// that is not the root of its tree.
	ErrFolderNotRoot = errors.New("folder is not a root folder")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder, bookmark, membership)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
