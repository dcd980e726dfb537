package services

import (
	"context"
)

// ShareService manages invitation links and shared-folder memberships
type ShareService interface {
	// CreateInvitationToken issues a signed invitation for a root folder.
	// Only the OWNER may invite, and only root folders can be shared.
	CreateInvitationToken(ctx context.Context, accountID, rootFolderID string) (string, error)

	// AcceptInvitation validates the token and records an INVITEE
	// membership for the acting account
	AcceptInvitation(ctx context.Context, accountID, token string) error

	// ExitSharedFolder removes the acting account's membership for the
	// tree containing the given folder
	ExitSharedFolder(ctx context.Context, accountID, folderID string) error
}
