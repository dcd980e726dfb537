package auth

// InvitationClaims is the payload encoded into a signed invitation token.
type InvitationClaims struct {
	FolderID   string
	SharedType string
}

// TokenProvider is the identity resolver consumed by the core: it turns
// credentials into account ids and signs/verifies invitation tokens.
// The core decides what to encode; signing stays behind this interface.
type TokenProvider interface {
	// ResolveAccount validates an access credential and returns the
	// account id it was issued for. Invalid or expired credentials
	// yield domain.ErrUnauthorized.
	ResolveAccount(credential string) (string, error)

	// SignAccess issues an access token for the account
	SignAccess(accountID string) (string, error)

	// SignInvitation issues a time-limited invitation token
	SignInvitation(claims InvitationClaims) (string, error)

	// VerifyInvitation decodes an invitation token. Tampered or expired
	// tokens yield domain.ErrInvalidInvitation.
	VerifyInvitation(token string) (*InvitationClaims, error)
}
