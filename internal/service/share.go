package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dotoriham/backend/internal/auth"
	"github.com/dotoriham/backend/internal/cache"
	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/repositories"
	"github.com/dotoriham/backend/internal/domain/services"
)

type shareService struct {
	folderRepo        repositories.FolderRepository
	accountFolderRepo repositories.AccountFolderRepository
	txManager         repositories.TransactionManager
	tokens            auth.TokenProvider
	forestCache       *cache.ForestCache
	logger            *slog.Logger
}

// NewShareService creates a new share service
func NewShareService(
	folderRepo repositories.FolderRepository,
	accountFolderRepo repositories.AccountFolderRepository,
	txManager repositories.TransactionManager,
	tokens auth.TokenProvider,
	forestCache *cache.ForestCache,
	logger *slog.Logger,
) services.ShareService {
	return &shareService{
		folderRepo:        folderRepo,
		accountFolderRepo: accountFolderRepo,
		txManager:         txManager,
		tokens:            tokens,
		forestCache:       forestCache,
		logger:            logger,
	}
}

// CreateInvitationToken opens a root folder for sharing and issues the
// signed invitation. Only the tree's OWNER may invite, and only roots
// can be shared.
func (s *shareService) CreateInvitationToken(ctx context.Context, accountID, rootFolderID string) (string, error) {
	folder, err := s.folderRepo.GetByID(ctx, rootFolderID)
	if err != nil {
		return "", err
	}
	if !folder.IsRoot() || folder.RootFolderID != folder.ID {
		return "", fmt.Errorf("folder %s: %w", rootFolderID, domain.ErrFolderNotRoot)
	}

	membership, err := s.accountFolderRepo.Get(ctx, accountID, rootFolderID)
	if err != nil {
		return "", fmt.Errorf("share folder %s: %w", rootFolderID, domain.ErrForbidden)
	}
	if membership.Authority != models.AuthorityOwner {
		return "", fmt.Errorf("share folder %s: %w", rootFolderID, domain.ErrForbidden)
	}

	if folder.SharedType != models.SharedTypeEdit {
		folder.SharedType = models.SharedTypeEdit
		folder.UpdatedAt = time.Now()
		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return "", err
		}
	}

	token, err := s.tokens.SignInvitation(auth.InvitationClaims{
		FolderID:   folder.ID,
		SharedType: string(models.SharedTypeEdit),
	})
	if err != nil {
		return "", fmt.Errorf("sign invitation: %w", err)
	}

	s.logger.Info("invitation issued", "folder_id", folder.ID, "account_id", accountID)
	return token, nil
}

// AcceptInvitation validates the token and records INVITEE authority for
// the acting account. Accepting twice, or accepting a token whose folder
// is no longer a shared root, is rejected.
func (s *shareService) AcceptInvitation(ctx context.Context, accountID, token string) error {
	claims, err := s.tokens.VerifyInvitation(token)
	if err != nil {
		return err
	}
	if claims.SharedType != string(models.SharedTypeEdit) {
		return fmt.Errorf("unsupported shared type %q: %w", claims.SharedType, domain.ErrInvalidInvitation)
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetByID(ctx, claims.FolderID)
		if err != nil {
			return err
		}
		if !folder.IsRoot() {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrFolderNotRoot)
		}
		if folder.SharedType != models.SharedTypeEdit {
			return fmt.Errorf("folder %s is not shared: %w", folder.ID, domain.ErrInvalidInvitation)
		}

		return s.accountFolderRepo.Create(ctx, &models.AccountFolder{
			AccountID: accountID,
			FolderID:  folder.ID,
			Authority: models.AuthorityInvitee,
		})
	})
	if err != nil {
		return err
	}

	s.forestCache.Invalidate(ctx, accountID)
	s.logger.Info("invitation accepted", "folder_id", claims.FolderID, "account_id", accountID)
	return nil
}

// ExitSharedFolder removes the acting account's membership for the tree
// containing the given folder. Any folder of the tree identifies it.
func (s *shareService) ExitSharedFolder(ctx context.Context, accountID, folderID string) error {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return err
	}

	if err := s.accountFolderRepo.Delete(ctx, accountID, folder.RootFolderID); err != nil {
		return err
	}

	s.forestCache.Invalidate(ctx, accountID)
	s.logger.Info("left shared folder", "root_folder_id", folder.RootFolderID, "account_id", accountID)
	return nil
}
