package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dotoriham/backend/internal/cache"
	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/repositories"
	"github.com/dotoriham/backend/internal/domain/services"
)

type trashService struct {
	bookmarkRepo      repositories.BookmarkRepository
	folderRepo        repositories.FolderRepository
	accountFolderRepo repositories.AccountFolderRepository
	txManager         repositories.TransactionManager
	forestCache       *cache.ForestCache
	logger            *slog.Logger
}

// NewTrashService creates a new trash service
func NewTrashService(
	bookmarkRepo repositories.BookmarkRepository,
	folderRepo repositories.FolderRepository,
	accountFolderRepo repositories.AccountFolderRepository,
	txManager repositories.TransactionManager,
	forestCache *cache.ForestCache,
	logger *slog.Logger,
) services.TrashService {
	return &trashService{
		bookmarkRepo:      bookmarkRepo,
		folderRepo:        folderRepo,
		accountFolderRepo: accountFolderRepo,
		txManager:         txManager,
		forestCache:       forestCache,
		logger:            logger,
	}
}

// ListTrash pages the account's trash by recency
func (s *trashService) ListTrash(ctx context.Context, accountID string, page models.Pageable) (*models.BookmarkPage, error) {
	return s.bookmarkRepo.PageTrashByAccount(ctx, accountID, clampPage(page))
}

// Restore brings bookmarks back from the trash. A restored bookmark
// re-increments its folder's count; if the folder was deleted in the
// meantime the bookmark comes back unfiled.
func (s *trashService) Restore(ctx context.Context, ids []string) error {
	touched := make(map[string]struct{})

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			bookmark, err := s.bookmarkRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !bookmark.Deleted {
				continue
			}

			bookmark.Deleted = false
			bookmark.DeleteTime = nil

			if bookmark.FolderID != nil {
				folder, err := s.folderRepo.GetByID(ctx, *bookmark.FolderID)
				switch {
				case errors.Is(err, domain.ErrNotFound):
					bookmark.FolderID = nil
					bookmark.FolderName = nil
					bookmark.FolderEmoji = nil
				case err != nil:
					return err
				default:
					bookmark.FolderName = &folder.Name
					emoji := folder.EmojiOrEmpty()
					bookmark.FolderEmoji = &emoji
					if err := s.folderRepo.AdjustBookmarkCount(ctx, folder.ID, 1); err != nil {
						return err
					}
					touched[folder.RootFolderID] = struct{}{}
				}
			}

			if err := s.bookmarkRepo.Update(ctx, bookmark); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for rootID := range touched {
		s.invalidateTree(ctx, rootID)
	}
	return nil
}

// PermanentDelete removes trash entries for good. Live bookmarks are
// left alone; they have to pass through the trash first.
func (s *trashService) PermanentDelete(ctx context.Context, ids []string) error {
	return s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			bookmark, err := s.bookmarkRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !bookmark.Deleted {
				continue
			}
			if err := s.bookmarkRepo.Delete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// PurgeExpired hard-deletes trash entries older than the retention window
func (s *trashService) PurgeExpired(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	removed, err := s.bookmarkRepo.DeleteTrashBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.logger.Info("trash purged", "removed", removed, "retention_days", retentionDays)
	return removed, nil
}

func (s *trashService) invalidateTree(ctx context.Context, rootFolderID string) {
	memberIDs, err := s.accountFolderRepo.ListAccountIDs(ctx, rootFolderID)
	if err != nil {
		s.logger.Warn("listing tree members for invalidation failed", "root_folder_id", rootFolderID, "error", err)
		return
	}
	s.forestCache.InvalidateAll(ctx, memberIDs)
}
