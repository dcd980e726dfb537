package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/dotoriham/backend/internal/cache"
	"github.com/dotoriham/backend/internal/config"
	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/repositories"
	"github.com/dotoriham/backend/internal/domain/services"
)

// remindDateLayout is the calendar-day format reminders are keyed by.
const remindDateLayout = "2006-01-02"

type bookmarkService struct {
	bookmarkRepo      repositories.BookmarkRepository
	folderRepo        repositories.FolderRepository
	accountRepo       repositories.AccountRepository
	accountFolderRepo repositories.AccountFolderRepository
	txManager         repositories.TransactionManager
	forestCache       *cache.ForestCache
	logger            *slog.Logger
}

// NewBookmarkService creates a new bookmark service
func NewBookmarkService(
	bookmarkRepo repositories.BookmarkRepository,
	folderRepo repositories.FolderRepository,
	accountRepo repositories.AccountRepository,
	accountFolderRepo repositories.AccountFolderRepository,
	txManager repositories.TransactionManager,
	forestCache *cache.ForestCache,
	logger *slog.Logger,
) services.BookmarkService {
	return &bookmarkService{
		bookmarkRepo:      bookmarkRepo,
		folderRepo:        folderRepo,
		accountRepo:       accountRepo,
		accountFolderRepo: accountFolderRepo,
		txManager:         txManager,
		forestCache:       forestCache,
		logger:            logger,
	}
}

// AddBookmark saves a link. Filed bookmarks carry the owning folder's
// display data and bump its count; a link already live in the folder is
// rejected. Unfiled bookmarks skip both.
func (s *bookmarkService) AddBookmark(ctx context.Context, accountID string, folderID *string, req *services.AddBookmarkRequest) (*models.Bookmark, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Link, validation.Required, validation.Length(1, config.MaxLinkLength), is.URL),
		validation.Field(&req.Title, validation.Length(0, config.MaxBookmarkTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if folderID != nil && *folderID == "" {
		folderID = nil
	}

	now := time.Now()
	bookmark := &models.Bookmark{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		FolderID:    folderID,
		Link:        req.Link,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		RemindList:  []models.Remind{},
		SavedAt:     now,
	}

	if req.Remind {
		account, err := s.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		applyRemind(bookmark, account, now)
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if folderID == nil {
			return s.bookmarkRepo.Create(ctx, bookmark)
		}

		folder, err := s.folderRepo.GetByID(ctx, *folderID)
		if err != nil {
			return err
		}

		live, err := s.bookmarkRepo.ListLiveByFolder(ctx, folder.ID)
		if err != nil {
			return fmt.Errorf("list folder bookmarks: %w", err)
		}
		for i := range live {
			if live[i].Link == req.Link {
				return fmt.Errorf("link already saved in folder %s: %w", folder.ID, domain.ErrDuplicateBookmark)
			}
		}

		bookmark.FolderName = &folder.Name
		emoji := folder.EmojiOrEmpty()
		bookmark.FolderEmoji = &emoji

		if err := s.bookmarkRepo.Create(ctx, bookmark); err != nil {
			return err
		}
		return s.folderRepo.AdjustBookmarkCount(ctx, folder.ID, 1)
	})
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		s.invalidateFolderTree(ctx, *folderID)
	}
	s.logger.Info("bookmark added", "bookmark_id", bookmark.ID, "account_id", accountID)
	return bookmark, nil
}

// DeleteBookmarks soft-deletes bookmarks into the trash and releases
// their folder counts.
func (s *bookmarkService) DeleteBookmarks(ctx context.Context, ids []string) error {
	touched := make(map[string]struct{})

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		now := time.Now()
		for _, id := range ids {
			bookmark, err := s.bookmarkRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if bookmark.Deleted {
				continue
			}

			bookmark.Deleted = true
			bookmark.DeleteTime = &now
			if err := s.bookmarkRepo.Update(ctx, bookmark); err != nil {
				return err
			}

			if bookmark.FolderID != nil {
				if err := s.folderRepo.AdjustBookmarkCount(ctx, *bookmark.FolderID, -1); err != nil {
					return err
				}
				touched[*bookmark.FolderID] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for folderID := range touched {
		s.invalidateFolderTree(ctx, folderID)
	}
	return nil
}

// UpdateBookmark overwrites title and description
func (s *bookmarkService) UpdateBookmark(ctx context.Context, id string, req *services.UpdateBookmarkRequest) (*models.Bookmark, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Length(0, config.MaxBookmarkTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	bookmark, err := s.bookmarkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bookmark.Title = req.Title
	bookmark.Description = req.Description
	if err := s.bookmarkRepo.Update(ctx, bookmark); err != nil {
		return nil, err
	}
	return bookmark, nil
}

// IncreaseClickCount bumps the click counter
func (s *bookmarkService) IncreaseClickCount(ctx context.Context, id string) (*models.Bookmark, error) {
	bookmark, err := s.bookmarkRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	bookmark.ClickCount++
	if err := s.bookmarkRepo.Update(ctx, bookmark); err != nil {
		return nil, err
	}
	return bookmark, nil
}

// MoveBookmark moves one bookmark into another folder. Both counts and
// the denormalized display data move with it; a move to the bookmark's
// current folder is a no-op.
func (s *bookmarkService) MoveBookmark(ctx context.Context, id, nextFolderID string) error {
	var touched []string

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		bookmark, err := s.bookmarkRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if bookmark.FolderID != nil && *bookmark.FolderID == nextFolderID {
			return nil
		}

		next, err := s.folderRepo.GetByID(ctx, nextFolderID)
		if err != nil {
			return err
		}

		if bookmark.FolderID != nil {
			if err := s.folderRepo.AdjustBookmarkCount(ctx, *bookmark.FolderID, -1); err != nil {
				return err
			}
			touched = append(touched, *bookmark.FolderID)
		}

		bookmark.FolderID = &next.ID
		bookmark.FolderName = &next.Name
		emoji := next.EmojiOrEmpty()
		bookmark.FolderEmoji = &emoji
		if err := s.bookmarkRepo.Update(ctx, bookmark); err != nil {
			return err
		}

		if err := s.folderRepo.AdjustBookmarkCount(ctx, next.ID, 1); err != nil {
			return err
		}
		touched = append(touched, next.ID)
		return nil
	})
	if err != nil {
		return err
	}

	for _, folderID := range touched {
		s.invalidateFolderTree(ctx, folderID)
	}
	return nil
}

// MoveBookmarkList moves several bookmarks into the same folder
func (s *bookmarkService) MoveBookmarkList(ctx context.Context, ids []string, nextFolderID string) error {
	for _, id := range ids {
		if err := s.MoveBookmark(ctx, id, nextFolderID); err != nil {
			return err
		}
	}
	return nil
}

// ToggleOnRemind subscribes the account's delivery token to the bookmark
func (s *bookmarkService) ToggleOnRemind(ctx context.Context, accountID, bookmarkID string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.DeliveryToken == nil || *account.DeliveryToken == "" {
		return fmt.Errorf("%w: account has no delivery token registered", domain.ErrValidation)
	}

	bookmark, err := s.bookmarkRepo.GetByID(ctx, bookmarkID)
	if err != nil {
		return err
	}
	if bookmark.HasRemindFor(*account.DeliveryToken) {
		return nil
	}

	applyRemind(bookmark, account, time.Now())
	return s.bookmarkRepo.Update(ctx, bookmark)
}

// ToggleOffRemind removes the account's reminder subscription. The
// bookmark-level remind date is cleared once no subscriptions remain.
func (s *bookmarkService) ToggleOffRemind(ctx context.Context, accountID, bookmarkID string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.DeliveryToken == nil {
		return nil
	}

	bookmark, err := s.bookmarkRepo.GetByID(ctx, bookmarkID)
	if err != nil {
		return err
	}

	remaining := make([]models.Remind, 0, len(bookmark.RemindList))
	for _, remind := range bookmark.RemindList {
		if remind.DeliveryToken != *account.DeliveryToken {
			remaining = append(remaining, remind)
		}
	}
	bookmark.RemindList = remaining
	if len(remaining) == 0 {
		bookmark.RemindTime = nil
	}

	return s.bookmarkRepo.Update(ctx, bookmark)
}

// PageByFolder pages a folder's live bookmarks by recency
func (s *bookmarkService) PageByFolder(ctx context.Context, folderID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error) {
	return s.bookmarkRepo.PageByFolder(ctx, folderID, remindOnly, clampPage(page))
}

// PageByAccount pages the account's live bookmarks by recency
func (s *bookmarkService) PageByAccount(ctx context.Context, accountID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error) {
	return s.bookmarkRepo.PageByAccount(ctx, accountID, remindOnly, clampPage(page))
}

// TodayRemindBookmarks lists the bookmarks due for a reminder today
func (s *bookmarkService) TodayRemindBookmarks(ctx context.Context, accountID string) ([]models.Bookmark, error) {
	yesterday := time.Now().AddDate(0, 0, -1).Format(remindDateLayout)
	return s.bookmarkRepo.ListRemindAfter(ctx, accountID, yesterday)
}

// applyRemind sets the bookmark's remind date from the account's cycle
// and records the account's delivery subscription when one is available.
func applyRemind(bookmark *models.Bookmark, account *models.Account, now time.Time) {
	remindTime := now.AddDate(0, 0, account.RemindCycle).Format(remindDateLayout)
	bookmark.RemindTime = &remindTime

	if account.DeliveryToken != nil && *account.DeliveryToken != "" {
		bookmark.RemindList = append(bookmark.RemindList, models.Remind{
			RemindTime:    remindTime,
			DeliveryToken: *account.DeliveryToken,
		})
	}
}

// clampPage normalizes pagination into the allowed window
func clampPage(page models.Pageable) models.Pageable {
	if page.Page < 0 {
		page.Page = 0
	}
	if page.Size <= 0 {
		page.Size = config.DefaultPageSize
	}
	if page.Size > config.MaxPageSize {
		page.Size = config.MaxPageSize
	}
	return page
}

// invalidateFolderTree drops cached forests for every member of the
// tree containing the folder.
func (s *bookmarkService) invalidateFolderTree(ctx context.Context, folderID string) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return
	}
	memberIDs, err := s.accountFolderRepo.ListAccountIDs(ctx, folder.RootFolderID)
	if err != nil {
		s.logger.Warn("listing tree members for invalidation failed", "root_folder_id", folder.RootFolderID, "error", err)
		return
	}
	s.forestCache.InvalidateAll(ctx, memberIDs)
}
