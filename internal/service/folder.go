// Package service implements the business logic behind the domain
// service interfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/dotoriham/backend/internal/cache"
	"github.com/dotoriham/backend/internal/config"
	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/repositories"
	"github.com/dotoriham/backend/internal/domain/services"
)

// DefaultFolderName is the starter folder provisioned on registration.
const DefaultFolderName = "보관함1"

// ForestRootKey is the literal map key of the pseudo-node anchoring the
// forest snapshot.
const ForestRootKey = "root"

type folderService struct {
	folderRepo        repositories.FolderRepository
	accountFolderRepo repositories.AccountFolderRepository
	bookmarkRepo      repositories.BookmarkRepository
	txManager         repositories.TransactionManager
	forestCache       *cache.ForestCache
	logger            *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	accountFolderRepo repositories.AccountFolderRepository,
	bookmarkRepo repositories.BookmarkRepository,
	txManager repositories.TransactionManager,
	forestCache *cache.ForestCache,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo:        folderRepo,
		accountFolderRepo: accountFolderRepo,
		bookmarkRepo:      bookmarkRepo,
		txManager:         txManager,
		forestCache:       forestCache,
		logger:            logger,
	}
}

// CreateFolder creates a folder. Requests without a parent create a new
// top-level root and record OWNER authority; requests with a parent
// append the folder as the parent's last child, subject to the fan-out
// limit.
func (s *folderService) CreateFolder(ctx context.Context, accountID string, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFolderNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for top-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	now := time.Now()
	folder := &models.Folder{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Emoji:      req.Emoji,
		SharedType: models.SharedTypeNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if req.ParentID == nil {
			siblings, err := s.folderRepo.ListTopLevel(ctx, accountID)
			if err != nil {
				return fmt.Errorf("list top-level folders: %w", err)
			}
			folder.Index = len(siblings)
			folder.RootFolderID = folder.ID

			if err := s.folderRepo.Create(ctx, folder); err != nil {
				return err
			}
			return s.accountFolderRepo.Create(ctx, &models.AccountFolder{
				AccountID: accountID,
				FolderID:  folder.ID,
				Authority: models.AuthorityOwner,
			})
		}

		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return err
		}
		count, err := s.folderRepo.CountChildren(ctx, parent.ID)
		if err != nil {
			return fmt.Errorf("count children: %w", err)
		}
		if count >= config.MaxChildFolders {
			return fmt.Errorf("folder %s has %d children: %w", parent.ID, count, domain.ErrFolderCapacity)
		}

		folder.ParentID = &parent.ID
		folder.Index = count
		folder.RootFolderID = parent.RootFolderID
		return s.folderRepo.Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTree(ctx, folder.RootFolderID)
	s.logger.Info("folder created", "folder_id", folder.ID, "account_id", accountID)
	return folder, nil
}

// CreateDefaultFolder provisions the starter folder for a new account
func (s *folderService) CreateDefaultFolder(ctx context.Context, accountID string) (*models.Folder, error) {
	return s.CreateFolder(ctx, accountID, &services.CreateFolderRequest{Name: DefaultFolderName})
}

// RenameFolder overwrites the folder name. The denormalized name carried
// by the folder's live bookmarks is rewritten in the same transaction.
func (s *folderService) RenameFolder(ctx context.Context, id, name string) (string, error) {
	if err := validation.Validate(name, validation.Required, validation.Length(1, config.MaxFolderNameLength)); err != nil {
		return "", fmt.Errorf("%w: folder name %v", domain.ErrValidation, err)
	}

	var rootID string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		rootID = folder.RootFolderID

		folder.Name = name
		folder.UpdatedAt = time.Now()
		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}
		return s.bookmarkRepo.UpdateFolderLabel(ctx, folder.ID, folder.Name, folder.EmojiOrEmpty())
	})
	if err != nil {
		return "", err
	}

	s.invalidateTree(ctx, rootID)
	return name, nil
}

// ChangeEmoji overwrites the folder emoji and propagates it the same way
// a rename does.
func (s *folderService) ChangeEmoji(ctx context.Context, id, emoji string) (string, error) {
	var rootID string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		rootID = folder.RootFolderID

		folder.Emoji = &emoji
		folder.UpdatedAt = time.Now()
		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}
		return s.bookmarkRepo.UpdateFolderLabel(ctx, folder.ID, folder.Name, emoji)
	})
	if err != nil {
		return "", err
	}

	s.invalidateTree(ctx, rootID)
	return emoji, nil
}

// DeleteFolder removes the folder and its whole subtree. Descendants go
// deepest-first so no child outlives its parent, bookmarks move to the
// trash, and the surviving siblings are renumbered back to a contiguous
// run.
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	var rootID string
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		rootID = folder.RootFolderID

		if err := s.deleteSubtree(ctx, folder); err != nil {
			return err
		}
		return s.renumberSiblings(ctx, folder, "")
	})
	if err != nil {
		return err
	}

	s.invalidateTree(ctx, rootID)
	s.logger.Info("folder deleted", "folder_id", id)
	return nil
}

// DeleteFolderList deletes several folders with the same cascade
func (s *folderService) DeleteFolderList(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := s.DeleteFolder(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// deleteSubtree removes the folder and everything beneath it, bookmarks
// first, children before parents.
func (s *folderService) deleteSubtree(ctx context.Context, folder *models.Folder) error {
	children, err := s.folderRepo.ListChildren(ctx, folder.ID)
	if err != nil {
		return fmt.Errorf("list children of %s: %w", folder.ID, err)
	}
	for i := range children {
		if err := s.deleteSubtree(ctx, &children[i]); err != nil {
			return err
		}
	}

	if err := s.bookmarkRepo.SoftDeleteByFolder(ctx, folder.ID, time.Now()); err != nil {
		return fmt.Errorf("trash bookmarks of %s: %w", folder.ID, err)
	}
	return s.folderRepo.Delete(ctx, folder.ID)
}

// renumberSiblings closes the index gap left behind when the folder
// leaves its scope. skipID additionally excludes a folder that is still
// present in the scope but already spoken for by the caller.
func (s *folderService) renumberSiblings(ctx context.Context, departed *models.Folder, skipID string) error {
	if departed.ParentID == nil {
		// Top-level siblings are per-account views; each remaining root
		// keeps its index and gaps are tolerated at the top level.
		return nil
	}

	siblings, err := s.folderRepo.ListChildren(ctx, *departed.ParentID)
	if err != nil {
		return fmt.Errorf("list siblings: %w", err)
	}

	ordered := make([]string, 0, len(siblings))
	for _, sibling := range siblings {
		if sibling.ID == departed.ID || sibling.ID == skipID {
			continue
		}
		ordered = append(ordered, sibling.ID)
	}
	return s.folderRepo.Reorder(ctx, ordered)
}

// ListChildren lists the immediate children in sibling order
func (s *folderService) ListChildren(ctx context.Context, id string) ([]models.FolderListItem, error) {
	children, err := s.folderRepo.ListChildren(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]models.FolderListItem, 0, len(children))
	for i := range children {
		items = append(items, folderListItem(&children[i]))
	}
	return items, nil
}

// ListAncestorChain walks parent references up to the topmost ancestor
// and returns the chain root-first, the folder itself last.
func (s *folderService) ListAncestorChain(ctx context.Context, id string) ([]models.FolderListItem, error) {
	var chain []models.FolderListItem

	current, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for {
		chain = append(chain, folderListItem(current))
		if current.ParentID == nil {
			break
		}
		current, err = s.folderRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// BuildForest assembles the full-tree snapshot for the account. Trees
// shared into the account through INVITEE memberships are included the
// same way the account's own trees are.
func (s *folderService) BuildForest(ctx context.Context, accountID string) (*models.Forest, error) {
	if cached, err := s.forestCache.Get(ctx, accountID); err == nil && cached != nil {
		return cached, nil
	}

	topLevel, err := s.folderRepo.ListTopLevel(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list top-level folders: %w", err)
	}
	all, err := s.folderRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list account folders: %w", err)
	}

	forest := &models.Forest{
		RootID: ForestRootKey,
		Items:  make(map[string]models.ForestItem, len(all)+1),
	}

	rootChildren := make([]string, 0, len(topLevel))
	for i := range topLevel {
		rootChildren = append(rootChildren, topLevel[i].ID)
	}
	forest.Items[ForestRootKey] = models.ForestItem{
		ID:       ForestRootKey,
		Children: rootChildren,
	}

	// all is ordered by parent and sibling index, so child slices come
	// out in display order.
	childrenOf := make(map[string][]string, len(all))
	for i := range all {
		if all[i].ParentID != nil {
			childrenOf[*all[i].ParentID] = append(childrenOf[*all[i].ParentID], all[i].ID)
		}
	}
	for i := range all {
		f := &all[i]
		children := childrenOf[f.ID]
		if children == nil {
			children = []string{}
		}
		forest.Items[f.ID] = models.ForestItem{
			ID:       f.ID,
			Children: children,
			Data: &models.ForestItemData{
				Name:  f.Name,
				Emoji: f.EmojiOrEmpty(),
			},
		}
	}

	if err := s.forestCache.Set(ctx, accountID, forest); err != nil {
		s.logger.Warn("forest cache store failed", "account_id", accountID, "error", err)
	}
	return forest, nil
}

// invalidateTree drops cached forests for every member of the tree
func (s *folderService) invalidateTree(ctx context.Context, rootFolderID string) {
	memberIDs, err := s.accountFolderRepo.ListAccountIDs(ctx, rootFolderID)
	if err != nil {
		s.logger.Warn("listing tree members for invalidation failed", "root_folder_id", rootFolderID, "error", err)
		return
	}
	s.forestCache.InvalidateAll(ctx, memberIDs)
}

func folderListItem(f *models.Folder) models.FolderListItem {
	return models.FolderListItem{
		ID:    f.ID,
		Emoji: f.EmojiOrEmpty(),
		Name:  f.Name,
	}
}
