package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dotoriham/backend/internal/cache"
	"github.com/dotoriham/backend/internal/config"
	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/repositories"
	"github.com/dotoriham/backend/internal/domain/services"
)

// moveKind tags the strategy a move request resolves to.
type moveKind int

const (
	// moveSameScope keeps the folder under its current parent and only
	// changes its position among the siblings.
	moveSameScope moveKind = iota
	// moveCrossScope reparents the folder into a different scope and
	// renumbers both the old and the new sibling runs.
	moveCrossScope
)

// movePlan is a classified move request. Classification is pure; all
// side effects happen in the strategy that consumes the plan.
type movePlan struct {
	kind         moveKind
	folder       *models.Folder
	nextParentID *string // nil = top-level scope
	nextIndex    int
}

// classifyMove resolves a move request against the folder's current
// topology. An empty-string parent is normalized to the top-level scope.
func classifyMove(folder *models.Folder, req *services.MoveFolderRequest) movePlan {
	nextParentID := req.NextParentID
	if nextParentID != nil && *nextParentID == "" {
		nextParentID = nil
	}

	kind := moveCrossScope
	if sameParent(folder.ParentID, nextParentID) {
		kind = moveSameScope
	}

	return movePlan{
		kind:         kind,
		folder:       folder,
		nextParentID: nextParentID,
		nextIndex:    req.NextIndex,
	}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type folderMoveService struct {
	folderRepo        repositories.FolderRepository
	accountFolderRepo repositories.AccountFolderRepository
	txManager         repositories.TransactionManager
	forestCache       *cache.ForestCache
	logger            *slog.Logger
}

// NewFolderMoveService creates a new folder move service
func NewFolderMoveService(
	folderRepo repositories.FolderRepository,
	accountFolderRepo repositories.AccountFolderRepository,
	txManager repositories.TransactionManager,
	forestCache *cache.ForestCache,
	logger *slog.Logger,
) services.FolderMoveService {
	return &folderMoveService{
		folderRepo:        folderRepo,
		accountFolderRepo: accountFolderRepo,
		txManager:         txManager,
		forestCache:       forestCache,
		logger:            logger,
	}
}

// MoveFolder classifies the request against the current topology and
// dispatches to the matching strategy. Validation happens before any
// mutation, so a rejected move leaves the tree untouched.
func (s *folderMoveService) MoveFolder(ctx context.Context, accountID, folderID string, req *services.MoveFolderRequest) error {
	var touched []string

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetByID(ctx, folderID)
		if err != nil {
			return err
		}

		plan := classifyMove(folder, req)
		touched = append(touched, folder.RootFolderID)

		switch plan.kind {
		case moveSameScope:
			return s.applySameScope(ctx, accountID, plan)
		case moveCrossScope:
			newRootID, err := s.applyCrossScope(ctx, accountID, plan)
			if err != nil {
				return err
			}
			touched = append(touched, newRootID)
			return nil
		default:
			return fmt.Errorf("move folder %s: %w", folderID, domain.ErrInvalidMove)
		}
	})
	if err != nil {
		return err
	}

	for _, rootID := range touched {
		s.invalidateTree(ctx, rootID)
	}
	s.logger.Info("folder moved", "folder_id", folderID, "account_id", accountID)
	return nil
}

// applySameScope resequences the folder within its current sibling run
func (s *folderMoveService) applySameScope(ctx context.Context, accountID string, plan movePlan) error {
	siblings, err := s.listScope(ctx, accountID, plan.folder.ParentID)
	if err != nil {
		return err
	}

	ordered := removeID(folderIDs(siblings), plan.folder.ID)
	ordered = insertAt(ordered, plan.folder.ID, plan.nextIndex)
	return s.folderRepo.Reorder(ctx, ordered)
}

// applyCrossScope reparents the folder, rewrites the subtree's root
// reference, and renumbers both scopes. Returns the new root folder id.
func (s *folderMoveService) applyCrossScope(ctx context.Context, accountID string, plan movePlan) (string, error) {
	folder := plan.folder

	var nextParent *models.Folder
	if plan.nextParentID != nil {
		if *plan.nextParentID == folder.ID {
			return "", fmt.Errorf("folder %s cannot be its own parent: %w", folder.ID, domain.ErrInvalidMove)
		}

		var err error
		nextParent, err = s.folderRepo.GetByID(ctx, *plan.nextParentID)
		if err != nil {
			return "", err
		}
		if err := s.checkNoCycle(ctx, folder.ID, nextParent); err != nil {
			return "", err
		}

		count, err := s.folderRepo.CountChildren(ctx, nextParent.ID)
		if err != nil {
			return "", fmt.Errorf("count children: %w", err)
		}
		if count >= config.MaxChildFolders {
			return "", fmt.Errorf("folder %s has %d children: %w", nextParent.ID, count, domain.ErrFolderCapacity)
		}
	}

	// Close the gap in the scope being left
	if folder.ParentID != nil {
		oldSiblings, err := s.folderRepo.ListChildren(ctx, *folder.ParentID)
		if err != nil {
			return "", fmt.Errorf("list siblings: %w", err)
		}
		if err := s.folderRepo.Reorder(ctx, removeID(folderIDs(oldSiblings), folder.ID)); err != nil {
			return "", err
		}
	}

	if err := s.folderRepo.SetParent(ctx, folder.ID, plan.nextParentID); err != nil {
		return "", err
	}

	newRootID := folder.ID
	if nextParent != nil {
		newRootID = nextParent.RootFolderID
	}
	if err := s.folderRepo.SetSubtreeRoot(ctx, folder.ID, newRootID); err != nil {
		return "", err
	}

	wasRoot := folder.ParentID == nil
	becomesRoot := plan.nextParentID == nil
	if wasRoot && !becomesRoot {
		if err := s.dropTreeMemberships(ctx, folder); err != nil {
			return "", err
		}
	}
	if becomesRoot && !wasRoot {
		err := s.accountFolderRepo.Create(ctx, &models.AccountFolder{
			AccountID: accountID,
			FolderID:  folder.ID,
			Authority: models.AuthorityOwner,
		})
		if err != nil {
			return "", err
		}
	}

	// Slot into the new scope; the folder is already attached, so it
	// appears in the listing and gets repositioned.
	newSiblings, err := s.listScope(ctx, accountID, plan.nextParentID)
	if err != nil {
		return "", err
	}
	ordered := removeID(folderIDs(newSiblings), folder.ID)
	ordered = insertAt(ordered, folder.ID, plan.nextIndex)
	if err := s.folderRepo.Reorder(ctx, ordered); err != nil {
		return "", err
	}

	return newRootID, nil
}

// checkNoCycle walks ancestors from the prospective parent upward and
// rejects the move if the folder being moved is among them.
func (s *folderMoveService) checkNoCycle(ctx context.Context, folderID string, nextParent *models.Folder) error {
	current := nextParent
	for {
		if current.ID == folderID {
			return fmt.Errorf("folder %s is an ancestor of the target: %w", folderID, domain.ErrInvalidMove)
		}
		if current.ParentID == nil {
			return nil
		}

		var err error
		current, err = s.folderRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			return err
		}
	}
}

// dropTreeMemberships retires a root folder's memberships when it stops
// being a root. Sharing does not survive the demotion.
func (s *folderMoveService) dropTreeMemberships(ctx context.Context, folder *models.Folder) error {
	memberIDs, err := s.accountFolderRepo.ListAccountIDs(ctx, folder.ID)
	if err != nil {
		return fmt.Errorf("list tree members: %w", err)
	}
	for _, memberID := range memberIDs {
		if err := s.accountFolderRepo.Delete(ctx, memberID, folder.ID); err != nil {
			return err
		}
	}

	if folder.SharedType != models.SharedTypeNone {
		folder.SharedType = models.SharedTypeNone
		folder.UpdatedAt = time.Now()
		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}
	}
	return nil
}

// listScope lists the siblings of a scope: a parent's children, or the
// account's top-level folders when parentID is nil.
func (s *folderMoveService) listScope(ctx context.Context, accountID string, parentID *string) ([]models.Folder, error) {
	if parentID == nil {
		return s.folderRepo.ListTopLevel(ctx, accountID)
	}
	return s.folderRepo.ListChildren(ctx, *parentID)
}

func (s *folderMoveService) invalidateTree(ctx context.Context, rootFolderID string) {
	memberIDs, err := s.accountFolderRepo.ListAccountIDs(ctx, rootFolderID)
	if err != nil {
		s.logger.Warn("listing tree members for invalidation failed", "root_folder_id", rootFolderID, "error", err)
		return
	}
	s.forestCache.InvalidateAll(ctx, memberIDs)
}

func folderIDs(folders []models.Folder) []string {
	ids := make([]string, 0, len(folders))
	for i := range folders {
		ids = append(ids, folders[i].ID)
	}
	return ids
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

// insertAt places id at index, clamping the index into the valid range
func insertAt(ids []string, id string, index int) []string {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}

	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	out = append(out, ids[index:]...)
	return out
}
