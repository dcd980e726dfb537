package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dotoriham/backend/internal/auth"
	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/repositories"
	"github.com/dotoriham/backend/internal/domain/services"
)

// memStore is the shared in-memory backing for the fake repositories.
type memStore struct {
	folders     map[string]*models.Folder
	bookmarks   map[string]*models.Bookmark
	accounts    map[string]*models.Account
	memberships map[string]map[string]*models.AccountFolder // accountID -> rootFolderID
}

func newMemStore() *memStore {
	return &memStore{
		folders:     make(map[string]*models.Folder),
		bookmarks:   make(map[string]*models.Bookmark),
		accounts:    make(map[string]*models.Account),
		memberships: make(map[string]map[string]*models.AccountFolder),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxManager runs the function directly; the fakes mutate shared
// maps, so there is nothing to roll back.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// fakeTokens issues lookup-table tokens instead of signed ones.
type fakeTokens struct {
	invitations map[string]auth.InvitationClaims
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{invitations: make(map[string]auth.InvitationClaims)}
}

func (f *fakeTokens) ResolveAccount(credential string) (string, error) {
	if len(credential) > 7 && credential[:7] == "access-" {
		return credential[7:], nil
	}
	return "", domain.ErrUnauthorized
}

func (f *fakeTokens) SignAccess(accountID string) (string, error) {
	return "access-" + accountID, nil
}

func (f *fakeTokens) SignInvitation(claims auth.InvitationClaims) (string, error) {
	token := "invite-" + uuid.NewString()
	f.invitations[token] = claims
	return token, nil
}

func (f *fakeTokens) VerifyInvitation(token string) (*auth.InvitationClaims, error) {
	claims, ok := f.invitations[token]
	if !ok {
		return nil, domain.ErrInvalidInvitation
	}
	return &claims, nil
}

// fakeFolderRepo mirrors the contracts of the Postgres folder repository.
type fakeFolderRepo struct {
	store *memStore
}

func (r *fakeFolderRepo) Create(_ context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if folder.RootFolderID == "" {
		folder.RootFolderID = folder.ID
	}
	clone := *folder
	r.store.folders[folder.ID] = &clone
	return nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, id string) (*models.Folder, error) {
	folder, ok := r.store.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	clone := *folder
	return &clone, nil
}

// Update persists name, emoji and shared type only, matching the SQL
// implementation; topology fields go through the dedicated methods.
func (r *fakeFolderRepo) Update(_ context.Context, folder *models.Folder) error {
	stored, ok := r.store.folders[folder.ID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	stored.Name = folder.Name
	stored.Emoji = folder.Emoji
	stored.SharedType = folder.SharedType
	stored.UpdatedAt = folder.UpdatedAt
	return nil
}

func (r *fakeFolderRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store.folders[id]; !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.folders, id)
	for accountID, byRoot := range r.store.memberships {
		delete(byRoot, id)
		if len(byRoot) == 0 {
			delete(r.store.memberships, accountID)
		}
	}
	return nil
}

func (r *fakeFolderRepo) ListChildren(_ context.Context, parentID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, folder := range r.store.folders {
		if folder.ParentID != nil && *folder.ParentID == parentID {
			out = append(out, *folder)
		}
	}
	sortByIndex(out)
	return out, nil
}

func (r *fakeFolderRepo) CountChildren(ctx context.Context, parentID string) (int, error) {
	children, _ := r.ListChildren(ctx, parentID)
	return len(children), nil
}

func (r *fakeFolderRepo) ListTopLevel(_ context.Context, accountID string) ([]models.Folder, error) {
	var out []models.Folder
	for rootID := range r.store.memberships[accountID] {
		if folder, ok := r.store.folders[rootID]; ok && folder.ParentID == nil {
			out = append(out, *folder)
		}
	}
	sortByIndex(out)
	return out, nil
}

func (r *fakeFolderRepo) ListByAccount(_ context.Context, accountID string) ([]models.Folder, error) {
	roots := r.store.memberships[accountID]
	var out []models.Folder
	for _, folder := range r.store.folders {
		if _, ok := roots[folder.RootFolderID]; ok {
			out = append(out, *folder)
		}
	}
	sortByIndex(out)
	return out, nil
}

func (r *fakeFolderRepo) Reorder(_ context.Context, orderedIDs []string) error {
	for position, id := range orderedIDs {
		folder, ok := r.store.folders[id]
		if !ok {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		folder.Index = position
	}
	return nil
}

func (r *fakeFolderRepo) SetParent(_ context.Context, folderID string, parentID *string) error {
	folder, ok := r.store.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	folder.ParentID = parentID
	return nil
}

func (r *fakeFolderRepo) SetSubtreeRoot(ctx context.Context, folderID, rootID string) error {
	folder, ok := r.store.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	folder.RootFolderID = rootID

	children, _ := r.ListChildren(ctx, folderID)
	for i := range children {
		if err := r.SetSubtreeRoot(ctx, children[i].ID, rootID); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeFolderRepo) AdjustBookmarkCount(_ context.Context, folderID string, delta int) error {
	folder, ok := r.store.folders[folderID]
	if !ok {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	folder.BookmarkCount += delta
	return nil
}

func sortByIndex(folders []models.Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].Index != folders[j].Index {
			return folders[i].Index < folders[j].Index
		}
		return folders[i].CreatedAt.Before(folders[j].CreatedAt)
	})
}

// fakeAccountFolderRepo mirrors the membership repository contracts.
type fakeAccountFolderRepo struct {
	store *memStore
}

func (r *fakeAccountFolderRepo) Create(_ context.Context, m *models.AccountFolder) error {
	byRoot := r.store.memberships[m.AccountID]
	if byRoot == nil {
		byRoot = make(map[string]*models.AccountFolder)
		r.store.memberships[m.AccountID] = byRoot
	}
	if _, exists := byRoot[m.FolderID]; exists {
		return fmt.Errorf("membership for folder %s: %w", m.FolderID, domain.ErrAlreadyInvited)
	}
	clone := *m
	byRoot[m.FolderID] = &clone
	return nil
}

func (r *fakeAccountFolderRepo) Get(_ context.Context, accountID, rootFolderID string) (*models.AccountFolder, error) {
	m, ok := r.store.memberships[accountID][rootFolderID]
	if !ok {
		return nil, fmt.Errorf("membership for folder %s: %w", rootFolderID, domain.ErrNotFound)
	}
	clone := *m
	return &clone, nil
}

func (r *fakeAccountFolderRepo) Delete(_ context.Context, accountID, rootFolderID string) error {
	byRoot := r.store.memberships[accountID]
	if _, ok := byRoot[rootFolderID]; !ok {
		return fmt.Errorf("membership for folder %s: %w", rootFolderID, domain.ErrNotFound)
	}
	delete(byRoot, rootFolderID)
	return nil
}

func (r *fakeAccountFolderRepo) ListAccountIDs(_ context.Context, rootFolderID string) ([]string, error) {
	var ids []string
	for accountID, byRoot := range r.store.memberships {
		if _, ok := byRoot[rootFolderID]; ok {
			ids = append(ids, accountID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// fakeBookmarkRepo mirrors the bookmark repository contracts.
type fakeBookmarkRepo struct {
	store *memStore
}

func (r *fakeBookmarkRepo) Create(_ context.Context, bookmark *models.Bookmark) error {
	if bookmark.ID == "" {
		bookmark.ID = uuid.NewString()
	}
	clone := *bookmark
	r.store.bookmarks[bookmark.ID] = &clone
	return nil
}

func (r *fakeBookmarkRepo) GetByID(_ context.Context, id string) (*models.Bookmark, error) {
	bookmark, ok := r.store.bookmarks[id]
	if !ok {
		return nil, fmt.Errorf("bookmark %s: %w", id, domain.ErrNotFound)
	}
	clone := *bookmark
	return &clone, nil
}

func (r *fakeBookmarkRepo) Update(_ context.Context, bookmark *models.Bookmark) error {
	if _, ok := r.store.bookmarks[bookmark.ID]; !ok {
		return fmt.Errorf("bookmark %s: %w", bookmark.ID, domain.ErrNotFound)
	}
	clone := *bookmark
	r.store.bookmarks[bookmark.ID] = &clone
	return nil
}

func (r *fakeBookmarkRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store.bookmarks[id]; !ok {
		return fmt.Errorf("bookmark %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.bookmarks, id)
	return nil
}

func (r *fakeBookmarkRepo) ListLiveByFolder(_ context.Context, folderID string) ([]models.Bookmark, error) {
	var out []models.Bookmark
	for _, b := range r.store.bookmarks {
		if !b.Deleted && b.FolderID != nil && *b.FolderID == folderID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookmarkRepo) SoftDeleteByFolder(_ context.Context, folderID string, at time.Time) error {
	for _, b := range r.store.bookmarks {
		if !b.Deleted && b.FolderID != nil && *b.FolderID == folderID {
			b.Deleted = true
			deleteTime := at
			b.DeleteTime = &deleteTime
		}
	}
	return nil
}

func (r *fakeBookmarkRepo) UpdateFolderLabel(_ context.Context, folderID, name, emoji string) error {
	for _, b := range r.store.bookmarks {
		if !b.Deleted && b.FolderID != nil && *b.FolderID == folderID {
			n, e := name, emoji
			b.FolderName = &n
			b.FolderEmoji = &e
		}
	}
	return nil
}

func (r *fakeBookmarkRepo) PageByFolder(ctx context.Context, folderID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error) {
	live, _ := r.ListLiveByFolder(ctx, folderID)
	return paginate(filterRemind(live, remindOnly), page), nil
}

func (r *fakeBookmarkRepo) PageByAccount(_ context.Context, accountID string, remindOnly bool, page models.Pageable) (*models.BookmarkPage, error) {
	var out []models.Bookmark
	for _, b := range r.store.bookmarks {
		if !b.Deleted && b.AccountID == accountID {
			out = append(out, *b)
		}
	}
	return paginate(filterRemind(out, remindOnly), page), nil
}

func (r *fakeBookmarkRepo) PageTrashByAccount(_ context.Context, accountID string, page models.Pageable) (*models.BookmarkPage, error) {
	var out []models.Bookmark
	for _, b := range r.store.bookmarks {
		if b.Deleted && b.AccountID == accountID {
			out = append(out, *b)
		}
	}
	return paginate(out, page), nil
}

func (r *fakeBookmarkRepo) ListRemindAfter(_ context.Context, accountID, afterDate string) ([]models.Bookmark, error) {
	var out []models.Bookmark
	for _, b := range r.store.bookmarks {
		if !b.Deleted && b.AccountID == accountID && b.RemindTime != nil && *b.RemindTime > afterDate {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookmarkRepo) DeleteTrashBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for id, b := range r.store.bookmarks {
		if b.Deleted && b.DeleteTime != nil && b.DeleteTime.Before(cutoff) {
			delete(r.store.bookmarks, id)
			removed++
		}
	}
	return removed, nil
}

func filterRemind(bookmarks []models.Bookmark, remindOnly bool) []models.Bookmark {
	if !remindOnly {
		return bookmarks
	}
	var out []models.Bookmark
	for _, b := range bookmarks {
		if b.RemindTime != nil {
			out = append(out, b)
		}
	}
	return out
}

func paginate(bookmarks []models.Bookmark, page models.Pageable) *models.BookmarkPage {
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].SavedAt.After(bookmarks[j].SavedAt)
	})

	start := page.Offset()
	if start > len(bookmarks) {
		start = len(bookmarks)
	}
	end := start + page.Size
	if end > len(bookmarks) {
		end = len(bookmarks)
	}

	content := bookmarks[start:end]
	if content == nil {
		content = []models.Bookmark{}
	}
	return &models.BookmarkPage{
		Content:    content,
		Page:       page.Page,
		Size:       page.Size,
		TotalCount: int64(len(bookmarks)),
	}
}

// fakeAccountRepo mirrors the account repository contracts.
type fakeAccountRepo struct {
	store *memStore
}

func (r *fakeAccountRepo) Create(_ context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	for _, existing := range r.store.accounts {
		if existing.Email == account.Email {
			return &domain.ConflictError{Message: "email already registered", ResourceType: "account", ResourceID: existing.ID}
		}
	}
	clone := *account
	r.store.accounts[account.ID] = &clone
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	account, ok := r.store.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}
	clone := *account
	return &clone, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, account := range r.store.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) Update(_ context.Context, account *models.Account) error {
	if _, ok := r.store.accounts[account.ID]; !ok {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrNotFound)
	}
	clone := *account
	r.store.accounts[account.ID] = &clone
	return nil
}

// testEnv wires every service over one shared store.
type testEnv struct {
	store    *memStore
	folders  *fakeFolderRepo
	members  *fakeAccountFolderRepo
	marks    *fakeBookmarkRepo
	accounts *fakeAccountRepo
	tokens   *fakeTokens

	folderService   *folderService
	moveService     *folderMoveService
	bookmarkService *bookmarkService
	trashService    *trashService
	shareService    *shareService
	accountService  *accountService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	env := &testEnv{
		store:    store,
		folders:  &fakeFolderRepo{store: store},
		members:  &fakeAccountFolderRepo{store: store},
		marks:    &fakeBookmarkRepo{store: store},
		accounts: &fakeAccountRepo{store: store},
		tokens:   newFakeTokens(),
	}

	logger := testLogger()
	tx := fakeTxManager{}

	env.folderService = NewFolderService(env.folders, env.members, env.marks, tx, nil, logger).(*folderService)
	env.moveService = NewFolderMoveService(env.folders, env.members, tx, nil, logger).(*folderMoveService)
	env.bookmarkService = NewBookmarkService(env.marks, env.folders, env.accounts, env.members, tx, nil, logger).(*bookmarkService)
	env.trashService = NewTrashService(env.marks, env.folders, env.members, tx, nil, logger).(*trashService)
	env.shareService = NewShareService(env.folders, env.members, tx, env.tokens, nil, logger).(*shareService)
	env.accountService = NewAccountService(env.accounts, env.folderService, env.tokens, logger).(*accountService)

	return env
}

// seedAccount registers a bare account and returns its id.
func (env *testEnv) seedAccount(email string) string {
	account := &models.Account{
		ID:          uuid.NewString(),
		Email:       email,
		SocialType:  "google",
		RemindCycle: models.DefaultRemindCycleDays,
	}
	env.store.accounts[account.ID] = account
	return account.ID
}

// mustCreateFolder creates a folder through the service, failing the
// test on error.
func (env *testEnv) mustCreateFolder(t interface{ Fatalf(string, ...any) }, accountID, name string, parentID *string) *models.Folder {
	folder, err := env.folderService.CreateFolder(context.Background(), accountID, &services.CreateFolderRequest{Name: name, ParentID: parentID})
	if err != nil {
		t.Fatalf("CreateFolder(%q) failed: %v", name, err)
	}
	return folder
}
