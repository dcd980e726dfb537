package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/services"
)

func TestClassifyMove(t *testing.T) {
	parentA := "parent-a"
	parentB := "parent-b"
	empty := ""

	tests := []struct {
		name     string
		parentID *string
		nextID   *string
		want     moveKind
	}{
		{"same parent is a reorder", &parentA, &parentA, moveSameScope},
		{"different parent is a move", &parentA, &parentB, moveCrossScope},
		{"top-level to top-level is a reorder", nil, nil, moveSameScope},
		{"empty string normalizes to top-level", nil, &empty, moveSameScope},
		{"into a parent from top-level is a move", nil, &parentA, moveCrossScope},
		{"out to top-level is a move", &parentA, nil, moveCrossScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folder := &models.Folder{ID: "f", ParentID: tt.parentID}
			plan := classifyMove(folder, &services.MoveFolderRequest{NextParentID: tt.nextID})
			if plan.kind != tt.want {
				t.Errorf("kind = %v, want %v", plan.kind, tt.want)
			}
		})
	}
}

func TestInsertAt_ClampsIndex(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		index int
		want  []string
	}{
		{"front", []string{"a", "b"}, 0, []string{"x", "a", "b"}},
		{"middle", []string{"a", "b"}, 1, []string{"a", "x", "b"}},
		{"end", []string{"a", "b"}, 2, []string{"a", "b", "x"}},
		{"past end clamps", []string{"a", "b"}, 9, []string{"a", "b", "x"}},
		{"negative clamps to front", []string{"a", "b"}, -3, []string{"x", "a", "b"}},
		{"empty scope", nil, 5, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := insertAt(tt.ids, "x", tt.index)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("insertAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMoveFolder_SameScopeReorder(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	root := env.mustCreateFolder(t, accountID, "root", nil)

	a := env.mustCreateFolder(t, accountID, "a", &root.ID)
	b := env.mustCreateFolder(t, accountID, "b", &root.ID)
	c := env.mustCreateFolder(t, accountID, "c", &root.ID)

	// [a0 b1 c2] with a moved to the back becomes [b0 c1 a2]
	err := env.moveService.MoveFolder(context.Background(), accountID, a.ID, &services.MoveFolderRequest{
		NextParentID: &root.ID,
		NextIndex:    2,
	})
	if err != nil {
		t.Fatalf("MoveFolder failed: %v", err)
	}

	assertSiblingOrder(t, env, root.ID, []string{b.ID, c.ID, a.ID})
}

func TestMoveFolder_CrossScopeRewritesSubtreeRoot(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	source := env.mustCreateFolder(t, accountID, "source", nil)
	target := env.mustCreateFolder(t, accountID, "target", nil)

	moved := env.mustCreateFolder(t, accountID, "moved", &source.ID)
	stays := env.mustCreateFolder(t, accountID, "stays", &source.ID)
	deep := env.mustCreateFolder(t, accountID, "deep", &moved.ID)
	existing := env.mustCreateFolder(t, accountID, "existing", &target.ID)

	err := env.moveService.MoveFolder(context.Background(), accountID, moved.ID, &services.MoveFolderRequest{
		NextParentID: &target.ID,
		NextIndex:    0,
	})
	if err != nil {
		t.Fatalf("MoveFolder failed: %v", err)
	}

	got := env.store.folders[moved.ID]
	if got.ParentID == nil || *got.ParentID != target.ID {
		t.Errorf("ParentID = %v, want %s", got.ParentID, target.ID)
	}
	if got.RootFolderID != target.ID {
		t.Errorf("RootFolderID = %s, want %s", got.RootFolderID, target.ID)
	}
	if env.store.folders[deep.ID].RootFolderID != target.ID {
		t.Errorf("descendant RootFolderID = %s, want %s", env.store.folders[deep.ID].RootFolderID, target.ID)
	}

	assertSiblingOrder(t, env, source.ID, []string{stays.ID})
	assertSiblingOrder(t, env, target.ID, []string{moved.ID, existing.ID})
}

func TestMoveFolder_RejectsCycle(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	root := env.mustCreateFolder(t, accountID, "root", nil)
	mid := env.mustCreateFolder(t, accountID, "mid", &root.ID)
	leaf := env.mustCreateFolder(t, accountID, "leaf", &mid.ID)

	tests := []struct {
		name   string
		folder string
		target string
	}{
		{"under own descendant", mid.ID, leaf.ID},
		{"under itself", mid.ID, mid.ID},
		{"root under leaf", root.ID, leaf.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.moveService.MoveFolder(context.Background(), accountID, tt.folder, &services.MoveFolderRequest{
				NextParentID: &tt.target,
			})
			if !errors.Is(err, domain.ErrInvalidMove) {
				t.Fatalf("err = %v, want ErrInvalidMove", err)
			}
		})
	}

	// Topology is untouched after the rejections
	if got := env.store.folders[mid.ID]; got.ParentID == nil || *got.ParentID != root.ID {
		t.Errorf("mid parent = %v, want %s", got.ParentID, root.ID)
	}
	if got := env.store.folders[leaf.ID]; got.RootFolderID != root.ID {
		t.Errorf("leaf root = %s, want %s", got.RootFolderID, root.ID)
	}
}

func TestMoveFolder_RespectsCapacity(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	source := env.mustCreateFolder(t, accountID, "source", nil)
	target := env.mustCreateFolder(t, accountID, "target", nil)
	moved := env.mustCreateFolder(t, accountID, "moved", &source.ID)

	for i := 0; i < 8; i++ {
		env.mustCreateFolder(t, accountID, fmt.Sprintf("filler-%d", i), &target.ID)
	}

	err := env.moveService.MoveFolder(context.Background(), accountID, moved.ID, &services.MoveFolderRequest{
		NextParentID: &target.ID,
	})
	if !errors.Is(err, domain.ErrFolderCapacity) {
		t.Fatalf("err = %v, want ErrFolderCapacity", err)
	}

	if got := env.store.folders[moved.ID]; got.ParentID == nil || *got.ParentID != source.ID {
		t.Errorf("moved parent = %v, want unchanged %s", got.ParentID, source.ID)
	}
}

func TestMoveFolder_PromotionToTopLevelCreatesOwnership(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	root := env.mustCreateFolder(t, accountID, "root", nil)
	child := env.mustCreateFolder(t, accountID, "child", &root.ID)
	grand := env.mustCreateFolder(t, accountID, "grand", &child.ID)

	err := env.moveService.MoveFolder(context.Background(), accountID, child.ID, &services.MoveFolderRequest{
		NextParentID: nil,
		NextIndex:    1,
	})
	if err != nil {
		t.Fatalf("MoveFolder failed: %v", err)
	}

	got := env.store.folders[child.ID]
	if got.ParentID != nil {
		t.Errorf("ParentID = %v, want nil", got.ParentID)
	}
	if got.RootFolderID != child.ID {
		t.Errorf("RootFolderID = %s, want own id", got.RootFolderID)
	}
	if env.store.folders[grand.ID].RootFolderID != child.ID {
		t.Error("descendant did not follow the new root")
	}

	membership, err := env.members.Get(context.Background(), accountID, child.ID)
	if err != nil {
		t.Fatalf("expected OWNER membership for promoted root, got: %v", err)
	}
	if membership.Authority != models.AuthorityOwner {
		t.Errorf("Authority = %s, want OWNER", membership.Authority)
	}
}

func TestMoveFolder_DemotedRootLosesMemberships(t *testing.T) {
	env := newTestEnv()
	owner := env.seedAccount("owner@example.com")
	invitee := env.seedAccount("guest@example.com")

	shared := env.mustCreateFolder(t, owner, "shared", nil)
	keeper := env.mustCreateFolder(t, owner, "keeper", nil)

	token, err := env.shareService.CreateInvitationToken(context.Background(), owner, shared.ID)
	if err != nil {
		t.Fatalf("CreateInvitationToken failed: %v", err)
	}
	if err := env.shareService.AcceptInvitation(context.Background(), invitee, token); err != nil {
		t.Fatalf("AcceptInvitation failed: %v", err)
	}

	err = env.moveService.MoveFolder(context.Background(), owner, shared.ID, &services.MoveFolderRequest{
		NextParentID: &keeper.ID,
	})
	if err != nil {
		t.Fatalf("MoveFolder failed: %v", err)
	}

	if ids, _ := env.members.ListAccountIDs(context.Background(), shared.ID); len(ids) != 0 {
		t.Errorf("memberships for demoted root = %v, want none", ids)
	}
	if got := env.store.folders[shared.ID]; got.SharedType != models.SharedTypeNone {
		t.Errorf("SharedType = %s, want NONE", got.SharedType)
	}
}

func assertSiblingOrder(t *testing.T, env *testEnv, parentID string, want []string) {
	t.Helper()

	siblings, err := env.folders.ListChildren(context.Background(), parentID)
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if len(siblings) != len(want) {
		t.Fatalf("sibling count = %d, want %d", len(siblings), len(want))
	}
	for i, folder := range siblings {
		if folder.ID != want[i] {
			t.Errorf("sibling %d = %s, want %s", i, folder.ID, want[i])
		}
		if folder.Index != i {
			t.Errorf("sibling %s Index = %d, want %d", folder.ID, folder.Index, i)
		}
	}
}
