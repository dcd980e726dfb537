package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/services"
)

func TestAddBookmark_FiledBumpsCountAndLabel(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	folder := env.mustCreateFolder(t, accountID, "reading", nil)

	bookmark, err := env.bookmarkService.AddBookmark(context.Background(), accountID, &folder.ID, &services.AddBookmarkRequest{
		Link:  "https://example.com/article",
		Title: "An article",
	})
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}

	if bookmark.FolderName == nil || *bookmark.FolderName != "reading" {
		t.Errorf("FolderName = %v, want \"reading\"", bookmark.FolderName)
	}
	if got := env.store.folders[folder.ID].BookmarkCount; got != 1 {
		t.Errorf("BookmarkCount = %d, want 1", got)
	}
}

func TestAddBookmark_DuplicateLinkRejected(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	folder := env.mustCreateFolder(t, accountID, "reading", nil)

	req := &services.AddBookmarkRequest{Link: "https://example.com/article"}
	if _, err := env.bookmarkService.AddBookmark(context.Background(), accountID, &folder.ID, req); err != nil {
		t.Fatalf("first AddBookmark failed: %v", err)
	}

	_, err := env.bookmarkService.AddBookmark(context.Background(), accountID, &folder.ID, req)
	if !errors.Is(err, domain.ErrDuplicateBookmark) {
		t.Fatalf("err = %v, want ErrDuplicateBookmark", err)
	}
	if got := env.store.folders[folder.ID].BookmarkCount; got != 1 {
		t.Errorf("BookmarkCount after rejection = %d, want 1", got)
	}
}

func TestAddBookmark_DuplicateAllowedAfterTrash(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	folder := env.mustCreateFolder(t, accountID, "reading", nil)

	req := &services.AddBookmarkRequest{Link: "https://example.com/article"}
	first, err := env.bookmarkService.AddBookmark(context.Background(), accountID, &folder.ID, req)
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}
	if err := env.bookmarkService.DeleteBookmarks(context.Background(), []string{first.ID}); err != nil {
		t.Fatalf("DeleteBookmarks failed: %v", err)
	}

	// Only live bookmarks count toward the duplicate check
	if _, err := env.bookmarkService.AddBookmark(context.Background(), accountID, &folder.ID, req); err != nil {
		t.Fatalf("re-adding trashed link failed: %v", err)
	}
}

func TestAddBookmark_UnfiledSkipsFolderChecks(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")

	bookmark, err := env.bookmarkService.AddBookmark(context.Background(), accountID, nil, &services.AddBookmarkRequest{
		Link: "https://example.com/loose",
	})
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}
	if bookmark.FolderID != nil {
		t.Errorf("FolderID = %v, want nil", bookmark.FolderID)
	}
}

func TestAddBookmark_InvalidLinkRejected(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")

	_, err := env.bookmarkService.AddBookmark(context.Background(), accountID, nil, &services.AddBookmarkRequest{
		Link: "not a url",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestAddBookmark_RemindUsesAccountCycle(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	token := "device-1"
	env.store.accounts[accountID].DeliveryToken = &token

	bookmark, err := env.bookmarkService.AddBookmark(context.Background(), accountID, nil, &services.AddBookmarkRequest{
		Link:   "https://example.com/later",
		Remind: true,
	})
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}

	if bookmark.RemindTime == nil {
		t.Fatal("RemindTime not set")
	}
	if len(bookmark.RemindList) != 1 || bookmark.RemindList[0].DeliveryToken != token {
		t.Errorf("RemindList = %+v, want one entry for %s", bookmark.RemindList, token)
	}
}

func TestDeleteBookmarks_SoftDeletesAndReleasesCount(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	folder := env.mustCreateFolder(t, accountID, "reading", nil)

	bookmark, err := env.bookmarkService.AddBookmark(context.Background(), accountID, &folder.ID, &services.AddBookmarkRequest{
		Link: "https://example.com/article",
	})
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}

	if err := env.bookmarkService.DeleteBookmarks(context.Background(), []string{bookmark.ID}); err != nil {
		t.Fatalf("DeleteBookmarks failed: %v", err)
	}

	stored := env.store.bookmarks[bookmark.ID]
	if !stored.Deleted || stored.DeleteTime == nil {
		t.Error("bookmark not marked deleted with a delete time")
	}
	if got := env.store.folders[folder.ID].BookmarkCount; got != 0 {
		t.Errorf("BookmarkCount = %d, want 0", got)
	}

	// Deleting again is a no-op, not a double decrement
	if err := env.bookmarkService.DeleteBookmarks(context.Background(), []string{bookmark.ID}); err != nil {
		t.Fatalf("second DeleteBookmarks failed: %v", err)
	}
	if got := env.store.folders[folder.ID].BookmarkCount; got != 0 {
		t.Errorf("BookmarkCount after repeat delete = %d, want 0", got)
	}
}

func TestMoveBookmark_TransfersCountAndLabel(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	from := env.mustCreateFolder(t, accountID, "from", nil)
	to := env.mustCreateFolder(t, accountID, "to", nil)

	bookmark, err := env.bookmarkService.AddBookmark(context.Background(), accountID, &from.ID, &services.AddBookmarkRequest{
		Link: "https://example.com/article",
	})
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}

	if err := env.bookmarkService.MoveBookmark(context.Background(), bookmark.ID, to.ID); err != nil {
		t.Fatalf("MoveBookmark failed: %v", err)
	}

	stored := env.store.bookmarks[bookmark.ID]
	if stored.FolderID == nil || *stored.FolderID != to.ID {
		t.Errorf("FolderID = %v, want %s", stored.FolderID, to.ID)
	}
	if stored.FolderName == nil || *stored.FolderName != "to" {
		t.Errorf("FolderName = %v, want \"to\"", stored.FolderName)
	}
	if got := env.store.folders[from.ID].BookmarkCount; got != 0 {
		t.Errorf("source count = %d, want 0", got)
	}
	if got := env.store.folders[to.ID].BookmarkCount; got != 1 {
		t.Errorf("target count = %d, want 1", got)
	}
}

func TestMoveBookmark_SameFolderIsNoOp(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	folder := env.mustCreateFolder(t, accountID, "reading", nil)

	bookmark, err := env.bookmarkService.AddBookmark(context.Background(), accountID, &folder.ID, &services.AddBookmarkRequest{
		Link: "https://example.com/article",
	})
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}

	if err := env.bookmarkService.MoveBookmark(context.Background(), bookmark.ID, folder.ID); err != nil {
		t.Fatalf("MoveBookmark failed: %v", err)
	}
	if got := env.store.folders[folder.ID].BookmarkCount; got != 1 {
		t.Errorf("count after no-op move = %d, want 1", got)
	}
}

func TestToggleRemind_RoundTrip(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")
	token := "device-1"
	env.store.accounts[accountID].DeliveryToken = &token

	bookmark, err := env.bookmarkService.AddBookmark(context.Background(), accountID, nil, &services.AddBookmarkRequest{
		Link: "https://example.com/article",
	})
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}

	if err := env.bookmarkService.ToggleOnRemind(context.Background(), accountID, bookmark.ID); err != nil {
		t.Fatalf("ToggleOnRemind failed: %v", err)
	}
	stored := env.store.bookmarks[bookmark.ID]
	if stored.RemindTime == nil || len(stored.RemindList) != 1 {
		t.Fatalf("remind not recorded: time=%v list=%v", stored.RemindTime, stored.RemindList)
	}

	// Toggling on twice stays a single subscription
	if err := env.bookmarkService.ToggleOnRemind(context.Background(), accountID, bookmark.ID); err != nil {
		t.Fatalf("repeat ToggleOnRemind failed: %v", err)
	}
	if got := len(env.store.bookmarks[bookmark.ID].RemindList); got != 1 {
		t.Errorf("RemindList length = %d, want 1", got)
	}

	if err := env.bookmarkService.ToggleOffRemind(context.Background(), accountID, bookmark.ID); err != nil {
		t.Fatalf("ToggleOffRemind failed: %v", err)
	}
	stored = env.store.bookmarks[bookmark.ID]
	if len(stored.RemindList) != 0 || stored.RemindTime != nil {
		t.Errorf("remind not cleared: time=%v list=%v", stored.RemindTime, stored.RemindList)
	}
}

func TestToggleOffRemind_KeepsOtherSubscriptions(t *testing.T) {
	env := newTestEnv()
	first := env.seedAccount("first@example.com")
	second := env.seedAccount("second@example.com")
	firstToken, secondToken := "device-1", "device-2"
	env.store.accounts[first].DeliveryToken = &firstToken
	env.store.accounts[second].DeliveryToken = &secondToken

	bookmark, err := env.bookmarkService.AddBookmark(context.Background(), first, nil, &services.AddBookmarkRequest{
		Link: "https://example.com/article",
	})
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}
	if err := env.bookmarkService.ToggleOnRemind(context.Background(), first, bookmark.ID); err != nil {
		t.Fatalf("ToggleOnRemind(first) failed: %v", err)
	}
	if err := env.bookmarkService.ToggleOnRemind(context.Background(), second, bookmark.ID); err != nil {
		t.Fatalf("ToggleOnRemind(second) failed: %v", err)
	}

	if err := env.bookmarkService.ToggleOffRemind(context.Background(), first, bookmark.ID); err != nil {
		t.Fatalf("ToggleOffRemind failed: %v", err)
	}

	stored := env.store.bookmarks[bookmark.ID]
	if len(stored.RemindList) != 1 || stored.RemindList[0].DeliveryToken != secondToken {
		t.Errorf("RemindList = %+v, want one entry for %s", stored.RemindList, secondToken)
	}
	if stored.RemindTime == nil {
		t.Error("RemindTime cleared while a subscription remains")
	}
}

func TestToggleOnRemind_RequiresDeliveryToken(t *testing.T) {
	env := newTestEnv()
	accountID := env.seedAccount("owner@example.com")

	bookmark, err := env.bookmarkService.AddBookmark(context.Background(), accountID, nil, &services.AddBookmarkRequest{
		Link: "https://example.com/article",
	})
	if err != nil {
		t.Fatalf("AddBookmark failed: %v", err)
	}

	err = env.bookmarkService.ToggleOnRemind(context.Background(), accountID, bookmark.ID)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name string
		in   models.Pageable
		want models.Pageable
	}{
		{"defaults applied", models.Pageable{}, models.Pageable{Page: 0, Size: 20}},
		{"negative page floored", models.Pageable{Page: -2, Size: 10}, models.Pageable{Page: 0, Size: 10}},
		{"oversize capped", models.Pageable{Page: 1, Size: 500}, models.Pageable{Page: 1, Size: 100}},
		{"valid untouched", models.Pageable{Page: 3, Size: 25}, models.Pageable{Page: 3, Size: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampPage(tt.in); got != tt.want {
				t.Errorf("clampPage(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
