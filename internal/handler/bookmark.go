package handler

import (
	"log/slog"
	"net/http"

	"github.com/dotoriham/backend/internal/domain/services"
	"github.com/dotoriham/backend/internal/httputil"
)

// BookmarkHandler handles HTTP requests for bookmark operations
type BookmarkHandler struct {
	bookmarkService services.BookmarkService
	logger          *slog.Logger
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(bookmarkService services.BookmarkService, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkService: bookmarkService,
		logger:          logger,
	}
}

// Add saves a link, optionally into a folder
func (h *BookmarkHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		services.AddBookmarkRequest
		FolderID *string `json:"folder_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookmark, err := h.bookmarkService.AddBookmark(r.Context(), httputil.GetAccountID(r), req.FolderID, &req.AddBookmarkRequest)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, bookmark)
}

// DeleteList soft-deletes bookmarks into the trash
func (h *BookmarkHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookmarkIDs []string `json:"bookmark_ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.bookmarkService.DeleteBookmarks(r.Context(), req.BookmarkIDs); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Update overwrites title and description
func (h *BookmarkHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateBookmarkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookmark, err := h.bookmarkService.UpdateBookmark(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bookmark)
}

// Click bumps the click counter
func (h *BookmarkHandler) Click(w http.ResponseWriter, r *http.Request) {
	bookmark, err := h.bookmarkService.IncreaseClickCount(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bookmark)
}

// Move relocates one bookmark into another folder
func (h *BookmarkHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NextFolderID string `json:"next_folder_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.bookmarkService.MoveBookmark(r.Context(), r.PathValue("id"), req.NextFolderID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MoveList relocates several bookmarks into the same folder
func (h *BookmarkHandler) MoveList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookmarkIDs  []string `json:"bookmark_ids"`
		NextFolderID string   `json:"next_folder_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.bookmarkService.MoveBookmarkList(r.Context(), req.BookmarkIDs, req.NextFolderID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemindOn subscribes the account's device to the bookmark's reminder
func (h *BookmarkHandler) RemindOn(w http.ResponseWriter, r *http.Request) {
	if err := h.bookmarkService.ToggleOnRemind(r.Context(), httputil.GetAccountID(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemindOff removes the account's reminder subscription
func (h *BookmarkHandler) RemindOff(w http.ResponseWriter, r *http.Request) {
	if err := h.bookmarkService.ToggleOffRemind(r.Context(), httputil.GetAccountID(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PageByFolder pages a folder's live bookmarks by recency
func (h *BookmarkHandler) PageByFolder(w http.ResponseWriter, r *http.Request) {
	remindOnly := r.URL.Query().Get("remind") == "true"

	page, err := h.bookmarkService.PageByFolder(r.Context(), r.PathValue("folderID"), remindOnly, parsePageable(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// PageByAccount pages the account's live bookmarks by recency
func (h *BookmarkHandler) PageByAccount(w http.ResponseWriter, r *http.Request) {
	remindOnly := r.URL.Query().Get("remind") == "true"

	page, err := h.bookmarkService.PageByAccount(r.Context(), httputil.GetAccountID(r), remindOnly, parsePageable(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// TodayRemind lists the bookmarks due for a reminder today
func (h *BookmarkHandler) TodayRemind(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.bookmarkService.TodayRemindBookmarks(r.Context(), httputil.GetAccountID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bookmarks)
}
