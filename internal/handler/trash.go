package handler

import (
	"log/slog"
	"net/http"

	"github.com/dotoriham/backend/internal/domain/services"
	"github.com/dotoriham/backend/internal/httputil"
)

// TrashHandler handles HTTP requests for the trash lifecycle
type TrashHandler struct {
	trashService services.TrashService
	logger       *slog.Logger
}

// NewTrashHandler creates a new trash handler
func NewTrashHandler(trashService services.TrashService, logger *slog.Logger) *TrashHandler {
	return &TrashHandler{
		trashService: trashService,
		logger:       logger,
	}
}

// List pages the account's trash by recency
func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.trashService.ListTrash(r.Context(), httputil.GetAccountID(r), parsePageable(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// Restore brings bookmarks back from the trash
func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookmarkIDs []string `json:"bookmark_ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.trashService.Restore(r.Context(), req.BookmarkIDs); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Truncate removes trash entries permanently
func (h *TrashHandler) Truncate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookmarkIDs []string `json:"bookmark_ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.trashService.PermanentDelete(r.Context(), req.BookmarkIDs); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
