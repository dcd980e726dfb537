// Package handler exposes the HTTP surface over the domain services.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/dotoriham/backend/internal/domain/services"
	"github.com/dotoriham/backend/internal/httputil"
)

// FolderHandler handles HTTP requests for folder tree operations
type FolderHandler struct {
	folderService services.FolderService
	moveService   services.FolderMoveService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, moveService services.FolderMoveService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		moveService:   moveService,
		logger:        logger,
	}
}

// Create adds a folder, top-level when no parent is given
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), httputil.GetAccountID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetForest returns the account's full tree snapshot
func (h *FolderHandler) GetForest(w http.ResponseWriter, r *http.Request) {
	forest, err := h.folderService.BuildForest(r.Context(), httputil.GetAccountID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, forest)
}

// Rename overwrites the folder name
func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, err := h.folderService.RenameFolder(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"name": name})
}

// ChangeEmoji overwrites the folder emoji
func (h *FolderHandler) ChangeEmoji(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	emoji, err := h.folderService.ChangeEmoji(r.Context(), r.PathValue("id"), req.Emoji)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"emoji": emoji})
}

// Move repositions a folder inside or across scopes
func (h *FolderHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req services.MoveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.moveService.MoveFolder(r.Context(), httputil.GetAccountID(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes the folder and its subtree
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.folderService.DeleteFolder(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteList removes several folders and their subtrees
func (h *FolderHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderIDs []string `json:"folder_ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.folderService.DeleteFolderList(r.Context(), req.FolderIDs); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListChildren returns the immediate children in sibling order
func (h *FolderHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	items, err := h.folderService.ListChildren(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}

// ListAncestors returns the chain from the topmost ancestor down
func (h *FolderHandler) ListAncestors(w http.ResponseWriter, r *http.Request) {
	items, err := h.folderService.ListAncestorChain(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}
