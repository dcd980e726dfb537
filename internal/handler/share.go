package handler

import (
	"log/slog"
	"net/http"

	"github.com/dotoriham/backend/internal/domain/services"
	"github.com/dotoriham/backend/internal/httputil"
)

// ShareHandler handles HTTP requests for folder sharing
type ShareHandler struct {
	shareService services.ShareService
	logger       *slog.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(shareService services.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		logger:       logger,
	}
}

// Invite opens a root folder for sharing and returns the invitation token
func (h *ShareHandler) Invite(w http.ResponseWriter, r *http.Request) {
	token, err := h.shareService.CreateInvitationToken(r.Context(), httputil.GetAccountID(r), r.PathValue("folderID"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]string{"invitation_token": token})
}

// Accept joins the acting account to a shared tree
func (h *ShareHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.shareService.AcceptInvitation(r.Context(), httputil.GetAccountID(r), req.Token); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Exit removes the acting account from a shared tree
func (h *ShareHandler) Exit(w http.ResponseWriter, r *http.Request) {
	if err := h.shareService.ExitSharedFolder(r.Context(), httputil.GetAccountID(r), r.PathValue("folderID")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
