package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidMove),
		errors.Is(err, domain.ErrFolderCapacity),
		errors.Is(err, domain.ErrFolderNotRoot),
		errors.Is(err, domain.ErrInvalidInvitation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrDuplicateBookmark),
		errors.Is(err, domain.ErrAlreadyInvited):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parsePageable reads page and size query parameters, leaving zero
// values for the service-side defaults when absent or malformed.
func parsePageable(r *http.Request) models.Pageable {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	return models.Pageable{Page: page, Size: size}
}
