package handler

import (
	"log/slog"
	"net/http"

	"github.com/dotoriham/backend/internal/auth"
	"github.com/dotoriham/backend/internal/domain/services"
	"github.com/dotoriham/backend/internal/httputil"
)

// UserHandler handles HTTP requests for login and profile operations
type UserHandler struct {
	accountService services.AccountService
	socialVerifier *auth.SocialVerifier
	logger         *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(accountService services.AccountService, socialVerifier *auth.SocialVerifier, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		accountService: accountService,
		socialVerifier: socialVerifier,
		logger:         logger,
	}
}

// Login verifies a social provider's ID token and signs the account in,
// registering it on first contact. This is the only unauthenticated
// endpoint besides health.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken       string `json:"id_token"`
		SocialType    string `json:"social_type"`
		DeliveryToken string `json:"delivery_token"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.socialVerifier.VerifyIDToken(req.IDToken)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.accountService.SocialLogin(r.Context(), &services.SocialLoginRequest{
		Email:         profile.Email,
		Name:          profile.Name,
		Image:         profile.Image,
		SocialType:    req.SocialType,
		DeliveryToken: req.DeliveryToken,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusOK
	if !result.IsRegistered {
		status = http.StatusCreated
	}
	httputil.RespondJSON(w, status, result)
}

// Profile returns the authenticated account's profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetProfile(r.Context(), httputil.GetAccountID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, account)
}

// RegisterDeliveryToken stores the device token reminders are pushed to
func (h *UserHandler) RegisterDeliveryToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeliveryToken string `json:"delivery_token"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.accountService.RegisterDeliveryToken(r.Context(), httputil.GetAccountID(r), req.DeliveryToken)
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
