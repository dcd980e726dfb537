package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/dotoriham/backend/internal/auth"
	"github.com/dotoriham/backend/internal/domain"
	"github.com/dotoriham/backend/internal/domain/models"
	"github.com/dotoriham/backend/internal/domain/repositories"
	"github.com/dotoriham/backend/internal/domain/services"
)

type accountService struct {
	accountRepo   repositories.AccountRepository
	folderService services.FolderService
	tokens        auth.TokenProvider
	logger        *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo repositories.AccountRepository,
	folderService services.FolderService,
	tokens auth.TokenProvider,
	logger *slog.Logger,
) services.AccountService {
	return &accountService{
		accountRepo:   accountRepo,
		folderService: folderService,
		tokens:        tokens,
		logger:        logger,
	}
}

// SocialLogin signs an existing account in, or registers it on first
// contact. New accounts get the starter folder before the token is
// issued, so a fresh login always lands on a usable tree.
func (s *accountService) SocialLogin(ctx context.Context, req *services.SocialLoginRequest) (*services.LoginResult, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.SocialType, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	isRegistered := account != nil
	if account == nil {
		now := time.Now()
		account = &models.Account{
			ID:          uuid.NewString(),
			Email:       req.Email,
			Name:        req.Name,
			Image:       req.Image,
			SocialType:  req.SocialType,
			RemindCycle: models.DefaultRemindCycleDays,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.DeliveryToken != "" {
			account.DeliveryToken = &req.DeliveryToken
		}

		if err := s.accountRepo.Create(ctx, account); err != nil {
			return nil, err
		}
		if _, err := s.folderService.CreateDefaultFolder(ctx, account.ID); err != nil {
			return nil, fmt.Errorf("provision default folder: %w", err)
		}

		s.logger.Info("account registered", "account_id", account.ID, "social_type", account.SocialType)
	} else if req.DeliveryToken != "" {
		account.DeliveryToken = &req.DeliveryToken
		account.UpdatedAt = time.Now()
		if err := s.accountRepo.Update(ctx, account); err != nil {
			return nil, err
		}
	}

	accessToken, err := s.tokens.SignAccess(account.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &services.LoginResult{
		Account:      account,
		AccessToken:  accessToken,
		IsRegistered: isRegistered,
	}, nil
}

// GetProfile returns the account's profile
func (s *accountService) GetProfile(ctx context.Context, accountID string) (*models.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// RegisterDeliveryToken stores the push delivery token used by reminder
// subscriptions.
func (s *accountService) RegisterDeliveryToken(ctx context.Context, accountID, token string) error {
	if err := validation.Validate(token, validation.Required); err != nil {
		return fmt.Errorf("%w: delivery token %v", domain.ErrValidation, err)
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	account.DeliveryToken = &token
	account.UpdatedAt = time.Now()
	return s.accountRepo.Update(ctx, account)
}
