package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	apperrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/pagination"
)

// Service defines the wallet ledger operations. Every balance mutation writes
// a WalletEntry carrying the post-mutation balance and a transaction id so a
// redemption's debit and payout share one correlation key.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Debit(ctx context.Context, input MutationInput) (*models.WalletEntry, error)
	Credit(ctx context.Context, input MutationInput) (*models.WalletEntry, error)
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	Entries(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletEntry, string, error)
}

// MutationInput captures one balance change request.
type MutationInput struct {
	UserID        uuid.UUID
	Amount        int64
	Type          enums.WalletEntryType
	TransactionID uuid.UUID
	Metadata      json.RawMessage
}

type service struct {
	repo Repository
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Debit(ctx context.Context, input MutationInput) (*models.WalletEntry, error) {
	if err := validateMutation(input); err != nil {
		return nil, err
	}

	// A zero debit succeeds without touching the balance or the ledger.
	// Free pools hit this path.
	if input.Amount == 0 {
		balance, err := s.repo.GetBalance(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
			}
			return nil, err
		}
		return &models.WalletEntry{
			UserID:        input.UserID,
			Type:          input.Type,
			Amount:        0,
			BalanceAfter:  balance,
			TransactionID: input.TransactionID,
		}, nil
	}

	balance, err := s.repo.DebitBalance(ctx, input.UserID, input.Amount)
	if err != nil {
		if errors.Is(err, ErrBalanceCheckFailed) {
			return nil, s.classifyDebitFailure(ctx, input)
		}
		return nil, err
	}

	if input.Type == enums.WalletEntryTypeRedeemCost {
		if err := s.repo.AddLifetimeSpent(ctx, input.UserID, input.Amount); err != nil {
			return nil, err
		}
	}

	entry := &models.WalletEntry{
		UserID:        input.UserID,
		Type:          input.Type,
		Amount:        -input.Amount,
		BalanceAfter:  balance,
		TransactionID: input.TransactionID,
		Metadata:      input.Metadata,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Credit(ctx context.Context, input MutationInput) (*models.WalletEntry, error) {
	if err := validateMutation(input); err != nil {
		return nil, err
	}

	// Zero-value payouts exist (empty wheel segments); they succeed without
	// touching the balance or the ledger.
	if input.Amount == 0 {
		balance, err := s.repo.GetBalance(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
			}
			return nil, err
		}
		return &models.WalletEntry{
			UserID:        input.UserID,
			Type:          input.Type,
			Amount:        0,
			BalanceAfter:  balance,
			TransactionID: input.TransactionID,
		}, nil
	}

	balance, err := s.repo.CreditBalance(ctx, input.UserID, input.Amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return nil, err
	}

	if input.Type == enums.WalletEntryTypeRewardPayout || input.Type == enums.WalletEntryTypeItemSale {
		if err := s.repo.AddLifetimeWon(ctx, input.UserID, input.Amount); err != nil {
			return nil, err
		}
	}

	entry := &models.WalletEntry{
		UserID:        input.UserID,
		Type:          input.Type,
		Amount:        input.Amount,
		BalanceAfter:  balance,
		TransactionID: input.TransactionID,
		Metadata:      input.Metadata,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return 0, err
	}
	return balance, nil
}

func (s *service) Entries(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletEntry, string, error) {
	if userID == uuid.Nil {
		return nil, "", apperrors.New(apperrors.CodeValidation, "user id is required")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var before *models.WalletEntry
	if cursor, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	} else if cursor != nil {
		before = &models.WalletEntry{ID: cursor.ID, CreatedAt: cursor.CreatedAt}
	}

	entries, err := s.repo.ListEntries(ctx, userID, limit+1, before)
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, nextCursor, nil
}

// classifyDebitFailure separates "user missing" from "balance too low" after
// the conditional update matched nothing.
func (s *service) classifyDebitFailure(ctx context.Context, input MutationInput) error {
	balance, err := s.repo.GetBalance(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return err
	}
	return apperrors.New(apperrors.CodeInsufficientFunds, "balance does not cover the amount").
		WithDetails(map[string]any{"balance": balance, "required": input.Amount})
}

func validateMutation(input MutationInput) error {
	if input.UserID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if input.Amount < 0 {
		return apperrors.New(apperrors.CodeValidation, "amount cannot be negative")
	}
	if !input.Type.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid wallet entry type %q", input.Type))
	}
	if input.TransactionID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "transaction id is required")
	}
	return nil
}
