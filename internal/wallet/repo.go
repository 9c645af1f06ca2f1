package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/db/models"
)

// ErrBalanceCheckFailed signals the conditional debit matched no row: either
// the user does not exist or the balance was below the requested amount.
var ErrBalanceCheckFailed = errors.New("balance check failed")

// Repository manages persistence for wallet balances and ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	DebitBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	CreditBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	AddLifetimeSpent(ctx context.Context, userID uuid.UUID, amount int64) error
	AddLifetimeWon(ctx context.Context, userID uuid.UUID, amount int64) error
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	CreateEntry(ctx context.Context, entry *models.WalletEntry) error
	ListEntries(ctx context.Context, userID uuid.UUID, limit int, before *models.WalletEntry) ([]models.WalletEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// DebitBalance decrements the balance only when it covers the amount. The
// WHERE clause carries the non-negative guarantee so concurrent debits cannot
// overdraw; RowsAffected == 0 maps to ErrBalanceCheckFailed.
func (r *repository) DebitBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrBalanceCheckFailed
	}
	return r.GetBalance(ctx, userID)
}

func (r *repository) CreditBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return r.GetBalance(ctx, userID)
}

func (r *repository) AddLifetimeSpent(ctx context.Context, userID uuid.UUID, amount int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("lifetime_spent", gorm.Expr("lifetime_spent + ?", amount)).Error
}

func (r *repository) AddLifetimeWon(ctx context.Context, userID uuid.UUID, amount int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("lifetime_won", gorm.Expr("lifetime_won + ?", amount)).Error
}

func (r *repository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Select("balance").
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, userID uuid.UUID, limit int, before *models.WalletEntry) ([]models.WalletEntry, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if before != nil {
		query = query.Where("(created_at, id) < (?, ?)", before.CreatedAt, before.ID)
	}
	var entries []models.WalletEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
