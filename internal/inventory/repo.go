package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
)

// Filters narrows and orders inventory listings.
type Filters struct {
	Status   *enums.ItemStatus
	Rarity   *enums.Rarity
	Source   *enums.ItemSource
	MinValue *int64
	MaxValue *int64
	Sort     Sort
}

// Sort selects the listing order. The zero value means newest first.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortValueDesc Sort = "value_desc"
	SortValueAsc  Sort = "value_asc"
)

// ParseSort maps a query string onto a sort key, defaulting to newest first.
func ParseSort(raw string) (Sort, error) {
	switch Sort(raw) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest, SortValueDesc, SortValueAsc:
		return Sort(raw), nil
	}
	return "", fmt.Errorf("unknown sort %q", raw)
}

// RaritySummaryRow is one aggregated bucket of the owned-items summary.
type RaritySummaryRow struct {
	Rarity     enums.Rarity `gorm:"column:rarity"`
	Count      int64        `gorm:"column:count"`
	TotalValue int64        `gorm:"column:total_value"`
}

// Repository manages persistence for inventory items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, userID uuid.UUID, filters Filters, limit int, after *models.InventoryItem) ([]models.InventoryItem, error)
	ListByStatus(ctx context.Context, status enums.ItemStatus, limit int) ([]models.InventoryItem, error)
	TransitionStatus(ctx context.Context, itemID, userID uuid.UUID, from, to enums.ItemStatus, txID *uuid.UUID, at time.Time) (bool, error)
	SummaryByRarity(ctx context.Context, userID uuid.UUID) ([]RaritySummaryRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, filters Filters, limit int, after *models.InventoryItem) ([]models.InventoryItem, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(limit)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Rarity != nil {
		query = query.Where("rarity = ?", *filters.Rarity)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}
	if filters.MinValue != nil {
		query = query.Where("value >= ?", *filters.MinValue)
	}
	if filters.MaxValue != nil {
		query = query.Where("value <= ?", *filters.MaxValue)
	}

	// Keyset pagination: the anchor is the last row of the previous page,
	// matched on the active sort key with id as tiebreaker.
	switch filters.Sort {
	case SortOldest:
		query = query.Order("obtained_at ASC").Order("id ASC")
		if after != nil {
			query = query.Where("(obtained_at, id) > (?, ?)", after.ObtainedAt, after.ID)
		}
	case SortValueDesc:
		query = query.Order("value DESC").Order("id DESC")
		if after != nil {
			query = query.Where("(value, id) < (?, ?)", after.Value, after.ID)
		}
	case SortValueAsc:
		query = query.Order("value ASC").Order("id ASC")
		if after != nil {
			query = query.Where("(value, id) > (?, ?)", after.Value, after.ID)
		}
	default:
		query = query.Order("obtained_at DESC").Order("id DESC")
		if after != nil {
			query = query.Where("(obtained_at, id) < (?, ?)", after.ObtainedAt, after.ID)
		}
	}

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.ItemStatus, limit int) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("updated_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// TransitionStatus flips the item status with a single conditional UPDATE.
// The WHERE clause pins the owner and the expected current status, so a
// concurrent sale and withdrawal of the same item cannot both succeed.
func (r *repository) TransitionStatus(ctx context.Context, itemID, userID uuid.UUID, from, to enums.ItemStatus, txID *uuid.UUID, at time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case enums.ItemStatusSold:
		updates["sold_at"] = at
	case enums.ItemStatusWithdrawalRequested:
		updates["withdrawal_requested_at"] = at
	case enums.ItemStatusWithdrawn:
		updates["withdrawn_at"] = at
	}
	if txID != nil {
		updates["transaction_id"] = *txID
	}

	query := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("id = ? AND status = ?", itemID, from)
	if userID != uuid.Nil {
		query = query.Where("user_id = ?", userID)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) SummaryByRarity(ctx context.Context, userID uuid.UUID) ([]RaritySummaryRow, error) {
	var rows []RaritySummaryRow
	err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Select("rarity, COUNT(*) AS count, COALESCE(SUM(value), 0) AS total_value").
		Where("user_id = ? AND status = ?", userID, enums.ItemStatusOwned).
		Group("rarity").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
