package pools

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
)

// Repository manages persistence for reward pools.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context, kind *enums.PoolKind) ([]models.RewardPool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.RewardPool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pools repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActive(ctx context.Context, kind *enums.PoolKind) ([]models.RewardPool, error) {
	query := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("is_active = ?", true).
		Order("created_at ASC")
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	var pools []models.RewardPool
	if err := query.Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RewardPool, error) {
	var pool models.RewardPool
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&pool, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &pool, nil
}
