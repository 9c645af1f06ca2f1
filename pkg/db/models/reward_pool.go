package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/enums"
)

// RewardPool represents a case or a wheel: an ordered set of weighted reward
// options plus an entry cost. Pools are read-mostly configuration; the draw
// path never mutates them.
type RewardPool struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name      string         `gorm:"column:name;type:text;not null"`
	Kind      enums.PoolKind `gorm:"column:kind;not null"`
	Image     string         `gorm:"column:image;type:text;not null;default:''"`
	EntryCost int64          `gorm:"column:entry_cost;not null;default:0"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	Options   []RewardOption `gorm:"foreignKey:PoolID;references:ID"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *RewardPool) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// RewardOption is one weighted candidate of a pool. Position preserves the
// stored order the cumulative draw scan depends on.
type RewardOption struct {
	ID       uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	PoolID   uuid.UUID        `gorm:"column:pool_id;type:uuid;not null;index"`
	Position int              `gorm:"column:position;not null"`
	Name     string           `gorm:"column:name;type:text;not null"`
	Image    string           `gorm:"column:image;type:text;not null;default:''"`
	Value    int64            `gorm:"column:value;not null"`
	Weight   float64          `gorm:"column:weight;not null"`
	Kind     enums.PayoutKind `gorm:"column:kind;not null"`
	Color    *string          `gorm:"column:color"`
}

func (o *RewardOption) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
