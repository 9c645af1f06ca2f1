package pools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	apperrors "github.com/nakawin/casino-backend/pkg/errors"
)

// Service exposes read access to reward pools plus the validation gate the
// redeem path relies on.
type Service interface {
	WithTx(tx *gorm.DB) Service
	ListActive(ctx context.Context, kind *enums.PoolKind) ([]models.RewardPool, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RewardPool, error)
	// LoadForRedeem fetches the pool and rejects inactive or malformed ones.
	LoadForRedeem(ctx context.Context, id uuid.UUID) (*models.RewardPool, error)
}

type service struct {
	repo Repository
}

// NewService wires a pools service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pools repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) ListActive(ctx context.Context, kind *enums.PoolKind) ([]models.RewardPool, error) {
	if kind != nil && !kind.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid pool kind %q", *kind))
	}
	return s.repo.ListActive(ctx, kind)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RewardPool, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "pool id is required")
	}
	pool, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "pool not found")
		}
		return nil, err
	}
	return pool, nil
}

func (s *service) LoadForRedeem(ctx context.Context, id uuid.UUID) (*models.RewardPool, error) {
	pool, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Inactive pools are invisible to redeemers, same as a missing id.
	if !pool.IsActive {
		return nil, apperrors.New(apperrors.CodeNotFound, "pool not found")
	}
	if err := Validate(pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// Validate checks the structural invariants a pool must satisfy before any
// draw can run against it.
func Validate(pool *models.RewardPool) error {
	if pool == nil {
		return apperrors.New(apperrors.CodeInvalidPool, "pool is missing")
	}
	if len(pool.Options) == 0 {
		return apperrors.New(apperrors.CodeInvalidPool, "pool has no options")
	}
	// Zero is allowed: free pools redeem without a debit.
	if pool.EntryCost < 0 {
		return apperrors.New(apperrors.CodeInvalidPool, "pool entry cost cannot be negative")
	}
	for _, option := range pool.Options {
		if option.Weight <= 0 {
			return apperrors.New(apperrors.CodeInvalidPool, fmt.Sprintf("option %q has non-positive weight", option.Name)).
				WithDetails(map[string]any{"option_id": option.ID})
		}
		if !option.Kind.IsValid() {
			return apperrors.New(apperrors.CodeInvalidPool, fmt.Sprintf("option %q has unknown payout kind %q", option.Name, option.Kind))
		}
		if option.Value < 0 {
			return apperrors.New(apperrors.CodeInvalidPool, fmt.Sprintf("option %q has negative value", option.Name))
		}
	}
	return nil
}

// ExpectedValue computes the probability-weighted payout of a pool using
// exact decimal arithmetic. Exposed on pool detail responses so operators can
// see the house edge per pool.
func ExpectedValue(pool *models.RewardPool) decimal.Decimal {
	if pool == nil || len(pool.Options) == 0 {
		return decimal.Zero
	}
	totalWeight := decimal.Zero
	weighted := decimal.Zero
	for _, option := range pool.Options {
		weight := decimal.NewFromFloat(option.Weight)
		totalWeight = totalWeight.Add(weight)
		weighted = weighted.Add(weight.Mul(decimal.NewFromInt(option.Value)))
	}
	if totalWeight.IsZero() {
		return decimal.Zero
	}
	return weighted.DivRound(totalWeight, 4)
}
