package redemptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/internal/draw"
	"github.com/nakawin/casino-backend/internal/inventory"
	"github.com/nakawin/casino-backend/internal/pools"
	"github.com/nakawin/casino-backend/internal/wallet"
	"github.com/nakawin/casino-backend/pkg/db"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	apperrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/logger"
	"github.com/nakawin/casino-backend/pkg/metrics"
)

// Outcome is the result of one completed redemption.
type Outcome struct {
	TransactionID uuid.UUID
	Pool          *models.RewardPool
	Option        models.RewardOption
	Fallback      bool
	Item          *models.InventoryItem
	DebitEntry    *models.WalletEntry
	PayoutEntry   *models.WalletEntry
	Balance       int64
}

// Service runs the redeem flow: load and validate the pool, draw a reward,
// then debit the entry cost and apply the payout in one transaction. The
// debit and the payout never commit separately.
type Service interface {
	Redeem(ctx context.Context, userID, poolID uuid.UUID) (*Outcome, error)
}

// Deps bundles the collaborators the redemption service needs.
type Deps struct {
	DB         *db.Client
	Pools      pools.Service
	Engine     *draw.Engine
	Wallet     wallet.Service
	Inventory  inventory.Repository
	Metrics    *metrics.RedemptionMetrics
	Logger     *logger.Logger
	MaxRetries int
}

type service struct {
	db         *db.Client
	pools      pools.Service
	engine     *draw.Engine
	wallet     wallet.Service
	inventory  inventory.Repository
	metrics    *metrics.RedemptionMetrics
	logg       *logger.Logger
	maxRetries int
}

// NewService wires a redemption service with its collaborators.
func NewService(deps Deps) (Service, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if deps.Pools == nil {
		return nil, fmt.Errorf("pools service required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("draw engine required")
	}
	if deps.Wallet == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if deps.Inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	maxRetries := deps.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &service{
		db:         deps.DB,
		pools:      deps.Pools,
		engine:     deps.Engine,
		wallet:     deps.Wallet,
		inventory:  deps.Inventory,
		metrics:    deps.Metrics,
		logg:       deps.Logger,
		maxRetries: maxRetries,
	}, nil
}

func (s *service) Redeem(ctx context.Context, userID, poolID uuid.UUID) (*Outcome, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if poolID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "pool id is required")
	}

	pool, err := s.pools.LoadForRedeem(ctx, poolID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	var outcome *Outcome
	for attempt := 1; ; attempt++ {
		outcome, err = s.redeemOnce(ctx, userID, pool)
		if err == nil {
			break
		}
		if !isStorageConflict(err) || attempt >= s.maxRetries {
			return nil, err
		}
		s.metrics.IncConflict(string(pool.Kind))
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"pool_id": pool.ID.String(),
				"user_id": userID.String(),
				"attempt": attempt,
			})
			s.logg.Warn(logCtx, "redemption retried after storage conflict")
		}
	}

	s.metrics.IncRedemption(string(pool.Kind), string(outcome.Option.Kind))
	s.metrics.ObserveDuration(string(pool.Kind), time.Since(started))
	return outcome, nil
}

func (s *service) redeemOnce(ctx context.Context, userID uuid.UUID, pool *models.RewardPool) (*Outcome, error) {
	result, err := s.engine.Draw(pool.Options)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidPool, err, "draw failed")
	}
	if result.Fallback {
		s.metrics.IncFallback(string(pool.Kind))
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"pool_id":   pool.ID.String(),
				"option_id": result.Option.ID.String(),
				"roll":      result.Roll,
			})
			s.logg.Warn(logCtx, "draw fell back to last option")
		}
	}

	txID := uuid.New()
	outcome := &Outcome{
		TransactionID: txID,
		Pool:          pool,
		Option:        result.Option,
		Fallback:      result.Fallback,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		w := s.wallet.WithTx(tx)

		debitMeta, err := json.Marshal(map[string]any{"pool_id": pool.ID, "pool_name": pool.Name})
		if err != nil {
			return err
		}
		debit, err := w.Debit(ctx, wallet.MutationInput{
			UserID:        userID,
			Amount:        pool.EntryCost,
			Type:          enums.WalletEntryTypeRedeemCost,
			TransactionID: txID,
			Metadata:      debitMeta,
		})
		if err != nil {
			return err
		}
		outcome.DebitEntry = debit
		outcome.Balance = debit.BalanceAfter

		switch result.Option.Kind {
		case enums.PayoutKindCurrency:
			payoutMeta, err := json.Marshal(map[string]any{
				"pool_id":   pool.ID,
				"option_id": result.Option.ID,
			})
			if err != nil {
				return err
			}
			payout, err := w.Credit(ctx, wallet.MutationInput{
				UserID:        userID,
				Amount:        result.Option.Value,
				Type:          enums.WalletEntryTypeRewardPayout,
				TransactionID: txID,
				Metadata:      payoutMeta,
			})
			if err != nil {
				return err
			}
			outcome.PayoutEntry = payout
			outcome.Balance = payout.BalanceAfter

		case enums.PayoutKindItem:
			poolID := pool.ID
			item := &models.InventoryItem{
				UserID:        userID,
				Name:          result.Option.Name,
				Image:         result.Option.Image,
				Value:         result.Option.Value,
				Rarity:        enums.RarityForValue(result.Option.Value),
				Source:        enums.ItemSourceForPoolKind(pool.Kind),
				SourcePoolID:  &poolID,
				Status:        enums.ItemStatusOwned,
				TransactionID: &txID,
			}
			if err := s.inventory.WithTx(tx).Create(ctx, item); err != nil {
				return err
			}
			outcome.Item = item

		default:
			return apperrors.New(apperrors.CodeInvalidPool, fmt.Sprintf("unknown payout kind %q", result.Option.Kind))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// isStorageConflict reports whether the transaction lost a concurrency race
// and is safe to retry from scratch.
func isStorageConflict(err error) bool {
	if apperrors.IsCode(err, apperrors.CodeConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
