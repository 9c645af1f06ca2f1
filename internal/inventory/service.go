package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/internal/wallet"
	"github.com/nakawin/casino-backend/pkg/db"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	apperrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/logger"
	"github.com/nakawin/casino-backend/pkg/outbox"
	"github.com/nakawin/casino-backend/pkg/outbox/payloads"
	"github.com/nakawin/casino-backend/pkg/pagination"
)

// Summary aggregates a user's owned items.
type Summary struct {
	TotalItems int64           `json:"total_items"`
	TotalValue decimal.Decimal `json:"total_value"`
	Rarities   []RarityStat    `json:"rarities"`
}

// RarityStat is the per-rarity slice of a summary.
type RarityStat struct {
	Rarity     enums.Rarity    `json:"rarity"`
	Color      string          `json:"color"`
	Count      int64           `json:"count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// SellReceipt carries the outcome of a sale back to the controller.
type SellReceipt struct {
	Item    *models.InventoryItem
	Entry   *models.WalletEntry
	Balance int64
}

// GrantInput describes an admin-granted item.
type GrantInput struct {
	UserID  uuid.UUID
	Name    string
	Image   string
	Value   int64
	AdminID uuid.UUID
}

// Service owns the inventory item lifecycle: listing, selling, withdrawal
// requests and admin completion. All status flips run through conditional
// updates inside a transaction.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, filters Filters, params pagination.Params) ([]models.InventoryItem, string, error)
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)
	Sell(ctx context.Context, userID, itemID uuid.UUID) (*SellReceipt, error)
	RequestWithdrawal(ctx context.Context, userID, itemID uuid.UUID) (*models.InventoryItem, error)
	CompleteWithdrawal(ctx context.Context, adminID, itemID uuid.UUID) (*models.InventoryItem, error)
	Grant(ctx context.Context, input GrantInput) (*models.InventoryItem, error)
	PendingWithdrawals(ctx context.Context, limit int) ([]models.InventoryItem, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Deps bundles the collaborators the inventory service needs.
type Deps struct {
	DB     *db.Client
	Repo   Repository
	Wallet wallet.Service
	Users  userLoader
	Events eventEmitter
	Logger *logger.Logger
}

type service struct {
	db     *db.Client
	repo   Repository
	wallet wallet.Service
	users  userLoader
	events eventEmitter
	logg   *logger.Logger
}

// NewService wires an inventory service with its collaborators.
func NewService(deps Deps) (Service, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if deps.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if deps.Wallet == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("users loader required")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		db:     deps.DB,
		repo:   deps.Repo,
		wallet: deps.Wallet,
		users:  deps.Users,
		events: deps.Events,
		logg:   deps.Logger,
	}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, filters Filters, params pagination.Params) ([]models.InventoryItem, string, error) {
	if userID == uuid.Nil {
		return nil, "", apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, "", apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid status %q", *filters.Status))
	}
	if filters.Rarity != nil && !filters.Rarity.IsValid() {
		return nil, "", apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid rarity %q", *filters.Rarity))
	}
	if filters.Source != nil && !filters.Source.IsValid() {
		return nil, "", apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid source %q", *filters.Source))
	}
	if filters.MinValue != nil && *filters.MinValue < 0 {
		return nil, "", apperrors.New(apperrors.CodeValidation, "min value cannot be negative")
	}
	if filters.MinValue != nil && filters.MaxValue != nil && *filters.MaxValue < *filters.MinValue {
		return nil, "", apperrors.New(apperrors.CodeValidation, "max value is below min value")
	}
	if _, err := ParseSort(string(filters.Sort)); err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid sort")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var after *models.InventoryItem
	if cursor, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	} else if cursor != nil {
		// Items are never deleted, so the anchor row is always loadable. The
		// value sorts need the anchor's value column, not just its timestamp.
		anchor, err := s.repo.FindByID(ctx, cursor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", apperrors.New(apperrors.CodeValidation, "invalid cursor")
			}
			return nil, "", err
		}
		after = anchor
	}

	items, err := s.repo.List(ctx, userID, filters, limit+1, after)
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.ObtainedAt, ID: last.ID})
	}
	return items, nextCursor, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.SummaryByRarity(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TotalValue: decimal.Zero, Rarities: make([]RarityStat, 0, len(rows))}
	for _, row := range rows {
		value := decimal.NewFromInt(row.TotalValue)
		summary.TotalItems += row.Count
		summary.TotalValue = summary.TotalValue.Add(value)
		summary.Rarities = append(summary.Rarities, RarityStat{
			Rarity:     row.Rarity,
			Color:      row.Rarity.Color(),
			Count:      row.Count,
			TotalValue: value,
		})
	}
	return summary, nil
}

func (s *service) Sell(ctx context.Context, userID, itemID uuid.UUID) (*SellReceipt, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id and item id are required")
	}

	var receipt *SellReceipt
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txID := uuid.New()
		now := time.Now().UTC()

		ok, err := repo.TransitionStatus(ctx, itemID, userID, enums.ItemStatusOwned, enums.ItemStatusSold, &txID, now)
		if err != nil {
			return err
		}
		if !ok {
			return s.classifyTransitionFailure(ctx, repo, itemID, userID, enums.ItemStatusOwned)
		}

		item, err := repo.FindByID(ctx, itemID)
		if err != nil {
			return err
		}

		metadata, err := json.Marshal(map[string]any{"item_id": itemID, "item_name": item.Name})
		if err != nil {
			return err
		}
		entry, err := s.wallet.WithTx(tx).Credit(ctx, wallet.MutationInput{
			UserID:        userID,
			Amount:        item.Value,
			Type:          enums.WalletEntryTypeItemSale,
			TransactionID: txID,
			Metadata:      metadata,
		})
		if err != nil {
			return err
		}

		receipt = &SellReceipt{Item: item, Entry: entry, Balance: entry.BalanceAfter}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *service) RequestWithdrawal(ctx context.Context, userID, itemID uuid.UUID) (*models.InventoryItem, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id and item id are required")
	}

	var updated *models.InventoryItem
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txID := uuid.New()
		now := time.Now().UTC()

		ok, err := repo.TransitionStatus(ctx, itemID, userID, enums.ItemStatusOwned, enums.ItemStatusWithdrawalRequested, &txID, now)
		if err != nil {
			return err
		}
		if !ok {
			return s.classifyTransitionFailure(ctx, repo, itemID, userID, enums.ItemStatusOwned)
		}

		item, err := repo.FindByID(ctx, itemID)
		if err != nil {
			return err
		}
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		event := payloads.WithdrawalRequestedEvent{
			ItemID:       item.ID,
			UserID:       userID,
			ItemName:     item.Name,
			ItemValue:    item.Value,
			Rarity:       item.Rarity,
			GameNickname: user.GameNickname,
			GameServer:   user.GameServer,
			RequestedAt:  now,
		}
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWithdrawalRequested,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   item.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.MemberRolePlayer)},
			Data:          event,
			Version:       1,
			OccurredAt:    now,
		}); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) CompleteWithdrawal(ctx context.Context, adminID, itemID uuid.UUID) (*models.InventoryItem, error) {
	if itemID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "item id is required")
	}

	var updated *models.InventoryItem
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now().UTC()

		// Any owner: admins complete withdrawals across users.
		ok, err := repo.TransitionStatus(ctx, itemID, uuid.Nil, enums.ItemStatusWithdrawalRequested, enums.ItemStatusWithdrawn, nil, now)
		if err != nil {
			return err
		}
		if !ok {
			return s.classifyTransitionFailure(ctx, repo, itemID, uuid.Nil, enums.ItemStatusWithdrawalRequested)
		}

		item, err := repo.FindByID(ctx, itemID)
		if err != nil {
			return err
		}

		event := payloads.WithdrawalCompletedEvent{
			ItemID:      item.ID,
			UserID:      item.UserID,
			CompletedBy: adminID,
			CompletedAt: now,
		}
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWithdrawalCompleted,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   item.ID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.MemberRoleAdmin)},
			Data:          event,
			Version:       1,
			OccurredAt:    now,
		}); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Grant(ctx context.Context, input GrantInput) (*models.InventoryItem, error) {
	if input.UserID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}
	if input.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "item name is required")
	}
	if input.Value < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "item value cannot be negative")
	}

	if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
		}
		return nil, err
	}

	txID := uuid.New()
	item := &models.InventoryItem{
		UserID:        input.UserID,
		Name:          input.Name,
		Image:         input.Image,
		Value:         input.Value,
		Rarity:        enums.RarityForValue(input.Value),
		Source:        enums.ItemSourceAdminGrant,
		Status:        enums.ItemStatusOwned,
		TransactionID: &txID,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"item_id":        item.ID.String(),
			"user_id":        input.UserID.String(),
			"admin_id":       input.AdminID.String(),
			"transaction_id": txID.String(),
			"value":          input.Value,
		})
		s.logg.Info(logCtx, "inventory item granted")
	}
	return item, nil
}

func (s *service) PendingWithdrawals(ctx context.Context, limit int) ([]models.InventoryItem, error) {
	limit = pagination.NormalizeLimit(limit)
	return s.repo.ListByStatus(ctx, enums.ItemStatusWithdrawalRequested, limit)
}

// classifyTransitionFailure figures out why a conditional status update
// matched nothing: missing item, foreign owner, or wrong current status.
func (s *service) classifyTransitionFailure(ctx context.Context, repo Repository, itemID, userID uuid.UUID, expected enums.ItemStatus) error {
	item, err := repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "item not found")
		}
		return err
	}
	if userID != uuid.Nil && item.UserID != userID {
		return apperrors.New(apperrors.CodeForbidden, "item belongs to another user")
	}
	return apperrors.New(apperrors.CodeStateConflict, fmt.Sprintf("item is %s, expected %s", item.Status, expected)).
		WithDetails(map[string]any{"status": item.Status})
}
