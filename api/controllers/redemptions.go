package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nakawin/casino-backend/api/middleware"
	"github.com/nakawin/casino-backend/api/responses"
	redemptionsvc "github.com/nakawin/casino-backend/internal/redemptions"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/logger"
)

type redeemOutcomeDTO struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	PoolID        uuid.UUID         `json:"pool_id"`
	Reward        poolOptionDTO     `json:"reward"`
	Item          *inventoryItemDTO `json:"item,omitempty"`
	Balance       int64             `json:"balance"`
}

type inventoryItemDTO struct {
	ID                    uuid.UUID        `json:"id"`
	Name                  string           `json:"name"`
	Image                 string           `json:"image,omitempty"`
	Value                 int64            `json:"value"`
	Rarity                enums.Rarity     `json:"rarity"`
	Color                 string           `json:"color"`
	Source                enums.ItemSource `json:"source"`
	SourcePoolID          *uuid.UUID       `json:"source_pool_id,omitempty"`
	Status                enums.ItemStatus `json:"status"`
	TransactionID         *uuid.UUID       `json:"transaction_id,omitempty"`
	ObtainedAt            time.Time        `json:"obtained_at"`
	SoldAt                *time.Time       `json:"sold_at,omitempty"`
	WithdrawalRequestedAt *time.Time       `json:"withdrawal_requested_at,omitempty"`
	WithdrawnAt           *time.Time       `json:"withdrawn_at,omitempty"`
}

func inventoryItemFromModel(item *models.InventoryItem) *inventoryItemDTO {
	if item == nil {
		return nil
	}
	return &inventoryItemDTO{
		ID:                    item.ID,
		Name:                  item.Name,
		Image:                 item.Image,
		Value:                 item.Value,
		Rarity:                item.Rarity,
		Color:                 item.Rarity.Color(),
		Source:                item.Source,
		SourcePoolID:          item.SourcePoolID,
		Status:                item.Status,
		TransactionID:         item.TransactionID,
		ObtainedAt:            item.ObtainedAt,
		SoldAt:                item.SoldAt,
		WithdrawalRequestedAt: item.WithdrawalRequestedAt,
		WithdrawnAt:           item.WithdrawnAt,
	}
}

// Redeem spends the pool entry cost and returns the drawn reward.
func Redeem(svc redemptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "redemption service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		poolID, err := uuid.Parse(chi.URLParam(r, "poolId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pool id"))
			return
		}

		outcome, err := svc.Redeem(r.Context(), userID, poolID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		opt := outcome.Option
		responses.WriteSuccess(w, redeemOutcomeDTO{
			TransactionID: outcome.TransactionID,
			PoolID:        outcome.Pool.ID,
			Reward: poolOptionDTO{
				ID:       opt.ID,
				Position: opt.Position,
				Name:     opt.Name,
				Image:    opt.Image,
				Value:    opt.Value,
				Weight:   opt.Weight,
				Kind:     opt.Kind,
				Color:    opt.Color,
			},
			Item:    inventoryItemFromModel(outcome.Item),
			Balance: outcome.Balance,
		})
	}
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return userID, nil
}
