package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nakawin/casino-backend/api/responses"
	poolsvc "github.com/nakawin/casino-backend/internal/pools"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/logger"
)

type poolSummaryDTO struct {
	ID            uuid.UUID       `json:"id"`
	Kind          enums.PoolKind  `json:"kind"`
	Name          string          `json:"name"`
	Image         string          `json:"image,omitempty"`
	EntryCost     int64           `json:"entry_cost"`
	ExpectedValue decimal.Decimal `json:"expected_value"`
	OptionCount   int             `json:"option_count"`
}

type poolDetailDTO struct {
	poolSummaryDTO
	Options []poolOptionDTO `json:"options"`
}

type poolOptionDTO struct {
	ID       uuid.UUID        `json:"id"`
	Position int              `json:"position"`
	Name     string           `json:"name"`
	Image    string           `json:"image,omitempty"`
	Value    int64            `json:"value"`
	Weight   float64          `json:"weight"`
	Kind     enums.PayoutKind `json:"kind"`
	Color    *string          `json:"color,omitempty"`
}

func poolSummaryFromModel(pool *models.RewardPool) poolSummaryDTO {
	return poolSummaryDTO{
		ID:            pool.ID,
		Kind:          pool.Kind,
		Name:          pool.Name,
		Image:         pool.Image,
		EntryCost:     pool.EntryCost,
		ExpectedValue: poolsvc.ExpectedValue(pool),
		OptionCount:   len(pool.Options),
	}
}

func poolDetailFromModel(pool *models.RewardPool) poolDetailDTO {
	detail := poolDetailDTO{
		poolSummaryDTO: poolSummaryFromModel(pool),
		Options:        make([]poolOptionDTO, 0, len(pool.Options)),
	}
	for _, opt := range pool.Options {
		detail.Options = append(detail.Options, poolOptionDTO{
			ID:       opt.ID,
			Position: opt.Position,
			Name:     opt.Name,
			Image:    opt.Image,
			Value:    opt.Value,
			Weight:   opt.Weight,
			Kind:     opt.Kind,
			Color:    opt.Color,
		})
	}
	return detail
}

// PoolList returns the active pools, optionally filtered by kind.
func PoolList(svc poolsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pool service unavailable"))
			return
		}

		var kind *enums.PoolKind
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			parsed, err := enums.ParsePoolKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pool kind"))
				return
			}
			kind = &parsed
		}

		pools, err := svc.ListActive(r.Context(), kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summaries := make([]poolSummaryDTO, 0, len(pools))
		for i := range pools {
			summaries = append(summaries, poolSummaryFromModel(&pools[i]))
		}
		responses.WriteSuccess(w, summaries)
	}
}

// PoolDetail returns one pool with its full option list.
func PoolDetail(svc poolsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pool service unavailable"))
			return
		}

		poolID, err := uuid.Parse(chi.URLParam(r, "poolId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pool id"))
			return
		}

		pool, err := svc.Get(r.Context(), poolID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, poolDetailFromModel(pool))
	}
}
