package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nakawin/casino-backend/api/responses"
	"github.com/nakawin/casino-backend/api/validators"
	inventorysvc "github.com/nakawin/casino-backend/internal/inventory"
	"github.com/nakawin/casino-backend/pkg/enums"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/logger"
	"github.com/nakawin/casino-backend/pkg/pagination"
)

type inventoryListResponse struct {
	Items      []inventoryItemDTO `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type sellReceiptDTO struct {
	Item    *inventoryItemDTO `json:"item"`
	Entry   walletEntryDTO    `json:"entry"`
	Balance int64             `json:"balance"`
}

// InventoryList returns the caller's items with optional status, rarity and
// source filters.
func InventoryList(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseInventoryFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, nextCursor, err := svc.List(r.Context(), userID, filters, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]inventoryItemDTO, 0, len(items))
		for i := range items {
			dtos = append(dtos, *inventoryItemFromModel(&items[i]))
		}
		responses.WriteSuccess(w, inventoryListResponse{Items: dtos, NextCursor: nextCursor})
	}
}

// InventorySummary returns owned totals plus the per-rarity breakdown.
func InventorySummary(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// InventorySell converts an owned item into wallet credit.
func InventorySell(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		receipt, err := svc.Sell(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sellReceiptDTO{
			Item:    inventoryItemFromModel(receipt.Item),
			Entry:   walletEntryFromModel(receipt.Entry),
			Balance: receipt.Balance,
		})
	}
}

// InventoryWithdraw flags an owned item for physical delivery.
func InventoryWithdraw(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		item, err := svc.RequestWithdrawal(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inventoryItemFromModel(item))
	}
}

func parseInventoryFilters(r *http.Request) (inventorysvc.Filters, error) {
	var filters inventorysvc.Filters

	// The inventory view shows owned items unless the caller asks for a
	// specific lifecycle status.
	status := enums.ItemStatusOwned
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, err := enums.ParseItemStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		status = parsed
	}
	filters.Status = &status
	if raw := strings.TrimSpace(r.URL.Query().Get("rarity")); raw != "" {
		rarity, err := enums.ParseRarity(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rarity filter")
		}
		filters.Rarity = &rarity
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("source")); raw != "" {
		source, err := enums.ParseItemSource(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source filter")
		}
		filters.Source = &source
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("min_value")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid min_value filter")
		}
		filters.MinValue = &v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("max_value")); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid max_value filter")
		}
		filters.MaxValue = &v
	}
	sort, err := inventorysvc.ParseSort(strings.TrimSpace(r.URL.Query().Get("sort")))
	if err != nil {
		return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
	}
	filters.Sort = sort
	return filters, nil
}
