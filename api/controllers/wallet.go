package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nakawin/casino-backend/api/responses"
	"github.com/nakawin/casino-backend/api/validators"
	walletsvc "github.com/nakawin/casino-backend/internal/wallet"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/logger"
	"github.com/nakawin/casino-backend/pkg/pagination"
)

type walletEntryDTO struct {
	ID            uuid.UUID             `json:"id"`
	Type          enums.WalletEntryType `json:"type"`
	Amount        int64                 `json:"amount"`
	BalanceAfter  int64                 `json:"balance_after"`
	TransactionID uuid.UUID             `json:"transaction_id"`
	Metadata      json.RawMessage       `json:"metadata,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

func walletEntryFromModel(entry *models.WalletEntry) walletEntryDTO {
	return walletEntryDTO{
		ID:            entry.ID,
		Type:          entry.Type,
		Amount:        entry.Amount,
		BalanceAfter:  entry.BalanceAfter,
		TransactionID: entry.TransactionID,
		Metadata:      entry.Metadata,
		CreatedAt:     entry.CreatedAt,
	}
}

type walletEntriesResponse struct {
	Entries    []walletEntryDTO `json:"entries"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// WalletBalance returns the caller's current balance.
func WalletBalance(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"balance": balance})
	}
}

// WalletEntries returns the caller's ledger, newest first.
func WalletEntries(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, nextCursor, err := svc.Entries(r.Context(), userID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]walletEntryDTO, 0, len(entries))
		for i := range entries {
			dtos = append(dtos, walletEntryFromModel(&entries[i]))
		}
		responses.WriteSuccess(w, walletEntriesResponse{Entries: dtos, NextCursor: nextCursor})
	}
}
