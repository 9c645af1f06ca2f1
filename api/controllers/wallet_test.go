package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	walletsvc "github.com/nakawin/casino-backend/internal/wallet"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	"github.com/nakawin/casino-backend/pkg/pagination"
)

type stubWalletService struct {
	balance    int64
	entries    []models.WalletEntry
	nextCursor string
	lastParams pagination.Params
}

func (s *stubWalletService) WithTx(tx *gorm.DB) walletsvc.Service { return s }

func (s *stubWalletService) Debit(ctx context.Context, input walletsvc.MutationInput) (*models.WalletEntry, error) {
	return nil, nil
}

func (s *stubWalletService) Credit(ctx context.Context, input walletsvc.MutationInput) (*models.WalletEntry, error) {
	return nil, nil
}

func (s *stubWalletService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.balance, nil
}

func (s *stubWalletService) Entries(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletEntry, string, error) {
	s.lastParams = params
	return s.entries, s.nextCursor, nil
}

func TestWalletBalanceReturnsBalance(t *testing.T) {
	svc := &stubWalletService{balance: 1250}
	handler := WalletBalance(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/wallet", uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data struct {
			Balance int64 `json:"balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.Balance != 1250 {
		t.Fatalf("expected balance 1250, got %d", payload.Data.Balance)
	}
}

func TestWalletBalanceRequiresUserContext(t *testing.T) {
	handler := WalletBalance(&stubWalletService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestWalletEntriesForwardsPagination(t *testing.T) {
	txID := uuid.New()
	svc := &stubWalletService{
		entries: []models.WalletEntry{{
			ID:            uuid.New(),
			Type:          enums.WalletEntryTypeRedeemCost,
			Amount:        -100,
			BalanceAfter:  900,
			TransactionID: txID,
			CreatedAt:     time.Now().UTC(),
		}},
		nextCursor: "opaque-cursor",
	}
	handler := WalletEntries(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/wallet/entries?limit=10&cursor=abc", uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastParams.Limit != 10 || svc.lastParams.Cursor != "abc" {
		t.Fatalf("expected pagination forwarded, got %+v", svc.lastParams)
	}

	var payload struct {
		Data struct {
			Entries []struct {
				Type          string    `json:"type"`
				Amount        int64     `json:"amount"`
				BalanceAfter  int64     `json:"balance_after"`
				TransactionID uuid.UUID `json:"transaction_id"`
			} `json:"entries"`
			NextCursor string `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(payload.Data.Entries))
	}
	entry := payload.Data.Entries[0]
	if entry.Type != string(enums.WalletEntryTypeRedeemCost) || entry.Amount != -100 || entry.BalanceAfter != 900 {
		t.Fatalf("unexpected entry payload: %+v", entry)
	}
	if entry.TransactionID != txID {
		t.Fatalf("expected transaction id %s, got %s", txID, entry.TransactionID)
	}
	if payload.Data.NextCursor != "opaque-cursor" {
		t.Fatalf("expected next cursor forwarded, got %q", payload.Data.NextCursor)
	}
}

func TestWalletEntriesRejectsBadLimit(t *testing.T) {
	handler := WalletEntries(&stubWalletService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/wallet/entries?limit=0", uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
