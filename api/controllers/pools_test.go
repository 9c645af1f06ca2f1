package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	poolsvc "github.com/nakawin/casino-backend/internal/pools"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
)

type stubPoolService struct {
	pools    []models.RewardPool
	pool     *models.RewardPool
	getErr   error
	lastKind *enums.PoolKind
}

func (s *stubPoolService) WithTx(tx *gorm.DB) poolsvc.Service { return s }

func (s *stubPoolService) ListActive(ctx context.Context, kind *enums.PoolKind) ([]models.RewardPool, error) {
	s.lastKind = kind
	return s.pools, nil
}

func (s *stubPoolService) Get(ctx context.Context, id uuid.UUID) (*models.RewardPool, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.pool, nil
}

func (s *stubPoolService) LoadForRedeem(ctx context.Context, id uuid.UUID) (*models.RewardPool, error) {
	return s.Get(ctx, id)
}

func samplePool() *models.RewardPool {
	return &models.RewardPool{
		ID:        uuid.New(),
		Name:      "Starter Case",
		Kind:      enums.PoolKindCase,
		EntryCost: 100,
		IsActive:  true,
		Options: []models.RewardOption{
			{ID: uuid.New(), Position: 0, Name: "Coins", Value: 50, Weight: 70, Kind: enums.PayoutKindCurrency},
			{ID: uuid.New(), Position: 1, Name: "Dagger", Value: 300, Weight: 25, Kind: enums.PayoutKindItem},
			{ID: uuid.New(), Position: 2, Name: "Greatsword", Value: 850, Weight: 5, Kind: enums.PayoutKindItem},
		},
	}
}

func TestPoolListReturnsSummaries(t *testing.T) {
	svc := &stubPoolService{pools: []models.RewardPool{*samplePool()}}
	handler := PoolList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pools?kind=case", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastKind == nil || *svc.lastKind != enums.PoolKindCase {
		t.Fatalf("expected kind filter to be forwarded")
	}

	var payload struct {
		Data []struct {
			Name          string `json:"name"`
			EntryCost     int64  `json:"entry_cost"`
			ExpectedValue string `json:"expected_value"`
			OptionCount   int    `json:"option_count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data) != 1 {
		t.Fatalf("expected one pool, got %d", len(payload.Data))
	}
	summary := payload.Data[0]
	if summary.OptionCount != 3 {
		t.Fatalf("expected 3 options, got %d", summary.OptionCount)
	}
	// 50*70 + 300*25 + 850*5 over 100 total weight.
	ev, err := decimal.NewFromString(summary.ExpectedValue)
	if err != nil {
		t.Fatalf("parse expected value: %v", err)
	}
	if !ev.Equal(decimal.RequireFromString("152.5")) {
		t.Fatalf("expected EV 152.5, got %s", summary.ExpectedValue)
	}
}

func TestPoolListRejectsUnknownKind(t *testing.T) {
	handler := PoolList(&stubPoolService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pools?kind=slotmachine", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPoolDetailIncludesOptions(t *testing.T) {
	pool := samplePool()
	svc := &stubPoolService{pool: pool}

	router := chi.NewRouter()
	router.Get("/api/v1/pools/{poolId}", PoolDetail(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pools/"+pool.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Data struct {
			Options []struct {
				Name   string  `json:"name"`
				Weight float64 `json:"weight"`
			} `json:"options"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(payload.Data.Options))
	}
	if payload.Data.Options[0].Name != "Coins" {
		t.Fatalf("expected stored order preserved, got %s first", payload.Data.Options[0].Name)
	}
}

func TestPoolDetailMapsNotFound(t *testing.T) {
	svc := &stubPoolService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "pool not found")}

	router := chi.NewRouter()
	router.Get("/api/v1/pools/{poolId}", PoolDetail(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pools/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
