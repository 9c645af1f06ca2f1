package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	apperrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/pagination"
)

type fakeRepository struct {
	balance       int64
	balanceErr    error
	debitErr      error
	creditErr     error
	createErr     error
	lifetimeSpent int64
	lifetimeWon   int64
	created       []*models.WalletEntry
	listed        []models.WalletEntry
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) DebitBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if f.debitErr != nil {
		return 0, f.debitErr
	}
	if f.balance < amount {
		return 0, ErrBalanceCheckFailed
	}
	f.balance -= amount
	return f.balance, nil
}

func (f *fakeRepository) CreditBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if f.creditErr != nil {
		return 0, f.creditErr
	}
	f.balance += amount
	return f.balance, nil
}

func (f *fakeRepository) AddLifetimeSpent(ctx context.Context, userID uuid.UUID, amount int64) error {
	f.lifetimeSpent += amount
	return nil
}

func (f *fakeRepository) AddLifetimeWon(ctx context.Context, userID uuid.UUID, amount int64) error {
	f.lifetimeWon += amount
	return nil
}

func (f *fakeRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeRepository) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, entry)
	return nil
}

func (f *fakeRepository) ListEntries(ctx context.Context, userID uuid.UUID, limit int, before *models.WalletEntry) ([]models.WalletEntry, error) {
	if limit > len(f.listed) {
		limit = len(f.listed)
	}
	return f.listed[:limit], nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_DebitRecordsEntry(t *testing.T) {
	repo := &fakeRepository{balance: 1000}
	svc := newTestService(t, repo)

	txID := uuid.New()
	entry, err := svc.Debit(context.Background(), MutationInput{
		UserID:        uuid.New(),
		Amount:        150,
		Type:          enums.WalletEntryTypeRedeemCost,
		TransactionID: txID,
	})
	if err != nil {
		t.Fatalf("Debit error: %v", err)
	}
	if entry.Amount != -150 {
		t.Fatalf("expected amount -150, got %d", entry.Amount)
	}
	if entry.BalanceAfter != 850 {
		t.Fatalf("expected balance after 850, got %d", entry.BalanceAfter)
	}
	if entry.TransactionID != txID {
		t.Fatalf("transaction id not propagated")
	}
	if repo.lifetimeSpent != 150 {
		t.Fatalf("expected lifetime spent 150, got %d", repo.lifetimeSpent)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one entry persisted, got %d", len(repo.created))
	}
}

func TestService_DebitInsufficientFunds(t *testing.T) {
	repo := &fakeRepository{balance: 100}
	svc := newTestService(t, repo)

	_, err := svc.Debit(context.Background(), MutationInput{
		UserID:        uuid.New(),
		Amount:        500,
		Type:          enums.WalletEntryTypeRedeemCost,
		TransactionID: uuid.New(),
	})
	if !apperrors.IsCode(err, apperrors.CodeInsufficientFunds) {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}
	if repo.balance != 100 {
		t.Fatalf("balance mutated on failed debit: %d", repo.balance)
	}
	if len(repo.created) != 0 {
		t.Fatalf("no entry should be written on failed debit")
	}
}

func TestService_DebitMissingUser(t *testing.T) {
	repo := &fakeRepository{balance: 0, balanceErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo)

	_, err := svc.Debit(context.Background(), MutationInput{
		UserID:        uuid.New(),
		Amount:        50,
		Type:          enums.WalletEntryTypeRedeemCost,
		TransactionID: uuid.New(),
	})
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_CreditRecordsEntryAndLifetimeWon(t *testing.T) {
	repo := &fakeRepository{balance: 200}
	svc := newTestService(t, repo)

	entry, err := svc.Credit(context.Background(), MutationInput{
		UserID:        uuid.New(),
		Amount:        300,
		Type:          enums.WalletEntryTypeRewardPayout,
		TransactionID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Credit error: %v", err)
	}
	if entry.Amount != 300 {
		t.Fatalf("expected amount 300, got %d", entry.Amount)
	}
	if entry.BalanceAfter != 500 {
		t.Fatalf("expected balance after 500, got %d", entry.BalanceAfter)
	}
	if repo.lifetimeWon != 300 {
		t.Fatalf("expected lifetime won 300, got %d", repo.lifetimeWon)
	}
}

func TestService_MutationValidation(t *testing.T) {
	svc := newTestService(t, &fakeRepository{balance: 100})

	cases := []struct {
		name  string
		input MutationInput
	}{
		{"missing user", MutationInput{Amount: 10, Type: enums.WalletEntryTypeItemSale, TransactionID: uuid.New()}},
		{"negative amount", MutationInput{UserID: uuid.New(), Amount: -5, Type: enums.WalletEntryTypeItemSale, TransactionID: uuid.New()}},
		{"bad type", MutationInput{UserID: uuid.New(), Amount: 10, Type: "bonus", TransactionID: uuid.New()}},
		{"missing transaction", MutationInput{UserID: uuid.New(), Amount: 10, Type: enums.WalletEntryTypeItemSale}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Debit(context.Background(), tc.input); !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

}

func TestService_CreditZeroIsNoOp(t *testing.T) {
	repo := &fakeRepository{balance: 420}
	svc := newTestService(t, repo)

	entry, err := svc.Credit(context.Background(), MutationInput{
		UserID:        uuid.New(),
		Amount:        0,
		Type:          enums.WalletEntryTypeRewardPayout,
		TransactionID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Credit error: %v", err)
	}
	if entry.Amount != 0 || entry.BalanceAfter != 420 {
		t.Fatalf("unexpected no-op entry: %+v", entry)
	}
	if repo.balance != 420 {
		t.Fatalf("balance mutated by zero credit: %d", repo.balance)
	}
	if len(repo.created) != 0 {
		t.Fatalf("zero credit should not write a ledger row")
	}
	if repo.lifetimeWon != 0 {
		t.Fatalf("zero credit should not count as winnings")
	}
}

func TestService_DebitZeroIsNoOp(t *testing.T) {
	repo := &fakeRepository{balance: 250}
	svc := newTestService(t, repo)

	entry, err := svc.Debit(context.Background(), MutationInput{
		UserID:        uuid.New(),
		Amount:        0,
		Type:          enums.WalletEntryTypeRedeemCost,
		TransactionID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Debit error: %v", err)
	}
	if entry.Amount != 0 || entry.BalanceAfter != 250 {
		t.Fatalf("unexpected no-op entry: %+v", entry)
	}
	if repo.balance != 250 {
		t.Fatalf("balance mutated by zero debit: %d", repo.balance)
	}
	if len(repo.created) != 0 {
		t.Fatalf("zero debit should not write a ledger row")
	}
	if repo.lifetimeSpent != 0 {
		t.Fatalf("zero debit should not count as spend")
	}
}

func TestService_EntriesPagination(t *testing.T) {
	now := time.Now().UTC()
	listed := make([]models.WalletEntry, 0, 30)
	for i := 0; i < 30; i++ {
		listed = append(listed, models.WalletEntry{
			ID:        uuid.New(),
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	repo := &fakeRepository{listed: listed}
	svc := newTestService(t, repo)

	entries, next, err := svc.Entries(context.Background(), uuid.New(), pagination.Params{Limit: 25})
	if err != nil {
		t.Fatalf("Entries error: %v", err)
	}
	if len(entries) != 25 {
		t.Fatalf("expected 25 entries, got %d", len(entries))
	}
	if next == "" {
		t.Fatal("expected next cursor when more rows exist")
	}

	cursor, err := pagination.ParseCursor(next)
	if err != nil {
		t.Fatalf("returned cursor does not parse: %v", err)
	}
	if cursor.ID != entries[len(entries)-1].ID {
		t.Fatalf("cursor should reference the last returned entry")
	}
}
