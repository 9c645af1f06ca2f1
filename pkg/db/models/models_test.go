package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/enums"
)

// The sqlite-backed service tests depend on every model migrating cleanly
// and generating its id app-side, without postgres column defaults.
func TestModelsMigrateAndGenerateIDs(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&User{},
		&RewardPool{},
		&RewardOption{},
		&InventoryItem{},
		&WalletEntry{},
		&OutboxEvent{},
		&OutboxDLQ{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	user := &User{Username: "p1", PasswordHash: "x", GameNickname: "Nick", GameServer: "EU-1"}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatal("user id not generated")
	}

	pool := &RewardPool{Name: "Starter Case", Kind: enums.PoolKindCase, EntryCost: 100}
	if err := conn.Create(pool).Error; err != nil {
		t.Fatalf("create pool: %v", err)
	}
	option := &RewardOption{PoolID: pool.ID, Name: "Coins", Value: 50, Weight: 1, Kind: enums.PayoutKindCurrency}
	if err := conn.Create(option).Error; err != nil {
		t.Fatalf("create option: %v", err)
	}
	item := &InventoryItem{UserID: user.ID, Name: "Dagger", Value: 300, Rarity: enums.RarityRare, Source: enums.ItemSourceCase, Status: enums.ItemStatusOwned}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	entry := &WalletEntry{UserID: user.ID, Type: enums.WalletEntryTypeStartingBalance, Amount: 1000, BalanceAfter: 1000, TransactionID: uuid.New()}
	if err := conn.Create(entry).Error; err != nil {
		t.Fatalf("create entry: %v", err)
	}
	event := &OutboxEvent{EventType: enums.EventWithdrawalRequested, AggregateType: enums.AggregateInventoryItem, AggregateID: item.ID, Payload: json.RawMessage(`{}`)}
	if err := conn.Create(event).Error; err != nil {
		t.Fatalf("create outbox event: %v", err)
	}

	for name, id := range map[string]uuid.UUID{
		"pool":   pool.ID,
		"option": option.ID,
		"item":   item.ID,
		"entry":  entry.ID,
		"event":  event.ID,
	} {
		if id == uuid.Nil {
			t.Fatalf("%s id not generated", name)
		}
	}

	// A caller-chosen id survives the hook.
	fixed := uuid.New()
	user2 := &User{ID: fixed, Username: "p2", PasswordHash: "x", GameNickname: "Nick", GameServer: "EU-1"}
	if err := conn.Create(user2).Error; err != nil {
		t.Fatalf("create user2: %v", err)
	}
	if user2.ID != fixed {
		t.Fatalf("caller-assigned id overwritten: %s", user2.ID)
	}
}
