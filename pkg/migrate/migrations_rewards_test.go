package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestUsersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_users.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CHECK (balance >= 0)",
		"idx_users_username",
		"DROP TABLE IF EXISTS users",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_inventory_items.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS inventory_items",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"CHECK (status IN ('owned', 'sold', 'withdrawal_requested', 'withdrawn'))",
		"idx_inventory_user_status",
		"DROP TABLE IF EXISTS inventory_items",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestWalletEntriesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_wallet_entries.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS wallet_entries",
		"CHECK (balance_after >= 0)",
		"transaction_id UUID NOT NULL",
		"DROP TABLE IF EXISTS wallet_entries",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRewardPoolsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_reward_pools.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS reward_pools",
		"CHECK (entry_cost > 0)",
		"CHECK (weight > 0)",
		"FOREIGN KEY (pool_id) REFERENCES reward_pools(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS reward_options",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
