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
		t.Fatalf("no migration file matching %s", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_inventory_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS stock_records",
		"CHECK (quantity_on_hand >= 0)",
		"CHECK (quantity_reserved >= 0)",
		"CHECK (quantity_incoming >= 0)",
		"CHECK (quantity_reserved <= quantity_on_hand)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_stock_records_store_sku",
		"CREATE TABLE IF NOT EXISTS ledger_entries",
		"CHECK (balance_after >= 0)",
		"CREATE TABLE IF NOT EXISTS incoming_orders",
		"idx_incoming_orders_token",
		"DROP TABLE IF EXISTS stock_records",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDisplayAndIntentMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_display_and_intent_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS displays",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_displays_display_id",
		"CREATE TABLE IF NOT EXISTS purchase_intents",
		"CHECK (discount_percent >= 0 AND discount_percent <= 100)",
		"CREATE TABLE IF NOT EXISTS conversions",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_conversions_intent",
		"CREATE TABLE IF NOT EXISTS points_entries",
		"DROP TABLE IF EXISTS conversions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationContainsDedupeIndex(t *testing.T) {
	content := readMigration(t, "*_create_outbox_and_notifications.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS outbox_events",
		"CREATE INDEX IF NOT EXISTS idx_outbox_events_event_aggregate",
		"WHERE published_at IS NULL",
		"CREATE TABLE IF NOT EXISTS notifications",
		"DROP TABLE IF EXISTS outbox_events",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
