package db

import "fmt"

// migrate runs all database migrations
func (db *DB) migrate() error {
	migrations := []string{
		migrationCreatePurchases,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// A purchase row is either an item entitlement (item_id set) or a
// class package entitlement (class_id + package_type set). The unique
// index makes re-merging the same order ledger a no-op.
const migrationCreatePurchases = `
CREATE TABLE IF NOT EXISTS purchases (
    order_id TEXT NOT NULL DEFAULT '',
    item_id TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    class_id TEXT NOT NULL DEFAULT '',
    package_type TEXT NOT NULL DEFAULT '',
    price INTEGER NOT NULL DEFAULT 0,
    purchased_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_purchases_identity
    ON purchases(order_id, item_id, class_id, package_type);
CREATE INDEX IF NOT EXISTS idx_purchases_item ON purchases(item_id);
CREATE INDEX IF NOT EXISTS idx_purchases_class ON purchases(class_id);
`
