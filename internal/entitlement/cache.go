// Package entitlement tracks what the user owns: individual items and
// class-level packages. The set lives in the local SQLite database and
// is mirrored in memory for gating queries. It is a cache of server
// truth; the order ledger is merged in whenever it is fetched.
// Membership only grows while the process runs.
package entitlement

import (
	"sync"
	"time"

	"github.com/studyshelf/studyshelf/internal/db"
	"github.com/studyshelf/studyshelf/internal/logger"
	"github.com/studyshelf/studyshelf/internal/model"
)

// Cache is the purchased-items set.
type Cache struct {
	db *db.DB

	mu      sync.RWMutex
	records []model.Purchase
}

// NewCache opens the cache over the local database and loads the
// persisted purchase set.
func NewCache(database *db.DB) (*Cache, error) {
	c := &Cache{db: database}
	if err := c.loadAll(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) loadAll() error {
	rows, err := c.db.Query(`
		SELECT order_id, item_id, name, class_id, package_type, price, purchased_at
		FROM purchases ORDER BY purchased_at ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var records []model.Purchase
	for rows.Next() {
		var p model.Purchase
		var purchasedAt string
		if err := rows.Scan(&p.OrderID, &p.ItemID, &p.Name, &p.ClassID,
			&p.PackageType, &p.Price, &purchasedAt); err != nil {
			return err
		}
		p.PurchasedAt, _ = time.Parse(time.RFC3339, purchasedAt)
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.records = records
	c.mu.Unlock()
	return nil
}

// IsItemPurchased reports whether an entitlement exists for the item id.
func (c *Cache) IsItemPurchased(itemID string) bool {
	if itemID == "" {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.records {
		if p.ItemID == itemID {
			return true
		}
	}
	return false
}

// IsClassPackagePurchased reports whether the class package is owned.
// A bundle purchase satisfies both the pdfs and videos checks for its
// class.
func (c *Cache) IsClassPackagePurchased(classID, packageType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.records {
		if p.ClassID != classID {
			continue
		}
		if p.PackageType == packageType || p.PackageType == model.PackageBundle {
			return true
		}
	}
	return false
}

// RecordPurchase appends a purchase to the set and persists it.
func (c *Cache) RecordPurchase(rec model.Purchase) error {
	if rec.PurchasedAt.IsZero() {
		rec.PurchasedAt = time.Now()
	}

	if err := c.insert(rec); err != nil {
		return err
	}

	c.mu.Lock()
	c.records = append(c.records, rec)
	c.mu.Unlock()

	logger.Info("Purchase recorded",
		logger.F("item", rec.ItemID),
		logger.F("class", rec.ClassID),
		logger.F("package", rec.PackageType),
		logger.F("order", rec.OrderID))
	return nil
}

func (c *Cache) insert(rec model.Purchase) error {
	_, err := c.db.Exec(`
		INSERT OR IGNORE INTO purchases
		    (order_id, item_id, name, class_id, package_type, price, purchased_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.OrderID, rec.ItemID, rec.Name, rec.ClassID, rec.PackageType,
		rec.Price, rec.PurchasedAt.Format(time.RFC3339))
	return err
}

// MergeOrders reconciles the cache with the remote order ledger.
// Completed orders are added; nothing is ever removed here.
func (c *Cache) MergeOrders(orders []model.Order) (int, error) {
	added := 0
	for _, o := range orders {
		if !o.Completed() {
			continue
		}
		for _, rec := range purchasesFromOrder(o) {
			if c.has(rec) {
				continue
			}
			if err := c.insert(rec); err != nil {
				return added, err
			}
			c.mu.Lock()
			c.records = append(c.records, rec)
			c.mu.Unlock()
			added++
		}
	}
	if added > 0 {
		logger.Info("Entitlements merged from order ledger", logger.F("added", added))
	}
	return added, nil
}

func (c *Cache) has(rec model.Purchase) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.records {
		if p.OrderID == rec.OrderID && p.ItemID == rec.ItemID &&
			p.ClassID == rec.ClassID && p.PackageType == rec.PackageType {
			return true
		}
	}
	return false
}

// purchasesFromOrder derives entitlement records from one order. A
// class package order yields one class-level record; item lines yield
// per-item records.
func purchasesFromOrder(o model.Order) []model.Purchase {
	at := o.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}

	switch o.PackageType {
	case model.PackagePDFs, model.PackageVideos, model.PackageBundle:
		return []model.Purchase{{
			ClassID:     o.ClassID,
			PackageType: o.PackageType,
			Price:       o.Amount,
			OrderID:     o.ID,
			PurchasedAt: at,
		}}
	}

	var recs []model.Purchase
	for _, it := range o.Items {
		if it.ID == "" {
			continue
		}
		recs = append(recs, model.Purchase{
			ItemID:      it.ID,
			Name:        it.Name,
			ClassID:     o.ClassID,
			PackageType: o.PackageType,
			Price:       it.Price,
			OrderID:     o.ID,
			PurchasedAt: at,
		})
	}
	return recs
}

// Purchases returns a copy of the current purchase set.
func (c *Cache) Purchases() []model.Purchase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Purchase, len(c.records))
	copy(out, c.records)
	return out
}
