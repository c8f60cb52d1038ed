// Package refnum generates the human-readable reference numbers stamped on
// every transaction document (PUR-, INV-, SALE-, PR-, SR-).
package refnum

import (
	"context"
	"fmt"
	"time"

	"backend/internal/repository"

	"gorm.io/gorm"
)

// Entity prefixes observed on documents.
const (
	PrefixPurchase       = "PUR"
	PrefixInventoryBatch = "INV"
	PrefixSale           = "SALE"
	PrefixPurchaseReturn = "PR"
	PrefixSalesReturn    = "SR"

	DefaultDigits = 5
)

// Generator produces per-prefix daily sequences, unique across the entity
// table the reference lives in.
type Generator struct {
	db *gorm.DB
}

func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{db: db}
}

// Generate returns the next reference for the given prefix, counting existing
// rows of entityModel whose column matches the day's prefix. Callers run this
// inside the same transaction as the insert so the count and the write are
// atomic. On postgres an advisory lock serializes concurrent generators for
// the same prefix; other dialects (the sqlite test driver) rely on their
// coarser transaction locking.
func (g *Generator) Generate(ctx context.Context, entityModel interface{}, column, prefix string, digits int) (string, error) {
	if digits <= 0 {
		digits = DefaultDigits
	}

	today := time.Now().Format("20060102")
	full := prefix + "-" + today + "-"

	db := repository.GetDB(ctx, g.db)
	if db.Dialector.Name() == "postgres" {
		db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", full)
	}

	var count int64
	if err := db.Model(entityModel).
		Where(column+" LIKE ?", full+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%0*d", full, digits, count+1), nil
}
