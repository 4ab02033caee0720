package products

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/myriadhero/tea-shop/internal/db/dbtx"
)

type OutOfStockItem struct {
	ProductID string
	Requested int
	Available int
}

type OutOfStockError struct {
	Items []OutOfStockItem
}

func (e *OutOfStockError) Error() string {
	if len(e.Items) == 0 {
		return "out of stock"
	}
	it := e.Items[0]
	return fmt.Sprintf("out of stock: product=%s requested=%d available=%d", it.ProductID, it.Requested, it.Available)
}

type StockLine struct {
	ProductID string
	Qty       int
}

// DeductStockInTx runs inside the caller's transaction; it never opens one.
func DeductStockInTx(ctx context.Context, tx *gorm.DB, lines []StockLine) error {
	if len(lines) == 0 {
		return nil
	}

	want := make(map[string]int, len(lines))
	for _, ln := range lines {
		q := ln.Qty
		if q < 1 {
			q = 1
		}
		want[ln.ProductID] += q
	}

	// lock rows in a fixed order
	ids := make([]string, 0, len(want))
	for id := range want {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type stockRow struct {
		ID       string `gorm:"column:id"`
		Quantity int    `gorm:"column:quantity"`
	}
	var rows []stockRow
	if err := tx.WithContext(ctx).
		Model(&Product{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "quantity").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return err
	}

	avail := make(map[string]int, len(rows))
	for _, r := range rows {
		avail[r.ID] = r.Quantity
	}

	var oos []OutOfStockItem
	for _, id := range ids {
		req := want[id]
		av, ok := avail[id]
		if !ok || av < req {
			oos = append(oos, OutOfStockItem{ProductID: id, Requested: req, Available: av})
		}
	}
	if len(oos) > 0 {
		return &OutOfStockError{Items: oos}
	}

	for _, id := range ids {
		req := want[id]
		res := tx.WithContext(ctx).
			Model(&Product{}).
			Where("id = ? AND quantity >= ?", id, req).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", req))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return &OutOfStockError{Items: []OutOfStockItem{{ProductID: id, Requested: req}}}
		}
	}
	return nil
}

// DeductStock wraps DeductStockInTx in its own transaction, retrying on
// deadlock and lock-wait timeouts.
func DeductStock(ctx context.Context, db *gorm.DB, lines []StockLine) error {
	return dbtx.Retry(ctx, db, 3, func(tx *gorm.DB) error {
		return DeductStockInTx(ctx, tx, lines)
	})
}
