package cart

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type GCResult struct {
	Expired int64 // idle longer than the cookie lifetime
	Empty   int64 // no items left
}

// emptyGrace keeps a just-created cart alive until its first item lands.
const emptyGrace = time.Hour

// RemoveOrphaned deletes carts nobody can reach any more: carts idle since
// before cutoff (their cookie has expired) and carts left without items.
func RemoveOrphaned(ctx context.Context, db *gorm.DB, cutoff time.Time) (GCResult, error) {
	var res GCResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expired []string
		if err := tx.Model(&Cart{}).Where("updated_at < ?", cutoff).Pluck("id", &expired).Error; err != nil {
			return err
		}
		if len(expired) > 0 {
			if err := tx.Where("cart_id IN ?", expired).Delete(&CartItem{}).Error; err != nil {
				return err
			}
			r := tx.Where("id IN ?", expired).Delete(&Cart{})
			if r.Error != nil {
				return r.Error
			}
			res.Expired = r.RowsAffected
		}

		r := tx.
			Where("updated_at < ?", time.Now().Add(-emptyGrace)).
			Where("NOT EXISTS (SELECT 1 FROM cart_items ci WHERE ci.cart_id = carts.id)").
			Delete(&Cart{})
		if r.Error != nil {
			return r.Error
		}
		res.Empty = r.RowsAffected
		return nil
	})
	return res, err
}
