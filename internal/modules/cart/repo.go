package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("cart not found")
	ErrInvalidQuantity = errors.New("cart item quantity must be positive")
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context) (Cart, error) {
	c := Cart{ID: uuid.NewString()}
	err := r.db.WithContext(ctx).Create(&c).Error
	return c, err
}

// Get loads a cart with its items and their products.
func (r *Repo) Get(ctx context.Context, cartID string) (Cart, error) {
	var c Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		First(&c, "id = ?", cartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Cart{}, ErrNotFound
	}
	return c, err
}

// AddProduct adds qty of a product, or sets the quantity when setQuantity is true.
func (r *Repo) AddProduct(ctx context.Context, cartID, productID string, qty int, setQuantity bool) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CartItem
		err := tx.First(&existing, "cart_id = ? AND product_id = ?", cartID, productID).Error
		switch {
		case err == nil:
			newQty := existing.Quantity + qty
			if setQuantity {
				newQty = qty
			}
			if err := tx.Model(&CartItem{}).
				Where("id = ?", existing.ID).
				Updates(map[string]any{"quantity": newQty, "updated_at": time.Now()}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := CartItem{ID: uuid.NewString(), CartID: cartID, ProductID: productID, Quantity: qty}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return touch(tx, cartID)
	})
}

// RemoveProduct drops a product line. Removing the last line deletes the cart.
// It reports whether the cart itself was deleted.
func (r *Repo) RemoveProduct(ctx context.Context, cartID, productID string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		var left int64
		if err := tx.Model(&CartItem{}).Where("cart_id = ?", cartID).Count(&left).Error; err != nil {
			return err
		}
		if left > 0 {
			return touch(tx, cartID)
		}
		deleted = true
		return tx.Delete(&Cart{}, "id = ?", cartID).Error
	})
	return deleted, err
}

func (r *Repo) Delete(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Cart{}, "id = ?", cartID).Error
	})
}

func touch(tx *gorm.DB, cartID string) error {
	return tx.Model(&Cart{}).Where("id = ?", cartID).Update("updated_at", time.Now()).Error
}
