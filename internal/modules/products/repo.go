package products

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// BySlug returns a published product.
func (r *Repo) BySlug(ctx context.Context, slug string) (Product, error) {
	var p Product
	err := r.db.WithContext(ctx).
		Preload("ProductType").
		First(&p, "slug = ? AND is_published = ?", strings.TrimSpace(slug), true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *Repo) ListPublished(ctx context.Context) ([]Product, error) {
	var out []Product
	err := r.db.WithContext(ctx).
		Preload("ProductType").
		Where("is_published = ?", true).
		Order("name ASC").
		Find(&out).Error
	return out, err
}
