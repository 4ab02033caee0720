package cart

import (
	"context"
	"errors"
	"strings"
)

var ErrMixedCurrency = errors.New("cart contains multiple currencies")

type Line struct {
	ProductID      string
	ProductSlug    string
	Name           string
	Description    string
	Quantity       int
	UnitPriceCents int
	LineTotalCents int
}

type Summary struct {
	CartID        string
	Lines         []Line
	Count         int
	SubtotalCents int
	Currency      string
}

func (s Summary) Empty() bool { return len(s.Lines) == 0 }

type Service struct {
	repo     *Repo
	currency string
}

// NewService builds the cart service. currency is used for empty carts.
func NewService(repo *Repo, currency string) *Service {
	return &Service{repo: repo, currency: strings.ToUpper(currency)}
}

func (s *Service) Repo() *Repo { return s.repo }

// Summarize prices a cart. A missing cart summarizes as empty.
func (s *Service) Summarize(ctx context.Context, cartID string) (Summary, error) {
	sum := Summary{CartID: cartID, Lines: []Line{}, Currency: s.currency}
	if cartID == "" {
		return sum, nil
	}
	c, err := s.repo.Get(ctx, cartID)
	if errors.Is(err, ErrNotFound) {
		return sum, nil
	}
	if err != nil {
		return Summary{}, err
	}

	cur := ""
	for _, it := range c.Items {
		if it.Quantity <= 0 {
			continue
		}
		pc := strings.ToUpper(strings.TrimSpace(it.Product.Currency))
		if cur == "" {
			cur = pc
		} else if pc != cur {
			return Summary{}, ErrMixedCurrency
		}
		line := it.Product.PriceCents * it.Quantity
		sum.Lines = append(sum.Lines, Line{
			ProductID:      it.ProductID,
			ProductSlug:    it.Product.Slug,
			Name:           it.Product.Name,
			Description:    it.Product.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.Product.PriceCents,
			LineTotalCents: line,
		})
		sum.Count += it.Quantity
		sum.SubtotalCents += line
	}
	if cur != "" {
		sum.Currency = cur
	}
	return sum, nil
}
