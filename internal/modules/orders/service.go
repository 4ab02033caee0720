package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/myriadhero/tea-shop/internal/modules/cart"
	"github.com/myriadhero/tea-shop/internal/modules/payments"
	"github.com/myriadhero/tea-shop/internal/modules/products"
	"github.com/myriadhero/tea-shop/internal/shared/text"
)

type Service struct {
	db       *gorm.DB
	repo     *Repo
	carts    *cart.Service
	provider payments.Provider
	logger   *slog.Logger
}

func NewService(db *gorm.DB, carts *cart.Service, p payments.Provider) *Service {
	return &Service{db: db, repo: NewRepo(db), carts: carts, provider: p, logger: slog.Default()}
}

func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *Service) Repo() *Repo { return s.repo }

// CheckoutSession is everything the checkout page needs to render.
type CheckoutSession struct {
	Order   Order
	Summary cart.Summary
}

// StartCheckout opens (or resumes) the pending order for a cart and makes
// sure its payment intent matches the cart total.
func (s *Service) StartCheckout(ctx context.Context, cartID string) (CheckoutSession, error) {
	sum, err := s.carts.Summarize(ctx, cartID)
	if err != nil {
		return CheckoutSession{}, err
	}
	if sum.Empty() {
		return CheckoutSession{}, ErrCartEmpty
	}

	o, err := s.repo.PendingForCart(ctx, cartID)
	switch {
	case err == nil:
		// compare against the intent; a failed push in UpdateDetails leaves
		// the order row ahead of it
		intent, err := s.provider.RetrieveIntent(ctx, o.ClientSecret)
		if err != nil {
			return CheckoutSession{}, fmt.Errorf("retrieve intent: %w", err)
		}
		if intent.AmountCents != sum.SubtotalCents {
			if _, err := s.provider.UpdateIntent(ctx, payments.UpdateIntentRequest{
				IntentID:    o.PaymentIntent,
				AmountCents: sum.SubtotalCents,
			}); err != nil {
				return CheckoutSession{}, fmt.Errorf("update intent amount: %w", err)
			}
		}
		if o.AmountCents != sum.SubtotalCents {
			if err := s.db.WithContext(ctx).Model(&Order{}).
				Where("id = ?", o.ID).
				Updates(map[string]any{"amount_cents": sum.SubtotalCents, "updated_at": time.Now()}).Error; err != nil {
				return CheckoutSession{}, err
			}
			o.AmountCents = sum.SubtotalCents
		}
		return CheckoutSession{Order: o, Summary: sum}, nil
	case errors.Is(err, ErrNotFound):
	default:
		return CheckoutSession{}, err
	}

	intent, err := s.provider.CreateIntent(ctx, payments.CreateIntentRequest{
		AmountCents:    sum.SubtotalCents,
		Currency:       sum.Currency,
		IdempotencyKey: uuid.NewString(),
		Metadata:       map[string]string{"cart_id": cartID},
	})
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create intent: %w", err)
	}

	o = Order{
		ID:            uuid.NewString(),
		PaymentIntent: intent.ID,
		ClientSecret:  intent.ClientSecret,
		Status:        StatusPending,
		CartID:        cartID,
		AmountCents:   sum.SubtotalCents,
		Currency:      sum.Currency,
	}
	if err := s.db.WithContext(ctx).Create(&o).Error; err != nil {
		s.logger.ErrorContext(ctx, "order insert failed after intent creation", "intent", intent.ID, "err", err)
		return CheckoutSession{}, err
	}
	s.logger.InfoContext(ctx, "checkout started", "order_id", o.ID, "intent", intent.ID, "amount_cents", o.AmountCents)
	return CheckoutSession{Order: o, Summary: sum}, nil
}

type AddressInput struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type DetailsInput struct {
	PaymentIntent string
	Email         string
	Address       AddressInput
}

// UpdateDetails stores contact and shipping details on the pending order,
// freezes the cart into order items and pushes the result to the provider.
func (s *Service) UpdateDetails(ctx context.Context, in DetailsInput) (Order, error) {
	var o Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, "payment_intent = ?", in.PaymentIntent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownIntent
			}
			return err
		}
		if o.Status != StatusPending {
			return ErrOrderNotPending
		}

		// the cart is read through tx so SQLite's single writer is not blocked
		sum, err := cart.NewService(cart.NewRepo(tx), o.Currency).Summarize(ctx, o.CartID)
		if err != nil {
			return err
		}
		if sum.Empty() {
			return ErrCartEmpty
		}

		now := time.Now()
		addr := Address{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			Name:       strings.TrimSpace(in.Address.Name),
			Line1:      strings.TrimSpace(in.Address.Line1),
			Line2:      strings.TrimSpace(in.Address.Line2),
			City:       strings.TrimSpace(in.Address.City),
			State:      strings.TrimSpace(in.Address.State),
			PostalCode: strings.TrimSpace(in.Address.PostalCode),
			Country:    strings.ToUpper(strings.TrimSpace(in.Address.Country)),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "line1", "line2", "city", "state", "postal_code", "country", "updated_at"}),
		}).Create(&addr).Error; err != nil {
			return err
		}
		// on conflict the stored row keeps its original id
		var stored Address
		if err := tx.First(&stored, "order_id = ?", o.ID).Error; err != nil {
			return err
		}
		addr = stored

		if err := tx.Where("order_id = ?", o.ID).Delete(&OrderItem{}).Error; err != nil {
			return err
		}
		items := make([]OrderItem, 0, len(sum.Lines))
		for _, ln := range sum.Lines {
			items = append(items, OrderItem{
				ID:                 uuid.NewString(),
				OrderID:            o.ID,
				ProductID:          ln.ProductID,
				ProductName:        ln.Name,
				ProductDescription: ln.Description,
				Quantity:           ln.Quantity,
				UnitPriceCents:     ln.UnitPriceCents,
				LineTotalCents:     ln.LineTotalCents,
				CreatedAt:          now,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		o.Email = strings.TrimSpace(in.Email)
		o.AmountCents = sum.SubtotalCents
		o.Address = &addr
		return tx.Model(&Order{}).
			Where("id = ?", o.ID).
			Updates(map[string]any{"email": o.Email, "amount_cents": o.AmountCents, "updated_at": now}).Error
	})
	if err != nil {
		return Order{}, err
	}

	a := o.Address
	if _, err := s.provider.UpdateIntent(ctx, payments.UpdateIntentRequest{
		IntentID:     o.PaymentIntent,
		AmountCents:  o.AmountCents,
		ReceiptEmail: o.Email,
		Shipping: &payments.Shipping{
			Name:       a.Name,
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		},
	}); err != nil {
		return Order{}, fmt.Errorf("push details to provider: %w", err)
	}
	return o, nil
}

// MarkPaid runs inside the webhook transaction. It reports newlyPaid=false
// when the order was already paid.
func (s *Service) MarkPaid(ctx context.Context, tx *gorm.DB, intentID string) (string, bool, error) {
	o, err := lockByIntent(ctx, tx, intentID)
	if err != nil {
		return "", false, err
	}
	if o.Status == StatusPaid {
		return o.ID, false, nil
	}
	if o.Status != StatusPending {
		return o.ID, false, ErrOrderNotPending
	}

	var items []OrderItem
	if err := tx.WithContext(ctx).Find(&items, "order_id = ?", o.ID).Error; err != nil {
		return "", false, err
	}
	lines := make([]products.StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, products.StockLine{ProductID: it.ProductID, Qty: it.Quantity})
	}
	if err := products.DeductStockInTx(ctx, tx, lines); err != nil {
		var oos *products.OutOfStockError
		if !errors.As(err, &oos) {
			return "", false, err
		}
		// the money is already taken; keep the order and flag it
		s.logger.WarnContext(ctx, "order paid while out of stock", "order_id", o.ID, "err", err)
	}

	now := time.Now()
	if err := tx.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", o.ID, StatusPending).
		Updates(map[string]any{
			"status":             StatusPaid,
			"paid_at":            &now,
			"last_payment_error": nil,
			"updated_at":         now,
		}).Error; err != nil {
		return "", false, err
	}

	if err := tx.WithContext(ctx).Where("cart_id = ?", o.CartID).Delete(&cart.CartItem{}).Error; err != nil {
		return "", false, err
	}
	if err := tx.WithContext(ctx).Delete(&cart.Cart{}, "id = ?", o.CartID).Error; err != nil {
		return "", false, err
	}
	return o.ID, true, nil
}

// MarkFailed records the decline; the order stays pending so the customer
// can try another payment method.
func (s *Service) MarkFailed(ctx context.Context, tx *gorm.DB, intentID, reason string) error {
	o, err := lockByIntent(ctx, tx, intentID)
	if err != nil {
		return err
	}
	if o.Status != StatusPending {
		return nil
	}
	if reason == "" {
		reason = "payment failed"
	}
	reason = text.Truncate(reason, 255)
	return tx.WithContext(ctx).Model(&Order{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{"last_payment_error": reason, "updated_at": time.Now()}).Error
}

func (s *Service) MarkCanceled(ctx context.Context, tx *gorm.DB, intentID string) error {
	o, err := lockByIntent(ctx, tx, intentID)
	if err != nil {
		return err
	}
	if o.Status != StatusPending {
		return nil
	}
	return tx.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", o.ID, StatusPending).
		Updates(map[string]any{"status": StatusCanceled, "updated_at": time.Now()}).Error
}

func lockByIntent(ctx context.Context, tx *gorm.DB, intentID string) (Order, error) {
	if intentID == "" {
		return Order{}, errors.New("missing intent id")
	}
	var o Order
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, "payment_intent = ?", intentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrUnknownIntent
	}
	return o, err
}
