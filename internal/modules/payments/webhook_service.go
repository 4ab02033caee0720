package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/myriadhero/tea-shop/internal/db/dbtx"
	"github.com/myriadhero/tea-shop/internal/shared/text"
)

type ProviderEvent struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	Provider    string         `gorm:"type:varchar(64);not null;uniqueIndex:ux_provider_events_provider_event,priority:1"`
	EventID     string         `gorm:"type:varchar(128);not null;uniqueIndex:ux_provider_events_provider_event,priority:2"`
	EventType   string         `gorm:"type:varchar(64);not null"`
	IntentID    string         `gorm:"type:varchar(128);not null;index:ix_provider_events_intent"`
	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`

	ReceivedAt   time.Time  `gorm:"precision:3;not null"`
	ProcessedAt  *time.Time `gorm:"precision:3"`
	ProcessError *string    `gorm:"type:varchar(255)"`
}

func (ProviderEvent) TableName() string { return "provider_events" }

// OrderFinalizer applies payment outcomes to orders inside the webhook
// transaction.
type OrderFinalizer interface {
	MarkPaid(ctx context.Context, tx *gorm.DB, intentID string) (orderID string, newlyPaid bool, err error)
	MarkFailed(ctx context.Context, tx *gorm.DB, intentID, reason string) error
	MarkCanceled(ctx context.Context, tx *gorm.DB, intentID string) error
}

type WebhookService struct {
	db     *gorm.DB
	orders OrderFinalizer
	onPaid func(ctx context.Context, orderID string)
	logger *slog.Logger
}

func NewWebhookService(db *gorm.DB, orders OrderFinalizer) *WebhookService {
	return &WebhookService{db: db, orders: orders, logger: slog.Default()}
}

func (s *WebhookService) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// OnPaid registers a hook run after the transaction that marked an order paid
// has committed.
func (s *WebhookService) OnPaid(fn func(ctx context.Context, orderID string)) {
	s.onPaid = fn
}

func (s *WebhookService) Handle(ctx context.Context, providerName string, ev WebhookEvent, rawBody []byte) error {
	payload := datatypes.JSON(rawBody)
	if !json.Valid(rawBody) {
		b, _ := json.Marshal(map[string]string{"raw": string(rawBody)})
		payload = datatypes.JSON(b)
	}

	var (
		paidOrderID string
		applyErr    error
	)
	err := dbtx.Retry(ctx, s.db, 3, func(tx *gorm.DB) error {
		paidOrderID, applyErr = "", nil
		now := time.Now()

		pe := ProviderEvent{
			ID:          uuid.NewString(),
			Provider:    providerName,
			EventID:     ev.EventID,
			EventType:   ev.Type,
			IntentID:    ev.IntentID,
			PayloadJSON: payload,
			ReceivedAt:  now,
		}

		// dedupe: unique(provider,event_id). An event whose earlier apply
		// failed is applied again.
		if err := tx.WithContext(ctx).Create(&pe).Error; err != nil {
			if !dbtx.IsDuplicate(err) {
				s.logger.ErrorContext(ctx, "failed to persist provider event", "provider", providerName, "event_id", ev.EventID, "err", err)
				return err
			}
			var existing ProviderEvent
			if err := tx.WithContext(ctx).
				First(&existing, "provider = ? AND event_id = ?", providerName, ev.EventID).Error; err != nil {
				return err
			}
			pe = existing
			if pe.ProcessedAt != nil {
				s.logger.InfoContext(ctx, "webhook event deduplicated", "provider", providerName, "event_id", ev.EventID, "type", ev.Type)
				return nil
			}
		}

		if err := tx.SavePoint("apply").Error; err != nil {
			return err
		}
		switch ev.Type {
		case EventPaymentSucceeded:
			var newlyPaid bool
			var orderID string
			orderID, newlyPaid, applyErr = s.orders.MarkPaid(ctx, tx, ev.IntentID)
			if newlyPaid {
				paidOrderID = orderID
			}
		case EventPaymentFailed:
			applyErr = s.orders.MarkFailed(ctx, tx, ev.IntentID, ev.ErrorMessage)
		case EventPaymentCanceled:
			applyErr = s.orders.MarkCanceled(ctx, tx, ev.IntentID)
		default:
			applyErr = ErrUnknownEventType
		}

		if applyErr != nil {
			if err := tx.RollbackTo("apply").Error; err != nil {
				return err
			}
			msg := text.Truncate(applyErr.Error(), 250)
			if err := tx.WithContext(ctx).Model(&ProviderEvent{}).
				Where("id = ?", pe.ID).
				Updates(map[string]any{"process_error": msg}).Error; err != nil {
				return err
			}
			s.logger.ErrorContext(ctx, "webhook event apply failed", "provider", providerName, "event_id", ev.EventID, "type", ev.Type, "error", msg)
			// commit the event row; Handle still reports applyErr so the
			// handler answers 500 and the provider retries
			return nil
		}

		processed := now
		if err := tx.WithContext(ctx).Model(&ProviderEvent{}).
			Where("id = ?", pe.ID).
			Updates(map[string]any{"processed_at": &processed, "process_error": nil}).Error; err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "webhook event processed", "provider", providerName, "event_id", ev.EventID, "type", ev.Type)
		return nil
	})
	if err != nil {
		return err
	}
	if applyErr != nil {
		return applyErr
	}

	if paidOrderID != "" && s.onPaid != nil {
		s.onPaid(ctx, paidOrderID)
	}
	return nil
}
