package payments_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/myriadhero/tea-shop/internal/db/dbtest"
	"github.com/myriadhero/tea-shop/internal/modules/cart"
	"github.com/myriadhero/tea-shop/internal/modules/orders"
	"github.com/myriadhero/tea-shop/internal/modules/payments"
)

// flakyOrders fails the first MarkPaid, then delegates.
type flakyOrders struct {
	*orders.Service
	failures int
}

func (f *flakyOrders) MarkPaid(ctx context.Context, tx *gorm.DB, intentID string) (string, bool, error) {
	if f.failures > 0 {
		f.failures--
		return "", false, errors.New("database hiccup")
	}
	return f.Service.MarkPaid(ctx, tx, intentID)
}

func setup(t *testing.T) (*gorm.DB, *orders.Service, orders.Order) {
	t.Helper()
	ctx := context.Background()
	gdb := dbtest.Open(t)
	p := dbtest.SeedProduct(t, gdb, "darjeeling", 900, 10)

	carts := cart.NewService(cart.NewRepo(gdb), "AUD")
	c, err := carts.Repo().Create(ctx)
	require.NoError(t, err)
	require.NoError(t, carts.Repo().AddProduct(ctx, c.ID, p.ID, 1, false))

	svc := orders.NewService(gdb, carts, payments.NewMockProvider("whsec"))
	sess, err := svc.StartCheckout(ctx, c.ID)
	require.NoError(t, err)
	_, err = svc.UpdateDetails(ctx, orders.DetailsInput{
		PaymentIntent: sess.Order.PaymentIntent,
		Email:         "a@example.com",
		Address:       orders.AddressInput{Name: "Ada", Line1: "1 George St", City: "Sydney", State: "NSW", PostalCode: "2000", Country: "AU"},
	})
	require.NoError(t, err)
	return gdb, svc, sess.Order
}

func TestWebhookMarksPaidOnceAndNotifies(t *testing.T) {
	ctx := context.Background()
	gdb, svc, o := setup(t)

	var paid []string
	ws := payments.NewWebhookService(gdb, svc)
	ws.OnPaid(func(_ context.Context, orderID string) { paid = append(paid, orderID) })

	ev := payments.WebhookEvent{EventID: "evt_1", Type: payments.EventPaymentSucceeded, IntentID: o.PaymentIntent}
	require.NoError(t, ws.Handle(ctx, "mock", ev, []byte(`{"id":"evt_1"}`)))
	require.NoError(t, ws.Handle(ctx, "mock", ev, []byte(`{"id":"evt_1"}`)))

	assert.Equal(t, []string{o.ID}, paid)

	var pe payments.ProviderEvent
	require.NoError(t, gdb.First(&pe, "event_id = ?", "evt_1").Error)
	assert.NotNil(t, pe.ProcessedAt)
	assert.Nil(t, pe.ProcessError)

	var n int64
	require.NoError(t, gdb.Model(&payments.ProviderEvent{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestWebhookApplyFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	gdb, svc, o := setup(t)

	ws := payments.NewWebhookService(gdb, &flakyOrders{Service: svc, failures: 1})
	ev := payments.WebhookEvent{EventID: "evt_2", Type: payments.EventPaymentSucceeded, IntentID: o.PaymentIntent}

	err := ws.Handle(ctx, "mock", ev, []byte(`not json`))
	require.Error(t, err)

	var pe payments.ProviderEvent
	require.NoError(t, gdb.First(&pe, "event_id = ?", "evt_2").Error)
	require.NotNil(t, pe.ProcessError)
	assert.Equal(t, "database hiccup", *pe.ProcessError)
	assert.Nil(t, pe.ProcessedAt)

	require.NoError(t, ws.Handle(ctx, "mock", ev, []byte(`not json`)))
	got, err := svc.Repo().ByIntent(ctx, o.PaymentIntent)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, got.Status)

	// the redelivery settles the row written by the first attempt
	var settled payments.ProviderEvent
	require.NoError(t, gdb.First(&settled, "event_id = ?", "evt_2").Error)
	assert.Equal(t, pe.ID, settled.ID)
	assert.NotNil(t, settled.ProcessedAt)
	assert.Nil(t, settled.ProcessError)
}

func TestWebhookUnknownIntent(t *testing.T) {
	ctx := context.Background()
	gdb, svc, _ := setup(t)

	ws := payments.NewWebhookService(gdb, svc)
	err := ws.Handle(ctx, "mock", payments.WebhookEvent{EventID: "evt_3", Type: payments.EventPaymentFailed, IntentID: "pi_other"}, []byte(`{}`))
	assert.ErrorIs(t, err, orders.ErrUnknownIntent)
}

func TestWebhookCanceled(t *testing.T) {
	ctx := context.Background()
	gdb, svc, o := setup(t)

	ws := payments.NewWebhookService(gdb, svc)
	require.NoError(t, ws.Handle(ctx, "mock", payments.WebhookEvent{EventID: "evt_4", Type: payments.EventPaymentCanceled, IntentID: o.PaymentIntent}, []byte(`{}`)))

	got, err := svc.Repo().ByIntent(ctx, o.PaymentIntent)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCanceled, got.Status)
}
