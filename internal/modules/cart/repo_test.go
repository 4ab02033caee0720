package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myriadhero/tea-shop/internal/db/dbtest"
	"github.com/myriadhero/tea-shop/internal/modules/cart"
)

func TestAddProductAccumulatesAndSets(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	p := dbtest.SeedProduct(t, gdb, "oolong", 500, 10)

	repo := cart.NewRepo(gdb)
	c, err := repo.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.AddProduct(ctx, c.ID, p.ID, 1, false))
	require.NoError(t, repo.AddProduct(ctx, c.ID, p.ID, 2, false))

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)

	require.NoError(t, repo.AddProduct(ctx, c.ID, p.ID, 5, true))
	got, err = repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Items[0].Quantity)

	assert.ErrorIs(t, repo.AddProduct(ctx, c.ID, p.ID, 0, true), cart.ErrInvalidQuantity)
}

func TestRemoveLastProductDeletesCart(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	a := dbtest.SeedProduct(t, gdb, "green", 300, 10)
	b := dbtest.SeedProduct(t, gdb, "black", 400, 10)

	repo := cart.NewRepo(gdb)
	c, err := repo.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.AddProduct(ctx, c.ID, a.ID, 1, false))
	require.NoError(t, repo.AddProduct(ctx, c.ID, b.ID, 1, false))

	deleted, err := repo.RemoveProduct(ctx, c.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.RemoveProduct(ctx, c.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.Get(ctx, c.ID)
	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	a := dbtest.SeedProduct(t, gdb, "sencha", 1250, 10)
	b := dbtest.SeedProduct(t, gdb, "pu-erh", 899, 10)

	svc := cart.NewService(cart.NewRepo(gdb), "aud")

	empty, err := svc.Summarize(ctx, "")
	require.NoError(t, err)
	assert.True(t, empty.Empty())
	assert.Equal(t, "AUD", empty.Currency)

	c, err := svc.Repo().Create(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Repo().AddProduct(ctx, c.ID, a.ID, 2, false))
	require.NoError(t, svc.Repo().AddProduct(ctx, c.ID, b.ID, 1, false))

	sum, err := svc.Summarize(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 2*1250+899, sum.SubtotalCents)
	require.Len(t, sum.Lines, 2)
	assert.Equal(t, "sencha", sum.Lines[0].ProductSlug)
	assert.Equal(t, 2500, sum.Lines[0].LineTotalCents)
}

func TestRemoveOrphaned(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	p := dbtest.SeedProduct(t, gdb, "genmaicha", 700, 10)
	repo := cart.NewRepo(gdb)

	live, err := repo.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.AddProduct(ctx, live.ID, p.ID, 1, false))

	stale, err := repo.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.AddProduct(ctx, stale.ID, p.ID, 1, false))

	empty, err := repo.Create(ctx)
	require.NoError(t, err)

	old := time.Now().Add(-45 * 24 * time.Hour)
	require.NoError(t, gdb.Model(&cart.Cart{}).Where("id = ?", stale.ID).UpdateColumn("updated_at", old).Error)
	require.NoError(t, gdb.Model(&cart.Cart{}).Where("id = ?", empty.ID).UpdateColumn("updated_at", time.Now().Add(-2*time.Hour)).Error)

	res, err := cart.RemoveOrphaned(ctx, gdb, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Expired)
	assert.Equal(t, int64(1), res.Empty)

	_, err = repo.Get(ctx, live.ID)
	assert.NoError(t, err)
	_, err = repo.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, cart.ErrNotFound)
}
