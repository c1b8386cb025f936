package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadBeforeSaveIsNotFound(t *testing.T) {
	s := openMemory(t)
	_, err := s.LoadProducts(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.LoadSettings(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordsOverwrite(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	require.NoError(t, s.SaveProducts(ctx, []domain.Product{{ID: 1, Name: "a"}}))
	require.NoError(t, s.SaveProducts(ctx, []domain.Product{{ID: 2, Name: "b"}, {ID: 3, Name: "c"}}))

	products, err := s.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(2), products[0].ID)

	end := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveSettings(ctx, domain.Settings{
		StoreName: "متجر",
		Campaigns: []domain.Campaign{{ID: "waw", Enabled: true, OfferEndDate: &end}},
	}))
	settings, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "متجر", settings.StoreName)
	require.NotNil(t, settings.Campaigns[0].OfferEndDate)
	assert.True(t, settings.Campaigns[0].OfferEndDate.Equal(end))
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	lines := []domain.CartLine{{CartID: "4-#FFFFFF", ProductID: 4, Price: 6000, Quantity: 1}}

	_, err := s.CreateOrder(ctx, domain.Order{})
	assert.ErrorIs(t, err, store.ErrEmptyCart)

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	older, err := s.CreateOrder(ctx, domain.Order{PlacedAt: base, Lines: lines, Total: 6600})
	require.NoError(t, err)
	newer, err := s.CreateOrder(ctx, domain.Order{ID: "ord_x", PlacedAt: base.Add(time.Hour), Lines: lines})
	require.NoError(t, err)

	_, err = s.CreateOrder(ctx, domain.Order{ID: "ord_x", Lines: lines})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	orders, err := s.ListOrders(ctx, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
	assert.Equal(t, 6600.0, orders[1].Total)

	require.NoError(t, s.DeleteOrder(ctx, older.ID))
	assert.ErrorIs(t, s.DeleteOrder(ctx, older.ID), store.ErrNotFound)
}

func TestFileDatabasePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSettings(ctx, domain.Settings{StoreName: "persisted"}))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	settings, err := reopened.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", settings.StoreName)
}
