package seed

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()

	require.Len(t, cat.Products, 20)
	assert.Equal(t, int64(1), cat.Products[0].ID)
	assert.Equal(t, 12000.0, cat.Products[0].Price)
	assert.Len(t, cat.Products[0].Variants, 2)
	assert.Equal(t, `كتاب "فن اللامبالاة"`, cat.Products[12].Name)
	assert.NotNil(t, cat.Products[2].Variants)

	s := cat.Settings
	assert.Equal(t, "المتجر البلاتيني", s.StoreName)
	assert.Equal(t, domain.OfferDisplayBesideCart, s.OfferDisplay)
	assert.Equal(t, 4, s.Grid.Columns)
	require.Len(t, s.Campaigns, 1)
	assert.Equal(t, "waw", s.Campaigns[0].ID)
	assert.False(t, s.Campaigns[0].Enabled)
	assert.Nil(t, s.Campaigns[0].OfferEndDate)
	assert.Len(t, s.DeliveryCompanies, 2)
	assert.Empty(t, s.Sections)

	require.Len(t, cat.Wilayas, 48)
	assert.Equal(t, domain.Wilaya{Name: "أدرار", Cost: 600}, cat.Wilayas[0])
	assert.Contains(t, cat.Wilayas, domain.Wilaya{Name: "تندوف", Cost: 850})
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.Products[0].Name = "changed"
	b := Default()
	assert.NotEqual(t, "changed", b.Products[0].Name)
}

func TestLoadMergesDefaults(t *testing.T) {
	cat, err := Load(filepath.Join("testdata", "partial.yaml"))
	require.NoError(t, err)

	require.Len(t, cat.Products, 1)
	assert.Equal(t, "#000000", cat.Products[0].Variants[0].Color)

	s := cat.Settings
	assert.Equal(t, "Test Store", s.StoreName)
	assert.Equal(t, domain.OfferDisplayBesideCart, s.OfferDisplay)
	assert.Equal(t, 4, s.Grid.Columns)
	assert.Equal(t, "magnetic-tilt", s.Grid.CardAnimation)
	require.Len(t, s.Sections, 1)
	assert.Equal(t, 2, s.Sections[0].ProductCount)
	assert.Equal(t, "waw", s.Campaigns[0].ID)
	assert.Len(t, s.DeliveryCompanies, 2)
	assert.Len(t, cat.Wilayas, 48, "a fixture without a shipping table keeps the default one")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}
