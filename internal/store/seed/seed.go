// Package seed loads catalog fixtures from YAML. The embedded defaults.yaml
// holds the storefront shipped to a fresh install.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Catalog struct {
	Products []domain.Product `yaml:"products"`
	Settings domain.Settings  `yaml:"settings"`
	// Wilayas is the per-province shipping table charged at checkout.
	Wilayas []domain.Wilaya `yaml:"wilayas"`
}

// Default returns a fresh copy of the built-in catalog. Callers may mutate it.
func Default() Catalog {
	cat, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("seed: embedded defaults are invalid: %v", err))
	}
	return cat
}

func DefaultProducts() []domain.Product {
	return Default().Products
}

func DefaultSettings() domain.Settings {
	return Default().Settings
}

func DefaultWilayas() []domain.Wilaya {
	return Default().Wilayas
}

// Load reads a fixture from disk. Missing settings fields are filled from
// the built-in defaults; an empty product list or shipping table keeps the
// default one.
func Load(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read seed file: %w", err)
	}
	cat, err := Parse(raw)
	if err != nil {
		return Catalog{}, err
	}
	if len(cat.Products) == 0 {
		cat.Products = DefaultProducts()
	}
	if len(cat.Wilayas) == 0 {
		cat.Wilayas = DefaultWilayas()
	}
	return cat, nil
}

func Parse(raw []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse seed: %w", err)
	}
	cat.Products = NormalizeProducts(cat.Products)
	cat.Settings = NormalizeSettings(cat.Settings)
	return cat, nil
}

// NormalizeProducts fills the fields a hand-edited record may omit.
func NormalizeProducts(products []domain.Product) []domain.Product {
	for i := range products {
		if products[i].Price < 0 {
			products[i].Price = 0
		}
		if products[i].Variants == nil {
			products[i].Variants = []domain.Variant{}
		}
		for j := range products[i].Variants {
			if products[i].Variants[j].Color == "" {
				products[i].Variants[j].Color = "#000000"
			}
			if products[i].Variants[j].Sizes == nil {
				products[i].Variants[j].Sizes = []string{}
			}
		}
	}
	return products
}

// NormalizeSettings merges s over the built-in defaults. Unknown offer
// display placements fall back to beside-cart.
func NormalizeSettings(s domain.Settings) domain.Settings {
	d := builtinSettings
	if s.StoreName == "" {
		s.StoreName = d.StoreName
	}
	switch s.OfferDisplay {
	case domain.OfferDisplayBesideLogo, domain.OfferDisplayBesideCart, domain.OfferDisplayAboveHero:
	default:
		s.OfferDisplay = domain.OfferDisplayBesideCart
	}
	if s.Grid.Columns < 1 {
		s.Grid.Columns = d.Grid.Columns
	}
	if s.Grid.CardShape == "" {
		s.Grid.CardShape = d.Grid.CardShape
	}
	if s.Grid.CardAnimation == "" {
		s.Grid.CardAnimation = d.Grid.CardAnimation
	}
	if s.Sections == nil {
		s.Sections = []domain.Section{}
	}
	if s.Campaigns == nil {
		s.Campaigns = append([]domain.Campaign(nil), d.Campaigns...)
	}
	for i := range s.Campaigns {
		if s.Campaigns[i].ProductIDs == nil {
			s.Campaigns[i].ProductIDs = []int64{}
		}
	}
	if s.DeliveryCompanies == nil {
		s.DeliveryCompanies = append([]domain.DeliveryCompany(nil), d.DeliveryCompanies...)
	}
	return s
}

// builtinSettings mirrors the settings block of defaults.yaml.
var builtinSettings = domain.Settings{
	StoreName:    "المتجر البلاتيني",
	OfferDisplay: domain.OfferDisplayBesideCart,
	Grid: domain.GridSettings{
		Columns:       4,
		CardShape:     "default",
		CardAnimation: "magnetic-tilt",
	},
	Campaigns: []domain.Campaign{{
		ID:                 "waw",
		Name:               "المسوق WAW",
		DiscountPercentage: 20,
		DurationHours:      24,
		ProductIDs:         []int64{},
	}},
	DeliveryCompanies: []domain.DeliveryCompany{
		{ID: 1, Name: "ياليدين إكسبريس", Fee: 600},
		{ID: 2, Name: "أخرى", Fee: 700},
	},
}
