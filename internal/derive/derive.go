// Package derive computes the shopper-facing view of the catalog: the
// active campaign, discounted prices, the filtered product list and its
// section layout. Every function here is pure; Graph memoizes the results
// per catalog revision.
package derive

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// IsLive reports whether c is enabled with an end date strictly after now.
func IsLive(c domain.Campaign, now time.Time) bool {
	return c.Enabled && c.OfferEndDate != nil && c.OfferEndDate.After(now)
}

// ActiveCampaign returns a copy of the first live campaign in list order.
func ActiveCampaign(campaigns []domain.Campaign, now time.Time) *domain.Campaign {
	for _, c := range campaigns {
		if IsLive(c, now) {
			active := c.Clone()
			return &active
		}
	}
	return nil
}

// DiscountedPrice applies pct, clamped to [0,100], to price.
func DiscountedPrice(price, pct float64) float64 {
	p := decimal.NewFromFloat(pct)
	if p.IsNegative() {
		p = decimal.Zero
	}
	if p.GreaterThan(hundred) {
		p = hundred
	}
	factor := decimal.NewFromInt(1).Sub(p.Div(hundred))
	out, _ := decimal.NewFromFloat(price).Mul(factor).Float64()
	return out
}

// DiscountedPrices maps every eligible product id that still resolves to a
// catalog product onto its discounted price. A nil campaign yields an empty
// map. The result is always freshly allocated.
func DiscountedPrices(active *domain.Campaign, products []domain.Product) map[int64]float64 {
	prices := make(map[int64]float64)
	if active == nil {
		return prices
	}
	byID := make(map[int64]float64, len(products))
	for _, p := range products {
		byID[p.ID] = p.Price
	}
	for _, id := range active.ProductIDs {
		price, ok := byID[id]
		if !ok {
			continue
		}
		prices[id] = DiscountedPrice(price, active.DiscountPercentage)
	}
	return prices
}

// Categories lists distinct product categories in first-seen order.
func Categories(products []domain.Product) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 8)
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// OfferProducts returns the catalog products eligible for c in catalog order.
func OfferProducts(c *domain.Campaign, products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0)
	if c == nil {
		return out
	}
	for _, p := range products {
		if c.Eligible(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// FilterProducts narrows products by filter. Offer filters select the named
// campaign's eligible products whether or not it is live; category filters
// apply only to a category present in the catalog. Anything unresolvable
// returns the full list.
func FilterProducts(products []domain.Product, campaigns []domain.Campaign, filter domain.Filter) []domain.Product {
	switch filter.Kind {
	case domain.FilterOffer:
		for i := range campaigns {
			if campaigns[i].ID == filter.Value {
				return OfferProducts(&campaigns[i], products)
			}
		}
	case domain.FilterCategory:
		out := make([]domain.Product, 0, len(products))
		for _, p := range products {
			if p.Category == filter.Value {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return copyProducts(products)
}
