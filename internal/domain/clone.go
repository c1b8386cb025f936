package domain

import "slices"

// CloneProducts deep-copies products so callers can mutate the result.
func CloneProducts(src []Product) []Product {
	out := make([]Product, len(src))
	for i, p := range src {
		out[i] = p
		out[i].Variants = make([]Variant, len(p.Variants))
		for j, v := range p.Variants {
			out[i].Variants[j] = v
			out[i].Variants[j].Sizes = slices.Clone(v.Sizes)
		}
	}
	return out
}

func CloneSettings(src Settings) Settings {
	out := src
	out.Sections = slices.Clone(src.Sections)
	out.DeliveryCompanies = slices.Clone(src.DeliveryCompanies)
	out.Campaigns = make([]Campaign, len(src.Campaigns))
	for i, c := range src.Campaigns {
		out.Campaigns[i] = c.Clone()
	}
	return out
}

func (c Campaign) Clone() Campaign {
	out := c
	out.ProductIDs = slices.Clone(c.ProductIDs)
	if c.OfferEndDate != nil {
		end := *c.OfferEndDate
		out.OfferEndDate = &end
	}
	return out
}
