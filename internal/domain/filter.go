package domain

import "strings"

type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterCategory
	FilterOffer
)

// OfferTokenPrefix marks a filter token that selects a campaign's offer view.
const OfferTokenPrefix = "bot-offer-"

// Filter selects which part of the catalog the storefront lists.
// Value holds the category name or the campaign id depending on Kind.
type Filter struct {
	Kind  FilterKind
	Value string
}

func AllFilter() Filter { return Filter{Kind: FilterAll} }

func CategoryFilter(name string) Filter { return Filter{Kind: FilterCategory, Value: name} }

func OfferFilter(campaignID string) Filter { return Filter{Kind: FilterOffer, Value: campaignID} }

// ParseFilter turns a wire token into a Filter. "all" and the empty token
// are checked first, then the offer prefix; anything else names a category.
func ParseFilter(token string) Filter {
	token = strings.TrimSpace(token)
	if token == "" || token == "all" {
		return AllFilter()
	}
	if strings.HasPrefix(token, OfferTokenPrefix) {
		id := strings.TrimPrefix(token, OfferTokenPrefix)
		if id == "" {
			return AllFilter()
		}
		return OfferFilter(id)
	}
	return CategoryFilter(token)
}

func (f Filter) Token() string {
	switch f.Kind {
	case FilterCategory:
		return f.Value
	case FilterOffer:
		return OfferTokenPrefix + f.Value
	default:
		return "all"
	}
}

func (f Filter) IsOfferView() bool { return f.Kind == FilterOffer }
