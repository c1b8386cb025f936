package service

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/unicode/norm"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/derive"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

const defaultLocale = "ar-DZ"

func newPrinter(locale string) *message.Printer {
	if locale == "" {
		locale = defaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(defaultLocale)
	}
	return message.NewPrinter(tag)
}

// PriceLabel formats an amount in dinars for the configured locale.
func (s *Service) PriceLabel(amount float64) string {
	return s.printer.Sprintf("%v DA", number.Decimal(amount, number.MaxFractionDigits(2)))
}

// StorefrontView is everything the shop page renders for one filter.
type StorefrontView struct {
	StoreName      string              `json:"store_name"`
	OfferDisplay   string              `json:"offer_display"`
	Filter         string              `json:"filter"`
	OfferView      bool                `json:"offer_view"`
	Categories     []string            `json:"categories"`
	ActiveCampaign *domain.Campaign    `json:"active_campaign"`
	Countdown      string              `json:"countdown"`
	CountdownState string              `json:"countdown_state"`
	Prices         map[int64]float64   `json:"prices"`
	PriceLabels    map[int64]string    `json:"price_labels"`
	Layout         []derive.LayoutItem `json:"layout"`
	OfferProducts  []domain.Product    `json:"offer_products"`
	Cart           domain.CartSummary  `json:"cart"`
}

// ParseFilterToken NFC-normalizes the token so category names typed with
// decomposed Arabic marks still match the catalog.
func ParseFilterToken(token string) domain.Filter {
	return domain.ParseFilter(norm.NFC.String(token))
}

func (s *Service) Storefront(ctx context.Context, sessionID, filterToken string) (StorefrontView, *Session) {
	sess := s.Session(ctx, sessionID)
	snap := s.snapshot()
	filter := ParseFilterToken(filterToken)

	labels := make(map[int64]string, len(snap.Products))
	for _, p := range snap.Products {
		price, _ := snap.Price(p)
		labels[p.ID] = s.PriceLabel(price)
	}

	display, state := s.Countdown()

	categories := snap.Categories
	if categories == nil {
		categories = []string{}
	}
	offers := snap.OfferProducts
	if offers == nil {
		offers = []domain.Product{}
	}

	return StorefrontView{
		StoreName:      snap.Settings.StoreName,
		OfferDisplay:   snap.Settings.OfferDisplay,
		Filter:         filter.Token(),
		OfferView:      filter.IsOfferView(),
		Categories:     categories,
		ActiveCampaign: snap.Active,
		Countdown:      display,
		CountdownState: state.String(),
		Prices:         snap.Prices,
		PriceLabels:    labels,
		Layout:         snap.Layout(filter),
		OfferProducts:  offers,
		Cart:           sess.Cart.Summary(),
	}, sess
}

// Preview renders the layout without creating a shopper session.
func (s *Service) Preview(filterToken string) []derive.LayoutItem {
	return s.snapshot().Layout(ParseFilterToken(filterToken))
}
