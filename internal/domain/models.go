package domain

import "time"

type Variant struct {
	Color string   `json:"color" yaml:"color"`
	Image string   `json:"image,omitempty" yaml:"image,omitempty"`
	Sizes []string `json:"sizes" yaml:"sizes"`
}

type Product struct {
	ID          int64     `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Price       float64   `json:"price" yaml:"price"`
	Category    string    `json:"category" yaml:"category"`
	Image       string    `json:"image" yaml:"image"`
	Description string    `json:"description" yaml:"description"`
	Variants    []Variant `json:"variants" yaml:"variants"`
}

type ProductCreateRequest struct {
	Name        string    `json:"name" validate:"required"`
	Price       float64   `json:"price" validate:"gte=0"`
	Category    string    `json:"category" validate:"required"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Variants    []Variant `json:"variants" validate:"dive"`
}

type ProductUpdateRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1"`
	Price       *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,min=1"`
	Image       *string    `json:"image,omitempty"`
	Description *string    `json:"description,omitempty"`
	Variants    *[]Variant `json:"variants,omitempty"`
}

type CategoryRenameRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

type CategoryDeleteRequest struct {
	Name string `json:"name" validate:"required"`
}

// Campaign is a time-boxed percentage discount over a fixed product set.
// OfferEndDate is nil whenever the campaign is not running.
type Campaign struct {
	ID                 string     `json:"id" yaml:"id"`
	Name               string     `json:"name" yaml:"name"`
	Enabled            bool       `json:"enabled" yaml:"enabled"`
	DiscountPercentage float64    `json:"discount_percentage" yaml:"discount_percentage"`
	DurationHours      float64    `json:"duration_hours" yaml:"duration_hours"`
	ProductIDs         []int64    `json:"product_ids" yaml:"product_ids"`
	OfferEndDate       *time.Time `json:"offer_end_date" yaml:"offer_end_date"`
}

// Eligible reports whether productID is in the campaign's product set.
func (c Campaign) Eligible(productID int64) bool {
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

type CampaignCreateRequest struct {
	Name               string  `json:"name" validate:"required"`
	DiscountPercentage float64 `json:"discount_percentage" validate:"gte=0,lte=100"`
	DurationHours      float64 `json:"duration_hours" validate:"gt=0"`
	ProductIDs         []int64 `json:"product_ids"`
}

type CampaignUpdateRequest struct {
	Name               *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	DiscountPercentage *float64 `json:"discount_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	DurationHours      *float64 `json:"duration_hours,omitempty" validate:"omitempty,gt=0"`
	ProductIDs         *[]int64 `json:"product_ids,omitempty"`
}

type Section struct {
	ID            int64  `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	ProductCount  int    `json:"product_count" yaml:"product_count"`
	Columns       int    `json:"columns" yaml:"columns"`
	CardShape     string `json:"card_shape" yaml:"card_shape"`
	CardAnimation string `json:"card_animation" yaml:"card_animation"`
}

type SectionRequest struct {
	Name          string `json:"name" validate:"required"`
	ProductCount  int    `json:"product_count" validate:"gte=0"`
	Columns       int    `json:"columns" validate:"gte=1,lte=12"`
	CardShape     string `json:"card_shape"`
	CardAnimation string `json:"card_animation"`
}

type GridSettings struct {
	Columns       int    `json:"columns" yaml:"columns" validate:"gte=1,lte=12"`
	CardShape     string `json:"card_shape" yaml:"card_shape"`
	CardAnimation string `json:"card_animation" yaml:"card_animation"`
}

type DeliveryCompany struct {
	ID   int64   `json:"id" yaml:"id"`
	Name string  `json:"name" yaml:"name"`
	Fee  float64 `json:"fee" yaml:"fee"`
}

type Settings struct {
	StoreName         string            `json:"store_name" yaml:"store_name"`
	OfferDisplay      string            `json:"offer_display" yaml:"offer_display"`
	Grid              GridSettings      `json:"grid" yaml:"grid"`
	Sections          []Section         `json:"sections" yaml:"sections"`
	Campaigns         []Campaign        `json:"campaigns" yaml:"campaigns"`
	DeliveryCompanies []DeliveryCompany `json:"delivery_companies" yaml:"delivery_companies"`
}

// CartLine is one product+variant combination in the shopper's cart.
// Price is frozen at the time the line was first added.
type CartLine struct {
	CartID    string   `json:"cart_id"`
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Image     string   `json:"image"`
	Price     float64  `json:"price"`
	Quantity  int      `json:"quantity"`
	Variant   *Variant `json:"selected_variant,omitempty"`
}

type CartAddRequest struct {
	ProductID    int64  `json:"product_id" validate:"required"`
	VariantColor string `json:"variant_color"`
}

type CartSummary struct {
	Lines    []CartLine `json:"lines"`
	Count    int        `json:"count"`
	Subtotal float64    `json:"subtotal"`
}

type ShowcaseState struct {
	Open           bool    `json:"open"`
	Index          int     `json:"index"`
	Progress       float64 `json:"progress"`
	IntroVisible   bool    `json:"intro_visible"`
	DetailsVisible bool    `json:"details_visible"`
	Paused         bool    `json:"paused"`
}

type ShowcaseResponse struct {
	State           ShowcaseState `json:"state"`
	Product         *Product      `json:"product,omitempty"`
	SelectedVariant *Variant      `json:"selected_variant,omitempty"`
	Price           float64       `json:"price"`
	Discounted      bool          `json:"discounted"`
}

type CustomerInfo struct {
	Name            string `json:"name" validate:"required"`
	Phone           string `json:"phone" validate:"required,phone_dz"`
	Wilaya          string `json:"wilaya" validate:"required"`
	City            string `json:"city" validate:"required"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	DeliveryCompany int64  `json:"delivery_company" validate:"required"`
}

type CheckoutRequest struct {
	Customer      CustomerInfo `json:"customer" validate:"required"`
	PaymentMethod string       `json:"payment_method" validate:"omitempty,oneof=cod baridi visa"`
}

// Wilaya is a province and the shipping cost charged for delivering there.
type Wilaya struct {
	Name string  `json:"name" yaml:"name"`
	Cost float64 `json:"cost" yaml:"cost"`
}

type Order struct {
	ID              string       `json:"id"`
	PlacedAt        time.Time    `json:"placed_at"`
	Customer        CustomerInfo `json:"customer"`
	Lines           []CartLine   `json:"lines"`
	Subtotal        float64      `json:"subtotal"`
	Shipping        float64      `json:"shipping"`
	DeliveryFee     float64      `json:"delivery_fee"`
	Total           float64      `json:"total"`
	DeliveryCompany string       `json:"delivery_company"`
	PaymentMethod   string       `json:"payment_method"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

const (
	OfferDisplayBesideLogo = "beside-logo"
	OfferDisplayBesideCart = "beside-cart"
	OfferDisplayAboveHero  = "above-hero"
)

const (
	PaymentCashOnDelivery = "cod"
	PaymentBaridi         = "baridi"
	PaymentVisa           = "visa"
)

// GeneralCategory receives products whose category was deleted.
const GeneralCategory = "عام"

type SettingsUpdateRequest struct {
	StoreName    *string `json:"store_name,omitempty" validate:"omitempty,min=1"`
	OfferDisplay *string `json:"offer_display,omitempty" validate:"omitempty,oneof=beside-logo beside-cart above-hero"`
}

type DeliveryCompanyRequest struct {
	Name string  `json:"name" validate:"required"`
	Fee  float64 `json:"fee" validate:"gte=0"`
}

type ShowcaseVariantRequest struct {
	Color string `json:"color" validate:"required"`
}

// Actor is the authenticated caller attached to a request context.
type Actor struct {
	Subject string
	Role    string
}

const RoleAdmin = "admin"
