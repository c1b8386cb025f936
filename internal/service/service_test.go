package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/cache"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/clock"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/countdown"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/derive"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/memory"
)

var start = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	repo  *memory.Store
	clock *clock.Manual
	carts *memoryCarts
	admin context.Context
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := memory.New()
	mc := clock.NewManual(start)
	carts := newMemoryCarts()
	svc, err := New(context.Background(), repo, carts, mc, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return &fixture{
		svc:   svc,
		repo:  repo,
		clock: mc,
		carts: carts,
		admin: WithActor(context.Background(), domain.Actor{Subject: "owner", Role: domain.RoleAdmin}),
	}
}

// memoryCarts is a CartCache that keeps snapshots in a map.
type memoryCarts struct {
	lines map[string][]domain.CartLine
}

func newMemoryCarts() *memoryCarts {
	return &memoryCarts{lines: make(map[string][]domain.CartLine)}
}

func (m *memoryCarts) Get(_ context.Context, id string) ([]domain.CartLine, bool, error) {
	lines, ok := m.lines[id]
	return lines, ok, nil
}

func (m *memoryCarts) Set(_ context.Context, id string, lines []domain.CartLine, _ time.Duration) error {
	m.lines[id] = lines
	return nil
}

func (m *memoryCarts) Delete(_ context.Context, id string) error {
	delete(m.lines, id)
	return nil
}

var _ cache.CartCache = (*memoryCarts)(nil)

func (f *fixture) startCampaign(t *testing.T, ids ...int64) domain.Campaign {
	t.Helper()
	_, err := f.svc.UpdateCampaign(f.admin, "waw", domain.CampaignUpdateRequest{ProductIDs: &ids})
	require.NoError(t, err)
	c, err := f.svc.ToggleCampaign(f.admin, "waw")
	require.NoError(t, err)
	require.True(t, c.Enabled)
	return c
}

func TestAdminOperationsRequireAdminActor(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, domain.ProductCreateRequest{Name: "x", Price: 1, Category: "c"})
	assert.ErrorIs(t, err, ErrAdminRequired)

	staff := WithActor(ctx, domain.Actor{Subject: "s", Role: "staff"})
	_, err = f.svc.ToggleCampaign(staff, "waw")
	assert.ErrorIs(t, err, ErrAdminRequired)

	_, err = f.svc.ListOrders(ctx, 0)
	assert.ErrorIs(t, err, ErrAdminRequired)
}

func TestCreateProductValidates(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.svc.CreateProduct(f.admin, domain.ProductCreateRequest{Name: "", Price: -1})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	p, err := f.svc.CreateProduct(f.admin, domain.ProductCreateRequest{Name: " حقيبة ", Price: 2500, Category: "حقائب"})
	require.NoError(t, err)
	assert.Equal(t, int64(21), p.ID)
	assert.Equal(t, "حقيبة", p.Name)
	layout := f.svc.Preview("حقائب")
	require.Len(t, layout, 1)
	require.Len(t, layout[0].Products, 1)
	assert.Equal(t, p.ID, layout[0].Products[0].ID)
}

func TestUpdateProductMergesPresentFields(t *testing.T) {
	f := newFixture(t, Config{})
	price := 9999.0

	p, err := f.svc.UpdateProduct(f.admin, 1, domain.ProductUpdateRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 9999.0, p.Price)
	assert.Equal(t, "ساعة ذكية فاخرة", p.Name)

	_, err = f.svc.UpdateProduct(f.admin, 404, domain.ProductUpdateRequest{Price: &price})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStorefrontReflectsRunningCampaign(t *testing.T) {
	f := newFixture(t, Config{})
	f.startCampaign(t, 1, 4)

	view, sess := f.svc.Storefront(context.Background(), "", "all")
	require.NotNil(t, view.ActiveCampaign)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "waw", view.ActiveCampaign.ID)
	assert.Equal(t, map[int64]float64{1: 9600, 4: 4800}, view.Prices)
	assert.Equal(t, "24:00:00", view.Countdown)
	assert.Equal(t, "ticking", view.CountdownState)
	assert.Len(t, view.OfferProducts, 2)
	assert.Len(t, view.PriceLabels, 20)

	offer, _ := f.svc.Storefront(context.Background(), sess.ID, domain.OfferTokenPrefix+"waw")
	assert.True(t, offer.OfferView)
	require.Len(t, offer.Layout, 1)
	assert.Equal(t, derive.LayoutDefaultGrid, offer.Layout[0].Kind)
	assert.Len(t, offer.Layout[0].Products, 2)
}

func TestCountdownExpiresCampaign(t *testing.T) {
	f := newFixture(t, Config{})
	f.startCampaign(t, 1)

	f.clock.Set(start.Add(24 * time.Hour))
	f.clock.Advance(2 * time.Second)

	display, state := f.svc.Countdown()
	assert.Equal(t, countdown.OfferEnded, display)
	assert.Equal(t, countdown.Idle, state)

	c, ok := findCampaign(f.svc.ListCampaigns(), "waw")
	require.True(t, ok)
	assert.False(t, c.Enabled)
	assert.Nil(t, c.OfferEndDate)

	view, _ := f.svc.Storefront(context.Background(), "", "")
	assert.Nil(t, view.ActiveCampaign)
	assert.Empty(t, view.Prices)
}

func TestStorefrontDropsEndedCampaignBeforeTick(t *testing.T) {
	f := newFixture(t, Config{CountdownPeriod: time.Hour})
	f.startCampaign(t, 1)

	f.clock.Set(start.Add(25 * time.Hour))
	view, _ := f.svc.Storefront(context.Background(), "", "")
	assert.Nil(t, view.ActiveCampaign)
	assert.Empty(t, view.Prices)
}

func TestAddToCartUsesDiscountAndPersists(t *testing.T) {
	f := newFixture(t, Config{})
	f.startCampaign(t, 1)
	ctx := context.Background()

	summary, sess, err := f.svc.AddToCart(ctx, "", domain.CartAddRequest{ProductID: 1})
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "1-#000000", summary.Lines[0].CartID)
	assert.Equal(t, 9600.0, summary.Lines[0].Price)

	summary, _, err = f.svc.AddToCart(ctx, sess.ID, domain.CartAddRequest{ProductID: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 9600.0+45000, summary.Subtotal)
	assert.Len(t, f.carts.lines[sess.ID], 2)

	_, _, err = f.svc.AddToCart(ctx, sess.ID, domain.CartAddRequest{ProductID: 1, VariantColor: "#123456"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
	_, _, err = f.svc.AddToCart(ctx, sess.ID, domain.CartAddRequest{ProductID: 404})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionRestoresCartFromCache(t *testing.T) {
	f := newFixture(t, Config{})
	f.carts.lines["sess_saved"] = []domain.CartLine{{CartID: "3", ProductID: 3, Name: "cam", Price: 45000, Quantity: 2}}

	summary, sess := f.svc.Cart(context.Background(), "sess_saved")
	assert.Equal(t, "sess_saved", sess.ID)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 90000.0, summary.Subtotal)
}

func TestUnknownSessionIDIsReplaced(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	for _, chosen := range []string{"attacker-chosen", "sess_unknown"} {
		_, sess, err := f.svc.AddToCart(ctx, chosen, domain.CartAddRequest{ProductID: 3})
		require.NoError(t, err)
		assert.NotEqual(t, chosen, sess.ID)
		assert.True(t, strings.HasPrefix(sess.ID, "sess_"), sess.ID)

		_, cached := f.carts.lines[chosen]
		assert.False(t, cached, "no cart is stored under a client chosen key")
		assert.Contains(t, f.carts.lines, sess.ID)
	}

	_, again := f.svc.Cart(ctx, "attacker-chosen")
	assert.NotEqual(t, "attacker-chosen", again.ID)
}

func TestRemoveAndClearCart(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	_, sess, err := f.svc.AddToCart(ctx, "", domain.CartAddRequest{ProductID: 3})
	require.NoError(t, err)

	_, _, err = f.svc.RemoveFromCart(ctx, sess.ID, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	summary, _, err := f.svc.RemoveFromCart(ctx, sess.ID, "3")
	require.NoError(t, err)
	assert.Zero(t, summary.Count)

	_, _, err = f.svc.AddToCart(ctx, sess.ID, domain.CartAddRequest{ProductID: 3})
	require.NoError(t, err)
	summary, _ = f.svc.ClearCart(ctx, sess.ID)
	assert.Zero(t, summary.Count)
	_, cached := f.carts.lines[sess.ID]
	assert.False(t, cached)
}

func TestCheckout(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	customer := domain.CustomerInfo{
		Name:            "أمين",
		Phone:           "0551234567",
		Wilaya:          "الجزائر",
		City:            "باب الزوار",
		DeliveryCompany: 1,
	}

	_, sess, err := f.svc.Checkout(ctx, "", domain.CheckoutRequest{Customer: customer})
	assert.ErrorIs(t, err, store.ErrEmptyCart)

	_, _, err = f.svc.AddToCart(ctx, sess.ID, domain.CartAddRequest{ProductID: 3})
	require.NoError(t, err)

	bad := customer
	bad.Phone = "12345"
	_, _, err = f.svc.Checkout(ctx, sess.ID, domain.CheckoutRequest{Customer: bad})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	order, _, err := f.svc.Checkout(ctx, sess.ID, domain.CheckoutRequest{Customer: customer})
	require.NoError(t, err)
	assert.Equal(t, 45000.0, order.Subtotal)
	assert.Equal(t, 250.0, order.Shipping)
	assert.Equal(t, 600.0, order.DeliveryFee)
	assert.Equal(t, 45850.0, order.Total)
	assert.Equal(t, domain.PaymentCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, "ياليدين إكسبريس", order.DeliveryCompany)
	assert.Equal(t, start, order.PlacedAt)

	summary, _ := f.svc.Cart(ctx, sess.ID)
	assert.Zero(t, summary.Count)

	orders, err := f.svc.ListOrders(f.admin, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NoError(t, f.svc.DeleteOrder(f.admin, order.ID))
	assert.ErrorIs(t, f.svc.DeleteOrder(f.admin, order.ID), store.ErrNotFound)
}

func TestCheckoutRejectsUnknownDeliveryCompany(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	_, sess, err := f.svc.AddToCart(ctx, "", domain.CartAddRequest{ProductID: 3})
	require.NoError(t, err)

	_, _, err = f.svc.Checkout(ctx, sess.ID, domain.CheckoutRequest{Customer: domain.CustomerInfo{
		Name: "a", Phone: "0661234567", Wilaya: "وهران", City: "c", DeliveryCompany: 99,
	}})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestCheckoutChargesWilayaShipping(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	_, sess, err := f.svc.AddToCart(ctx, "", domain.CartAddRequest{ProductID: 3})
	require.NoError(t, err)

	customer := domain.CustomerInfo{
		Name: "سارة", Phone: "0771234567", Wilaya: "تندوف", City: "تندوف", DeliveryCompany: 2,
	}
	order, _, err := f.svc.Checkout(ctx, sess.ID, domain.CheckoutRequest{Customer: customer})
	require.NoError(t, err)
	assert.Equal(t, 850.0, order.Shipping)
	assert.Equal(t, 700.0, order.DeliveryFee)
	assert.Equal(t, 45000.0+850+700, order.Total)
}

func TestCheckoutRejectsUnknownWilaya(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	_, sess, err := f.svc.AddToCart(ctx, "", domain.CartAddRequest{ProductID: 3})
	require.NoError(t, err)

	_, _, err = f.svc.Checkout(ctx, sess.ID, domain.CheckoutRequest{Customer: domain.CustomerInfo{
		Name: "a", Phone: "0661234567", Wilaya: "Atlantis", City: "c", DeliveryCompany: 1,
	}})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	summary, _ := f.svc.Cart(ctx, sess.ID)
	assert.Equal(t, 1, summary.Count, "a rejected checkout keeps the cart")
}

func TestShippingTable(t *testing.T) {
	f := newFixture(t, Config{})
	assert.Len(t, f.svc.Wilayas(), 48)

	cost, ok := f.svc.ShippingCost("  إليزي ")
	assert.True(t, ok)
	assert.Equal(t, 850.0, cost)

	custom := newFixture(t, Config{Wilayas: []domain.Wilaya{{Name: "Test", Cost: 10}}})
	_, ok = custom.svc.ShippingCost("الجزائر")
	assert.False(t, ok)
	cost, ok = custom.svc.ShippingCost("Test")
	assert.True(t, ok)
	assert.Equal(t, 10.0, cost)
}

func TestShowcaseActions(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	resp, sess, err := f.svc.ShowcaseAction(ctx, "", ShowcaseOpen, "")
	require.NoError(t, err)
	assert.True(t, resp.State.Open)
	require.NotNil(t, resp.Product)
	assert.Equal(t, int64(1), resp.Product.ID)

	f.clock.Advance(showcaseDwell())
	resp, _ = f.svc.Showcase(ctx, sess.ID)
	assert.Equal(t, 1, resp.State.Index)

	resp, _, err = f.svc.ShowcaseAction(ctx, sess.ID, ShowcaseVariant, "#0000FF")
	require.NoError(t, err)
	require.NotNil(t, resp.SelectedVariant)
	assert.Equal(t, "#0000FF", resp.SelectedVariant.Color)

	_, _, err = f.svc.ShowcaseAction(ctx, sess.ID, ShowcaseTap, "")
	require.NoError(t, err)
	_, _, err = f.svc.ShowcaseAction(ctx, sess.ID, ShowcaseAddToCart, "")
	require.NoError(t, err)
	summary, _ := f.svc.Cart(ctx, sess.ID)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "2-#0000FF", summary.Lines[0].CartID)

	_, _, err = f.svc.ShowcaseAction(ctx, sess.ID, "spin", "")
	assert.ErrorIs(t, err, ErrUnknownAction)

	resp, _, err = f.svc.ShowcaseAction(ctx, sess.ID, ShowcaseClose, "")
	require.NoError(t, err)
	assert.False(t, resp.State.Open)
	assert.Nil(t, resp.Product)
}

func TestShowcasePauseAndResumeActions(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	_, sess, err := f.svc.ShowcaseAction(ctx, "", ShowcaseOpen, "")
	require.NoError(t, err)
	resp, _, err := f.svc.ShowcaseAction(ctx, sess.ID, ShowcasePause, "")
	require.NoError(t, err)
	assert.True(t, resp.State.Paused)

	f.clock.Advance(2 * showcaseDwell())
	resp, _ = f.svc.Showcase(ctx, sess.ID)
	assert.Equal(t, 0, resp.State.Index)

	resp, _, err = f.svc.ShowcaseAction(ctx, sess.ID, ShowcaseResume, "")
	require.NoError(t, err)
	assert.False(t, resp.State.Paused)
	f.clock.Advance(showcaseDwell())
	resp, _ = f.svc.Showcase(ctx, sess.ID)
	assert.Equal(t, 1, resp.State.Index)
}

func showcaseDwell() time.Duration {
	return 6 * time.Second
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	f := newFixture(t, Config{CartTTL: 10 * time.Minute})
	ctx := context.Background()
	_, sess := f.svc.Cart(ctx, "")
	_, _, err := f.svc.ShowcaseAction(ctx, sess.ID, ShowcaseOpen, "")
	require.NoError(t, err)
	require.Equal(t, 1, f.svc.SessionCount())

	f.clock.Advance(11 * time.Minute)
	assert.Zero(t, f.svc.SessionCount())
	assert.False(t, sess.Player.State().Open)
}

func TestSettingsAndDeliveryCompanies(t *testing.T) {
	f := newFixture(t, Config{})
	name := "متجر وو"
	display := domain.OfferDisplayAboveHero

	settings, err := f.svc.UpdateSettings(f.admin, domain.SettingsUpdateRequest{StoreName: &name, OfferDisplay: &display})
	require.NoError(t, err)
	assert.Equal(t, name, settings.StoreName)
	assert.Equal(t, display, settings.OfferDisplay)

	bogus := "sideways"
	_, err = f.svc.UpdateSettings(f.admin, domain.SettingsUpdateRequest{OfferDisplay: &bogus})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	dc, err := f.svc.CreateDeliveryCompany(f.admin, domain.DeliveryCompanyRequest{Name: "زر", Fee: 450})
	require.NoError(t, err)
	assert.Equal(t, int64(3), dc.ID)
	assert.Len(t, f.svc.DeliveryCompanies(), 3)
	require.NoError(t, f.svc.DeleteDeliveryCompany(f.admin, dc.ID))
	assert.ErrorIs(t, f.svc.DeleteDeliveryCompany(f.admin, dc.ID), store.ErrNotFound)
}

func TestSectionsShapeLayout(t *testing.T) {
	f := newFixture(t, Config{})
	sec, err := f.svc.CreateSection(f.admin, domain.SectionRequest{Name: "الأكثر مبيعا", ProductCount: 3, Columns: 3})
	require.NoError(t, err)

	layout := f.svc.Preview("all")
	require.Len(t, layout, 2)
	assert.Equal(t, sec.ID, layout[0].Section.ID)
	assert.Len(t, layout[0].Products, 3)
	assert.Len(t, layout[1].Products, 17)

	_, err = f.svc.UpdateGrid(f.admin, domain.GridSettings{Columns: 0})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
	grid, err := f.svc.UpdateGrid(f.admin, domain.GridSettings{Columns: 2})
	require.NoError(t, err)
	assert.Equal(t, "magnetic-tilt", grid.CardAnimation)
}

func TestCategoryRenameAndDelete(t *testing.T) {
	f := newFixture(t, Config{})

	n, err := f.svc.RenameCategory(f.admin, domain.CategoryRenameRequest{From: "أحذية", To: "نعال"})
	require.NoError(t, err)
	assert.Positive(t, n)

	moved, err := f.svc.DeleteCategory(f.admin, domain.CategoryDeleteRequest{Name: "نعال"})
	require.NoError(t, err)
	assert.Equal(t, n, moved)
	assert.Len(t, f.svc.Preview(domain.GeneralCategory)[0].Products, n)

	_, err = f.svc.DeleteCategory(f.admin, domain.CategoryDeleteRequest{Name: "نعال"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPriceLabelUsesLocaleGrouping(t *testing.T) {
	f := newFixture(t, Config{Locale: "en"})
	assert.Equal(t, "12,000 DA", f.svc.PriceLabel(12000))
}

func TestParseFilterTokenNormalizes(t *testing.T) {
	assert.Equal(t, domain.CategoryFilter("\u00e9"), ParseFilterToken("e\u0301"))
	assert.Equal(t, domain.AllFilter(), ParseFilterToken(" all "))
}
