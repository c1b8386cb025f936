package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/xid"
)

const defaultOrderLimit = 100

// Checkout turns the session cart into an order. Shipping is looked up
// from the customer's wilaya and the delivery fee from the chosen delivery
// company; Total is the subtotal plus both. The cart is emptied once the
// order is stored.
func (s *Service) Checkout(ctx context.Context, sessionID string, req domain.CheckoutRequest) (*domain.Order, *Session, error) {
	sess := s.Session(ctx, sessionID)
	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Phone = strings.TrimSpace(req.Customer.Phone)
	if err := s.validateStruct(req); err != nil {
		return nil, sess, err
	}
	lines := sess.Cart.Lines()
	if len(lines) == 0 {
		return nil, sess, store.ErrEmptyCart
	}
	shipping, ok := s.ShippingCost(req.Customer.Wilaya)
	if !ok {
		return nil, sess, fmt.Errorf("%w: unknown wilaya %q", store.ErrInvalidInput, req.Customer.Wilaya)
	}
	company, ok := s.catalog.DeliveryCompany(req.Customer.DeliveryCompany)
	if !ok {
		return nil, sess, store.ErrInvalidInput
	}
	payment := req.PaymentMethod
	if payment == "" {
		payment = domain.PaymentCashOnDelivery
	}

	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal, _ := sum.Float64()
	total, _ := sum.Add(decimal.NewFromFloat(shipping)).
		Add(decimal.NewFromFloat(company.Fee)).
		Float64()

	order, err := s.repo.CreateOrder(ctx, domain.Order{
		ID:              xid.New("ord"),
		PlacedAt:        s.sched.Now(),
		Customer:        req.Customer,
		Lines:           lines,
		Subtotal:        subtotal,
		Shipping:        shipping,
		DeliveryFee:     company.Fee,
		Total:           total,
		DeliveryCompany: company.Name,
		PaymentMethod:   payment,
	})
	if err != nil {
		return nil, sess, err
	}

	sess.Cart.Clear()
	if err := s.carts.Delete(ctx, sess.ID); err != nil {
		s.log.WithError(err).WithField("session", sess.ID).Warn("delete cached cart failed")
	}
	s.metrics.ordersPlaced.Add(ctx, 1)
	s.log.WithField("order", order.ID).WithField("total", order.Total).Info("order placed")
	return order, sess, nil
}

// Wilayas returns the shipping table offered at checkout.
func (s *Service) Wilayas() []domain.Wilaya {
	return append([]domain.Wilaya(nil), s.wilayas...)
}

// ShippingCost reports the cost of delivering to the named wilaya.
func (s *Service) ShippingCost(wilaya string) (float64, bool) {
	cost, ok := s.shipping[wilayaKey(wilaya)]
	return cost, ok
}

func shippingTable(wilayas []domain.Wilaya) map[string]float64 {
	table := make(map[string]float64, len(wilayas))
	for _, w := range wilayas {
		table[wilayaKey(w.Name)] = w.Cost
	}
	return table
}

func wilayaKey(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func (s *Service) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultOrderLimit
	}
	return s.repo.ListOrders(ctx, limit)
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.DeleteOrder(ctx, id)
}
