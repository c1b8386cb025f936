package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
)

// ErrUnknownAction is returned for a showcase action the player does not know.
var ErrUnknownAction = errors.New("unknown showcase action")

const (
	ShowcaseOpen      = "open"
	ShowcaseClose     = "close"
	ShowcaseNext      = "next"
	ShowcasePrev      = "prev"
	ShowcaseTap       = "tap"
	ShowcasePause     = "pause"
	ShowcaseResume    = "resume"
	ShowcaseAddToCart = "add-to-cart"
	ShowcaseVariant   = "variant"
)

func (s *Service) Cart(ctx context.Context, sessionID string) (domain.CartSummary, *Session) {
	sess := s.Session(ctx, sessionID)
	return sess.Cart.Summary(), sess
}

// AddToCart adds one unit of a product at its current discounted price.
// An empty color picks the product's first variant when it has any.
func (s *Service) AddToCart(ctx context.Context, sessionID string, req domain.CartAddRequest) (domain.CartSummary, *Session, error) {
	sess := s.Session(ctx, sessionID)
	if err := s.validateStruct(req); err != nil {
		return domain.CartSummary{}, sess, err
	}
	snap := s.snapshot()
	var product *domain.Product
	for i := range snap.Products {
		if snap.Products[i].ID == req.ProductID {
			product = &snap.Products[i]
			break
		}
	}
	if product == nil {
		return domain.CartSummary{}, sess, store.ErrNotFound
	}

	variant, err := pickVariant(*product, req.VariantColor)
	if err != nil {
		return domain.CartSummary{}, sess, err
	}
	price, _ := snap.Price(*product)
	sess.Cart.Add(*product, variant, price)
	s.metrics.cartAdds.Add(ctx, 1)
	s.persistCart(ctx, sess)
	return sess.Cart.Summary(), sess, nil
}

func pickVariant(p domain.Product, color string) (*domain.Variant, error) {
	if len(p.Variants) == 0 {
		if color != "" {
			return nil, fmt.Errorf("%w: product has no variants", store.ErrInvalidInput)
		}
		return nil, nil
	}
	if color == "" {
		v := p.Variants[0]
		return &v, nil
	}
	for _, v := range p.Variants {
		if v.Color == color {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown variant %q", store.ErrInvalidInput, color)
}

func (s *Service) RemoveFromCart(ctx context.Context, sessionID, cartID string) (domain.CartSummary, *Session, error) {
	sess := s.Session(ctx, sessionID)
	if !sess.Cart.Remove(cartID) {
		return domain.CartSummary{}, sess, store.ErrNotFound
	}
	s.persistCart(ctx, sess)
	return sess.Cart.Summary(), sess, nil
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) (domain.CartSummary, *Session) {
	sess := s.Session(ctx, sessionID)
	sess.Cart.Clear()
	if err := s.carts.Delete(ctx, sess.ID); err != nil {
		s.log.WithError(err).WithField("session", sess.ID).Warn("delete cached cart failed")
	}
	return sess.Cart.Summary(), sess
}

func (s *Service) Showcase(ctx context.Context, sessionID string) (domain.ShowcaseResponse, *Session) {
	sess := s.Session(ctx, sessionID)
	return s.showcaseResponse(sess), sess
}

// ShowcaseAction drives the session's player. color is only read by the
// variant action.
func (s *Service) ShowcaseAction(ctx context.Context, sessionID, action, color string) (domain.ShowcaseResponse, *Session, error) {
	sess := s.Session(ctx, sessionID)
	p := sess.Player

	switch action {
	case ShowcaseOpen:
		if !p.Open() {
			return domain.ShowcaseResponse{}, sess, store.ErrNotFound
		}
	case ShowcaseClose:
		p.Close()
	case ShowcaseNext:
		p.Next()
	case ShowcasePrev:
		p.Prev()
	case ShowcaseTap:
		p.Tap()
	case ShowcasePause:
		p.Pause()
	case ShowcaseResume:
		p.Resume()
	case ShowcaseVariant:
		if color == "" {
			return domain.ShowcaseResponse{}, sess, fmt.Errorf("%w: color is required", store.ErrInvalidInput)
		}
		if !p.SelectVariant(color) {
			return domain.ShowcaseResponse{}, sess, fmt.Errorf("%w: unknown variant %q", store.ErrInvalidInput, color)
		}
	case ShowcaseAddToCart:
		if _, ok := p.AddCurrentToCart(s.snapshot().Prices, sess.Cart); !ok {
			return domain.ShowcaseResponse{}, sess, store.ErrNotFound
		}
		s.metrics.cartAdds.Add(ctx, 1)
		s.persistCart(ctx, sess)
	default:
		return domain.ShowcaseResponse{}, sess, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return s.showcaseResponse(sess), sess, nil
}

func (s *Service) showcaseResponse(sess *Session) domain.ShowcaseResponse {
	resp := domain.ShowcaseResponse{State: sess.Player.State()}
	if !resp.State.Open {
		return resp
	}
	product, variant, ok := sess.Player.Current()
	if !ok {
		return resp
	}
	resp.Price, resp.Discounted = s.snapshot().Price(product)
	resp.Product = &product
	resp.SelectedVariant = variant
	return resp
}
