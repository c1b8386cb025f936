package store

import (
	"context"
	"errors"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyCart    = errors.New("cart is empty")
)

// Persisted record keys. Each adapter stores one opaque JSON document per key.
const (
	KeyProducts = "products"
	KeySettings = "settings"
)

// Repository is the persistence boundary. Load* return ErrNotFound when no
// record has been saved yet so callers can fall back to defaults.
type Repository interface {
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	SaveProducts(ctx context.Context, products []domain.Product) error
	LoadSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	ListOrders(ctx context.Context, limit int) ([]domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}
