package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/seed"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/xid"
)

type Store struct {
	mu         sync.RWMutex
	products   []domain.Product
	hasCatalog bool
	settings   *domain.Settings
	ordersByID map[string]domain.Order
}

// New returns an empty store. Loads report store.ErrNotFound until the
// first save.
func New() *Store {
	return &Store{ordersByID: make(map[string]domain.Order)}
}

// NewSeeded returns a store preloaded with the built-in catalog.
func NewSeeded() *Store {
	return NewFromCatalog(seed.Default())
}

func NewFromCatalog(cat seed.Catalog) *Store {
	s := New()
	s.products = domain.CloneProducts(cat.Products)
	s.hasCatalog = true
	settings := domain.CloneSettings(cat.Settings)
	s.settings = &settings
	return s
}

func (s *Store) LoadProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasCatalog {
		return nil, store.ErrNotFound
	}
	return domain.CloneProducts(s.products), nil
}

func (s *Store) SaveProducts(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = domain.CloneProducts(products)
	s.hasCatalog = true
	return nil
}

func (s *Store) LoadSettings(_ context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, store.ErrNotFound
	}
	result := domain.CloneSettings(*s.settings)
	return &result, nil
}

func (s *Store) SaveSettings(_ context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := domain.CloneSettings(settings)
	s.settings = &copied
	return nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(order.Lines) == 0 {
		return nil, store.ErrEmptyCart
	}
	if strings.TrimSpace(order.ID) == "" {
		order.ID = xid.New("ord")
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = time.Now().UTC()
	}
	if _, exists := s.ordersByID[order.ID]; exists {
		return nil, store.ErrInvalidInput
	}
	order.Lines = slices.Clone(order.Lines)
	s.ordersByID[order.ID] = order
	result := order
	return &result, nil
}

func (s *Store) ListOrders(_ context.Context, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0, len(s.ordersByID))
	for _, order := range s.ordersByID {
		order.Lines = slices.Clone(order.Lines)
		result = append(result, order)
	}
	slices.SortFunc(result, func(a, b domain.Order) int {
		if a.PlacedAt.Equal(b.PlacedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.PlacedAt.After(b.PlacedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ordersByID[id]; !exists {
		return store.ErrNotFound
	}
	delete(s.ordersByID, id)
	return nil
}
