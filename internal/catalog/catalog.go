// Package catalog owns the mutable storefront sources: products and the
// settings document holding campaigns, sections, grid style and delivery
// companies. Every mutation persists through store.Repository and then
// notifies subscribers once the write lock is released.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/clock"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/seed"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/xid"
)

type Store struct {
	mu       sync.RWMutex
	repo     store.Repository
	clock    clock.Scheduler
	log      logrus.FieldLogger
	products []domain.Product
	settings domain.Settings

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

type Option func(*Store)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// New loads products and settings from repo. Records that were never saved
// fall back to the built-in catalog, which is written back immediately.
func New(ctx context.Context, repo store.Repository, sched clock.Scheduler, opts ...Option) (*Store, error) {
	s := &Store{
		repo:  repo,
		clock: sched,
		log:   logrus.StandardLogger().WithField("component", "catalog"),
		subs:  make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}

	products, err := repo.LoadProducts(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound) || (err == nil && len(products) == 0):
		s.products = seed.DefaultProducts()
		if err := repo.SaveProducts(ctx, s.products); err != nil {
			s.log.WithError(err).Warn("save default products failed")
		}
	case err != nil:
		return nil, fmt.Errorf("load products: %w", err)
	default:
		s.products = seed.NormalizeProducts(products)
	}

	settings, err := repo.LoadSettings(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.settings = seed.DefaultSettings()
		if err := repo.SaveSettings(ctx, s.settings); err != nil {
			s.log.WithError(err).Warn("save default settings failed")
		}
	case err != nil:
		return nil, fmt.Errorf("load settings: %w", err)
	default:
		s.settings = seed.NormalizeSettings(*settings)
	}
	return s, nil
}

// Subscribe registers fn to run after every committed mutation. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store) Now() time.Time {
	return s.clock.Now()
}

func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneProducts(s.products)
}

func (s *Store) Product(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return domain.CloneProducts([]domain.Product{p})[0], true
		}
	}
	return domain.Product{}, false
}

func (s *Store) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneSettings(s.settings)
}

func (s *Store) Campaigns() []domain.Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneSettings(s.settings).Campaigns
}

func (s *Store) Sections() []domain.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.settings.Sections)
}

// mutateProducts applies fn under the write lock. A nil error from fn
// commits the new slice, persists it and notifies subscribers.
func (s *Store) mutateProducts(ctx context.Context, fn func(products []domain.Product) ([]domain.Product, error)) error {
	s.mu.Lock()
	next, err := fn(domain.CloneProducts(s.products))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.products = next
	if err := s.repo.SaveProducts(ctx, domain.CloneProducts(next)); err != nil {
		s.log.WithError(err).Warn("persist products failed")
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) mutateSettings(ctx context.Context, fn func(settings *domain.Settings) error) error {
	s.mu.Lock()
	next := domain.CloneSettings(s.settings)
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.settings = next
	if err := s.repo.SaveSettings(ctx, domain.CloneSettings(next)); err != nil {
		s.log.WithError(err).Warn("persist settings failed")
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if strings.TrimSpace(p.Name) == "" || p.Price < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}
	var created domain.Product
	err := s.mutateProducts(ctx, func(products []domain.Product) ([]domain.Product, error) {
		p.ID = nextProductID(products)
		if p.Variants == nil {
			p.Variants = []domain.Variant{}
		}
		created = p
		return append(products, p), nil
	})
	return created, err
}

// UpdateProduct replaces the product with the same ID.
func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) error {
	if strings.TrimSpace(p.Name) == "" || p.Price < 0 {
		return store.ErrInvalidInput
	}
	return s.mutateProducts(ctx, func(products []domain.Product) ([]domain.Product, error) {
		for i := range products {
			if products[i].ID == p.ID {
				if p.Variants == nil {
					p.Variants = []domain.Variant{}
				}
				products[i] = p
				return products, nil
			}
		}
		return nil, store.ErrNotFound
	})
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.mutateProducts(ctx, func(products []domain.Product) ([]domain.Product, error) {
		idx := slices.IndexFunc(products, func(p domain.Product) bool { return p.ID == id })
		if idx < 0 {
			return nil, store.ErrNotFound
		}
		return slices.Delete(products, idx, idx+1), nil
	})
}

// UpdateCategory renames a category on every product carrying it and
// returns how many products changed.
func (s *Store) UpdateCategory(ctx context.Context, from, to string) (int, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return 0, store.ErrInvalidInput
	}
	return s.recategorize(ctx, from, to)
}

// DeleteCategory moves the category's products to domain.GeneralCategory.
func (s *Store) DeleteCategory(ctx context.Context, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, store.ErrInvalidInput
	}
	return s.recategorize(ctx, name, domain.GeneralCategory)
}

func (s *Store) recategorize(ctx context.Context, from, to string) (int, error) {
	changed := 0
	err := s.mutateProducts(ctx, func(products []domain.Product) ([]domain.Product, error) {
		for i := range products {
			if products[i].Category == from {
				products[i].Category = to
				changed++
			}
		}
		if changed == 0 {
			return nil, store.ErrNotFound
		}
		return products, nil
	})
	return changed, err
}

func (s *Store) ResetToDefaults(ctx context.Context) error {
	return s.mutateProducts(ctx, func(_ []domain.Product) ([]domain.Product, error) {
		return seed.DefaultProducts(), nil
	})
}

// AddCampaign appends a disabled campaign with a fresh bot_ id.
func (s *Store) AddCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	if strings.TrimSpace(c.Name) == "" || c.DiscountPercentage < 0 || c.DiscountPercentage > 100 {
		return domain.Campaign{}, store.ErrInvalidInput
	}
	c.ID = xid.New("bot")
	c.Enabled = false
	c.OfferEndDate = nil
	if c.ProductIDs == nil {
		c.ProductIDs = []int64{}
	}
	err := s.mutateSettings(ctx, func(settings *domain.Settings) error {
		settings.Campaigns = append(settings.Campaigns, c)
		return nil
	})
	return c, err
}

// UpdateCampaign replaces the editable fields of an existing campaign. The
// running state (Enabled, OfferEndDate) is left untouched.
func (s *Store) UpdateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	if c.DiscountPercentage < 0 || c.DiscountPercentage > 100 {
		return domain.Campaign{}, store.ErrInvalidInput
	}
	var updated domain.Campaign
	err := s.mutateSettings(ctx, func(settings *domain.Settings) error {
		existing := findCampaign(settings.Campaigns, c.ID)
		if existing == nil {
			return store.ErrNotFound
		}
		existing.Name = c.Name
		existing.DiscountPercentage = c.DiscountPercentage
		existing.DurationHours = c.DurationHours
		existing.ProductIDs = slices.Clone(c.ProductIDs)
		if existing.ProductIDs == nil {
			existing.ProductIDs = []int64{}
		}
		updated = *existing
		return nil
	})
	return updated, err
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	return s.mutateSettings(ctx, func(settings *domain.Settings) error {
		idx := slices.IndexFunc(settings.Campaigns, func(c domain.Campaign) bool { return c.ID == id })
		if idx < 0 {
			return store.ErrNotFound
		}
		settings.Campaigns = slices.Delete(settings.Campaigns, idx, idx+1)
		return nil
	})
}

// ToggleCampaign flips Enabled. Enabling starts a run ending DurationHours
// from now; disabling clears the end date.
func (s *Store) ToggleCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	var toggled domain.Campaign
	err := s.mutateSettings(ctx, func(settings *domain.Settings) error {
		c := findCampaign(settings.Campaigns, id)
		if c == nil {
			return store.ErrNotFound
		}
		if c.Enabled {
			c.Enabled = false
			c.OfferEndDate = nil
		} else {
			end := s.clock.Now().Add(time.Duration(c.DurationHours * float64(time.Hour)))
			c.Enabled = true
			c.OfferEndDate = &end
		}
		toggled = *c
		return nil
	})
	return toggled, err
}

// ExpireCampaign disables a campaign whose run has ended and reports
// whether anything changed. Unknown ids, disabled campaigns and runs that
// were restarted with a future end date are left alone.
func (s *Store) ExpireCampaign(ctx context.Context, id string) bool {
	expired := false
	_ = s.mutateSettings(ctx, func(settings *domain.Settings) error {
		c := findCampaign(settings.Campaigns, id)
		if c == nil || (!c.Enabled && c.OfferEndDate == nil) {
			return store.ErrNotFound
		}
		if c.OfferEndDate != nil && c.OfferEndDate.After(s.clock.Now()) {
			return store.ErrInvalidInput
		}
		c.Enabled = false
		c.OfferEndDate = nil
		expired = true
		return nil
	})
	if expired {
		s.log.WithField("campaign", id).Info("campaign expired")
	}
	return expired
}

func (s *Store) AddSection(ctx context.Context, sec domain.Section) (domain.Section, error) {
	if err := validSection(sec); err != nil {
		return domain.Section{}, err
	}
	err := s.mutateSettings(ctx, func(settings *domain.Settings) error {
		var maxID int64
		for _, existing := range settings.Sections {
			maxID = max(maxID, existing.ID)
		}
		sec.ID = maxID + 1
		settings.Sections = append(settings.Sections, sec)
		return nil
	})
	return sec, err
}

func (s *Store) UpdateSection(ctx context.Context, sec domain.Section) error {
	if err := validSection(sec); err != nil {
		return err
	}
	return s.mutateSettings(ctx, func(settings *domain.Settings) error {
		for i := range settings.Sections {
			if settings.Sections[i].ID == sec.ID {
				settings.Sections[i] = sec
				return nil
			}
		}
		return store.ErrNotFound
	})
}

func (s *Store) DeleteSection(ctx context.Context, id int64) error {
	return s.mutateSettings(ctx, func(settings *domain.Settings) error {
		idx := slices.IndexFunc(settings.Sections, func(sec domain.Section) bool { return sec.ID == id })
		if idx < 0 {
			return store.ErrNotFound
		}
		settings.Sections = slices.Delete(settings.Sections, idx, idx+1)
		return nil
	})
}

func (s *Store) UpdateGrid(ctx context.Context, grid domain.GridSettings) error {
	if grid.Columns < 1 {
		return store.ErrInvalidInput
	}
	return s.mutateSettings(ctx, func(settings *domain.Settings) error {
		if grid.CardShape == "" {
			grid.CardShape = settings.Grid.CardShape
		}
		if grid.CardAnimation == "" {
			grid.CardAnimation = settings.Grid.CardAnimation
		}
		settings.Grid = grid
		return nil
	})
}

func (s *Store) UpdateStoreName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.ErrInvalidInput
	}
	return s.mutateSettings(ctx, func(settings *domain.Settings) error {
		settings.StoreName = name
		return nil
	})
}

func (s *Store) SetOfferDisplay(ctx context.Context, placement string) error {
	switch placement {
	case domain.OfferDisplayBesideLogo, domain.OfferDisplayBesideCart, domain.OfferDisplayAboveHero:
	default:
		return store.ErrInvalidInput
	}
	return s.mutateSettings(ctx, func(settings *domain.Settings) error {
		settings.OfferDisplay = placement
		return nil
	})
}

func (s *Store) DeliveryCompany(id int64) (domain.DeliveryCompany, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, dc := range s.settings.DeliveryCompanies {
		if dc.ID == id {
			return dc, true
		}
	}
	return domain.DeliveryCompany{}, false
}

func (s *Store) AddDeliveryCompany(ctx context.Context, dc domain.DeliveryCompany) (domain.DeliveryCompany, error) {
	if strings.TrimSpace(dc.Name) == "" || dc.Fee < 0 {
		return domain.DeliveryCompany{}, store.ErrInvalidInput
	}
	err := s.mutateSettings(ctx, func(settings *domain.Settings) error {
		var maxID int64
		for _, existing := range settings.DeliveryCompanies {
			maxID = max(maxID, existing.ID)
		}
		dc.ID = maxID + 1
		settings.DeliveryCompanies = append(settings.DeliveryCompanies, dc)
		return nil
	})
	return dc, err
}

func (s *Store) UpdateDeliveryCompany(ctx context.Context, dc domain.DeliveryCompany) error {
	if strings.TrimSpace(dc.Name) == "" || dc.Fee < 0 {
		return store.ErrInvalidInput
	}
	return s.mutateSettings(ctx, func(settings *domain.Settings) error {
		for i := range settings.DeliveryCompanies {
			if settings.DeliveryCompanies[i].ID == dc.ID {
				settings.DeliveryCompanies[i] = dc
				return nil
			}
		}
		return store.ErrNotFound
	})
}

func (s *Store) DeleteDeliveryCompany(ctx context.Context, id int64) error {
	return s.mutateSettings(ctx, func(settings *domain.Settings) error {
		idx := slices.IndexFunc(settings.DeliveryCompanies, func(dc domain.DeliveryCompany) bool { return dc.ID == id })
		if idx < 0 {
			return store.ErrNotFound
		}
		settings.DeliveryCompanies = slices.Delete(settings.DeliveryCompanies, idx, idx+1)
		return nil
	})
}

func validSection(sec domain.Section) error {
	if strings.TrimSpace(sec.Name) == "" || sec.ProductCount < 0 || sec.Columns < 1 {
		return store.ErrInvalidInput
	}
	return nil
}

func findCampaign(campaigns []domain.Campaign, id string) *domain.Campaign {
	for i := range campaigns {
		if campaigns[i].ID == id {
			return &campaigns[i]
		}
	}
	return nil
}

func nextProductID(products []domain.Product) int64 {
	var maxID int64
	for _, p := range products {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}
