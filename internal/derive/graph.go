package derive

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

// Source is the read side of the catalog the graph derives from.
type Source interface {
	Products() []domain.Product
	Settings() domain.Settings
	Subscribe(fn func()) func()
	Now() time.Time
}

// Snapshot is one consistent evaluation of the derived values. It is
// immutable once published.
type Snapshot struct {
	Revision      uint64
	At            time.Time
	Products      []domain.Product
	Settings      domain.Settings
	Active        *domain.Campaign
	Prices        map[int64]float64
	Categories    []string
	OfferProducts []domain.Product
}

// Price returns the discounted price when one applies, else the catalog price.
func (s *Snapshot) Price(p domain.Product) (float64, bool) {
	if price, ok := s.Prices[p.ID]; ok {
		return price, true
	}
	return p.Price, false
}

func (s *Snapshot) Filtered(filter domain.Filter) []domain.Product {
	return FilterProducts(s.Products, s.Settings.Campaigns, filter)
}

func (s *Snapshot) Layout(filter domain.Filter) []LayoutItem {
	return Layout(s.Filtered(filter), s.Settings.Sections, s.Settings.Grid)
}

func evaluate(rev uint64, products []domain.Product, settings domain.Settings, now time.Time) *Snapshot {
	active := ActiveCampaign(settings.Campaigns, now)
	return &Snapshot{
		Revision:      rev,
		At:            now,
		Products:      products,
		Settings:      settings,
		Active:        active,
		Prices:        DiscountedPrices(active, products),
		Categories:    Categories(products),
		OfferProducts: OfferProducts(active, products),
	}
}

// Graph keeps the latest Snapshot for a Source. It recomputes synchronously
// on every catalog notification, so a reader that runs after a mutation
// returns always sees its effect.
type Graph struct {
	src         Source
	mu          sync.Mutex
	rev         uint64
	snap        atomic.Pointer[Snapshot]
	unsubscribe func()

	listenMu  sync.Mutex
	listeners []func(*Snapshot)
}

func NewGraph(src Source) *Graph {
	g := &Graph{src: src}
	g.recompute()
	g.unsubscribe = src.Subscribe(g.recompute)
	return g
}

func (g *Graph) Snapshot() *Snapshot {
	return g.snap.Load()
}

// OnChange registers fn to receive every newly published snapshot.
func (g *Graph) OnChange(fn func(*Snapshot)) {
	g.listenMu.Lock()
	defer g.listenMu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// Refresh re-evaluates liveness against the current time without waiting
// for a catalog change. It returns the snapshot now in effect and only
// publishes when the active campaign actually changed.
func (g *Graph) Refresh() *Snapshot {
	g.mu.Lock()
	cur := g.snap.Load()
	now := g.src.Now()
	active := ActiveCampaign(cur.Settings.Campaigns, now)
	if sameCampaign(active, cur.Active) {
		g.mu.Unlock()
		return cur
	}
	g.rev++
	next := evaluate(g.rev, cur.Products, cur.Settings, now)
	g.snap.Store(next)
	g.mu.Unlock()

	g.publish(next)
	return next
}

func (g *Graph) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}

func (g *Graph) recompute() {
	g.mu.Lock()
	g.rev++
	next := evaluate(g.rev, g.src.Products(), g.src.Settings(), g.src.Now())
	g.snap.Store(next)
	g.mu.Unlock()

	g.publish(next)
}

func (g *Graph) publish(snap *Snapshot) {
	g.listenMu.Lock()
	fns := slices.Clone(g.listeners)
	g.listenMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func sameCampaign(a, b *domain.Campaign) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID {
		return false
	}
	if a.OfferEndDate == nil || b.OfferEndDate == nil {
		return a.OfferEndDate == b.OfferEndDate
	}
	return a.OfferEndDate.Equal(*b.OfferEndDate)
}
