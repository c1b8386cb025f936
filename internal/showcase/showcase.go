// Package showcase drives the full-screen product carousel. Each item plays
// for a fixed dwell time while a progress value climbs from 0 to 100, then
// the player moves on to the next catalog product.
//
// States: Closed, Playing, and DetailsOpen (Playing with the details card
// shown, which pauses progress).
package showcase

import (
	"sync"
	"time"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/clock"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

const (
	DefaultDwell = 6 * time.Second
	DefaultTick  = 50 * time.Millisecond
	DefaultIntro = 3 * time.Second
)

type Config struct {
	Dwell time.Duration
	Tick  time.Duration
	Intro time.Duration
}

func (c Config) withDefaults() Config {
	if c.Dwell <= 0 {
		c.Dwell = DefaultDwell
	}
	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}
	if c.Intro <= 0 {
		c.Intro = DefaultIntro
	}
	return c
}

// Source supplies the product list. It is re-read on every tick.
type Source interface {
	Products() []domain.Product
}

// Cart receives items added from inside the showcase.
type Cart interface {
	Add(product domain.Product, variant *domain.Variant, price float64) domain.CartLine
}

// Advance describes an item change, reported to the OnAdvance hook.
type Advance struct {
	From, To int
	Auto     bool
}

type Player struct {
	src   Source
	sched clock.Scheduler
	cfg   Config

	mu        sync.Mutex
	open      bool
	index     int
	elapsed   time.Duration
	intro     bool
	details   bool
	// held is an explicit Pause, independent of the details card. It
	// survives item changes and is cleared by Resume, Open and Close.
	held      bool
	color     string
	gen       uint64
	progress  clock.Slot
	introHide clock.Slot
	onAdvance func(Advance)
}

func New(src Source, sched clock.Scheduler, cfg Config) *Player {
	return &Player{src: src, sched: sched, cfg: cfg.withDefaults()}
}

// OnAdvance registers a hook run after every item change. It must not call
// back into the player.
func (p *Player) OnAdvance(fn func(Advance)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onAdvance = fn
}

// Open starts playback at the first product. It does nothing and returns
// false when the catalog is empty.
func (p *Player) Open() bool {
	products := p.src.Products()
	if len(products) == 0 {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.index = 0
	p.held = false
	p.startItem(products)
	return true
}

// Close cancels every timer. Callbacks already in flight see a stale
// generation and are dropped.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Player) closeLocked() {
	p.stopTimers()
	p.gen++
	p.open = false
	p.intro = false
	p.details = false
	p.held = false
	p.elapsed = 0
}

func (p *Player) Next() bool {
	return p.step(1)
}

func (p *Player) Prev() bool {
	return p.step(-1)
}

func (p *Player) step(delta int) bool {
	products := p.src.Products()

	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return false
	}
	if len(products) == 0 {
		p.closeLocked()
		p.mu.Unlock()
		return false
	}
	from := min(p.index, len(products)-1)
	p.index = (from + delta + len(products)) % len(products)
	p.startItem(products)
	adv, hook := Advance{From: from, To: p.index}, p.onAdvance
	p.mu.Unlock()

	if hook != nil {
		hook(adv)
	}
	return true
}

// Tap toggles the details card. Opening it pauses progress and hides the
// intro overlay; closing it resumes the same item from where it stopped,
// unless playback is held by Pause.
func (p *Player) Tap() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return false
	}
	p.details = !p.details
	if p.details {
		p.intro = false
		p.introHide.Clear()
	}
	return true
}

// Pause holds playback until Resume, e.g. while the shopper's tab is hidden.
func (p *Player) Pause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return false
	}
	p.held = true
	return true
}

// Resume releases a Pause. Progress stays frozen while the details card is
// open.
func (p *Player) Resume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return false
	}
	p.held = false
	return true
}

// SelectVariant picks the variant with the given color on the current item.
func (p *Player) SelectVariant(color string) bool {
	products := p.src.Products()

	p.mu.Lock()
	defer p.mu.Unlock()
	product, ok := p.currentLocked(products)
	if !ok {
		return false
	}
	for _, v := range product.Variants {
		if v.Color == color {
			p.color = color
			return true
		}
	}
	return false
}

// AddCurrentToCart adds the current item with its selected variant, using
// the discounted price when prices carries one. It closes the details card,
// which resumes playback unless it is held by Pause.
func (p *Player) AddCurrentToCart(prices map[int64]float64, cart Cart) (domain.CartLine, bool) {
	products := p.src.Products()

	p.mu.Lock()
	defer p.mu.Unlock()
	product, ok := p.currentLocked(products)
	if !ok {
		return domain.CartLine{}, false
	}
	price := product.Price
	if discounted, ok := prices[product.ID]; ok {
		price = discounted
	}
	line := cart.Add(product, selectedVariant(product, p.color), price)
	p.details = false
	return line, true
}

func (p *Player) State() domain.ShowcaseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return domain.ShowcaseState{
		Open:           p.open,
		Index:          p.index,
		Progress:       p.progressPercent(),
		IntroVisible:   p.intro,
		DetailsVisible: p.details,
		Paused:         p.held || p.details,
	}
}

// Current returns the product on screen and its selected variant.
func (p *Player) Current() (domain.Product, *domain.Variant, bool) {
	products := p.src.Products()

	p.mu.Lock()
	defer p.mu.Unlock()
	product, ok := p.currentLocked(products)
	if !ok {
		return domain.Product{}, nil, false
	}
	return product, selectedVariant(product, p.color), true
}

func (p *Player) currentLocked(products []domain.Product) (domain.Product, bool) {
	if !p.open || len(products) == 0 {
		return domain.Product{}, false
	}
	if p.index >= len(products) {
		p.index = len(products) - 1
	}
	return products[p.index], true
}

func (p *Player) progressPercent() float64 {
	pct := float64(p.elapsed) / float64(p.cfg.Dwell) * 100
	return min(pct, 100)
}

// startItem resets the per-item sub-state and restarts both timers under a
// fresh generation. Callers hold p.mu.
func (p *Player) startItem(products []domain.Product) {
	p.stopTimers()
	p.gen++
	gen := p.gen

	p.elapsed = 0
	p.intro = true
	p.details = false
	p.color = ""
	if v := selectedVariant(products[p.index], ""); v != nil {
		p.color = v.Color
	}

	p.progress.Set(p.sched.Every(p.cfg.Tick, func() { p.onTick(gen) }))
	p.introHide.Set(p.sched.AfterFunc(p.cfg.Intro, func() { p.onIntroElapsed(gen) }))
}

func (p *Player) stopTimers() {
	p.progress.Clear()
	p.introHide.Clear()
}

func (p *Player) onTick(gen uint64) {
	products := p.src.Products()

	p.mu.Lock()
	if gen != p.gen || !p.open {
		p.mu.Unlock()
		return
	}
	if len(products) == 0 {
		p.closeLocked()
		p.mu.Unlock()
		return
	}
	if p.index >= len(products) {
		p.index = len(products) - 1
	}
	if p.held || p.details {
		p.mu.Unlock()
		return
	}

	p.elapsed += p.cfg.Tick
	if p.elapsed < p.cfg.Dwell {
		p.mu.Unlock()
		return
	}

	from := p.index
	p.index = (p.index + 1) % len(products)
	p.startItem(products)
	adv, hook := Advance{From: from, To: p.index, Auto: true}, p.onAdvance
	p.mu.Unlock()

	if hook != nil {
		hook(adv)
	}
}

func (p *Player) onIntroElapsed(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || !p.open {
		return
	}
	p.intro = false
	p.introHide.Clear()
}

// selectedVariant resolves color on product, falling back to the first
// variant. Products without variants yield nil.
func selectedVariant(product domain.Product, color string) *domain.Variant {
	if len(product.Variants) == 0 {
		return nil
	}
	for i := range product.Variants {
		if product.Variants[i].Color == color {
			v := product.Variants[i]
			return &v
		}
	}
	v := product.Variants[0]
	return &v
}
