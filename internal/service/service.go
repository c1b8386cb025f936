package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/message"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/cache"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/cart"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/catalog"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/clock"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/countdown"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/derive"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/showcase"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/store/seed"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

var ErrAdminRequired = errors.New("admin role required")

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return ErrAdminRequired
	}
	return nil
}

type Config struct {
	Showcase        showcase.Config
	CountdownPeriod time.Duration
	// CartTTL bounds both the cached cart snapshot and the in-memory
	// session. Zero disables eviction.
	CartTTL time.Duration
	Locale  string
	// Wilayas is the shipping table used at checkout. Nil uses the
	// built-in table.
	Wilayas []domain.Wilaya
}

type Session struct {
	ID     string
	Cart   *cart.Ledger
	Player *showcase.Player

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Service struct {
	repo      store.Repository
	catalog   *catalog.Store
	graph     *derive.Graph
	countdown *countdown.Timer
	carts     cache.CartCache
	sched     clock.Scheduler
	cfg       Config
	log       logrus.FieldLogger
	validate  *validator.Validate
	printer   *message.Printer
	metrics   metrics
	wilayas   []domain.Wilaya
	shipping  map[string]float64

	mu       sync.Mutex
	sessions map[string]*Session
	janitor  clock.Slot
}

// New wires the catalog, derivation graph and countdown around repo and
// syncs the countdown once so an already-running campaign starts ticking.
func New(ctx context.Context, repo store.Repository, carts cache.CartCache, sched clock.Scheduler, cfg Config, logger logrus.FieldLogger) (*Service, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if carts == nil {
		carts = cache.NoopCartCache{}
	}

	cat, err := catalog.New(ctx, repo, sched, catalog.WithLogger(logger.WithField("component", "catalog")))
	if err != nil {
		return nil, err
	}
	m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	wilayas := cfg.Wilayas
	if wilayas == nil {
		wilayas = seed.DefaultWilayas()
	}

	s := &Service{
		repo:     repo,
		catalog:  cat,
		carts:    carts,
		sched:    sched,
		cfg:      cfg,
		log:      logger.WithField("component", "service"),
		validate: newValidator(),
		printer:  newPrinter(cfg.Locale),
		metrics:  m,
		sessions: make(map[string]*Session),
		wilayas:  wilayas,
		shipping: shippingTable(wilayas),
	}

	s.graph = derive.NewGraph(cat)
	s.countdown = countdown.New(expiryRecorder{Store: cat, metrics: m}, sched, cfg.CountdownPeriod, logger.WithField("component", "countdown"))
	s.graph.OnChange(func(*derive.Snapshot) { s.countdown.Sync() })
	s.countdown.OnChange(func(string) { s.graph.Refresh() })
	s.countdown.Sync()

	if cfg.CartTTL > 0 {
		s.janitor.Set(sched.Every(time.Minute, s.evictIdleSessions))
	}
	return s, nil
}

// Close stops every timer the service owns: the countdown, the session
// janitor and all open showcases.
func (s *Service) Close() {
	s.countdown.Stop()
	s.graph.Close()

	s.mu.Lock()
	s.janitor.Clear()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Player.Close()
	}
}

// expiryRecorder counts expiry write-backs on their way to the catalog.
type expiryRecorder struct {
	*catalog.Store
	metrics metrics
}

func (e expiryRecorder) ExpireCampaign(ctx context.Context, id string) bool {
	ok := e.Store.ExpireCampaign(ctx, id)
	if ok {
		e.metrics.campaignExpiries.Add(ctx, 1)
	}
	return ok
}

// Session returns the session for id. An id the service does not hold is
// only adopted when the cart cache still has a snapshot under it, which
// resumes a cart after a restart; any other id gets a freshly issued one.
func (s *Service) Session(ctx context.Context, id string) *Session {
	now := s.sched.Now()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok && id != "" {
		sess.touch(now)
		return sess
	}

	restored, ok := s.cachedCart(ctx, id)
	if !ok {
		id = xid.New(sessionPrefix)
	}

	s.mu.Lock()
	if existing, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		existing.touch(now)
		return existing
	}
	sess = &Session{
		ID:       id,
		Cart:     cart.New(),
		Player:   showcase.New(s.catalog, s.sched, s.cfg.Showcase),
		lastSeen: now,
	}
	sess.Player.OnAdvance(func(a showcase.Advance) { s.metrics.showcaseAdvanced(a.Auto) })
	s.sessions[id] = sess
	s.mu.Unlock()

	s.metrics.activeSessions.Add(ctx, 1)
	if restored != nil {
		sess.Cart.Restore(restored)
	}
	return sess
}

const sessionPrefix = "sess"

func (s *Service) cachedCart(ctx context.Context, id string) ([]domain.CartLine, bool) {
	if !strings.HasPrefix(id, sessionPrefix+"_") {
		return nil, false
	}
	lines, ok, err := s.carts.Get(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("session", id).Warn("restore cart failed")
		return nil, false
	}
	return lines, ok
}

// EndSession closes the session's showcase and forgets it. The cached cart
// is kept until its TTL runs out.
func (s *Service) EndSession(ctx context.Context, id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	sess.Player.Close()
	s.metrics.activeSessions.Add(ctx, -1)
}

func (s *Service) evictIdleSessions() {
	cutoff := s.sched.Now().Add(-s.cfg.CartTTL)
	s.mu.Lock()
	var stale []string
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.EndSession(context.Background(), id)
	}
	if len(stale) > 0 {
		s.log.WithField("count", len(stale)).Info("evicted idle sessions")
	}
}

func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) persistCart(ctx context.Context, sess *Session) {
	if err := s.carts.Set(ctx, sess.ID, sess.Cart.Snapshot(), s.cfg.CartTTL); err != nil {
		s.log.WithError(err).WithField("session", sess.ID).Warn("persist cart failed")
	}
}

// snapshot re-evaluates campaign liveness before returning the current
// derived view so reads never report a campaign that already ended.
func (s *Service) snapshot() *derive.Snapshot {
	return s.graph.Refresh()
}

func (s *Service) Countdown() (string, countdown.State) {
	return s.countdown.Remaining(), s.countdown.State()
}
