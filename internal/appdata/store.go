// Package appdata is the process-wide source of truth for the member, the
// three entity collections, and the concierge config. It caches the durable
// copy held by the persistence gateway: every mutation writes through first
// and touches memory only after the write succeeds, so the cache never
// diverges from the backend.
package appdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tsukuda/clubpass/internal/gateway"
	"github.com/tsukuda/clubpass/internal/model"
	"github.com/tsukuda/clubpass/internal/seed"
	"github.com/tsukuda/clubpass/internal/websocket"
)

// ErrNotFound is returned when an action references an id that is not in
// the in-memory collections.
var ErrNotFound = errors.New("not found")

// Store holds the in-memory copy of all app data. Create one per process
// and inject it; there are no package-level instances.
type Store struct {
	gw     gateway.Gateway
	hub    *websocket.Hub
	logger *slog.Logger

	mu       sync.RWMutex
	loading  bool
	user     model.User
	news     []model.NewsItem
	coupons  []model.Coupon
	partners []model.Partner
	config   model.AppConfig
}

// New creates an empty store in the loading state. Call Load to populate it.
// hub may be nil (no live updates).
func New(gw gateway.Gateway, hub *websocket.Hub, logger *slog.Logger) *Store {
	return &Store{
		gw:      gw,
		hub:     hub,
		logger:  logger,
		loading: true,
		user:    seed.User(),
		config:  seed.Config(),
	}
}

// Load fetches every collection and the config from the gateway. The store
// stays in the loading state until all fetches finish; views render a
// neutral indicator meanwhile. The collections are unrelated, so a partial
// failure aborts the whole load.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	partners, err := s.gw.ListPartners(ctx)
	if err != nil {
		return fmt.Errorf("load partners: %w", err)
	}
	coupons, err := s.gw.ListCoupons(ctx)
	if err != nil {
		return fmt.Errorf("load coupons: %w", err)
	}
	news, err := s.gw.ListNews(ctx)
	if err != nil {
		return fmt.Errorf("load news: %w", err)
	}
	config, err := s.gw.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	s.mu.Lock()
	s.partners = partners
	s.coupons = coupons
	s.news = news
	s.config = config
	s.loading = false
	s.mu.Unlock()

	s.logger.Info("app data loaded",
		"mode", s.gw.Mode(),
		"partners", len(partners),
		"coupons", len(coupons),
		"news", len(news),
	)
	return nil
}

func (s *Store) broadcast(entity, action, id string) {
	if s.hub != nil {
		s.hub.Broadcast(websocket.NewMessage(entity, action, id, nil))
	}
}

// Loading reports whether the initial fetch is still in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// User returns the current member.
func (s *Store) User() model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// News returns a copy of the news list, most recent first.
func (s *Store) News() []model.NewsItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.NewsItem, len(s.news))
	copy(out, s.news)
	return out
}

// Coupons returns a copy of the coupon list, most recent first.
func (s *Store) Coupons() []model.Coupon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Coupon, len(s.coupons))
	copy(out, s.coupons)
	return out
}

// Partners returns a copy of the partner list, most recent first.
func (s *Store) Partners() []model.Partner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Partner, len(s.partners))
	copy(out, s.partners)
	return out
}

// Config returns the concierge configuration.
func (s *Store) Config() model.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// CouponByID returns the coupon with the given id, or nil.
func (s *Store) CouponByID(id string) *model.Coupon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.coupons {
		if c.ID == id {
			cp := c
			return &cp
		}
	}
	return nil
}

// PartnerByID returns the partner with the given id, or nil.
func (s *Store) PartnerByID(id string) *model.Partner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.partners {
		if p.ID == id {
			pp := p
			return &pp
		}
	}
	return nil
}

// NewsByID returns the news item with the given id, or nil.
func (s *Store) NewsByID(id string) *model.NewsItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.news {
		if n.ID == id {
			nn := n
			return &nn
		}
	}
	return nil
}

// --- coupon actions ---

// AddCoupon persists the coupon, then prepends it to the in-memory list.
func (s *Store) AddCoupon(ctx context.Context, c model.Coupon) (*model.Coupon, error) {
	stored, err := s.gw.CreateCoupon(ctx, c)
	if err != nil {
		s.logger.Error("add coupon", "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.coupons = append([]model.Coupon{*stored}, s.coupons...)
	s.mu.Unlock()

	s.broadcast("coupon", "created", stored.ID)
	return stored, nil
}

// UpdateCoupon persists the patch, then applies it in memory.
func (s *Store) UpdateCoupon(ctx context.Context, id string, patch model.CouponPatch) error {
	if err := s.gw.UpdateCoupon(ctx, id, patch); err != nil {
		s.logger.Error("update coupon", "id", id, "error", err)
		return err
	}

	s.mu.Lock()
	next := make([]model.Coupon, len(s.coupons))
	copy(next, s.coupons)
	for i := range next {
		if next[i].ID == id {
			next[i].Apply(patch)
			break
		}
	}
	s.coupons = next
	s.mu.Unlock()

	s.broadcast("coupon", "updated", id)
	return nil
}

// DeleteCoupon persists the delete, then drops the coupon from memory.
func (s *Store) DeleteCoupon(ctx context.Context, id string) error {
	if err := s.gw.DeleteCoupon(ctx, id); err != nil {
		s.logger.Error("delete coupon", "id", id, "error", err)
		return err
	}

	s.mu.Lock()
	next := make([]model.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		if c.ID != id {
			next = append(next, c)
		}
	}
	s.coupons = next
	s.mu.Unlock()

	s.broadcast("coupon", "deleted", id)
	return nil
}

// UseCoupon marks a single-use coupon as used. Using an already-used coupon
// is a no-op; unlimited coupons never flip.
func (s *Store) UseCoupon(ctx context.Context, id string) error {
	c := s.CouponByID(id)
	if c == nil {
		return ErrNotFound
	}
	if c.UsageType != model.UsageOneTime {
		return fmt.Errorf("coupon %s is not single-use", id)
	}
	if c.IsUsed {
		return nil
	}

	used := true
	return s.UpdateCoupon(ctx, id, model.CouponPatch{IsUsed: &used})
}

// --- news actions ---

// AddNews persists the item, then prepends it to the in-memory list.
func (s *Store) AddNews(ctx context.Context, n model.NewsItem) (*model.NewsItem, error) {
	stored, err := s.gw.CreateNews(ctx, n)
	if err != nil {
		s.logger.Error("add news", "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.news = append([]model.NewsItem{*stored}, s.news...)
	s.mu.Unlock()

	s.broadcast("news", "created", stored.ID)
	return stored, nil
}

// UpdateNews persists the patch, then applies it in memory.
func (s *Store) UpdateNews(ctx context.Context, id string, patch model.NewsPatch) error {
	if err := s.gw.UpdateNews(ctx, id, patch); err != nil {
		s.logger.Error("update news", "id", id, "error", err)
		return err
	}

	s.mu.Lock()
	next := make([]model.NewsItem, len(s.news))
	copy(next, s.news)
	for i := range next {
		if next[i].ID == id {
			next[i].Apply(patch)
			break
		}
	}
	s.news = next
	s.mu.Unlock()

	s.broadcast("news", "updated", id)
	return nil
}

// DeleteNews persists the delete, then drops the item from memory.
func (s *Store) DeleteNews(ctx context.Context, id string) error {
	if err := s.gw.DeleteNews(ctx, id); err != nil {
		s.logger.Error("delete news", "id", id, "error", err)
		return err
	}

	s.mu.Lock()
	next := make([]model.NewsItem, 0, len(s.news))
	for _, n := range s.news {
		if n.ID != id {
			next = append(next, n)
		}
	}
	s.news = next
	s.mu.Unlock()

	s.broadcast("news", "deleted", id)
	return nil
}

// --- partner actions ---

// AddPartner persists the partner, then prepends it to the in-memory list.
func (s *Store) AddPartner(ctx context.Context, p model.Partner) (*model.Partner, error) {
	stored, err := s.gw.CreatePartner(ctx, p)
	if err != nil {
		s.logger.Error("add partner", "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.partners = append([]model.Partner{*stored}, s.partners...)
	s.mu.Unlock()

	s.broadcast("partner", "created", stored.ID)
	return stored, nil
}

// UpdatePartner persists the patch, then applies it in memory.
func (s *Store) UpdatePartner(ctx context.Context, id string, patch model.PartnerPatch) error {
	if err := s.gw.UpdatePartner(ctx, id, patch); err != nil {
		s.logger.Error("update partner", "id", id, "error", err)
		return err
	}

	s.mu.Lock()
	next := make([]model.Partner, len(s.partners))
	copy(next, s.partners)
	for i := range next {
		if next[i].ID == id {
			next[i].Apply(patch)
			break
		}
	}
	s.partners = next
	s.mu.Unlock()

	s.broadcast("partner", "updated", id)
	return nil
}

// DeletePartner persists the delete, then drops the partner from memory.
// Coupons referencing the partner are left alone; referential integrity is
// expected but not enforced.
func (s *Store) DeletePartner(ctx context.Context, id string) error {
	if err := s.gw.DeletePartner(ctx, id); err != nil {
		s.logger.Error("delete partner", "id", id, "error", err)
		return err
	}

	s.mu.Lock()
	next := make([]model.Partner, 0, len(s.partners))
	for _, p := range s.partners {
		if p.ID != id {
			next = append(next, p)
		}
	}
	s.partners = next
	s.mu.Unlock()

	s.broadcast("partner", "deleted", id)
	return nil
}

// --- config ---

// UpdateConfig persists only the provided keys, then merges them in memory.
func (s *Store) UpdateConfig(ctx context.Context, patch model.ConfigPatch) error {
	if err := s.gw.SetConfig(ctx, patch); err != nil {
		s.logger.Error("update config", "error", err)
		return err
	}

	s.mu.Lock()
	cfg := s.config
	cfg.Apply(patch)
	s.config = cfg
	s.mu.Unlock()

	s.broadcast("config", "updated", "")
	return nil
}

// --- reset ---

// Reset restores the seed dataset in the backend and reloads everything.
// Destructive; callers must have confirmed with the user.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.gw.ResetAll(ctx); err != nil {
		s.logger.Error("reset all", "error", err)
		return err
	}
	if err := s.Load(ctx); err != nil {
		return err
	}
	s.broadcast("all", "reset", "")
	return nil
}
