// Package local is the single-user persistence backend: every collection is
// serialized as JSON text under a fixed key in a SQLite key-value table,
// written through on each mutation.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tsukuda/clubpass/internal/model"
	"github.com/tsukuda/clubpass/internal/seed"
)

const (
	keyPartners = "app_partners"
	keyCoupons  = "app_coupons"
	keyNews     = "app_news"
	keyConfig   = "app_config"
)

// Store persists all entities in the local SQLite key-value table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New wraps an opened database. The caller keeps ownership until Close.
func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) Mode() string { return "local" }

func (s *Store) Close() error { return s.db.Close() }

// --- key-value access ---

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM storage WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO storage (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// load reads the JSON stored under key into dst. A missing key or corrupt
// payload falls back to the seed value, which is written through so the next
// read is clean. Never fails the caller over bad stored data.
func (s *Store) load(key string, dst any, seedValue func() any) error {
	raw, ok, err := s.get(key)
	if err != nil {
		return err
	}
	if ok {
		uerr := json.Unmarshal([]byte(raw), dst)
		if uerr == nil {
			return nil
		}
		s.logger.Error("discarding corrupt stored data", "key", key, "error", uerr)
	}

	fresh := seedValue()
	data, err := json.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("marshal seed for %q: %w", key, err)
	}
	if err := s.set(key, string(data)); err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	return s.set(key, string(data))
}

// newID returns an id unique enough for a single-user store.
func newID() string {
	return uuid.NewString()
}

// --- partners ---

func (s *Store) loadPartners() ([]model.Partner, error) {
	var partners []model.Partner
	err := s.load(keyPartners, &partners, func() any { return seed.Partners() })
	return partners, err
}

func (s *Store) ListPartners(ctx context.Context) ([]model.Partner, error) {
	return s.loadPartners()
}

func (s *Store) CreatePartner(ctx context.Context, p model.Partner) (*model.Partner, error) {
	partners, err := s.loadPartners()
	if err != nil {
		return nil, err
	}
	p.ID = newID()
	partners = append([]model.Partner{p}, partners...)
	if err := s.save(keyPartners, partners); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdatePartner(ctx context.Context, id string, patch model.PartnerPatch) error {
	partners, err := s.loadPartners()
	if err != nil {
		return err
	}
	for i := range partners {
		if partners[i].ID == id {
			partners[i].Apply(patch)
			break
		}
	}
	return s.save(keyPartners, partners)
}

func (s *Store) DeletePartner(ctx context.Context, id string) error {
	partners, err := s.loadPartners()
	if err != nil {
		return err
	}
	kept := partners[:0]
	for _, p := range partners {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return s.save(keyPartners, kept)
}

// --- coupons ---

func (s *Store) loadCoupons() ([]model.Coupon, error) {
	var coupons []model.Coupon
	err := s.load(keyCoupons, &coupons, func() any { return seed.Coupons() })
	return coupons, err
}

func (s *Store) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	return s.loadCoupons()
}

func (s *Store) CreateCoupon(ctx context.Context, c model.Coupon) (*model.Coupon, error) {
	coupons, err := s.loadCoupons()
	if err != nil {
		return nil, err
	}
	c.ID = newID()
	c.FillDefaults()
	coupons = append([]model.Coupon{c}, coupons...)
	if err := s.save(keyCoupons, coupons); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCoupon(ctx context.Context, id string, patch model.CouponPatch) error {
	coupons, err := s.loadCoupons()
	if err != nil {
		return err
	}
	for i := range coupons {
		if coupons[i].ID == id {
			coupons[i].Apply(patch)
			break
		}
	}
	return s.save(keyCoupons, coupons)
}

func (s *Store) DeleteCoupon(ctx context.Context, id string) error {
	coupons, err := s.loadCoupons()
	if err != nil {
		return err
	}
	kept := coupons[:0]
	for _, c := range coupons {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return s.save(keyCoupons, kept)
}

// --- news ---

func (s *Store) loadNews() ([]model.NewsItem, error) {
	var news []model.NewsItem
	err := s.load(keyNews, &news, func() any { return seed.News() })
	return news, err
}

func (s *Store) ListNews(ctx context.Context) ([]model.NewsItem, error) {
	return s.loadNews()
}

func (s *Store) CreateNews(ctx context.Context, n model.NewsItem) (*model.NewsItem, error) {
	news, err := s.loadNews()
	if err != nil {
		return nil, err
	}
	n.ID = newID()
	news = append([]model.NewsItem{n}, news...)
	if err := s.save(keyNews, news); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) UpdateNews(ctx context.Context, id string, patch model.NewsPatch) error {
	news, err := s.loadNews()
	if err != nil {
		return err
	}
	for i := range news {
		if news[i].ID == id {
			news[i].Apply(patch)
			break
		}
	}
	return s.save(keyNews, news)
}

func (s *Store) DeleteNews(ctx context.Context, id string) error {
	news, err := s.loadNews()
	if err != nil {
		return err
	}
	kept := news[:0]
	for _, n := range news {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	return s.save(keyNews, kept)
}

// --- config ---

func (s *Store) GetConfig(ctx context.Context) (model.AppConfig, error) {
	var cfg model.AppConfig
	err := s.load(keyConfig, &cfg, func() any { return seed.Config() })
	return cfg, err
}

func (s *Store) SetConfig(ctx context.Context, patch model.ConfigPatch) error {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return err
	}
	cfg.Apply(patch)
	return s.save(keyConfig, cfg)
}

// --- reset ---

func (s *Store) ResetAll(ctx context.Context) error {
	if err := s.save(keyPartners, seed.Partners()); err != nil {
		return err
	}
	if err := s.save(keyCoupons, seed.Coupons()); err != nil {
		return err
	}
	if err := s.save(keyNews, seed.News()); err != nil {
		return err
	}
	return s.save(keyConfig, seed.Config())
}
