// Package gateway abstracts the durable copy of all app data behind one CRUD
// contract with two interchangeable backends: a local SQLite key-value store
// and a remote Supabase-style relational service. The backend is chosen once
// at startup and fixed for the process lifetime.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/tsukuda/clubpass/internal/database"
	"github.com/tsukuda/clubpass/internal/gateway/local"
	"github.com/tsukuda/clubpass/internal/gateway/remote"
	"github.com/tsukuda/clubpass/internal/model"
)

// Gateway is the CRUD contract both backends implement. Create assigns the
// id (locally generated or service-assigned) and returns the stored entity.
// Update and Delete silently succeed for unknown ids, matching upsert-free
// CRUD semantics of the remote service.
type Gateway interface {
	Mode() string

	ListPartners(ctx context.Context) ([]model.Partner, error)
	CreatePartner(ctx context.Context, p model.Partner) (*model.Partner, error)
	UpdatePartner(ctx context.Context, id string, patch model.PartnerPatch) error
	DeletePartner(ctx context.Context, id string) error

	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	CreateCoupon(ctx context.Context, c model.Coupon) (*model.Coupon, error)
	UpdateCoupon(ctx context.Context, id string, patch model.CouponPatch) error
	DeleteCoupon(ctx context.Context, id string) error

	ListNews(ctx context.Context) ([]model.NewsItem, error)
	CreateNews(ctx context.Context, n model.NewsItem) (*model.NewsItem, error)
	UpdateNews(ctx context.Context, id string, patch model.NewsPatch) error
	DeleteNews(ctx context.Context, id string) error

	GetConfig(ctx context.Context) (model.AppConfig, error)
	SetConfig(ctx context.Context, patch model.ConfigPatch) error

	// ResetAll restores every collection and the config singleton to the
	// seed dataset. Destructive and irreversible; callers must confirm
	// with the user first.
	ResetAll(ctx context.Context) error

	Close() error
}

// Config selects and configures the backend.
type Config struct {
	SupabaseURL string
	SupabaseKey string
	DBPath      string // local store path, used when remote is not selected
}

const (
	probeAttempts = 3
	probeInterval = 500 * time.Millisecond
)

// Open picks the backend: remote when credentials are present and the
// service answers a startup probe, local otherwise. Missing credentials are
// an expected configuration, not an error.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Gateway, error) {
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		rc := remote.New(remote.Config{
			BaseURL: cfg.SupabaseURL,
			APIKey:  cfg.SupabaseKey,
		}, logger.With("component", "gateway_remote"))

		backoff := retry.WithMaxRetries(probeAttempts, retry.NewConstant(probeInterval))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			return retry.RetryableError(rc.Ping(ctx))
		})
		if err == nil {
			logger.Info("persistence backend selected", "mode", "remote")
			return rc, nil
		}
		logger.Warn("remote store unreachable, falling back to local", "error", err)
	} else {
		logger.Info("remote credentials not configured, using local store")
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("persistence backend selected", "mode", "local", "path", cfg.DBPath)
	return local.New(db, logger.With("component", "gateway_local")), nil
}
