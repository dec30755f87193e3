// Package remote talks to the Supabase-style REST layer: one HTTP request
// per CRUD call, service-assigned ids, snake_case columns translated at the
// boundary.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tsukuda/clubpass/internal/model"
	"github.com/tsukuda/clubpass/internal/seed"
)

const (
	tablePartners = "partners"
	tableCoupons  = "coupons"
	tableNews     = "news"
	tableConfig   = "config"
)

// Config holds the remote service connection settings.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client implements the persistence gateway against the remote service.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a remote client. The connection is not probed here; call Ping.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

func (c *Client) Mode() string { return "remote" }

func (c *Client) Close() error { return nil }

// Ping checks that the REST layer answers with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/rest/v1/", nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("ping: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

// do issues one request and decodes the response body into out when out is
// non-nil. Non-2xx statuses become errors carrying the body for the log.
func (c *Client) do(ctx context.Context, method, path string, body any, prefer string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+"/rest/v1/"+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

// created unwraps a Prefer: return=representation response, which is always
// an array.
func created[T any](rows []T, table string) (*T, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("create %s: empty representation", table)
	}
	return &rows[0], nil
}

// --- partners ---

func (c *Client) ListPartners(ctx context.Context) ([]model.Partner, error) {
	var rows []partnerRow
	if err := c.do(ctx, http.MethodGet, tablePartners+"?select=*&order=created_at.desc", nil, "", &rows); err != nil {
		return nil, err
	}
	partners := make([]model.Partner, 0, len(rows))
	for _, r := range rows {
		partners = append(partners, partnerFromRow(r))
	}
	return partners, nil
}

func (c *Client) CreatePartner(ctx context.Context, p model.Partner) (*model.Partner, error) {
	var rows []partnerRow
	err := c.do(ctx, http.MethodPost, tablePartners, []partnerRow{partnerToRow(p)}, "return=representation", &rows)
	if err != nil {
		return nil, err
	}
	row, err := created(rows, tablePartners)
	if err != nil {
		return nil, err
	}
	out := partnerFromRow(*row)
	return &out, nil
}

func (c *Client) UpdatePartner(ctx context.Context, id string, patch model.PartnerPatch) error {
	row := partnerPatchRow(patch)
	if len(row) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPatch, tablePartners+"?id=eq."+id, row, "", nil)
}

func (c *Client) DeletePartner(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, tablePartners+"?id=eq."+id, nil, "", nil)
}

// --- coupons ---

func (c *Client) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	var rows []couponRow
	if err := c.do(ctx, http.MethodGet, tableCoupons+"?select=*&order=created_at.desc", nil, "", &rows); err != nil {
		return nil, err
	}
	coupons := make([]model.Coupon, 0, len(rows))
	for _, r := range rows {
		coupons = append(coupons, couponFromRow(r))
	}
	return coupons, nil
}

func (c *Client) CreateCoupon(ctx context.Context, cp model.Coupon) (*model.Coupon, error) {
	cp.FillDefaults()
	var rows []couponRow
	err := c.do(ctx, http.MethodPost, tableCoupons, []couponRow{couponToRow(cp)}, "return=representation", &rows)
	if err != nil {
		return nil, err
	}
	row, err := created(rows, tableCoupons)
	if err != nil {
		return nil, err
	}
	out := couponFromRow(*row)
	return &out, nil
}

func (c *Client) UpdateCoupon(ctx context.Context, id string, patch model.CouponPatch) error {
	row := couponPatchRow(patch)
	if len(row) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPatch, tableCoupons+"?id=eq."+id, row, "", nil)
}

func (c *Client) DeleteCoupon(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, tableCoupons+"?id=eq."+id, nil, "", nil)
}

// --- news ---

func (c *Client) ListNews(ctx context.Context) ([]model.NewsItem, error) {
	var rows []newsRow
	if err := c.do(ctx, http.MethodGet, tableNews+"?select=*&order=created_at.desc", nil, "", &rows); err != nil {
		return nil, err
	}
	news := make([]model.NewsItem, 0, len(rows))
	for _, r := range rows {
		news = append(news, newsFromRow(r))
	}
	return news, nil
}

func (c *Client) CreateNews(ctx context.Context, n model.NewsItem) (*model.NewsItem, error) {
	var rows []newsRow
	err := c.do(ctx, http.MethodPost, tableNews, []newsRow{newsToRow(n)}, "return=representation", &rows)
	if err != nil {
		return nil, err
	}
	row, err := created(rows, tableNews)
	if err != nil {
		return nil, err
	}
	out := newsFromRow(*row)
	return &out, nil
}

func (c *Client) UpdateNews(ctx context.Context, id string, patch model.NewsPatch) error {
	row := newsPatchRow(patch)
	if len(row) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPatch, tableNews+"?id=eq."+id, row, "", nil)
}

func (c *Client) DeleteNews(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, tableNews+"?id=eq."+id, nil, "", nil)
}

// --- config ---

func (c *Client) GetConfig(ctx context.Context) (model.AppConfig, error) {
	var rows []configRow
	if err := c.do(ctx, http.MethodGet, tableConfig+"?select=key,value", nil, "", &rows); err != nil {
		return model.AppConfig{}, err
	}
	return configFromRows(rows, seed.Config()), nil
}

func (c *Client) SetConfig(ctx context.Context, patch model.ConfigPatch) error {
	rows := configToRows(patch)
	if len(rows) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, tableConfig+"?on_conflict=key", rows, "resolution=merge-duplicates", nil)
}

// --- reset ---

// ResetAll deletes every row in each table and re-inserts the seed dataset.
func (c *Client) ResetAll(ctx context.Context) error {
	// Delete children before parents so partner references never dangle.
	for _, table := range []string{tableCoupons, tableNews, tablePartners} {
		if err := c.do(ctx, http.MethodDelete, table+"?id=not.is.null", nil, "", nil); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	if err := c.do(ctx, http.MethodDelete, tableConfig+"?key=not.is.null", nil, "", nil); err != nil {
		return fmt.Errorf("reset %s: %w", tableConfig, err)
	}

	// Re-seed partners first and rewrite coupon references to the freshly
	// assigned ids.
	idByName := make(map[string]string)
	oldNames := make(map[string]string)
	for _, p := range seed.Partners() {
		oldID := p.ID
		createdP, err := c.CreatePartner(ctx, p)
		if err != nil {
			return fmt.Errorf("reseed partner: %w", err)
		}
		idByName[p.Name] = createdP.ID
		oldNames[oldID] = p.Name
	}

	for _, cp := range seed.Coupons() {
		if name, ok := oldNames[cp.PartnerID]; ok {
			cp.PartnerID = idByName[name]
		}
		if _, err := c.CreateCoupon(ctx, cp); err != nil {
			return fmt.Errorf("reseed coupon: %w", err)
		}
	}

	// Insert news oldest-first so created_at ordering matches seed order.
	news := seed.News()
	for i := len(news) - 1; i >= 0; i-- {
		if _, err := c.CreateNews(ctx, news[i]); err != nil {
			return fmt.Errorf("reseed news: %w", err)
		}
	}

	cfg := seed.Config()
	return c.SetConfig(ctx, model.ConfigPatch{
		SystemPrompt:  &cfg.SystemPrompt,
		KnowledgeBase: &cfg.KnowledgeBase,
	})
}
