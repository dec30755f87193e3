package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tsukuda/clubpass/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, APIKey: "test-key"}, slog.Default())
}

func TestRequestCarriesCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q, want %q", got, "test-key")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q, want bearer token", got)
		}
		w.Write([]byte("[]"))
	})

	if _, err := c.ListPartners(context.Background()); err != nil {
		t.Fatalf("list partners: %v", err)
	}
}

func TestListCouponsOrdersByCreatedAt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/rest/v1/coupons") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("order"); got != "created_at.desc" {
			t.Errorf("order = %q, want created_at.desc", got)
		}
		json.NewEncoder(w).Encode([]couponRow{
			{ID: "c1", PartnerID: "p1", Title: "割引", UsageType: "OneTime"},
		})
	})

	coupons, err := c.ListCoupons(context.Background())
	if err != nil {
		t.Fatalf("list coupons: %v", err)
	}
	if len(coupons) != 1 || coupons[0].ID != "c1" {
		t.Fatalf("unexpected coupons: %+v", coupons)
	}
	if coupons[0].UsageType != model.UsageOneTime {
		t.Errorf("usage type = %q, want OneTime", coupons[0].UsageType)
	}
}

func TestCreateReturnsServerAssignedID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("prefer = %q, want return=representation", got)
		}
		var rows []newsRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil || len(rows) != 1 {
			t.Fatalf("decode body: rows=%v err=%v", rows, err)
		}
		rows[0].ID = "server-assigned"
		json.NewEncoder(w).Encode(rows)
	})

	created, err := c.CreateNews(context.Background(), model.NewsItem{Title: "お知らせ", Date: "2026.01.01"})
	if err != nil {
		t.Fatalf("create news: %v", err)
	}
	if created.ID != "server-assigned" {
		t.Errorf("id = %q, want server-assigned", created.ID)
	}
}

func TestUpdateFiltersByID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if got := r.URL.Query().Get("id"); got != "eq.abc" {
			t.Errorf("id filter = %q, want eq.abc", got)
		}
		var row map[string]any
		json.NewDecoder(r.Body).Decode(&row)
		if row["is_used"] != true {
			t.Errorf("body = %v, want is_used only", row)
		}
		if len(row) != 1 {
			t.Errorf("body carries %d fields, want 1", len(row))
		}
		w.WriteHeader(http.StatusNoContent)
	})

	used := true
	if err := c.UpdateCoupon(context.Background(), "abc", model.CouponPatch{IsUsed: &used}); err != nil {
		t.Fatalf("update coupon: %v", err)
	}
}

func TestEmptyPatchSkipsRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty patch")
	})
	if err := c.UpdateCoupon(context.Background(), "abc", model.CouponPatch{}); err != nil {
		t.Fatalf("update coupon: %v", err)
	}
}

func TestServerErrorPropagates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})

	if _, err := c.ListPartners(context.Background()); err == nil {
		t.Fatal("expected error on 500 response")
	}
	if err := c.DeleteNews(context.Background(), "n1"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestSetConfigUpsertsByKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("on_conflict"); got != "key" {
			t.Errorf("on_conflict = %q, want key", got)
		}
		if got := r.Header.Get("Prefer"); got != "resolution=merge-duplicates" {
			t.Errorf("prefer = %q, want merge-duplicates", got)
		}
		var rows []configRow
		json.NewDecoder(r.Body).Decode(&rows)
		if len(rows) != 1 || rows[0].Key != "systemPrompt" {
			t.Errorf("unexpected rows: %+v", rows)
		}
		w.WriteHeader(http.StatusCreated)
	})

	prompt := "updated"
	if err := c.SetConfig(context.Background(), model.ConfigPatch{SystemPrompt: &prompt}); err != nil {
		t.Fatalf("set config: %v", err)
	}
}

func TestPingRejectsUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping failure on 401")
	}
}

func TestResetAllReseedsWithFreshPartnerIDs(t *testing.T) {
	var deleted []string
	var couponPartnerIDs []string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
		switch r.Method {
		case http.MethodDelete:
			deleted = append(deleted, table)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			switch table {
			case "partners":
				var rows []partnerRow
				json.NewDecoder(r.Body).Decode(&rows)
				rows[0].ID = "fresh-" + rows[0].Name
				json.NewEncoder(w).Encode(rows)
			case "coupons":
				var rows []couponRow
				json.NewDecoder(r.Body).Decode(&rows)
				couponPartnerIDs = append(couponPartnerIDs, rows[0].PartnerID)
				rows[0].ID = "fresh-coupon"
				json.NewEncoder(w).Encode(rows)
			case "news":
				var rows []newsRow
				json.NewDecoder(r.Body).Decode(&rows)
				rows[0].ID = "fresh-news"
				json.NewEncoder(w).Encode(rows)
			case "config":
				w.WriteHeader(http.StatusCreated)
			default:
				t.Errorf("unexpected table %q", table)
			}
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	if err := c.ResetAll(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}

	// Children are cleared before partners.
	if len(deleted) < 3 || deleted[len(deleted)-2] != "partners" {
		t.Errorf("delete order = %v", deleted)
	}
	for _, id := range couponPartnerIDs {
		if !strings.HasPrefix(id, "fresh-") {
			t.Errorf("coupon references stale partner id %q", id)
		}
	}
}
