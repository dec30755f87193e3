package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/tsukuda/clubpass/internal/appdata"
	"github.com/tsukuda/clubpass/internal/concierge"
	"github.com/tsukuda/clubpass/internal/database"
	"github.com/tsukuda/clubpass/internal/gateway/local"
	"github.com/tsukuda/clubpass/internal/imagestore"
	"github.com/tsukuda/clubpass/internal/model"
	"github.com/tsukuda/clubpass/internal/seed"
)

func setupTestData(t *testing.T) *appdata.Store {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	data := appdata.New(local.New(db, slog.Default()), nil, slog.Default())
	if err := data.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return data
}

func setupPageHandler(t *testing.T) (*PageHandler, *appdata.Store) {
	t.Helper()
	data := setupTestData(t)
	ai := concierge.NewService(concierge.Config{}, slog.Default())
	return NewPageHandler(data, ai, slog.Default()), data
}

func setupAdminHandler(t *testing.T) (*AdminHandler, *appdata.Store) {
	t.Helper()
	data := setupTestData(t)
	images := imagestore.NewService(imagestore.Config{}, slog.Default())
	return NewAdminHandler(data, images, slog.Default()), data
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHomeRendersNewsAndUser(t *testing.T) {
	h, data := setupPageHandler(t)

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, data.User().Name) {
		t.Error("body missing user name")
	}
	if !strings.Contains(body, data.News()[0].Title) {
		t.Error("body missing latest news title")
	}
}

func TestHomeRedirectsAdminQuery(t *testing.T) {
	h, _ := setupPageHandler(t)

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest("GET", "/?admin=1", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/admin" {
		t.Errorf("location = %q, want /admin", got)
	}
}

func TestCardShowsCompetitionBanner(t *testing.T) {
	h, _ := setupPageHandler(t)

	rec := httptest.NewRecorder()
	h.Card(rec, httptest.NewRequest("GET", "/card", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	comp := seed.Competition()
	if !strings.Contains(body, comp.Title) {
		t.Error("card page missing competition title")
	}
	if !strings.Contains(body, "開催中") {
		t.Error("ongoing competition should carry the live badge")
	}
	if !strings.Contains(body, comp.URL) {
		t.Error("card page missing competition link")
	}
}

func TestHomeUnknownPath(t *testing.T) {
	h, _ := setupPageHandler(t)
	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func findCoupon(t *testing.T, data *appdata.Store, usage model.UsageType, used bool) model.Coupon {
	t.Helper()
	for _, c := range data.Coupons() {
		if c.UsageType == usage && c.IsUsed == used {
			return c
		}
	}
	t.Fatalf("seed data has no %s coupon with used=%v", usage, used)
	return model.Coupon{}
}

func TestCouponUseFlow(t *testing.T) {
	h, data := setupPageHandler(t)
	c := findCoupon(t, data, model.UsageOneTime, false)

	// Step 1: open the confirmation dialog.
	req := httptest.NewRequest("GET", "/partials/coupon/"+c.ID+"/use", nil)
	req.SetPathValue("id", c.ID)
	rec := httptest.NewRecorder()
	h.CouponUseConfirm(rec, req)
	if !strings.Contains(rec.Body.String(), "使用しますか") {
		t.Fatalf("expected confirmation dialog, got: %s", rec.Body.String())
	}

	// Step 2: confirm.
	req = httptest.NewRequest("POST", "/partials/coupon/"+c.ID+"/use", nil)
	req.SetPathValue("id", c.ID)
	rec = httptest.NewRecorder()
	h.CouponUse(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "使用しました") {
		t.Error("expected just-used notice in modal")
	}
	if !data.CouponByID(c.ID).IsUsed {
		t.Error("coupon should be marked used in the store")
	}
}

func TestCouponUseAfterDeleteRendersGracefully(t *testing.T) {
	h, data := setupPageHandler(t)
	c := findCoupon(t, data, model.UsageOneTime, false)

	req := httptest.NewRequest("GET", "/partials/coupon/"+c.ID+"/use", nil)
	req.SetPathValue("id", c.ID)
	h.CouponUseConfirm(httptest.NewRecorder(), req)

	// An admin can remove the coupon while the user is looking at the
	// confirmation dialog.
	if err := data.DeleteCoupon(context.Background(), c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	req = httptest.NewRequest("POST", "/partials/coupon/"+c.ID+"/use", nil)
	req.SetPathValue("id", c.ID)
	rec := httptest.NewRecorder()
	h.CouponUse(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body == "" {
		t.Error("expected a rendered response for the vanished coupon")
	}
}

func TestCouponUseWithoutConfirmation(t *testing.T) {
	h, data := setupPageHandler(t)
	c := findCoupon(t, data, model.UsageOneTime, false)

	req := httptest.NewRequest("POST", "/partials/coupon/"+c.ID+"/use", nil)
	req.SetPathValue("id", c.ID)
	rec := httptest.NewRecorder()
	h.CouponUse(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	if data.CouponByID(c.ID).IsUsed {
		t.Error("coupon must not flip without a pending confirmation")
	}
}

func TestUnlimitedCouponHasNoConfirmation(t *testing.T) {
	h, data := setupPageHandler(t)
	c := findCoupon(t, data, model.UsageUnlimited, false)

	req := httptest.NewRequest("GET", "/partials/coupon/"+c.ID+"/use", nil)
	req.SetPathValue("id", c.ID)
	rec := httptest.NewRecorder()
	h.CouponUseConfirm(rec, req)

	if strings.Contains(rec.Body.String(), "使用しますか") {
		t.Error("unlimited coupon must not reach the confirmation dialog")
	}
}

func TestCouponUseCancelKeepsCoupon(t *testing.T) {
	h, data := setupPageHandler(t)
	c := findCoupon(t, data, model.UsageOneTime, false)

	req := httptest.NewRequest("GET", "/partials/coupon/"+c.ID+"/use", nil)
	req.SetPathValue("id", c.ID)
	h.CouponUseConfirm(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.CouponUseCancel(rec, httptest.NewRequest("POST", "/partials/coupon/use/cancel", nil))

	if data.CouponByID(c.ID).IsUsed {
		t.Error("cancel must leave the coupon unused")
	}

	// The abandoned confirmation must not satisfy a later confirm.
	req = httptest.NewRequest("POST", "/partials/coupon/"+c.ID+"/use", nil)
	req.SetPathValue("id", c.ID)
	rec = httptest.NewRecorder()
	h.CouponUse(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 after cancel", rec.Code)
	}
}

func TestBrowserDrillDown(t *testing.T) {
	h, data := setupPageHandler(t)
	p := data.Partners()[0]

	rec := httptest.NewRecorder()
	h.BrowserSelectCategory(rec, formRequest("POST", "/partials/coupon/category",
		url.Values{"category": {string(p.Category)}}))
	if !strings.Contains(rec.Body.String(), p.Name) {
		t.Fatalf("partner list missing %q", p.Name)
	}

	req := formRequest("POST", "/partials/coupon/partner/"+p.ID, nil)
	req.SetPathValue("id", p.ID)
	rec = httptest.NewRecorder()
	h.BrowserSelectPartner(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.BrowserBack(rec, httptest.NewRequest("POST", "/partials/coupon/back", nil))
	if !strings.Contains(rec.Body.String(), p.Name) {
		t.Error("back should land on the partner list")
	}
}

func TestBrowserRejectsUnknownCategory(t *testing.T) {
	h, _ := setupPageHandler(t)
	rec := httptest.NewRecorder()
	h.BrowserSelectCategory(rec, formRequest("POST", "/partials/coupon/category",
		url.Values{"category": {"NOT_A_CATEGORY"}}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChatWithoutKeyStillAnswers(t *testing.T) {
	h, _ := setupPageHandler(t)

	rec := httptest.NewRecorder()
	h.ChatSend(rec, formRequest("POST", "/partials/chat", url.Values{"message": {"こんにちは"}}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "こんにちは") {
		t.Error("transcript missing the user message")
	}
	if !strings.Contains(body, "申し訳ありません") {
		t.Error("expected a fallback reply without an API key")
	}
}

func TestAdminConsoleRenders(t *testing.T) {
	h, _ := setupAdminHandler(t)
	rec := httptest.NewRecorder()
	h.Console(rec, httptest.NewRequest("GET", "/admin", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "管理コンソール") {
		t.Error("body missing console heading")
	}
}

func TestAdminCreatePartner(t *testing.T) {
	h, data := setupAdminHandler(t)
	before := len(data.Partners())

	rec := httptest.NewRecorder()
	h.PartnerCreate(rec, formRequest("POST", "/admin/partials/partners", url.Values{
		"name":     {"テスト店舗"},
		"category": {"GOURMET"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	partners := data.Partners()
	if len(partners) != before+1 {
		t.Fatalf("partner count = %d, want %d", len(partners), before+1)
	}
	if partners[0].Name != "テスト店舗" {
		t.Errorf("newest partner = %q", partners[0].Name)
	}
	if !strings.Contains(rec.Body.String(), "追加しました") {
		t.Error("expected success toast")
	}
}

func TestAdminCreatedPartnerAppearsInBrowser(t *testing.T) {
	adminH, data := setupAdminHandler(t)
	ai := concierge.NewService(concierge.Config{}, slog.Default())
	pageH := NewPageHandler(data, ai, slog.Default())

	rec := httptest.NewRecorder()
	adminH.PartnerCreate(rec, formRequest("POST", "/admin/partials/partners", url.Values{
		"name":     {"新規トラベル"},
		"category": {"TRAVEL"},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	pageH.BrowserSelectCategory(rec, formRequest("POST", "/partials/coupon/category",
		url.Values{"category": {"TRAVEL"}}))
	if !strings.Contains(rec.Body.String(), "新規トラベル") {
		t.Error("new partner missing from the category listing")
	}
}

func TestAdminCreatePartnerValidation(t *testing.T) {
	h, data := setupAdminHandler(t)
	before := len(data.Partners())

	rec := httptest.NewRecorder()
	h.PartnerCreate(rec, formRequest("POST", "/admin/partials/partners", url.Values{
		"name": {""},
	}))

	if !strings.Contains(rec.Body.String(), "名称は必須です") {
		t.Error("expected validation message")
	}
	if len(data.Partners()) != before {
		t.Error("invalid submission must not create a partner")
	}
}

func TestAdminCreateNewsValidation(t *testing.T) {
	h, _ := setupAdminHandler(t)

	rec := httptest.NewRecorder()
	h.NewsCreate(rec, formRequest("POST", "/admin/partials/news", url.Values{
		"title": {"  "},
		"date":  {"2026.01.01"},
	}))

	if !strings.Contains(rec.Body.String(), "タイトルは必須です") {
		t.Error("expected validation message for blank title")
	}
}

func TestAdminCouponCreateValidation(t *testing.T) {
	h, data := setupAdminHandler(t)
	before := len(data.Coupons())

	rec := httptest.NewRecorder()
	h.CouponCreate(rec, formRequest("POST", "/admin/partials/coupons", url.Values{
		"title":      {"半額"},
		"partner_id": {""},
	}))

	if len(data.Coupons()) != before {
		t.Error("invalid submission must not create a coupon")
	}
}

func TestAdminConfigSave(t *testing.T) {
	h, data := setupAdminHandler(t)

	rec := httptest.NewRecorder()
	h.ConfigSave(rec, formRequest("PUT", "/admin/partials/config", url.Values{
		"system_prompt":  {"新しい指示"},
		"knowledge_base": {"新しい知識"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cfg := data.Config()
	if cfg.SystemPrompt != "新しい指示" || cfg.KnowledgeBase != "新しい知識" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestAdminReset(t *testing.T) {
	h, data := setupAdminHandler(t)

	if _, err := data.AddNews(context.Background(), model.NewsItem{Title: "余分", Date: "2026.01.01"}); err != nil {
		t.Fatalf("add news: %v", err)
	}
	extra := len(data.News())

	rec := httptest.NewRecorder()
	h.Reset(rec, httptest.NewRequest("POST", "/admin/partials/reset", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(data.News()) >= extra {
		t.Error("reset should drop the extra news item")
	}
}

func TestUploadUnconfigured(t *testing.T) {
	h, _ := setupAdminHandler(t)

	rec := httptest.NewRecorder()
	h.Upload(rec, httptest.NewRequest("POST", "/admin/upload", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Errorf("content type = %q, want JSON", got)
	}
}
