package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/tsukuda/clubpass/internal/appdata"
	"github.com/tsukuda/clubpass/internal/concierge"
	"github.com/tsukuda/clubpass/internal/handler"
	"github.com/tsukuda/clubpass/internal/imagestore"
	"github.com/tsukuda/clubpass/internal/middleware"
	ws "github.com/tsukuda/clubpass/internal/websocket"
	"github.com/tsukuda/clubpass/web"
)

// Server wires the data store, adapters, and handlers into one router.
type Server struct {
	data        *appdata.Store
	hub         *ws.Hub
	pageH       *handler.PageHandler
	adminH      *handler.AdminHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New assembles the server around an already-created data store.
func New(data *appdata.Store, ai *concierge.Service, images *imagestore.Service, hub *ws.Hub, logger *slog.Logger) *Server {
	return &Server{
		data:        data,
		hub:         hub,
		pageH:       handler.NewPageHandler(data, ai, logger.With("component", "pages")),
		adminH:      handler.NewAdminHandler(data, images, logger.With("component", "admin")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Router builds the full route table wrapped in request logging.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Member pages
	mux.HandleFunc("GET /", s.pageH.Home)
	mux.HandleFunc("GET /card", s.pageH.Card)
	mux.HandleFunc("GET /coupon", s.pageH.Coupon)
	mux.HandleFunc("GET /profile", s.pageH.Profile)

	// Concierge partials. Rate limited: the send button is disabled while a
	// request is in flight, and the limiter rejects anything that slips
	// past that.
	mux.HandleFunc("GET /partials/recommendation", s.aiLimited(s.pageH.Recommendation))
	mux.HandleFunc("POST /partials/chat", s.aiLimited(s.pageH.ChatSend))

	// Coupon browser partials
	mux.HandleFunc("POST /partials/coupon/category", s.pageH.BrowserSelectCategory)
	mux.HandleFunc("POST /partials/coupon/partner/{id}", s.pageH.BrowserSelectPartner)
	mux.HandleFunc("POST /partials/coupon/back", s.pageH.BrowserBack)
	mux.HandleFunc("GET /partials/coupon/{id}/modal", s.pageH.CouponModal)
	mux.HandleFunc("GET /partials/coupon/{id}/use", s.pageH.CouponUseConfirm)
	mux.HandleFunc("POST /partials/coupon/{id}/use", s.pageH.CouponUse)
	mux.HandleFunc("POST /partials/coupon/use/cancel", s.pageH.CouponUseCancel)

	// Admin console
	mux.HandleFunc("GET /admin", s.adminH.Console)
	mux.HandleFunc("POST /admin/upload", s.adminH.Upload)

	mux.HandleFunc("GET /admin/partials/news", s.adminH.NewsList)
	mux.HandleFunc("GET /admin/partials/news/new", s.adminH.NewsForm)
	mux.HandleFunc("GET /admin/partials/news/{id}/edit", s.adminH.NewsForm)
	mux.HandleFunc("POST /admin/partials/news", s.adminH.NewsCreate)
	mux.HandleFunc("PUT /admin/partials/news/{id}", s.adminH.NewsUpdate)
	mux.HandleFunc("GET /admin/partials/news/{id}/delete", s.adminH.NewsDeleteConfirm)
	mux.HandleFunc("DELETE /admin/partials/news/{id}", s.adminH.NewsDelete)

	mux.HandleFunc("GET /admin/partials/coupons", s.adminH.CouponList)
	mux.HandleFunc("GET /admin/partials/coupons/new", s.adminH.CouponForm)
	mux.HandleFunc("GET /admin/partials/coupons/{id}/edit", s.adminH.CouponForm)
	mux.HandleFunc("POST /admin/partials/coupons", s.adminH.CouponCreate)
	mux.HandleFunc("PUT /admin/partials/coupons/{id}", s.adminH.CouponUpdate)
	mux.HandleFunc("GET /admin/partials/coupons/{id}/delete", s.adminH.CouponDeleteConfirm)
	mux.HandleFunc("DELETE /admin/partials/coupons/{id}", s.adminH.CouponDelete)

	mux.HandleFunc("GET /admin/partials/partners", s.adminH.PartnerList)
	mux.HandleFunc("GET /admin/partials/partners/new", s.adminH.PartnerForm)
	mux.HandleFunc("GET /admin/partials/partners/{id}/edit", s.adminH.PartnerForm)
	mux.HandleFunc("POST /admin/partials/partners", s.adminH.PartnerCreate)
	mux.HandleFunc("PUT /admin/partials/partners/{id}", s.adminH.PartnerUpdate)
	mux.HandleFunc("GET /admin/partials/partners/{id}/delete", s.adminH.PartnerDeleteConfirm)
	mux.HandleFunc("DELETE /admin/partials/partners/{id}", s.adminH.PartnerDelete)

	mux.HandleFunc("GET /admin/partials/config", s.adminH.ConfigForm)
	mux.HandleFunc("PUT /admin/partials/config", s.adminH.ConfigSave)
	mux.HandleFunc("GET /admin/partials/reset", s.adminH.ResetConfirm)
	mux.HandleFunc("POST /admin/partials/reset", s.adminH.Reset)

	// Infrastructure
	mux.Handle("GET /static/", http.FileServer(http.FS(web.Static)))
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) aiLimited(h http.HandlerFunc) http.HandlerFunc {
	limited := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)(h)
	return limited.ServeHTTP
}
