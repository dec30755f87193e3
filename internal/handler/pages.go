package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tsukuda/clubpass/internal/appdata"
	"github.com/tsukuda/clubpass/internal/browser"
	"github.com/tsukuda/clubpass/internal/concierge"
	"github.com/tsukuda/clubpass/internal/model"
	"github.com/tsukuda/clubpass/internal/seed"
	"github.com/tsukuda/clubpass/web"
)

// Tab names the four end-user views.
type Tab string

const (
	TabHome    Tab = "HOME"
	TabCard    Tab = "CARD"
	TabCoupon  Tab = "COUPON"
	TabProfile Tab = "PROFILE"
)

// PageHandler renders the tabbed member experience: home feed, membership
// card, coupon browser, and profile. It owns the per-session drill-down
// state and the ephemeral chat transcript.
type PageHandler struct {
	data      *appdata.Store
	concierge *concierge.Service
	templates *template.Template
	logger    *slog.Logger

	mu      sync.Mutex
	browser *browser.State
	chat    []model.ChatMessage
}

// NewPageHandler creates the member-facing handler.
func NewPageHandler(data *appdata.Store, ai *concierge.Service, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		data:      data,
		concierge: ai,
		templates: template.Must(template.ParseFS(web.Templates, "templates/*.html")),
		logger:    logger,
		browser:   browser.New(),
	}
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render template", "name", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (h *PageHandler) renderPartial(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render partial", "name", name, "error", err)
		fmt.Fprint(w, `<div class="alert">表示エラーが発生しました</div>`)
	}
}

// renderTab renders a full tab page, or the neutral loading page while the
// initial fetch is in flight.
func (h *PageHandler) renderTab(w http.ResponseWriter, tab Tab, data map[string]any) {
	if h.data.Loading() {
		h.render(w, "loading", map[string]any{"Tab": tab})
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["Tab"] = tab
	data["User"] = h.data.User()
	h.render(w, string(tab), data)
}

// Home renders the home tab. Loading the page starts a fresh chat session;
// the transcript is not persisted across reloads.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	// ?admin=1 selects the admin console for the session.
	if isAdminRequest(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	h.mu.Lock()
	h.chat = nil
	h.mu.Unlock()

	h.renderTab(w, TabHome, map[string]any{
		"News": h.data.News(),
	})
}

// Card renders the membership card tab. The competition banner is shown only
// while the promoted event is upcoming or ongoing.
func (h *PageHandler) Card(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if comp := seed.Competition(); comp.Active() {
		data["Competition"] = comp
	}
	h.renderTab(w, TabCard, data)
}

// Profile renders the profile tab.
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.renderTab(w, TabProfile, nil)
}

// isAdminRequest reports whether the query string opts into admin mode.
func isAdminRequest(r *http.Request) bool {
	switch r.URL.Query().Get("admin") {
	case "1", "true":
		return true
	}
	return false
}

// Recommendation fetches a one-shot concierge greeting for the home tab.
// The triggering button stays disabled until the response swaps in.
func (h *PageHandler) Recommendation(w http.ResponseWriter, r *http.Request) {
	text := h.concierge.GetRecommendation(r.Context(), h.data.User(), h.data.Coupons())
	h.renderPartial(w, "recommendation", map[string]any{"Text": text})
}

// ChatSend appends the user's message and the concierge reply to the
// session transcript and re-renders it.
func (h *PageHandler) ChatSend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	message := r.FormValue("message")
	if message == "" {
		h.mu.Lock()
		transcript := h.chatCopyLocked()
		h.mu.Unlock()
		h.renderPartial(w, "chat-messages", map[string]any{"Messages": transcript})
		return
	}

	h.mu.Lock()
	history := h.chatCopyLocked()
	h.mu.Unlock()

	reply := h.concierge.GetChatReply(r.Context(), h.data.User(), h.data.Coupons(), history, message, h.data.Config())

	h.mu.Lock()
	h.chat = append(h.chat,
		model.ChatMessage{Role: model.RoleUser, Text: message},
		model.ChatMessage{Role: model.RoleModel, Text: reply},
	)
	transcript := h.chatCopyLocked()
	h.mu.Unlock()

	h.renderPartial(w, "chat-messages", map[string]any{"Messages": transcript})
}

func (h *PageHandler) chatCopyLocked() []model.ChatMessage {
	out := make([]model.ChatMessage, len(h.chat))
	copy(out, h.chat)
	return out
}
