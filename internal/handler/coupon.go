package handler

import (
	"net/http"

	"github.com/tsukuda/clubpass/internal/browser"
	"github.com/tsukuda/clubpass/internal/model"
)

// Coupon renders the coupon tab around the current drill-down state.
func (h *PageHandler) Coupon(w http.ResponseWriter, r *http.Request) {
	if h.data.Loading() {
		h.render(w, "loading", map[string]any{"Tab": TabCoupon})
		return
	}
	h.renderTab(w, TabCoupon, map[string]any{
		"Browser": h.browserView(),
	})
}

// browserView assembles the template data for the current drill-down level.
func (h *PageHandler) browserView() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()

	view := map[string]any{
		"Level": h.browser.Level(),
	}
	switch h.browser.Level() {
	case browser.LevelCategory:
		view["Categories"] = model.Categories()
	case browser.LevelPartnerList:
		cat := h.browser.Category()
		view["Category"] = cat
		view["Partners"] = browser.PartnersFor(cat, h.data.Partners())
	case browser.LevelCouponList:
		p := h.browser.Partner()
		view["Category"] = h.browser.Category()
		view["Partner"] = p
		if p != nil {
			view["Coupons"] = browser.CouponsFor(p.ID, h.data.Coupons())
		}
	}
	return view
}

// BrowserSelectCategory drills from the category grid into a partner list.
func (h *PageHandler) BrowserSelectCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	cat := model.Category(r.FormValue("category"))
	if !cat.Valid() {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	h.browser.SelectCategory(cat)
	h.mu.Unlock()

	h.renderPartial(w, "coupon-browser", h.browserView())
}

// BrowserSelectPartner drills from the partner list into its coupons.
func (h *PageHandler) BrowserSelectPartner(w http.ResponseWriter, r *http.Request) {
	p := h.data.PartnerByID(r.PathValue("id"))
	if p == nil {
		http.Error(w, "partner not found", http.StatusNotFound)
		return
	}

	h.mu.Lock()
	h.browser.SelectPartner(*p)
	h.mu.Unlock()

	h.renderPartial(w, "coupon-browser", h.browserView())
}

// BrowserBack steps the drill-down up one level. A no-op at the top.
func (h *PageHandler) BrowserBack(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.browser.Back()
	h.mu.Unlock()

	h.renderPartial(w, "coupon-browser", h.browserView())
}

// CouponModal shows the detail modal for one coupon.
func (h *PageHandler) CouponModal(w http.ResponseWriter, r *http.Request) {
	c := h.data.CouponByID(r.PathValue("id"))
	if c == nil {
		http.Error(w, "coupon not found", http.StatusNotFound)
		return
	}
	h.renderPartial(w, "coupon-modal", map[string]any{
		"Coupon":  c,
		"Partner": h.data.PartnerByID(c.PartnerID),
	})
}

// CouponUseConfirm opens the use-confirmation dialog. Only unused one-time
// coupons get here; unlimited coupons show a static message with no action.
func (h *PageHandler) CouponUseConfirm(w http.ResponseWriter, r *http.Request) {
	c := h.data.CouponByID(r.PathValue("id"))
	if c == nil {
		http.Error(w, "coupon not found", http.StatusNotFound)
		return
	}

	h.mu.Lock()
	ok := h.browser.StartUse(*c)
	h.mu.Unlock()

	if !ok {
		h.renderPartial(w, "coupon-modal", map[string]any{
			"Coupon":  c,
			"Partner": h.data.PartnerByID(c.PartnerID),
		})
		return
	}
	h.renderPartial(w, "use-confirm", map[string]any{"Coupon": c})
}

// CouponUse marks the pending coupon as used and closes the dialog.
func (h *PageHandler) CouponUse(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	id, ok := h.browser.ConfirmUse()
	h.mu.Unlock()

	if !ok || id != r.PathValue("id") {
		http.Error(w, "no pending confirmation", http.StatusConflict)
		return
	}

	if err := h.data.UseCoupon(r.Context(), id); err != nil {
		h.logger.Error("use coupon", "id", id, "error", err)
		h.renderPartial(w, "form-error", map[string]any{"Error": "クーポンの利用処理に失敗しました。もう一度お試しください。"})
		return
	}

	// The coupon can vanish between UseCoupon and the re-read if an admin
	// deletes it concurrently.
	c := h.data.CouponByID(id)
	if c == nil {
		h.renderPartial(w, "coupon-browser", h.browserView())
		return
	}
	h.renderPartial(w, "coupon-modal", map[string]any{
		"Coupon":   c,
		"Partner":  h.data.PartnerByID(c.PartnerID),
		"JustUsed": true,
	})
}

// CouponUseCancel abandons the pending confirmation and returns to the modal.
func (h *PageHandler) CouponUseCancel(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	id, _ := h.browser.PendingUse()
	h.browser.CancelUse()
	h.mu.Unlock()

	if c := h.data.CouponByID(id); c != nil {
		h.renderPartial(w, "coupon-modal", map[string]any{
			"Coupon":  c,
			"Partner": h.data.PartnerByID(c.PartnerID),
		})
		return
	}
	h.renderPartial(w, "coupon-browser", h.browserView())
}
