package handler

import (
	"net/http"
	"strings"

	"github.com/tsukuda/clubpass/internal/model"
)

// CouponList renders the coupon rows with partner names resolved.
func (h *AdminHandler) CouponList(w http.ResponseWriter, r *http.Request) {
	h.renderPartial(w, "admin-coupon-list", h.couponListData(""))
}

func (h *AdminHandler) couponListData(toast string) map[string]any {
	partners := h.data.Partners()
	names := make(map[string]string, len(partners))
	for _, p := range partners {
		names[p.ID] = p.Name
	}
	data := map[string]any{
		"Coupons":      h.data.Coupons(),
		"PartnerNames": names,
	}
	if toast != "" {
		data["Toast"] = toast
	}
	return data
}

// CouponForm renders the create form, or the edit form when an id is present.
func (h *AdminHandler) CouponForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Partners":   h.data.Partners(),
		"UsageTypes": []model.UsageType{model.UsageOneTime, model.UsageUnlimited},
		"Uploads":    h.images.Configured(),
	}
	if id := r.PathValue("id"); id != "" {
		c := h.data.CouponByID(id)
		if c == nil {
			http.Error(w, "coupon not found", http.StatusNotFound)
			return
		}
		data["Item"] = c
	}
	h.renderPartial(w, "admin-coupon-form", data)
}

func couponFromForm(r *http.Request) (model.Coupon, string) {
	c := model.Coupon{
		PartnerID:   r.FormValue("partner_id"),
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Discount:    strings.TrimSpace(r.FormValue("discount")),
		ExpiryDate:  strings.TrimSpace(r.FormValue("expiry_date")),
		UsageType:   model.UsageType(r.FormValue("usage_type")),
		Terms:       strings.TrimSpace(r.FormValue("terms")),
		ImageURL:    strings.TrimSpace(r.FormValue("image_url")),
	}
	switch {
	case c.Title == "":
		return c, "タイトルは必須です"
	case c.PartnerID == "":
		return c, "提携先を選択してください"
	case c.Discount == "":
		return c, "割引内容は必須です"
	case c.UsageType != model.UsageOneTime && c.UsageType != model.UsageUnlimited:
		return c, "利用タイプを選択してください"
	}
	return c, ""
}

// CouponCreate validates and creates a coupon, then returns to the list.
// Blank description and terms get the fixed default text.
func (h *AdminHandler) CouponCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	c, msg := couponFromForm(r)
	if msg != "" {
		h.formError(w, msg)
		return
	}

	if _, err := h.data.AddCoupon(r.Context(), c); err != nil {
		h.formError(w, "保存に失敗しました。もう一度お試しください。")
		return
	}
	h.renderPartial(w, "admin-coupon-list", h.couponListData("クーポンを追加しました"))
}

// CouponUpdate applies the submitted fields to an existing coupon. The used
// flag is not editable here; it only moves through the member's confirm flow.
func (h *AdminHandler) CouponUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	c, msg := couponFromForm(r)
	if msg != "" {
		h.formError(w, msg)
		return
	}
	c.FillDefaults()

	err := h.data.UpdateCoupon(r.Context(), r.PathValue("id"), model.CouponPatch{
		PartnerID:   &c.PartnerID,
		Title:       &c.Title,
		Description: &c.Description,
		Discount:    &c.Discount,
		ExpiryDate:  &c.ExpiryDate,
		UsageType:   &c.UsageType,
		Terms:       &c.Terms,
		ImageURL:    &c.ImageURL,
	})
	if err != nil {
		h.formError(w, "保存に失敗しました。もう一度お試しください。")
		return
	}
	h.renderPartial(w, "admin-coupon-list", h.couponListData("クーポンを更新しました"))
}

// CouponDeleteConfirm renders the delete confirmation for one row.
func (h *AdminHandler) CouponDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	c := h.data.CouponByID(r.PathValue("id"))
	if c == nil {
		http.Error(w, "coupon not found", http.StatusNotFound)
		return
	}
	h.renderPartial(w, "admin-delete-confirm", map[string]any{
		"Entity": "coupons",
		"ID":     c.ID,
		"Name":   c.Title,
	})
}

// CouponDelete removes the coupon after confirmation.
func (h *AdminHandler) CouponDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.data.DeleteCoupon(r.Context(), r.PathValue("id")); err != nil {
		h.formError(w, "削除に失敗しました。もう一度お試しください。")
		return
	}
	h.renderPartial(w, "admin-coupon-list", h.couponListData("クーポンを削除しました"))
}
