package handler

import (
	"net/http"
	"strings"

	"github.com/tsukuda/clubpass/internal/model"
)

// PartnerList renders the partner rows.
func (h *AdminHandler) PartnerList(w http.ResponseWriter, r *http.Request) {
	h.renderPartial(w, "admin-partner-list", map[string]any{"Partners": h.data.Partners()})
}

// PartnerForm renders the create form, or the edit form when an id is present.
func (h *AdminHandler) PartnerForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Categories": model.Categories(),
		"Uploads":    h.images.Configured(),
	}
	if id := r.PathValue("id"); id != "" {
		p := h.data.PartnerByID(id)
		if p == nil {
			http.Error(w, "partner not found", http.StatusNotFound)
			return
		}
		data["Item"] = p
	}
	h.renderPartial(w, "admin-partner-form", data)
}

func partnerFromForm(r *http.Request) (model.Partner, string) {
	p := model.Partner{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Category:    model.Category(r.FormValue("category")),
		LogoURL:     strings.TrimSpace(r.FormValue("logo_url")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	switch {
	case p.Name == "":
		return p, "名称は必須です"
	case !p.Category.Valid():
		return p, "カテゴリーを選択してください"
	}
	return p, ""
}

// PartnerCreate validates and creates a partner, then returns to the list.
func (h *AdminHandler) PartnerCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	p, msg := partnerFromForm(r)
	if msg != "" {
		h.formError(w, msg)
		return
	}

	if _, err := h.data.AddPartner(r.Context(), p); err != nil {
		h.formError(w, "保存に失敗しました。もう一度お試しください。")
		return
	}
	h.renderPartial(w, "admin-partner-list", map[string]any{
		"Partners": h.data.Partners(),
		"Toast":    "提携先を追加しました",
	})
}

// PartnerUpdate applies the submitted fields to an existing partner.
func (h *AdminHandler) PartnerUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	p, msg := partnerFromForm(r)
	if msg != "" {
		h.formError(w, msg)
		return
	}

	err := h.data.UpdatePartner(r.Context(), r.PathValue("id"), model.PartnerPatch{
		Name:        &p.Name,
		Category:    &p.Category,
		LogoURL:     &p.LogoURL,
		Description: &p.Description,
	})
	if err != nil {
		h.formError(w, "保存に失敗しました。もう一度お試しください。")
		return
	}
	h.renderPartial(w, "admin-partner-list", map[string]any{
		"Partners": h.data.Partners(),
		"Toast":    "提携先を更新しました",
	})
}

// PartnerDeleteConfirm renders the delete confirmation for one row.
func (h *AdminHandler) PartnerDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	p := h.data.PartnerByID(r.PathValue("id"))
	if p == nil {
		http.Error(w, "partner not found", http.StatusNotFound)
		return
	}
	h.renderPartial(w, "admin-delete-confirm", map[string]any{
		"Entity": "partners",
		"ID":     p.ID,
		"Name":   p.Name,
	})
}

// PartnerDelete removes the partner after confirmation. Coupons pointing at
// it are left in place.
func (h *AdminHandler) PartnerDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.data.DeletePartner(r.Context(), r.PathValue("id")); err != nil {
		h.formError(w, "削除に失敗しました。もう一度お試しください。")
		return
	}
	h.renderPartial(w, "admin-partner-list", map[string]any{
		"Partners": h.data.Partners(),
		"Toast":    "提携先を削除しました",
	})
}
