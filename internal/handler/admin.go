package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tsukuda/clubpass/internal/appdata"
	"github.com/tsukuda/clubpass/internal/imagestore"
	"github.com/tsukuda/clubpass/internal/model"
	"github.com/tsukuda/clubpass/web"
)

// AdminHandler renders the admin console: CRUD over news, coupons, and
// partners, the concierge config form, image upload, and the global reset.
type AdminHandler struct {
	data      *appdata.Store
	images    *imagestore.Service
	templates *template.Template
	logger    *slog.Logger
}

// NewAdminHandler creates the admin console handler.
func NewAdminHandler(data *appdata.Store, images *imagestore.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		data:      data,
		images:    images,
		templates: template.Must(template.ParseFS(web.Templates, "templates/*.html")),
		logger:    logger,
	}
}

func (h *AdminHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render template", "name", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (h *AdminHandler) renderPartial(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render partial", "name", name, "error", err)
		fmt.Fprint(w, `<div class="alert">表示エラーが発生しました</div>`)
	}
}

func (h *AdminHandler) formError(w http.ResponseWriter, msg string) {
	h.renderPartial(w, "form-error", map[string]any{"Error": msg})
}

// Console renders the admin page shell with the news list active.
func (h *AdminHandler) Console(w http.ResponseWriter, r *http.Request) {
	if h.data.Loading() {
		h.render(w, "loading", map[string]any{"Admin": true})
		return
	}
	h.render(w, "admin", map[string]any{
		"News": h.data.News(),
	})
}

// --- news ---

// NewsList renders the news rows with per-row edit and delete actions.
func (h *AdminHandler) NewsList(w http.ResponseWriter, r *http.Request) {
	h.renderPartial(w, "admin-news-list", map[string]any{"News": h.data.News()})
}

// NewsForm renders the create form, or the edit form when an id is present.
func (h *AdminHandler) NewsForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Uploads": h.images.Configured()}
	if id := r.PathValue("id"); id != "" {
		item := h.data.NewsByID(id)
		if item == nil {
			http.Error(w, "news not found", http.StatusNotFound)
			return
		}
		data["Item"] = item
	}
	h.renderPartial(w, "admin-news-form", data)
}

// NewsCreate validates and creates a news item, then returns to the list.
func (h *AdminHandler) NewsCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		h.formError(w, "タイトルは必須です")
		return
	}

	_, err := h.data.AddNews(r.Context(), model.NewsItem{
		Title:    title,
		Date:     strings.TrimSpace(r.FormValue("date")),
		ImageURL: strings.TrimSpace(r.FormValue("image_url")),
	})
	if err != nil {
		h.formError(w, "保存に失敗しました。もう一度お試しください。")
		return
	}

	h.renderPartial(w, "admin-news-list", map[string]any{
		"News":  h.data.News(),
		"Toast": "お知らせを追加しました",
	})
}

// NewsUpdate applies the submitted fields to an existing item.
func (h *AdminHandler) NewsUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		h.formError(w, "タイトルは必須です")
		return
	}
	date := strings.TrimSpace(r.FormValue("date"))
	imageURL := strings.TrimSpace(r.FormValue("image_url"))

	err := h.data.UpdateNews(r.Context(), r.PathValue("id"), model.NewsPatch{
		Title:    &title,
		Date:     &date,
		ImageURL: &imageURL,
	})
	if err != nil {
		h.formError(w, "保存に失敗しました。もう一度お試しください。")
		return
	}

	h.renderPartial(w, "admin-news-list", map[string]any{
		"News":  h.data.News(),
		"Toast": "お知らせを更新しました",
	})
}

// NewsDeleteConfirm renders the delete confirmation for one row.
func (h *AdminHandler) NewsDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	item := h.data.NewsByID(r.PathValue("id"))
	if item == nil {
		http.Error(w, "news not found", http.StatusNotFound)
		return
	}
	h.renderPartial(w, "admin-delete-confirm", map[string]any{
		"Entity": "news",
		"ID":     item.ID,
		"Name":   item.Title,
	})
}

// NewsDelete removes the item after confirmation.
func (h *AdminHandler) NewsDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.data.DeleteNews(r.Context(), r.PathValue("id")); err != nil {
		h.formError(w, "削除に失敗しました。もう一度お試しください。")
		return
	}
	h.renderPartial(w, "admin-news-list", map[string]any{
		"News":  h.data.News(),
		"Toast": "お知らせを削除しました",
	})
}

// --- config ---

// ConfigForm renders the concierge configuration editor.
func (h *AdminHandler) ConfigForm(w http.ResponseWriter, r *http.Request) {
	h.renderPartial(w, "admin-config-form", map[string]any{"Config": h.data.Config()})
}

// ConfigSave persists both text areas on explicit save. Either field may be
// blank; a blank value is stored as-is.
func (h *AdminHandler) ConfigSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	systemPrompt := r.FormValue("system_prompt")
	knowledgeBase := r.FormValue("knowledge_base")

	err := h.data.UpdateConfig(r.Context(), model.ConfigPatch{
		SystemPrompt:  &systemPrompt,
		KnowledgeBase: &knowledgeBase,
	})
	if err != nil {
		h.formError(w, "保存に失敗しました。もう一度お試しください。")
		return
	}

	h.renderPartial(w, "admin-config-form", map[string]any{
		"Config": h.data.Config(),
		"Toast":  "AI設定を保存しました",
	})
}

// --- reset ---

// ResetConfirm renders the destructive-reset confirmation.
func (h *AdminHandler) ResetConfirm(w http.ResponseWriter, r *http.Request) {
	h.renderPartial(w, "admin-reset-confirm", nil)
}

// Reset restores the seed dataset. Only reachable from the confirmation.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.data.Reset(r.Context()); err != nil {
		h.formError(w, "初期化に失敗しました。もう一度お試しください。")
		return
	}
	h.renderPartial(w, "admin-news-list", map[string]any{
		"News":  h.data.News(),
		"Toast": "全てのデータを初期状態に戻しました",
	})
}
