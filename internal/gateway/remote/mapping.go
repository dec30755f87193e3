package remote

import "github.com/tsukuda/clubpass/internal/model"

// The remote service stores snake_case columns; the app works in camelCase
// structs. Each entity gets one explicit row type plus a to/from pair so the
// translation is testable in isolation.

type partnerRow struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func partnerToRow(p model.Partner) partnerRow {
	return partnerRow{
		Name:        p.Name,
		Category:    string(p.Category),
		LogoURL:     p.LogoURL,
		Description: p.Description,
	}
}

func partnerFromRow(r partnerRow) model.Partner {
	return model.Partner{
		ID:          r.ID,
		Name:        r.Name,
		Category:    model.Category(r.Category),
		LogoURL:     r.LogoURL,
		Description: r.Description,
	}
}

func partnerPatchRow(p model.PartnerPatch) map[string]any {
	row := map[string]any{}
	if p.Name != nil {
		row["name"] = *p.Name
	}
	if p.Category != nil {
		row["category"] = string(*p.Category)
	}
	if p.LogoURL != nil {
		row["logo_url"] = *p.LogoURL
	}
	if p.Description != nil {
		row["description"] = *p.Description
	}
	return row
}

type couponRow struct {
	ID          string `json:"id,omitempty"`
	PartnerID   string `json:"partner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Discount    string `json:"discount"`
	ExpiryDate  string `json:"expiry_date"`
	UsageType   string `json:"usage_type"`
	ImageURL    string `json:"image_url"`
	Terms       string `json:"terms"`
	IsUsed      bool   `json:"is_used"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func couponToRow(c model.Coupon) couponRow {
	return couponRow{
		PartnerID:   c.PartnerID,
		Title:       c.Title,
		Description: c.Description,
		Discount:    c.Discount,
		ExpiryDate:  c.ExpiryDate,
		UsageType:   string(c.UsageType),
		ImageURL:    c.ImageURL,
		Terms:       c.Terms,
		IsUsed:      c.IsUsed,
	}
}

func couponFromRow(r couponRow) model.Coupon {
	return model.Coupon{
		ID:          r.ID,
		PartnerID:   r.PartnerID,
		Title:       r.Title,
		Description: r.Description,
		Discount:    r.Discount,
		ExpiryDate:  r.ExpiryDate,
		UsageType:   model.UsageType(r.UsageType),
		ImageURL:    r.ImageURL,
		Terms:       r.Terms,
		IsUsed:      r.IsUsed,
	}
}

func couponPatchRow(p model.CouponPatch) map[string]any {
	row := map[string]any{}
	if p.PartnerID != nil {
		row["partner_id"] = *p.PartnerID
	}
	if p.Title != nil {
		row["title"] = *p.Title
	}
	if p.Description != nil {
		row["description"] = *p.Description
	}
	if p.Discount != nil {
		row["discount"] = *p.Discount
	}
	if p.ExpiryDate != nil {
		row["expiry_date"] = *p.ExpiryDate
	}
	if p.UsageType != nil {
		row["usage_type"] = string(*p.UsageType)
	}
	if p.IsUsed != nil {
		row["is_used"] = *p.IsUsed
	}
	if p.Terms != nil {
		row["terms"] = *p.Terms
	}
	if p.ImageURL != nil {
		row["image_url"] = *p.ImageURL
	}
	return row
}

type newsRow struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	ImageURL  string `json:"image_url"`
	CreatedAt string `json:"created_at,omitempty"`
}

func newsToRow(n model.NewsItem) newsRow {
	return newsRow{
		Title:    n.Title,
		Date:     n.Date,
		ImageURL: n.ImageURL,
	}
}

func newsFromRow(r newsRow) model.NewsItem {
	return model.NewsItem{
		ID:       r.ID,
		Title:    r.Title,
		Date:     r.Date,
		ImageURL: r.ImageURL,
	}
}

func newsPatchRow(p model.NewsPatch) map[string]any {
	row := map[string]any{}
	if p.Title != nil {
		row["title"] = *p.Title
	}
	if p.Date != nil {
		row["date"] = *p.Date
	}
	if p.ImageURL != nil {
		row["image_url"] = *p.ImageURL
	}
	return row
}

// Config is stored as key-value rows, upserted by key.
type configRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

const (
	configKeySystemPrompt  = "systemPrompt"
	configKeyKnowledgeBase = "knowledgeBase"
)

func configToRows(patch model.ConfigPatch) []configRow {
	var rows []configRow
	if patch.SystemPrompt != nil {
		rows = append(rows, configRow{Key: configKeySystemPrompt, Value: *patch.SystemPrompt})
	}
	if patch.KnowledgeBase != nil {
		rows = append(rows, configRow{Key: configKeyKnowledgeBase, Value: *patch.KnowledgeBase})
	}
	return rows
}

func configFromRows(rows []configRow, defaults model.AppConfig) model.AppConfig {
	cfg := defaults
	for _, r := range rows {
		switch r.Key {
		case configKeySystemPrompt:
			cfg.SystemPrompt = r.Value
		case configKeyKnowledgeBase:
			cfg.KnowledgeBase = r.Value
		}
	}
	return cfg
}
