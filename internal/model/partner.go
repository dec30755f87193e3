package model

// Category groups partners in the coupon browser.
type Category string

const (
	CategoryGolfCourse  Category = "GOLF_COURSE"
	CategorySports      Category = "SPORTS"
	CategoryShopping    Category = "SHOPPING"
	CategoryOnlineStore Category = "ONLINE_STORE"
	CategoryGourmet     Category = "GOURMET"
	CategoryTravel      Category = "TRAVEL"
	CategoryBeauty      Category = "BEAUTY"
	CategoryService     Category = "SERVICE"
	CategoryOther       Category = "OTHER"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{
		CategoryGolfCourse,
		CategorySports,
		CategoryShopping,
		CategoryOnlineStore,
		CategoryGourmet,
		CategoryTravel,
		CategoryBeauty,
		CategoryService,
		CategoryOther,
	}
}

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool {
	for _, cat := range Categories() {
		if c == cat {
			return true
		}
	}
	return false
}

// Label returns the Japanese display label for the category.
func (c Category) Label() string {
	switch c {
	case CategoryGolfCourse:
		return "ゴルフ場"
	case CategorySports:
		return "練習場・スポーツ"
	case CategoryShopping:
		return "ショッピング"
	case CategoryOnlineStore:
		return "オンラインショップ"
	case CategoryGourmet:
		return "グルメ"
	case CategoryTravel:
		return "旅行・宿泊"
	case CategoryBeauty:
		return "美容・健康"
	case CategoryService:
		return "サービス"
	default:
		return "その他"
	}
}

// Partner is a merchant offering coupons, grouped by category.
type Partner struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	LogoURL     string   `json:"logoUrl"`
	Description string   `json:"description,omitempty"`
}

// PartnerPatch carries a partial update; nil fields are left unchanged.
type PartnerPatch struct {
	Name        *string
	Category    *Category
	LogoURL     *string
	Description *string
}

// Apply merges the patch into p.
func (p *Partner) Apply(patch PartnerPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.LogoURL != nil {
		p.LogoURL = *patch.LogoURL
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
}
