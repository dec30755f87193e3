// Package seed holds the fixed default dataset used on first run and after a
// full reset. Accessors return fresh copies so callers never alias the seed
// slices.
package seed

import "github.com/tsukuda/clubpass/internal/model"

const DefaultSystemPrompt = `あなたは企業の公式アプリのAIコンシェルジュです。
ユーザーに対して、親しみやすく丁寧な日本語で接してください。
`

const DefaultKnowledgeBase = `
[店舗情報]
・営業時間: 9:00 - 22:00
・定休日: 年中無休
・電話番号: 03-1234-5678
`

var user = model.User{
	ID:       "88029103",
	Name:     "山田 太郎",
	Points:   1250,
	Tier:     model.TierPlatinum,
	Plan:     "プレミアムプラン",
	JoinDate: "2023-01-15",
}

var partners = []model.Partner{
	{ID: "p1", Name: "レイクサイドカントリークラブ", Category: model.CategoryGolfCourse, LogoURL: "https://placehold.jp/150x150.png?text=Golf", Description: "自然豊かな名門コース"},
	{ID: "p2", Name: "ゴルフパートナー", Category: model.CategoryShopping, LogoURL: "https://placehold.jp/150x150.png?text=Shop", Description: "新品・中古クラブ販売"},
	{ID: "p3", Name: "焼肉トラジ", Category: model.CategoryGourmet, LogoURL: "https://placehold.jp/150x150.png?text=Meat", Description: "厳選された極上の焼肉"},
	{ID: "p4", Name: "GDOショップ", Category: model.CategoryOnlineStore, LogoURL: "https://placehold.jp/150x150.png?text=EC", Description: "国内最大級のゴルフEC"},
	{ID: "p5", Name: "オリックスレンタカー", Category: model.CategoryTravel, LogoURL: "https://placehold.jp/150x150.png?text=Car", Description: "会員限定特別優待プラン"},
}

var coupons = []model.Coupon{
	{
		ID:          "c1",
		PartnerID:   "p2",
		Title:       "会計から10%OFF",
		Description: "全店舗でご利用いただけます。",
		Discount:    "10% OFF",
		ExpiryDate:  "2024-12-31",
		UsageType:   model.UsageOneTime,
		Terms:       "他のクーポンとの併用はできません。",
	},
	{
		ID:          "c2",
		PartnerID:   "p3",
		Title:       "生ビール1杯無料",
		Description: "お食事をご注文の方限定。",
		Discount:    "FREE",
		ExpiryDate:  "2024-06-30",
		UsageType:   model.UsageOneTime,
		Terms:       "1回のご来店につき1枚のみ使用可能です。",
	},
	{
		ID:          "c3",
		PartnerID:   "p1",
		Title:       "プレーフィ 1,000円OFF",
		Description: "平日予約限定。",
		Discount:    "¥1,000 OFF",
		ExpiryDate:  "2024-09-30",
		UsageType:   model.UsageOneTime,
		Terms:       "WEB予約時に自動適用されます。",
	},
	{
		ID:          "c4",
		PartnerID:   "p5",
		Title:       "基本料金 20%OFF",
		Description: "全車種対象（一部除く）。",
		Discount:    "20% OFF",
		ExpiryDate:  "2025-03-31",
		UsageType:   model.UsageUnlimited,
		Terms:       "予約時に会員番号をお伝えください。",
	},
}

var competition = model.CompetitionEvent{
	ID:        "comp1",
	Title:     "新春オンラインゴルフコンペ2025",
	Status:    model.CompetitionOngoing,
	StartDate: "2025-01-05",
	EndDate:   "2025-01-31",
	URL:       "https://example.com/competition",
	ImageURL:  "https://picsum.photos/800/400",
}

var news = []model.NewsItem{
	{ID: "n1", Title: "春の新商品が入荷しました", Date: "2024.04.10", ImageURL: "https://picsum.photos/400/200"},
	{ID: "n2", Title: "営業時間変更のお知らせ", Date: "2024.04.01", ImageURL: "https://picsum.photos/400/201"},
	{ID: "n3", Title: "会員ランク制度のリニューアルについて", Date: "2024.03.25", ImageURL: "https://picsum.photos/400/202"},
}

// User returns the seed member.
func User() model.User {
	return user
}

// Partners returns a copy of the seed partner list.
func Partners() []model.Partner {
	out := make([]model.Partner, len(partners))
	copy(out, partners)
	return out
}

// Coupons returns a copy of the seed coupon list.
func Coupons() []model.Coupon {
	out := make([]model.Coupon, len(coupons))
	copy(out, coupons)
	return out
}

// Competition returns the promoted online competition.
func Competition() model.CompetitionEvent {
	return competition
}

// News returns a copy of the seed news list.
func News() []model.NewsItem {
	out := make([]model.NewsItem, len(news))
	copy(out, news)
	return out
}

// Config returns the default concierge configuration.
func Config() model.AppConfig {
	return model.AppConfig{
		SystemPrompt:  DefaultSystemPrompt,
		KnowledgeBase: DefaultKnowledgeBase,
	}
}
