package concierge

import (
	"fmt"
	"strings"

	"github.com/tsukuda/clubpass/internal/model"
)

// TimeOfDay maps a local wall-clock hour to the label woven into prompts.
func TimeOfDay(hour int) string {
	switch {
	case hour < 11:
		return "朝"
	case hour > 17:
		return "夜"
	case hour >= 11 && hour <= 14:
		return "ランチタイム"
	default:
		return "昼下がり"
	}
}

// availableCoupons lists the title and discount of every unused coupon.
func availableCoupons(coupons []model.Coupon) string {
	var parts []string
	for _, c := range coupons {
		if !c.IsUsed {
			parts = append(parts, fmt.Sprintf("%s (%s)", c.Title, c.Discount))
		}
	}
	return strings.Join(parts, ", ")
}

func contextInfo(user model.User, coupons []model.Coupon, timeLabel, knowledgeBase string) string {
	return fmt.Sprintf(`現在の時間は%sです。
ユーザー情報: 名前=%s, ランク=%s, 保有ポイント=%d。
利用可能なクーポンリスト: [%s]。

[ナレッジベース]
%s`, timeLabel, user.Name, user.Tier, user.Points, availableCoupons(coupons), knowledgeBase)
}

func recommendationPrompt(user model.User, coupons []model.Coupon, timeLabel string) string {
	return fmt.Sprintf(`あなたは会員アプリのAIコンシェルジュです。
現在の時間は%sです。
ユーザー情報: 名前=%s, ランク=%s, 保有ポイント=%d。
利用可能なクーポンリスト: [%s]。

上記を踏まえて、挨拶から始まる100文字程度の日本語でおすすめのクーポンを1つ紹介してください。`,
		timeLabel, user.Name, user.Tier, user.Points, availableCoupons(coupons))
}

func chatPrompt(user model.User, coupons []model.Coupon, history []model.ChatMessage, userMessage, timeLabel string, cfg model.AppConfig) string {
	var transcript strings.Builder
	for _, msg := range history {
		label := "Assistant"
		if msg.Role == model.RoleUser {
			label = "User"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", label, msg.Text)
	}

	return fmt.Sprintf(`%s

以下のコンテキスト情報を踏まえて、ユーザーのチャットに返信してください。

[コンテキスト]
%s

[これまでの会話]
%sUser: %s
Assistant:`,
		cfg.SystemPrompt,
		contextInfo(user, coupons, timeLabel, cfg.KnowledgeBase),
		transcript.String(),
		userMessage)
}
