package model

// UsageType distinguishes single-use coupons (tracked) from repeatable ones.
type UsageType string

const (
	UsageOneTime   UsageType = "OneTime"
	UsageUnlimited UsageType = "Unlimited"
)

// Text used when an admin leaves the optional free-text fields blank.
// Description and terms are always present on a stored coupon.
const (
	DefaultCouponDescription = "詳細は店舗スタッフまでお問い合わせください。"
	DefaultCouponTerms       = "本クーポンは予告なく変更・終了する場合があります。"
)

// Coupon is a redeemable offer tied to one partner.
type Coupon struct {
	ID          string    `json:"id"`
	PartnerID   string    `json:"partnerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Discount    string    `json:"discount"`
	ExpiryDate  string    `json:"expiryDate"`
	UsageType   UsageType `json:"usageType"`
	IsUsed      bool      `json:"isUsed"`
	Terms       string    `json:"terms"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

// FillDefaults substitutes the fixed default text for blank description and
// terms. Called at creation time so stored coupons always carry both.
func (c *Coupon) FillDefaults() {
	if c.Description == "" {
		c.Description = DefaultCouponDescription
	}
	if c.Terms == "" {
		c.Terms = DefaultCouponTerms
	}
}

// CouponPatch carries a partial update; nil fields are left unchanged.
type CouponPatch struct {
	PartnerID   *string
	Title       *string
	Description *string
	Discount    *string
	ExpiryDate  *string
	UsageType   *UsageType
	IsUsed      *bool
	Terms       *string
	ImageURL    *string
}

// Apply merges the patch into c.
func (c *Coupon) Apply(patch CouponPatch) {
	if patch.PartnerID != nil {
		c.PartnerID = *patch.PartnerID
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Discount != nil {
		c.Discount = *patch.Discount
	}
	if patch.ExpiryDate != nil {
		c.ExpiryDate = *patch.ExpiryDate
	}
	if patch.UsageType != nil {
		c.UsageType = *patch.UsageType
	}
	if patch.IsUsed != nil {
		c.IsUsed = *patch.IsUsed
	}
	if patch.Terms != nil {
		c.Terms = *patch.Terms
	}
	if patch.ImageURL != nil {
		c.ImageURL = *patch.ImageURL
	}
}
