// Package browser models the coupon tab's three-level drill-down: pick a
// category, pick a partner in it, then browse that partner's coupons. The
// state machine is pure so it can be driven headlessly in tests; filtering
// works over whatever lists the caller passes in.
package browser

import "github.com/tsukuda/clubpass/internal/model"

// Level is the current drill-down depth.
type Level int

const (
	LevelCategory Level = iota
	LevelPartnerList
	LevelCouponList
)

// State is one user's position in the drill-down plus the pending
// use-confirmation, if any.
type State struct {
	level      Level
	category   model.Category
	partner    *model.Partner
	pendingUse string
}

// New returns a State at the category level with nothing selected.
func New() *State {
	return &State{level: LevelCategory}
}

// Level returns the current depth.
func (s *State) Level() Level { return s.level }

// Category returns the selected category; meaningful past LevelCategory.
func (s *State) Category() model.Category { return s.category }

// Partner returns the selected partner, or nil outside LevelCouponList.
func (s *State) Partner() *model.Partner { return s.partner }

// SelectCategory moves from the category grid into that category's partner
// list. Ignored at deeper levels.
func (s *State) SelectCategory(cat model.Category) {
	if s.level != LevelCategory {
		return
	}
	s.category = cat
	s.level = LevelPartnerList
}

// SelectPartner moves from the partner list into that partner's coupons.
// Ignored outside the partner list.
func (s *State) SelectPartner(p model.Partner) {
	if s.level != LevelPartnerList {
		return
	}
	cp := p
	s.partner = &cp
	s.level = LevelCouponList
}

// Back steps up one level, clearing the selection made at the level being
// left. At the category level it is a no-op.
func (s *State) Back() {
	switch s.level {
	case LevelCouponList:
		s.partner = nil
		s.level = LevelPartnerList
	case LevelPartnerList:
		s.category = ""
		s.level = LevelCategory
	}
}

// StartUse begins the use-confirmation flow for a coupon. Only unused
// single-use coupons are eligible; anything else leaves the state unchanged
// and reports false.
func (s *State) StartUse(c model.Coupon) bool {
	if c.UsageType != model.UsageOneTime || c.IsUsed {
		return false
	}
	s.pendingUse = c.ID
	return true
}

// PendingUse returns the coupon id awaiting confirmation, if any.
func (s *State) PendingUse() (string, bool) {
	return s.pendingUse, s.pendingUse != ""
}

// CancelUse abandons the pending confirmation.
func (s *State) CancelUse() {
	s.pendingUse = ""
}

// ConfirmUse clears the pending confirmation and returns the coupon id to
// act on. The caller performs the actual mutation.
func (s *State) ConfirmUse() (string, bool) {
	id := s.pendingUse
	s.pendingUse = ""
	return id, id != ""
}

// PartnersFor returns the partners in the given category, preserving the
// relative order of the source list. An empty result is a valid state.
func PartnersFor(cat model.Category, partners []model.Partner) []model.Partner {
	var out []model.Partner
	for _, p := range partners {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

// CouponsFor returns the coupons belonging to the given partner, preserving
// the relative order of the source list.
func CouponsFor(partnerID string, coupons []model.Coupon) []model.Coupon {
	var out []model.Coupon
	for _, c := range coupons {
		if c.PartnerID == partnerID {
			out = append(out, c)
		}
	}
	return out
}
