package model

// Tier is the membership rank shown on the card.
type Tier string

const (
	TierRegular  Tier = "Regular"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// User is the member the app runs for. Created once at startup and never
// mutated in this version.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Tier     Tier   `json:"tier"`
	Plan     string `json:"plan,omitempty"`
	JoinDate string `json:"joinDate"`
}
