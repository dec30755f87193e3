package model

// CompetitionStatus tracks where an online competition sits in its lifecycle.
type CompetitionStatus string

const (
	CompetitionUpcoming CompetitionStatus = "upcoming"
	CompetitionOngoing  CompetitionStatus = "ongoing"
	CompetitionEnded    CompetitionStatus = "ended"
)

// CompetitionEvent is a members-only online competition promoted on the card
// tab. Dates are display text.
type CompetitionEvent struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Status    CompetitionStatus `json:"status"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
	URL       string            `json:"url"`
	ImageURL  string            `json:"imageUrl"`
}

// Active reports whether the competition banner should be shown. Ended
// competitions disappear from the card tab.
func (e CompetitionEvent) Active() bool {
	return e.Status == CompetitionUpcoming || e.Status == CompetitionOngoing
}
