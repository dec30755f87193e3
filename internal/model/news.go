package model

// NewsItem is a dated announcement shown on the home tab. The date is
// free-form display text, not parsed.
type NewsItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	ImageURL string `json:"imageUrl"`
}

// NewsPatch carries a partial update; nil fields are left unchanged.
type NewsPatch struct {
	Title    *string
	Date     *string
	ImageURL *string
}

// Apply merges the patch into n.
func (n *NewsItem) Apply(patch NewsPatch) {
	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Date != nil {
		n.Date = *patch.Date
	}
	if patch.ImageURL != nil {
		n.ImageURL = *patch.ImageURL
	}
}
