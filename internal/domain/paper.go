package domain

import "time"

// Paper is the canonical paper record. Authors keep byline order.
type Paper struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Authors      []string  `json:"authors"`
	Year         int       `json:"year,omitempty"`
	Abstract     string    `json:"abstract,omitempty"`
	Venue        string    `json:"venue,omitempty"`
	Citations    int       `json:"citations"`
	URL          string    `json:"url,omitempty"`
	ResearchArea string    `json:"research_area"`
	Analysis     string    `json:"analysis,omitempty"`
	Fingerprint  string    `json:"-"`
	LastSeen     time.Time `json:"last_seen"`
}

// FirstAuthor returns the first byline author, or "" for an empty byline.
func (p Paper) FirstAuthor() string {
	if len(p.Authors) == 0 {
		return ""
	}
	return p.Authors[0]
}

// EntityType discriminates the two record kinds flowing through the
// pipeline.
type EntityType string

const (
	EntityConference EntityType = "conference"
	EntityPaper      EntityType = "paper"
)
