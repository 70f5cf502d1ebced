package temporal

import (
	"time"

	"ConferenceMonitor/internal/domain"
)

// Status classifies a conference's standing relative to now.
type Status int

const (
	// Upcoming means the parsed end date (or start date when no end date
	// was parsed) is on or after today.
	Upcoming Status = iota
	// Past means the parsed date is unambiguously behind us.
	Past
	// DateUnknown means no date could be parsed. Such records are kept
	// and flagged, and only excluded from strictly date-ordered views.
	DateUnknown
)

// Classify determines a conference's temporal status. Refresh ingestion
// drops Past records before they reach the store; DateUnknown records are
// retained.
func Classify(c domain.Conference, now time.Time) Status {
	last := c.End
	if last.IsZero() {
		last = c.Start
	}
	if last.IsZero() {
		return DateUnknown
	}
	if day(last).Before(day(now)) {
		return Past
	}
	return Upcoming
}

// Visible reports whether the conference belongs in "upcoming" listings:
// everything not unambiguously past.
func Visible(c domain.Conference, now time.Time) bool {
	return Classify(c, now) != Past
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
