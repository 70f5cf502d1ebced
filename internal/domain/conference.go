package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Tier is the quality classification assigned to a conference.
type Tier string

const (
	TierAStar    Tier = "A*"
	TierA        Tier = "A"
	TierB        Tier = "B"
	TierC        Tier = "C"
	TierUnranked Tier = "unranked"
)

// Deadline is a single labeled conference deadline. Deadlines keep the
// order they arrived in from the source.
type Deadline struct {
	Label string    `json:"label"`
	Date  string    `json:"date"`
	Due   time.Time `json:"-"`
}

// Conference is the canonical conference record produced by the
// normalizer and persisted by the store.
type Conference struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Dates         string     `json:"dates,omitempty"`
	Start         time.Time  `json:"start_date"`
	End           time.Time  `json:"end_date"`
	Location      string     `json:"location,omitempty"`
	Description   string     `json:"description,omitempty"`
	ResearchAreas []string   `json:"research_areas"`
	Tier          Tier       `json:"tier"`
	Deadlines     []Deadline `json:"deadlines,omitempty"`
	URL           string     `json:"url,omitempty"`
	Fingerprint   string     `json:"-"`
	DateUnknown   bool       `json:"date_unknown,omitempty"`
	LastSeen      time.Time  `json:"last_seen"`
}

// PrimaryDate is the date used for identity and ordering: the start date
// when one was parsed, otherwise the zero time.
func (c Conference) PrimaryDate() time.Time {
	return c.Start
}

// Year returns the conference year, or 0 when no date was parsed.
func (c Conference) Year() int {
	if c.Start.IsZero() {
		return 0
	}
	return c.Start.Year()
}

// ConferenceID derives a stable identifier from the normalized title and
// primary date, so the same conference ingested from two sources gets the
// same id. date may be zero when only a raw date string is known; rawDates
// then takes its place in the key.
func ConferenceID(normalizedTitle string, date time.Time, rawDates string) string {
	key := "conference|" + normalizedTitle + "|"
	if !date.IsZero() {
		key += date.Format("2006-01-02")
	} else {
		key += rawDates
	}
	return shortHash(key)
}

// PaperID derives a stable identifier from the normalized title, the first
// author and the publication year.
func PaperID(normalizedTitle, firstAuthor string, year int) string {
	key := "paper|" + normalizedTitle + "|" + firstAuthor + "|" + strconv.Itoa(year)
	return shortHash(key)
}

func shortHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
