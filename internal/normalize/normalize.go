package normalize

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ConferenceMonitor/internal/collector"
	"ConferenceMonitor/internal/domain"
)

// Field aliases seen across sources. Lookup is case-insensitive.
var (
	titleKeys    = []string{"title", "name", "conference_name", "conference_title"}
	datesKeys    = []string{"dates", "date", "when"}
	locationKeys = []string{"location", "venue", "place", "city"}
	descKeys     = []string{"description", "summary", "about"}
	urlKeys      = []string{"url", "link", "href"}
	areaKeys     = []string{"research_areas", "areas", "topics", "tags"}
	deadlineKeys = []string{"deadlines", "important_dates"}
	authorKeys   = []string{"authors", "author", "byline"}
	yearKeys     = []string{"year", "publication_year"}
	citeKeys     = []string{"citations", "citation_count", "cited_by"}
	abstractKeys = []string{"abstract", "summary", "description"}
	venueKeys    = []string{"venue", "journal", "published_in"}
)

// Conference converts one raw source payload into a canonical conference
// record. A payload without any usable title fails with a
// NormalizationError; an unparsable date string does not fail the record,
// the raw string is kept and DateUnknown is set.
func Conference(p collector.Payload, area string, now time.Time) (domain.Conference, error) {
	title := CleanText(stringField(p, titleKeys...))
	if title == "" {
		return domain.Conference{}, &domain.NormalizationError{Entity: domain.EntityConference, Reason: "missing title"}
	}

	rawDates := strings.TrimSpace(stringField(p, datesKeys...))
	start, end, parsed := ParseDateRange(rawDates)

	c := domain.Conference{
		Title:       title,
		Dates:       rawDates,
		Start:       start,
		End:         end,
		Location:    CleanText(stringField(p, locationKeys...)),
		Description: CleanText(stringField(p, descKeys...)),
		URL:         strings.TrimSpace(stringField(p, urlKeys...)),
		Tier:        domain.TierUnranked,
		DateUnknown: !parsed,
		LastSeen:    now,
	}

	c.ResearchAreas = mergeAreas(listField(p, areaKeys...), area)
	c.Deadlines = deadlinesField(p)

	norm := NormalizeTitle(title)
	c.Fingerprint = ConferenceFingerprint(norm, c.Year(), c.Location)
	c.ID = domain.ConferenceID(norm, c.Start, rawDates)

	return c, nil
}

// Paper converts one raw source payload into a canonical paper record.
// A payload with neither a title nor an author fails; an implausible year
// or a negative citation count fails with a ValidationError.
func Paper(p collector.Payload, area string, now time.Time) (domain.Paper, error) {
	title := CleanText(stringField(p, titleKeys...))
	authors := authorsField(p)
	if title == "" && len(authors) == 0 {
		return domain.Paper{}, &domain.NormalizationError{Entity: domain.EntityPaper, Reason: "missing title and authors"}
	}

	year, err := yearField(p, now)
	if err != nil {
		return domain.Paper{}, err
	}

	citations, err := citationsField(p)
	if err != nil {
		return domain.Paper{}, err
	}

	paper := domain.Paper{
		Title:        title,
		Authors:      authors,
		Year:         year,
		Abstract:     CleanText(stringField(p, abstractKeys...)),
		Venue:        CleanText(stringField(p, venueKeys...)),
		Citations:    citations,
		URL:          strings.TrimSpace(stringField(p, urlKeys...)),
		ResearchArea: strings.TrimSpace(area),
		LastSeen:     now,
	}

	norm := NormalizeTitle(title)
	first := strings.ToLower(paper.FirstAuthor())
	paper.Fingerprint = PaperFingerprint(norm, first, year)
	paper.ID = domain.PaperID(norm, first, year)

	return paper, nil
}

// ConferenceFingerprint builds the dedup key from normalized title, year
// and venue.
func ConferenceFingerprint(normalizedTitle string, year int, location string) string {
	return fmt.Sprintf("%s|%d|%s", normalizedTitle, year, strings.ToLower(strings.TrimSpace(location)))
}

// PaperFingerprint builds the dedup key from normalized title, first
// author and year.
func PaperFingerprint(normalizedTitle, firstAuthor string, year int) string {
	return fmt.Sprintf("%s|%s|%d", normalizedTitle, firstAuthor, year)
}

var wsExpr = regexp.MustCompile(`\s+`)

// CleanText strips markup and HTML entities left over from scraped pages
// and collapses whitespace. Original casing is preserved.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<>") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	s = html.UnescapeString(s)
	// Entity-decoded non-breaking spaces are not \s for the regexp.
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(wsExpr.ReplaceAllString(s, " "))
}

var punctExpr = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// NormalizeTitle lowercases, strips punctuation and collapses whitespace.
// Used for identity and fingerprints; display titles keep their casing.
func NormalizeTitle(s string) string {
	s = strings.ToLower(CleanText(s))
	s = punctExpr.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits a normalized title into words.
func Tokens(s string) []string {
	return strings.Fields(NormalizeTitle(s))
}

func stringField(p collector.Payload, keys ...string) string {
	v, ok := lookup(p, keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return ""
	}
}

func listField(p collector.Payload, keys ...string) []string {
	v, ok := lookup(p, keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

func lookup(p collector.Payload, keys ...string) (any, bool) {
	for _, key := range keys {
		for k, v := range p {
			if strings.EqualFold(k, key) {
				return v, true
			}
		}
	}
	return nil, false
}

func mergeAreas(tags []string, area string) []string {
	out := make([]string, 0, len(tags)+1)
	seen := map[string]struct{}{}
	add := func(tag string) {
		tag = CleanText(tag)
		if tag == "" {
			return
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	add(area)
	for _, tag := range tags {
		add(tag)
	}
	return out
}

// deadlinesField accepts both shapes seen in the wild: a list of
// "Label: date" strings and a list of {label, date} objects. Source order
// is preserved.
func deadlinesField(p collector.Payload) []domain.Deadline {
	v, ok := lookup(p, deadlineKeys...)
	if !ok {
		return nil
	}

	items, ok := v.([]any)
	if !ok {
		if strs, ok := v.([]string); ok {
			items = make([]any, len(strs))
			for i, s := range strs {
				items[i] = s
			}
		} else {
			return nil
		}
	}

	var out []domain.Deadline
	for _, item := range items {
		switch t := item.(type) {
		case string:
			label, date := splitDeadline(t)
			if label == "" && date == "" {
				continue
			}
			out = append(out, newDeadline(label, date))
		case map[string]any:
			label, _ := t["label"].(string)
			if label == "" {
				label, _ = t["name"].(string)
			}
			date, _ := t["date"].(string)
			if label == "" && date == "" {
				continue
			}
			out = append(out, newDeadline(label, date))
		}
	}
	return out
}

func newDeadline(label, date string) domain.Deadline {
	d := domain.Deadline{Label: CleanText(label), Date: strings.TrimSpace(date)}
	if due, ok := parseDate(d.Date); ok {
		d.Due = due
	}
	return d
}

func splitDeadline(s string) (label, date string) {
	s = CleanText(s)
	if i := strings.Index(s, ":"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return "", s
}

func authorsField(p collector.Payload) []string {
	raw := listField(p, authorKeys...)
	out := make([]string, 0, len(raw))
	for _, a := range raw {
		a = CleanText(a)
		if a == "" || strings.EqualFold(a, "et al.") || strings.EqualFold(a, "et al") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func yearField(p collector.Payload, now time.Time) (int, error) {
	v, ok := lookup(p, yearKeys...)
	if !ok {
		return 0, nil
	}
	year, ok := asInt(v)
	if !ok {
		return 0, &domain.ValidationError{Field: "year", Reason: fmt.Sprintf("not a number: %v", v)}
	}
	if year == 0 {
		return 0, nil
	}
	if year < 1900 || year > now.Year()+10 {
		return 0, &domain.ValidationError{Field: "year", Reason: fmt.Sprintf("out of range: %d", year)}
	}
	return year, nil
}

func citationsField(p collector.Payload) (int, error) {
	v, ok := lookup(p, citeKeys...)
	if !ok {
		return 0, nil
	}
	n, ok := asInt(v)
	if !ok {
		return 0, &domain.ValidationError{Field: "citations", Reason: fmt.Sprintf("not a number: %v", v)}
	}
	if n < 0 {
		return 0, &domain.ValidationError{Field: "citations", Reason: fmt.Sprintf("negative: %d", n)}
	}
	return n, nil
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
