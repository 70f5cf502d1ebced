package normalize

import (
	"errors"
	"testing"
	"time"

	"ConferenceMonitor/internal/collector"
	"ConferenceMonitor/internal/domain"
)

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func TestConferenceNormalization(t *testing.T) {
	t.Parallel()

	p := collector.Payload{
		"Title":       " <b>ICML&nbsp;2026</b> ",
		"when":        "July 13-19, 2026",
		"venue":       "Vancouver,   Canada",
		"description": "<p>Machine learning research.</p>",
		"link":        " https://icml.cc ",
		"topics":      []string{"Machine Learning", "machine learning", "Optimization"},
		"deadlines": []any{
			"Abstract: January 15, 2026",
			map[string]any{"label": "Full paper", "date": "January 22, 2026"},
		},
	}

	c, err := Conference(p, "machine learning", now)
	if err != nil {
		t.Fatalf("Conference returned error: %v", err)
	}

	if c.Title != "ICML 2026" {
		t.Errorf("title not cleaned: %q", c.Title)
	}
	if c.Location != "Vancouver, Canada" {
		t.Errorf("location not cleaned: %q", c.Location)
	}
	if c.Description != "Machine learning research." {
		t.Errorf("description not cleaned: %q", c.Description)
	}
	if c.URL != "https://icml.cc" {
		t.Errorf("url not trimmed: %q", c.URL)
	}
	if c.DateUnknown {
		t.Error("parsed dates should clear the flag")
	}
	if c.Start != time.Date(2026, 7, 13, 0, 0, 0, 0, time.UTC) {
		t.Errorf("start date: %v", c.Start)
	}
	// Requested area leads, source tags deduplicate case-insensitively.
	if len(c.ResearchAreas) != 2 || c.ResearchAreas[0] != "machine learning" || c.ResearchAreas[1] != "Optimization" {
		t.Errorf("research areas: %v", c.ResearchAreas)
	}
	if len(c.Deadlines) != 2 {
		t.Fatalf("deadlines: %+v", c.Deadlines)
	}
	if c.Deadlines[0].Label != "Abstract" || c.Deadlines[0].Due.IsZero() {
		t.Errorf("first deadline: %+v", c.Deadlines[0])
	}
	if c.ID == "" || c.Fingerprint == "" {
		t.Error("id and fingerprint must be derived")
	}
}

func TestConferenceIdentityIsStableAcrossSources(t *testing.T) {
	t.Parallel()

	a, err := Conference(collector.Payload{
		"title": "ICML 2026!",
		"dates": "July 13-19, 2026",
	}, "machine learning", now)
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	b, err := Conference(collector.Payload{
		"name":     "icml 2026",
		"when":     "2026-07-13",
		"location": "Vancouver, Canada",
	}, "machine learning", now)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if a.ID != b.ID {
		t.Errorf("same conference must share an id: %s vs %s", a.ID, b.ID)
	}
}

func TestConferenceMissingTitle(t *testing.T) {
	t.Parallel()

	_, err := Conference(collector.Payload{"dates": "July 2026"}, "ml", now)
	var nErr *domain.NormalizationError
	if !errors.As(err, &nErr) {
		t.Fatalf("expected NormalizationError, got %v", err)
	}
}

func TestConferenceUnparsableDateKept(t *testing.T) {
	t.Parallel()

	c, err := Conference(collector.Payload{
		"title": "Workshop on Continual Learning",
		"dates": "dates to be announced",
	}, "ml", now)
	if err != nil {
		t.Fatalf("Conference returned error: %v", err)
	}
	if !c.DateUnknown {
		t.Error("unparsable date must set DateUnknown")
	}
	if c.Dates != "dates to be announced" {
		t.Errorf("raw date string must be kept: %q", c.Dates)
	}
	if !c.Start.IsZero() {
		t.Errorf("start should be zero: %v", c.Start)
	}
}

func TestPaperNormalization(t *testing.T) {
	t.Parallel()

	p := collector.Payload{
		"title":     "Attention Is All You Need",
		"authors":   []string{"Ashish Vaswani", " et al. ", "Noam Shazeer"},
		"year":      "2017",
		"abstract":  "The dominant sequence   transduction models...",
		"journal":   "NeurIPS",
		"citations": 90000,
	}

	paper, err := Paper(p, "natural language processing", now)
	if err != nil {
		t.Fatalf("Paper returned error: %v", err)
	}
	if len(paper.Authors) != 2 {
		t.Errorf("et al. should be dropped: %v", paper.Authors)
	}
	if paper.Year != 2017 || paper.Citations != 90000 {
		t.Errorf("numeric fields: year=%d citations=%d", paper.Year, paper.Citations)
	}
	if paper.Venue != "NeurIPS" {
		t.Errorf("venue alias: %q", paper.Venue)
	}
	if paper.ResearchArea != "natural language processing" {
		t.Errorf("research area: %q", paper.ResearchArea)
	}
	if paper.ID == "" || paper.Fingerprint == "" {
		t.Error("id and fingerprint must be derived")
	}
}

func TestPaperValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload collector.Payload
	}{
		{"implausible year", collector.Payload{"title": "T", "year": 2120}},
		{"pre-1900 year", collector.Payload{"title": "T", "year": 1492}},
		{"negative citations", collector.Payload{"title": "T", "citations": -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Paper(tt.payload, "ml", now)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestPaperWithoutTitleAndAuthors(t *testing.T) {
	t.Parallel()

	_, err := Paper(collector.Payload{"abstract": "orphan record"}, "ml", now)
	var nErr *domain.NormalizationError
	if !errors.As(err, &nErr) {
		t.Fatalf("expected NormalizationError, got %v", err)
	}
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	got := NormalizeTitle("  The 39th International Conference — on Machine-Learning! ")
	want := "the 39th international conference on machine learning"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
