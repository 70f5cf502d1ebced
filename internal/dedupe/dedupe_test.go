package dedupe

import (
	"testing"
	"time"

	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/normalize"
	"ConferenceMonitor/internal/tier"
)

var now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func conference(t *testing.T, title, dates, location string) domain.Conference {
	t.Helper()
	start, end, parsed := normalize.ParseDateRange(dates)
	norm := normalize.NormalizeTitle(title)
	return domain.Conference{
		ID:          domain.ConferenceID(norm, start, dates),
		Title:       title,
		Dates:       dates,
		Start:       start,
		End:         end,
		Location:    location,
		DateUnknown: !parsed,
		Fingerprint: normalize.ConferenceFingerprint(norm, start.Year(), location),
		LastSeen:    now,
	}
}

func decisionsByAction(decisions []ConferenceDecision) map[Action]int {
	out := map[Action]int{}
	for _, d := range decisions {
		out[d.Action]++
	}
	return out
}

func TestConferencesNewRecord(t *testing.T) {
	t.Parallel()

	d := New(tier.Default())
	batch := []domain.Conference{conference(t, "ICML 2026", "July 13-19, 2026", "Vancouver, Canada")}

	decisions := d.Conferences(batch, nil)
	if len(decisions) != 1 || decisions[0].Action != ActionNew {
		t.Fatalf("expected one ActionNew, got %+v", decisions)
	}
}

func TestConferencesExactFingerprintMerges(t *testing.T) {
	t.Parallel()

	d := New(tier.Default())
	existing := conference(t, "ICML 2026", "July 13-19, 2026", "Vancouver, Canada")
	candidate := conference(t, "ICML 2026", "July 13-19, 2026", "Vancouver, Canada")

	decisions := d.Conferences([]domain.Conference{candidate}, []domain.Conference{existing})
	if len(decisions) != 1 || decisions[0].Action != ActionMerge {
		t.Fatalf("expected merge, got %+v", decisions)
	}
	if decisions[0].Existing.ID != existing.ID {
		t.Fatalf("merge must target the existing record")
	}
}

func TestConferencesAcronymVsSpelledOut(t *testing.T) {
	t.Parallel()

	d := New(tier.Default())
	existing := conference(t, "ICML 2026", "July 13-19, 2026", "Vancouver, Canada")
	candidate := conference(t, "Thirty-Ninth International Conference on Machine Learning 2026", "", "")

	decisions := d.Conferences([]domain.Conference{candidate}, []domain.Conference{existing})
	if len(decisions) != 1 || decisions[0].Action != ActionMerge {
		t.Fatalf("spelled-out variant should merge into the acronym record, got %+v", decisions)
	}
}

func TestConferencesSameVenueDifferentYears(t *testing.T) {
	t.Parallel()

	d := New(tier.Default())
	existing := conference(t, "ICML 2026", "July 13-19, 2026", "Vancouver, Canada")
	candidate := conference(t, "ICML 2027", "July 12-18, 2027", "Vienna, Austria")

	decisions := d.Conferences([]domain.Conference{candidate}, []domain.Conference{existing})
	if len(decisions) != 1 || decisions[0].Action != ActionNew {
		t.Fatalf("different editions must stay separate, got %+v", decisions)
	}
}

func TestConferencesYearFromTitleWhenDateUnparsed(t *testing.T) {
	t.Parallel()

	d := New(tier.Default())
	existing := conference(t, "ICML 2026", "July 13-19, 2026", "Vancouver, Canada")
	// No parsable date, but the year in the title pins the edition.
	candidate := conference(t, "International Conference on Machine Learning 2027", "TBA", "")

	decisions := d.Conferences([]domain.Conference{candidate}, []domain.Conference{existing})
	if len(decisions) != 1 || decisions[0].Action != ActionNew {
		t.Fatalf("title year 2027 must prevent merging into 2026, got %+v", decisions)
	}
}

func TestConferencesNestedVenueNamesStaySeparate(t *testing.T) {
	t.Parallel()

	d := New(tier.Default())
	existing := conference(t, "ACL 2026", "July 6-11, 2026", "Vienna, Austria")
	candidate := conference(t, "2026 Annual Conference of the North American Chapter of the Association for Computational Linguistics", "April 20-25, 2026", "")

	decisions := d.Conferences([]domain.Conference{candidate}, []domain.Conference{existing})
	if len(decisions) != 1 || decisions[0].Action != ActionNew {
		t.Fatalf("NAACL must not fold into same-year ACL, got %+v", decisions)
	}
}

func TestConferencesInBatchCollapseKeepsMostComplete(t *testing.T) {
	t.Parallel()

	d := New(tier.Default())
	sparse := conference(t, "NeurIPS 2026", "December 6-12, 2026", "")
	complete := conference(t, "NeurIPS 2026", "December 6-12, 2026", "Sydney, Australia")
	complete.URL = "https://neurips.cc"
	complete.Description = "Conference on neural information processing systems."

	decisions := d.Conferences([]domain.Conference{sparse, complete}, nil)
	byAction := decisionsByAction(decisions)
	if byAction[ActionNew] != 1 || byAction[ActionDiscard] != 1 {
		t.Fatalf("expected one new, one discard: %+v", decisions)
	}
	for _, dec := range decisions {
		if dec.Action == ActionNew && dec.Candidate.Location != "Sydney, Australia" {
			t.Fatalf("representative should be the most complete candidate: %+v", dec.Candidate)
		}
	}
}

func TestConferencesSimilarTitlesSameYear(t *testing.T) {
	t.Parallel()

	d := New(tier.Default())
	existing := conference(t, "Workshop on Continual Learning for Robotics 2026", "May 4, 2026", "")
	candidate := conference(t, "Workshop on Continual Learning for Robotics", "May 4, 2026", "Lyon, France")

	decisions := d.Conferences([]domain.Conference{candidate}, []domain.Conference{existing})
	if len(decisions) != 1 || decisions[0].Action != ActionMerge {
		t.Fatalf("near-identical titles with equal years should merge, got %+v", decisions)
	}
}

func TestMergeConferenceFillsGapsOnly(t *testing.T) {
	t.Parallel()

	existing := conference(t, "ICML 2026", "July 13-19, 2026", "Vancouver, Canada")
	existing.Deadlines = []domain.Deadline{{Label: "Full paper", Date: "January 22, 2026"}}

	candidate := conference(t, "International Conference on Machine Learning 2026", "July 13-19, 2026", "SHOULD NOT WIN")
	candidate.Description = "Machine learning conference."
	candidate.Deadlines = []domain.Deadline{
		{Label: "full paper", Date: "different date"},
		{Label: "Workshop", Date: "March 1, 2026"},
	}

	merged := MergeConference(existing, candidate, now)

	if merged.ID != existing.ID || merged.Fingerprint != existing.Fingerprint {
		t.Error("identity must be preserved")
	}
	if merged.Location != "Vancouver, Canada" {
		t.Errorf("populated location overwritten: %q", merged.Location)
	}
	if merged.Description != "Machine learning conference." {
		t.Errorf("empty description not filled: %q", merged.Description)
	}
	if len(merged.Deadlines) != 2 {
		t.Fatalf("deadlines must union by label: %+v", merged.Deadlines)
	}
	if merged.Deadlines[0].Date != "January 22, 2026" {
		t.Errorf("existing deadline replaced: %+v", merged.Deadlines[0])
	}
	if merged.Deadlines[1].Label != "Workshop" {
		t.Errorf("new label not appended: %+v", merged.Deadlines)
	}
	if !merged.LastSeen.Equal(now) {
		t.Errorf("last seen not bumped: %v", merged.LastSeen)
	}
}

func TestMergeConferenceBackfillsDates(t *testing.T) {
	t.Parallel()

	existing := conference(t, "Workshop on Continual Learning", "TBA", "")
	candidate := conference(t, "Workshop on Continual Learning", "May 4, 2026", "")

	merged := MergeConference(existing, candidate, now)
	if merged.DateUnknown {
		t.Error("flag must clear once a date arrives")
	}
	if merged.Start.IsZero() || merged.Dates != "May 4, 2026" {
		t.Errorf("dates not backfilled: %+v", merged)
	}
}

func TestPapersDedup(t *testing.T) {
	t.Parallel()

	d := New(nil)
	mk := func(title, first string, year, citations int) domain.Paper {
		norm := normalize.NormalizeTitle(title)
		return domain.Paper{
			ID:          domain.PaperID(norm, first, year),
			Title:       title,
			Authors:     []string{first},
			Year:        year,
			Citations:   citations,
			Fingerprint: normalize.PaperFingerprint(norm, first, year),
		}
	}

	existing := mk("Attention Is All You Need", "ashish vaswani", 2017, 500)
	same := mk("Attention is all you need!", "ashish vaswani", 2017, 90000)
	other := mk("Attention Is All You Need", "ashish vaswani", 2018, 0)

	decisions := d.Papers([]domain.Paper{same, other}, []domain.Paper{existing})
	if len(decisions) != 2 {
		t.Fatalf("expected 2 decisions, got %+v", decisions)
	}
	var merges, news int
	for _, dec := range decisions {
		switch dec.Action {
		case ActionMerge:
			merges++
			merged := MergePaper(dec.Existing, dec.Candidate, now)
			if merged.Citations != 90000 {
				t.Errorf("citations must move forward: %d", merged.Citations)
			}
		case ActionNew:
			news++
		}
	}
	if merges != 1 || news != 1 {
		t.Fatalf("expected one merge and one new: %+v", decisions)
	}
}

func TestMergePaperCitationsNeverRegress(t *testing.T) {
	t.Parallel()

	existing := domain.Paper{ID: "p", Citations: 100}
	candidate := domain.Paper{Citations: 40}
	merged := MergePaper(existing, candidate, now)
	if merged.Citations != 100 {
		t.Errorf("citations regressed: %d", merged.Citations)
	}
}
