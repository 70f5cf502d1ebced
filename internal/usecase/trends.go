package usecase

import (
	"context"
	"fmt"
	"sort"

	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/normalize"
	"ConferenceMonitor/internal/ports"
)

const (
	topKeywords = 10
	topCited    = 5
)

// TrendAnalyzer derives research trends from the stored paper set.
type TrendAnalyzer struct {
	store ports.Store
}

// NewTrendAnalyzer wires the store.
func NewTrendAnalyzer(store ports.Store) *TrendAnalyzer {
	return &TrendAnalyzer{store: store}
}

// Keyword is one term with its occurrence count.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TrendReport summarizes the stored papers for one area (or all areas).
type TrendReport struct {
	Area       string         `json:"area,omitempty"`
	PaperCount int            `json:"paper_count"`
	Keywords   []Keyword      `json:"keywords"`
	TopCited   []domain.Paper `json:"top_cited"`
}

// Trends builds a report over the papers of one area; an empty area
// covers everything stored.
func (t *TrendAnalyzer) Trends(ctx context.Context, area string) (TrendReport, error) {
	var (
		papers []domain.Paper
		err    error
	)
	if area == "" {
		papers, err = t.store.Papers(ctx)
	} else {
		papers, err = t.store.PapersByArea(ctx, area)
	}
	if err != nil {
		return TrendReport{}, fmt.Errorf("load papers: %w", err)
	}

	report := TrendReport{Area: area, PaperCount: len(papers)}

	counts := map[string]int{}
	for _, p := range papers {
		seen := map[string]struct{}{}
		for _, tok := range append(normalize.Tokens(p.Title), normalize.Tokens(p.Abstract)...) {
			if len(tok) < 4 {
				continue
			}
			if _, stop := stopwords[tok]; stop {
				continue
			}
			// Count each term once per paper so long abstracts do not
			// dominate the ranking.
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			counts[tok]++
		}
	}

	keywords := make([]Keyword, 0, len(counts))
	for word, count := range counts {
		keywords = append(keywords, Keyword{Word: word, Count: count})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Word < keywords[j].Word
	})
	if len(keywords) > topKeywords {
		keywords = keywords[:topKeywords]
	}
	report.Keywords = keywords

	cited := make([]domain.Paper, len(papers))
	copy(cited, papers)
	sort.Slice(cited, func(i, j int) bool {
		if cited[i].Citations != cited[j].Citations {
			return cited[i].Citations > cited[j].Citations
		}
		return cited[i].Title < cited[j].Title
	})
	if len(cited) > topCited {
		cited = cited[:topCited]
	}
	report.TopCited = cited

	return report, nil
}

var stopwords = map[string]struct{}{
	"with": {}, "from": {}, "this": {}, "that": {}, "their": {}, "these": {},
	"than": {}, "have": {}, "been": {}, "were": {}, "which": {}, "into": {},
	"based": {}, "using": {}, "paper": {}, "approach": {}, "method": {},
	"methods": {}, "model": {}, "models": {}, "results": {}, "show": {},
	"propose": {}, "proposed": {}, "present": {}, "novel": {}, "task": {},
	"tasks": {}, "data": {}, "over": {}, "such": {}, "both": {}, "also": {},
	"more": {}, "most": {}, "while": {}, "when": {}, "where": {}, "they": {},
}
