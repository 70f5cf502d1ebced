package usecase

import (
	"context"
	"testing"
	"time"

	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/infrastructure/storage"
)

func seedPapers(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	papers := []domain.Paper{
		{
			ID: "p1", Title: "Transformer Models for Language Understanding",
			Authors: []string{"Ada"}, Year: 2025, Citations: 120,
			ResearchArea: "natural language processing",
			Abstract:     "Transformer architectures dominate language benchmarks.",
		},
		{
			ID: "p2", Title: "Scaling Transformer Training",
			Authors: []string{"Grace"}, Year: 2026, Citations: 40,
			ResearchArea: "natural language processing",
			Abstract:     "Training large transformer stacks efficiently.",
		},
		{
			ID: "p3", Title: "Graph Networks for Molecules",
			Authors: []string{"Alan"}, Year: 2026, Citations: 300,
			ResearchArea: "machine learning",
		},
	}
	for _, p := range papers {
		p.LastSeen = time.Now()
		if err := store.UpsertPaper(ctx, p); err != nil {
			t.Fatalf("seed paper: %v", err)
		}
	}
	return store
}

func TestTrendsForArea(t *testing.T) {
	store := seedPapers(t)
	analyzer := NewTrendAnalyzer(store)

	report, err := analyzer.Trends(context.Background(), "natural language processing")
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if report.PaperCount != 2 {
		t.Fatalf("paper count got %d, want 2", report.PaperCount)
	}
	if len(report.Keywords) == 0 || report.Keywords[0].Word != "transformer" {
		t.Fatalf("expected transformer as top keyword, got %+v", report.Keywords)
	}
	if report.Keywords[0].Count != 2 {
		t.Fatalf("transformer should count once per paper, got %d", report.Keywords[0].Count)
	}
	if len(report.TopCited) == 0 || report.TopCited[0].ID != "p1" {
		t.Fatalf("top cited mismatch: %+v", report.TopCited)
	}
}

func TestTrendsAllAreas(t *testing.T) {
	store := seedPapers(t)
	analyzer := NewTrendAnalyzer(store)

	report, err := analyzer.Trends(context.Background(), "")
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if report.PaperCount != 3 {
		t.Fatalf("paper count got %d, want 3", report.PaperCount)
	}
	if report.TopCited[0].ID != "p3" {
		t.Fatalf("most cited paper should lead: %+v", report.TopCited[0])
	}
}
