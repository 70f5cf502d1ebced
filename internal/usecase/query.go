package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ConferenceMonitor/internal/ports"
)

// Querier answers free-form questions about tracked records by handing
// the stored data and the question to the LLM client.
type Querier struct {
	store  ports.Store
	client ports.QueryClient
}

// NewQuerier wires store and client. client may be nil; Ask then reports
// the feature as unavailable.
func NewQuerier(store ports.Store, client ports.QueryClient) *Querier {
	return &Querier{store: store, client: client}
}

// Ask serializes all tracked records and forwards the question.
func (q *Querier) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question")
	}
	if q.client == nil {
		return "", fmt.Errorf("query client is not configured")
	}

	conferences, err := q.store.Conferences(ctx)
	if err != nil {
		return "", fmt.Errorf("load conferences: %w", err)
	}
	papers, err := q.store.Papers(ctx)
	if err != nil {
		return "", fmt.Errorf("load papers: %w", err)
	}

	records, err := json.Marshal(map[string]any{
		"conferences": conferences,
		"papers":      papers,
	})
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}

	return q.client.Query(ctx, question, records)
}
