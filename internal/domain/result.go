package domain

import "time"

// RefreshResult summarizes one refresh cycle. It is reported to the
// caller and discarded, never persisted.
type RefreshResult struct {
	Areas      []string          `json:"areas"`
	Found      int               `json:"found"`
	Added      int               `json:"added"`
	Updated    int               `json:"updated"`
	Duplicates int               `json:"duplicates"`
	Invalid    int               `json:"invalid"`
	Failures   map[string]string `json:"failures,omitempty"`
	Elapsed    time.Duration     `json:"elapsed"`
}

// Merge folds a per-area (or per-entity) result into the aggregate.
func (r *RefreshResult) Merge(other RefreshResult) {
	r.Found += other.Found
	r.Added += other.Added
	r.Updated += other.Updated
	r.Duplicates += other.Duplicates
	r.Invalid += other.Invalid
	for area, msg := range other.Failures {
		r.Fail(area, msg)
	}
}

// Fail records a per-area failure without aborting the run.
func (r *RefreshResult) Fail(area, msg string) {
	if r.Failures == nil {
		r.Failures = map[string]string{}
	}
	r.Failures[area] = msg
}
