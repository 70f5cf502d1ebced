package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ConferenceMonitor/internal/dedupe"
	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/normalize"
	"ConferenceMonitor/internal/ports"
	"ConferenceMonitor/internal/temporal"
	"ConferenceMonitor/internal/tier"
)

// Refresher runs one refresh cycle per entity type: collect raw payloads
// area by area, normalize, drop elapsed conferences, classify tiers,
// resolve duplicates and persist. Areas are isolated: a failing area is
// recorded in the result and never aborts its siblings. Store failures
// are fatal.
type Refresher struct {
	store          ports.Store
	source         ports.SourceCollector
	dedupe         *dedupe.Deduplicator
	tiers          *tier.Classifier
	analyzer       ports.QueryClient
	collectTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewRefresher wires the refresh pipeline. analyzer may be nil; paper
// analysis is then skipped.
func NewRefresher(store ports.Store, source ports.SourceCollector, dd *dedupe.Deduplicator,
	tiers *tier.Classifier, analyzer ports.QueryClient, collectTimeout time.Duration, log *slog.Logger) *Refresher {
	if collectTimeout <= 0 {
		collectTimeout = time.Minute
	}
	return &Refresher{
		store:          store,
		source:         source,
		dedupe:         dd,
		tiers:          tiers,
		analyzer:       analyzer,
		collectTimeout: collectTimeout,
		logger:         log,
		now:            time.Now,
	}
}

// RefreshConferences runs the conference pipeline for the given areas.
func (r *Refresher) RefreshConferences(ctx context.Context, areaList []string) (domain.RefreshResult, error) {
	started := r.now()
	result := domain.RefreshResult{Areas: areaList}

	for _, area := range areaList {
		areaResult, err := r.refreshConferenceArea(ctx, area)
		result.Merge(areaResult)
		if err != nil {
			return result, err
		}
	}

	result.Elapsed = r.now().Sub(started)
	r.info("conference refresh done",
		"areas", len(areaList), "found", result.Found, "added", result.Added,
		"updated", result.Updated, "duplicates", result.Duplicates, "invalid", result.Invalid,
		"failures", len(result.Failures))
	return result, nil
}

func (r *Refresher) refreshConferenceArea(ctx context.Context, area string) (domain.RefreshResult, error) {
	var result domain.RefreshResult
	now := r.now()

	collectCtx, cancel := context.WithTimeout(ctx, r.collectTimeout)
	payloads, err := r.source.Collect(collectCtx, area, domain.EntityConference)
	cancel()
	if err != nil {
		r.warn("area collection failed", "area", area, "entity", "conference", "error", err)
		result.Fail(area, err.Error())
		return result, nil
	}
	result.Found = len(payloads)

	var batch []domain.Conference
	for _, p := range payloads {
		c, err := normalize.Conference(p, area, now)
		if err != nil {
			if recoverable(err) {
				result.Invalid++
				continue
			}
			return result, err
		}
		// Elapsed conferences never enter the store; records without a
		// parsable date stay, flagged DateUnknown.
		if temporal.Classify(c, now) == temporal.Past {
			result.Invalid++
			continue
		}
		if r.tiers != nil {
			c.Tier = r.tiers.Classify(c.Title)
		}
		batch = append(batch, c)
	}

	existing, err := r.store.ConferencesByArea(ctx, area)
	if err != nil {
		return result, fmt.Errorf("load existing conferences: %w", err)
	}

	for _, decision := range r.dedupe.Conferences(batch, existing) {
		switch decision.Action {
		case dedupe.ActionNew:
			if err := r.store.UpsertConference(ctx, decision.Candidate); err != nil {
				return result, err
			}
			result.Added++
		case dedupe.ActionMerge:
			merged := dedupe.MergeConference(decision.Existing, decision.Candidate, now)
			if err := r.store.UpsertConference(ctx, merged); err != nil {
				return result, err
			}
			result.Updated++
		case dedupe.ActionDiscard:
			result.Duplicates++
		}
	}

	return result, nil
}

// RefreshPapers runs the paper pipeline for the given areas.
func (r *Refresher) RefreshPapers(ctx context.Context, areaList []string) (domain.RefreshResult, error) {
	started := r.now()
	result := domain.RefreshResult{Areas: areaList}

	for _, area := range areaList {
		areaResult, err := r.refreshPaperArea(ctx, area)
		result.Merge(areaResult)
		if err != nil {
			return result, err
		}
	}

	result.Elapsed = r.now().Sub(started)
	r.info("paper refresh done",
		"areas", len(areaList), "found", result.Found, "added", result.Added,
		"updated", result.Updated, "duplicates", result.Duplicates, "invalid", result.Invalid,
		"failures", len(result.Failures))
	return result, nil
}

func (r *Refresher) refreshPaperArea(ctx context.Context, area string) (domain.RefreshResult, error) {
	var result domain.RefreshResult
	now := r.now()

	collectCtx, cancel := context.WithTimeout(ctx, r.collectTimeout)
	payloads, err := r.source.Collect(collectCtx, area, domain.EntityPaper)
	cancel()
	if err != nil {
		r.warn("area collection failed", "area", area, "entity", "paper", "error", err)
		result.Fail(area, err.Error())
		return result, nil
	}
	result.Found = len(payloads)

	var batch []domain.Paper
	for _, p := range payloads {
		paper, err := normalize.Paper(p, area, now)
		if err != nil {
			if recoverable(err) {
				result.Invalid++
				continue
			}
			return result, err
		}
		batch = append(batch, paper)
	}

	existing, err := r.store.PapersByArea(ctx, area)
	if err != nil {
		return result, fmt.Errorf("load existing papers: %w", err)
	}

	for _, decision := range r.dedupe.Papers(batch, existing) {
		switch decision.Action {
		case dedupe.ActionNew:
			paper := decision.Candidate
			r.analyze(ctx, &paper)
			if err := r.store.UpsertPaper(ctx, paper); err != nil {
				return result, err
			}
			result.Added++
		case dedupe.ActionMerge:
			merged := dedupe.MergePaper(decision.Existing, decision.Candidate, now)
			if err := r.store.UpsertPaper(ctx, merged); err != nil {
				return result, err
			}
			result.Updated++
		case dedupe.ActionDiscard:
			result.Duplicates++
		}
	}

	return result, nil
}

// analyze asks the LLM for a short summary of a newly added paper. The
// feature is best effort; failures are logged and the paper is stored
// without an analysis.
func (r *Refresher) analyze(ctx context.Context, p *domain.Paper) {
	if r.analyzer == nil || p.Analysis != "" {
		return
	}
	analysis, err := r.analyzer.AnalyzePaper(ctx, *p)
	if err != nil {
		r.warn("paper analysis failed", "paper", p.ID, "error", err)
		return
	}
	p.Analysis = analysis
}

// recoverable reports whether a normalization failure affects only the
// single record.
func recoverable(err error) bool {
	var nErr *domain.NormalizationError
	var vErr *domain.ValidationError
	return errors.As(err, &nErr) || errors.As(err, &vErr)
}

func (r *Refresher) info(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Refresher) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
