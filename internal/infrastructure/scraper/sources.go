package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ConferenceMonitor/internal/collector"
	"ConferenceMonitor/internal/config"
	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/ports"
)

// MultiSource fans one collection request out to every configured source
// of the requested entity type. A single failing source is logged and
// skipped; the area only fails when no source delivered anything and at
// least one errored.
type MultiSource struct {
	registry *collector.Registry
	sources  []collector.Source
	limit    int
	logger   *slog.Logger
}

var _ ports.SourceCollector = (*MultiSource)(nil)

// NewMultiSource wires the collector registry with config-defined sources.
func NewMultiSource(reg *collector.Registry, sources []config.SourceConfig, limit int, log *slog.Logger) *MultiSource {
	return &MultiSource{
		registry: reg,
		sources:  toSources(sources),
		limit:    limit,
		logger:   log,
	}
}

// Collect executes every matching source strategy and aggregates their
// raw payloads.
func (m *MultiSource) Collect(ctx context.Context, area string, entity domain.EntityType) ([]collector.Payload, error) {
	if m.registry == nil {
		return nil, fmt.Errorf("collector registry is not configured")
	}

	var (
		aggregated []collector.Payload
		failures   []error
		attempted  int
	)

	for _, src := range m.sources {
		if src.Entity != entity {
			continue
		}
		attempted++

		strategy, err := m.registry.Resolve(src.Collector)
		if err != nil {
			failures = append(failures, fmt.Errorf("source %s: %w", src.Name, err))
			continue
		}

		results, err := strategy.Collect(ctx, collector.Request{Area: area, Source: src, Limit: m.limit})
		if err != nil {
			m.warn("source failed", "source", src.Name, "area", area, "error", err)
			failures = append(failures, fmt.Errorf("source %s: %w", src.Name, err))
			continue
		}

		m.debug("source produced payloads", "source", src.Name, "area", area, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if len(aggregated) == 0 && len(failures) > 0 && len(failures) == attempted {
		return nil, &domain.SourceError{Area: area, Err: errors.Join(failures...)}
	}

	return aggregated, nil
}

func toSources(cfg []config.SourceConfig) []collector.Source {
	out := make([]collector.Source, 0, len(cfg))
	for _, src := range cfg {
		out = append(out, collector.Source{
			Name:      src.Name,
			Entity:    entityFromString(src.Entity),
			URL:       src.URL,
			Selectors: src.Selectors,
			Options:   src.Options,
			Collector: src.Collector,
		})
	}
	return out
}

func entityFromString(s string) domain.EntityType {
	if s == string(domain.EntityPaper) {
		return domain.EntityPaper
	}
	return domain.EntityConference
}

func (m *MultiSource) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *MultiSource) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
