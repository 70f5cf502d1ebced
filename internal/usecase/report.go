package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/ports"
	"ConferenceMonitor/internal/temporal"
)

// Reporter builds upcoming-deadline digests and publishes them to the
// configured notification channel.
type Reporter struct {
	store    ports.Store
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewReporter wires store and notifier; notifier may be nil, which turns
// SendDigest into a no-op.
func NewReporter(store ports.Store, notifier ports.Notifier, log *slog.Logger) *Reporter {
	return &Reporter{store: store, notifier: notifier, logger: log, now: time.Now}
}

// DeadlineEntry is one upcoming deadline of a tracked conference.
type DeadlineEntry struct {
	Conference string      `json:"conference"`
	Tier       domain.Tier `json:"tier"`
	Label      string      `json:"label"`
	Date       string      `json:"date"`
	Due        time.Time   `json:"due"`
}

// UpcomingDeadlines collects every parsed deadline falling inside the
// window, soonest first. Deadlines whose date never parsed are skipped:
// without a due date there is nothing to order by.
func (rp *Reporter) UpcomingDeadlines(ctx context.Context, window time.Duration) ([]DeadlineEntry, error) {
	conferences, err := rp.store.Conferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("load conferences: %w", err)
	}

	now := rp.now()
	horizon := now.Add(window)

	var entries []DeadlineEntry
	for _, c := range conferences {
		if !temporal.Visible(c, now) {
			continue
		}
		for _, d := range c.Deadlines {
			if d.Due.IsZero() || d.Due.Before(now) || d.Due.After(horizon) {
				continue
			}
			entries = append(entries, DeadlineEntry{
				Conference: c.Title,
				Tier:       c.Tier,
				Label:      d.Label,
				Date:       d.Date,
				Due:        d.Due,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Due.Equal(entries[j].Due) {
			return entries[i].Due.Before(entries[j].Due)
		}
		return entries[i].Conference < entries[j].Conference
	})

	return entries, nil
}

// SendDigest formats the upcoming deadlines and publishes them. An empty
// window produces no message.
func (rp *Reporter) SendDigest(ctx context.Context, window time.Duration) error {
	if rp.notifier == nil {
		return nil
	}

	entries, err := rp.UpcomingDeadlines(ctx, window)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		rp.debug("no upcoming deadlines, digest skipped")
		return nil
	}

	if err := rp.notifier.PublishDigest(ctx, FormatDigest(entries)); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}
	rp.debug("digest published", "deadlines", len(entries))
	return nil
}

// FormatDigest renders entries as a Markdown list.
func FormatDigest(entries []DeadlineEntry) string {
	var b strings.Builder
	b.WriteString("*Upcoming deadlines*\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("- %s", e.Conference))
		if e.Tier != "" && e.Tier != domain.TierUnranked {
			b.WriteString(fmt.Sprintf(" [%s]", e.Tier))
		}
		label := e.Label
		if label == "" {
			label = "Deadline"
		}
		b.WriteString(fmt.Sprintf(": %s due %s\n", label, e.Due.Format("Jan 2, 2006")))
	}
	return b.String()
}

func (rp *Reporter) debug(msg string, args ...any) {
	if rp.logger != nil {
		rp.logger.Debug(msg, args...)
	}
}
