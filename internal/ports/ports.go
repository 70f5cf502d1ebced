package ports

import (
	"context"
	"time"

	"ConferenceMonitor/internal/collector"
	"ConferenceMonitor/internal/domain"
)

// SourceCollector pulls raw candidate payloads for one research area.
// Any failure is treated by the orchestrator as "zero results, area
// marked failed".
type SourceCollector interface {
	Collect(ctx context.Context, area string, entity domain.EntityType) ([]collector.Payload, error)
}

// Store is the durable keyed storage for canonical records. Upserts are
// idempotent: the caller hands over the fully resolved record and writing
// it twice produces the same state. Writes to the same id serialize in
// the database.
type Store interface {
	UpsertConference(ctx context.Context, c domain.Conference) error
	ConferenceByID(ctx context.Context, id string) (domain.Conference, bool, error)
	Conferences(ctx context.Context) ([]domain.Conference, error)
	ConferencesByArea(ctx context.Context, area string) ([]domain.Conference, error)

	UpsertPaper(ctx context.Context, p domain.Paper) error
	PaperByID(ctx context.Context, id string) (domain.Paper, bool, error)
	Papers(ctx context.Context) ([]domain.Paper, error)
	PapersByArea(ctx context.Context, area string) ([]domain.Paper, error)

	LoadAreas(ctx context.Context) ([]string, error)
	SaveAreas(ctx context.Context, areas []string) error

	// PurgeElapsedConferences is the explicit retention maintenance
	// operation; it is never part of a refresh cycle.
	PurgeElapsedConferences(ctx context.Context, before time.Time) (int64, error)
}

// QueryClient answers free-form questions over stored records and
// produces per-paper analyses. Read-only consumer of the store's data.
type QueryClient interface {
	Query(ctx context.Context, question string, records []byte) (string, error)
	AnalyzePaper(ctx context.Context, p domain.Paper) (string, error)
}

// Notifier streams digest messages to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring refreshes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
