package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/ports"
)

const (
	dayFormat = "2006-01-02"
	areasKey  = "tracked_research_areas"
)

// Store persists canonical records in a SQL database. Supported drivers
// are "sqlite" (embedded, the default) and "postgres".
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.Store = (*Store)(nil)

// Open connects, applies the schema and returns a ready store.
func Open(driver, dsn string) (*Store, error) {
	var (
		db  *sql.DB
		err error
		sb  sq.StatementBuilderType
	)

	switch driver {
	case "sqlite", "":
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			// One connection serializes same-id upserts and keeps
			// in-memory databases on a single backing store.
			db.SetMaxOpenConns(1)
		}
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	case "postgres":
		db, err = sql.Open("postgres", dsn)
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, sb: sb}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// storedDeadline keeps the parsed due date, which the API shape omits.
type storedDeadline struct {
	Label string    `json:"label"`
	Date  string    `json:"date"`
	Due   time.Time `json:"due,omitzero"`
}

// UpsertConference writes a resolved record: insert when the id is
// absent, full overwrite otherwise. Merge policy is the deduplicator's
// job; by the time a record reaches the store the conflict is resolved,
// which makes the write idempotent.
func (s *Store) UpsertConference(ctx context.Context, c domain.Conference) error {
	areasJSON, err := json.Marshal(c.ResearchAreas)
	if err != nil {
		return fmt.Errorf("marshal research areas: %w", err)
	}
	stored := make([]storedDeadline, 0, len(c.Deadlines))
	for _, d := range c.Deadlines {
		stored = append(stored, storedDeadline{Label: d.Label, Date: d.Date, Due: d.Due})
	}
	deadlinesJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal deadlines: %w", err)
	}

	query, args, err := s.sb.Insert("conferences").
		Columns("id", "title", "dates_raw", "start_date", "end_date", "location",
			"description", "research_areas", "tier", "deadlines", "url",
			"fingerprint", "date_unknown", "last_seen").
		Values(c.ID, c.Title, c.Dates, day(c.Start), day(c.End), c.Location,
			c.Description, string(areasJSON), string(c.Tier), string(deadlinesJSON), c.URL,
			c.Fingerprint, boolInt(c.DateUnknown), c.LastSeen.UTC().Format(time.RFC3339)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			dates_raw = excluded.dates_raw,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			location = excluded.location,
			description = excluded.description,
			research_areas = excluded.research_areas,
			tier = excluded.tier,
			deadlines = excluded.deadlines,
			url = excluded.url,
			fingerprint = excluded.fingerprint,
			date_unknown = excluded.date_unknown,
			last_seen = excluded.last_seen`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert conference %s: %w", c.ID, err)
	}
	return nil
}

// ConferenceByID fetches one record; found is false for an unknown id.
func (s *Store) ConferenceByID(ctx context.Context, id string) (domain.Conference, bool, error) {
	query, args, err := s.selectConferences().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Conference{}, false, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Conference{}, false, fmt.Errorf("query conference: %w", err)
	}
	list, err := collectConferences(rows)
	if err != nil {
		return domain.Conference{}, false, err
	}
	if len(list) == 0 {
		return domain.Conference{}, false, nil
	}
	return list[0], true, nil
}

// Conferences returns every stored conference.
func (s *Store) Conferences(ctx context.Context) ([]domain.Conference, error) {
	query, args, err := s.selectConferences().OrderBy("start_date, title").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	return collectConferences(rows)
}

// ConferencesByArea returns conferences tagged with the area, matched
// case-insensitively against the stored tag set. The tags live in a JSON
// array column, so the needle includes the surrounding quotes to match
// whole tags only ("ai" must not hit "explainable ai").
func (s *Store) ConferencesByArea(ctx context.Context, area string) ([]domain.Conference, error) {
	needle := `%"` + strings.ToLower(strings.TrimSpace(area)) + `"%`
	query, args, err := s.selectConferences().
		Where("lower(research_areas) LIKE ?", needle).
		OrderBy("start_date, title").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conferences by area: %w", err)
	}
	return collectConferences(rows)
}

func (s *Store) selectConferences() sq.SelectBuilder {
	return s.sb.Select("id", "title", "dates_raw", "start_date", "end_date",
		"location", "description", "research_areas", "tier", "deadlines",
		"url", "fingerprint", "date_unknown", "last_seen").
		From("conferences")
}

func collectConferences(rows *sql.Rows) ([]domain.Conference, error) {
	defer rows.Close()

	var out []domain.Conference
	for rows.Next() {
		var (
			c             domain.Conference
			startStr      string
			endStr        string
			areasJSON     string
			tierStr       string
			deadlinesJSON string
			dateUnknown   int
			lastSeenStr   string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.Dates, &startStr, &endStr,
			&c.Location, &c.Description, &areasJSON, &tierStr, &deadlinesJSON,
			&c.URL, &c.Fingerprint, &dateUnknown, &lastSeenStr); err != nil {
			return nil, fmt.Errorf("scan conference: %w", err)
		}

		c.Start = parseDay(startStr)
		c.End = parseDay(endStr)
		c.Tier = domain.Tier(tierStr)
		c.DateUnknown = dateUnknown != 0
		if t, err := time.Parse(time.RFC3339, lastSeenStr); err == nil {
			c.LastSeen = t
		}
		if err := json.Unmarshal([]byte(areasJSON), &c.ResearchAreas); err != nil {
			return nil, fmt.Errorf("decode research areas for %s: %w", c.ID, err)
		}
		var stored []storedDeadline
		if err := json.Unmarshal([]byte(deadlinesJSON), &stored); err != nil {
			return nil, fmt.Errorf("decode deadlines for %s: %w", c.ID, err)
		}
		for _, d := range stored {
			c.Deadlines = append(c.Deadlines, domain.Deadline{Label: d.Label, Date: d.Date, Due: d.Due})
		}

		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conferences: %w", err)
	}
	return out, nil
}

// UpsertPaper writes a resolved paper record, insert-or-overwrite by id.
func (s *Store) UpsertPaper(ctx context.Context, p domain.Paper) error {
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("marshal authors: %w", err)
	}

	query, args, err := s.sb.Insert("papers").
		Columns("id", "title", "authors", "year", "abstract", "venue",
			"citations", "url", "research_area", "analysis", "fingerprint", "last_seen").
		Values(p.ID, p.Title, string(authorsJSON), p.Year, p.Abstract, p.Venue,
			p.Citations, p.URL, p.ResearchArea, p.Analysis, p.Fingerprint,
			p.LastSeen.UTC().Format(time.RFC3339)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			year = excluded.year,
			abstract = excluded.abstract,
			venue = excluded.venue,
			citations = excluded.citations,
			url = excluded.url,
			research_area = excluded.research_area,
			analysis = excluded.analysis,
			fingerprint = excluded.fingerprint,
			last_seen = excluded.last_seen`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert paper %s: %w", p.ID, err)
	}
	return nil
}

// PaperByID fetches one paper; found is false for an unknown id.
func (s *Store) PaperByID(ctx context.Context, id string) (domain.Paper, bool, error) {
	query, args, err := s.selectPapers().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Paper{}, false, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Paper{}, false, fmt.Errorf("query paper: %w", err)
	}
	list, err := collectPapers(rows)
	if err != nil {
		return domain.Paper{}, false, err
	}
	if len(list) == 0 {
		return domain.Paper{}, false, nil
	}
	return list[0], true, nil
}

// Papers returns every stored paper.
func (s *Store) Papers(ctx context.Context) ([]domain.Paper, error) {
	query, args, err := s.selectPapers().OrderBy("year DESC, title").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query papers: %w", err)
	}
	return collectPapers(rows)
}

// PapersByArea returns papers for one research area, case-insensitive.
func (s *Store) PapersByArea(ctx context.Context, area string) ([]domain.Paper, error) {
	query, args, err := s.selectPapers().
		Where("lower(research_area) = ?", strings.ToLower(strings.TrimSpace(area))).
		OrderBy("year DESC, title").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query papers by area: %w", err)
	}
	return collectPapers(rows)
}

func (s *Store) selectPapers() sq.SelectBuilder {
	return s.sb.Select("id", "title", "authors", "year", "abstract", "venue",
		"citations", "url", "research_area", "analysis", "fingerprint", "last_seen").
		From("papers")
}

func collectPapers(rows *sql.Rows) ([]domain.Paper, error) {
	defer rows.Close()

	var out []domain.Paper
	for rows.Next() {
		var (
			p           domain.Paper
			authorsJSON string
			lastSeenStr string
		)
		if err := rows.Scan(&p.ID, &p.Title, &authorsJSON, &p.Year, &p.Abstract,
			&p.Venue, &p.Citations, &p.URL, &p.ResearchArea, &p.Analysis,
			&p.Fingerprint, &lastSeenStr); err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
			return nil, fmt.Errorf("decode authors for %s: %w", p.ID, err)
		}
		if t, err := time.Parse(time.RFC3339, lastSeenStr); err == nil {
			p.LastSeen = t
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate papers: %w", err)
	}
	return out, nil
}

// LoadAreas returns the persisted research-area set, or nil when none
// was saved yet.
func (s *Store) LoadAreas(ctx context.Context) ([]string, error) {
	query, args, err := s.sb.Select("value").From("meta").Where(sq.Eq{"key": areasKey}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var value string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load areas: %w", err)
	}
	var out []string
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, fmt.Errorf("decode areas: %w", err)
	}
	return out, nil
}

// SaveAreas persists the full research-area set in one write.
func (s *Store) SaveAreas(ctx context.Context, areas []string) error {
	value, err := json.Marshal(areas)
	if err != nil {
		return fmt.Errorf("marshal areas: %w", err)
	}
	query, args, err := s.sb.Insert("meta").
		Columns("key", "value").
		Values(areasKey, string(value)).
		Suffix(`ON CONFLICT (key) DO UPDATE SET value = excluded.value`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save areas: %w", err)
	}
	return nil
}

// PurgeElapsedConferences deletes conferences whose last known date lies
// before the cutoff. Records without any parsed date are never purged.
func (s *Store) PurgeElapsedConferences(ctx context.Context, before time.Time) (int64, error) {
	cutoff := day(before)
	query, args, err := s.sb.Delete("conferences").
		Where(sq.Or{
			sq.And{sq.NotEq{"end_date": ""}, sq.Lt{"end_date": cutoff}},
			sq.And{sq.Eq{"end_date": ""}, sq.NotEq{"start_date": ""}, sq.Lt{"start_date": cutoff}},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge conferences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dayFormat)
}

func parseDay(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dayFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
