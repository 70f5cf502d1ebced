package storage

// schemaSQL is portable between sqlite and postgres: TEXT keys, JSON
// payload columns as TEXT, dates as ISO strings so lexical order is
// chronological order.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS conferences (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	dates_raw      TEXT NOT NULL DEFAULT '',
	start_date     TEXT NOT NULL DEFAULT '',
	end_date       TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	research_areas TEXT NOT NULL DEFAULT '[]',
	tier           TEXT NOT NULL DEFAULT 'unranked',
	deadlines      TEXT NOT NULL DEFAULT '[]',
	url            TEXT NOT NULL DEFAULT '',
	fingerprint    TEXT NOT NULL DEFAULT '',
	date_unknown   INTEGER NOT NULL DEFAULT 0,
	last_seen      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_conferences_fingerprint ON conferences (fingerprint);
CREATE INDEX IF NOT EXISTS idx_conferences_start ON conferences (start_date);

CREATE TABLE IF NOT EXISTS papers (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	authors       TEXT NOT NULL DEFAULT '[]',
	year          INTEGER NOT NULL DEFAULT 0,
	abstract      TEXT NOT NULL DEFAULT '',
	venue         TEXT NOT NULL DEFAULT '',
	citations     INTEGER NOT NULL DEFAULT 0,
	url           TEXT NOT NULL DEFAULT '',
	research_area TEXT NOT NULL DEFAULT '',
	analysis      TEXT NOT NULL DEFAULT '',
	fingerprint   TEXT NOT NULL DEFAULT '',
	last_seen     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_papers_fingerprint ON papers (fingerprint);
CREATE INDEX IF NOT EXISTS idx_papers_area ON papers (research_area);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)
`
