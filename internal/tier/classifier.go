package tier

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"ConferenceMonitor/internal/domain"
)

// Entry is one ranking-table row: a canonical venue name, its tier and
// the patterns that recognize it in scraped titles.
type Entry struct {
	Name     string      `yaml:"name"`
	Tier     domain.Tier `yaml:"tier"`
	Patterns []string    `yaml:"patterns"`
}

type compiledEntry struct {
	name     string
	tier     domain.Tier
	patterns []*regexp.Regexp
}

// Classifier assigns a tier to a conference title by lookup against a
// ranking table. The table is configuration, not logic: callers load
// their own or use the compiled-in default.
type Classifier struct {
	entries []compiledEntry
}

// New compiles a ranking table. Entry order is match order; earlier
// entries win on overlap.
func New(entries []Entry) (*Classifier, error) {
	c := &Classifier{entries: make([]compiledEntry, 0, len(entries))}
	for _, e := range entries {
		ce := compiledEntry{name: e.Name, tier: e.Tier}
		if ce.tier == "" {
			ce.tier = domain.TierUnranked
		}
		for _, p := range e.Patterns {
			expr, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("tier entry %s: pattern %q: %w", e.Name, p, err)
			}
			ce.patterns = append(ce.patterns, expr)
		}
		c.entries = append(c.entries, ce)
	}
	return c, nil
}

// LoadFile reads a yaml ranking table ("tiers:" list of entries).
func LoadFile(path string) (*Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier table: %w", err)
	}
	var file struct {
		Tiers []Entry `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse tier table: %w", err)
	}
	return New(file.Tiers)
}

// Classify returns the tier for a conference title. Unknown venues are
// TierUnranked; classification never fails.
func (c *Classifier) Classify(title string) domain.Tier {
	if entry, ok := c.match(title); ok {
		return entry.tier
	}
	return domain.TierUnranked
}

// Canonical resolves a title to the table's canonical venue name, so
// "Thirty-Ninth International Conference on Machine Learning" and
// "ICML 2025" compare equal. ok is false for venues not in the table.
func (c *Classifier) Canonical(title string) (string, bool) {
	if entry, ok := c.match(title); ok {
		return entry.name, true
	}
	return "", false
}

func (c *Classifier) match(title string) (compiledEntry, bool) {
	if title == "" {
		return compiledEntry{}, false
	}
	for _, entry := range c.entries {
		for _, p := range entry.patterns {
			if p.MatchString(title) {
				return entry, true
			}
		}
	}
	return compiledEntry{}, false
}
