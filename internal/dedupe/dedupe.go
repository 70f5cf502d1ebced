package dedupe

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/normalize"
	"ConferenceMonitor/internal/tier"
)

// Action classifies one candidate against the persisted set.
type Action int

const (
	// ActionNew means no matching record exists; insert the candidate.
	ActionNew Action = iota
	// ActionMerge means the candidate describes an existing record;
	// merge per the policy and write the resolved record.
	ActionMerge
	// ActionDiscard means the candidate duplicates another candidate in
	// the same batch and carries nothing the representative lacks.
	ActionDiscard
)

const titleSimilarityThreshold = 0.75

// Deduplicator decides which candidates are new, which update existing
// records and which are duplicates. It is pure with respect to the store:
// it reports decisions, the orchestrator applies them.
type Deduplicator struct {
	tiers *tier.Classifier
}

// New builds a deduplicator. tiers powers the canonical-venue similarity
// path ("ICML 2025" vs the spelled-out title) and may be nil.
func New(tiers *tier.Classifier) *Deduplicator {
	return &Deduplicator{tiers: tiers}
}

// ConferenceDecision is the classification for one conference candidate.
// Existing is set only for ActionMerge.
type ConferenceDecision struct {
	Action    Action
	Candidate domain.Conference
	Existing  domain.Conference
}

// PaperDecision is the classification for one paper candidate.
type PaperDecision struct {
	Action    Action
	Candidate domain.Paper
	Existing  domain.Paper
}

// Conferences classifies a batch of normalized candidates against the
// persisted records for the same scope. In-batch duplicates are collapsed
// first, keeping the most complete candidate as representative.
func (d *Deduplicator) Conferences(batch, existing []domain.Conference) []ConferenceDecision {
	var decisions []ConferenceDecision

	var reps []domain.Conference
	for _, cand := range batch {
		matched := false
		for i, rep := range reps {
			if !d.sameConference(cand, rep) {
				continue
			}
			matched = true
			if conferenceCompleteness(cand) > conferenceCompleteness(rep) {
				reps[i] = cand
				decisions = append(decisions, ConferenceDecision{Action: ActionDiscard, Candidate: rep})
			} else {
				decisions = append(decisions, ConferenceDecision{Action: ActionDiscard, Candidate: cand})
			}
			break
		}
		if !matched {
			reps = append(reps, cand)
		}
	}

	byFingerprint := make(map[string]domain.Conference, len(existing))
	for _, e := range existing {
		byFingerprint[e.Fingerprint] = e
	}

	for _, rep := range reps {
		if e, ok := byFingerprint[rep.Fingerprint]; ok {
			decisions = append(decisions, ConferenceDecision{Action: ActionMerge, Candidate: rep, Existing: e})
			continue
		}
		merged := false
		for _, e := range existing {
			if d.sameConference(rep, e) {
				decisions = append(decisions, ConferenceDecision{Action: ActionMerge, Candidate: rep, Existing: e})
				merged = true
				break
			}
		}
		if !merged {
			decisions = append(decisions, ConferenceDecision{Action: ActionNew, Candidate: rep})
		}
	}

	return decisions
}

// Papers classifies a batch of normalized paper candidates.
func (d *Deduplicator) Papers(batch, existing []domain.Paper) []PaperDecision {
	var decisions []PaperDecision

	var reps []domain.Paper
	for _, cand := range batch {
		matched := false
		for i, rep := range reps {
			if !samePaper(cand, rep) {
				continue
			}
			matched = true
			if paperCompleteness(cand) > paperCompleteness(rep) {
				reps[i] = cand
				decisions = append(decisions, PaperDecision{Action: ActionDiscard, Candidate: rep})
			} else {
				decisions = append(decisions, PaperDecision{Action: ActionDiscard, Candidate: cand})
			}
			break
		}
		if !matched {
			reps = append(reps, cand)
		}
	}

	byFingerprint := make(map[string]domain.Paper, len(existing))
	for _, e := range existing {
		byFingerprint[e.Fingerprint] = e
	}

	for _, rep := range reps {
		if e, ok := byFingerprint[rep.Fingerprint]; ok {
			decisions = append(decisions, PaperDecision{Action: ActionMerge, Candidate: rep, Existing: e})
			continue
		}
		merged := false
		for _, e := range existing {
			if samePaper(rep, e) {
				decisions = append(decisions, PaperDecision{Action: ActionMerge, Candidate: rep, Existing: e})
				merged = true
				break
			}
		}
		if !merged {
			decisions = append(decisions, PaperDecision{Action: ActionNew, Candidate: rep})
		}
	}

	return decisions
}

// sameConference reports whether two records describe the same real-world
// conference. Exact fingerprint match is the primary path; the canonical
// venue table, an acronym check and token-set similarity cover near
// duplicates across sources.
func (d *Deduplicator) sameConference(a, b domain.Conference) bool {
	if a.Fingerprint != "" && a.Fingerprint == b.Fingerprint {
		return true
	}

	ya, yb := conferenceYear(a), conferenceYear(b)
	compatible := ya == 0 || yb == 0 || ya == yb

	if d.tiers != nil && compatible {
		ca, okA := d.tiers.Canonical(a.Title)
		cb, okB := d.tiers.Canonical(b.Title)
		if okA && okB && ca == cb {
			return true
		}
	}

	ta := significantTokens(a.Title)
	tb := significantTokens(b.Title)

	if compatible && acronymMatch(ta, tb) {
		return true
	}

	return ya == yb && jaccard(ta, tb) >= titleSimilarityThreshold
}

func samePaper(a, b domain.Paper) bool {
	if a.Fingerprint != "" && a.Fingerprint == b.Fingerprint {
		return true
	}
	if a.Year != b.Year {
		return false
	}
	return jaccard(significantTokens(a.Title), significantTokens(b.Title)) >= titleSimilarityThreshold
}

var yearExpr = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// conferenceYear prefers the parsed start date and falls back to a year
// spelled out in the title ("ICML 2025" with an unparsable date string).
func conferenceYear(c domain.Conference) int {
	if y := c.Year(); y != 0 {
		return y
	}
	if m := yearExpr.FindString(c.Title); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	return 0
}

var fillerWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "on": {}, "of": {}, "and": {}, "for": {},
	"in": {}, "to": {}, "at": {}, "with": {}, "its": {},
	"annual": {}, "proceedings": {},
	"first": {}, "second": {}, "third": {}, "fourth": {}, "fifth": {},
	"sixth": {}, "seventh": {}, "eighth": {}, "ninth": {}, "tenth": {},
	"twentieth": {}, "thirtieth": {}, "fortieth": {}, "fiftieth": {},
	"twenty": {}, "thirty": {}, "forty": {}, "fifty": {},
}

var ordinalExpr = regexp.MustCompile(`^\d+(st|nd|rd|th)$`)

// significantTokens drops filler words, ordinals and bare numbers from a
// normalized title; years are compared separately.
func significantTokens(title string) []string {
	var out []string
	for _, tok := range normalize.Tokens(title) {
		if _, skip := fillerWords[tok]; skip {
			continue
		}
		if ordinalExpr.MatchString(tok) {
			continue
		}
		if _, err := strconv.Atoi(tok); err == nil {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// acronymMatch treats a one-token title as a possible acronym of the
// other's significant words: "icml" against
// "international conference machine learning".
func acronymMatch(a, b []string) bool {
	return oneWayAcronym(a, b) || oneWayAcronym(b, a)
}

func oneWayAcronym(short, long []string) bool {
	if len(short) != 1 || len(long) < 2 {
		return false
	}
	want := short[0]
	if len(want) < 3 {
		return false
	}
	var initials strings.Builder
	for _, tok := range long {
		initials.WriteByte(tok[0])
	}
	return initials.String() == want
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	inter := 0
	union := len(set)
	seen := map[string]struct{}{}
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// MergeConference resolves a candidate into an existing record: fields
// present in the candidate fill gaps in the existing record, populated
// fields are never overwritten with empty ones, deadlines are unioned by
// label, and LastSeen is bumped to the refresh time. The existing id and
// fingerprint are kept.
func MergeConference(existing, candidate domain.Conference, now time.Time) domain.Conference {
	out := existing

	if out.Dates == "" {
		out.Dates = candidate.Dates
	}
	if out.Start.IsZero() && !candidate.Start.IsZero() {
		out.Start = candidate.Start
		out.End = candidate.End
		out.DateUnknown = false
		if candidate.Dates != "" {
			out.Dates = candidate.Dates
		}
	}
	if out.End.IsZero() && !candidate.End.IsZero() && !out.Start.IsZero() && !candidate.Start.IsZero() && out.Start.Equal(candidate.Start) {
		out.End = candidate.End
	}
	if out.Location == "" {
		out.Location = candidate.Location
	}
	if out.Description == "" {
		out.Description = candidate.Description
	}
	if out.URL == "" {
		out.URL = candidate.URL
	}
	if out.Tier == domain.TierUnranked && candidate.Tier != "" {
		out.Tier = candidate.Tier
	}

	out.ResearchAreas = unionStrings(out.ResearchAreas, candidate.ResearchAreas)
	out.Deadlines = unionDeadlines(out.Deadlines, candidate.Deadlines)
	out.LastSeen = now

	return out
}

// MergePaper resolves a paper candidate into an existing record under the
// same fill-empty-only policy. The citation count moves forward only.
func MergePaper(existing, candidate domain.Paper, now time.Time) domain.Paper {
	out := existing

	if out.Title == "" {
		out.Title = candidate.Title
	}
	if len(out.Authors) == 0 {
		out.Authors = candidate.Authors
	}
	if out.Year == 0 {
		out.Year = candidate.Year
	}
	if out.Abstract == "" {
		out.Abstract = candidate.Abstract
	}
	if out.Venue == "" {
		out.Venue = candidate.Venue
	}
	if out.URL == "" {
		out.URL = candidate.URL
	}
	if out.Analysis == "" {
		out.Analysis = candidate.Analysis
	}
	if candidate.Citations > out.Citations {
		out.Citations = candidate.Citations
	}
	out.LastSeen = now

	return out
}

func unionStrings(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range base {
		seen[strings.ToLower(s)] = struct{}{}
		out = append(out, s)
	}
	for _, s := range extra {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// unionDeadlines keeps the existing sequence and appends candidate
// deadlines whose label is not present yet; sequences are unioned by
// label, never replaced.
func unionDeadlines(base, extra []domain.Deadline) []domain.Deadline {
	seen := make(map[string]struct{}, len(base))
	out := make([]domain.Deadline, 0, len(base)+len(extra))
	for _, d := range base {
		seen[strings.ToLower(d.Label)] = struct{}{}
		out = append(out, d)
	}
	for _, d := range extra {
		key := strings.ToLower(d.Label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

func conferenceCompleteness(c domain.Conference) int {
	n := 0
	for _, set := range []bool{
		c.Title != "",
		c.Dates != "",
		!c.Start.IsZero(),
		!c.End.IsZero(),
		c.Location != "",
		c.Description != "",
		c.URL != "",
		len(c.ResearchAreas) > 0,
		len(c.Deadlines) > 0,
	} {
		if set {
			n++
		}
	}
	return n
}

func paperCompleteness(p domain.Paper) int {
	n := 0
	for _, set := range []bool{
		p.Title != "",
		len(p.Authors) > 0,
		p.Year != 0,
		p.Abstract != "",
		p.Venue != "",
		p.Citations > 0,
		p.URL != "",
	} {
		if set {
			n++
		}
	}
	return n
}
