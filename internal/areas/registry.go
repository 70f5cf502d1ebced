package areas

import (
	"strings"
	"sync"
)

// Registry is the process-wide set of tracked research areas. It is
// seeded once at startup and only ever swapped wholesale: readers never
// observe a partially updated set.
type Registry struct {
	mu    sync.RWMutex
	areas []string
}

// New seeds a registry. Entries are trimmed and case-insensitively
// deduplicated; the first casing wins for display.
func New(seed []string) *Registry {
	return &Registry{areas: clean(seed)}
}

// List returns a copy of the current set in insertion order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.areas))
	copy(out, r.areas)
	return out
}

// Contains reports whether the area is tracked, ignoring case.
func (r *Registry) Contains(area string) bool {
	needle := strings.ToLower(strings.TrimSpace(area))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.areas {
		if strings.ToLower(a) == needle {
			return true
		}
	}
	return false
}

// Replace swaps the full set atomically and returns the cleaned set that
// took effect.
func (r *Registry) Replace(areas []string) []string {
	next := clean(areas)
	r.mu.Lock()
	r.areas = next
	r.mu.Unlock()
	out := make([]string, len(next))
	copy(out, next)
	return out
}

func clean(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
