package collector

import (
	"context"
	"fmt"

	"ConferenceMonitor/internal/domain"
)

// Payload is one loosely-typed record as delivered by an upstream source.
// Key names, casing and date formats vary per source; only the normalizer
// is allowed to interpret it.
type Payload map[string]any

// Source describes a concrete upstream endpoint provided by config.
// Collector names the registered strategy that knows how to read it.
type Source struct {
	Name      string
	Collector string
	Entity    domain.EntityType
	URL       string
	Selectors map[string]string
	Options   map[string]string
}

// Request carries all parameters required to execute one collection.
type Request struct {
	Area   string
	Source Source
	Limit  int
}

// Collector captures a single strategy implementation (listing pages,
// arXiv, etc.).
type Collector interface {
	Name() string
	Collect(ctx context.Context, req Request) ([]Payload, error)
}

// Registry keeps a mapping from collector names to their implementations.
type Registry struct {
	collectors map[string]Collector
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: map[string]Collector{}}
}

// Register adds or replaces a collector implementation.
func (r *Registry) Register(c Collector) {
	if r.collectors == nil {
		r.collectors = map[string]Collector{}
	}
	r.collectors[c.Name()] = c
}

// Resolve returns a collector by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Collector, error) {
	if c, ok := r.collectors[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("collector %s is not registered", name)
}
