package pattern

import (
	"context"
	"sync"

	"latex-speech/internal/types"
)

// Filters narrows a store query. Zero values mean "any".
type Filters struct {
	Domain      types.Domain
	Context     types.MathContext
	Tier        types.PriorityTier
	MinPriority int
}

// Store is the read-only query interface the rewrite engine consumes.
// Implementations must be safe for concurrent reads and must return an
// internally consistent snapshot for each call: the same pattern never
// appears with two definitions within one result set.
type Store interface {
	// FindByDomain returns patterns tagged with exactly the given domain.
	FindByDomain(ctx context.Context, domain types.Domain) ([]*Pattern, error)
	// FindByContext returns patterns applicable in the given context.
	FindByContext(ctx context.Context, mctx types.MathContext) ([]*Pattern, error)
	// FindByFilters returns patterns matching every non-zero filter.
	FindByFilters(ctx context.Context, f Filters) ([]*Pattern, error)
}

// MemoryStore is an in-process Store backed by a slice. Query results
// preserve insertion order, which gives the engine its deterministic
// tie-break within a priority tier.
type MemoryStore struct {
	mu       sync.RWMutex
	patterns []*Pattern
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add registers patterns with the store. A pattern whose ID is already
// present replaces the earlier one in place, keeping its position.
func (s *MemoryStore) Add(patterns ...*Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range patterns {
		replaced := false
		for i, existing := range s.patterns {
			if existing.ID() == p.ID() {
				s.patterns[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			s.patterns = append(s.patterns, p)
		}
	}
}

// Len returns the number of stored patterns.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns)
}

// All returns a snapshot of every stored pattern in insertion order.
func (s *MemoryStore) All() []*Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// FindByDomain implements Store.
func (s *MemoryStore) FindByDomain(ctx context.Context, domain types.Domain) ([]*Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Pattern
	for _, p := range s.patterns {
		if p.Domain() == domain {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByContext implements Store.
func (s *MemoryStore) FindByContext(ctx context.Context, mctx types.MathContext) ([]*Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Pattern
	for _, p := range s.patterns {
		if p.AppliesToContext(mctx) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByFilters implements Store.
func (s *MemoryStore) FindByFilters(ctx context.Context, f Filters) ([]*Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Pattern
	for _, p := range s.patterns {
		if f.Domain != "" && p.Domain() != f.Domain {
			continue
		}
		if f.Context != "" && !p.AppliesToContext(f.Context) {
			continue
		}
		if f.Tier != "" && p.Tier() != f.Tier {
			continue
		}
		if p.Priority() < f.MinPriority {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
