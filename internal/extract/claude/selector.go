package claude

import (
	"context"
	"log"
	"sync"
)

// modelPriority is the fixed fallback order: primary, secondary, legacy.
var modelPriority = []string{
	"claude-sonnet-4-20250514",
	"claude-3-7-sonnet-20250219",
	"claude-3-5-sonnet-20241022",
}

// catalogFunc lists the model ids available to the configured API key.
type catalogFunc func(ctx context.Context) ([]string, error)

// modelSelector resolves the model to call. A configured override distinct
// from the documented primary short-circuits selection; otherwise the
// provider's catalog is queried once per selector lifetime and the first
// available model of the priority list wins. On catalog failure the legacy
// model is used. The choice is cached and never expires within the process.
type modelSelector struct {
	override string
	catalog  catalogFunc

	mu       sync.Mutex
	selected string
	// rank into modelPriority of the selected model; advanced by Downgrade.
	rank int
}

func newModelSelector(override string, catalog catalogFunc) *modelSelector {
	return &modelSelector{override: override, catalog: catalog}
}

func (s *modelSelector) Select(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected != "" {
		return s.selected, nil
	}

	if s.override != "" && s.override != modelPriority[0] {
		s.selected = s.override
		s.rank = -1 // overrides downgrade into the priority list from the top
		return s.selected, nil
	}

	available, err := s.catalog(ctx)
	if err != nil {
		log.Printf("claude.modelSelector: catalog query failed, defaulting to legacy model: %v", err)
		s.rank = len(modelPriority) - 1
		s.selected = modelPriority[s.rank]
		return s.selected, nil
	}

	ids := make(map[string]bool, len(available))
	for _, id := range available {
		ids[id] = true
	}
	for i, m := range modelPriority {
		if ids[m] {
			s.rank = i
			s.selected = m
			return s.selected, nil
		}
	}

	// Nothing from the priority list in the catalog; the legacy model is the
	// best remaining guess.
	s.rank = len(modelPriority) - 1
	s.selected = modelPriority[s.rank]
	return s.selected, nil
}

// Downgrade moves to the next model in the priority list and re-caches it.
func (s *modelSelector) Downgrade() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rank+1 >= len(modelPriority) {
		return "", false
	}
	s.rank++
	s.selected = modelPriority[s.rank]
	log.Printf("claude.modelSelector: downgrading to %s", s.selected)
	return s.selected, true
}
