package memory

import "sync"

// seasonStore keeps rows of one raw table keyed by season.
type seasonStore[T any] struct {
	mu       sync.RWMutex
	bySeason map[string][]T
}

func newSeasonStore[T any]() *seasonStore[T] {
	return &seasonStore[T]{bySeason: make(map[string][]T)}
}

func (s *seasonStore[T]) put(season string, items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bySeason[season] = append([]T(nil), items...)
}

func (s *seasonStore[T]) list(season string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.bySeason[season]
	out := make([]T, 0, len(items))
	out = append(out, items...)
	return out
}
