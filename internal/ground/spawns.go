package ground

import (
	"sort"
	"sync"

	"ironfilter.ai/internal/coords"
)

// StaticSpawns is the append-only registry of world fixture item spawns. It is
// shared by every tracker of a process and survives session resets.
type StaticSpawns struct {
	mu sync.RWMutex
	at map[coords.Point]map[int]struct{}
}

func NewStaticSpawns() *StaticSpawns {
	return &StaticSpawns{at: map[coords.Point]map[int]struct{}{}}
}

func (s *StaticSpawns) Add(pos coords.Point, itemID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.at[pos]
	if ids == nil {
		ids = map[int]struct{}{}
		s.at[pos] = ids
	}
	ids[itemID] = struct{}{}
}

func (s *StaticSpawns) Contains(pos coords.Point, itemID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.at[pos][itemID]
	return ok
}

func (s *StaticSpawns) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, ids := range s.at {
		n += len(ids)
	}
	return n
}

// At returns the registered item ids at pos in ascending order.
func (s *StaticSpawns) At(pos coords.Point) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.at[pos]))
	for id := range s.at[pos] {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
