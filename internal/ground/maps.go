package ground

import (
	"time"

	"ironfilter.ai/internal/coords"
)

func put(itemsAt map[coords.Point]map[int]Ownership, pos coords.Point, itemID int, state Ownership) {
	ids := itemsAt[pos]
	if ids == nil {
		ids = map[int]Ownership{}
		itemsAt[pos] = ids
	}
	ids[itemID] = state
}

// remove deletes the entry and prunes the tile once it holds nothing.
func remove(itemsAt map[coords.Point]map[int]Ownership, pos coords.Point, itemID int) {
	ids := itemsAt[pos]
	if ids == nil {
		return
	}
	delete(ids, itemID)
	if len(ids) == 0 {
		delete(itemsAt, pos)
	}
}

func expired(at, now time.Time, window time.Duration) bool {
	return now.Sub(at) > window
}

func purgeExpired[K comparable](m map[K]time.Time, now time.Time, window time.Duration) {
	for k, at := range m {
		if expired(at, now, window) {
			delete(m, k)
		}
	}
}
