package shop

import (
	"sort"
	"sync"
)

// KnownCatalog maps a shop display name to the items it permanently sells.
// It is seeded at startup and shared by every tracker in the process.
type KnownCatalog struct {
	mu     sync.RWMutex
	byName map[string]map[int]struct{}
}

func NewKnownCatalog() *KnownCatalog {
	return &KnownCatalog{byName: map[string]map[int]struct{}{}}
}

// Seed adds ids to the named shop. Repeated calls are idempotent.
func (k *KnownCatalog) Seed(shopName string, itemIDs []int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	set := k.byName[shopName]
	if set == nil {
		set = make(map[int]struct{}, len(itemIDs))
		k.byName[shopName] = set
	}
	for _, id := range itemIDs {
		set[id] = struct{}{}
	}
}

// Contains reports membership and whether the shop name is known at all.
func (k *KnownCatalog) Contains(shopName string, itemID int) (member, known bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	set, ok := k.byName[shopName]
	if !ok {
		return false, false
	}
	_, member = set[itemID]
	return member, true
}

func (k *KnownCatalog) Names() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]string, 0, len(k.byName))
	for n := range k.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
