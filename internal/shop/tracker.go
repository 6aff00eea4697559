// Package shop separates a shop's permanent catalog from stock players sold
// into it.
//
// The first observation of a shop freezes its original catalog: every item on
// display that the known catalog (or, lacking one, the heuristics) accepts.
// Later observations only diff the current stock against that frozen set.
package shop

import (
	"sort"
	"sync"
	"time"
)

// Item is one slot of an observed shop interface.
type Item struct {
	ID       int `json:"id"`
	Quantity int `json:"qty"`
}

type entry struct {
	Quantity  int
	Original  bool
	FirstSeen time.Time
}

// Guesser is the fallback used for shops missing from the known catalog.
type Guesser interface {
	LikelyCatalogItem(itemID int) bool
}

type GuessFunc func(itemID int) bool

func (f GuessFunc) LikelyCatalogItem(itemID int) bool { return f(itemID) }

type Config struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

type Tracker struct {
	now   func() time.Time
	known *KnownCatalog
	guess Guesser

	mu      sync.RWMutex
	frozen  map[ID]map[int]struct{}
	current map[ID]map[int]entry
}

// New creates a tracker. known may be shared; a nil catalog gets a private one.
func New(cfg Config, known *KnownCatalog, guess Guesser) *Tracker {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if known == nil {
		known = NewKnownCatalog()
	}
	return &Tracker{
		now:     cfg.Now,
		known:   known,
		guess:   guess,
		frozen:  map[ID]map[int]struct{}{},
		current: map[ID]map[int]entry{},
	}
}

func (t *Tracker) KnownCatalog() *KnownCatalog { return t.known }

// IsKnownCatalogItem checks the known catalog when it lists shopName and
// falls back to the guesser otherwise.
func (t *Tracker) IsKnownCatalogItem(shopName string, itemID int) bool {
	if member, known := t.known.Contains(shopName, itemID); known {
		return member
	}
	if t.guess == nil {
		return false
	}
	return t.guess.LikelyCatalogItem(itemID)
}

// Observation summarizes what an OnShopObserved call changed.
type Observation struct {
	FirstSeen bool
	Added     []int
	Removed   []int
	Original  []int
}

func (t *Tracker) OnShopObserved(id ID, shopName string, items []Item) Observation {
	var obs Observation
	if id == "" {
		return obs
	}
	seen := make(map[int]int, len(items))
	order := make([]int, 0, len(items))
	for _, it := range items {
		if it.ID < 0 {
			continue
		}
		if _, dup := seen[it.ID]; !dup {
			order = append(order, it.ID)
		}
		seen[it.ID] = it.Quantity
	}

	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, known := t.current[id]
	if !known {
		obs.FirstSeen = true
		frozen := make(map[int]struct{}, len(order))
		cur = make(map[int]entry, len(order))
		for _, itemID := range order {
			orig := t.IsKnownCatalogItem(shopName, itemID)
			if orig {
				frozen[itemID] = struct{}{}
				obs.Original = append(obs.Original, itemID)
			}
			cur[itemID] = entry{Quantity: seen[itemID], Original: orig, FirstSeen: now}
			obs.Added = append(obs.Added, itemID)
		}
		t.frozen[id] = frozen
		t.current[id] = cur
		return obs
	}

	for itemID := range cur {
		if _, still := seen[itemID]; !still {
			delete(cur, itemID)
			obs.Removed = append(obs.Removed, itemID)
		}
	}
	sort.Ints(obs.Removed)
	for _, itemID := range order {
		if e, ok := cur[itemID]; ok {
			e.Quantity = seen[itemID]
			cur[itemID] = e
			continue
		}
		orig := t.IsKnownCatalogItem(shopName, itemID)
		cur[itemID] = entry{Quantity: seen[itemID], Original: orig, FirstSeen: now}
		obs.Added = append(obs.Added, itemID)
		if orig {
			obs.Original = append(obs.Original, itemID)
		}
	}
	return obs
}

func (t *Tracker) CanPurchase(id ID, itemID int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.frozen[id][itemID]; ok {
		return true
	}
	e, ok := t.current[id][itemID]
	return ok && e.Original
}

func (t *Tracker) IsPlayerSold(id ID, itemID int) bool {
	return !t.CanPurchase(id, itemID)
}

// KnownPlayerSold is true only for items currently on display that were
// classified as sold in by a player. Absent items report false.
func (t *Tracker) KnownPlayerSold(id ID, itemID int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.frozen[id][itemID]; ok {
		return false
	}
	e, ok := t.current[id][itemID]
	return ok && !e.Original
}

func (t *Tracker) SeedKnownCatalog(shopName string, itemIDs []int) {
	t.known.Seed(shopName, itemIDs)
}

// OriginalStock returns the frozen catalog of a shop in ascending order.
func (t *Tracker) OriginalStock(id ID) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]int, 0, len(t.frozen[id]))
	for itemID := range t.frozen[id] {
		out = append(out, itemID)
	}
	sort.Ints(out)
	return out
}

// StockEntry is the exported view of one current stock slot.
type StockEntry struct {
	ItemID    int       `json:"item_id"`
	Quantity  int       `json:"qty"`
	Original  bool      `json:"original"`
	FirstSeen time.Time `json:"first_seen"`
}

func (t *Tracker) CurrentStock(id ID) []StockEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]StockEntry, 0, len(t.current[id]))
	for itemID, e := range t.current[id] {
		out = append(out, StockEntry{ItemID: itemID, Quantity: e.Quantity, Original: e.Original, FirstSeen: e.FirstSeen})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// RunPeriodicMaintenance is a no-op: shop data does not expire.
func (t *Tracker) RunPeriodicMaintenance() {}

func (t *Tracker) ResetSession() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.frozen)
	clear(t.current)
}

type Stats struct {
	Shops        int `json:"shops"`
	CurrentItems int `json:"current_items"`
	OriginalSet  int `json:"original_items"`
}

func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := Stats{Shops: len(t.current)}
	for _, cur := range t.current {
		s.CurrentItems += len(cur)
	}
	for _, f := range t.frozen {
		s.OriginalSet += len(f)
	}
	return s
}
