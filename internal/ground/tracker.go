// Package ground tracks who owns the items lying on each tile.
//
// Ownership is decided once, when the spawn is observed, from the evidence at
// hand: the static spawn registry, recent kills by the tracked account and the
// account's position. There is no authoritative signal, so anything without
// evidence is attributed to another player.
package ground

import (
	"sync"
	"time"

	"ironfilter.ai/internal/coords"
)

const (
	DefaultKillWindow = 10 * time.Second
	DefaultDropWindow = 60 * time.Second
	DefaultLootRadius = 10
)

type Config struct {
	KillWindow time.Duration
	DropWindow time.Duration
	LootRadius int

	// Now defaults to time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.KillWindow <= 0 {
		c.KillWindow = DefaultKillWindow
	}
	if c.DropWindow <= 0 {
		c.DropWindow = DefaultDropWindow
	}
	if c.LootRadius <= 0 {
		c.LootRadius = DefaultLootRadius
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Locator reports the tracked account's current tile.
type Locator interface {
	PlayerLocation() (coords.Point, bool)
}

type LocatorFunc func() (coords.Point, bool)

func (f LocatorFunc) PlayerLocation() (coords.Point, bool) { return f() }

type itemKey struct {
	Pos    coords.Point
	ItemID int
}

// Tracker is safe for one writer (the event path) interleaved with any number
// of concurrent readers (the query path).
type Tracker struct {
	cfg     Config
	locate  Locator
	statics *StaticSpawns

	mu      sync.RWMutex
	itemsAt map[coords.Point]map[int]Ownership
	kills   map[int]time.Time
	drops   map[itemKey]time.Time
}

// New creates a tracker. statics may be shared between trackers; a nil
// registry gets a private one.
func New(cfg Config, locate Locator, statics *StaticSpawns) *Tracker {
	if statics == nil {
		statics = NewStaticSpawns()
	}
	return &Tracker{
		cfg:     cfg.withDefaults(),
		locate:  locate,
		statics: statics,
		itemsAt: map[coords.Point]map[int]Ownership{},
		kills:   map[int]time.Time{},
		drops:   map[itemKey]time.Time{},
	}
}

func (t *Tracker) StaticSpawns() *StaticSpawns { return t.statics }

// OnItemObserved classifies and records a newly appeared item. Invalid
// locations are ignored and reported as Unknown.
func (t *Tracker) OnItemObserved(pos coords.Point, itemID int) Ownership {
	if !pos.Valid() {
		return Unknown
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.classifyLocked(pos, itemID)
	put(t.itemsAt, pos, itemID, state)
	return state
}

func (t *Tracker) classifyLocked(pos coords.Point, itemID int) Ownership {
	if t.statics.Contains(pos, itemID) {
		return StaticSpawn
	}
	now := t.cfg.Now()
	if at, ok := t.drops[itemKey{Pos: pos, ItemID: itemID}]; ok && !expired(at, now, t.cfg.DropWindow) {
		return PlayerDropped
	}
	if t.nearPlayer(pos) && t.hasLiveKillLocked(now) {
		return PlayerLoot
	}
	return OtherPlayer
}

func (t *Tracker) nearPlayer(pos coords.Point) bool {
	if t.locate == nil {
		return false
	}
	player, ok := t.locate.PlayerLocation()
	if !ok {
		return false
	}
	return coords.Within(player, pos, t.cfg.LootRadius)
}

func (t *Tracker) hasLiveKillLocked(now time.Time) bool {
	if len(t.kills) == 0 {
		return false
	}
	purgeExpired(t.kills, now, t.cfg.KillWindow)
	return len(t.kills) > 0
}

func (t *Tracker) OnItemRemoved(pos coords.Point, itemID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	remove(t.itemsAt, pos, itemID)
	delete(t.drops, itemKey{Pos: pos, ItemID: itemID})
}

// OnActorKilled records a kill when the caller attributed it to the tracked
// account.
func (t *Tracker) OnActorKilled(npcID int, killerIsTrackedAccount bool) {
	if !killerIsTrackedAccount {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.cfg.Now()
	if prev, ok := t.kills[npcID]; !ok || now.After(prev) {
		t.kills[npcID] = now
	}
	purgeExpired(t.kills, now, t.cfg.KillWindow)
}

// RecordPlayerDrop is the hook for a collaborator that can prove the tracked
// account dropped an item (for example by diffing its inventory). The tile
// entry becomes PlayerDropped and a spawn observed at the same key within the
// drop window keeps that state.
func (t *Tracker) RecordPlayerDrop(pos coords.Point, itemID int) {
	if !pos.Valid() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	k := itemKey{Pos: pos, ItemID: itemID}
	now := t.cfg.Now()
	if prev, ok := t.drops[k]; !ok || now.After(prev) {
		t.drops[k] = now
	}
	put(t.itemsAt, pos, itemID, PlayerDropped)
}

func (t *Tracker) QueryOwnership(pos coords.Point, itemID int) Ownership {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if state, ok := t.itemsAt[pos][itemID]; ok {
		return state
	}
	return Unknown
}

func (t *Tracker) CanAcquire(pos coords.Point, itemID int) bool {
	return t.QueryOwnership(pos, itemID).Acquirable()
}

// RegisterStaticSpawn only affects future observations; entries already on
// the tile keep their state.
func (t *Tracker) RegisterStaticSpawn(pos coords.Point, itemID int) {
	t.statics.Add(pos, itemID)
}

func (t *Tracker) RunPeriodicMaintenance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.cfg.Now()
	purgeExpired(t.kills, now, t.cfg.KillWindow)
	purgeExpired(t.drops, now, t.cfg.DropWindow)
}

func (t *Tracker) ResetSession() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.itemsAt)
	clear(t.kills)
	clear(t.drops)
}

type Stats struct {
	Locations   int `json:"locations"`
	Items       int `json:"items"`
	RecentKills int `json:"recent_kills"`
	DropTimers  int `json:"drop_timers"`
}

func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := Stats{
		Locations:   len(t.itemsAt),
		RecentKills: len(t.kills),
		DropTimers:  len(t.drops),
	}
	for _, ids := range t.itemsAt {
		s.Items += len(ids)
	}
	return s
}

// HasLocation reports whether any item is recorded at pos.
func (t *Tracker) HasLocation(pos coords.Point) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.itemsAt[pos]
	return ok
}
