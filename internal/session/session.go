// Package session binds one host connection to its own ground and shop
// trackers, the tracked player's state and the menu filter.
package session

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"ironfilter.ai/internal/coords"
	"ironfilter.ai/internal/ground"
	"ironfilter.ai/internal/protocol"
	"ironfilter.ai/internal/shop"
	"ironfilter.ai/internal/tuning"
)

type Config struct {
	// ID defaults to a random UUID.
	ID     string
	Tuning tuning.Tuning
	Seeds  *Seeds

	// Attribution defaults to ground.InteractionOrProximity with the tuned
	// loot radius.
	Attribution ground.KillAttribution

	Now    func() time.Time
	Logger *log.Logger
	Sink   DecisionSink
}

type player struct {
	name        string
	accountType string
	pos         coords.Point
	posKnown    bool
	seen        bool
}

type Session struct {
	id     string
	tune   tuning.Tuning
	seeds  *Seeds
	attrib ground.KillAttribution
	now    func() time.Time
	log    *log.Logger
	sink   DecisionSink

	Ground *ground.Tracker
	Shops  *shop.Tracker

	mu       sync.RWMutex
	player   player
	shopID   shop.ID
	shopName string
	closed   bool
}

func New(cfg Config) *Session {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Tuning == (tuning.Tuning{}) {
		cfg.Tuning = tuning.Defaults()
	}
	if cfg.Seeds == nil {
		cfg.Seeds = NewSeeds(nil, cfg.Tuning)
	}
	if cfg.Attribution == nil {
		cfg.Attribution = ground.InteractionOrProximity{Radius: cfg.Tuning.LootRadius}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	s := &Session{
		id:     cfg.ID,
		tune:   cfg.Tuning,
		seeds:  cfg.Seeds,
		attrib: cfg.Attribution,
		now:    cfg.Now,
		log:    cfg.Logger,
		sink:   cfg.Sink,
	}
	s.Ground = ground.New(ground.Config{
		KillWindow: cfg.Tuning.KillWindow(),
		DropWindow: cfg.Tuning.DropWindow(),
		LootRadius: cfg.Tuning.LootRadius,
		Now:        cfg.Now,
	}, s, cfg.Seeds.Statics)
	s.Shops = shop.New(shop.Config{Now: cfg.Now}, cfg.Seeds.Known, cfg.Seeds)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Tuning() tuning.Tuning { return s.tune }

func (s *Session) Seeds() *Seeds { return s.seeds }

// PlayerLocation implements ground.Locator.
func (s *Session) PlayerLocation() (coords.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player.pos, s.player.posKnown
}

// Restricted reports whether the tracked account is an ironman. Until the
// host reports the player, it is not.
func (s *Session) Restricted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.player.seen && IsRestricted(s.player.accountType, s.player.name)
}

// UpdatePlayer records the tracked account's identity and tile. An invalid
// position marks the location unknown.
func (s *Session) UpdatePlayer(name, accountType string, pos coords.Point, posKnown bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		s.player.name = name
	}
	if accountType != "" {
		s.player.accountType = accountType
	}
	s.player.pos = pos
	s.player.posKnown = posKnown && pos.Valid()
	s.player.seen = true
}

// ItemSpawned classifies a ground item. Spawns seen while the account is not
// restricted are ignored.
func (s *Session) ItemSpawned(pos coords.Point, itemID int) ground.Ownership {
	if !s.Restricted() {
		return ground.Unknown
	}
	state := s.Ground.OnItemObserved(pos, itemID)
	if state != ground.Unknown {
		s.emit(Decision{Kind: KindGround, Pos: posPtr(pos), ItemID: itemID, Outcome: state.String()})
	}
	return state
}

func (s *Session) ItemDespawned(pos coords.Point, itemID int) {
	if !s.Restricted() {
		return
	}
	s.Ground.OnItemRemoved(pos, itemID)
}

func (s *Session) PlayerDropped(pos coords.Point, itemID int) {
	if !s.Restricted() || !pos.Valid() {
		return
	}
	s.Ground.RecordPlayerDrop(pos, itemID)
	s.emit(Decision{Kind: KindGround, Pos: posPtr(pos), ItemID: itemID, Outcome: ground.PlayerDropped.String(), Detail: "drop"})
}

// ActorDied runs kill attribution and reports whether the death counted.
func (s *Session) ActorDied(d ground.Death) bool {
	if !s.Restricted() {
		return false
	}
	at, known := s.PlayerLocation()
	ours := s.attrib.KilledByTracked(d, at, known)
	if !ours {
		return false
	}
	s.Ground.OnActorKilled(d.NPCIndex, true)
	s.emit(Decision{Kind: KindKill, Pos: posPtr(d.Pos), Outcome: "ATTRIBUTED"})
	return true
}

// ShopOpened derives the shop id, records the stock and remembers the shop
// as the one currently open. ok is false when no id could be derived.
func (s *Session) ShopOpened(defID int, title string, items []shop.Item) (id shop.ID, obs shop.Observation, ok bool) {
	if !s.Restricted() {
		return "", obs, false
	}
	at, known := s.PlayerLocation()
	id, ok = shop.DeriveID(defID, at, known)
	if !ok {
		s.log.Printf("session %s: shop %q opened with no usable id", s.id, title)
		return "", obs, false
	}
	name := shop.DisplayName(title, at, known)
	obs = s.Shops.OnShopObserved(id, name, items)

	s.mu.Lock()
	s.shopID, s.shopName = id, name
	s.mu.Unlock()

	original := make(map[int]bool, len(obs.Original))
	for _, itemID := range obs.Original {
		original[itemID] = true
	}
	for _, itemID := range obs.Added {
		outcome := "PLAYER_SOLD"
		if original[itemID] {
			outcome = "ORIGINAL"
		}
		s.emit(Decision{Kind: KindShop, ItemID: itemID, ShopID: string(id), Outcome: outcome, Detail: name})
	}
	return id, obs, true
}

func (s *Session) ShopClosed() {
	s.mu.Lock()
	s.shopID, s.shopName = "", ""
	s.mu.Unlock()
}

// CurrentShop returns the id of the shop interface currently open.
func (s *Session) CurrentShop() (shop.ID, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shopID, s.shopName, s.shopID != ""
}

// GameTick runs maintenance on the configured cadence and reports whether
// it did.
func (s *Session) GameTick(tick uint64) bool {
	every := uint64(s.tune.MaintenanceEveryTicks)
	if every == 0 || tick%every != 0 {
		return false
	}
	s.Ground.RunPeriodicMaintenance()
	s.Shops.RunPeriodicMaintenance()
	s.emit(Decision{Kind: KindMaintenance, Outcome: "RAN"})
	return true
}

// GameState resets ground state when the account leaves the world. Shop
// catalogs survive a hop.
func (s *Session) GameState(state string) {
	switch state {
	case protocol.GameStateHopping, protocol.GameStateLoginScreen:
		s.Ground.ResetSession()
		s.ShopClosed()
		s.emit(Decision{Kind: KindReset, Outcome: "GROUND", Detail: state})
	}
}

// Close clears all per-session state. The shared seeds are untouched.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.shopID, s.shopName = "", ""
	s.mu.Unlock()

	s.Ground.ResetSession()
	s.Shops.ResetSession()
	s.emit(Decision{Kind: KindReset, Outcome: "ALL", Detail: "close"})
}

type Stats struct {
	SessionID    string       `json:"session_id"`
	Restricted   bool         `json:"restricted"`
	Ground       ground.Stats `json:"ground"`
	Shops        shop.Stats   `json:"shops"`
	StaticSpawns int          `json:"static_spawns"`
}

func (s *Session) Stats() Stats {
	return Stats{
		SessionID:    s.id,
		Restricted:   s.Restricted(),
		Ground:       s.Ground.Stats(),
		Shops:        s.Shops.Stats(),
		StaticSpawns: s.seeds.Statics.Len(),
	}
}

func (s *Session) emit(d Decision) {
	if s.sink == nil {
		return
	}
	d.Time = s.now()
	d.SessionID = s.id
	if err := s.sink.WriteDecision(d); err != nil {
		s.log.Printf("session %s: decision sink: %v", s.id, err)
	}
}

func posPtr(p coords.Point) *[3]int {
	a := p.ToArray()
	return &a
}
