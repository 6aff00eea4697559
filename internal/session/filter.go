package session

import (
	"ironfilter.ai/internal/coords"
	"ironfilter.ai/internal/ground"
	"ironfilter.ai/internal/protocol"
	"ironfilter.ai/internal/shop"
)

const takeOption = "Take"

var buyOptions = map[string]struct{}{
	"Buy":    {},
	"Buy-1":  {},
	"Buy-5":  {},
	"Buy-10": {},
	"Buy-50": {},
}

// FilterMenu drops the entries a restricted account should not be offered.
// Entries that name no item or no tile are kept.
func (s *Session) FilterMenu(entries []protocol.MenuEntry) []protocol.MenuEntry {
	if !s.tune.Filter.RemoveClickOptions || !s.Restricted() {
		return entries
	}
	out := make([]protocol.MenuEntry, 0, len(entries))
	for _, e := range entries {
		if s.ShowEntry(e) {
			out = append(out, e)
			continue
		}
		d := Decision{Kind: KindFilter, Outcome: "HIDDEN", Detail: e.Option}
		if e.Item != nil {
			d.ItemID = *e.Item
		}
		d.Pos = e.Pos
		s.emit(d)
	}
	return out
}

func (s *Session) ShowEntry(e protocol.MenuEntry) bool {
	if e.Option == takeOption {
		return s.showTake(e)
	}
	if _, ok := buyOptions[e.Option]; ok {
		return s.showBuy(e)
	}
	return true
}

func (s *Session) showTake(e protocol.MenuEntry) bool {
	f := s.tune.Filter
	if !f.HideGroundItems || e.Item == nil || e.Pos == nil {
		return true
	}
	// Unresolvable entries stay visible. Everything else follows CanAcquire,
	// so an item never observed is hidden.
	switch s.Ground.QueryOwnership(coords.FromArray(*e.Pos), *e.Item) {
	case ground.PlayerLoot:
		return true
	case ground.PlayerDropped:
		return f.ShowOwnDrops
	case ground.StaticSpawn:
		return f.ShowStaticSpawns
	default:
		return false
	}
}

func (s *Session) showBuy(e protocol.MenuEntry) bool {
	f := s.tune.Filter
	if !f.HideShopItems || e.Item == nil {
		return true
	}
	id, _, open := s.CurrentShop()
	if !open {
		return true
	}
	if !f.ShowOriginalStock {
		return false
	}
	return s.Shops.CanPurchase(id, *e.Item)
}

// shopFor resolves an explicit shop id, falling back to the open shop.
func (s *Session) shopFor(explicit string) (shop.ID, bool) {
	if explicit != "" {
		return shop.ID(explicit), true
	}
	id, _, open := s.CurrentShop()
	return id, open
}
