package session

import (
	"testing"

	"ironfilter.ai/internal/catalogs"
	"ironfilter.ai/internal/coords"
	"ironfilter.ai/internal/protocol"
	"ironfilter.ai/internal/tuning"
)

func options(entries []protocol.MenuEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Option+":"+e.Target)
	}
	return out
}

func TestFilterMenu_GroundItems(t *testing.T) {
	s, _, rec := newTestSession(t)
	air := catalogs.ItemAirRune
	dagger := catalogs.ItemBronzeDagger
	logs := catalogs.ItemLogs

	mustApply(t, s, playerAt(3000, 3000))
	mustApply(t, s, protocol.EventMsg{Kind: protocol.EventItemSpawned, Pos: pos(3200, 3200, 0), Item: &air})
	mustApply(t, s, protocol.EventMsg{Kind: protocol.EventItemSpawned, Pos: pos(3225, 3218, 0), Item: &dagger})
	mustApply(t, s, protocol.EventMsg{Kind: protocol.EventPlayerDrop, Pos: pos(3001, 3000, 0), Item: &logs})

	entries := []protocol.MenuEntry{
		{Option: "Walk here"},
		{Option: "Take", Target: "air", Item: &air, Pos: pos(3200, 3200, 0)},
		{Option: "Take", Target: "dagger", Item: &dagger, Pos: pos(3225, 3218, 0)},
		{Option: "Take", Target: "logs", Item: &logs, Pos: pos(3001, 3000, 0)},
		{Option: "Take", Target: "unseen", Item: ptr(catalogs.ItemCoal), Pos: pos(10, 10, 0)},
		{Option: "Take", Target: "nopos", Item: &air},
	}
	got := options(s.FilterMenu(entries))
	want := []string{"Walk here:", "Take:dagger", "Take:logs", "Take:nopos"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	hidden := rec.ByKind(KindFilter)
	if len(hidden) != 2 || hidden[0].ItemID != air || hidden[1].ItemID != catalogs.ItemCoal {
		t.Fatalf("filter decisions: %+v", hidden)
	}
}

// The filter never offers Take on an item CanAcquire would refuse.
func TestFilterMenu_AgreesWithCanAcquire(t *testing.T) {
	s, _, _ := newTestSession(t)
	coal := catalogs.ItemCoal
	mustApply(t, s, playerAt(3000, 3000))

	at := pos(10, 10, 0)
	if s.Ground.CanAcquire(coords.FromArray(*at), coal) {
		t.Fatalf("unseen item should not be acquirable")
	}
	entries := []protocol.MenuEntry{{Option: "Take", Target: "coal", Item: &coal, Pos: at}}
	if got := s.FilterMenu(entries); len(got) != 0 {
		t.Fatalf("Take shown for unseen item: %v", options(got))
	}
}

func TestFilterMenu_ShowToggles(t *testing.T) {
	tune := tuning.Defaults()
	tune.Filter.ShowStaticSpawns = false
	tune.Filter.ShowOwnDrops = false
	s := New(Config{Tuning: tune, Seeds: NewSeeds(catalogs.Builtin(), tune)})
	dagger := catalogs.ItemBronzeDagger
	logs := catalogs.ItemLogs

	mustApply(t, s, playerAt(3000, 3000))
	mustApply(t, s, protocol.EventMsg{Kind: protocol.EventItemSpawned, Pos: pos(3225, 3218, 0), Item: &dagger})
	mustApply(t, s, protocol.EventMsg{Kind: protocol.EventPlayerDrop, Pos: pos(3001, 3000, 0), Item: &logs})

	entries := []protocol.MenuEntry{
		{Option: "Take", Item: &dagger, Pos: pos(3225, 3218, 0)},
		{Option: "Take", Item: &logs, Pos: pos(3001, 3000, 0)},
	}
	if got := s.FilterMenu(entries); len(got) != 0 {
		t.Fatalf("expected both hidden, got %v", options(got))
	}
}

func TestFilterMenu_RemoveClickOptionsOff(t *testing.T) {
	tune := tuning.Defaults()
	tune.Filter.RemoveClickOptions = false
	s := New(Config{Tuning: tune})
	air := catalogs.ItemAirRune

	mustApply(t, s, playerAt(3000, 3000))
	mustApply(t, s, protocol.EventMsg{Kind: protocol.EventItemSpawned, Pos: pos(3200, 3200, 0), Item: &air})
	entries := []protocol.MenuEntry{{Option: "Take", Item: &air, Pos: pos(3200, 3200, 0)}}
	if got := s.FilterMenu(entries); len(got) != 1 {
		t.Fatalf("filter disabled should keep entries")
	}
}

func TestFilterMenu_ShopBuyOptions(t *testing.T) {
	s, _, _ := newTestSession(t)
	bucket := catalogs.ItemBucket
	plate := catalogs.ItemRunePlatebody

	entries := []protocol.MenuEntry{
		{Option: "Buy-1", Target: "bucket", Item: &bucket},
		{Option: "Buy-50", Target: "plate", Item: &plate},
		{Option: "Value", Target: "plate", Item: &plate},
	}

	mustApply(t, s, playerAt(3212, 3246))
	if got := s.FilterMenu(entries); len(got) != 3 {
		t.Fatalf("no shop open should keep entries, got %v", options(got))
	}

	mustApply(t, s, protocol.EventMsg{
		Kind:  protocol.EventShopOpened,
		Title: "General Store",
		Items: []protocol.ShopSlot{{Item: bucket, Qty: 5}, {Item: plate, Qty: 1}},
	})
	got := options(s.FilterMenu(entries))
	if len(got) != 2 || got[0] != "Buy-1:bucket" || got[1] != "Value:plate" {
		t.Fatalf("got %v", got)
	}
}

func TestFilterMenu_HideAllStockWhenOriginalOff(t *testing.T) {
	tune := tuning.Defaults()
	tune.Filter.ShowOriginalStock = false
	s := New(Config{Tuning: tune})
	bucket := catalogs.ItemBucket

	mustApply(t, s, playerAt(3212, 3246))
	mustApply(t, s, protocol.EventMsg{
		Kind:  protocol.EventShopOpened,
		Title: "General Store",
		Items: []protocol.ShopSlot{{Item: bucket, Qty: 5}},
	})
	entries := []protocol.MenuEntry{{Option: "Buy", Item: &bucket}}
	if got := s.FilterMenu(entries); len(got) != 0 {
		t.Fatalf("expected Buy hidden, got %v", options(got))
	}
}
