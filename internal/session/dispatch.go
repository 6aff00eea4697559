package session

import (
	"errors"
	"fmt"

	"ironfilter.ai/internal/coords"
	"ironfilter.ai/internal/ground"
	"ironfilter.ai/internal/protocol"
	"ironfilter.ai/internal/shop"
)

// ErrSkipped marks an event that was dropped because its payload was
// unusable. Skipped events never change tracker state.
var ErrSkipped = errors.New("event skipped")

// Apply routes one host event to its handler.
func (s *Session) Apply(ev protocol.EventMsg) error {
	switch ev.Kind {
	case protocol.EventPlayerState:
		pos, ok := position(ev.Pos)
		s.UpdatePlayer(ev.Name, ev.AccountType, pos, ok)
	case protocol.EventItemSpawned, protocol.EventItemDespawned, protocol.EventPlayerDrop:
		pos, ok := position(ev.Pos)
		if !ok {
			return fmt.Errorf("%s: bad pos: %w", ev.Kind, ErrSkipped)
		}
		if ev.Item == nil {
			return fmt.Errorf("%s: missing item: %w", ev.Kind, ErrSkipped)
		}
		switch ev.Kind {
		case protocol.EventItemSpawned:
			s.ItemSpawned(pos, *ev.Item)
		case protocol.EventItemDespawned:
			s.ItemDespawned(pos, *ev.Item)
		default:
			s.PlayerDropped(pos, *ev.Item)
		}
	case protocol.EventActorDeath:
		pos, ok := position(ev.Pos)
		if !ok {
			return fmt.Errorf("%s: bad pos: %w", ev.Kind, ErrSkipped)
		}
		health := -1
		if ev.HealthRatio != nil {
			health = *ev.HealthRatio
		}
		s.ActorDied(ground.Death{
			NPCIndex:              ev.NPCIndex,
			Pos:                   pos,
			InteractingWithPlayer: ev.InteractingWithPlayer,
			HealthRatio:           health,
		})
	case protocol.EventShopOpened:
		items := make([]shop.Item, 0, len(ev.Items))
		for _, it := range ev.Items {
			items = append(items, shop.Item{ID: it.Item, Quantity: it.Qty})
		}
		s.ShopOpened(ev.ShopDefID, ev.Title, items)
	case protocol.EventShopClosed:
		s.ShopClosed()
	case protocol.EventGameTick:
		s.GameTick(ev.Tick)
	case protocol.EventGameState:
		s.GameState(ev.State)
	default:
		return fmt.Errorf("unknown event kind %q: %w", ev.Kind, ErrSkipped)
	}
	return nil
}

func position(a *[3]int) (coords.Point, bool) {
	if a == nil {
		return coords.Point{}, false
	}
	p := coords.FromArray(*a)
	return p, p.Valid()
}
