package ground

import "ironfilter.ai/internal/coords"

// Death is what the host reports about a dying NPC.
type Death struct {
	NPCIndex int
	Pos      coords.Point
	// InteractingWithPlayer is true when the NPC's interaction target at death
	// was the tracked account.
	InteractingWithPlayer bool
	// HealthRatio is the NPC's health bar ratio, -1 when not visible.
	HealthRatio int
}

// KillAttribution decides whether a death counts as a kill by the tracked
// account. Swap it out when the host can provide explicit damage attribution.
type KillAttribution interface {
	KilledByTracked(d Death, player coords.Point, playerKnown bool) bool
}

// InteractionOrProximity attributes a kill when the NPC was fighting the
// player, or when it died at zero health within Radius tiles of the player.
// Only the proximity check needs the player's tile.
// The fallback can misattribute kills in multi-combat areas.
type InteractionOrProximity struct {
	Radius int
}

func (a InteractionOrProximity) KilledByTracked(d Death, player coords.Point, playerKnown bool) bool {
	if d.InteractingWithPlayer {
		return true
	}
	if !playerKnown {
		return false
	}
	radius := a.Radius
	if radius <= 0 {
		radius = DefaultLootRadius
	}
	return d.HealthRatio == 0 && coords.Within(player, d.Pos, radius)
}

// KillAttributionFunc adapts a plain function.
type KillAttributionFunc func(d Death, player coords.Point, playerKnown bool) bool

func (f KillAttributionFunc) KilledByTracked(d Death, player coords.Point, playerKnown bool) bool {
	return f(d, player, playerKnown)
}
