package ground

import "fmt"

// Ownership is who may pick up a ground item.
type Ownership int

const (
	Unknown Ownership = iota
	PlayerDropped
	PlayerLoot
	OtherPlayer
	StaticSpawn
)

var ownershipNames = [...]string{
	Unknown:       "UNKNOWN",
	PlayerDropped: "PLAYER_DROPPED",
	PlayerLoot:    "PLAYER_LOOT",
	OtherPlayer:   "OTHER_PLAYER",
	StaticSpawn:   "STATIC_SPAWN",
}

func (o Ownership) String() string {
	if o < 0 || int(o) >= len(ownershipNames) {
		return fmt.Sprintf("Ownership(%d)", int(o))
	}
	return ownershipNames[o]
}

func (o Ownership) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Ownership) UnmarshalText(b []byte) error {
	for i, n := range ownershipNames {
		if n == string(b) {
			*o = Ownership(i)
			return nil
		}
	}
	return fmt.Errorf("unknown ownership %q", string(b))
}

// Acquirable reports whether the tracked account may pick up an item in this state.
func (o Ownership) Acquirable() bool {
	switch o {
	case PlayerDropped, PlayerLoot, StaticSpawn:
		return true
	default:
		return false
	}
}
