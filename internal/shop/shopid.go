package shop

import (
	"fmt"
	"strconv"
	"strings"

	"ironfilter.ai/internal/coords"
)

// ID identifies a shop for the lifetime of a session.
//
// Host-supplied definition ids are stable. Location-derived ids are not: two
// shops opened from the same tile share an id and their catalogs merge, and a
// shop reached from a different tile gets a new one.
type ID string

const UnknownShopName = "Unknown_Shop"

func (id ID) Stable() bool { return strings.HasPrefix(string(id), "def:") }

// DeriveID prefers the host's shop definition id and falls back to the
// tracked player's tile. ok is false when neither is available.
func DeriveID(definitionID int, player coords.Point, playerKnown bool) (ID, bool) {
	if definitionID > 0 {
		return ID("def:" + strconv.Itoa(definitionID)), true
	}
	if playerKnown && player.Valid() {
		return ID("loc:" + player.String()), true
	}
	return "", false
}

// DisplayName returns the title shown by the shop interface, or a name built
// from the player's tile when the title is unavailable.
func DisplayName(title string, player coords.Point, playerKnown bool) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	if playerKnown {
		return fmt.Sprintf("Shop_%d_%d", player.X, player.Y)
	}
	return UnknownShopName
}
