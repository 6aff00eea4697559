package session

import "strings"

// Account types reported by the host.
const (
	AccountNormal               = "NORMAL"
	AccountIronman              = "IRONMAN"
	AccountHardcoreIronman      = "HARDCORE_IRONMAN"
	AccountUltimateIronman      = "ULTIMATE_IRONMAN"
	AccountGroupIronman         = "GROUP_IRONMAN"
	AccountHardcoreGroupIronman = "HARDCORE_GROUP_IRONMAN"
)

// Crown markers the client prefixes to ironman names.
var ironmanMarkers = []string{"♦", "♠", "♣"}

// IsRestricted reports whether the account cannot trade with other players.
// An explicit account type wins; otherwise the name is checked for an
// ironman crown.
func IsRestricted(accountType, name string) bool {
	switch strings.ToUpper(strings.TrimSpace(accountType)) {
	case AccountIronman, AccountHardcoreIronman, AccountUltimateIronman,
		AccountGroupIronman, AccountHardcoreGroupIronman:
		return true
	case AccountNormal:
		return false
	}
	for _, m := range ironmanMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
