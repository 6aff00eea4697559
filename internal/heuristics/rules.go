// Package heuristics guesses whether an item is ordinary shop stock from its
// name and price alone. It is lossy by nature: the trackers only consult it when
// no direct evidence (a known catalog, a recorded list) is available.
package heuristics

import "strings"

// DefaultPriceCeiling is the highest price still considered ordinary stock.
const DefaultPriceCeiling = 10000

// Rule is one step of the cascade. A rule with PriceAbove > 0 matches on price,
// otherwise it matches when the lowercased name contains any keyword.
type Rule struct {
	Name       string
	PriceAbove int
	Keywords   []string
	Catalog    bool
}

func (r Rule) matches(lowerName string, price int) bool {
	if r.PriceAbove > 0 {
		return price > r.PriceAbove
	}
	for _, kw := range r.Keywords {
		if strings.Contains(lowerName, kw) {
			return true
		}
	}
	return false
}

const (
	RuleExpensive   = "expensive"
	RuleProcessed   = "processed"
	RuleBasicSupply = "basic_supply"
	RuleRare        = "rare"
	RuleDefault     = "default"
)

// Player-made or enhanced goods.
var ProcessedKeywords = []string{
	"cooked", "roasted", "baked", "barbecued", "grilled",
	"potion", "brew", "mix", "dose", "draught",
	"enchanted", "magic", "blessed", "cursed",
	"crafted", "smithed", "carved", "cut", "polished",
	"refined", "pure", "super", "divine",
}

// Tools, ammunition and low tier materials general stores keep in stock.
var BasicSupplyKeywords = []string{
	"arrow", "bolt", "needle", "thread", "string",
	"chisel", "hammer", "tinderbox", "knife",
	"bucket", "jug", "vial", "bowl", "pot",
	"rope", "candle", "torch", "lantern",
	"bronze", "iron", "steel",
	"leather", "hide",
	"air rune", "water rune", "earth rune", "fire rune", "mind rune", "body rune",
}

// High tier equipment and collectibles.
var RareKeywords = []string{
	"dragon", "rune", "adamant", "mithril",
	"abyssal", "barrows", "crystal", "elven",
	"godsword", "whip", "dagger p++", "sword p++",
	"amulet of", "ring of", "necklace of",
	"clue", "casket", "scroll",
	"rare", "special", "unique",
}

// DefaultRules returns the cascade in evaluation order. The first matching rule
// decides; when none match the item is treated as catalog stock.
func DefaultRules(priceCeiling int) []Rule {
	if priceCeiling <= 0 {
		priceCeiling = DefaultPriceCeiling
	}
	return []Rule{
		{Name: RuleExpensive, PriceAbove: priceCeiling, Catalog: false},
		{Name: RuleProcessed, Keywords: ProcessedKeywords, Catalog: false},
		{Name: RuleBasicSupply, Keywords: BasicSupplyKeywords, Catalog: true},
		{Name: RuleRare, Keywords: RareKeywords, Catalog: false},
	}
}
