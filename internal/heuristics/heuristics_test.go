package heuristics

import "testing"

func TestClassifyCascadePrecedence(t *testing.T) {
	cases := []struct {
		name    string
		price   int
		catalog bool
		rule    string
	}{
		// Price short-circuits before the supply keyword "iron".
		{"Iron Dagger", 15000, false, RuleExpensive},
		{"Iron Dagger", 35, true, RuleBasicSupply},
		// Processed beats supply: "pot" is a supply keyword, "potion" is processed.
		{"Strength potion(4)", 50, false, RuleProcessed},
		// Supply beats rare: "air rune" is checked before "rune".
		{"Air rune", 4, true, RuleBasicSupply},
		{"Rune platebody", 9000, false, RuleRare},
		{"Magic logs", 320, false, RuleProcessed},
		{"Feather", 2, true, RuleDefault},
		{"COOKED CHICKEN", 4, false, RuleProcessed},
	}
	for _, tc := range cases {
		v := Classify(tc.name, tc.price)
		if v.Catalog != tc.catalog || v.Rule != tc.rule {
			t.Fatalf("Classify(%q,%d)=%+v want catalog=%v rule=%s", tc.name, tc.price, v, tc.catalog, tc.rule)
		}
	}
}

func TestLooksLikeCatalogItemBoundary(t *testing.T) {
	if !LooksLikeCatalogItem("Shortbow", DefaultPriceCeiling) {
		t.Fatalf("price equal to the ceiling must not count as expensive")
	}
	if LooksLikeCatalogItem("Shortbow", DefaultPriceCeiling+1) {
		t.Fatalf("price above the ceiling must count as expensive")
	}
}

func TestDefaultRulesOrder(t *testing.T) {
	rules := DefaultRules(0)
	want := []string{RuleExpensive, RuleProcessed, RuleBasicSupply, RuleRare}
	if len(rules) != len(want) {
		t.Fatalf("rules=%d want %d", len(rules), len(want))
	}
	for i, r := range rules {
		if r.Name != want[i] {
			t.Fatalf("rule %d=%s want %s", i, r.Name, want[i])
		}
	}
	if rules[0].PriceAbove != DefaultPriceCeiling {
		t.Fatalf("non-positive ceiling should fall back to default, got %d", rules[0].PriceAbove)
	}
}

func TestCustomPriceCeiling(t *testing.T) {
	c := NewCascade(1000)
	if c.LooksLikeCatalogItem("Hammer", 1001) {
		t.Fatalf("expected custom ceiling to apply")
	}
}

type mapLookup map[int]ItemInfo

func (m mapLookup) Item(id int) (ItemInfo, bool) {
	info, ok := m[id]
	return info, ok
}

func TestAnalyzerListsBeforeCascade(t *testing.T) {
	const (
		hammer  = 2347
		lobster = 379
		feather = 314
	)
	a := NewAnalyzer(NewCascade(0), []int{hammer}, []int{lobster})
	lookup := mapLookup{
		// Price alone would reject the hammer; the common list wins.
		hammer:  {Name: "Hammer", Price: 50000},
		lobster: {Name: "Lobster", Price: 150},
		feather: {Name: "Feather", Price: 2},
	}
	if !a.LikelyCatalogItem(lookup, hammer) {
		t.Fatalf("common shop list should mark hammer as stock")
	}
	if a.LikelyCatalogItem(lookup, lobster) {
		t.Fatalf("player sold list should mark lobster as not stock")
	}
	if !a.LikelyCatalogItem(lookup, feather) {
		t.Fatalf("feather should fall through to cascade default")
	}
	if a.LikelyCatalogItem(lookup, 999999) {
		t.Fatalf("unknown item must not be stock")
	}
	if a.LikelyCatalogItem(nil, feather) {
		t.Fatalf("nil lookup must not be stock")
	}
}
