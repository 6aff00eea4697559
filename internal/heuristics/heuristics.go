package heuristics

import "strings"

type Verdict struct {
	Catalog bool
	Rule    string
}

type Cascade struct {
	Rules []Rule
}

func NewCascade(priceCeiling int) Cascade {
	return Cascade{Rules: DefaultRules(priceCeiling)}
}

var defaultCascade = NewCascade(DefaultPriceCeiling)

// Classify runs the cascade and reports which rule decided.
func (c Cascade) Classify(name string, price int) Verdict {
	lower := strings.ToLower(name)
	for _, r := range c.Rules {
		if r.matches(lower, price) {
			return Verdict{Catalog: r.Catalog, Rule: r.Name}
		}
	}
	return Verdict{Catalog: true, Rule: RuleDefault}
}

func (c Cascade) LooksLikeCatalogItem(name string, price int) bool {
	return c.Classify(name, price).Catalog
}

// LooksLikeCatalogItem uses the default cascade.
func LooksLikeCatalogItem(name string, price int) bool {
	return defaultCascade.LooksLikeCatalogItem(name, price)
}

func Classify(name string, price int) Verdict {
	return defaultCascade.Classify(name, price)
}
