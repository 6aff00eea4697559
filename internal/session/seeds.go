package session

import (
	"ironfilter.ai/internal/catalogs"
	"ironfilter.ai/internal/ground"
	"ironfilter.ai/internal/heuristics"
	"ironfilter.ai/internal/protocol"
	"ironfilter.ai/internal/shop"
	"ironfilter.ai/internal/tuning"
)

// Seeds is the process-wide static data shared by every session. Sessions
// read it; only the bootstrap path writes to it.
type Seeds struct {
	Statics  *ground.StaticSpawns
	Known    *shop.KnownCatalog
	Items    heuristics.ItemLookup
	Analyzer *heuristics.Analyzer
	Digests  protocol.CatalogDigests
}

func NewSeeds(cats *catalogs.Catalogs, tune tuning.Tuning) *Seeds {
	if cats == nil {
		cats = catalogs.Builtin()
	}
	s := &Seeds{
		Statics: ground.NewStaticSpawns(),
		Known:   shop.NewKnownCatalog(),
		Items:   cats.Items,
		Digests: protocol.CatalogDigests{
			ItemsDigest:        cats.Items.Digest,
			StaticSpawnsDigest: cats.StaticSpawns.Digest,
			ShopsDigest:        cats.Shops.Digest,
		},
	}
	for _, sp := range cats.StaticSpawns.Spawns {
		s.Statics.Add(sp.Point(), sp.Item)
	}
	for _, name := range cats.Shops.Names() {
		s.Known.Seed(name, cats.Shops.ByName[name])
	}
	common, sold := cats.Items.Lists()
	s.Analyzer = heuristics.NewAnalyzer(heuristics.NewCascade(tune.CatalogPriceCeiling), common, sold)
	return s
}

// LikelyCatalogItem implements shop.Guesser.
func (s *Seeds) LikelyCatalogItem(itemID int) bool {
	return s.Analyzer.LikelyCatalogItem(s.Items, itemID)
}
