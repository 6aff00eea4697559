package heuristics

// ItemInfo is the metadata the host knows about an item definition.
type ItemInfo struct {
	ID        int
	Name      string
	Price     int
	Tradeable bool
	Noted     bool
}

// ItemLookup resolves item metadata. Implementations must be safe for
// concurrent use.
type ItemLookup interface {
	Item(id int) (ItemInfo, bool)
}

// Analyzer layers explicit id lists over the keyword cascade: an id on the
// common shop list is stock, an id on the player-sold list is not, anything
// else falls through to the cascade.
type Analyzer struct {
	Cascade    Cascade
	CommonShop map[int]struct{}
	PlayerSold map[int]struct{}
}

func NewAnalyzer(c Cascade, commonShop, playerSold []int) *Analyzer {
	a := &Analyzer{
		Cascade:    c,
		CommonShop: make(map[int]struct{}, len(commonShop)),
		PlayerSold: make(map[int]struct{}, len(playerSold)),
	}
	for _, id := range commonShop {
		a.CommonShop[id] = struct{}{}
	}
	for _, id := range playerSold {
		a.PlayerSold[id] = struct{}{}
	}
	return a
}

// Analyze decides for an item whose metadata is known.
func (a *Analyzer) Analyze(info ItemInfo) Verdict {
	if _, ok := a.CommonShop[info.ID]; ok {
		return Verdict{Catalog: true, Rule: "common_shop_list"}
	}
	if _, ok := a.PlayerSold[info.ID]; ok {
		return Verdict{Catalog: false, Rule: "player_sold_list"}
	}
	return a.Cascade.Classify(info.Name, info.Price)
}

// LikelyCatalogItem resolves id through lookup first. Unknown items are never
// treated as stock.
func (a *Analyzer) LikelyCatalogItem(lookup ItemLookup, id int) bool {
	if lookup == nil {
		return false
	}
	info, ok := lookup.Item(id)
	if !ok {
		return false
	}
	info.ID = id
	return a.Analyze(info).Catalog
}
