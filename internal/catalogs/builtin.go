package catalogs

import "encoding/json"

// Item ids used by the built-in seed data.
const (
	ItemFeather         = 314
	ItemCandle          = 36
	ItemArrowShaft      = 52
	ItemStrengthPotion4 = 113
	ItemCoal            = 453
	ItemIronOre         = 440
	ItemGoldOre         = 444
	ItemFireRune        = 554
	ItemWaterRune       = 555
	ItemAirRune         = 556
	ItemEarthRune       = 557
	ItemMindRune        = 558
	ItemBodyRune        = 559
	ItemTinderbox       = 590
	ItemShortbow        = 841
	ItemBronzeBolts     = 877
	ItemBronzeArrow     = 882
	ItemIronArrow       = 884
	ItemSteelArrow      = 886
	ItemKnife           = 946
	ItemRope            = 954
	ItemLeatherChaps    = 1095
	ItemRunePlatelegs   = 1079
	ItemRunePlatebody   = 1127
	ItemLeatherBody     = 1129
	ItemGreenDhideBody  = 1135
	ItemRuneFullHelm    = 1163
	ItemIronDagger      = 1203
	ItemBronzeDagger    = 1205
	ItemDragonDagger    = 1215
	ItemBronzeSword     = 1277
	ItemIronSword       = 1279
	ItemDragonLongsword = 1305
	ItemSwordfish       = 373
	ItemLobster         = 379
	ItemShark           = 385
	ItemLogs            = 1511
	ItemMagicLogs       = 1513
	ItemYewLogs         = 1515
	ItemNeedle          = 1733
	ItemThread          = 1734
	ItemChisel          = 1755
	ItemBowl            = 1923
	ItemBucket          = 1925
	ItemPot             = 1931
	ItemJug             = 1935
	ItemPotato          = 1942
	ItemOnion           = 1957
	ItemCabbage         = 1965
	ItemCookedChicken   = 2140
	ItemBread           = 2309
	ItemHammer          = 2347
	ItemAttackPotion4   = 2428
	ItemDefencePotion4  = 2432
	ItemIronBolts       = 9140
)

var builtinItems = []ItemDef{
	{ID: ItemHammer, Name: "Hammer", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemChisel, Name: "Chisel", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemTinderbox, Name: "Tinderbox", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemBucket, Name: "Bucket", Price: 2, Tradeable: true, CommonShop: true},
	{ID: ItemJug, Name: "Jug", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemBowl, Name: "Bowl", Price: 4, Tradeable: true, CommonShop: true},
	{ID: ItemPot, Name: "Pot", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemKnife, Name: "Knife", Price: 6, Tradeable: true, CommonShop: true},
	{ID: ItemRope, Name: "Rope", Price: 18, Tradeable: true, CommonShop: true},
	{ID: ItemNeedle, Name: "Needle", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemThread, Name: "Thread", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemBronzeArrow, Name: "Bronze arrow", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemIronArrow, Name: "Iron arrow", Price: 3, Tradeable: true, CommonShop: true},
	{ID: ItemSteelArrow, Name: "Steel arrow", Price: 12, Tradeable: true, CommonShop: true},
	{ID: ItemBronzeBolts, Name: "Bronze bolts", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemIronBolts, Name: "Iron bolts", Price: 3, Tradeable: true, CommonShop: true},
	{ID: ItemBronzeDagger, Name: "Bronze dagger", Price: 10, Tradeable: true, CommonShop: true},
	{ID: ItemBronzeSword, Name: "Bronze sword", Price: 26, Tradeable: true, CommonShop: true},
	{ID: ItemIronDagger, Name: "Iron dagger", Price: 35, Tradeable: true, CommonShop: true},
	{ID: ItemIronSword, Name: "Iron sword", Price: 91, Tradeable: true, CommonShop: true},
	{ID: ItemBread, Name: "Bread", Price: 12, Tradeable: true, CommonShop: true},
	{ID: ItemCabbage, Name: "Cabbage", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemOnion, Name: "Onion", Price: 3, Tradeable: true, CommonShop: true},
	{ID: ItemPotato, Name: "Potato", Price: 1, Tradeable: true, CommonShop: true},
	{ID: ItemAirRune, Name: "Air rune", Price: 4, Tradeable: true, CommonShop: true},
	{ID: ItemWaterRune, Name: "Water rune", Price: 4, Tradeable: true, CommonShop: true},
	{ID: ItemEarthRune, Name: "Earth rune", Price: 4, Tradeable: true, CommonShop: true},
	{ID: ItemFireRune, Name: "Fire rune", Price: 4, Tradeable: true, CommonShop: true},
	{ID: ItemMindRune, Name: "Mind rune", Price: 3, Tradeable: true, CommonShop: true},
	{ID: ItemBodyRune, Name: "Body rune", Price: 3, Tradeable: true, CommonShop: true},
	{ID: ItemShortbow, Name: "Shortbow", Price: 50, Tradeable: true},

	{ID: ItemRunePlatebody, Name: "Rune platebody", Price: 65000, Tradeable: true, PlayerSold: true},
	{ID: ItemRunePlatelegs, Name: "Rune platelegs", Price: 64000, Tradeable: true, PlayerSold: true},
	{ID: ItemRuneFullHelm, Name: "Rune full helm", Price: 35200, Tradeable: true, PlayerSold: true},
	{ID: ItemDragonLongsword, Name: "Dragon longsword", Price: 100000, Tradeable: true, PlayerSold: true},
	{ID: ItemDragonDagger, Name: "Dragon dagger", Price: 30000, Tradeable: true, PlayerSold: true},
	{ID: ItemCookedChicken, Name: "Cooked chicken", Price: 4, Tradeable: true, PlayerSold: true},
	{ID: ItemLobster, Name: "Lobster", Price: 268, Tradeable: true, PlayerSold: true},
	{ID: ItemSwordfish, Name: "Swordfish", Price: 400, Tradeable: true, PlayerSold: true},
	{ID: ItemShark, Name: "Shark", Price: 1000, Tradeable: true, PlayerSold: true},
	{ID: ItemLeatherBody, Name: "Leather body", Price: 21, Tradeable: true, PlayerSold: true},
	{ID: ItemLeatherChaps, Name: "Leather chaps", Price: 20, Tradeable: true, PlayerSold: true},
	{ID: ItemGreenDhideBody, Name: "Green d'hide body", Price: 7800, Tradeable: true, PlayerSold: true},
	{ID: ItemStrengthPotion4, Name: "Strength potion(4)", Price: 1000, Tradeable: true, PlayerSold: true},
	{ID: ItemAttackPotion4, Name: "Attack potion(4)", Price: 10, Tradeable: true, PlayerSold: true},
	{ID: ItemDefencePotion4, Name: "Defence potion(4)", Price: 1, Tradeable: true, PlayerSold: true},
	{ID: ItemYewLogs, Name: "Yew logs", Price: 160, Tradeable: true, PlayerSold: true},
	{ID: ItemMagicLogs, Name: "Magic logs", Price: 320, Tradeable: true, PlayerSold: true},
	{ID: ItemCoal, Name: "Coal", Price: 45, Tradeable: true, PlayerSold: true},
	{ID: ItemIronOre, Name: "Iron ore", Price: 17, Tradeable: true, PlayerSold: true},
	{ID: ItemGoldOre, Name: "Gold ore", Price: 150, Tradeable: true, PlayerSold: true},

	{ID: ItemCandle, Name: "Candle", Price: 3, Tradeable: true},
	{ID: ItemLogs, Name: "Logs", Price: 4, Tradeable: true},
	{ID: ItemArrowShaft, Name: "Arrow shaft", Price: 1, Tradeable: true},
	{ID: ItemFeather, Name: "Feather", Price: 2, Tradeable: true},
}

var builtinSpawns = []SpawnDef{
	{Pos: [3]int{3225, 3218, 0}, Item: ItemBronzeDagger, Note: "Lumbridge"},
	{Pos: [3]int{3207, 3212, 2}, Item: ItemKnife, Note: "Lumbridge castle"},
}

var builtinShops = []ShopDef{
	{Name: "General Store", Items: []int{ItemBucket, ItemTinderbox, ItemChisel, ItemHammer}},
	{Name: "Ranging Shop", Items: []int{ItemBronzeArrow, ItemIronArrow, ItemBronzeBolts, ItemShortbow}},
}

// Builtin returns the seed data compiled into the binary. It is used when no
// config directory is given.
func Builtin() *Catalogs {
	var c Catalogs

	c.Items.Defs = make(map[int]ItemDef, len(builtinItems))
	for _, d := range builtinItems {
		c.Items.Defs[d.ID] = d
	}
	b, _ := json.Marshal(builtinItems)
	c.Items.Digest = sha256Hex(b)

	c.StaticSpawns.Spawns = append([]SpawnDef(nil), builtinSpawns...)
	b, _ = json.Marshal(builtinSpawns)
	c.StaticSpawns.Digest = sha256Hex(b)

	c.Shops.ByName = make(map[string][]int, len(builtinShops))
	for _, s := range builtinShops {
		c.Shops.ByName[s.Name] = append([]int(nil), s.Items...)
	}
	b, _ = json.Marshal(builtinShops)
	c.Shops.Digest = sha256Hex(b)

	return &c
}
