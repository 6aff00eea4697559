package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"ironfilter.ai/internal/coords"
	"ironfilter.ai/internal/heuristics"
)

// Catalogs is the static seed data loaded once at startup.
type Catalogs struct {
	Items        ItemCatalog
	StaticSpawns SpawnCatalog
	Shops        ShopCatalog
}

type ItemCatalog struct {
	Defs   map[int]ItemDef
	Digest string
}

type ItemDef struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Price      int    `json:"price,omitempty"`
	Tradeable  bool   `json:"tradeable,omitempty"`
	Noted      bool   `json:"noted,omitempty"`
	CommonShop bool   `json:"common_shop,omitempty"`
	PlayerSold bool   `json:"player_sold,omitempty"`
}

type SpawnCatalog struct {
	Spawns []SpawnDef
	Digest string
}

type SpawnDef struct {
	Pos  [3]int `json:"pos"`
	Item int    `json:"item"`
	Note string `json:"note,omitempty"`
}

func (s SpawnDef) Point() coords.Point { return coords.FromArray(s.Pos) }

type ShopCatalog struct {
	ByName map[string][]int
	Digest string
}

type ShopDef struct {
	Name  string `json:"name"`
	Items []int  `json:"items"`
}

// Load reads items.json, static_spawns.json and shops.json from configDir.
// Missing files yield empty catalogs. An empty configDir yields Builtin().
func Load(configDir string) (*Catalogs, error) {
	if configDir == "" {
		return Builtin(), nil
	}
	var c Catalogs
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadSpawns(filepath.Join(configDir, "static_spawns.json"), &c.StaticSpawns); err != nil {
		return nil, err
	}
	if err := loadShops(filepath.Join(configDir, "shops.json"), &c.Shops); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func readOptional(path string) ([]byte, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func loadItems(path string, out *ItemCatalog) error {
	out.Defs = map[int]ItemDef{}
	raw, ok, err := readOptional(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)
	if !ok {
		return nil
	}
	if err := validate("items.json", raw); err != nil {
		return err
	}
	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	for _, d := range defs {
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("items.json: duplicate id %d", d.ID)
		}
		out.Defs[d.ID] = d
	}
	return nil
}

func loadSpawns(path string, out *SpawnCatalog) error {
	raw, ok, err := readOptional(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)
	if !ok {
		return nil
	}
	if err := validate("static_spawns.json", raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, &out.Spawns); err != nil {
		return fmt.Errorf("static_spawns.json: %w", err)
	}
	for i, s := range out.Spawns {
		if !s.Point().Valid() {
			return fmt.Errorf("static_spawns.json: entry %d: invalid pos %v", i, s.Pos)
		}
	}
	return nil
}

func loadShops(path string, out *ShopCatalog) error {
	out.ByName = map[string][]int{}
	raw, ok, err := readOptional(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)
	if !ok {
		return nil
	}
	if err := validate("shops.json", raw); err != nil {
		return err
	}
	var defs []ShopDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("shops.json: %w", err)
	}
	for _, d := range defs {
		out.ByName[d.Name] = append(out.ByName[d.Name], d.Items...)
	}
	return nil
}

// Item implements heuristics.ItemLookup.
func (c ItemCatalog) Item(id int) (heuristics.ItemInfo, bool) {
	d, ok := c.Defs[id]
	if !ok {
		return heuristics.ItemInfo{}, false
	}
	return heuristics.ItemInfo{
		ID:        d.ID,
		Name:      d.Name,
		Price:     d.Price,
		Tradeable: d.Tradeable,
		Noted:     d.Noted,
	}, true
}

// Lists returns the ids flagged common_shop and player_sold, sorted.
func (c ItemCatalog) Lists() (commonShop, playerSold []int) {
	for id, d := range c.Defs {
		if d.CommonShop {
			commonShop = append(commonShop, id)
		}
		if d.PlayerSold {
			playerSold = append(playerSold, id)
		}
	}
	sort.Ints(commonShop)
	sort.Ints(playerSold)
	return commonShop, playerSold
}

func (c ShopCatalog) Names() []string {
	out := make([]string, 0, len(c.ByName))
	for n := range c.ByName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Sorted returns the item definitions ordered by id.
func (c ItemCatalog) Sorted() []ItemDef {
	out := make([]ItemDef, 0, len(c.Defs))
	for _, d := range c.Defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
