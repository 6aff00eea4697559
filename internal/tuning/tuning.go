package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	KillWindowMs int `yaml:"kill_window_ms" json:"kill_window_ms"`
	DropWindowMs int `yaml:"drop_window_ms" json:"drop_window_ms"`
	LootRadius   int `yaml:"loot_radius" json:"loot_radius"`

	// Game ticks between maintenance passes (100 ticks is one minute).
	MaintenanceEveryTicks int `yaml:"maintenance_every_ticks" json:"maintenance_every_ticks"`

	CatalogPriceCeiling int `yaml:"catalog_price_ceiling" json:"catalog_price_ceiling"`

	Filter Filter `yaml:"filter" json:"filter"`
}

// Filter toggles are read by the menu filter only; the trackers always
// classify everything.
type Filter struct {
	HideGroundItems    bool `yaml:"hide_ground_items" json:"hide_ground_items"`
	ShowOwnDrops       bool `yaml:"show_own_drops" json:"show_own_drops"`
	ShowStaticSpawns   bool `yaml:"show_static_spawns" json:"show_static_spawns"`
	HideShopItems      bool `yaml:"hide_shop_items" json:"hide_shop_items"`
	ShowOriginalStock  bool `yaml:"show_original_stock" json:"show_original_stock"`
	RemoveClickOptions bool `yaml:"remove_click_options" json:"remove_click_options"`
}

func Defaults() Tuning {
	return Tuning{
		KillWindowMs:          10_000,
		DropWindowMs:          60_000,
		LootRadius:            10,
		MaintenanceEveryTicks: 100,
		CatalogPriceCeiling:   10_000,
		Filter: Filter{
			HideGroundItems:    true,
			ShowOwnDrops:       true,
			ShowStaticSpawns:   true,
			HideShopItems:      true,
			ShowOriginalStock:  true,
			RemoveClickOptions: true,
		},
	}
}

func (t Tuning) KillWindow() time.Duration {
	return time.Duration(t.KillWindowMs) * time.Millisecond
}

func (t Tuning) DropWindow() time.Duration {
	return time.Duration(t.DropWindowMs) * time.Millisecond
}

func (t Tuning) Validate() error {
	if t.KillWindowMs <= 0 {
		return fmt.Errorf("kill_window_ms must be > 0")
	}
	if t.DropWindowMs <= 0 {
		return fmt.Errorf("drop_window_ms must be > 0")
	}
	if t.LootRadius <= 0 {
		return fmt.Errorf("loot_radius must be > 0")
	}
	if t.MaintenanceEveryTicks <= 0 {
		return fmt.Errorf("maintenance_every_ticks must be > 0")
	}
	if t.CatalogPriceCeiling <= 0 {
		return fmt.Errorf("catalog_price_ceiling must be > 0")
	}
	return nil
}

// Load reads a tuning file on top of Defaults, so omitted keys keep their
// default values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
