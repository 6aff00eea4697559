package protocol

// HELLO (host -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> host)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Catalogs        CatalogDigests `json:"catalogs"`
	Filter          FilterToggles  `json:"filter"`
}

type CatalogDigests struct {
	ItemsDigest        string `json:"items_digest"`
	StaticSpawnsDigest string `json:"static_spawns_digest"`
	ShopsDigest        string `json:"shops_digest"`
}

type FilterToggles struct {
	HideGroundItems    bool `json:"hide_ground_items"`
	ShowOwnDrops       bool `json:"show_own_drops"`
	ShowStaticSpawns   bool `json:"show_static_spawns"`
	HideShopItems      bool `json:"hide_shop_items"`
	ShowOriginalStock  bool `json:"show_original_stock"`
	RemoveClickOptions bool `json:"remove_click_options"`
}

// Query kinds.
const (
	QueryCanAcquire   = "CAN_ACQUIRE"
	QueryOwnership    = "OWNERSHIP"
	QueryCanPurchase  = "CAN_PURCHASE"
	QueryIsPlayerSold = "IS_PLAYER_SOLD"
	QueryFilterMenu   = "FILTER_MENU"
	QueryStats        = "STATS"
)

// QUERY (host -> server)
type QueryMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ReqID           string      `json:"req_id"`
	Query           string      `json:"query"`
	Pos             *[3]int     `json:"pos,omitempty"`
	Item            *int        `json:"item,omitempty"`
	ShopID          string      `json:"shop_id,omitempty"`
	Entries         []MenuEntry `json:"entries,omitempty"`
}

// MenuEntry is one right-click option offered by the host.
type MenuEntry struct {
	Option string  `json:"option"`
	Target string  `json:"target,omitempty"`
	Item   *int    `json:"item,omitempty"`
	Pos    *[3]int `json:"pos,omitempty"`
}

// RESULT (server -> host)
type ResultMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ReqID           string      `json:"req_id"`
	Query           string      `json:"query"`
	Allowed         *bool       `json:"allowed,omitempty"`
	Ownership       string      `json:"ownership,omitempty"`
	Entries         []MenuEntry `json:"entries,omitempty"`
	Stats           any         `json:"stats,omitempty"`
}
