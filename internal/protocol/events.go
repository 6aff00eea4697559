package protocol

// Event kinds.
const (
	EventPlayerState   = "PLAYER_STATE"
	EventItemSpawned   = "ITEM_SPAWNED"
	EventItemDespawned = "ITEM_DESPAWNED"
	EventPlayerDrop    = "PLAYER_DROP"
	EventActorDeath    = "ACTOR_DEATH"
	EventShopOpened    = "SHOP_OPENED"
	EventShopClosed    = "SHOP_CLOSED"
	EventGameTick      = "GAME_TICK"
	EventGameState     = "GAME_STATE"
)

// Game states reported with GAME_STATE.
const (
	GameStateLoggedIn    = "LOGGED_IN"
	GameStateHopping     = "HOPPING"
	GameStateLoginScreen = "LOGIN_SCREEN"
)

// EVENT (host -> server). Only the fields relevant to Kind are set.
type EventMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq,omitempty"`
	// TimeMs is the host wall clock in unix milliseconds. Replay follows it with -host_clock.
	TimeMs int64  `json:"time_ms,omitempty"`
	Kind   string `json:"kind"`

	Pos  *[3]int `json:"pos,omitempty"`
	Item *int    `json:"item,omitempty"`

	// PLAYER_STATE
	Name        string `json:"name,omitempty"`
	AccountType string `json:"account_type,omitempty"`

	// ACTOR_DEATH
	NPCIndex              int  `json:"npc_index,omitempty"`
	InteractingWithPlayer bool `json:"interacting_with_player,omitempty"`
	HealthRatio           *int `json:"health_ratio,omitempty"`

	// SHOP_OPENED
	ShopDefID int        `json:"shop_def_id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Items     []ShopSlot `json:"items,omitempty"`

	// GAME_TICK
	Tick uint64 `json:"tick,omitempty"`

	// GAME_STATE
	State string `json:"state,omitempty"`
}

type ShopSlot struct {
	Item int `json:"item"`
	Qty  int `json:"qty"`
}
