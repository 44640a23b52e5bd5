package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerName      string     `json:"player_name"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	Secret string `json:"secret,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	GameMode        string      `json:"game_mode"`
	Spawn           [3]float64  `json:"spawn"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz    int    `json:"tick_rate_hz"`
	ChunkSize     [3]int `json:"chunk_size"`
	ChunkRadius   int    `json:"chunk_radius"`
	SurfaceRadius int    `json:"surface_radius"`
	GroundY       int    `json:"ground_y"`
}

// Intent actions.
const (
	ActionLook      = "LOOK"
	ActionSneak     = "SNEAK"
	ActionDigStart  = "DIG_START"
	ActionDigFinish = "DIG_FINISH"
	ActionUseItem   = "USE_ITEM"
)

// INTENT (client -> server): one player-intent event.
type IntentMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Action          string     `json:"action"`
	Pos             [3]int     `json:"pos,omitempty"`
	Face            string     `json:"face,omitempty"`
	Cursor          [3]float64 `json:"cursor,omitempty"`
	Hand            string     `json:"hand,omitempty"`
	Yaw             *float64   `json:"yaw,omitempty"`
}

// DELTA (server -> client): block changes applied during one tick.
type DeltaMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	Blocks          []BlockDelta `json:"blocks"`
}

type BlockDelta struct {
	Pos   [3]int            `json:"pos"`
	Kind  string            `json:"kind"`
	Props map[string]string `json:"props,omitempty"`
}

// CHAT (server -> client)
type ChatMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Text            string `json:"text"`
}
