package redis

type PlayerStatus string

const (
	StatusOnline  PlayerStatus = "online"
	StatusOffline PlayerStatus = "offline"
)

// PlayerPresence tracks who is connected to a lobby or game channel. Stored
// in Redis under the channel's presence hash, value is JSON.
type PlayerPresence struct {
	Name     string       `json:"name"`
	Status   PlayerStatus `json:"status"`
	LastPing int64        `json:"last_ping"` // Unix timestamp
}
