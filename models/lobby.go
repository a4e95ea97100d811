package models

import "time"

// Lobby is a pre-game room. Players and PlayerUIDs are parallel lists in
// join order, with the host at index 0. Once Started flips, the lobby is
// logically superseded by the game identified by GameID and is hidden from
// discovery (it stays fetchable by id for reconciliation). Cancelled marks a
// dead lobby; such snapshots live only in the archive, and clients treat them
// as a definitive end of session.
type Lobby struct {
	ID          string    `json:"id"`
	Host        string    `json:"host"`
	HostUID     string    `json:"host_uid"`
	Players     []string  `json:"players"`
	PlayerUIDs  []string  `json:"player_uids"`
	MaxPlayers  int       `json:"max_players"`
	EntryFee    int64     `json:"entry_fee"`
	Started     bool      `json:"started"`
	Cancelled   bool      `json:"cancelled,omitempty"`
	GameID      string    `json:"game_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Clone returns a deep copy for snapshots leaving the store.
func (l Lobby) Clone() Lobby {
	out := l
	out.Players = append([]string(nil), l.Players...)
	out.PlayerUIDs = append([]string(nil), l.PlayerUIDs...)
	return out
}

// MemberIndex finds a member position by user id, or -1.
func (l Lobby) MemberIndex(uid string) int {
	for i, id := range l.PlayerUIDs {
		if id == uid {
			return i
		}
	}
	return -1
}
