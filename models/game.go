package models

// Player is a seat inside a Game. Name matching is case-insensitive, so names
// must be unique within a game. The wallet balance is never stored here; UID
// resolves it through the wallet service.
type Player struct {
	Name    string `json:"name"`
	UID     string `json:"uid"`
	Hand    []Card `json:"hand"`
	IsCPU   bool   `json:"is_cpu"`
	HasQuit bool   `json:"has_quit"`
}

// Game is the authoritative state of a single round. It is mutated only by
// the game engine, always under the per-game store lock.
type Game struct {
	ID      string   `json:"id"`
	Mode    string   `json:"mode"`
	Deck    []Card   `json:"deck"`
	Pot     []Card   `json:"pot"`
	Players []Player `json:"players"`

	CurrentPlayer     int  `json:"current_player"`
	HasDrawn          bool `json:"has_drawn"`
	AnyPlayerHasDrawn bool `json:"any_player_has_drawn"`
	MaxPlayers        int  `json:"max_players"`

	EntryFee  int64 `json:"entry_fee"`
	PotAmount int64 `json:"pot_amount"`

	GameOver  bool `json:"game_over"`
	Forfeited bool `json:"forfeited"`
	Stalemate bool `json:"stalemate"`

	Winner       string `json:"winner"`
	WinnerUID    string `json:"winner_uid"`
	WinnerHand   []Card `json:"winner_hand"`
	WinnerAmount int64  `json:"winner_amount"`
	HouseCut     int64  `json:"house_cut"`
}

// Clone returns a deep copy. Snapshots handed to the fan-out layer and to
// HTTP responses must not alias the stored state.
func (g Game) Clone() Game {
	out := g
	out.Deck = append([]Card(nil), g.Deck...)
	out.Pot = append([]Card(nil), g.Pot...)
	out.WinnerHand = append([]Card(nil), g.WinnerHand...)
	out.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		cp := p
		cp.Hand = append([]Card(nil), p.Hand...)
		out.Players[i] = cp
	}
	return out
}

// CardCount is the total number of cards in play (deck + hands + pot).
// It must equal the deck size at every point between transitions.
func (g Game) CardCount() int {
	n := len(g.Deck) + len(g.Pot)
	for _, p := range g.Players {
		n += len(p.Hand)
	}
	return n
}

// ActivePlayers counts seats that have not quit.
func (g Game) ActivePlayers() int {
	n := 0
	for _, p := range g.Players {
		if !p.HasQuit {
			n++
		}
	}
	return n
}

// PlayerIndexByUID finds a seat by user id, or -1.
func (g Game) PlayerIndexByUID(uid string) int {
	for i, p := range g.Players {
		if p.UID == uid {
			return i
		}
	}
	return -1
}
