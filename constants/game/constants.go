package game_constants

import "time"

// Deck composition. Order here is the deal order before shuffling.
var (
	Suits = []string{"♠", "♥", "♦", "♣"}
	Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

const DeckSize = 52

// Hand sizes: 3 between turns, 4 transiently after a draw.
const (
	HandSize      = 3
	DrawnHandSize = 4
)

// Lobby capacity bounds. A lobby auto-starts when it fills up; the host can
// force-start once MinLobbyPlayers have joined.
const (
	MinLobbyPlayers = 2
	MaxLobbyPlayers = 4
)

// HouseCutPercent is the platform's fixed cut of the winning pot.
const HouseCutPercent = 10

// Game modes accepted by the engine.
const (
	ModeMultiplayer = "multiplayer"
	ModeCPU         = "cpu"
	ModeTutorial    = "tutorial"
)

// CPUDemoName is the opponent seat used by tutorial games.
const CPUDemoName = "CPU Demo"

// PollInterval is the client fallback polling cadence when the push channel
// is down or silent.
const PollInterval = 3 * time.Second

// Lobby expiry thresholds applied by the discovery sweep.
const (
	StartedLobbyTTL = 10 * time.Minute
	OpenLobbyTTL    = 30 * time.Minute
)
