package realtime

import "fmt"

// Channel key helpers, one logical channel per lobby id and per active game
// id. Keeping the format in one place avoids drifting key strings.

func LobbyChannel(lobbyID string) string {
	return fmt.Sprintf("lobby:%s", lobbyID)
}

func GameChannel(gameID string) string {
	return fmt.Sprintf("game:%s", gameID)
}
