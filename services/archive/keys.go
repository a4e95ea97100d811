package archive

/**
 * Redis key format helpers. Keeping every key format here avoids scattering
 * fmt.Sprintf calls with subtly different specs around the codebase.
 */

import "fmt"

func gameKey(gameID string) string {
	return fmt.Sprintf("archive:game:%s", gameID)
}

func lobbyKey(lobbyID string) string {
	return fmt.Sprintf("archive:lobby:%s", lobbyID)
}

func presenceKey(channel string) string {
	return fmt.Sprintf("presence:%s", channel)
}
