// Package archive keeps short-lived Redis copies of finished games and
// cancelled lobbies, plus per-channel connection presence. The archive is
// what lets a client that reloads after a game ended still rehydrate the
// final snapshot once the live entity is gone.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"njuka/models"
	redis_models "njuka/models/redis"
)

const snapshotTTL = 24 * time.Hour

type Service struct {
	client *redis.Client
}

func NewService(client *redis.Client) *Service {
	return &Service{client: client}
}

// ArchiveGame stores a finished game snapshot with a TTL.
func (s *Service) ArchiveGame(ctx context.Context, g models.Game) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("archive: marshal game %s: %w", g.ID, err)
	}
	if err := s.client.Set(ctx, gameKey(g.ID), payload, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("archive: store game %s: %w", g.ID, err)
	}
	return nil
}

// Game fetches an archived game snapshot; ok is false when none exists.
func (s *Service) Game(ctx context.Context, gameID string) (models.Game, bool, error) {
	raw, err := s.client.Get(ctx, gameKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Game{}, false, nil
	}
	if err != nil {
		return models.Game{}, false, fmt.Errorf("archive: fetch game %s: %w", gameID, err)
	}
	var g models.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return models.Game{}, false, fmt.Errorf("archive: decode game %s: %w", gameID, err)
	}
	return g, true, nil
}

// ArchiveLobby stores a cancelled or completed lobby with a TTL so late
// reconnecting members get a definitive "gone" answer instead of a 404 race.
func (s *Service) ArchiveLobby(ctx context.Context, l models.Lobby) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("archive: marshal lobby %s: %w", l.ID, err)
	}
	if err := s.client.Set(ctx, lobbyKey(l.ID), payload, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("archive: store lobby %s: %w", l.ID, err)
	}
	return nil
}

// Lobby fetches an archived lobby snapshot; ok is false when none exists.
func (s *Service) Lobby(ctx context.Context, lobbyID string) (models.Lobby, bool, error) {
	raw, err := s.client.Get(ctx, lobbyKey(lobbyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Lobby{}, false, nil
	}
	if err != nil {
		return models.Lobby{}, false, fmt.Errorf("archive: fetch lobby %s: %w", lobbyID, err)
	}
	var l models.Lobby
	if err := json.Unmarshal(raw, &l); err != nil {
		return models.Lobby{}, false, fmt.Errorf("archive: decode lobby %s: %w", lobbyID, err)
	}
	return l, true, nil
}

// SetPresence records a player's connection status on a channel.
func (s *Service) SetPresence(ctx context.Context, channel, player string, status redis_models.PlayerStatus) {
	p := redis_models.PlayerPresence{
		Name:     player,
		Status:   status,
		LastPing: time.Now().Unix(),
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.client.HSet(ctx, presenceKey(channel), player, payload).Err(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Str("player", player).Msg("presence update failed")
	}
	s.client.Expire(ctx, presenceKey(channel), snapshotTTL)
}

// Presence lists the recorded presences for a channel.
func (s *Service) Presence(ctx context.Context, channel string) (map[string]redis_models.PlayerPresence, error) {
	raw, err := s.client.HGetAll(ctx, presenceKey(channel)).Result()
	if err != nil {
		return nil, fmt.Errorf("archive: fetch presence %s: %w", channel, err)
	}
	out := make(map[string]redis_models.PlayerPresence, len(raw))
	for name, v := range raw {
		var p redis_models.PlayerPresence
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			continue
		}
		out[name] = p
	}
	return out, nil
}
