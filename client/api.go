// Package client is the reference client for the Njuka session protocol: a
// typed REST client, a push-channel subscriber and the session reconciler
// that keeps a local projection of server-authoritative state correct across
// push, polling and reloads. It backs bots and integration tests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"njuka/models"
)

// APIError is a structured failure from a mutation endpoint.
type APIError struct {
	Status    int    `json:"-"`
	Reason    string `json:"error"`
	Required  int64  `json:"required,omitempty"`
	Available int64  `json:"available,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Reason, e.Status)
}

// IsNotFound reports whether err is a 404 from the server, which the
// reconciler treats as "session expired".
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// API is a typed HTTP client for the REST surface.
type API struct {
	base string
	hc   *http.Client
}

func NewAPI(base string) *API {
	return &API{base: base, hc: &http.Client{Timeout: 10 * time.Second}}
}

// JoinResult is the join/start response: the updated lobby plus the game
// when the call triggered (or followed) the quorum transition.
type JoinResult struct {
	Lobby models.Lobby `json:"lobby"`
	Game  *models.Game `json:"game"`
}

func (a *API) CreateLobby(ctx context.Context, host, hostUID string, maxPlayers int, entryFee int64) (models.Lobby, error) {
	var out models.Lobby
	body := map[string]any{"host": host, "host_uid": hostUID, "max_players": maxPlayers, "entry_fee": entryFee}
	err := a.do(ctx, http.MethodPost, "/lobby/create", body, &out)
	return out, err
}

func (a *API) JoinLobby(ctx context.Context, lobbyID, player, playerUID string) (JoinResult, error) {
	var out JoinResult
	body := map[string]any{"player": player, "player_uid": playerUID}
	err := a.do(ctx, http.MethodPost, "/lobby/"+lobbyID+"/join", body, &out)
	return out, err
}

func (a *API) ListLobbies(ctx context.Context) ([]models.Lobby, error) {
	var out []models.Lobby
	err := a.do(ctx, http.MethodGet, "/lobby/list", nil, &out)
	return out, err
}

func (a *API) GetLobby(ctx context.Context, lobbyID string) (models.Lobby, error) {
	var out models.Lobby
	err := a.do(ctx, http.MethodGet, "/lobby/"+lobbyID, nil, &out)
	return out, err
}

func (a *API) CancelLobby(ctx context.Context, lobbyID, hostUID string) error {
	return a.do(ctx, http.MethodPost, "/lobby/"+lobbyID+"/cancel?host_uid="+url.QueryEscape(hostUID), nil, nil)
}

func (a *API) QuitLobby(ctx context.Context, lobbyID, playerUID string) error {
	return a.do(ctx, http.MethodPost, "/lobby/"+lobbyID+"/quit?player_uid="+url.QueryEscape(playerUID), nil, nil)
}

func (a *API) StartLobby(ctx context.Context, lobbyID, hostUID string) (JoinResult, error) {
	var out JoinResult
	err := a.do(ctx, http.MethodPost, "/lobby/"+lobbyID+"/start?host_uid="+url.QueryEscape(hostUID), nil, &out)
	return out, err
}

func (a *API) NewSoloGame(ctx context.Context, mode, playerName, playerUID string, cpuCount int, entryFee int64) (models.Game, error) {
	var out models.Game
	q := url.Values{}
	q.Set("mode", mode)
	q.Set("player_name", playerName)
	q.Set("player_uid", playerUID)
	q.Set("cpu_count", strconv.Itoa(cpuCount))
	q.Set("entry_fee", strconv.FormatInt(entryFee, 10))
	err := a.do(ctx, http.MethodPost, "/new_game?"+q.Encode(), nil, &out)
	return out, err
}

func (a *API) GetGame(ctx context.Context, gameID string) (models.Game, error) {
	var out models.Game
	err := a.do(ctx, http.MethodGet, "/game/"+gameID, nil, &out)
	return out, err
}

func (a *API) Draw(ctx context.Context, gameID, playerUID string) (models.Game, error) {
	var out models.Game
	err := a.do(ctx, http.MethodPost, "/game/"+gameID+"/draw?player_uid="+url.QueryEscape(playerUID), nil, &out)
	return out, err
}

func (a *API) Discard(ctx context.Context, gameID, playerUID string, cardIndex int) (models.Game, error) {
	var out models.Game
	q := url.Values{}
	q.Set("card_index", strconv.Itoa(cardIndex))
	q.Set("player_uid", playerUID)
	err := a.do(ctx, http.MethodPost, "/game/"+gameID+"/discard?"+q.Encode(), nil, &out)
	return out, err
}

func (a *API) QuitGame(ctx context.Context, gameID, playerUID string) error {
	return a.do(ctx, http.MethodPost, "/game/"+gameID+"/quit?player_uid="+url.QueryEscape(playerUID), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Reason: "unknown error"}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("api: decode response: %w", err)
		}
	}
	return nil
}
