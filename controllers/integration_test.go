package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"njuka/client"
	"njuka/models"
	"njuka/routes"
	"njuka/services/game"
	"njuka/services/lobby"
	"njuka/services/realtime"
	"njuka/services/store"
	"njuka/services/wallet"
)

func newTestServer(t *testing.T) (*httptest.Server, *wallet.MemoryService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := wallet.NewMemoryService()
	engine := game.NewEngine(store.New[models.Game](), w)
	manager := lobby.NewManager(store.New[models.Lobby](), engine, w)

	r := gin.New()
	routes.SetupRoutes(r, routes.Deps{
		Lobbies: manager,
		Engine:  engine,
		Wallet:  w,
		Hub:     realtime.NewHub(),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, w
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestLobbyToGameOverHTTP(t *testing.T) {
	srv, w := newTestServer(t)
	w.Seed("host", 500)
	w.Seed("u2", 500)

	api := client.NewAPI(srv.URL)
	ctx := context.Background()

	l, err := api.CreateLobby(ctx, "Alice", "host", 2, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, l.Players)

	open, err := api.ListLobbies(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	res, err := api.JoinLobby(ctx, l.ID, "Bob", "u2")
	require.NoError(t, err)
	require.NotNil(t, res.Game, "quorum join must return the game")
	assert.True(t, res.Lobby.Started)
	assert.Equal(t, int64(200), res.Game.PotAmount)

	// Started lobbies leave discovery but stay fetchable.
	open, err = api.ListLobbies(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
	fetched, err := api.GetLobby(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Started)

	// Play a few turns through the HTTP surface.
	g := *res.Game
	for i := 0; i < 4 && !g.GameOver; i++ {
		uid := g.Players[g.CurrentPlayer].UID
		g, err = api.Draw(ctx, g.ID, uid)
		require.NoError(t, err)
		if g.GameOver {
			break
		}
		g, err = api.Discard(ctx, g.ID, uid, 0)
		require.NoError(t, err)
		assert.Equal(t, 52, g.CardCount())
	}
}

func TestDrawOutOfTurnRejectedOverHTTP(t *testing.T) {
	srv, w := newTestServer(t)
	w.Seed("host", 500)
	w.Seed("u2", 500)

	api := client.NewAPI(srv.URL)
	ctx := context.Background()

	l, err := api.CreateLobby(ctx, "Alice", "host", 2, 0)
	require.NoError(t, err)
	res, err := api.JoinLobby(ctx, l.ID, "Bob", "u2")
	require.NoError(t, err)
	require.NotNil(t, res.Game)

	waiting := res.Game.Players[1].UID
	_, err = api.Draw(ctx, res.Game.ID, waiting)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestInsufficientBalanceOverHTTP(t *testing.T) {
	srv, w := newTestServer(t)
	w.Seed("poor", 10)

	api := client.NewAPI(srv.URL)
	_, err := api.CreateLobby(context.Background(), "Alice", "poor", 2, 100)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, int64(100), apiErr.Required)
	assert.Equal(t, int64(10), apiErr.Available)
}

func TestLobbyPushOnJoin(t *testing.T) {
	srv, w := newTestServer(t)
	w.Seed("host", 500)
	w.Seed("u2", 500)

	api := client.NewAPI(srv.URL)
	ctx := context.Background()
	l, err := api.CreateLobby(ctx, "Alice", "host", 3, 100)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/lobby/" + l.ID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	// Keepalive contract: a ping frame is answered with a pong event.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev realtime.Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, realtime.EventPong, ev.Type)

	_, err = api.JoinLobby(ctx, l.ID, "Bob", "u2")
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &ev))
	assert.Equal(t, realtime.EventLobbyUpdate, ev.Type)
}

func TestWSRejectsUnknownEntity(t *testing.T) {
	srv, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/lobby/nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGuestLoginBalanceAndDeposit(t *testing.T) {
	srv, _ := newTestServer(t)

	var login struct {
		Token string `json:"token"`
		UID   string `json:"uid"`
	}
	resp := postJSON(t, srv.URL+"/auth/guest", map[string]string{"name": "Alice"}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, login.Token)
	require.NotEmpty(t, login.UID)

	balanceOf := func() int64 {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/wallet/balance", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+login.Token)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		var out struct {
			Balance int64 `json:"balance"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
		return out.Balance
	}
	assert.Equal(t, int64(0), balanceOf())

	// Deposit webhook credits on success and always acknowledges.
	resp = postJSON(t, srv.URL+"/api/payments/webhook", map[string]any{
		"user_uid": login.UID, "amount": 500, "status": "success", "tx_ref": "tx-1",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(500), balanceOf())

	resp = postJSON(t, srv.URL+"/api/payments/webhook", map[string]any{
		"user_uid": login.UID, "amount": 500, "status": "failed", "tx_ref": "tx-2",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(500), balanceOf())
}

func TestBalanceRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/wallet/balance")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSoloTutorialGame(t *testing.T) {
	srv, _ := newTestServer(t)
	api := client.NewAPI(srv.URL)

	g, err := api.NewSoloGame(context.Background(), "tutorial", "Newbie", "u1", 1, 999)
	require.NoError(t, err)
	assert.Equal(t, int64(0), g.EntryFee, "tutorial games are always free")
	require.Len(t, g.Players, 2)
	assert.True(t, g.Players[1].IsCPU)
}
