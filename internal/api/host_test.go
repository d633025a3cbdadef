package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/franbe7/XLBALL/internal/config"
	"github.com/franbe7/XLBALL/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	method      string
	path        string
	contentType string
	body        string
}

type fakeBridge struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (b *fakeBridge) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		b.mu.Lock()
		b.calls = append(b.calls, recordedCall{
			method:      r.Method,
			path:        r.URL.Path,
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		b.mu.Unlock()

		switch r.URL.Path {
		case "/players":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"id":1,"name":"Leo","team":1,"auth":"abc"},{"id":2,"name":"Kun","team":0}]`))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
}

func (b *fakeBridge) last() recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

func newTestClient(t *testing.T) (*HostClient, *fakeBridge) {
	t.Helper()
	bridge := &fakeBridge{}
	srv := httptest.NewServer(bridge.handler(t))
	t.Cleanup(srv.Close)

	client := NewHostClient(&config.Config{HostURL: srv.URL + "/"}, zerolog.New(io.Discard))
	return client, bridge
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestHostClientPlayers(t *testing.T) {
	client, bridge := newTestClient(t)

	players, err := client.Players(testCtx(t))
	require.NoError(t, err)

	assert.Equal(t, []domain.Player{
		{ID: 1, Name: "Leo", Team: domain.TeamRed, Auth: "abc"},
		{ID: 2, Name: "Kun", Team: domain.TeamSpectator},
	}, players)
	assert.Equal(t, http.MethodGet, bridge.last().method)
}

func TestHostClientAnnounce(t *testing.T) {
	client, bridge := newTestClient(t)
	target := 4

	err := client.Announce(testCtx(t), domain.Announcement{
		Message:  "hola",
		TargetID: &target,
		Color:    0x9ad0ff,
		Style:    domain.StyleNormal,
		Sound:    1,
	})
	require.NoError(t, err)

	call := bridge.last()
	assert.Equal(t, "/announce", call.path)
	assert.Equal(t, "application/json", call.contentType)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(call.body), &got))
	assert.Equal(t, "hola", got["message"])
	assert.EqualValues(t, 4, got["targetId"])
	assert.Equal(t, "normal", got["style"])
}

func TestHostClientBroadcastOmitsTarget(t *testing.T) {
	client, bridge := newTestClient(t)

	require.NoError(t, client.Announce(testCtx(t), domain.Announcement{Message: "all"}))

	assert.NotContains(t, bridge.last().body, "targetId")
}

func TestHostClientSetAdminAndStadium(t *testing.T) {
	client, bridge := newTestClient(t)

	require.NoError(t, client.SetAdmin(testCtx(t), 7, true))
	assert.Equal(t, "/admin", bridge.last().path)
	assert.JSONEq(t, `{"playerId":7,"admin":true}`, bridge.last().body)

	require.NoError(t, client.SetCustomStadium(testCtx(t), `{"name":"MVP"}`))
	assert.Equal(t, "/stadium", bridge.last().path)
	assert.Equal(t, `{"name":"MVP"}`, bridge.last().body)
	assert.Contains(t, bridge.last().contentType, "text/plain")
}

func TestHostClientOpenRoom(t *testing.T) {
	client, bridge := newTestClient(t)
	cfg := &config.Config{RoomName: "XL", MaxPlayers: 12, PlayerName: "StatsBot", Token: "thr1.x"}

	require.NoError(t, client.OpenRoom(testCtx(t), RoomSettingsFrom(cfg)))

	assert.Equal(t, "/room", bridge.last().path)
	assert.JSONEq(t, `{"roomName":"XL","maxPlayers":12,"public":false,"playerName":"StatsBot","token":"thr1.x","noPlayer":true}`,
		bridge.last().body)
}

func TestHostClientErrorStatus(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.do(testCtx(t), http.MethodGet, "/broken", "", nil)
	assert.Error(t, err)
}

func TestHostClientCancelledContext(t *testing.T) {
	client, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Players(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
