package http

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memeclash/internal/app"
	"memeclash/internal/config"
	"memeclash/internal/content"
	"memeclash/internal/domain"
	"memeclash/internal/i18n"
)

// captureConn remembers the room code it was told about
type captureConn struct {
	handle   string
	mu       sync.Mutex
	roomCode string
}

func (c *captureConn) Send(message interface{}) error {
	if ev, ok := message.(*domain.GameEvent); ok {
		if p, ok := ev.Payload.(*domain.RoomCreatedPayload); ok {
			c.mu.Lock()
			c.roomCode = p.RoomCode
			c.mu.Unlock()
		}
	}
	return nil
}

func (c *captureConn) GetHandle() string { return c.handle }
func (c *captureConn) Close() error      { return nil }

func newTestServer(t *testing.T, publicURL string) (*Server, *app.GameHub) {
	t.Helper()

	cfg, err := config.Load(config.NewViper(), "")
	require.NoError(t, err)
	cfg.Server.PublicURL = publicURL

	pool, err := content.Load("", "en")
	require.NoError(t, err)
	translator, err := i18n.Load("en")
	require.NoError(t, err)

	hub := app.NewGameHub(app.DefaultOptions(), pool, translator, zap.NewNop())
	t.Cleanup(hub.Close)

	return NewServer(cfg, hub, zap.NewNop()), hub
}

// createRoom opens a room through the hub and returns its code
func createRoom(t *testing.T, hub *app.GameHub, handle string) string {
	t.Helper()
	conn := &captureConn{handle: handle}
	hub.Connect(conn)
	hub.CreateRoom(handle, "Alice", "en")

	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.NotEmpty(t, conn.roomCode)
	return conn.roomCode
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) Response {
	t.Helper()
	resp := Response{Data: data}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := get(s, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var health HealthResponse
	resp := decodeResponse(t, rec, &health)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", health.Status)
}

func TestStats(t *testing.T) {
	s, hub := newTestServer(t, "")
	createRoom(t, hub, "h1")
	createRoom(t, hub, "h2")

	var stats StatsResponse
	decodeResponse(t, get(s, "/api/stats"), &stats)

	assert.Equal(t, StatsResponse{ActiveRooms: 2, TotalPlayers: 2, Connections: 2}, stats)
}

func TestGetRoom(t *testing.T) {
	s, hub := newTestServer(t, "https://memes.example.com/")
	code := createRoom(t, hub, "h1")

	t.Run("existing room, any case", func(t *testing.T) {
		var info RoomInfoResponse
		rec := get(s, "/api/rooms/"+strings.ToLower(code))
		resp := decodeResponse(t, rec, &info)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
		assert.True(t, info.Exists)
		assert.Equal(t, 1, info.PlayerCount)
		assert.Equal(t, domain.PhaseLobby, info.Phase)
		assert.True(t, info.CanJoin)
		assert.Equal(t, "https://memes.example.com/join/"+code, info.InviteLink)
	})

	t.Run("unknown room is not an error", func(t *testing.T) {
		rec := get(s, "/api/rooms/NOPE00")
		assert.Equal(t, http.StatusOK, rec.Code)

		var raw map[string]interface{}
		resp := decodeResponse(t, rec, &raw)
		assert.True(t, resp.Success)
		assert.Equal(t, map[string]interface{}{"exists": false, "playerCount": float64(0), "canJoin": false}, raw)
	})
}

func TestRoomQR(t *testing.T) {
	s, hub := newTestServer(t, "")
	code := createRoom(t, hub, "h1")

	t.Run("existing room", func(t *testing.T) {
		rec := get(s, "/api/rooms/"+code+"/qr")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 320, img.Bounds().Dx())
	})

	t.Run("unknown room", func(t *testing.T) {
		rec := get(s, "/api/rooms/NOPE00/qr")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeResponse(t, rec, nil)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ROOM_NOT_FOUND", resp.Error.Code)
	})
}

func TestInviteLinkFromRequest(t *testing.T) {
	s, _ := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/ABCDEF", nil)
	req.Host = "play.local:8080"
	assert.Equal(t, "http://play.local:8080/join/ABCDEF", s.inviteLink(req, "ABCDEF"))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://play.local:8080/join/ABCDEF", s.inviteLink(req, "ABCDEF"))
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, "")

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
