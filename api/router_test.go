package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-drift/api/i"
	"github.com/beka-birhanu/vinom-drift/api/identity"
	mazeapi "github.com/beka-birhanu/vinom-drift/api/maze"
	"github.com/beka-birhanu/vinom-drift/config"
	"github.com/beka-birhanu/vinom-drift/encoder"
	"github.com/beka-birhanu/vinom-drift/game"
	identitydmn "github.com/beka-birhanu/vinom-drift/identity"
	"github.com/beka-birhanu/vinom-drift/infrastruture/token"
	"github.com/beka-birhanu/vinom-drift/logger"
	"github.com/beka-birhanu/vinom-drift/maze"
	"github.com/beka-birhanu/vinom-drift/service"
	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const pilotKey = "wandering-Lantern-42"

type fixture struct {
	engine  *gin.Engine
	session *game.Session
	manager *service.SessionManager
	token   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mutator, err := maze.NewMutator(maze.StrategyShore)
	require.NoError(t, err)
	session, err := game.New(game.Config{Rows: 4, Cols: 4, Mutator: mutator, MutationProbability: 1, Seed: 5, QueueSize: 4})
	require.NoError(t, err)
	geometry, err := game.NewGeometry(400, 400, 4, 4)
	require.NoError(t, err)

	log, err := logger.New("Test", config.ColorCyan, io.Discard)
	require.NoError(t, err)
	manager, err := service.NewSessionManager(&service.Config{
		Session:  session,
		Geometry: geometry,
		Interval: time.Millisecond,
		Logger:   log,
	})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(pilotKey), bcrypt.MinCost)
	require.NoError(t, err)
	pilot, err := identitydmn.NewPilot("navigator", string(hash))
	require.NoError(t, err)
	tokenizer := token.NewJwtService("test-secret", "vinom-drift")

	mazeController, err := mazeapi.NewMazeController(manager, log)
	require.NoError(t, err)

	router := NewRouter(Config{
		BaseURL: "/api",
		Controllers: []i.Controller{
			identity.NewIdentityServer(service.NewPilotAuth(pilot, tokenizer, time.Minute)),
			mazeController,
		},
		AuthorizationMiddleware: identity.Authorize(tokenizer),
	})

	f := &fixture{engine: router.Engine(), session: session, manager: manager}

	rec := f.do(t, http.MethodPost, "/api/v1/auth/token", `{"name":"navigator","key":"`+pilotKey+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var response identity.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	f.token = response.Token
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) authed(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, method, path, body, http.Header{"Authorization": {"Bearer " + f.token}})
}

func TestAuth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/token", `{"name":"navigator","key":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/token", `{"name":"navigator"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/maze/regenerate", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/maze/regenerate", "", http.Header{"Authorization": {"Token abc"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/maze/regenerate", "", http.Header{"Authorization": {"Bearer abc"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSnapshotEndpoints(t *testing.T) {
	f := newFixture(t)
	want := f.session.Snapshot()

	t.Run("json", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/maze", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, encoder.ContentTypeJSON, rec.Header().Get("Content-Type"))

		snap, err := (&encoder.JSON{}).UnmarshalSnapshot(rec.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, want, snap)
	})

	t.Run("protobuf", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/maze", "", http.Header{"Accept": {encoder.ContentTypeProtobuf}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, encoder.ContentTypeProtobuf, rec.Header().Get("Content-Type"))

		snap, err := (&encoder.Protobuf{}).UnmarshalSnapshot(rec.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, want, snap)
	})

	t.Run("path", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/maze/path", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var response mazeapi.PathResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, want.Path, response.Path)
		assert.Equal(t, len(want.Path), response.Length)
		assert.Equal(t, want.Destination, response.Destination)
	})

	t.Run("ascii", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/maze/ascii", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, strings.Count(rec.Body.String(), "@"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "+---+---+---+---+\n"))
	})
}

func TestIntentEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"move", http.MethodPost, "/api/v1/maze/moves", `{"direction":"south"}`, http.StatusAccepted},
		{"move unknown direction", http.MethodPost, "/api/v1/maze/moves", `{"direction":"sideways"}`, http.StatusBadRequest},
		{"move without direction", http.MethodPost, "/api/v1/maze/moves", `{}`, http.StatusBadRequest},
		{"teleport to cell", http.MethodPost, "/api/v1/maze/teleport", `{"row":2,"col":1}`, http.StatusAccepted},
		{"teleport to pixel", http.MethodPost, "/api/v1/maze/teleport", `{"x":350.5,"y":20}`, http.StatusAccepted},
		{"teleport to both", http.MethodPost, "/api/v1/maze/teleport", `{"row":2,"col":1,"x":3,"y":4}`, http.StatusBadRequest},
		{"teleport to nothing", http.MethodPost, "/api/v1/maze/teleport", `{"row":2}`, http.StatusBadRequest},
		{"teleport outside", http.MethodPost, "/api/v1/maze/teleport", `{"row":4,"col":0}`, http.StatusBadRequest},
		{"teleport off screen", http.MethodPost, "/api/v1/maze/teleport", `{"x":401,"y":0}`, http.StatusBadRequest},
		{"regenerate", http.MethodPost, "/api/v1/maze/regenerate", "", http.StatusAccepted},
		{"mutation", http.MethodPut, "/api/v1/maze/mutation", `{"probability":0}`, http.StatusOK},
		{"mutation out of range", http.MethodPut, "/api/v1/maze/mutation", `{"probability":1.5}`, http.StatusBadRequest},
		{"mutation missing", http.MethodPut, "/api/v1/maze/mutation", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.authed(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestIntentsReachSession(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusAccepted, f.authed(t, http.MethodPost, "/api/v1/maze/teleport", `{"x":350,"y":150}`).Code)
	require.Equal(t, http.StatusAccepted, f.authed(t, http.MethodPost, "/api/v1/maze/regenerate", "").Code)
	require.Equal(t, http.StatusOK, f.authed(t, http.MethodPut, "/api/v1/maze/mutation", `{"probability":0}`).Code)

	snap := f.session.Step()
	assert.Equal(t, maze.CellPosition{Row: 1, Col: 3}, snap.Agent)
	assert.Equal(t, int64(2), snap.Generation)
	assert.Nil(t, snap.LastSwap)
	assert.Equal(t, 0.0, snap.MutationProbability)

	for k := 0; k < 4; k++ {
		require.Equal(t, http.StatusAccepted, f.authed(t, http.MethodPost, "/api/v1/maze/regenerate", "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, f.authed(t, http.MethodPost, "/api/v1/maze/regenerate", "").Code)

	f.session.Stop()
	assert.Equal(t, http.StatusServiceUnavailable, f.authed(t, http.MethodPost, "/api/v1/maze/moves", `{"direction":"east"}`).Code)
}

func TestStream(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.engine)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/maze/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	jsonEncoder := &encoder.JSON{}
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	first, err := jsonEncoder.UnmarshalSnapshot(frame)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Version)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.manager.Run(ctx) }()

	_, frame, err = conn.ReadMessage()
	require.NoError(t, err)
	next, err := jsonEncoder.UnmarshalSnapshot(frame)
	require.NoError(t, err)
	assert.Greater(t, next.Version, first.Version)

	cancel()
	require.NoError(t, <-done)
}
