package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/auth"
	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
	"github.com/vovakirdan/chatrelay/internal/store"
	"github.com/vovakirdan/chatrelay/internal/store/sqlite"
)

const testSecret = "test-secret"

type testEnv struct {
	ts          *httptest.Server
	registry    *core.Registry
	store       store.Store
	authService *auth.Service
	authn       *auth.Authenticator
	jwt         *auth.JWTConfig
	cfg         config.Config
}

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.JWTSecret = testSecret
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second

	disabledLogger := zerolog.Nop()
	st := createTestStore(t)
	jwtConfig := &auth.JWTConfig{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	registry := core.NewRegistry(&disabledLogger)
	authn := auth.NewAuthenticator(jwtConfig, cfg.CookieName, auth.NewResolver(st), &disabledLogger)
	authService := auth.NewService(st, jwtConfig)

	server := NewServer(registry, authn, authService, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:          ts,
		registry:    registry,
		store:       st,
		authService: authService,
		authn:       authn,
		jwt:         jwtConfig,
		cfg:         cfg,
	}
}

func (e *testEnv) wsURL(room string) string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws/chat/" + room + "/"
}

func dialRoom(ctx context.Context, t *testing.T, env *testEnv, room string, header http.Header) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, env.wsURL(room), &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("dial %s: %v", room, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendText(ctx context.Context, t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()

	if err := conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readOutbound(ctx context.Context, t *testing.T, conn *websocket.Conn) proto.Outbound {
	t.Helper()

	var out proto.Outbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return out
}

// expectSilence asserts nothing arrives for a short while. The read deadline
// closes the connection, so this must be the last use of conn.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if _, data, err := conn.Read(ctx); err == nil {
		t.Fatalf("unexpected message: %s", data)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
