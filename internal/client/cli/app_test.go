package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dverna/trasferte/internal/client/config"
)

func newTestApp(t *testing.T, serverURL string) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerEndpointAddr = serverURL
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp error: %v", err)
	}
	return app
}

func TestGetStatus(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:8080")
	if got := app.getStatus(); got != "" {
		t.Fatalf("empty status expected, got %q", got)
	}

	app.userName = "alice"
	app.Mode = ModeOnline
	if got := app.getStatus(); got != "(alice online)" {
		t.Fatalf("got %q", got)
	}
}

func TestRunCommand_Unknown(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:8080")
	if err := app.runCommand(context.Background(), "fly"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRegister_ThroughClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/register" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "pw" {
			t.Fatalf("unexpected payload: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "42"})
	}))
	defer srv.Close()

	app := newTestApp(t, srv.URL)
	app.reader = bufio.NewReader(strings.NewReader("alice\n"))

	oldPw := getPassword
	defer func() { getPassword = oldPw }()
	getPassword = func(w io.Writer) ([]byte, error) {
		return []byte("pw"), nil
	}

	if err := app.Register(context.Background()); err != nil {
		t.Fatalf("Register error: %v", err)
	}
}

func TestStartGateway_ServesCachedShellWhenOriginDies(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>shell</html>"))
	}))

	app := newTestApp(t, origin.URL)
	app.config.GatewayAddr = "127.0.0.1:0" // don't collide with a real port

	if err := app.startGateway(context.Background()); err != nil {
		t.Fatalf("startGateway error: %v", err)
	}
	t.Cleanup(func() {
		if app.stopGateway != nil {
			app.stopGateway()
		}
	})

	origin.Close()

	// the registry keeps serving the precached root document offline
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	rec := httptest.NewRecorder()
	app.gateway.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "shell") {
		t.Fatalf("offline shell not served: code=%d body=%q", rec.Code, rec.Body.String())
	}
}
