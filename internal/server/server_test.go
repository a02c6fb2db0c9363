package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/gorilla/websocket"

	"github.com/Marco3041/linkedin-clone/internal/bootstrap"
	"github.com/Marco3041/linkedin-clone/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppEnv:         "test",
		AllowedOrigins: "http://localhost:3000",
		StoreDriver:    config.StoreMemory,
		AuthDriver:     config.AuthLocal,
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
	}
	t.Setenv("CLOUDINARY_URL", "")

	infra, err := bootstrap.Open(context.Background(), cfg)
	assert.Equal(t, nil, err)
	srv, err := NewServer(context.Background(), cfg, infra)
	assert.Equal(t, nil, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
		infra.Close()
	})
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	assert.Equal(t, nil, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	assert.Equal(t, nil, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func signUp(t *testing.T, ts *httptest.Server, name, email string) string {
	t.Helper()
	code, body := call(t, ts, http.MethodPost, "/api/auth/signup", "",
		`{"name":"`+name+`","email":"`+email+`","password":"secret123"}`)
	assert.Equal(t, http.StatusCreated, code)
	token, _ := body["access_token"].(string)
	assert.NotEqual(t, "", token)
	return token
}

func TestHealthAndAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	code, body := call(t, ts, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, _ = call(t, ts, http.MethodGet, "/api/posts", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, ts, http.MethodPost, "/api/media", signUp(t, ts, "Ann", "ann@example.com"), "")
	assert.NotEqual(t, http.StatusOK, code)
}

func TestSignedOutTokenIsRejected(t *testing.T) {
	ts := newTestServer(t)
	token := signUp(t, ts, "Ann", "ann@example.com")

	code, body := call(t, ts, http.MethodGet, "/api/me", token, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ann", body["data"].(map[string]any)["name"])

	code, _ = call(t, ts, http.MethodPost, "/api/auth/signout", token, "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = call(t, ts, http.MethodGet, "/api/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func readFrame(t *testing.T, conn *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var frame map[string]any
		if err := conn.ReadJSON(&frame); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if match(frame) {
			return frame
		}
	}
}

func TestLiveFeedOverWebSocket(t *testing.T) {
	ts := newTestServer(t)
	alice := signUp(t, ts, "Alice", "alice@example.com")
	bob := signUp(t, ts, "Bob", "bob@example.com")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?token=" + alice
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.Equal(t, nil, err)
	defer conn.Close()

	assert.Equal(t, nil, conn.WriteJSON(map[string]any{"op": "mount", "screen": "feed"}))
	readFrame(t, conn, func(f map[string]any) bool { return f["state"] == "live" })

	code, _ := call(t, ts, http.MethodPost, "/api/posts", bob, `{"message":"Open to work"}`)
	assert.Equal(t, http.StatusCreated, code)

	frame := readFrame(t, conn, func(f map[string]any) bool {
		items, _ := f["data"].([]any)
		return f["state"] == "live" && len(items) == 1
	})
	post := frame["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "Open to work", post["message"])
	assert.Equal(t, "Bob", post["name"])

	assert.Equal(t, nil, conn.WriteJSON(map[string]any{"op": "mount", "screen": "settings"}))
	readFrame(t, conn, func(f map[string]any) bool { return f["state"] == "error" })

	code, _ = call(t, ts, http.MethodPost, "/api/auth/signout", alice, "")
	assert.Equal(t, http.StatusNoContent, code)
	readFrame(t, conn, func(f map[string]any) bool { return f["screen"] == "feed" && f["state"] == "signed_out" })
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin("http://localhost:3000, https://app.example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	assert.Equal(t, true, check(req))

	req.Header.Set("Origin", "https://app.example.com")
	assert.Equal(t, true, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.Equal(t, false, check(req))
}
