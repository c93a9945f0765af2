package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

const password = "Passw0rd!"

type harness struct {
	app  *fiber.App
	deps *handlers.Deps
	rec  *events.Recorder
	logs *observer.ObservedLogs
}

func newHarness(t *testing.T, tweak ...func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.RateLimit = 0
	cfg.LoginLimit = 0
	for _, f := range tweak {
		f(&cfg)
	}
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	applog.SetLogger(zap.New(core))
	t.Cleanup(func() { applog.SetLogger(zap.NewNop()) })

	rec := &events.Recorder{}
	deps := handlers.NewDeps(db, cfg, nil, rec)
	return &harness{app: handlers.NewApp(cfg, deps), deps: deps, rec: rec, logs: logs}
}

type reply struct {
	*http.Response
	Body map[string]any
	Raw  string
}

func (r reply) errKind() string {
	e, _ := r.Body["error"].(map[string]any)
	s, _ := e["kind"].(string)
	return s
}

func (r reply) cookie(name string) *http.Cookie {
	for _, c := range r.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (h *harness) send(t *testing.T, req *http.Request, token string, cookies ...*http.Cookie) reply {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := reply{Response: resp, Raw: string(raw)}
	_ = json.Unmarshal(raw, &out.Body)
	return out
}

func (h *harness) do(t *testing.T, method, path string, body any, token string, cookies ...*http.Cookie) reply {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.send(t, req, token, cookies...)
}

func (h *harness) token(t *testing.T, email, pass string, cookies ...*http.Cookie) reply {
	t.Helper()
	form := url.Values{"username": {email}, "password": {pass}}
	req := httptest.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.send(t, req, "", cookies...)
}

func (h *harness) login(t *testing.T, email string) string {
	t.Helper()
	r := h.token(t, email, password)
	require.Equal(t, fiber.StatusCreated, r.StatusCode, r.Raw)
	tok, _ := r.Body["access_token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func (h *harness) actions(level zapcore.Level) []string {
	var out []string
	for _, e := range h.logs.All() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
