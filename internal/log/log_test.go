package log

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals(LocalsAccountID, int64(7))
		Audit(c, "thing.done", map[string]any{"n": 1})
		Security(c, "thing.denied", nil)
		Error(c, "thing.fail", errors.New("disk"), nil)
		return c.SendStatus(fiber.StatusNoContent)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 3)

	audit := entries[0].ContextMap()
	assert.Equal(t, "thing.done", entries[0].Message)
	assert.Equal(t, "/x", audit["path"])
	assert.Equal(t, int64(7), audit["account_id"])
	assert.NotEmpty(t, audit["req_id"])
	assert.Equal(t, "audit", audit["fields"].(map[string]any)["log_kind"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "disk", entries[2].ContextMap()["error"])
}

func TestSetupFileSink(t *testing.T) {
	path := t.TempDir() + "/app.log"
	flush, err := Setup(Options{JSON: true, File: path})
	require.NoError(t, err)
	t.Cleanup(func() { SetLogger(zap.NewNop()) })
	L().Info("boot")
	flush()
	assert.FileExists(t, path)
}
