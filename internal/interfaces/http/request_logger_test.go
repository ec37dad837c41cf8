package http_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/cargo-placement/internal/interfaces/http"
	"github.com/jhoicas/cargo-placement/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// RequestLogger
// ──────────────────────────────────────────────────────────────────────────────

func loggedApp(buf *bytes.Buffer, status int) *fiber.App {
	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.NewWithWriter(buf, "debug")))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(status)
	})
	return app
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRequestLogger_RegistraPeticionExitosa(t *testing.T) {
	var buf bytes.Buffer
	resp, err := loggedApp(&buf, fiber.StatusOK).Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	entry := lastEntry(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/ping", entry["path"])
	assert.EqualValues(t, 200, entry["status"])
	assert.Equal(t, "http request", entry["message"])
}

func TestRequestLogger_ErrorDeClienteEsWarn(t *testing.T) {
	var buf bytes.Buffer
	_, err := loggedApp(&buf, fiber.StatusConflict).Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)

	entry := lastEntry(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, 409, entry["status"])
}
