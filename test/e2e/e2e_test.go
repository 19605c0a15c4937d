// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visa-tracker/internal/app"
	"visa-tracker/internal/common/config"
	"visa-tracker/internal/common/logger"
	"visa-tracker/internal/common/validation"
	"visa-tracker/internal/exporter"
	apihttp "visa-tracker/internal/http"
	"visa-tracker/internal/models"
	"visa-tracker/internal/storage"
	"visa-tracker/internal/store"
	"visa-tracker/pkg/catalog"
)

// tracker is one running instance wired the way cmd/tracker wires it.
type tracker struct {
	router  *fiber.App
	backend storage.Backend
}

func startTracker(t *testing.T, cfg *config.Config) *tracker {
	t.Helper()
	ctx := context.Background()
	log := logger.NewTestLogger(t)

	backend, err := storage.Open(ctx, cfg.Storage, log)
	require.NoError(t, err)
	require.NoError(t, backend.Ping(ctx))

	sink, err := exporter.OpenSink(ctx, cfg.Export, log)
	require.NoError(t, err)

	cat := catalog.Builtin()
	a, err := app.New(app.Deps{
		Config:   cfg,
		Store:    store.New(backend, validation.NewRecordValidator(cat), log),
		KV:       backend,
		Catalog:  cat,
		Exporter: exporter.New(sink, log),
		Logger:   log,
	})
	require.NoError(t, err)
	require.NoError(t, a.Init(ctx))

	opts := apihttp.OptionsFromConfig(cfg)
	opts.Ready = backend.Ping
	return &tracker{router: apihttp.NewRouter(a, nil, log, opts), backend: backend}
}

func (tr *tracker) stop() {
	_ = tr.backend.Close()
}

func (tr *tracker) call(t *testing.T, method, target, token, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(apihttp.HeaderAdminToken, token)
	}
	resp, err := tr.router.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (tr *tracker) login(t *testing.T) string {
	t.Helper()
	status, body := tr.call(t, fiber.MethodPost, "/api/admin/login", "", `{"passcode":"e2e-passcode"}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Token
}

type list struct {
	Total   int                        `json:"total"`
	Records []models.ApplicationRecord `json:"records"`
}

func (tr *tracker) list(t *testing.T, target string) list {
	t.Helper()
	status, body := tr.call(t, fiber.MethodGet, target, "", "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	var l list
	require.NoError(t, json.Unmarshal(body, &l))
	return l
}

func baseConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App:    config.AppConfig{Name: "visa-tracker-e2e", Timezone: "UTC"},
		Server: config.ServerConfig{AllowOrigins: "*"},
		Storage: config.StorageConfig{
			Driver:    config.DriverSQLite,
			KeyPrefix: "e2e:" + strconv.FormatInt(time.Now().UnixNano(), 36) + ":",
			SQLite:    config.SQLiteConfig{Path: filepath.Join(dir, "tracker.db")},
		},
		Export: config.ExportConfig{Driver: config.SinkFS, Dir: filepath.Join(dir, "exports")},
		Admin:  config.AdminConfig{Passcode: "e2e-passcode"},
	}
}

// runJourney drives an admin session end to end, then restarts the tracker on the same
// storage and checks that everything survived.
func runJourney(t *testing.T, cfg *config.Config) {
	tr := startTracker(t, cfg)
	token := tr.login(t)

	status, _ := tr.call(t, fiber.MethodPost, "/api/admin/reset", token, "")
	require.Equal(t, fiber.StatusOK, status)
	defaults := tr.list(t, "/api/applications")
	require.Equal(t, len(store.DefaultRecords()), defaults.Total)

	status, body := tr.call(t, fiber.MethodPost, "/api/admin/applications", token,
		`{"lodgeDate":"2025-06-01","applicantName":"E2E Applicant","university":"RMIT","course":"PhD"}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var created models.ApplicationRecord
	require.NoError(t, json.Unmarshal(body, &created))

	status, body = tr.call(t, fiber.MethodPatch, "/api/admin/applications/"+created.ID, token,
		`{"status":"Granted","finalisedDate":"2025-06-20"}`)
	require.Equal(t, fiber.StatusOK, status, string(body))

	found := tr.list(t, "/api/applications?search=e2e%20applicant&status=Granted")
	require.Equal(t, 1, found.Total)
	assert.Equal(t, created.ID, found.Records[0].ID)

	status, _ = tr.call(t, fiber.MethodPost, "/api/preferences/dark-mode/toggle", "", "")
	require.Equal(t, fiber.StatusOK, status)

	status, body = tr.call(t, fiber.MethodPost, "/api/admin/exports/csv", token, "")
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var info exporter.Info
	require.NoError(t, json.Unmarshal(body, &info))
	if cfg.Export.Driver == config.SinkFS {
		data, err := os.ReadFile(info.Location)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"E2E Applicant"`)
	}
	tr.stop()

	// restart on the same storage
	tr = startTracker(t, cfg)
	defer tr.stop()

	after := tr.list(t, "/api/applications")
	assert.Equal(t, defaults.Total+1, after.Total)
	status, body = tr.call(t, fiber.MethodGet, "/api/preferences/dark-mode", "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"darkMode":true}`, string(body))

	status, _ = tr.call(t, fiber.MethodPost, "/api/admin/reset", token, "")
	assert.Equal(t, fiber.StatusUnauthorized, status, "sessions do not survive a restart")
}

func TestJourney_SQLite(t *testing.T) {
	runJourney(t, baseConfig(t))
}

func TestJourney_File(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Storage.Driver = config.DriverFile
	cfg.Storage.File.Dir = filepath.Join(t.TempDir(), "data")
	runJourney(t, cfg)
}

// The remaining journeys need real services and run only when their address is exported,
// e.g. E2E_REDIS_ADDR=localhost:6379.

func TestJourney_Redis(t *testing.T) {
	addr := os.Getenv("E2E_REDIS_ADDR")
	if addr == "" || testing.Short() {
		t.Skip("E2E_REDIS_ADDR not set")
	}
	cfg := baseConfig(t)
	cfg.Storage.Driver = config.DriverRedis
	cfg.Storage.Redis = config.RedisConfig{Address: addr}
	runJourney(t, cfg)
}

func TestJourney_Postgres(t *testing.T) {
	host := os.Getenv("E2E_POSTGRES_HOST")
	if host == "" || testing.Short() {
		t.Skip("E2E_POSTGRES_HOST not set")
	}
	cfg := baseConfig(t)
	cfg.Storage.Driver = config.DriverPostgres
	cfg.Storage.Postgres = config.PostgresConfig{
		Host:           host,
		Port:           5432,
		Database:       envOr("E2E_POSTGRES_DB", "visa_tracker"),
		User:           envOr("E2E_POSTGRES_USER", "postgres"),
		Password:       os.Getenv("E2E_POSTGRES_PASSWORD"),
		MaxConnections: 4,
		MaxIdle:        1,
		SSLMode:        "disable",
	}
	runJourney(t, cfg)
}

func TestJourney_S3Export(t *testing.T) {
	endpoint := os.Getenv("E2E_S3_ENDPOINT")
	if endpoint == "" || testing.Short() {
		t.Skip("E2E_S3_ENDPOINT not set")
	}
	cfg := baseConfig(t)
	cfg.Export = config.ExportConfig{
		Driver: config.SinkS3,
		S3: config.S3Config{
			Bucket:    envOr("E2E_S3_BUCKET", "visa-tracker-e2e"),
			Prefix:    "e2e/",
			Region:    "us-east-1",
			Endpoint:  endpoint,
			PathStyle: true,
		},
	}
	runJourney(t, cfg)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
