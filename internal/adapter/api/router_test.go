package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamrikalive/logg/internal/adapter/auth"
	"github.com/kamrikalive/logg/internal/adapter/metrics"
	"github.com/kamrikalive/logg/internal/domain"
	"github.com/kamrikalive/logg/internal/domain/mocks"
	"github.com/kamrikalive/logg/internal/pkg/config"
	"github.com/kamrikalive/logg/internal/usecase"
)

type testEnv struct {
	router  http.Handler
	backend *mocks.MockLogBackend
}

func newTestEnv(t *testing.T, chainCfg auth.ChainConfig, logGroupID string) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	cfg := &config.Config{CORSAllowedOrigins: "*", RateLimitBurst: 20}

	backend := &mocks.MockLogBackend{}
	chain := auth.NewDefaultChain(chainCfg, logger, m)
	exchanger := auth.NewTokenExchanger("http://iam.invalid", http.DefaultClient, nil, time.Hour, logger, m)
	reader := usecase.NewReadLogsUseCase(usecase.ReadLogsConfig{LogGroupID: logGroupID}, chain, exchanger, backend, logger, m)

	return &testEnv{router: NewRouter(cfg, logger, reader, m), backend: backend}
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t, auth.ChainConfig{}, "grp")

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouter_LogsFlow(t *testing.T) {
	env := newTestEnv(t, auth.ChainConfig{IAMToken: "t1.direct"}, "grp")
	env.backend.ReadResult = &domain.LogPage{Entries: []domain.LogEntry{
		{Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), Level: 3, Message: "started"},
		{Timestamp: time.Date(2024, 5, 1, 10, 0, 1, 0, time.UTC), Level: 5, Payload: map[string]any{"message": "x", "stream": "stderr"}},
	}}

	req := httptest.NewRequest(http.MethodGet, "/logs?container_id=abc&hours=1&limit=100", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	var resp struct {
		Logs []struct {
			Message string `json:"message"`
			Stream  string `json:"stream"`
		} `json:"logs"`
		Count         int     `json:"count"`
		NextPageToken *string `json:"nextPageToken"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Logs, 2)
	assert.Equal(t, 2, resp.Count)
	assert.Nil(t, resp.NextPageToken)
	assert.Equal(t, "x", resp.Logs[1].Message)
	assert.Equal(t, "stderr", resp.Logs[1].Stream)

	require.Len(t, env.backend.Queries, 1)
	q := env.backend.Queries[0]
	assert.Equal(t, "abc", q.ResourceID)
	assert.Equal(t, "grp", q.LogGroupID)
	assert.Equal(t, time.Hour, q.Until.Sub(q.Since))
	assert.Equal(t, []string{"t1.direct"}, env.backend.Tokens)
}

func TestRouter_AuthFailure(t *testing.T) {
	// Metadata service that never answers within the metadata timeout.
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	env := newTestEnv(t, auth.ChainConfig{MetadataURL: slow.URL, MetadataTimeout: 50 * time.Millisecond}, "grp")

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs?container_id=abc", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "authentication failed"), rr.Body.String())
	assert.Empty(t, env.backend.Queries)
}

func TestRouter_MissingLogGroup(t *testing.T) {
	env := newTestEnv(t, auth.ChainConfig{IAMToken: "t1.direct"}, "")

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs?container_id=abc", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "YC_LOG_GROUP_ID")
}

func TestRouter_ValidationAndMethods(t *testing.T) {
	env := newTestEnv(t, auth.ChainConfig{IAMToken: "t1.direct"}, "grp")

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs?container_id=abc&limit=5000", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/logs?container_id=abc", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	assert.Empty(t, env.backend.Queries)
}

func TestRouter_CORSPreflight(t *testing.T) {
	env := newTestEnv(t, auth.ChainConfig{}, "grp")

	req := httptest.NewRequest(http.MethodOptions, "/logs", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
