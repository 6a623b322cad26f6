package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/docrouter"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/sink"
)

func testConfig() *config.Config {
	return &config.Config{
		GCP:      config.GCPConfig{ProjectID: "hio-test", Region: "us-central1", ProcessorID: "proc-1", DocAILocation: "us"},
		Backends: config.BackendConfig{Model: "mock", Extract: "mock"},
		Dispatch: config.DispatchConfig{Rate: 10, Burst: 1},
		Sink:     config.SinkConfig{Kind: "none", TTL: time.Hour},
	}
}

func post(r http.Handler, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type staticVerifier struct{}

func (staticVerifier) VerifyIDToken(_ context.Context, token string) (*fbauth.Token, error) {
	if token == "ok" {
		return &fbauth.Token{UID: "u1"}, nil
	}
	return nil, errors.New("bad token")
}

func TestBuildRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := BuildRouter(RouterDeps{
		ServiceName: "hio-docpipe",
		Version:     "test",
		CORSOrigins: []string{"http://localhost:3000"},
		Query:       NewQueryService(testConfig(), nil),
	})

	for _, path := range []string{"/query", "/api/v1/query", "/api/v1/llm-query"} {
		w := post(r, path, `{"query":"hello"}`)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "Mock Vertex AI response for: 'hello'")
	}

	for _, path := range []string{"/health", "/healthz", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/llm-query", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestBuildRouter_WithAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := BuildRouter(RouterDeps{
		ServiceName: "hio-docpipe",
		Query:       NewQueryService(testConfig(), nil),
		Auth:        staticVerifier{},
	})

	assert.Equal(t, http.StatusUnauthorized, post(r, "/api/v1/query", `{"query":"x"}`).Code)
	assert.Equal(t, http.StatusOK, post(r, "/api/v1/query", `{"query":"x"}`, "Authorization", "Bearer ok").Code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}

func TestBuildFunctionHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := BuildFunctionHandler(NewQueryService(testConfig(), nil), nil, nil)

	for _, path := range []string{"/", "/QueryLLM", "/llm-query"} {
		w := post(h, path, `{"query":"hi"}`)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.Equal(t, http.StatusBadRequest, post(h, "/", `{}`).Code)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestBuildFunctionHandler_Unconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := BuildFunctionHandler(NewQueryService(nil, nil), nil, nil)

	w := post(h, "/", `{"query":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestNewDocumentRouter(t *testing.T) {
	r, closeFn := NewDocumentRouter(testConfig(), nil, nil)
	defer closeFn()

	out, err := r.Route(context.Background(), docrouter.StorageEvent{Bucket: "uploads", Name: "scan.PNG"})
	require.NoError(t, err)
	assert.Equal(t, docrouter.BranchOCR, out.Branch)

	unconfigured, _ := NewDocumentRouter(nil, nil, nil)
	_, err = unconfigured.Route(context.Background(), docrouter.StorageEvent{Bucket: "uploads", Name: "a.pdf"})
	assert.ErrorIs(t, err, docrouter.ErrConfigMissing)
}

func TestNewDocumentRouter_GCPBackendIsLazy(t *testing.T) {
	cfg := testConfig()
	cfg.Backends.Extract = "gcp"

	r, closeFn := NewDocumentRouter(cfg, nil, nil)
	require.NotNil(t, r)
	assert.NoError(t, closeFn(), "no client has been created yet")
}

func TestOpenSink(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		s, closeFn, err := OpenSink(ctx, testConfig(), true)
		require.NoError(t, err)
		assert.IsType(t, sink.None{}, s)
		assert.NoError(t, closeFn())
	})

	t.Run("redis", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()

		cfg := testConfig()
		cfg.Sink.Kind = "redis"
		cfg.Redis.Addr = mr.Addr()

		s, closeFn, err := OpenSink(ctx, cfg, true)
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, s.Store(ctx, sink.Record{URI: "gs://uploads/a.pdf", Bucket: "uploads", Name: "a.pdf"}))
		assert.True(t, mr.Exists("hio:result:gs://uploads/a.pdf"))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()

		cfg := testConfig()
		cfg.Sink.Kind = "redis"
		cfg.Redis.Addr = addr

		_, _, err = OpenSink(ctx, cfg, true)
		assert.Error(t, err)

		s, closeFn, err := OpenSink(ctx, cfg, false)
		require.NoError(t, err, "unverified sinks connect on first use")
		assert.NotNil(t, s)
		assert.NoError(t, closeFn())
	})

	t.Run("postgres unverified", func(t *testing.T) {
		cfg := testConfig()
		cfg.Sink.Kind = "postgres"
		cfg.Database = config.DatabaseConfig{Host: "127.0.0.1", Port: 1, User: "u", Name: "hio"}

		s, closeFn, err := OpenSink(ctx, cfg, false)
		require.NoError(t, err)
		assert.IsType(t, &sink.PostgresSink{}, s)
		assert.NoError(t, closeFn())
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig()
		cfg.Sink.Kind = "bigquery"
		_, _, err := OpenSink(ctx, cfg, false)
		assert.Error(t, err)
	})
}
