package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoice-dashboard-backend/internal/logging"
	"invoice-dashboard-backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerLevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	registry := prometheus.NewRegistry()
	r := gin.New()
	r.Use(RequestLogger(logging.New(&buf, "debug"), metrics.New(registry)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	tests := []struct {
		path  string
		level string
	}{
		{"/ok", "INFO"},
		{"/missing", "WARN"},
		{"/boom", "ERROR"},
	}
	for _, tt := range tests {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), tt.path)
		assert.Equal(t, tt.level, entry["level"], tt.path)
		assert.Equal(t, tt.path, entry["path"])
	}

	n, err := promtest.GatherAndCount(registry, "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRequestLoggerUnmatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	r := gin.New()
	r.Use(RequestLogger(logging.Discard(), metrics.New(registry)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	n, err := promtest.GatherAndCount(registry, "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
