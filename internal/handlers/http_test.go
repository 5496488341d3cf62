package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-monitor/internal/analytics"
	"sensor-monitor/internal/models"
)

type fakeStore struct {
	records []models.Record
	err     error
	limit   int
}

func (f *fakeStore) GetRecentAnomalies(_ string, limit int) ([]models.Record, error) {
	f.limit = limit
	return f.records, f.err
}

func (f *fakeStore) Ping() error {
	return f.err
}

func (f *fakeStore) GetStats() map[string]interface{} {
	return map[string]interface{}{"total_conns": 1}
}

func newAnalyzer() *analytics.Analyzer {
	a := analytics.NewAnalyzer(analytics.DefaultWindowSize, analytics.TrendRising)
	for _, temp := range []float64{27.5, 27.8, 28.0, 28.2, 28.5, 28.9} {
		a.Process(models.Reading{NodeID: "C", Temperature: temp, Humidity: 50, Timestamp: time.Now()})
	}
	return a
}

func do(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthCheck(t *testing.T) {
	rec, body := do(t, NewHandler(newAnalyzer(), nil).Router(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	rec, body = do(t, NewHandler(newAnalyzer(), &fakeStore{err: errors.New("down")}).Router(), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, false, body["redis"])
}

func TestGetStats(t *testing.T) {
	rec, body := do(t, NewHandler(newAnalyzer(), &fakeStore{}).Router(), "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	stats := body["analyzer"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["nodes_tracked"])
	assert.Equal(t, float64(1), stats["anomalies"])
	assert.Equal(t, []interface{}{"C"}, stats["trending_nodes"])
	assert.Contains(t, body, "redis")
}

func TestGetNode(t *testing.T) {
	router := NewHandler(newAnalyzer(), nil).Router()

	rec, body := do(t, router, "/nodes/C")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["trending"])
	assert.Equal(t, float64(6), body["window"])
	last := body["last"].(map[string]interface{})
	assert.Equal(t, 28.9, last["temperature"])

	rec, _ = do(t, router, "/nodes/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAnomalies(t *testing.T) {
	store := &fakeStore{records: []models.Record{{NodeID: "A", Temperature: 31, Description: "CRITICAL:Overheating at A"}}}
	router := NewHandler(newAnalyzer(), store).Router()

	rec, body := do(t, router, "/nodes/A/anomalies?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["anomaly_count"])
	assert.Equal(t, 5, store.limit)

	rec, _ = do(t, router, "/nodes/A/anomalies?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	store.err = errors.New("boom")
	rec, _ = do(t, router, "/nodes/A/anomalies")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, defaultAnomalyLimit, store.limit)

	rec, _ = do(t, NewHandler(newAnalyzer(), nil).Router(), "/nodes/A/anomalies")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPrometheusEndpoint(t *testing.T) {
	rec, _ := do(t, NewHandler(newAnalyzer(), nil).Router(), "/prometheus")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
