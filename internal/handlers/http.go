package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sensor-monitor/internal/analytics"
	"sensor-monitor/internal/metrics"
	"sensor-monitor/internal/models"
)

const defaultAnomalyLimit = 10

// AnomalyStore индекс аномалий во внешнем кэше
type AnomalyStore interface {
	GetRecentAnomalies(nodeID string, limit int) ([]models.Record, error)
	Ping() error
	GetStats() map[string]interface{}
}

// Handler обработчик HTTP запросов статуса
type Handler struct {
	analyzer *analytics.Analyzer
	cache    AnomalyStore
}

// NewHandler создает новый обработчик; cache может быть nil
func NewHandler(analyzer *analytics.Analyzer, cache AnomalyStore) *Handler {
	return &Handler{
		analyzer: analyzer,
		cache:    cache,
	}
}

// Router собирает маршруты
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	r.Get("/stats", h.GetStats)
	r.Get("/nodes/{node}", h.GetNode)
	r.Get("/nodes/{node}/anomalies", h.GetAnomalies)
	r.Handle("/prometheus", promhttp.Handler())

	return r
}

// HealthCheck обрабатывает GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK

	body := map[string]interface{}{
		"timestamp": time.Now(),
	}

	if h.cache != nil {
		redisOK := h.cache.Ping() == nil
		body["redis"] = redisOK
		if !redisOK {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}
	body["status"] = status

	writeJSON(w, httpStatus, body)
}

// GetStats обрабатывает GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	defer observe(r, "/stats", time.Now())

	body := map[string]interface{}{
		"analyzer":  h.analyzer.GetStats(),
		"timestamp": time.Now(),
	}
	if h.cache != nil {
		body["redis"] = h.cache.GetStats()
	}

	metrics.RequestsTotal.WithLabelValues(r.Method, "/stats", "200").Inc()
	writeJSON(w, http.StatusOK, body)
}

// GetNode обрабатывает GET /nodes/{node}
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	defer observe(r, "/nodes", time.Now())

	nodeID := chi.URLParam(r, "node")
	window := h.analyzer.Window(nodeID)
	if window == nil {
		metrics.RequestsTotal.WithLabelValues(r.Method, "/nodes", "404").Inc()
		http.Error(w, "unknown node", http.StatusNotFound)
		return
	}

	metrics.RequestsTotal.WithLabelValues(r.Method, "/nodes", "200").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"node":     nodeID,
		"trending": h.analyzer.Tracker().IsTrending(nodeID),
		"window":   len(window),
		"last":     window[len(window)-1],
	})
}

// GetAnomalies обрабатывает GET /nodes/{node}/anomalies
func (h *Handler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	defer observe(r, "/nodes/anomalies", time.Now())

	if h.cache == nil {
		metrics.RequestsTotal.WithLabelValues(r.Method, "/nodes/anomalies", "503").Inc()
		http.Error(w, "anomaly index is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := defaultAnomalyLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			metrics.RequestsTotal.WithLabelValues(r.Method, "/nodes/anomalies", "400").Inc()
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	nodeID := chi.URLParam(r, "node")
	anomalies, err := h.cache.GetRecentAnomalies(nodeID, limit)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(r.Method, "/nodes/anomalies", "500").Inc()
		http.Error(w, "Failed to retrieve anomalies", http.StatusInternalServerError)
		return
	}

	metrics.RequestsTotal.WithLabelValues(r.Method, "/nodes/anomalies", "200").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"node":          nodeID,
		"anomaly_count": len(anomalies),
		"anomalies":     anomalies,
	})
}

func observe(r *http.Request, endpoint string, start time.Time) {
	metrics.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
