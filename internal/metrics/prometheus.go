package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration продолжительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ReadingsProcessed обработанные измерения
	ReadingsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_readings_processed_total",
			Help: "Total number of sensor readings processed",
		},
		[]string{"node"},
	)

	// RecordsSkipped отброшенные входные строки
	RecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sensor_records_skipped_total",
			Help: "Total number of malformed input lines skipped",
		},
	)

	// FindingsDetected обнаруженные аномалии
	FindingsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_findings_total",
			Help: "Total number of findings by severity and metric",
		},
		[]string{"severity", "metric"},
	)

	// AnomaliesRecorded критические аномалии и тренды, учтенные трекером
	AnomaliesRecorded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensor_anomalies_recorded",
			Help: "Critical and trend findings recorded during this run",
		},
	)

	// TrendingNodes узлы с тренд-флагом
	TrendingNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sensor_trending_nodes",
			Help: "Number of nodes with a raised overheating trend flag",
		},
	)

	// LastTemperature последняя температура узла
	LastTemperature = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_temperature_celsius",
			Help: "Last temperature reported by a node",
		},
		[]string{"node"},
	)

	// LastHumidity последняя влажность узла
	LastHumidity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_humidity_percent",
			Help: "Last relative humidity reported by a node",
		},
		[]string{"node"},
	)

	// ProcessingLatency задержка обработки одного измерения
	ProcessingLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sensor_processing_latency_seconds",
			Help:    "Reading processing latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)

	// SinkErrors ошибки записи в приемники
	SinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_sink_errors_total",
			Help: "Total number of sink write errors",
		},
		[]string{"sink"},
	)

	// Renders запуски построения графика и отчета
	Renders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensor_renders_total",
			Help: "Total number of chart and report generations",
		},
		[]string{"kind", "status"},
	)
)
