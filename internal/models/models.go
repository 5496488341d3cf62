package models

import (
	"fmt"
	"strings"
	"time"
)

// Severity уровень серьезности аномалии
type Severity int

const (
	SeverityAlert Severity = iota
	SeverityCritical
	SeverityTrend
)

// String возвращает метку уровня для CSV и логов
func (s Severity) String() string {
	switch s {
	case SeverityAlert:
		return "ALERT"
	case SeverityCritical:
		return "CRITICAL"
	case SeverityTrend:
		return "TREND"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

// Counted сообщает, учитывается ли аномалия в общем счетчике
func (s Severity) Counted() bool {
	return s == SeverityCritical || s == SeverityTrend
}

// MetricKind метрика, к которой относится аномалия
type MetricKind int

const (
	MetricTemperature MetricKind = iota
	MetricHumidity
	MetricTrendTemperature
)

func (m MetricKind) String() string {
	switch m {
	case MetricTemperature:
		return "temperature"
	case MetricHumidity:
		return "humidity"
	case MetricTrendTemperature:
		return "trend_temperature"
	default:
		return fmt.Sprintf("metric(%d)", int(m))
	}
}

// Reading одно измерение от узла
type Reading struct {
	NodeID      string    `json:"node"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Emergency   bool      `json:"emergency"`
	Timestamp   time.Time `json:"timestamp"`
}

// Finding обнаруженная аномалия для одного измерения
type Finding struct {
	NodeID   string     `json:"node"`
	Severity Severity   `json:"severity"`
	Metric   MetricKind `json:"metric"`
	Message  string     `json:"message"`
}

// Label формирует "SEVERITY:message"
func (f Finding) Label() string {
	return f.Severity.String() + ":" + f.Message
}

// NormalMarker пишется в CSV, если аномалий нет
const NormalMarker = "NORMAL"

// Record строка персистентной истории
type Record struct {
	Timestamp       time.Time
	NodeID          string
	Temperature     float64
	Humidity        float64
	Emergency       bool
	TempAnomaly     bool
	HumidityAnomaly bool
	Description     string
}

// NewRecord собирает строку истории из измерения и найденных аномалий
func NewRecord(r Reading, findings []Finding) Record {
	rec := Record{
		Timestamp:   r.Timestamp,
		NodeID:      r.NodeID,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Emergency:   r.Emergency,
		Description: Describe(findings),
	}

	for _, f := range findings {
		switch {
		case f.Metric == MetricTemperature && f.Severity == SeverityCritical:
			rec.TempAnomaly = true
		case f.Metric == MetricHumidity:
			rec.HumidityAnomaly = true
		}
	}

	return rec
}

// Describe объединяет аномалии через "; " или возвращает NORMAL
func Describe(findings []Finding) string {
	if len(findings) == 0 {
		return NormalMarker
	}
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		parts = append(parts, f.Label())
	}
	return strings.Join(parts, "; ")
}

// RunTotals итоговые данные прогона для отчета
type RunTotals struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Anomalies     int
	TrendingNodes []string
}
