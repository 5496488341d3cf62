package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	assert.Equal(t, NormalMarker, Describe(nil))

	got := Describe([]Finding{
		{NodeID: "B", Severity: SeverityAlert, Metric: MetricTemperature, Message: "Elevated temperature at B"},
		{NodeID: "B", Severity: SeverityCritical, Metric: MetricHumidity, Message: "Excessive humidity at B"},
	})
	assert.Equal(t, "ALERT:Elevated temperature at B; CRITICAL:Excessive humidity at B", got)
}

func TestNewRecordAnomalyFlags(t *testing.T) {
	r := Reading{NodeID: "A", Temperature: 29, Humidity: 44, Emergency: true, Timestamp: time.Now()}

	rec := NewRecord(r, []Finding{
		{NodeID: "A", Severity: SeverityAlert, Metric: MetricTemperature},
		{NodeID: "A", Severity: SeverityAlert, Metric: MetricHumidity},
		{NodeID: "A", Severity: SeverityTrend, Metric: MetricTrendTemperature},
	})

	assert.False(t, rec.TempAnomaly, "only critical temperature marks the temperature column")
	assert.True(t, rec.HumidityAnomaly)
	assert.True(t, rec.Emergency)
	assert.Equal(t, "A", rec.NodeID)

	rec = NewRecord(r, []Finding{{NodeID: "A", Severity: SeverityCritical, Metric: MetricTemperature}})
	assert.True(t, rec.TempAnomaly)
	assert.False(t, rec.HumidityAnomaly)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "CRITICAL", SeverityCritical.String())
	assert.True(t, SeverityTrend.Counted())
	assert.False(t, SeverityAlert.Counted())
	assert.Equal(t, "trend_temperature", MetricTrendTemperature.String())
}
