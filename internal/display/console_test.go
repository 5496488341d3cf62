package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sensor-monitor/internal/models"
)

func TestConsoleShow(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	ts := time.Date(2026, 2, 21, 14, 30, 0, 0, time.Local)
	c.Show(models.Reading{NodeID: "B", Temperature: 29, Humidity: 72, Emergency: true, Timestamp: ts}, []models.Finding{
		{NodeID: "B", Severity: models.SeverityAlert, Message: "Elevated temperature at B"},
		{NodeID: "B", Severity: models.SeverityCritical, Message: "Excessive humidity at B"},
	})

	out := buf.String()
	assert.Contains(t, out, "[2026-02-21 14:30:00] B | 29.0°C | 72.0% | EMERGENCY\n")
	assert.Contains(t, out, "   ALERT:Elevated temperature at B\n")
	assert.Contains(t, out, "   CRITICAL:Excessive humidity at B\n")
}

func TestConsoleShowNormal(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Show(models.Reading{NodeID: "A", Temperature: 22, Humidity: 50}, nil)

	assert.Contains(t, buf.String(), "| A | 22.0°C | 50.0% | OK\n")
}
