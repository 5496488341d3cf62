package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-monitor/internal/analytics"
	"sensor-monitor/internal/models"
)

type staticHistory struct {
	records []models.Record
	err     error
}

func (s staticHistory) Load() ([]models.Record, error) {
	return s.records, s.err
}

func TestStatsRows(t *testing.T) {
	recs := []models.Record{
		{NodeID: "A", Temperature: 20, Humidity: 40},
		{NodeID: "A", Temperature: 24, Humidity: 60},
	}
	rows := StatsRows(analytics.Summarize(recs), models.RunTotals{Anomalies: 3})

	got := make(map[string]string)
	for _, r := range rows {
		got[r.Metric] = r.Value
	}
	assert.Equal(t, "2", got["Total records"])
	assert.Equal(t, "3", got["Anomalies detected"])
	assert.Equal(t, "22.00°C", got["Mean temperature"])
	assert.Equal(t, "24.00°C", got["Max temperature"])
	assert.Equal(t, "40.00%", got["Min humidity"])
}

func TestGeneratorWritesPDF(t *testing.T) {
	var recs []models.Record
	for i := 0; i < 8; i++ {
		recs = append(recs, models.Record{NodeID: "A", Temperature: 25 + float64(i), Humidity: 50})
	}

	path := filepath.Join(t.TempDir(), "report.pdf")
	g := &Generator{History: staticHistory{records: recs}, Path: path}

	now := time.Now()
	err := g.Report(context.Background(), models.RunTotals{
		RunID:         "run-1",
		StartedAt:     now.Add(-time.Minute),
		FinishedAt:    now,
		Anomalies:     2,
		TrendingNodes: []string{"A"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGeneratorEmptyHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	g := &Generator{History: staticHistory{}, Path: path}

	require.NoError(t, g.Report(context.Background(), models.RunTotals{}))
	assert.FileExists(t, path)
}

func TestGeneratorLoadError(t *testing.T) {
	g := &Generator{History: staticHistory{err: errors.New("boom")}, Path: filepath.Join(t.TempDir(), "r.pdf")}
	assert.Error(t, g.Report(context.Background(), models.RunTotals{}))
}
