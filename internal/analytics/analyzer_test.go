package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-monitor/internal/models"
)

func TestAnalyzerScenarios(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, TrendRising)
	tr := a.Tracker()

	res := a.Process(reading("A", 31.0, 50.0))
	require.Len(t, res.Findings, 1)
	assert.Equal(t, 1, tr.Count())
	assert.True(t, res.Record.TempAnomaly)
	assert.False(t, res.Record.HumidityAnomaly)

	res = a.Process(reading("B", 29.0, 72.0))
	require.Len(t, res.Findings, 2)
	assert.Equal(t, 2, tr.Count(), "only the critical humidity finding counts")
	assert.False(t, res.Record.TempAnomaly)
	assert.True(t, res.Record.HumidityAnomaly)

	before := tr.Count()
	for _, temp := range risingTemps {
		res = a.Process(reading("C", temp, 50))
	}
	assert.True(t, tr.IsTrending("C"))
	assert.Equal(t, before+1, tr.Count())
	assert.Contains(t, res.Record.Description, "TREND:Progressive heating at C")

	res = a.Process(reading("C", 20, 50))
	assert.Equal(t, models.NormalMarker, res.Record.Description)
	assert.True(t, tr.IsTrending("C"), "trend flag stays raised")
}

func TestAnalyzerWindowsArePerNode(t *testing.T) {
	a := NewAnalyzer(3, TrendRising)
	for i := 0; i < 5; i++ {
		a.Process(reading("A", float64(20+i), 50))
	}
	a.Process(reading("B", 21, 50))

	assert.Len(t, a.Window("A"), 3)
	assert.Len(t, a.Window("B"), 1)
	assert.Nil(t, a.Window("Z"))

	stats := a.GetStats()
	assert.Equal(t, 2, stats["nodes_tracked"])
	assert.Equal(t, "rising", stats["trend_mode"])
}

func TestAnalyzerTrendIgnoresOtherNodes(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, TrendRising)
	for i, temp := range risingTemps {
		node := "C"
		if i%2 == 1 {
			node = "D"
		}
		a.Process(reading(node, temp, 50))
	}

	assert.False(t, a.Tracker().IsTrending("C"))
	assert.False(t, a.Tracker().IsTrending("D"))
}
