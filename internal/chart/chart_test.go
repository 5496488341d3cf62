package chart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensor-monitor/internal/models"
)

type staticHistory struct {
	records []models.Record
	err     error
}

func (s staticHistory) Load() ([]models.Record, error) {
	return s.records, s.err
}

func TestSparkline(t *testing.T) {
	got := Sparkline([]float64{20, 25, 30}, 5, 20, 30)
	assert.Equal(t, 5, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "▁▄█"), got)

	got = Sparkline([]float64{1, 2, 3, 4}, 2, 0, 4)
	assert.Equal(t, 2, utf8.RuneCountInString(got))
	assert.Empty(t, Sparkline(nil, 0, 0, 1))
}

func TestScale(t *testing.T) {
	got := []rune(Scale(29, 20, 40, []float64{28, 30}, 21))
	require.Len(t, got, 21)
	assert.Equal(t, '▪', got[8])
	assert.Equal(t, '▪', got[10])
	assert.Equal(t, '◆', got[9])

	got = []rune(Scale(100, 20, 40, nil, 10))
	assert.Equal(t, '◆', got[9], "out of range clamps to the edge")
}

func TestRendererWritesFile(t *testing.T) {
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local)
	var recs []models.Record
	for i := 0; i < 10; i++ {
		node := "A"
		if i%2 == 1 {
			node = "B"
		}
		recs = append(recs, models.Record{NodeID: node, Temperature: 25 + float64(i), Humidity: 50, Timestamp: base.Add(time.Duration(i) * time.Second)})
	}

	path := filepath.Join(t.TempDir(), "chart.txt")
	r := &Renderer{History: staticHistory{records: recs}, Path: path, Width: 20, Now: func() time.Time { return base }}
	require.NoError(t, r.Render(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "generated 2026-02-21 14:00:00, 10 records")
	assert.Less(t, strings.Index(out, "\nA ("), strings.Index(out, "\nB ("), "nodes in arrival order")
	assert.Contains(t, out, "temperature  34.0°C")
}

func TestRendererEmptyAndErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.txt")

	r := &Renderer{History: staticHistory{}, Path: path}
	require.NoError(t, r.Render(context.Background()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "no data yet")

	r = &Renderer{History: staticHistory{err: errors.New("boom")}, Path: path}
	assert.Error(t, r.Render(context.Background()))
}
