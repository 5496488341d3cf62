// Package chart строит текстовый график по сохраненной истории:
// спарклайны температуры и влажности по узлам и шкалы с порогами.
package chart

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"sensor-monitor/internal/models"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Пороги, отмечаемые на шкалах
var (
	TempMarks     = []float64{28, 30}
	HumidityMarks = []float64{40, 70}
)

// HistoryLoader перечитывает сохраненную историю
type HistoryLoader interface {
	Load() ([]models.Record, error)
}

// Renderer пишет график в файл Path
type Renderer struct {
	History HistoryLoader
	Path    string
	Width   int
	Now     func() time.Time
}

// Render перечитывает историю и атомарно заменяет файл графика
func (r *Renderer) Render(ctx context.Context) error {
	records, err := r.History.Load()
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	r.write(&buf, records)

	tmp, err := os.CreateTemp(filepath.Dir(r.Path), ".chart-*")
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write chart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.Path)
}

func (r *Renderer) write(buf *bytes.Buffer, records []models.Record) {
	width := r.Width
	if width <= 0 {
		width = 60
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	style := lipgloss.NewRenderer(buf)
	title := style.NewStyle().Bold(true)

	fmt.Fprintln(buf, title.Render("Real-time monitoring"))
	fmt.Fprintf(buf, "generated %s, %d records\n", now().Format("2006-01-02 15:04:05"), len(records))

	if len(records) == 0 {
		fmt.Fprintln(buf, "no data yet")
		return
	}

	nodes, byNode := groupByNode(records)
	for _, node := range nodes {
		recs := byNode[node]
		temps := make([]float64, len(recs))
		hums := make([]float64, len(recs))
		for i, rec := range recs {
			temps[i] = rec.Temperature
			hums[i] = rec.Humidity
		}

		fmt.Fprintf(buf, "\n%s (%s .. %s)\n", title.Render(node),
			recs[0].Timestamp.Format("15:04:05"), recs[len(recs)-1].Timestamp.Format("15:04:05"))

		lo, hi := bounds(temps, TempMarks)
		fmt.Fprintf(buf, "  temperature %5.1f°C  %s\n", temps[len(temps)-1], Sparkline(temps, width, lo, hi))
		fmt.Fprintf(buf, "  %-20s %s  [%.0f..%.0f, alert 28, critical 30]\n", "", Scale(temps[len(temps)-1], lo, hi, TempMarks, width), lo, hi)

		lo, hi = bounds(hums, HumidityMarks)
		fmt.Fprintf(buf, "  humidity    %5.1f%%   %s\n", hums[len(hums)-1], Sparkline(hums, width, lo, hi))
		fmt.Fprintf(buf, "  %-20s %s  [%.0f..%.0f, limits 40/70]\n", "", Scale(hums[len(hums)-1], lo, hi, HumidityMarks, width), lo, hi)
	}
}

func groupByNode(records []models.Record) ([]string, map[string][]models.Record) {
	var order []string
	byNode := make(map[string][]models.Record)
	for _, rec := range records {
		if _, ok := byNode[rec.NodeID]; !ok {
			order = append(order, rec.NodeID)
		}
		byNode[rec.NodeID] = append(byNode[rec.NodeID], rec)
	}
	return order, byNode
}

// bounds возвращает диапазон, покрывающий значения и пороги
func bounds(values, marks []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range append(append([]float64{}, values...), marks...) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return math.Floor(lo - 1), math.Ceil(hi + 1)
}

// Sparkline рисует последние width значений в диапазоне [rangeMin, rangeMax]
func Sparkline(values []float64, width int, rangeMin, rangeMax float64) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("╌", width-len(values)))
	for _, v := range values {
		norm := math.Max(0, math.Min(1, (v-rangeMin)/span))
		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}
		sb.WriteRune(sparkBlocks[idx])
	}
	return sb.String()
}

// Scale рисует шкалу с порогами и текущим значением
func Scale(current, rangeMin, rangeMax float64, marks []float64, width int) string {
	if width <= 0 {
		return ""
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}
	pos := func(v float64) int {
		p := int(float64(width-1) * (v - rangeMin) / span)
		return max(0, min(width-1, p))
	}

	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '·'
	}
	for _, m := range marks {
		bar[pos(m)] = '▪'
	}
	bar[pos(current)] = '◆'

	return string(bar)
}
