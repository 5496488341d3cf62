// Package report собирает итоговый PDF отчет по сохраненной истории.
package report

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"sensor-monitor/internal/analytics"
	"sensor-monitor/internal/models"
)

// HistoryLoader перечитывает сохраненную историю
type HistoryLoader interface {
	Load() ([]models.Record, error)
}

// Generator пишет отчет в файл Path
type Generator struct {
	History HistoryLoader
	Path    string
}

// Row строка таблицы статистики
type Row struct {
	Metric string
	Value  string
}

// Report строит отчет по истории и итогам прогона
func (g *Generator) Report(ctx context.Context, totals models.RunTotals) error {
	records, err := g.History.Load()
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	summary := analytics.Summarize(records)
	insights := analytics.DeriveInsights(records)

	pdf := build(StatsRows(summary, totals), insights, totals)
	if err := pdf.OutputFileAndClose(g.Path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// StatsRows формирует таблицу статистики
func StatsRows(s analytics.Summary, totals models.RunTotals) []Row {
	return []Row{
		{"Total records", strconv.Itoa(s.Records)},
		{"Anomalies detected", strconv.Itoa(totals.Anomalies)},
		{"Mean temperature", fmt.Sprintf("%.2f°C", s.TempMean)},
		{"Max temperature", fmt.Sprintf("%.2f°C", s.TempMax)},
		{"Min temperature", fmt.Sprintf("%.2f°C", s.TempMin)},
		{"Temperature std dev", fmt.Sprintf("%.2f°C", s.TempStdDev)},
		{"Mean humidity", fmt.Sprintf("%.2f%%", s.HumidityMean)},
		{"Max humidity", fmt.Sprintf("%.2f%%", s.HumidityMax)},
		{"Min humidity", fmt.Sprintf("%.2f%%", s.HumidityMin)},
		{"Humidity std dev", fmt.Sprintf("%.2f%%", s.HumidityStdDev)},
	}
}

// tr переводит UTF-8 в cp1252 встроенных шрифтов PDF
func tr(s string) string {
	out, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return s
	}
	return out
}

func build(rows []Row, insights []string, totals models.RunTotals) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, "SMARTFACTORY REPORT - FULL ANALYSIS", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Run %s, %s - %s", totals.RunID,
		totals.StartedAt.Format("2006-01-02 15:04:05"), totals.FinishedAt.Format("2006-01-02 15:04:05"))), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	const colW, rowH = 70.0, 8.0
	left := (216 - 2*colW) / 2

	pdf.SetX(left)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(76, 175, 80)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(colW, rowH, "METRIC", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW, rowH, "VALUE", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetFillColor(243, 243, 243)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		pdf.SetX(left)
		pdf.CellFormat(colW, rowH, tr(row.Metric), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW, rowH, tr(row.Value), "1", 1, "C", true, 0, "")
	}

	if len(totals.TrendingNodes) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "NODES WITH OVERHEATING TREND:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, node := range totals.TrendingNodes {
			pdf.MultiCell(0, 6, tr("• "+node), "", "L", false)
		}
	}

	if len(insights) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "INSIGHTS AND RECOMMENDATIONS:", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		for _, insight := range insights {
			pdf.MultiCell(0, 6, tr("• "+insight), "", "L", false)
		}
	}

	return pdf
}
