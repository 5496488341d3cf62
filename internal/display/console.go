// Package display печатает статус каждого измерения в консоль оператора.
package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"sensor-monitor/internal/models"
	"sensor-monitor/internal/storage"
)

// Console выводит строку статуса и цветные строки аномалий
type Console struct {
	mu       sync.Mutex
	w        io.Writer
	critical lipgloss.Style
	alert    lipgloss.Style
	trend    lipgloss.Style
	urgent   lipgloss.Style
}

// NewConsole создает вывод в w; цвета зависят от возможностей терминала
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:        w,
		critical: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		alert:    r.NewStyle().Foreground(lipgloss.Color("220")),
		trend:    r.NewStyle().Foreground(lipgloss.Color("39")),
		urgent:   r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Show печатает измерение и его аномалии
func (c *Console) Show(r models.Reading, findings []models.Finding) {
	c.mu.Lock()
	defer c.mu.Unlock()

	marker := "OK"
	if r.Emergency {
		marker = c.urgent.Render("EMERGENCY")
	}
	fmt.Fprintf(c.w, "[%s] %s | %.1f°C | %.1f%% | %s\n",
		r.Timestamp.Format(storage.TimeLayout), r.NodeID, r.Temperature, r.Humidity, marker)

	for _, f := range findings {
		fmt.Fprintf(c.w, "   %s\n", c.style(f.Severity).Render(f.Label()))
	}
}

func (c *Console) style(s models.Severity) lipgloss.Style {
	switch s {
	case models.SeverityCritical:
		return c.critical
	case models.SeverityAlert:
		return c.alert
	default:
		return c.trend
	}
}
