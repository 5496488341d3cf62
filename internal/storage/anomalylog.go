package storage

import (
	"fmt"
	"os"

	"sensor-monitor/internal/models"
)

// AnomalyLog журнал критических аномалий и трендов, по строке на аномалию
type AnomalyLog struct {
	path string
	file *os.File
}

// OpenAnomalyLog открывает журнал на дозапись
func OpenAnomalyLog(path string) (*AnomalyLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot open anomaly log: %w", err)
	}
	return &AnomalyLog{path: path, file: f}, nil
}

// Log записывает одну аномалию
func (l *AnomalyLog) Log(r models.Reading, f models.Finding) error {
	_, err := fmt.Fprintf(l.file, "[%s] %s | Temp: %.1f°C | Humidity: %.1f%% | %s\n",
		r.Timestamp.Format(TimeLayout), r.NodeID, r.Temperature, r.Humidity, f.Message)
	if err != nil {
		return fmt.Errorf("anomaly log write: %w", err)
	}
	return nil
}

// Path возвращает путь к журналу
func (l *AnomalyLog) Path() string {
	return l.path
}

// Close закрывает журнал
func (l *AnomalyLog) Close() error {
	return l.file.Close()
}
