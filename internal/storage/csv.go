// Package storage хранит обработанные измерения в CSV и ведет журнал аномалий.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"sensor-monitor/internal/models"
)

// TimeLayout формат времени в CSV и журнале
const TimeLayout = "2006-01-02 15:04:05"

var header = []string{
	"timestamp", "node", "temperature", "humidity", "emergency",
	"temp_anomaly", "humidity_anomaly", "anomaly_type",
}

// CSVStore дописывает по строке на каждое обработанное измерение.
// Формат:
//
//	timestamp,node,temperature,humidity,emergency,temp_anomaly,humidity_anomaly,anomaly_type
type CSVStore struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVStore создает файл заново и пишет заголовок
func NewCSVStore(path string) (*CSVStore, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create data file: %w", err)
	}

	s := &CSVStore{path: path, file: f, writer: csv.NewWriter(f)}
	if err := s.writeRow(header); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Path возвращает путь к файлу
func (s *CSVStore) Path() string {
	return s.path
}

// Append записывает строку истории
func (s *CSVStore) Append(rec models.Record) error {
	return s.writeRow([]string{
		rec.Timestamp.Format(TimeLayout),
		rec.NodeID,
		strconv.FormatFloat(rec.Temperature, 'f', -1, 64),
		strconv.FormatFloat(rec.Humidity, 'f', -1, 64),
		strconv.FormatBool(rec.Emergency),
		strconv.FormatBool(rec.TempAnomaly),
		strconv.FormatBool(rec.HumidityAnomaly),
		rec.Description,
	})
}

func (s *CSVStore) writeRow(row []string) error {
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Load перечитывает всю историю с диска
func (s *CSVStore) Load() ([]models.Record, error) {
	return LoadFile(s.path)
}

// Close сбрасывает буфер и закрывает файл
func (s *CSVStore) Close() error {
	s.writer.Flush()
	return s.file.Close()
}

// LoadFile читает историю из CSV файла. Битые строки пропускаются.
func LoadFile(path string) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []models.Record
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == header[0] {
			continue
		}
		if len(row) < len(header) {
			continue
		}

		ts, err := time.ParseInLocation(TimeLayout, row[0], time.Local)
		if err != nil {
			continue
		}
		temp, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			continue
		}
		hum, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			continue
		}
		emergency, _ := strconv.ParseBool(row[4])
		tempAnomaly, _ := strconv.ParseBool(row[5])
		humAnomaly, _ := strconv.ParseBool(row[6])

		records = append(records, models.Record{
			Timestamp:       ts,
			NodeID:          row[1],
			Temperature:     temp,
			Humidity:        hum,
			Emergency:       emergency,
			TempAnomaly:     tempAnomaly,
			HumidityAnomaly: humAnomaly,
			Description:     row[7],
		})
	}

	return records, nil
}
