package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"sensor-monitor/internal/models"
)

// ErrNotRecord строка не похожа на JSON-запись
var ErrNotRecord = errors.New("line is not a JSON record")

var validate = validator.New()

// payload запись от узла. Прошивка шлет португальские ключи,
// поэтому принимаются оба варианта имен.
type payload struct {
	Node        string   `json:"node" validate:"required,max=32,printascii"`
	Temperature *float64 `json:"temperature" validate:"required_without=Temperatura"`
	Temperatura *float64 `json:"temperatura"`
	Humidity    *float64 `json:"humidity" validate:"required_without=Umidade"`
	Umidade     *float64 `json:"umidade"`
	Emergency   *flag    `json:"emergency"`
	Emergencia  *flag    `json:"emergencia"`
}

// flag принимает true/false и 0/1
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*f = true
	case "false", "0", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}

// Decode разбирает одну строку в Reading с отметкой времени ts
func Decode(line []byte, ts time.Time) (models.Reading, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return models.Reading{}, ErrNotRecord
	}

	var p payload
	if err := json.Unmarshal(line, &p); err != nil {
		return models.Reading{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	p.Node = strings.TrimSpace(p.Node)
	if err := validate.Struct(p); err != nil {
		return models.Reading{}, fmt.Errorf("invalid record: %w", err)
	}

	temp := pick(p.Temperature, p.Temperatura)
	hum := pick(p.Humidity, p.Umidade)
	if !finite(temp) || !finite(hum) {
		return models.Reading{}, fmt.Errorf("invalid record: non-finite value")
	}

	emergency := false
	if p.Emergency != nil {
		emergency = bool(*p.Emergency)
	} else if p.Emergencia != nil {
		emergency = bool(*p.Emergencia)
	}

	return models.Reading{
		NodeID:      p.Node,
		Temperature: temp,
		Humidity:    hum,
		Emergency:   emergency,
		Timestamp:   ts.Truncate(time.Second),
	}, nil
}

func pick(primary, fallback *float64) float64 {
	if primary != nil {
		return *primary
	}
	return *fallback
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
