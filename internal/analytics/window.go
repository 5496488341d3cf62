package analytics

import "sensor-monitor/internal/models"

// DefaultWindowSize емкость окна узла по умолчанию
const DefaultWindowSize = 50

// NodeWindow хранит скользящее окно последних измерений узла
type NodeWindow struct {
	readings []models.Reading
	maxSize  int
}

// NewNodeWindow создает окно заданной емкости
func NewNodeWindow(maxSize int) *NodeWindow {
	if maxSize <= 0 {
		maxSize = DefaultWindowSize
	}
	return &NodeWindow{
		readings: make([]models.Reading, 0, maxSize),
		maxSize:  maxSize,
	}
}

// Append добавляет измерение в конец окна.
// При переполнении вытесняется ровно одно самое старое измерение.
func (w *NodeWindow) Append(r models.Reading) {
	w.readings = append(w.readings, r)
	if len(w.readings) > w.maxSize {
		copy(w.readings, w.readings[1:])
		w.readings = w.readings[:len(w.readings)-1]
	}
}

// Recent возвращает последние n измерений от старых к новым
func (w *NodeWindow) Recent(n int) []models.Reading {
	if n <= 0 || len(w.readings) == 0 {
		return []models.Reading{}
	}
	start := len(w.readings) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.Reading, len(w.readings)-start)
	copy(out, w.readings[start:])
	return out
}

// Len возвращает количество измерений в окне
func (w *NodeWindow) Len() int {
	return len(w.readings)
}

// Cap возвращает емкость окна
func (w *NodeWindow) Cap() int {
	return w.maxSize
}
