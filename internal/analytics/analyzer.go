package analytics

import (
	"sync"

	"sensor-monitor/internal/models"
)

// Analyzer держит окна узлов, классификатор и трекер аномалий.
// Process вызывается из одной горутины приема, GetStats безопасен из других.
type Analyzer struct {
	windows    map[string]*NodeWindow
	mu         sync.RWMutex
	windowSize int
	classifier *Classifier
	tracker    *AnomalyTracker
}

// AnalysisResult результат анализа одного измерения
type AnalysisResult struct {
	Reading  models.Reading
	Findings []models.Finding
	Record   models.Record
	Window   int
}

// NewAnalyzer создает новый анализатор
func NewAnalyzer(windowSize int, mode TrendMode) *Analyzer {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Analyzer{
		windows:    make(map[string]*NodeWindow),
		windowSize: windowSize,
		classifier: NewClassifier(mode),
		tracker:    NewAnomalyTracker(),
	}
}

// Process добавляет измерение в окно узла, классифицирует его
// и учитывает найденные аномалии в трекере
func (a *Analyzer) Process(r models.Reading) AnalysisResult {
	a.mu.Lock()
	window, exists := a.windows[r.NodeID]
	if !exists {
		window = NewNodeWindow(a.windowSize)
		a.windows[r.NodeID] = window
	}
	window.Append(r)
	size := window.Len()
	a.mu.Unlock()

	findings := a.classifier.Evaluate(r, window)
	for _, f := range findings {
		a.tracker.Record(f)
	}

	return AnalysisResult{
		Reading:  r,
		Findings: findings,
		Record:   models.NewRecord(r, findings),
		Window:   size,
	}
}

// Tracker возвращает трекер аномалий
func (a *Analyzer) Tracker() *AnomalyTracker {
	return a.tracker
}

// Window возвращает копию последних измерений узла
func (a *Analyzer) Window(nodeID string) []models.Reading {
	a.mu.RLock()
	defer a.mu.RUnlock()

	w, ok := a.windows[nodeID]
	if !ok {
		return nil
	}
	return w.Recent(w.Len())
}

// GetStats возвращает статистику анализатора
func (a *Analyzer) GetStats() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]interface{}{
		"nodes_tracked":  len(a.windows),
		"window_size":    a.windowSize,
		"trend_mode":     string(a.classifier.Mode()),
		"anomalies":      a.tracker.Count(),
		"trending_nodes": a.tracker.TrendingNodes(),
	}
}
