package analytics

import (
	"sort"
	"sync"

	"sensor-monitor/internal/models"
)

// AnomalyTracker считает критические аномалии и тренды за время работы.
// Счетчик только растет, флаг тренда узла после установки не сбрасывается.
type AnomalyTracker struct {
	mu       sync.RWMutex
	count    int
	trending map[string]bool
}

// NewAnomalyTracker создает трекер
func NewAnomalyTracker() *AnomalyTracker {
	return &AnomalyTracker{
		trending: make(map[string]bool),
	}
}

// Record учитывает одну аномалию
func (t *AnomalyTracker) Record(f models.Finding) {
	if !f.Severity.Counted() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.count++
	if f.Severity == models.SeverityTrend {
		t.trending[f.NodeID] = true
	}
}

// Count возвращает число учтенных аномалий
func (t *AnomalyTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// IsTrending сообщает, зафиксирован ли у узла тренд перегрева
func (t *AnomalyTracker) IsTrending(nodeID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.trending[nodeID]
}

// TrendingNodes возвращает отсортированный список узлов с трендом
func (t *AnomalyTracker) TrendingNodes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	nodes := make([]string, 0, len(t.trending))
	for node := range t.trending {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}
