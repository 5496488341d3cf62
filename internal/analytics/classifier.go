package analytics

import (
	"fmt"
	"strings"

	"sensor-monitor/internal/models"
)

// TrendMode задает, с чем сравнивается текущая температура в правиле тренда
type TrendMode string

const (
	// TrendRising сравнивает с предыдущим измерением узла
	TrendRising TrendMode = "rising"
	// TrendLiteral сравнивает с последним из пяти, то есть с самим текущим
	// измерением. Правило в этом режиме никогда не срабатывает.
	TrendLiteral TrendMode = "literal"
)

// ParseTrendMode разбирает режим из конфигурации
func ParseTrendMode(s string) (TrendMode, error) {
	switch TrendMode(strings.ToLower(strings.TrimSpace(s))) {
	case TrendRising, "":
		return TrendRising, nil
	case TrendLiteral:
		return TrendLiteral, nil
	default:
		return "", fmt.Errorf("unknown trend mode %q", s)
	}
}

const (
	trendMinHistory = 5
	trendSpan       = 5
	trendFloor      = 27.0
)

// rule одно правило порогового классификатора
type rule struct {
	match    func(v float64) bool
	severity models.Severity
	metric   models.MetricKind
	format   string
}

// Таблицы правил проверяются по порядку, срабатывает первое совпавшее.
var temperatureRules = []rule{
	{func(v float64) bool { return v > 30.0 }, models.SeverityCritical, models.MetricTemperature, "Overheating at %s"},
	{func(v float64) bool { return v > 28.0 }, models.SeverityAlert, models.MetricTemperature, "Elevated temperature at %s"},
}

var humidityRules = []rule{
	{func(v float64) bool { return v > 70.0 }, models.SeverityCritical, models.MetricHumidity, "Excessive humidity at %s"},
	{func(v float64) bool { return v > 65.0 }, models.SeverityAlert, models.MetricHumidity, "High humidity at %s"},
	{func(v float64) bool { return v < 40.0 }, models.SeverityCritical, models.MetricHumidity, "Humidity too low at %s"},
	{func(v float64) bool { return v < 45.0 }, models.SeverityAlert, models.MetricHumidity, "Low humidity at %s"},
}

// Classifier классифицирует измерение с учетом окна узла
type Classifier struct {
	mode TrendMode
}

// NewClassifier создает классификатор
func NewClassifier(mode TrendMode) *Classifier {
	if mode == "" {
		mode = TrendRising
	}
	return &Classifier{mode: mode}
}

// Mode возвращает режим правила тренда
func (c *Classifier) Mode() TrendMode {
	return c.mode
}

// Evaluate возвращает аномалии для измерения.
// Окно должно уже содержать текущее измерение.
func (c *Classifier) Evaluate(r models.Reading, window *NodeWindow) []models.Finding {
	var findings []models.Finding

	if f, ok := firstMatch(temperatureRules, r.Temperature, r.NodeID); ok {
		findings = append(findings, f)
	}
	if f, ok := firstMatch(humidityRules, r.Humidity, r.NodeID); ok {
		findings = append(findings, f)
	}
	if c.trending(r, window) {
		findings = append(findings, models.Finding{
			NodeID:   r.NodeID,
			Severity: models.SeverityTrend,
			Metric:   models.MetricTrendTemperature,
			Message:  fmt.Sprintf("Progressive heating at %s", r.NodeID),
		})
	}

	return findings
}

func firstMatch(rules []rule, v float64, node string) (models.Finding, bool) {
	for _, rl := range rules {
		if rl.match(v) {
			return models.Finding{
				NodeID:   node,
				Severity: rl.severity,
				Metric:   rl.metric,
				Message:  fmt.Sprintf(rl.format, node),
			}, true
		}
	}
	return models.Finding{}, false
}

// trending проверяет последние пять температур узла
func (c *Classifier) trending(r models.Reading, window *NodeWindow) bool {
	if window == nil || window.Len() <= trendMinHistory {
		return false
	}

	recent := window.Recent(trendSpan)
	for _, p := range recent {
		if p.Temperature <= trendFloor {
			return false
		}
	}

	var reference float64
	switch c.mode {
	case TrendLiteral:
		reference = recent[len(recent)-1].Temperature
	default:
		reference = recent[len(recent)-2].Temperature
	}

	return r.Temperature > reference
}
