package analytics

import (
	"math"

	"sensor-monitor/internal/models"
)

const insightMinRecords = 5

// Тексты выводов для отчета
const (
	InsightInsufficientData = "Insufficient data for analysis"
	InsightHeating          = "HEATING trend detected"
	InsightCooling          = "COOLING trend detected"
	InsightCriticalOverheat = "CRITICAL OVERHEATING - inspect machines"
	InsightElevatedTemp     = "Temperature reached critical levels"
	InsightExcessHumidity   = "EXCESSIVE HUMIDITY - risk to components"
	InsightLowHumidity      = "HUMIDITY TOO LOW - static discharge risk"
)

// Summary агрегированная статистика по истории
type Summary struct {
	Records        int
	TempMin        float64
	TempMean       float64
	TempMax        float64
	TempStdDev     float64
	HumidityMin    float64
	HumidityMean   float64
	HumidityMax    float64
	HumidityStdDev float64
}

// Summarize считает min/mean/max по температуре и влажности
func Summarize(records []models.Record) Summary {
	s := Summary{Records: len(records)}
	if len(records) == 0 {
		return s
	}

	temps := temperatures(records)
	hums := humidities(records)

	s.TempMin, s.TempMax = minMax(temps)
	s.TempMean = calculateAverage(temps)
	s.TempStdDev = calculateStdDev(temps, s.TempMean)

	s.HumidityMin, s.HumidityMax = minMax(hums)
	s.HumidityMean = calculateAverage(hums)
	s.HumidityStdDev = calculateStdDev(hums, s.HumidityMean)

	return s
}

// DeriveInsights формирует выводы по всей сохраненной истории
func DeriveInsights(records []models.Record) []string {
	if len(records) < insightMinRecords {
		return []string{InsightInsufficientData}
	}

	var insights []string

	temps := temperatures(records)
	_, tempMax := minMax(temps)
	delta := calculateAverage(temps[len(temps)-insightMinRecords:]) - calculateAverage(temps[:insightMinRecords])

	if delta > 0.5 {
		insights = append(insights, InsightHeating)
	} else if delta < -0.5 {
		insights = append(insights, InsightCooling)
	}

	if tempMax > 32 {
		insights = append(insights, InsightCriticalOverheat)
	} else if tempMax > 30 {
		insights = append(insights, InsightElevatedTemp)
	}

	humMin, humMax := minMax(humidities(records))
	if humMax > 75 {
		insights = append(insights, InsightExcessHumidity)
	} else if humMin < 35 {
		insights = append(insights, InsightLowHumidity)
	}

	return insights
}

func temperatures(records []models.Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Temperature
	}
	return out
}

func humidities(records []models.Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Humidity
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// calculateAverage вычисляет среднее значение
func calculateAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateStdDev вычисляет стандартное отклонение
func calculateStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
