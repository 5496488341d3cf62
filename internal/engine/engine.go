// Package engine связывает источник измерений, анализатор и приемники.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"sensor-monitor/internal/analytics"
	"sensor-monitor/internal/metrics"
	"sensor-monitor/internal/models"
	"sensor-monitor/internal/source"
)

// DefaultRenderInterval период построения графика
const DefaultRenderInterval = 30 * time.Second

var (
	// ErrNotRunning Run вызван до успешного Connect
	ErrNotRunning = errors.New("engine is not running")
	// ErrAlreadyRunning повторный Connect
	ErrAlreadyRunning = errors.New("engine is already running")
)

// State состояние движка
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Source построчный источник сырых записей.
// ReadLine возвращает source.ErrTimeout, если за период ожидания строк не было,
// и io.EOF в конце потока. Close прерывает текущее чтение.
type Source interface {
	ReadLine() ([]byte, error)
	Close() error
}

// RecordSink приемник строк истории
type RecordSink interface {
	Append(rec models.Record) error
}

// LogSink журнал критических аномалий и трендов
type LogSink interface {
	Log(r models.Reading, f models.Finding) error
}

// Display консоль оператора
type Display interface {
	Show(r models.Reading, findings []models.Finding)
}

// Renderer строит график по сохраненной истории
type Renderer interface {
	Render(ctx context.Context) error
}

// Reporter строит итоговый отчет
type Reporter interface {
	Report(ctx context.Context, totals models.RunTotals) error
}

// NamedSink приемник с именем для логов и метрик
type NamedSink struct {
	Name string
	Sink RecordSink
}

// Options зависимости и параметры движка
type Options struct {
	Analyzer       *analytics.Analyzer
	Sinks          []NamedSink
	Log            LogSink
	Display        Display
	Renderer       Renderer
	Reporter       Reporter
	RenderInterval time.Duration
	RunID          string
	Now            func() time.Time
}

// Engine принимает измерения и раздает результаты классификации
type Engine struct {
	opts     Options
	analyzer *analytics.Analyzer
	now      func() time.Time

	mu        sync.Mutex
	state     State
	src       Source
	startedAt time.Time

	rendering atomic.Bool
	renderWG  sync.WaitGroup
}

// New создает движок в состоянии Idle
func New(opts Options) *Engine {
	if opts.Analyzer == nil {
		opts.Analyzer = analytics.NewAnalyzer(analytics.DefaultWindowSize, analytics.TrendRising)
	}
	if opts.RenderInterval <= 0 {
		opts.RenderInterval = DefaultRenderInterval
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		opts:     opts,
		analyzer: opts.Analyzer,
		now:      now,
	}
}

// Connect получает источник и переводит движок в Running.
// При ошибке движок остается в Idle.
func (e *Engine) Connect(open func() (Source, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateRunning {
		return ErrAlreadyRunning
	}

	src, err := open()
	if err != nil {
		return fmt.Errorf("acquire input: %w", err)
	}

	e.src = src
	e.state = StateRunning
	e.startedAt = e.now()
	return nil
}

// State возвращает текущее состояние
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Tracker возвращает трекер аномалий
func (e *Engine) Tracker() *analytics.AnomalyTracker {
	return e.analyzer.Tracker()
}

// Analyzer возвращает анализатор
func (e *Engine) Analyzer() *analytics.Analyzer {
	return e.analyzer
}

// Run читает источник до отмены ctx или конца потока, затем строит итоговый отчет.
// Ошибка чтения, отличная от таймаута и EOF, завершает прием и возвращается
// после построения отчета.
func (e *Engine) Run(ctx context.Context) (models.RunTotals, error) {
	e.mu.Lock()
	src := e.src
	running := e.state == StateRunning
	e.mu.Unlock()

	if !running {
		return models.RunTotals{}, ErrNotRunning
	}

	stop := context.AfterFunc(ctx, func() {
		src.Close()
	})
	defer stop()

	readErr := e.ingest(ctx, src)

	e.renderWG.Wait()
	src.Close()

	totals := e.Totals()
	if e.opts.Reporter != nil {
		if err := e.opts.Reporter.Report(context.WithoutCancel(ctx), totals); err != nil {
			log.Printf("Failed to generate report: %v", err)
			metrics.Renders.WithLabelValues("report", "error").Inc()
		} else {
			metrics.Renders.WithLabelValues("report", "success").Inc()
		}
	}

	return totals, readErr
}

func (e *Engine) ingest(ctx context.Context, src Source) error {
	lastRender := e.now()

	for ctx.Err() == nil {
		line, err := src.ReadLine()
		switch {
		case err == nil:
			e.handleLine(line)
		case errors.Is(err, source.ErrTimeout):
		case errors.Is(err, io.EOF):
			log.Println("Input stream ended")
			return nil
		default:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if now := e.now(); now.Sub(lastRender) >= e.opts.RenderInterval {
			lastRender = now
			e.render(ctx)
		}
	}

	return nil
}

// handleLine разбирает строку; битые строки молча пропускаются
func (e *Engine) handleLine(line []byte) {
	r, err := source.Decode(line, e.now())
	if err != nil {
		metrics.RecordsSkipped.Inc()
		return
	}
	e.Process(r)
}

// Process обрабатывает одно измерение и раздает результат приемникам
func (e *Engine) Process(r models.Reading) analytics.AnalysisResult {
	start := time.Now()

	res := e.analyzer.Process(r)

	for _, s := range e.opts.Sinks {
		if err := s.Sink.Append(res.Record); err != nil {
			log.Printf("Failed to write %s record for %s: %v", s.Name, r.NodeID, err)
			metrics.SinkErrors.WithLabelValues(s.Name).Inc()
		}
	}

	for _, f := range res.Findings {
		metrics.FindingsDetected.WithLabelValues(f.Severity.String(), f.Metric.String()).Inc()
		if !f.Severity.Counted() || e.opts.Log == nil {
			continue
		}
		if err := e.opts.Log.Log(r, f); err != nil {
			log.Printf("Failed to log anomaly for %s: %v", r.NodeID, err)
			metrics.SinkErrors.WithLabelValues("log").Inc()
		}
	}

	if e.opts.Display != nil {
		e.opts.Display.Show(r, res.Findings)
	}

	tracker := e.analyzer.Tracker()
	metrics.ReadingsProcessed.WithLabelValues(r.NodeID).Inc()
	metrics.LastTemperature.WithLabelValues(r.NodeID).Set(r.Temperature)
	metrics.LastHumidity.WithLabelValues(r.NodeID).Set(r.Humidity)
	metrics.AnomaliesRecorded.Set(float64(tracker.Count()))
	metrics.TrendingNodes.Set(float64(len(tracker.TrendingNodes())))
	metrics.ProcessingLatency.Observe(time.Since(start).Seconds())

	return res
}

// render запускает построение графика в фоне; одновременно выполняется не больше одного
func (e *Engine) render(ctx context.Context) {
	if e.opts.Renderer == nil {
		return
	}
	if !e.rendering.CompareAndSwap(false, true) {
		metrics.Renders.WithLabelValues("chart", "skipped").Inc()
		return
	}

	// Начатый график дорисовывается и при остановке
	renderCtx := context.WithoutCancel(ctx)

	e.renderWG.Add(1)
	go func() {
		defer e.renderWG.Done()
		defer e.rendering.Store(false)

		if err := e.opts.Renderer.Render(renderCtx); err != nil {
			log.Printf("Failed to render chart: %v", err)
			metrics.Renders.WithLabelValues("chart", "error").Inc()
			return
		}
		metrics.Renders.WithLabelValues("chart", "success").Inc()
	}()
}

// Totals возвращает итоги прогона на текущий момент
func (e *Engine) Totals() models.RunTotals {
	e.mu.Lock()
	started := e.startedAt
	e.mu.Unlock()

	tracker := e.analyzer.Tracker()
	return models.RunTotals{
		RunID:         e.opts.RunID,
		StartedAt:     started,
		FinishedAt:    e.now(),
		Anomalies:     tracker.Count(),
		TrendingNodes: tracker.TrendingNodes(),
	}
}
