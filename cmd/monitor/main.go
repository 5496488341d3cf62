package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"sensor-monitor/internal/analytics"
	"sensor-monitor/internal/cache"
	"sensor-monitor/internal/chart"
	"sensor-monitor/internal/config"
	"sensor-monitor/internal/display"
	"sensor-monitor/internal/engine"
	"sensor-monitor/internal/handlers"
	"sensor-monitor/internal/report"
	"sensor-monitor/internal/source"
	"sensor-monitor/internal/storage"
)

func main() {
	configDir := flag.String("config", ".", "directory with config.yaml")
	flag.Parse()

	log.Println("Starting sensor monitor...")

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	runID := uuid.NewString()

	csvStore, err := storage.NewCSVStore(cfg.Data.CSV)
	if err != nil {
		log.Fatalf("Failed to create history file: %v", err)
	}
	defer csvStore.Close()

	anomalyLog, err := storage.OpenAnomalyLog(cfg.Data.Log)
	if err != nil {
		log.Fatalf("Failed to open anomaly log: %v", err)
	}
	defer anomalyLog.Close()

	sinks := []engine.NamedSink{{Name: "csv", Sink: csvStore}}

	// Redis необязателен: без него работает все, кроме /nodes/{node}/anomalies
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Retention, runID)
		if err != nil {
			log.Printf("WARNING: Redis disabled: %v", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			sinks = append(sinks, engine.NamedSink{Name: "redis", Sink: redisCache})
			log.Println("Connected to Redis")
		}
	}

	mode, _ := analytics.ParseTrendMode(cfg.Engine.TrendMode)
	analyzer := analytics.NewAnalyzer(cfg.Engine.WindowSize, mode)
	log.Printf("Analyzer started with window size: %d, trend mode: %s\n", cfg.Engine.WindowSize, mode)

	eng := engine.New(engine.Options{
		Analyzer: analyzer,
		Sinks:    sinks,
		Log:      anomalyLog,
		Display:  display.NewConsole(os.Stdout),
		Renderer: &chart.Renderer{
			History: csvStore,
			Path:    cfg.Data.Chart,
			Width:   cfg.Engine.ChartWidth,
		},
		Reporter: &report.Generator{
			History: csvStore,
			Path:    cfg.Data.Report,
		},
		RenderInterval: cfg.Engine.RenderInterval,
		RunID:          runID,
	})

	if err := eng.Connect(openSource(cfg)); err != nil {
		log.Fatalf("Failed to acquire input: %v", err)
	}

	var server *http.Server
	if cfg.HTTP.Addr != "" {
		var store handlers.AnomalyStore
		if redisCache != nil {
			store = redisCache
		}
		server = &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      handlers.NewHandler(analyzer, store).Router(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Printf("Status server listening on %s\n", cfg.HTTP.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Status server error: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Monitoring started, run %s. Press Ctrl+C to stop.", runID)
	totals, runErr := eng.Run(ctx)
	if runErr != nil {
		log.Printf("Ingestion stopped: %v", runErr)
	}

	log.Println("Shutting down...")
	log.Printf("Total anomalies detected: %d", totals.Anomalies)
	if len(totals.TrendingNodes) > 0 {
		log.Printf("Nodes with heating trend: %v", totals.TrendingNodes)
	}
	log.Printf("Files produced: %s, %s, %s, %s", cfg.Data.CSV, cfg.Data.Log, cfg.Data.Chart, cfg.Data.Report)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}

	log.Println("Monitor stopped")
}

// openSource выбирает файл воспроизведения или последовательный порт
func openSource(cfg config.Config) func() (engine.Source, error) {
	return func() (engine.Source, error) {
		if cfg.Input.Replay != "" {
			log.Printf("Replaying %s", cfg.Input.Replay)
			src, err := source.OpenFile(cfg.Input.Replay)
			if err != nil {
				return nil, err
			}
			return src, nil
		}
		log.Printf("Opening %s at %d baud", cfg.Serial.Port, cfg.Serial.Baud)
		src, err := source.OpenSerial(source.SerialConfig{
			Port:        cfg.Serial.Port,
			BaudRate:    cfg.Serial.Baud,
			ReadTimeout: cfg.Serial.ReadTimeout,
			Settle:      cfg.Serial.Settle,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}
