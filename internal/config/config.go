package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sensor-monitor/internal/analytics"
)

// Config конфигурация приложения
type Config struct {
	Serial struct {
		Port        string        `mapstructure:"port"`
		Baud        int           `mapstructure:"baud"`
		ReadTimeout time.Duration `mapstructure:"read_timeout"`
		Settle      time.Duration `mapstructure:"settle"`
	} `mapstructure:"serial"`
	Input struct {
		Replay string `mapstructure:"replay"`
	} `mapstructure:"input"`
	Data struct {
		CSV    string `mapstructure:"csv"`
		Log    string `mapstructure:"log"`
		Chart  string `mapstructure:"chart"`
		Report string `mapstructure:"report"`
	} `mapstructure:"data"`
	Engine struct {
		WindowSize     int           `mapstructure:"window_size"`
		RenderInterval time.Duration `mapstructure:"render_interval"`
		TrendMode      string        `mapstructure:"trend_mode"`
		ChartWidth     int           `mapstructure:"chart_width"`
	} `mapstructure:"engine"`
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	Redis struct {
		Addr      string        `mapstructure:"addr"`
		Password  string        `mapstructure:"password"`
		DB        int           `mapstructure:"db"`
		Retention time.Duration `mapstructure:"retention"`
	} `mapstructure:"redis"`
}

// Load читает config.yaml из dir (если есть) и переменные окружения MONITOR_*
func Load(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("monitor")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		log.Printf("No config file in %q, using defaults and environment", dir)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.port", "/dev/ttyUSB0")
	v.SetDefault("serial.baud", 115200)
	v.SetDefault("serial.read_timeout", 2*time.Second)
	v.SetDefault("serial.settle", 2*time.Second)
	v.SetDefault("input.replay", "")
	v.SetDefault("data.csv", "sensor_data.csv")
	v.SetDefault("data.log", "anomalies.log")
	v.SetDefault("data.chart", "realtime_chart.txt")
	v.SetDefault("data.report", "smartfactory_report.pdf")
	v.SetDefault("engine.window_size", analytics.DefaultWindowSize)
	v.SetDefault("engine.render_interval", 30*time.Second)
	v.SetDefault("engine.trend_mode", string(analytics.TrendRising))
	v.SetDefault("engine.chart_width", 60)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.retention", time.Hour)
}

// Validate проверяет значения конфигурации
func (c Config) Validate() error {
	if c.Input.Replay == "" && c.Serial.Port == "" {
		return errors.New("config: serial.port or input.replay is required")
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("config: invalid serial.baud %d", c.Serial.Baud)
	}
	if c.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("config: serial.read_timeout must be positive")
	}
	if c.Engine.WindowSize <= 0 {
		return fmt.Errorf("config: invalid engine.window_size %d", c.Engine.WindowSize)
	}
	if c.Engine.RenderInterval <= 0 {
		return fmt.Errorf("config: engine.render_interval must be positive")
	}
	if _, err := analytics.ParseTrendMode(c.Engine.TrendMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Data.CSV == "" || c.Data.Log == "" {
		return errors.New("config: data.csv and data.log are required")
	}
	return nil
}
