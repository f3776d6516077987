package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server         ServerConfig     `toml:"server"`
	Database       DatabaseConfig   `toml:"database"`
	Logs           LogsConfig       `toml:"logs"`
	Metrics        MetricsConfig    `toml:"metrics"`
	CatalogService ServiceEndpoint  `toml:"catalog_service"`
	NotifyService  ServiceEndpoint  `toml:"notify_service"`
	Scheduling     SchedulingConfig `toml:"scheduling"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int    `toml:"http_port"`
	ReadTimeout     int    `toml:"read_timeout"`
	WriteTimeout    int    `toml:"write_timeout"`
	IdleTimeout     int    `toml:"idle_timeout"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
	Timezone        string `toml:"timezone"` // референсная таймзона для вычисления "сегодня"
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки метрик Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ServiceEndpoint настройки внешнего сервиса
type ServiceEndpoint struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// SchedulingConfig дефолтные параметры генерации слотов.
// Применяются, когда профиль бизнеса не задаёт собственные значения.
type SchedulingConfig struct {
	DefaultGranularityMinutes int  `toml:"default_granularity_minutes"`
	DefaultLeadTimeMinutes    int  `toml:"default_lead_time_minutes"`
	DefaultAutoConfirm        bool `toml:"default_auto_confirm"`
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
			Timezone:        "UTC",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "atlas-scheduling-service",
		},
		Scheduling: SchedulingConfig{
			DefaultGranularityMinutes: 30,
			DefaultLeadTimeMinutes:    0,
			DefaultAutoConfirm:        false,
		},
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database user and dbname are required")
	}
	if c.Scheduling.DefaultGranularityMinutes <= 0 {
		return fmt.Errorf("config: default_granularity_minutes must be positive")
	}
	if c.Scheduling.DefaultLeadTimeMinutes < 0 {
		return fmt.Errorf("config: default_lead_time_minutes must not be negative")
	}
	return nil
}
