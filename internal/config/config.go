package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	return configValue.Load().(*Config)
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Events      EventsConfig    `mapstructure:"events"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string   `mapstructure:"host"`
	ReadTimeout  int      `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout int      `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  int      `mapstructure:"idle_timeout" validate:"min=0"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type WeatherConfig struct {
	BaseURL    string `mapstructure:"base_url" validate:"required,url"`
	GeoURL     string `mapstructure:"geo_url" validate:"required,url"`
	IconURL    string `mapstructure:"icon_url" validate:"required,contains=%s"`
	APIKey     string `mapstructure:"api_key"`
	APIKeyFile string `mapstructure:"api_key_file"`
	// Timeout bounds every upstream call, in seconds.
	Timeout            int      `mapstructure:"timeout" validate:"min=1"`
	Retries            int      `mapstructure:"retries" validate:"min=0"`
	BreakerMaxFailures uint32   `mapstructure:"breaker_max_failures" validate:"min=1"`
	ForecastCount      int      `mapstructure:"forecast_count" validate:"min=1,max=40"`
	GeocodeLimit       int      `mapstructure:"geocode_limit" validate:"min=1,max=5"`
	SeedCities         []string `mapstructure:"seed_cities"`
	StrictSeed         bool     `mapstructure:"strict_seed"`
	SummaryWorkers     int      `mapstructure:"summary_workers" validate:"min=1"`
}

type CacheConfig struct {
	Backend   string `mapstructure:"backend" validate:"oneof=memory redis"`
	TTL       int    `mapstructure:"ttl" validate:"min=1"`
	StaleTTL  int    `mapstructure:"stale_ttl" validate:"min=1"`
	RedisURL  string `mapstructure:"redis_url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type EventsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8000,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
			CORSOrigins:  []string{"http://localhost:3000", "localhost:3000"},
		},
		Weather: WeatherConfig{
			BaseURL:            "https://api.openweathermap.org/data/2.5",
			GeoURL:             "http://api.openweathermap.org/geo/1.0",
			IconURL:            "https://openweathermap.org/img/wn/%s@2x.png",
			Timeout:            10,
			Retries:            2,
			BreakerMaxFailures: 5,
			ForecastCount:      24,
			GeocodeLimit:       5,
			SeedCities:         []string{"Taipei", "Koprivnica", "Prague", "Boston", "Sydney"},
			StrictSeed:         false,
			SummaryWorkers:     4,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			TTL:       900,
			StaleTTL:  86400,
			RedisURL:  "redis://localhost:6379/0",
			KeyPrefix: "weather:http:",
		},
		Events: EventsConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topic:   "tracked-cities",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "tempo:4317",
		},
	}
}
