// Package config loads application configuration from config.yaml and
// PARTNERS_-prefixed environment variables, and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	CEP     CEPConfig     `yaml:"cep" mapstructure:"cep"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Places  PlacesConfig  `yaml:"places" mapstructure:"places"`
	Import  ImportConfig  `yaml:"import" mapstructure:"import"`
	Sweep   SweepConfig   `yaml:"sweep" mapstructure:"sweep"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the destination store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"` // sqlite file path
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CEPConfig configures the postal code lookup providers.
type CEPConfig struct {
	ViaCEPBaseURL    string  `yaml:"viacep_base_url" mapstructure:"viacep_base_url"`
	BrasilAPIBaseURL string  `yaml:"brasilapi_base_url" mapstructure:"brasilapi_base_url"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// GeocodeConfig configures the geocoding providers.
type GeocodeConfig struct {
	GoogleKey        string  `yaml:"google_key" mapstructure:"google_key"`
	NominatimBaseURL string  `yaml:"nominatim_base_url" mapstructure:"nominatim_base_url"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// PlacesConfig configures the place-photo provider.
type PlacesConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ImportConfig configures batch processing.
type ImportConfig struct {
	BatchSize      int    `yaml:"batch_size" mapstructure:"batch_size"`
	BatchDelaySecs int    `yaml:"batch_delay_secs" mapstructure:"batch_delay_secs"`
	CodeWidth      int    `yaml:"code_width" mapstructure:"code_width"`
	DefaultName    string `yaml:"default_name" mapstructure:"default_name"`
}

// BatchDelay returns the inter-batch delay as a duration.
func (c ImportConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelaySecs) * time.Second
}

// SweepConfig configures the post-import geocoding sweep.
type SweepConfig struct {
	Limit     int `yaml:"limit" mapstructure:"limit"`
	DelayMsec int `yaml:"delay_msec" mapstructure:"delay_msec"`
}

// Delay returns the per-record sweep delay as a duration.
func (c SweepConfig) Delay() time.Duration {
	return time.Duration(c.DelayMsec) * time.Millisecond
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PARTNERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.path", "partners.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("cep.viacep_base_url", "https://viacep.com.br/ws")
	v.SetDefault("cep.brasilapi_base_url", "https://brasilapi.com.br/api/cep/v1")
	v.SetDefault("cep.timeout_secs", 10)
	v.SetDefault("cep.rate_limit", 10)
	v.SetDefault("geocode.nominatim_base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.rate_limit", 10)
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.rate_limit", 10)
	v.SetDefault("import.batch_size", 5)
	v.SetDefault("import.batch_delay_secs", 2)
	v.SetDefault("import.code_width", 6)
	v.SetDefault("import.default_name", "Estabelecimento sem nome")
	v.SetDefault("sweep.limit", 500)
	v.SetDefault("sweep.delay_msec", 1100)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
