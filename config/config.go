package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mabenj/IoT-Platform/internal/logger"
)

type Config struct {
	AppEnv string `mapstructure:"APP_ENV"`

	WebPort  string `mapstructure:"WEB_PORT"`
	HTTPPort string `mapstructure:"HTTP_PORT"`
	CoAPPort string `mapstructure:"COAP_PORT"`
	GRPCPort string `mapstructure:"GRPC_PORT"`

	// Artificial per-request latency, never applied in production.
	WebDelayMs  int `mapstructure:"WEB_DELAY_MS"`
	HTTPDelayMs int `mapstructure:"HTTP_DELAY_MS"`
	CoAPDelayMs int `mapstructure:"COAP_DELAY_MS"`

	ItemsPerPage int `mapstructure:"ITEMS_PER_PAGE"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	ResolverCacheTTL time.Duration `mapstructure:"RESOLVER_CACHE_TTL"`

	InfluxURL    string `mapstructure:"INFLUXDB_URL"`
	InfluxToken  string `mapstructure:"INFLUXDB_TOKEN"`
	InfluxOrg    string `mapstructure:"INFLUXDB_ORG"`
	InfluxBucket string `mapstructure:"INFLUXDB_BUCKET"`

	// Comma separated; empty allows any origin.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	AllowDataDeletion bool `mapstructure:"ALLOW_DATA_DELETION"`
	CascadeDeviceData bool `mapstructure:"CASCADE_DEVICE_DATA"`

	Log logger.Config `mapstructure:",squash"`
}

var defaults = map[string]any{
	"APP_ENV":             "development",
	"WEB_PORT":            ":7000",
	"HTTP_PORT":           ":7100",
	"COAP_PORT":           ":7200",
	"GRPC_PORT":           "",
	"WEB_DELAY_MS":        1000,
	"HTTP_DELAY_MS":       1500,
	"COAP_DELAY_MS":       1500,
	"ITEMS_PER_PAGE":      20,
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "",
	"DB_NAME":             "iot",
	"REDIS_ADDR":          "",
	"RESOLVER_CACHE_TTL":  "5m",
	"INFLUXDB_URL":        "",
	"INFLUXDB_TOKEN":      "",
	"INFLUXDB_ORG":        "",
	"INFLUXDB_BUCKET":     "device_data",
	"CORS_ORIGINS":        "",
	"ALLOW_DATA_DELETION": false,
	"CASCADE_DEVICE_DATA": false,
	"LOG_LEVEL":           "info",
	"LOG_DEBUG":           false,
	"LOG_OUTPUT":          "stdout",
	"LOG_FORMAT":          "json",
}

func LoadConfig(path string) (config Config, err error) {
	// A missing .env is fine, the process environment still applies.
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	if config.ItemsPerPage < 1 {
		return config, fmt.Errorf("ITEMS_PER_PAGE must be positive, got %d", config.ItemsPerPage)
	}

	return config, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

// Delay returns the artificial latency for a listener, zero in production.
func (c Config) Delay(ms int) time.Duration {
	if c.IsProduction() || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
