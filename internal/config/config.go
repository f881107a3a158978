package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	mu   sync.RWMutex
	conf *Config
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Crisis   CrisisConfig   `mapstructure:"crisis"`
	FollowUp FollowUpConfig `mapstructure:"followup"`
}

// ServerConfig holds server-related settings.
// ProviderSecret signs provider report tokens; empty leaves the report open.
// It is read per request, so a reload takes effect without a restart.
// TrustedProxies lists the proxies whose X-Forwarded-For is believed; empty trusts none.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	RateLimit      int      `mapstructure:"rate_limit"`
	ProviderSecret string   `mapstructure:"provider_secret"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DatabaseConfig holds database connection settings.
// Driver is either "postgres" or "sqlite"; Path is only used by sqlite.
// Statements slower than SlowQuery are logged at WARN.
type DatabaseConfig struct {
	Driver    string        `mapstructure:"driver"`
	Host      string        `mapstructure:"host"`
	Port      string        `mapstructure:"port"`
	User      string        `mapstructure:"user"`
	Password  string        `mapstructure:"password"`
	DBName    string        `mapstructure:"dbname"`
	Path      string        `mapstructure:"path"`
	SlowQuery time.Duration `mapstructure:"slow_query"`
}

// RedisConfig holds connection settings for the redis crisis log backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// CrisisConfig controls the crisis catalog and where the crisis log lives.
type CrisisConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
	Store       string `mapstructure:"store"`
	LogKey      string `mapstructure:"log_key"`
	Region      string `mapstructure:"region"`
}

// FollowUpConfig holds follow-up delays per severity and the reminder poll schedule.
type FollowUpConfig struct {
	HighAfter    time.Duration `mapstructure:"high_after"`
	MediumAfter  time.Duration `mapstructure:"medium_after"`
	DefaultAfter time.Duration `mapstructure:"default_after"`
	PollSpec     string        `mapstructure:"poll_spec"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.rate_limit", 30)
	v.SetDefault("server.provider_secret", "")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "mindcare-db")
	v.SetDefault("database.path", "data/mindcare.db")
	v.SetDefault("database.slow_query", "200ms")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true)

	v.SetDefault("crisis.catalog_path", "config/crisis.yaml")
	v.SetDefault("crisis.store", "database")
	v.SetDefault("crisis.log_key", "mindcare:crisis_log")
	v.SetDefault("crisis.region", "US")

	v.SetDefault("followup.high_after", "24h")
	v.SetDefault("followup.medium_after", "72h")
	v.SetDefault("followup.default_after", "168h")
	v.SetDefault("followup.poll_spec", "@every 1m")
}

// Init loads the configuration with Viper and stores it for Get.
// A missing config file is fine; defaults and env vars are used instead.
func Init(projectRoot string, log *zap.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("MINDCARE") // e.g., MINDCARE_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	set(cfg)

	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
			next, err := decode(v)
			if err != nil {
				log.Error("Error reloading configuration", zap.Error(err))
				return
			}
			set(next)
		})
		v.WatchConfig()
	}

	log.Info("Configuration loaded successfully", zap.String("file", v.ConfigFileUsed()))
	return cfg, nil
}

// Get returns the most recently loaded configuration, or nil before Init.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return conf
}

func set(cfg *Config) {
	mu.Lock()
	conf = cfg
	mu.Unlock()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, nil
}
