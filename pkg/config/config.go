package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database        DatabaseConfig
	Redis           RedisConfig
	Log             LogConfig
	Metrics         MetricsConfig
	Recommendations RecommendationConfig
	Warnings        WarningConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        int
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	KeyPrefix   string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// RecommendationConfig governs recommendation caching and list sizes.
type RecommendationConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	Limit        int
}

// WarningConfig controls the periodic warning sweeps.
type WarningConfig struct {
	SchedulerEnabled bool
	DailyCron        string
	WeeklyCron       string
	SweepRetries     int
	SweepRetryDelay  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:     v.GetBool("ENABLE_REDIS"),
		Host:        v.GetString("REDIS_HOST"),
		Port:        v.GetInt("REDIS_PORT"),
		Password:    v.GetString("REDIS_PASSWORD"),
		DB:          v.GetInt("REDIS_DB"),
		PoolSize:    v.GetInt("REDIS_POOL_SIZE"),
		DialTimeout: parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 3*time.Second),
		KeyPrefix:   v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	limit := v.GetInt("RECOMMENDATION_LIMIT")
	if limit <= 0 {
		limit = 10
	}
	cfg.Recommendations = RecommendationConfig{
		CacheEnabled: v.GetBool("ENABLE_RECOMMENDATION_CACHE"),
		CacheTTL:     parseDuration(v.GetString("RECOMMENDATION_CACHE_TTL"), 10*time.Minute),
		Limit:        limit,
	}

	cfg.Warnings = WarningConfig{
		SchedulerEnabled: v.GetBool("ENABLE_WARNING_SCHEDULER"),
		DailyCron:        v.GetString("WARNING_DAILY_CRON"),
		WeeklyCron:       v.GetString("WARNING_WEEKLY_CRON"),
		SweepRetries:     v.GetInt("WARNING_SWEEP_RETRIES"),
		SweepRetryDelay:  parseDuration(v.GetString("WARNING_SWEEP_RETRY_DELAY"), time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "student_affairs")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "3s")
	v.SetDefault("REDIS_KEY_PREFIX", "academic")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("ENABLE_RECOMMENDATION_CACHE", false)
	v.SetDefault("RECOMMENDATION_CACHE_TTL", "10m")
	v.SetDefault("RECOMMENDATION_LIMIT", 10)

	v.SetDefault("ENABLE_WARNING_SCHEDULER", true)
	v.SetDefault("WARNING_DAILY_CRON", "0 2 * * *")
	v.SetDefault("WARNING_WEEKLY_CRON", "0 1 * * 0")
	v.SetDefault("WARNING_SWEEP_RETRIES", 0)
	v.SetDefault("WARNING_SWEEP_RETRY_DELAY", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
