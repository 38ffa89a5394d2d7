package config

import (
	"errors"
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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Uploads  UploadsConfig
	Reports  ReportsConfig
	Calendar CalendarConfig
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
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadsConfig controls attachment storage for plannings and evidence.
type UploadsConfig struct {
	StorageDir       string
	PublicBaseURL    string
	MaxFileSizeBytes int64
}

// ReportsConfig tunes report aggregation caching.
type ReportsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// CalendarConfig tunes event synthesis and the notification queue.
type CalendarConfig struct {
	MaxResults      int
	Horizon         time.Duration
	NotifierWorkers int
	NotifierBuffer  int
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

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
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:       v.GetString("UPLOADS_STORAGE_DIR"),
		PublicBaseURL:    v.GetString("UPLOADS_PUBLIC_BASE_URL"),
		MaxFileSizeBytes: maxUploadSize,
	}

	cfg.Reports = ReportsConfig{
		CacheEnabled: v.GetBool("REPORTS_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("REPORTS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Calendar = CalendarConfig{
		MaxResults:      v.GetInt("CALENDAR_MAX_RESULTS"),
		Horizon:         parseDuration(v.GetString("CALENDAR_HORIZON"), 30*24*time.Hour),
		NotifierWorkers: v.GetInt("CALENDAR_NOTIFIER_WORKERS"),
		NotifierBuffer:  v.GetInt("CALENDAR_NOTIFIER_BUFFER"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "planeacion_didactica")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "sge-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_PUBLIC_BASE_URL", "/uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 10*1024*1024)

	v.SetDefault("REPORTS_CACHE_ENABLED", false)
	v.SetDefault("REPORTS_CACHE_TTL", "10m")

	v.SetDefault("CALENDAR_MAX_RESULTS", 10)
	v.SetDefault("CALENDAR_HORIZON", "720h")
	v.SetDefault("CALENDAR_NOTIFIER_WORKERS", 1)
	v.SetDefault("CALENDAR_NOTIFIER_BUFFER", 16)
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

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
