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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Cache     CacheConfig
	Exports   ExportsConfig
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxOpenConns  int
	MaxIdleConns  int
	RunMigrations bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the shared secret used to verify bearer tokens issued by the auth service.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the schedule generation engine.
type SchedulerConfig struct {
	Enabled              bool
	DailyHourCeiling     float64
	WeekPasses           int
	ShuffleGrid          bool
	ConflictMode         string
	CheckRoom            bool
	CheckProfessor       bool
	RequiredHoursPolicy  string
	DefaultRequiredHours float64
	GridSource           string
	DayStart             string
	DayEnd               string
	DefaultAcademicYear  string
}

// CacheConfig governs read-side caching of schedule listings.
type CacheConfig struct {
	Enabled     bool
	ScheduleTTL time.Duration
}

// ExportsConfig configures asynchronous timetable exports.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
	TermWeeks         int
	TermStart         string
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
		Host:          v.GetString("DB_HOST"),
		Port:          v.GetInt("DB_PORT"),
		User:          v.GetString("DB_USER"),
		Password:      v.GetString("DB_PASSWORD"),
		Name:          v.GetString("DB_NAME"),
		SSLMode:       v.GetString("DB_SSL_MODE"),
		MaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		RunMigrations: v.GetBool("DB_RUN_MIGRATIONS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:              v.GetBool("ENABLE_SCHEDULER"),
		DailyHourCeiling:     positiveFloat(v.GetFloat64("SCHEDULER_DAILY_HOUR_CEILING"), 6),
		WeekPasses:           positiveInt(v.GetInt("SCHEDULER_WEEK_PASSES"), 4),
		ShuffleGrid:          v.GetBool("SCHEDULER_SHUFFLE_GRID"),
		ConflictMode:         strings.ToLower(v.GetString("SCHEDULER_CONFLICT_MODE")),
		CheckRoom:            v.GetBool("SCHEDULER_CHECK_ROOM"),
		CheckProfessor:       v.GetBool("SCHEDULER_CHECK_PROFESSOR"),
		RequiredHoursPolicy:  strings.ToLower(v.GetString("SCHEDULER_REQUIRED_HOURS_POLICY")),
		DefaultRequiredHours: positiveFloat(v.GetFloat64("SCHEDULER_DEFAULT_REQUIRED_HOURS"), 3),
		GridSource:           strings.ToLower(v.GetString("SCHEDULER_GRID_SOURCE")),
		DayStart:             v.GetString("SCHEDULER_DAY_START"),
		DayEnd:               v.GetString("SCHEDULER_DAY_END"),
		DefaultAcademicYear:  v.GetString("SCHEDULER_DEFAULT_ACADEMIC_YEAR"),
	}

	cfg.Cache = CacheConfig{
		Enabled:     v.GetBool("ENABLE_SCHEDULE_CACHE"),
		ScheduleTTL: parseDuration(v.GetString("SCHEDULE_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: positiveInt(v.GetInt("EXPORTS_WORKER_CONCURRENCY"), 1),
		WorkerRetries:     positiveInt(v.GetInt("EXPORTS_WORKER_RETRIES"), 3),
		TermWeeks:         positiveInt(v.GetInt("EXPORTS_TERM_WEEKS"), 18),
		TermStart:         v.GetString("EXPORTS_TERM_START"),
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
	v.SetDefault("DB_NAME", "class_scheduler")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_RUN_MIGRATIONS", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("SCHEDULER_DAILY_HOUR_CEILING", 6)
	v.SetDefault("SCHEDULER_WEEK_PASSES", 4)
	v.SetDefault("SCHEDULER_SHUFFLE_GRID", true)
	v.SetDefault("SCHEDULER_CONFLICT_MODE", "cross_cohort")
	v.SetDefault("SCHEDULER_CHECK_ROOM", false)
	v.SetDefault("SCHEDULER_CHECK_PROFESSOR", false)
	v.SetDefault("SCHEDULER_REQUIRED_HOURS_POLICY", "fixed")
	v.SetDefault("SCHEDULER_DEFAULT_REQUIRED_HOURS", 3)
	v.SetDefault("SCHEDULER_GRID_SOURCE", "database")
	v.SetDefault("SCHEDULER_DAY_START", "08:00")
	v.SetDefault("SCHEDULER_DAY_END", "17:30")
	v.SetDefault("SCHEDULER_DEFAULT_ACADEMIC_YEAR", "")

	v.SetDefault("ENABLE_SCHEDULE_CACHE", false)
	v.SetDefault("SCHEDULE_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
	v.SetDefault("EXPORTS_TERM_WEEKS", 18)
	v.SetDefault("EXPORTS_TERM_START", "")
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

func positiveInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func positiveFloat(value, fallback float64) float64 {
	if value <= 0 {
		return fallback
	}
	return value
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
