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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	OpenAI    OpenAIConfig
	Chat      ChatConfig
	Classroom ClassroomConfig
	Dashboard DashboardConfig
	Audit     AuditConfig
	Seed      SeedConfig
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
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// OpenAIConfig carries the third-party chat-completion credentials. The
// client is constructed once at process start and injected; no package holds
// a global credential.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// ChatConfig tunes the conversation proxy.
type ChatConfig struct {
	HistoryWindow int
}

// ClassroomConfig governs join-code issuance.
type ClassroomConfig struct {
	CodeLength      int
	CodeMaxAttempts int
	ReportPageLimit int
}

// DashboardConfig governs recent-activity caching.
type DashboardConfig struct {
	CacheTTL   time.Duration
	RecentLogs int
}

// AuditConfig tunes the async audit writer.
type AuditConfig struct {
	Workers    int
	BufferSize int
}

// SeedConfig toggles bootstrap-account creation at startup.
type SeedConfig struct {
	Enabled bool
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
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.OpenAI = OpenAIConfig{
		APIKey:  v.GetString("OPENAI_API_KEY"),
		Model:   v.GetString("OPENAI_MODEL"),
		BaseURL: v.GetString("OPENAI_BASE_URL"),
		Timeout: parseDuration(v.GetString("OPENAI_TIMEOUT"), 30*time.Second),
	}

	cfg.Chat = ChatConfig{
		HistoryWindow: v.GetInt("CHAT_HISTORY_WINDOW"),
	}

	cfg.Classroom = ClassroomConfig{
		CodeLength:      v.GetInt("CLASS_CODE_LENGTH"),
		CodeMaxAttempts: v.GetInt("CLASS_CODE_MAX_ATTEMPTS"),
		ReportPageLimit: v.GetInt("CLASS_REPORT_PAGE_LIMIT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL:   parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		RecentLogs: v.GetInt("DASHBOARD_RECENT_LOGS"),
	}

	cfg.Audit = AuditConfig{
		Workers:    v.GetInt("AUDIT_WORKERS"),
		BufferSize: v.GetInt("AUDIT_BUFFER_SIZE"),
	}

	cfg.Seed = SeedConfig{Enabled: v.GetBool("SEED_ACCOUNTS")}

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
	v.SetDefault("DB_NAME", "kotoba")
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

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("OPENAI_TIMEOUT", "30s")

	v.SetDefault("CHAT_HISTORY_WINDOW", 5)

	v.SetDefault("CLASS_CODE_LENGTH", 6)
	v.SetDefault("CLASS_CODE_MAX_ATTEMPTS", 5)
	v.SetDefault("CLASS_REPORT_PAGE_LIMIT", 500)

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_RECENT_LOGS", 10)

	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_BUFFER_SIZE", 64)

	v.SetDefault("SEED_ACCOUNTS", true)
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
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
