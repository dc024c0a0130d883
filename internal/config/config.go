package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	AI        AIConfig
	Media     MediaConfig
	Links     LinksConfig
	Log       LogConfig
}

type AppConfig struct {
	Port           string
	BaseURL        string
	PublicCacheTTL time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	SecureCookie bool
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

type AIConfig struct {
	Endpoint string
	Model    string
	APIKeys  []string // порядок важен: основной ключ, затем запасные
	Timeout  time.Duration
}

type MediaConfig struct {
	Dir       string
	URLPrefix string
}

type LinksConfig struct {
	RenumberOnDeactivate bool
}

type LogConfig struct {
	Level string
	Dev   bool
}

// Load читает конфиг из .env (если есть) и переменных окружения
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// В проде .env может отсутствовать, конфиг тогда берётся из окружения
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	var cfg Config
	cfg.App.Port = v.GetString("APP_PORT")
	cfg.App.BaseURL = strings.TrimRight(v.GetString("APP_BASE_URL"), "/")
	cfg.App.PublicCacheTTL = v.GetDuration("PUBLIC_CACHE_TTL")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.URL = v.GetString("REDIS_URL")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")

	cfg.Auth.JWTSecret = v.GetString("AUTH_JWT_SECRET")
	cfg.Auth.SessionTTL = v.GetDuration("AUTH_SESSION_TTL")
	cfg.Auth.SecureCookie = v.GetString("APP_ENV") == "production"

	cfg.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	cfg.RateLimit.BurstSize = v.GetInt("RATE_LIMIT_BURST")

	cfg.AI.Endpoint = v.GetString("AI_ENDPOINT")
	cfg.AI.Model = v.GetString("AI_MODEL")
	cfg.AI.APIKeys = parseList(v.GetString("AI_API_KEYS"))
	cfg.AI.Timeout = v.GetDuration("AI_TIMEOUT")

	cfg.Media.Dir = v.GetString("MEDIA_DIR")
	cfg.Media.URLPrefix = v.GetString("MEDIA_URL_PREFIX")

	cfg.Links.RenumberOnDeactivate = v.GetBool("LINKS_RENUMBER_ON_DEACTIVATE")

	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Dev = v.GetBool("LOG_DEV")

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PUBLIC_CACHE_TTL", 10*time.Minute)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_POOL_SIZE", 100)
	v.SetDefault("AUTH_SESSION_TTL", 24*time.Hour)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("AI_ENDPOINT", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("AI_MODEL", "deepseek/deepseek-r1-distill-qwen-32b:free")
	v.SetDefault("AI_TIMEOUT", 30*time.Second)
	v.SetDefault("MEDIA_DIR", "./media")
	v.SetDefault("MEDIA_URL_PREFIX", "/media")
	v.SetDefault("LOG_LEVEL", "info")
}

// parseList разбирает список через запятую, сохраняя порядок
func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
