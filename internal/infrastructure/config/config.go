package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"dishdash/internal/pkg/common"
)

// Config 應用配置
type Config struct {
	App      AppConfig     `mapstructure:"app"`
	API      APIConfig     `mapstructure:"api"`
	Storage  StorageConfig `mapstructure:"storage"`
	Session  SessionConfig `mapstructure:"session"`
	Stub     StubConfig    `mapstructure:"stub"`
	LogLevel string        `mapstructure:"log_level"`
	LogFile  string        `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// APIConfig 遠端 REST API 設定
type APIConfig struct {
	URL string `mapstructure:"url"`
	// Timeout 為 0 時不設定逾時，交由網路堆疊的預設行為
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig 用戶端儲存（權杖與使用者快照）設定
type StorageConfig struct {
	Backend   string        `mapstructure:"backend"` // file | memory | redis
	Path      string        `mapstructure:"path"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	Prefix    string        `mapstructure:"prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// SessionConfig 工作階段行為設定
type SessionConfig struct {
	LogoutOnUnauthorized bool `mapstructure:"logout_on_unauthorized"`
}

// StubConfig 本地 stub API 設定
type StubConfig struct {
	Port         int             `mapstructure:"port"`
	JWTSecret    string          `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration   `mapstructure:"token_ttl"`
	ReadTimeout  time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout time.Duration   `mapstructure:"write_timeout"`
	MaxBodyBytes int64           `mapstructure:"max_body_bytes"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// 儲存後端名稱
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	v := viper.New()

	// .env 不存在時不視為錯誤
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	setDefaults(v)

	v.SetEnvPrefix("DISHDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量，保留前端時期的變數名稱
	_ = v.BindEnv("api.url", "DISHDASH_API_URL", "NEXT_PUBLIC_API_URL")
	_ = v.BindEnv("api.timeout", "DISHDASH_API_TIMEOUT")
	_ = v.BindEnv("storage.redis_addr", "DISHDASH_STORAGE_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("stub.jwt_secret", "DISHDASH_STUB_JWT_SECRET", "SECRET_KEY")
	_ = v.BindEnv("log_level", "DISHDASH_LOG_LEVEL", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "dishdash")

	v.SetDefault("api.url", "")
	v.SetDefault("api.timeout", "0s")

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.prefix", "dishdash:")
	v.SetDefault("storage.ttl", "0s")

	v.SetDefault("session.logout_on_unauthorized", false)

	v.SetDefault("stub.port", 8000)
	v.SetDefault("stub.jwt_secret", "dev-secret-change-me")
	v.SetDefault("stub.token_ttl", "24h")
	v.SetDefault("stub.read_timeout", "30s")
	v.SetDefault("stub.write_timeout", "30s")
	v.SetDefault("stub.max_body_bytes", 1<<20)
	v.SetDefault("stub.rate_limit.enabled", false)
	v.SetDefault("stub.rate_limit.requests", 60)
	v.SetDefault("stub.rate_limit.window", "1m")

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", "")
}

// defaultStoragePath 用戶端儲存的預設檔案位置
func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".dishdash", "storage.json")
	}
	return filepath.Join(dir, "dishdash", "storage.json")
}

// validateConfig 驗證設定
//
// API URL 不在這裡檢查：stub 伺服器不需要它，缺少時由 RequireAPIURL 回報。
func validateConfig(cfg *Config) error {
	switch cfg.Storage.Backend {
	case BackendFile:
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage path is required for file backend")
		}
	case BackendMemory:
	case BackendRedis:
		if cfg.Storage.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.API.Timeout < 0 {
		return fmt.Errorf("invalid api timeout")
	}

	if cfg.Stub.Port <= 0 {
		return fmt.Errorf("stub port is required")
	}
	if cfg.Stub.RateLimit.Enabled {
		if cfg.Stub.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests")
		}
		if cfg.Stub.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window")
		}
	}

	return nil
}

// RequireAPIURL 檢查遠端 API 位址，缺少或格式錯誤時回傳設定錯誤
func (c *Config) RequireAPIURL() (string, error) {
	raw := strings.TrimSpace(c.API.URL)
	if raw == "" {
		return "", common.ErrMissingAPIURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", common.NewError(common.ErrCodeConfig, fmt.Sprintf("invalid API URL %q", raw), 0, err)
	}
	return strings.TrimRight(raw, "/"), nil
}
