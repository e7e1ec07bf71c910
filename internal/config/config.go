package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents runtime configuration for the service.
// It is built once by Load and treated as read-only afterwards.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	AI      AIConfig      `mapstructure:"ai"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// AIConfig describes the single upstream completion endpoint.
type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	APIURL   string        `mapstructure:"api_url"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Backend         string        `mapstructure:"backend"`
	UploadDir       string        `mapstructure:"upload_dir"`
	ProcessedDir    string        `mapstructure:"processed_dir"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

const (
	DefaultAPIKey         = "your-api-key-here"
	DefaultAPIURL         = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel          = "deepseek/deepseek-chat-v3-0324:free"
	DefaultMaxUploadBytes = 16 << 20 // 16 MiB
)

// Load reads configuration from the optional file at path and from the environment.
// The upstream credentials keep their historical names: AI_API_KEY, AI_API_URL, AI_MODEL.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"ai.api_key":  "AI_API_KEY",
		"ai.api_url":  "AI_API_URL",
		"ai.model":    "AI_MODEL",
		"ai.provider": "AI_PROVIDER",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":5001")
	v.SetDefault("server.max_upload_bytes", DefaultMaxUploadBytes)

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.api_key", DefaultAPIKey)
	v.SetDefault("ai.api_url", DefaultAPIURL)
	v.SetDefault("ai.model", DefaultModel)
	v.SetDefault("ai.timeout", "60s")

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.processed_dir", "processed")
	v.SetDefault("storage.session_ttl", "0s")
	v.SetDefault("storage.cleanup_interval", "1h")

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "doccompliance:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("server.address must be configured")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be positive")
	}
	if c.AI.Timeout <= 0 {
		return errors.New("ai.timeout must be positive")
	}
	switch strings.ToLower(c.AI.Provider) {
	case "openai", "claude", "gemini":
	default:
		return fmt.Errorf("unsupported ai.provider: %s", c.AI.Provider)
	}
	switch strings.ToLower(c.Storage.Backend) {
	case "file", "redis":
	default:
		return fmt.Errorf("unsupported storage.backend: %s", c.Storage.Backend)
	}
	if c.Storage.UploadDir == "" || c.Storage.ProcessedDir == "" {
		return errors.New("storage.upload_dir and storage.processed_dir must be configured")
	}
	if c.Storage.SessionTTL < 0 {
		return errors.New("storage.session_ttl cannot be negative")
	}
	return nil
}
