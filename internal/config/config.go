package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env               string        `mapstructure:"ENV"`
	Port              string        `mapstructure:"PORT"`
	AdminKey          string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed       string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB   int64         `mapstructure:"MAX_UPLOAD_MB"`
	CacheDir          string        `mapstructure:"CACHE_DIR"`
	TrendMonths       int           `mapstructure:"TREND_MONTHS"`
	AssistantBaseURL  string        `mapstructure:"ASSISTANT_BASE_URL"`
	AssistantModel    string        `mapstructure:"ASSISTANT_MODEL"`
	AssistantAPIKey   string        `mapstructure:"ASSISTANT_API_KEY"`
	AssistantMaxToken int           `mapstructure:"ASSISTANT_MAX_TOKENS"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("TREND_MONTHS", 6)
	v.SetDefault("ASSISTANT_MODEL", "gpt-4o-mini")
	v.SetDefault("ASSISTANT_MAX_TOKENS", 1024)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
