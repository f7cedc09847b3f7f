package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey 表示未配置生成服务所需的 API Key。
var ErrMissingAPIKey = errors.New("GROQ_API_KEY (or LLM_API_KEY) must be set")

const (
	defaultLLMBaseURL     = "https://api.groq.com/openai/v1"
	defaultLLMModel       = "llama-3.3-70b-versatile"
	defaultMaxUploadBytes = 1 << 20
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	GinMode        string
	LogLevel       string
	SessionSecret  string
	DatabasePath   string
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMTimeout     time.Duration
	SearchProvider string
	SearchAPIURL   string
	CORSOrigins    []string
	MaxUploadBytes int64
}

// envFiles 按顺序加载，已存在的进程环境变量优先。
var envFiles = []string{".env", ".env.local"}

// Load 依次读取 .env 文件、可选的 postsmith.yaml 与环境变量，并为缺失项提供默认值。
// 缺少 API Key 不会在这里报错，调用方需要时使用 Validate 尽早失败。
func Load() (AppConfig, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return AppConfig{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	v := viper.New()
	v.SetConfigName("postsmith")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_SECRET", "postsmith-dev-secret")
	v.SetDefault("DATABASE_PATH", "postsmith.db")
	v.SetDefault("LLM_BASE_URL", defaultLLMBaseURL)
	v.SetDefault("LLM_MODEL", defaultLLMModel)
	v.SetDefault("LLM_TIMEOUT", "3m")
	v.SetDefault("SEARCH_PROVIDER", "duckduckgo")
	v.SetDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	port := strings.TrimSpace(v.GetString("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(v.GetString("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	apiKey := strings.TrimSpace(v.GetString("GROQ_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(v.GetString("LLM_API_KEY"))
	}

	timeout := v.GetDuration("LLM_TIMEOUT")
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	maxUpload := v.GetInt64("MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		GinMode:        strings.TrimSpace(v.GetString("GIN_MODE")),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		SessionSecret:  strings.TrimSpace(v.GetString("SESSION_SECRET")),
		DatabasePath:   strings.TrimSpace(v.GetString("DATABASE_PATH")),
		LLMAPIKey:      apiKey,
		LLMBaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("LLM_BASE_URL")), "/"),
		LLMModel:       strings.TrimSpace(v.GetString("LLM_MODEL")),
		LLMTimeout:     timeout,
		SearchProvider: strings.ToLower(strings.TrimSpace(v.GetString("SEARCH_PROVIDER"))),
		SearchAPIURL:   strings.TrimSpace(v.GetString("SEARCH_API_URL")),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		MaxUploadBytes: maxUpload,
	}, nil
}

// Validate 检查启动生成服务前必须存在的配置项。
func (c AppConfig) Validate() error {
	if c.LLMAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
