package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	pkgcfg "github.com/shouni/go-storyboard-kit/pkg/config"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義
const (
	DefaultServerAddr     = ":8080"
	DefaultAllowedOrigins = "http://localhost:5173,http://localhost:3000"
	DefaultRegistryTTL    = 30 * time.Minute
	DefaultOutputDir      = "output"
	DefaultEnvFile        = ".env"
)

// Config はアプリケーション全体の環境設定を保持する構造体です。
type Config struct {
	Storyboard pkgcfg.Config

	ServerAddr     string
	AllowedOrigins []string
	RegistryTTL    time.Duration

	Options GenerateOptions
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータです。
type GenerateOptions struct {
	ScriptFile string // --file: "-" は標準入力
	UseExample bool   // --example
	OutputDir  string // --output
	Verbose    bool   // --verbose
}

// LoadConfig は .env と環境変数から設定を読み込みます。
// 環境変数が .env より優先されます。
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn(".env の読み込みに失敗しました", "error", err)
	}

	lib := pkgcfg.NewConfig(apiKeyFromEnv())
	lib.ScriptModel = envOr("GEMINI_SCRIPT_MODEL", lib.ScriptModel)
	lib.ImageModel = envOr("GEMINI_IMAGE_MODEL", lib.ImageModel)
	lib.ChatModel = envOr("GEMINI_CHAT_MODEL", lib.ChatModel)
	lib.AspectRatio = envOr("IMAGE_ASPECT_RATIO", lib.AspectRatio)
	lib.ImagePromptTemplate = envOr("IMAGE_PROMPT_TEMPLATE", lib.ImagePromptTemplate)

	interval, err := durationEnv("PACING_INTERVAL", lib.PacingInterval)
	if err != nil {
		return nil, err
	}
	lib.PacingInterval = interval

	ttl, err := durationEnv("REGISTRY_TTL", DefaultRegistryTTL)
	if err != nil {
		return nil, err
	}

	return &Config{
		Storyboard:     lib,
		ServerAddr:     envOr("SERVER_ADDR", DefaultServerAddr),
		AllowedOrigins: splitList(envOr("ALLOWED_ORIGINS", DefaultAllowedOrigins)),
		RegistryTTL:    ttl,
		Options: GenerateOptions{
			OutputDir: DefaultOutputDir,
		},
	}, nil
}

// Validate は起動に必要な設定が揃っているかを確認します。
func (c *Config) Validate() error {
	return c.Storyboard.Validate()
}

// apiKeyFromEnv は GEMINI_API_KEY、なければ API_KEY を返します。
func apiKeyFromEnv() string {
	if key := envutil.GetEnv("GEMINI_API_KEY", ""); key != "" {
		return key
	}
	return envutil.GetEnv("API_KEY", "")
}

// envOr は環境変数が未設定または空の場合に def を返します。
func envOr(key, def string) string {
	if v := envutil.GetEnv(key, ""); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("環境変数 %s の値が不正です (%q): %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("環境変数 %s に負の値は指定できません: %s", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
