package config

import (
	"errors"
	"time"
)

// デフォルト値の定義
const (
	DefaultScriptModel       = "gemini-2.5-flash"
	DefaultImageModel        = "imagen-4.0-generate-001"
	DefaultChatModel         = "gemini-2.5-flash"
	DefaultAspectRatio       = "16:9"
	DefaultImageMimeType     = "image/jpeg"
	DefaultPacingInterval    = 5 * time.Second
	DefaultRequestTimeout    = 2 * time.Minute
	DefaultImagePromptFormat = "A cinematic, high-quality storyboard panel illustration of: {{.Description}}. Minimalist, clear action, dramatic lighting."
	DefaultSystemInstruction = "You are a helpful assistant with expertise in filmmaking and scriptwriting. Answer questions concisely and clearly."
	DefaultGreeting          = "Hello! How can I help you with your script or filmmaking questions today?"
)

// ErrMissingAPIKey は API キーが設定されていない場合のエラーです。
var ErrMissingAPIKey = errors.New("Gemini API キーが設定されていません")

// Config は Go Storyboard Kit の各コンポーネントを動作させるための基本設定です。
type Config struct {
	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string

	// --- AI Model Settings ---
	ScriptModel string // 台本解析用
	ImageModel  string // ストーリーボード画像生成用
	ChatModel   string // アシスタントチャット用

	// --- Image Settings ---
	AspectRatio         string
	ImageMimeType       string
	ImagePromptTemplate string // {{.Description}} にシーン記述が入ります

	// --- Pacing ---
	// PacingInterval は連続する画像生成リクエストの開始間隔です。
	PacingInterval time.Duration

	// --- Chat Settings ---
	SystemInstruction string
	Greeting          string

	// --- Timeout ---
	RequestTimeout time.Duration
}

// NewConfig はデフォルト値で初期化された Config に API キーをセットして返します。
func NewConfig(apiKey string) Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = apiKey
	return cfg
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		ScriptModel:         DefaultScriptModel,
		ImageModel:          DefaultImageModel,
		ChatModel:           DefaultChatModel,
		AspectRatio:         DefaultAspectRatio,
		ImageMimeType:       DefaultImageMimeType,
		ImagePromptTemplate: DefaultImagePromptFormat,
		PacingInterval:      DefaultPacingInterval,
		SystemInstruction:   DefaultSystemInstruction,
		Greeting:            DefaultGreeting,
		RequestTimeout:      DefaultRequestTimeout,
	}
}

// Validate は起動前に満たすべき設定を確認します。
func (c Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.PacingInterval < 0 {
		return errors.New("PacingInterval に負の値は指定できません")
	}
	return nil
}
