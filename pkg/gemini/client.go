package gemini

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"

	"google.golang.org/genai"
)

// modelsAPI は genai.Models のうち、このパッケージが利用するメソッドです。
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// messageSender は genai.Chat のうち、1ターンの送信に使うメソッドです。
type messageSender interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatFactory func(ctx context.Context, model string, cfg *genai.GenerateContentConfig) (messageSender, error)

// Client は Gemini API を Model Service として扱うアダプターです。
// プロセス全体で1つだけ生成し、読み取り専用で共有します。
type Client struct {
	cfg          config.Config
	models       modelsAPI
	newChat      chatFactory
	scriptPrompt prompts.ScriptPrompt
	imagePrompt  prompts.ImagePrompt
}

// NewClient は API キーから genai クライアントを初期化します。
func NewClient(ctx context.Context, cfg config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}

	newChat := func(ctx context.Context, model string, chatCfg *genai.GenerateContentConfig) (messageSender, error) {
		return gc.Chats.Create(ctx, model, chatCfg, nil)
	}
	return newClient(cfg, gc.Models, newChat)
}

// newClient はテンプレートを準備して Client を組み立てます。
func newClient(cfg config.Config, models modelsAPI, newChat chatFactory) (*Client, error) {
	sp, err := prompts.NewScriptPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("台本プロンプトビルダーの作成に失敗しました: %w", err)
	}
	ip, err := prompts.NewImagePromptBuilder(cfg.ImagePromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("画像プロンプトビルダーの作成に失敗しました: %w", err)
	}

	return &Client{
		cfg:          cfg,
		models:       models,
		newChat:      newChat,
		scriptPrompt: sp,
		imagePrompt:  ip,
	}, nil
}
