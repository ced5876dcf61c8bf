package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/domain"

	"google.golang.org/genai"
)

const statusResourceExhausted = "RESOURCE_EXHAUSTED"

// errNoImage は API が画像を1枚も返さなかった場合のエラーです。
var errNoImage = errors.New("画像が生成されませんでした")

// GenerateImage はシーン記述をスタイル指示で包み、1枚の画像を生成します。
// レート制限やクォータ枯渇は *domain.RateLimitError として返します。
func (c *Client) GenerateImage(ctx context.Context, description string) (*domain.Image, error) {
	prompt, err := c.imagePrompt.Build(description)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	resp, err := c.models.GenerateImages(ctx, c.cfg.ImageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: c.cfg.ImageMimeType,
		AspectRatio:    c.cfg.AspectRatio,
	})
	if err != nil {
		return nil, classifyImageError(err)
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, errNoImage
	}
	generated := resp.GeneratedImages[0]
	if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated != nil && generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("%w: %s", errNoImage, generated.RAIFilteredReason)
		}
		return nil, errNoImage
	}

	mimeType := generated.Image.MIMEType
	if mimeType == "" {
		mimeType = c.cfg.ImageMimeType
	}
	slog.DebugContext(ctx, "画像の生成が完了しました",
		"model", c.cfg.ImageModel,
		"bytes", len(generated.Image.ImageBytes),
		"duration", time.Since(startTime).Round(time.Millisecond))

	return &domain.Image{Data: generated.Image.ImageBytes, MimeType: mimeType}, nil
}

// classifyImageError はレート制限を示すエラーを RateLimitError に包み直します。
func classifyImageError(err error) error {
	if isRateLimit(err) {
		return &domain.RateLimitError{Err: err}
	}
	return fmt.Errorf("画像生成リクエストに失敗しました: %w", err)
}

// isRateLimit は HTTP 429 相当、または RESOURCE_EXHAUSTED を示すエラーかを判定します。
func isRateLimit(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == statusResourceExhausted
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == statusResourceExhausted
	}

	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, statusResourceExhausted)
}
