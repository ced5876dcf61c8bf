package publisher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/asset"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
	Title     string
}

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	MarkdownPath string   // 生成された storyboard.md のパス
	ImagePaths   []string // 保存された全画像のパスリスト
}

// StoryboardPublisher は完成したストーリーボードを画像と Markdown として書き出します。
type StoryboardPublisher struct {
	writer OutputWriter
}

// NewStoryboardPublisher は StoryboardPublisher を生成します。
func NewStoryboardPublisher(writer OutputWriter) *StoryboardPublisher {
	return &StoryboardPublisher{writer: writer}
}

// Publish は画像の保存と Markdown の書き出しを一括して実行します。
func (p *StoryboardPublisher) Publish(ctx context.Context, board domain.Storyboard, opts Options) (PublishResult, error) {
	result := PublishResult{}

	markdownPath, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultStoryboardName)
	if err != nil {
		return result, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}
	imgDir, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultImageDir)
	if err != nil {
		return result, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}

	relative := make(map[int]string, len(board.Scenes))
	for _, scene := range board.Scenes {
		if scene.Image == nil || len(scene.Image.Data) == 0 {
			continue
		}
		name, err := asset.SceneFileName(scene.ID, scene.Image.MimeType)
		if err != nil {
			return result, err
		}
		fullPath, err := asset.ResolveOutputPath(imgDir, name)
		if err != nil {
			return result, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
		}
		if err := p.writer.Write(ctx, fullPath, bytes.NewReader(scene.Image.Data), scene.Image.MimeType); err != nil {
			return result, fmt.Errorf("画像の書き込みに失敗しました %s: %w", fullPath, err)
		}
		result.ImagePaths = append(result.ImagePaths, fullPath)
		relative[scene.ID] = asset.RelativeImagePath(fullPath)
	}

	content := BuildMarkdown(opts.Title, board.Scenes, relative)
	if err := p.writer.Write(ctx, markdownPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}
	result.MarkdownPath = markdownPath

	slog.Info("ストーリーボードを書き出しました",
		"markdown", markdownPath,
		"images", len(result.ImagePaths),
		"scenes", len(board.Scenes),
	)
	return result, nil
}
