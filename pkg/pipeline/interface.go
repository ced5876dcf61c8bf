package pipeline

import (
	"context"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// ScriptParser は台本テキストをシーン記述の並びに変換するインターフェースです。
type ScriptParser interface {
	ParseScript(ctx context.Context, script string) ([]domain.SceneDraft, error)
}

// ImageGenerator はシーン記述から1枚の画像を生成するインターフェースです。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, description string) (*domain.Image, error)
}

// Pacer はシーンの解決から次の画像リクエストまでの間隔を空けます。
// Wait はリクエストの直前に、Mark はシーンが解決した直後に呼ばれます。
type Pacer interface {
	Wait(ctx context.Context) error
	Mark()
}

// Recorder はパイプライン実行の結果を記録します。
type Recorder interface {
	SceneGenerated()
	SceneFailed(rateLimited bool)
	RunFinished(status domain.RunStatus)
}

type noopRecorder struct{}

func (noopRecorder) SceneGenerated()              {}
func (noopRecorder) SceneFailed(bool)             {}
func (noopRecorder) RunFinished(domain.RunStatus) {}

type noPacing struct{}

func (noPacing) Wait(ctx context.Context) error { return ctx.Err() }
func (noPacing) Mark()                          {}
