package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"

	"golang.org/x/sync/semaphore"
)

// ErrBoardBusy は同じ Board で別の実行が進行中であることを示します。
var ErrBoardBusy = errors.New("このストーリーボードは生成中です")

var errNoImage = errors.New("画像が返されませんでした")

// StoryboardPipeline は台本の解析からシーン画像の逐次生成までをオーケストレートします。
// 同じ StoryboardPipeline で複数の Run が並行しても、画像リクエストは同時に1件までです。
type StoryboardPipeline struct {
	parser   ScriptParser
	images   ImageGenerator
	pacer    Pacer
	recorder Recorder
	requests *semaphore.Weighted
}

// Option は StoryboardPipeline の任意設定です。
type Option func(*StoryboardPipeline)

// WithRecorder は実行結果の記録先を設定します。
func WithRecorder(r Recorder) Option {
	return func(p *StoryboardPipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewStoryboardPipeline は各コンポーネントを受け取り StoryboardPipeline を生成します。
// pacer が nil の場合は間隔を空けません。
func NewStoryboardPipeline(parser ScriptParser, images ImageGenerator, pacer Pacer, opts ...Option) *StoryboardPipeline {
	if pacer == nil {
		pacer = noPacing{}
	}
	p := &StoryboardPipeline{
		parser:   parser,
		images:   images,
		pacer:    pacer,
		recorder: noopRecorder{},
		requests: semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run は台本から1回分のストーリーボードを生成し、その途中経過をすべて board に書き込みます。
//
// 解析の失敗は実行全体を中断しますが、1シーンの画像生成の失敗はそのシーンに記録されるだけで
// 残りのシーンは処理され続けます。各シーンが解決してから pacer の間隔を空けて次の画像を要求します。
// ctx がキャンセルされると未処理のシーンを pending のまま残し
// ctx.Err() を返します。
func (p *StoryboardPipeline) Run(ctx context.Context, script string, board *Board) error {
	if !board.acquire() {
		return ErrBoardBusy
	}
	defer board.release()

	if strings.TrimSpace(script) == "" {
		board.reject(domain.UserMessage(domain.ErrEmptyScript))
		return domain.ErrEmptyScript
	}

	board.begin()
	slog.InfoContext(ctx, "台本を解析しています", "script_length", len(script))

	drafts, err := p.parser.ParseScript(ctx, script)
	if err != nil {
		if ctx.Err() != nil {
			return p.cancel(ctx, board, ctx.Err())
		}
		parseErr := &domain.ScriptParseError{Err: err}
		slog.ErrorContext(ctx, "台本の解析に失敗しました", "error", err)
		board.abort(domain.UserMessage(parseErr))
		p.recorder.RunFinished(domain.RunFailed)
		return parseErr
	}

	scenes := domain.NewScenes(drafts)
	board.publish(scenes)
	slog.InfoContext(ctx, "シーン一覧を公開しました", "scenes", len(scenes))

	for _, scene := range scenes {
		if err := p.renderScene(ctx, board, scene); err != nil {
			return p.cancel(ctx, board, err)
		}
	}

	board.complete()
	p.recorder.RunFinished(domain.RunCompleted)
	slog.InfoContext(ctx, "ストーリーボードの生成が完了しました", "scenes", len(scenes))
	return nil
}

// renderScene は1シーン分の画像を生成して board に反映します。
// 画像生成の失敗はシーンに記録して nil を返し、中断すべき場合だけエラーを返します。
func (p *StoryboardPipeline) renderScene(ctx context.Context, board *Board, scene domain.Scene) error {
	logger := slog.With("scene_id", scene.ID)

	if err := p.requests.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.requests.Release(1)

	if err := p.pacer.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	// 間隔はシーンを board に反映した後から数える
	defer p.pacer.Mark()

	board.markLoading(scene.ID)
	logger.DebugContext(ctx, "画像を生成しています")

	img, err := p.images.GenerateImage(ctx, scene.Description)
	if err == nil && img == nil {
		err = errNoImage
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		imgErr := &domain.ImageGenerationError{SceneID: scene.ID, Err: err}
		rateLimited := domain.IsRateLimited(imgErr)
		logger.WarnContext(ctx, "シーンの画像生成に失敗しました", "error", err, "rate_limited", rateLimited)
		board.fail(scene.ID, domain.UserMessage(imgErr))
		p.recorder.SceneFailed(rateLimited)
		return nil
	}

	board.resolve(scene.ID, img)
	p.recorder.SceneGenerated()
	logger.InfoContext(ctx, "シーンの画像を生成しました", "bytes", len(img.Data))
	return nil
}

func (p *StoryboardPipeline) cancel(ctx context.Context, board *Board, cause error) error {
	slog.WarnContext(ctx, "ストーリーボードの生成を中断しました", "reason", cause)
	board.cancel(domain.UserMessage(context.Canceled))
	p.recorder.RunFinished(domain.RunCanceled)
	return fmt.Errorf("生成を中断しました: %w", cause)
}
