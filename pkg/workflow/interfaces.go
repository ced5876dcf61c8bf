package workflow

import (
	"context"

	"github.com/shouni/go-storyboard-kit/pkg/chat"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// Workflow は、ストーリーボード制作の各工程を担当する Runner を構築するためのインターフェースです。
type Workflow interface {
	BuildStoryboardRunner() (StoryboardRunner, error)
	BuildScriptRunner() (ScriptRunner, error)
	BuildChatManager() (*chat.Manager, error)
	BuildPublishRunner() (PublishRunner, error)
}

// StoryboardRunner は、台本から1回分のストーリーボードを生成し、その経過を Board に書き込む責務を持ちます。
type StoryboardRunner interface {
	Run(ctx context.Context, script string, board *pipeline.Board) error
}

// ScriptRunner は、台本を解析してシーン記述の並びだけを返す責務を持ちます。
type ScriptRunner interface {
	Run(ctx context.Context, script string) ([]domain.SceneDraft, error)
}

// PublishRunner は、完成したストーリーボードを画像と Markdown として保存する責務を持ちます。
type PublishRunner interface {
	Publish(ctx context.Context, board domain.Storyboard, opts publisher.Options) (publisher.PublishResult, error)
}

// modelService は Model Service アダプターが提供する操作の集合です。
type modelService interface {
	pipeline.ScriptParser
	pipeline.ImageGenerator
	chat.Starter
}
