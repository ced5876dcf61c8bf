package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/chat"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// BuildStoryboardRunner は、ストーリーボード生成を担当する Runner を返します。
// 返されるパイプラインは Manager 内で共有され、ペーシングも全実行で共通です。
func (m *Manager) BuildStoryboardRunner() (StoryboardRunner, error) {
	return m.pipeline, nil
}

// BuildScriptRunner は、台本解析のみを担当する Runner を作成します。
func (m *Manager) BuildScriptRunner() (ScriptRunner, error) {
	return &scriptRunner{parser: m.service}, nil
}

// BuildChatManager は、チャットセッションを作成する Manager を作成します。
func (m *Manager) BuildChatManager() (*chat.Manager, error) {
	var opts []chat.Option
	if m.collector != nil {
		opts = append(opts, chat.WithRecorder(m.collector))
	}
	return chat.NewManager(m.service, m.cfg.SystemInstruction, m.cfg.Greeting, opts...), nil
}

// BuildPublishRunner は、成果物のパブリッシュを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	return publisher.NewStoryboardPublisher(m.writer), nil
}

type scriptRunner struct {
	parser pipeline.ScriptParser
}

// Run は台本を検証してから解析します。画像は生成しません。
func (r *scriptRunner) Run(ctx context.Context, script string) ([]domain.SceneDraft, error) {
	if strings.TrimSpace(script) == "" {
		return nil, domain.ErrEmptyScript
	}

	drafts, err := r.parser.ParseScript(ctx, script)
	if err != nil {
		return nil, &domain.ScriptParseError{Err: err}
	}
	slog.InfoContext(ctx, "台本の解析が完了しました", "scenes", len(drafts))
	return drafts, nil
}
