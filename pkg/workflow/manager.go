package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-storyboard-kit/pkg/chat"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/gemini"
	"github.com/shouni/go-storyboard-kit/pkg/metrics"
	"github.com/shouni/go-storyboard-kit/pkg/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// ManagerArgs は Manager の初期化に使う引数です。
type ManagerArgs struct {
	Config config.Config
	// Pacer が nil の場合は Config.PacingInterval から生成します。
	Pacer pipeline.Pacer
	// Collector が nil の場合は指標を記録しません。
	Collector *metrics.Collector
	// Writer が nil の場合はローカルファイルシステムに書き出します。
	Writer publisher.OutputWriter
}

// Manager は、プロセス全体で1つの Model Service クライアントを共有しながら
// ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg       config.Config
	service   modelService
	collector *metrics.Collector
	writer    publisher.OutputWriter
	pipeline  *pipeline.StoryboardPipeline
}

// New は、設定を基に Gemini クライアントを1度だけ初期化して Manager を生成します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	client, err := gemini.NewClient(ctx, args.Config)
	if err != nil {
		return nil, err
	}
	return newManager(args, client)
}

func newManager(args ManagerArgs, service modelService) (*Manager, error) {
	if service == nil {
		return nil, fmt.Errorf("modelService は必須です")
	}

	pacer := args.Pacer
	if pacer == nil {
		pacer = NewPacer(args.Config)
	}
	writer := args.Writer
	if writer == nil {
		writer = publisher.NewLocalWriter()
	}

	var opts []pipeline.Option
	if args.Collector != nil {
		opts = append(opts, pipeline.WithRecorder(args.Collector))
	}

	return &Manager{
		cfg:       args.Config,
		service:   service,
		collector: args.Collector,
		writer:    writer,
		pipeline:  pipeline.NewStoryboardPipeline(service, service, pacer, opts...),
	}, nil
}

// NewPacer はシーンの解決から次の画像リクエストまで PacingInterval を空ける Pacer を返します。
// 最初のリクエストは待たずに開始されます。
func NewPacer(cfg config.Config) *pipeline.IntervalPacer {
	return pipeline.NewIntervalPacer(cfg.PacingInterval)
}

// Config は Manager の設定を返します。
func (m *Manager) Config() config.Config {
	return m.cfg
}
