package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/pipeline"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/workflow"

	"github.com/spf13/cobra"
)

var pacingInterval time.Duration

// storyboardCmd は、台本の解析からシーン画像の生成、書き出しまでを実行します。
var storyboardCmd = &cobra.Command{
	Use:   "storyboard",
	Short: "台本からストーリーボード（シーン記述と画像）を生成します。",
	Long: `台本をシーンに分解し、シーンごとの画像を1枚ずつ順番に生成します。
1つのシーンの失敗は他のシーンに影響しません。結果は画像と storyboard.md として書き出します。`,
	RunE: storyboardCommand,
}

func init() {
	storyboardCmd.Flags().StringVarP(&opts.ScriptFile, "file", "f", "", "台本ファイルのパス（'-'で標準入力）。")
	storyboardCmd.Flags().BoolVar(&opts.UseExample, "example", false, "同梱のサンプル台本を使います。")
	storyboardCmd.Flags().StringVarP(&opts.OutputDir, "output", "o", config.DefaultOutputDir, "画像と Markdown の出力先ディレクトリ。")
	storyboardCmd.Flags().DurationVar(&pacingInterval, "interval", 0, "画像リクエストの開始間隔（未指定なら PACING_INTERVAL）。")
}

func storyboardCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	script, err := readScript(opts.ScriptFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg := appCfg.Storyboard
	if cmd.Flags().Changed("interval") {
		cfg.PacingInterval = pacingInterval
	}

	slog.Info("ストーリーボード生成を開始します",
		"script_model", cfg.ScriptModel,
		"image_model", cfg.ImageModel,
		"interval", cfg.PacingInterval,
		"output", opts.OutputDir)

	manager, err := workflow.New(ctx, workflow.ManagerArgs{Config: cfg})
	if err != nil {
		return err
	}
	runner, err := manager.BuildStoryboardRunner()
	if err != nil {
		return err
	}

	board := pipeline.NewBoard()
	stop := board.Watch(reportProgress)
	defer stop()

	runErr := runner.Run(ctx, script, board)
	final := board.Snapshot()

	if len(final.Scenes) > 0 {
		pub, err := manager.BuildPublishRunner()
		if err != nil {
			return err
		}
		// キャンセル後も生成済みのシーンは書き出す
		result, err := pub.Publish(context.WithoutCancel(ctx), final, publisher.Options{OutputDir: opts.OutputDir})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.MarkdownPath)
	}

	if runErr != nil {
		return errors.New(domain.UserMessage(runErr))
	}
	return nil
}

// reportProgress は状態遷移のうち利用者に意味のあるものだけを標準エラーに表示します。
func reportProgress(sb domain.Storyboard) {
	switch sb.Status {
	case domain.RunParsing:
		fmt.Fprintln(os.Stderr, "Parsing script...")
	case domain.RunGenerating:
		for _, s := range sb.Scenes {
			if s.IsLoading {
				fmt.Fprintf(os.Stderr, "[%d/%d] Generating: %s\n", s.ID+1, len(sb.Scenes), s.Description)
				return
			}
		}
	case domain.RunCompleted:
		done := 0
		for _, s := range sb.Scenes {
			if s.Status() == domain.SceneDone {
				done++
			}
		}
		fmt.Fprintf(os.Stderr, "Completed: %d/%d scenes generated\n", done, len(sb.Scenes))
	case domain.RunFailed, domain.RunCanceled:
		fmt.Fprintf(os.Stderr, "%s\n", sb.Error)
	}
}
