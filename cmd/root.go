package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-storyboard-kit/internal/config"

	"github.com/spf13/cobra"
)

const appName = "storyboard-kit"

var (
	opts   config.GenerateOptions
	appCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "台本からストーリーボードを生成し、映像制作の相談に答える CLI です。",
	Long: `Gemini API を使って台本をシーンに分解し、シーンごとの画像を順番に生成します。
映像制作や脚本についてのチャットアシスタントと、ブラウザ向けの HTTP サーバーも提供します。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義します。
func addAppFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出力します。")
}

// preRunAppE は、コマンド実行前に設定の読み込みと必須チェックを行います。
// API キーがなければどのサブコマンドも起動しません。
func preRunAppE(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appCfg = cfg
	return nil
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(storyboardCmd, scriptCmd, chatCmd, serveCmd)
}

// Execute は、アプリケーションのメインエントリポイントです。
// SIGINT/SIGTERM で実行中の生成をキャンセルします。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("コマンドの実行に失敗しました", "error", err)
		stop()
		os.Exit(1)
	}
}
