package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/workflow"

	"github.com/spf13/cobra"
)

// scriptCmd は、台本の解析（JSON出力）のみを実行します。
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "台本をシーン記述の一覧（JSON）に変換します。",
	Long: `台本を解析し、シーン記述の配列を JSON 形式で標準出力に書き出します。
画像生成は行いません。`,
	RunE: scriptCommand,
}

func init() {
	scriptCmd.Flags().StringVarP(&opts.ScriptFile, "file", "f", "", "台本ファイルのパス（'-'で標準入力）。")
	scriptCmd.Flags().BoolVar(&opts.UseExample, "example", false, "同梱のサンプル台本を使います。")
}

func scriptCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	script, err := readScript(opts.ScriptFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	slog.Info("台本解析モードを起動します", "script_model", appCfg.Storyboard.ScriptModel)

	manager, err := workflow.New(ctx, workflow.ManagerArgs{Config: appCfg.Storyboard})
	if err != nil {
		return err
	}
	runner, err := manager.BuildScriptRunner()
	if err != nil {
		return err
	}

	drafts, err := runner.Run(ctx, script)
	if err != nil {
		slog.Debug("台本の解析に失敗しました", "error", err)
		return fmt.Errorf("%s", domain.UserMessage(err))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(drafts)
}
