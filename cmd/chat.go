package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/chat"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/workflow"

	"github.com/spf13/cobra"
)

const (
	chatPrompt     = "> "
	chatCmdNew     = "/new"
	chatCmdExit    = "/exit"
	chatCmdHistory = "/history"
)

// chatCmd は、映像制作についてのチャットアシスタントを対話的に起動します。
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "映像制作や脚本についてチャットで相談します。",
	Long: `対話型のチャットアシスタントを起動します。
/new で新しい会話を始め、/history で会話ログを表示し、/exit で終了します。`,
	RunE: chatCommand,
}

func chatCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	manager, err := workflow.New(ctx, workflow.ManagerArgs{Config: appCfg.Storyboard})
	if err != nil {
		return err
	}
	cm, err := manager.BuildChatManager()
	if err != nil {
		return err
	}

	return chatLoop(ctx, cm, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop は1行を1ターンとして送信します。入力が尽きるか /exit で終了します。
func chatLoop(ctx context.Context, cm *chat.Manager, in io.Reader, out io.Writer) error {
	session, err := cm.NewSession(ctx)
	if err != nil {
		return err
	}
	printMessage(out, session.Messages()[0])

	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, chatPrompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case chatCmdExit:
			return nil
		case chatCmdNew:
			if session, err = cm.NewSession(ctx); err != nil {
				return err
			}
			printMessage(out, session.Messages()[0])
		case chatCmdHistory:
			for _, m := range session.Messages() {
				printMessage(out, m)
			}
		default:
			reply, err := session.Send(ctx, line)
			switch {
			case err != nil:
				fmt.Fprintf(out, "! %s\n", domain.UserMessage(err))
			case reply != nil:
				printMessage(out, *reply)
			}
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(out, chatPrompt)
	}
	return scanner.Err()
}

func printMessage(out io.Writer, m domain.ChatMessage) {
	fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
}
