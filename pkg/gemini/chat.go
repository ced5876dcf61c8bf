package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/chat"

	"google.golang.org/genai"
)

var errEmptyReply = errors.New("チャットの応答が空です")

// Conversation は genai.Chat をラップしたセッションハンドルです。
// 会話履歴はサーバー側で保持されるため、過去のターンは再送しません。
type Conversation struct {
	sender messageSender
}

// CreateChatSession はシステム指示付きの新しい会話を開始します。
func (c *Client) CreateChatSession(ctx context.Context, systemInstruction string) (chat.Conversation, error) {
	chatCfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(systemInstruction) != "" {
		chatCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}}
	}

	sender, err := c.newChat(ctx, c.cfg.ChatModel, chatCfg)
	if err != nil {
		return nil, fmt.Errorf("チャットセッションの作成に失敗しました: %w", err)
	}
	return &Conversation{sender: sender}, nil
}

// SendTurn はユーザーの発話を送り、モデルの応答テキストを返します。
func (cv *Conversation) SendTurn(ctx context.Context, text string) (string, error) {
	resp, err := cv.sender.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", fmt.Errorf("メッセージの送信に失敗しました: %w", err)
	}
	if resp == nil {
		return "", errEmptyReply
	}
	reply := resp.Text()
	if reply == "" {
		return "", errEmptyReply
	}
	return reply, nil
}
