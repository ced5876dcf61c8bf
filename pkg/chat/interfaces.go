package chat

import "context"

// Conversation はサーバー側で会話履歴を保持するセッションハンドルです。
type Conversation interface {
	SendTurn(ctx context.Context, text string) (string, error)
}

// Starter は Model Service 上に新しい会話を作成します。
type Starter interface {
	CreateChatSession(ctx context.Context, systemInstruction string) (Conversation, error)
}

// Recorder はチャットターンの結果を記録します。
type Recorder interface {
	ChatTurn(ok bool)
}

type noopRecorder struct{}

func (noopRecorder) ChatTurn(bool) {}
