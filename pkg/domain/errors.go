package domain

import (
	"context"
	"errors"
	"fmt"
)

// プレゼンテーション層に表示するメッセージです。
const (
	MsgEmptyScript     = "Script cannot be empty."
	MsgScriptParse     = "Failed to parse the script. Please check the script format and try again."
	MsgImageGeneration = "Failed to generate the storyboard image."
	MsgRateLimit       = "Rate limit exceeded. Your free quota might be exhausted. Please check your plan and billing details."
	MsgChatTurn        = "Failed to get a response from the chatbot."
	MsgCanceled        = "Generation was canceled."
	MsgUnknown         = "An unknown error occurred."
)

// ErrEmptyScript は空（空白のみを含む）の台本が渡されたことを示す検証エラーです。
var ErrEmptyScript = errors.New("台本が空です")

// ScriptParseError は台本解析段階の失敗です。実行全体を中断させます。
type ScriptParseError struct {
	Err error
}

func (e *ScriptParseError) Error() string {
	return fmt.Sprintf("台本の解析に失敗しました: %v", e.Err)
}

func (e *ScriptParseError) Unwrap() error { return e.Err }

// ImageGenerationError は1シーン分の画像生成の失敗です。他のシーンには波及しません。
type ImageGenerationError struct {
	SceneID int
	Err     error
}

func (e *ImageGenerationError) Error() string {
	return fmt.Sprintf("シーン %d の画像生成に失敗しました: %v", e.SceneID, e.Err)
}

func (e *ImageGenerationError) Unwrap() error { return e.Err }

// RateLimitError はレート制限やクォータ枯渇による失敗を表します。
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("レート制限に達しました: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// ChatTurnError はチャット1ターン分の失敗です。会話ログには残りません。
type ChatTurnError struct {
	Err error
}

func (e *ChatTurnError) Error() string {
	return fmt.Sprintf("チャット応答の取得に失敗しました: %v", e.Err)
}

func (e *ChatTurnError) Unwrap() error { return e.Err }

// IsRateLimited は err の連鎖に RateLimitError が含まれるかを返します。
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// UserMessage は任意のエラーを利用者向けの文字列に変換します。
// 構造化されたエラーはこの境界を越えてプレゼンテーション層へ渡りません。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		parseErr *ScriptParseError
		imageErr *ImageGenerationError
		chatErr  *ChatTurnError
	)
	switch {
	case errors.Is(err, ErrEmptyScript):
		return MsgEmptyScript
	case IsRateLimited(err):
		return MsgRateLimit
	case errors.As(err, &parseErr):
		return MsgScriptParse
	case errors.As(err, &imageErr):
		return MsgImageGeneration
	case errors.As(err, &chatErr):
		return MsgChatTurn
	case errors.Is(err, context.Canceled):
		return MsgCanceled
	default:
		return MsgUnknown
	}
}
