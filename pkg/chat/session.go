package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// Session は1つの会話と、その表示用ログを保持します。
// ログへの書き込みは Send だけが行い、読み取り側はコピーを受け取ります。
type Session struct {
	id        string
	createdAt time.Time
	conv      Conversation
	recorder  Recorder

	turnMu sync.Mutex // 1セッションにつき送信中のターンは1つ

	mu       sync.RWMutex
	messages []domain.ChatMessage
	lastErr  string
}

// ID はセッション識別子を返します。
func (s *Session) ID() string { return s.id }

// CreatedAt はセッションの作成時刻を返します。
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Messages は会話ログのコピーを返します。
func (s *Session) Messages() []domain.ChatMessage {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastError は直近のターンが失敗した場合の一時的なメッセージを返します。
// ログには含まれず、次の送信で消えます。
func (s *Session) LastError() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Send はユーザーの発話をログに追加してから応答を要求します。
// セッションがない場合や空白のみの入力は何もせず nil, nil を返します。
// 失敗時はユーザーの発話をログに残したまま *domain.ChatTurnError を返します。
func (s *Session) Send(ctx context.Context, text string) (*domain.ChatMessage, error) {
	if s == nil || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.mu.Lock()
	s.messages = append(s.messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})
	s.lastErr = ""
	s.mu.Unlock()

	reply, err := s.conv.SendTurn(ctx, text)
	if err != nil {
		turnErr := &domain.ChatTurnError{Err: err}
		slog.ErrorContext(ctx, "チャットの応答に失敗しました", "session_id", s.id, "error", err)

		s.mu.Lock()
		s.lastErr = domain.UserMessage(turnErr)
		s.mu.Unlock()
		s.recorder.ChatTurn(false)
		return nil, turnErr
	}

	msg := domain.ChatMessage{Role: domain.RoleModel, Content: reply}
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	s.recorder.ChatTurn(true)
	return &msg, nil
}
