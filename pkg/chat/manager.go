package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/domain"

	"github.com/google/uuid"
)

// Manager は会話セッションを作成します。
type Manager struct {
	starter           Starter
	systemInstruction string
	greeting          string
	recorder          Recorder
}

// Option は Manager の任意設定です。
type Option func(*Manager)

// WithRecorder はターン結果の記録先を設定します。
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// NewManager は Manager を生成します。
func NewManager(starter Starter, systemInstruction, greeting string, opts ...Option) *Manager {
	m := &Manager{
		starter:           starter,
		systemInstruction: systemInstruction,
		greeting:          greeting,
		recorder:          noopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewSession は新しい会話を開始し、ログを合成の挨拶メッセージ1件で初期化します。
// 挨拶は Model Service には送信されません。
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	conv, err := m.starter.CreateChatSession(ctx, m.systemInstruction)
	if err != nil {
		return nil, fmt.Errorf("会話セッションの開始に失敗しました: %w", err)
	}

	s := &Session{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		conv:      conv,
		recorder:  m.recorder,
		messages:  []domain.ChatMessage{{Role: domain.RoleModel, Content: m.greeting}},
	}
	slog.InfoContext(ctx, "チャットセッションを作成しました", "session_id", s.id)
	return s, nil
}
