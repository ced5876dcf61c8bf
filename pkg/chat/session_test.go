package chat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

type fakeConversation struct {
	reply string
	err   error
	sent  []string
}

func (f *fakeConversation) SendTurn(_ context.Context, text string) (string, error) {
	f.sent = append(f.sent, text)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeStarter struct {
	conv       *fakeConversation
	err        error
	gotSystem  string
	startCount int
}

func (f *fakeStarter) CreateChatSession(_ context.Context, systemInstruction string) (Conversation, error) {
	f.startCount++
	f.gotSystem = systemInstruction
	if f.err != nil {
		return nil, f.err
	}
	return f.conv, nil
}

type countingRecorder struct{ ok, failed int }

func (r *countingRecorder) ChatTurn(ok bool) {
	if ok {
		r.ok++
		return
	}
	r.failed++
}

func newTestSession(t *testing.T, conv *fakeConversation, rec Recorder) *Session {
	t.Helper()
	m := NewManager(&fakeStarter{conv: conv}, "system", "Hello!", WithRecorder(rec))
	s, err := m.NewSession(context.Background())
	if err != nil {
		t.Fatalf("セッションの作成に失敗しました: %v", err)
	}
	return s
}

func TestManager_NewSession(t *testing.T) {
	t.Run("挨拶メッセージが1件だけ入っていること", func(t *testing.T) {
		starter := &fakeStarter{conv: &fakeConversation{}}
		m := NewManager(starter, "be helpful", "Hello!")

		s, err := m.NewSession(context.Background())
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		msgs := s.Messages()
		if len(msgs) != 1 {
			t.Fatalf("ログ件数 期待 1, 実際 %d", len(msgs))
		}
		if msgs[0].Role != domain.RoleModel || msgs[0].Content != "Hello!" {
			t.Errorf("挨拶が違います: %+v", msgs[0])
		}
		if starter.gotSystem != "be helpful" {
			t.Errorf("システム指示が渡されていません: %q", starter.gotSystem)
		}
		if len(starter.conv.sent) != 0 {
			t.Error("挨拶が Model Service に送信されています")
		}
	})

	t.Run("開始に失敗したらエラーを返すこと", func(t *testing.T) {
		m := NewManager(&fakeStarter{err: errors.New("down")}, "", "Hello!")
		if _, err := m.NewSession(context.Background()); err == nil {
			t.Error("エラーが返りませんでした")
		}
	})

	t.Run("新しいセッションはログをリセットすること", func(t *testing.T) {
		starter := &fakeStarter{conv: &fakeConversation{reply: "ok"}}
		m := NewManager(starter, "", "Hello!")
		first, _ := m.NewSession(context.Background())
		_, _ = first.Send(context.Background(), "hi")

		second, _ := m.NewSession(context.Background())
		if got := len(second.Messages()); got != 1 {
			t.Errorf("新しいセッションのログ件数 期待 1, 実際 %d", got)
		}
		if starter.startCount != 2 {
			t.Errorf("会話の作成回数 期待 2, 実際 %d", starter.startCount)
		}
	})
}

func TestSession_Send(t *testing.T) {
	t.Run("成功時はユーザーとモデルのターンが追加されること", func(t *testing.T) {
		conv := &fakeConversation{reply: "Try a dolly zoom."}
		rec := &countingRecorder{}
		s := newTestSession(t, conv, rec)

		reply, err := s.Send(context.Background(), "How to show vertigo?")
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if reply == nil || reply.Content != "Try a dolly zoom." {
			t.Fatalf("応答が違います: %+v", reply)
		}

		msgs := s.Messages()
		if len(msgs) != 3 {
			t.Fatalf("ログ件数 期待 3, 実際 %d", len(msgs))
		}
		if msgs[1].Role != domain.RoleUser || msgs[2].Role != domain.RoleModel {
			t.Errorf("ロールの並びが違います: %+v", msgs)
		}
		if rec.ok != 1 {
			t.Errorf("成功ターンが記録されていません: %+v", rec)
		}
	})

	t.Run("空白のみの入力は何もしないこと", func(t *testing.T) {
		conv := &fakeConversation{reply: "x"}
		s := newTestSession(t, conv, nil)

		for _, in := range []string{"", "   ", "\n\t"} {
			reply, err := s.Send(context.Background(), in)
			if reply != nil || err != nil {
				t.Errorf("入力 %q で no-op になりません: %v, %v", in, reply, err)
			}
		}
		if got := len(s.Messages()); got != 1 {
			t.Errorf("ログ件数が変化しました: %d", got)
		}
		if len(conv.sent) != 0 {
			t.Error("空の入力が送信されました")
		}
	})

	t.Run("セッションがない場合は何もしないこと", func(t *testing.T) {
		var s *Session
		reply, err := s.Send(context.Background(), "hello")
		if reply != nil || err != nil {
			t.Errorf("nil セッションで no-op になりません: %v, %v", reply, err)
		}
	})

	t.Run("失敗時はユーザーの発話だけが残ること", func(t *testing.T) {
		conv := &fakeConversation{err: errors.New("503")}
		rec := &countingRecorder{}
		s := newTestSession(t, conv, rec)

		reply, err := s.Send(context.Background(), "Are you there?")
		if reply != nil {
			t.Errorf("応答が返っています: %+v", reply)
		}
		var turnErr *domain.ChatTurnError
		if !errors.As(err, &turnErr) {
			t.Fatalf("ChatTurnError を期待しましたが %v でした", err)
		}

		msgs := s.Messages()
		if len(msgs) != 2 || msgs[1].Role != domain.RoleUser || msgs[1].Content != "Are you there?" {
			t.Errorf("ログが期待と違います: %+v", msgs)
		}
		if s.LastError() != domain.MsgChatTurn {
			t.Errorf("一時エラーが違います: %q", s.LastError())
		}
		if rec.failed != 1 {
			t.Errorf("失敗ターンが記録されていません: %+v", rec)
		}

		conv.err = nil
		conv.reply = "Yes."
		if _, err := s.Send(context.Background(), "Now?"); err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if s.LastError() != "" {
			t.Errorf("次の送信で一時エラーが消えていません: %q", s.LastError())
		}
	})
}

func TestSession_Logging(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	conv := &fakeConversation{err: errors.New("503")}
	s := newTestSession(t, conv, nil)
	if _, err := s.Send(context.Background(), "hello"); err == nil {
		t.Fatal("エラーが返りませんでした")
	}

	out := buf.String()
	for _, want := range []string{"チャットセッションを作成しました", "チャットの応答に失敗しました", "session_id=" + s.ID()} {
		if !strings.Contains(out, want) {
			t.Errorf("ログに %q が含まれていません:\n%s", want, out)
		}
	}
}
