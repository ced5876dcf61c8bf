package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shouni/go-storyboard-kit/internal/registry"
	"github.com/shouni/go-storyboard-kit/pkg/chat"
	"github.com/shouni/go-storyboard-kit/pkg/pipeline"

	"github.com/gin-gonic/gin"
)

const defaultRegistryTTL = 30 * time.Minute

// StoryboardRunner は1回分のストーリーボード生成を実行します。
type StoryboardRunner interface {
	Run(ctx context.Context, script string, board *pipeline.Board) error
}

// SessionStarter は新しいチャットセッションを作成します。
type SessionStarter interface {
	NewSession(ctx context.Context) (*chat.Session, error)
}

// Options は Server の任意設定です。
type Options struct {
	AllowedOrigins []string
	RegistryTTL    time.Duration
	// Metrics が nil の場合 /metrics は公開しません。
	Metrics http.Handler
}

// Server はストーリーボード生成とチャットを HTTP/WebSocket で公開します。
type Server struct {
	runner   StoryboardRunner
	chats    SessionStarter
	opts     Options
	runs     *registry.Registry[*run]
	sessions *registry.Registry[*chat.Session]
	engine   *gin.Engine

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
}

// New は Server を生成し、ルーティングを登録します。
func New(runner StoryboardRunner, chats SessionStarter, opts Options) *Server {
	if opts.RegistryTTL <= 0 {
		opts.RegistryTTL = defaultRegistryTTL
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		runner:   runner,
		chats:    chats,
		opts:     opts,
		runs:     registry.New[*run](opts.RegistryTTL),
		sessions: registry.New[*chat.Session](opts.RegistryTTL),
		baseCtx:  ctx,
		stop:     cancel,
	}
	s.engine = s.setupRouter()
	return s
}

// Handler はルーティング済みの http.Handler を返します。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Shutdown は実行中のすべての生成をキャンセルし、終了を待ちます。
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	s.runs.Flush()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("すべての生成を停止しました")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
