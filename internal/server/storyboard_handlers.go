package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// run は Server が保持する1回分の生成です。
type run struct {
	id     string
	board  *pipeline.Board
	cancel context.CancelFunc
	done   chan struct{}
}

// Close は生成をキャンセルします。レジストリからの削除や期限切れで呼ばれます。
func (r *run) Close() { r.cancel() }

type createStoryboardRequest struct {
	Script string `json:"script"`
}

type storyboardResponse struct {
	ID string `json:"id"`
	domain.Storyboard
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}

func (s *Server) createStoryboard(c *gin.Context) {
	var req createStoryboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Script) == "" {
		c.JSON(http.StatusBadRequest, errorResponse(domain.UserMessage(domain.ErrEmptyScript)))
		return
	}

	r := s.startRun(req.Script)
	c.JSON(http.StatusAccepted, storyboardResponse{ID: r.id, Storyboard: r.board.Snapshot()})
}

// startRun は生成をリクエストから切り離したゴルーチンで開始します。
func (s *Server) startRun(script string) *run {
	ctx, cancel := context.WithCancel(s.baseCtx)
	r := &run{
		id:     uuid.NewString(),
		board:  pipeline.NewBoard(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.runs.Put(r.id, r)
	// 進行中の実行は状態が遷移するたびに有効期限を延長し、期限切れでキャンセルされないようにする
	stopTouch := r.board.Watch(func(domain.Storyboard) { s.runs.Touch(r.id) })

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(r.done)
		defer cancel()
		defer stopTouch()

		logger := slog.With("run_id", r.id)
		logger.Info("ストーリーボードの生成を開始します")
		if err := s.runner.Run(ctx, script, r.board); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("ストーリーボードの生成がキャンセルされました")
				return
			}
			logger.Warn("ストーリーボードの生成に失敗しました", "error", err)
		}
	}()
	return r
}

func (s *Server) lookupRun(c *gin.Context) (*run, bool) {
	r, ok := s.runs.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("storyboard not found"))
		return nil, false
	}
	return r, true
}

func (s *Server) getStoryboard(c *gin.Context) {
	r, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, storyboardResponse{ID: r.id, Storyboard: r.board.Snapshot()})
}

func (s *Server) cancelStoryboard(c *gin.Context) {
	r, ok := s.lookupRun(c)
	if !ok {
		return
	}
	s.runs.Delete(r.id)
	c.Status(http.StatusNoContent)
}
