package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shouni/go-storyboard-kit/internal/server"
	"github.com/shouni/go-storyboard-kit/pkg/metrics"
	"github.com/shouni/go-storyboard-kit/pkg/workflow"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

// serveCmd は、ブラウザ向けの HTTP/WebSocket サーバーを起動します。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "ブラウザ向けの HTTP/WebSocket サーバーを起動します。",
	Long: `ストーリーボード生成とチャットを JSON API として公開し、
生成の経過を WebSocket でスナップショットごとに配信します。`,
	RunE: serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "待ち受けアドレス（未指定なら SERVER_ADDR）。")
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	addr := appCfg.ServerAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	collector := metrics.NewCollector()
	manager, err := workflow.New(ctx, workflow.ManagerArgs{
		Config:    appCfg.Storyboard,
		Collector: collector,
	})
	if err != nil {
		return err
	}
	runner, err := manager.BuildStoryboardRunner()
	if err != nil {
		return err
	}
	chats, err := manager.BuildChatManager()
	if err != nil {
		return err
	}

	srv := server.New(runner, chats, server.Options{
		AllowedOrigins: appCfg.AllowedOrigins,
		RegistryTTL:    appCfg.RegistryTTL,
		Metrics:        collector.Handler(),
	})
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		slog.Info("HTTP サーバーを起動します", "addr", addr, "pacing_interval", appCfg.Storyboard.PacingInterval)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("HTTP サーバーを停止します")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("生成の停止がタイムアウトしました", "error", err)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
