package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())
	router.Use(cors.New(s.corsConfig()))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	if s.opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(s.opts.Metrics))
	}

	api := router.Group("/api")
	{
		boards := api.Group("/storyboards")
		boards.POST("", s.createStoryboard)
		boards.GET("/:id", s.getStoryboard)
		boards.GET("/:id/stream", s.streamStoryboard)
		boards.DELETE("/:id", s.cancelStoryboard)

		sessions := api.Group("/chat/sessions")
		sessions.POST("", s.createChatSession)
		sessions.GET("/:id", s.getChatSession)
		sessions.POST("/:id/messages", s.sendChatMessage)
	}

	return router
}

func (s *Server) corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(s.opts.AllowedOrigins) == 0 || slices.Contains(s.opts.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.opts.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}
