package server

import (
	"log/slog"
	"net/http"

	"github.com/shouni/go-storyboard-kit/pkg/chat"
	"github.com/shouni/go-storyboard-kit/pkg/domain"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	Text string `json:"text"`
}

type chatSessionResponse struct {
	ID       string               `json:"id"`
	Messages []domain.ChatMessage `json:"messages"`
	Reply    *domain.ChatMessage  `json:"reply,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func newChatSessionResponse(s *chat.Session) chatSessionResponse {
	return chatSessionResponse{
		ID:       s.ID(),
		Messages: s.Messages(),
		Error:    s.LastError(),
	}
}

func (s *Server) createChatSession(c *gin.Context) {
	session, err := s.chats.NewSession(c.Request.Context())
	if err != nil {
		slog.Error("チャットセッションの作成に失敗しました", "error", err)
		c.JSON(http.StatusBadGateway, errorResponse(domain.UserMessage(&domain.ChatTurnError{Err: err})))
		return
	}
	s.sessions.Put(session.ID(), session)
	c.JSON(http.StatusCreated, newChatSessionResponse(session))
}

func (s *Server) lookupSession(c *gin.Context) (*chat.Session, bool) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("chat session not found"))
		return nil, false
	}
	return session, true
}

func (s *Server) getChatSession(c *gin.Context) {
	session, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newChatSessionResponse(session))
}

func (s *Server) sendChatMessage(c *gin.Context) {
	session, ok := s.lookupSession(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	reply, err := session.Send(c.Request.Context(), req.Text)
	resp := newChatSessionResponse(session)
	if err != nil {
		resp.Error = domain.UserMessage(err)
		c.JSON(http.StatusBadGateway, resp)
		return
	}
	resp.Reply = reply
	c.JSON(http.StatusOK, resp)
}
