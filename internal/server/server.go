// Package server exposes the bots over a small HTTP API consumed by GUI
// front ends.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"music-chatter/internal/citation"
	"music-chatter/internal/history"
	"music-chatter/internal/transcript"
)

const defaultSession = "default"

type Server struct {
	sessions *Sessions
	recorder transcript.Recorder
	engine   *gin.Engine
}

type chatRequest struct {
	Session string `json:"session"`
	Bot     string `json:"bot"`
	Message string `json:"message"`
}

type chatResponse struct {
	Bot       string              `json:"bot"`
	Message   string              `json:"message"`
	Citations []citation.Citation `json:"citations"`
}

// New wires the routes. The recorder may be nil when no transcript path is
// configured.
func New(factory BotFactory, recorder transcript.Recorder, sessionTTL time.Duration) *Server {
	s := &Server{
		sessions: NewSessions(factory, sessionTTL),
		recorder: recorder,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/bots", s.handleBots)
	r.POST("/api/chat", s.handleChat)
	r.GET("/api/history", s.handleHistory)
	r.POST("/api/reset", s.handleReset)

	s.engine = r
	return s
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.engine }

// Run starts the janitor and blocks serving HTTP.
func (s *Server) Run(addr string) error {
	if err := s.sessions.StartJanitor(); err != nil {
		return err
	}
	defer s.sessions.StopJanitor()
	return s.engine.Run(addr)
}

func (s *Server) handleBots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bots": s.sessions.factory.Available()})
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message required"})
		return
	}
	if req.Session == "" {
		req.Session = defaultSession
	}

	b, err := s.sessions.Get(req.Session, req.Bot)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply := b.Chat(c.Request.Context(), req.Message)
	if reply.Err != nil {
		log.Printf("[%s] turn failed for session %q: %v", b.Name(), req.Session, reply.Err)
	}

	if s.recorder != nil {
		event := transcript.Event{
			Timestamp:   time.Now(),
			Session:     req.Session,
			Bot:         b.Name(),
			UserMessage: req.Message,
			BotMessage:  reply.Message,
			Citations:   reply.Citations,
		}
		if err := s.recorder.Append(event); err != nil {
			log.Printf("failed to record transcript event: %v", err)
		}
	}

	c.JSON(http.StatusOK, chatResponse{
		Bot:       b.Name(),
		Message:   reply.Message,
		Citations: reply.Citations,
	})
}

func (s *Server) handleHistory(c *gin.Context) {
	sessionID := c.DefaultQuery("session", defaultSession)
	kind := c.Query("bot")

	b, err := s.sessions.Get(sessionID, kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	turns := b.History()
	if turns == nil {
		turns = []history.Turn{}
	}
	c.JSON(http.StatusOK, gin.H{"bot": b.Name(), "turns": turns})
}

func (s *Server) handleReset(c *gin.Context) {
	var req struct {
		Session string `json:"session"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Session == "" {
		req.Session = defaultSession
	}
	s.sessions.Reset(req.Session)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
