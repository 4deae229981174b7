package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"music-chatter/internal/bot"
	"music-chatter/internal/config"
	"music-chatter/internal/llm"
	"music-chatter/internal/music"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// seqClient alternates criteria-extraction and reply responses, matching
// the two-phase call pattern of the completion bot.
type seqClient struct {
	calls int
}

func (c *seqClient) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	c.calls++
	if c.calls%2 == 1 {
		return llm.Response{Content: `{"genre": "Jazz"}`}, nil
	}
	return llm.Response{Content: `Try "Take Five" by The Dave Brubeck Quartet.`}, nil
}

type stubFactory struct {
	settings *config.Settings
	store    music.Store
}

func (f stubFactory) New(kind string) (bot.Bot, error) {
	if kind != bot.KindOpenAI && kind != "" {
		return nil, fmt.Errorf("unknown bot variant: %s", kind)
	}
	return bot.NewOpenAI(&seqClient{}, f.settings, f.store)
}

func (f stubFactory) Available() []string { return []string{bot.KindOpenAI} }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := music.NewJSONStore([]music.Record{
		{Title: "Take Five", Genre: "Jazz", Authors: "The Dave Brubeck Quartet", Country: "United States", Year: 1959},
	})
	settings := config.DefaultSettings()
	settings.Citation.FilterUncited = true
	return New(stubFactory{settings: settings, store: store}, nil, time.Hour)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status: %d", w.Code)
	}
}

func TestBotsEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/bots", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("bots status: %d", w.Code)
	}
	var out struct {
		Bots []string `json:"bots"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Bots) != 1 || out.Bots[0] != bot.KindOpenAI {
		t.Fatalf("unexpected bots: %v", out.Bots)
	}
}

func TestChatRoundTrip(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/chat", map[string]string{
		"session": "s1", "bot": bot.KindOpenAI, "message": "some jazz?",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat status: %d, body %s", w.Code, w.Body.String())
	}
	var out chatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Bot != "OpenAI" {
		t.Fatalf("unexpected bot name: %q", out.Bot)
	}
	if len(out.Citations) != 1 || out.Citations[0].Record.Title != "Take Five" {
		t.Fatalf("unexpected citations: %+v", out.Citations)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/chat", map[string]string{"session": "s1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty message, got %d", w.Code)
	}
}

func TestChatRejectsUnknownBot(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/chat", map[string]string{
		"session": "s1", "bot": "palm", "message": "hi",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown bot, got %d", w.Code)
	}
}

func TestHistoryAccumulatesAndResetClears(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 2; i++ {
		w := doJSON(t, s, http.MethodPost, "/api/chat", map[string]string{
			"session": "s1", "bot": bot.KindOpenAI, "message": "some jazz?",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("chat status: %d", w.Code)
		}
	}

	w := doJSON(t, s, http.MethodGet, "/api/history?session=s1&bot="+bot.KindOpenAI, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status: %d", w.Code)
	}
	var out struct {
		Turns []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"turns"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Turns) != 4 {
		t.Fatalf("expected 4 turns after 2 chats, got %d", len(out.Turns))
	}

	if w := doJSON(t, s, http.MethodPost, "/api/reset", map[string]string{"session": "s1"}); w.Code != http.StatusOK {
		t.Fatalf("reset status: %d", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/history?session=s1&bot="+bot.KindOpenAI, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Turns) != 0 {
		t.Fatalf("expected empty history after reset, got %d", len(out.Turns))
	}
}

func TestSessionsEvictIdle(t *testing.T) {
	store := music.NewJSONStore([]music.Record{{Title: "Imagine", Genre: "Rock", Year: 1971}})
	sessions := NewSessions(stubFactory{settings: config.DefaultSettings(), store: store}, time.Millisecond)

	if _, err := sessions.Get("old", bot.KindOpenAI); err != nil {
		t.Fatalf("get: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	sessions.evictIdle()
	if sessions.Len() != 0 {
		t.Fatalf("idle session should be evicted, have %d", sessions.Len())
	}
}
