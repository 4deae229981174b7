package telegram

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"music-chatter/internal/auth"
	"music-chatter/internal/bot"
	"music-chatter/internal/config"
	"music-chatter/internal/llm"
	"music-chatter/internal/music"
)

type fakeSender struct{ sent []string }

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	sw := c.(tgbotapi.MessageConfig)
	f.sent = append(f.sent, sw.Text)
	return tgbotapi.Message{}, nil
}

// scriptedLLM alternates criteria and reply responses like the live
// two-phase flow.
type scriptedLLM struct{ calls int }

func (f *scriptedLLM) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	f.calls++
	if f.calls%2 == 1 {
		return llm.Response{Content: `{"genre": "Jazz"}`}, nil
	}
	return llm.Response{Content: `Try "Take Five".`}, nil
}

func testFactory() BotFactory {
	store := music.NewJSONStore([]music.Record{
		{Title: "Take Five", Genre: "Jazz", Authors: "The Dave Brubeck Quartet", Country: "United States", Year: 1959},
	})
	settings := config.DefaultSettings()
	settings.Citation.FilterUncited = true
	return func() (bot.Bot, error) {
		return bot.NewOpenAI(&scriptedLLM{}, settings, store)
	}
}

func incoming(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, UserName: "tester"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
}

func TestHandleIncomingMessageRepliesWithCitations(t *testing.T) {
	fs := &fakeSender{}
	b := &Bot{
		s:        fs,
		authSvc:  auth.New(nil),
		factory:  testFactory(),
		sessions: make(map[int64]bot.Bot),
	}

	b.handleIncomingMessage(context.Background(), incoming(42, "some jazz?"))

	if len(fs.sent) != 1 {
		t.Fatalf("expected 1 outgoing message, got %d", len(fs.sent))
	}
	if !strings.Contains(fs.sent[0], "Take Five") {
		t.Fatalf("reply missing recommendation: %q", fs.sent[0])
	}
	if !strings.Contains(fs.sent[0], "Sources:") {
		t.Fatalf("reply missing citations footer: %q", fs.sent[0])
	}
}

func TestUnauthorizedUserIsRejected(t *testing.T) {
	fs := &fakeSender{}
	b := &Bot{
		s:        fs,
		authSvc:  auth.New([]int64{1}),
		factory:  testFactory(),
		sessions: make(map[int64]bot.Bot),
	}

	b.handleIncomingMessage(context.Background(), incoming(99, "hello"))

	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0], "private") {
		t.Fatalf("expected rejection message, got %+v", fs.sent)
	}
	if len(b.sessions) != 0 {
		t.Fatalf("no session should be created for rejected users")
	}
}

func TestResetCallbackDropsSession(t *testing.T) {
	fs := &fakeSender{}
	b := &Bot{
		s:        fs,
		authSvc:  auth.New(nil),
		factory:  testFactory(),
		sessions: make(map[int64]bot.Bot),
	}

	b.handleIncomingMessage(context.Background(), incoming(42, "some jazz?"))
	if len(b.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(b.sessions))
	}

	b.handleCallback(&tgbotapi.CallbackQuery{
		Data:    resetCmd,
		From:    &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 42}},
	})
	if len(b.sessions) != 0 {
		t.Fatalf("session should be dropped on reset")
	}
}

func TestResetCallbackWithoutMessage(t *testing.T) {
	fs := &fakeSender{}
	b := &Bot{
		s:        fs,
		authSvc:  auth.New(nil),
		factory:  testFactory(),
		sessions: make(map[int64]bot.Bot),
	}

	b.handleIncomingMessage(context.Background(), incoming(42, "some jazz?"))

	// Callbacks on stale messages carry no message payload.
	b.handleCallback(&tgbotapi.CallbackQuery{
		Data: resetCmd,
		From: &tgbotapi.User{ID: 42},
	})
	if len(b.sessions) != 0 {
		t.Fatalf("session should be dropped on reset")
	}
	if got := fs.sent[len(fs.sent)-1]; !strings.Contains(got, "cleared") {
		t.Fatalf("expected reset confirmation, got %q", got)
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	fs := &fakeSender{}
	b := &Bot{
		s:        fs,
		authSvc:  auth.New(nil),
		factory:  testFactory(),
		sessions: make(map[int64]bot.Bot),
	}

	b.handleIncomingMessage(context.Background(), incoming(1, "some jazz?"))
	b.handleIncomingMessage(context.Background(), incoming(2, "some jazz?"))

	if len(b.sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(b.sessions))
	}
	if got := len(b.sessions[1].History()); got != 2 {
		t.Fatalf("user 1 history length: %d", got)
	}
}
