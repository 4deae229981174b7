// Package telegram runs the recommendation bots behind a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"music-chatter/internal/auth"
	"music-chatter/internal/bot"
	"music-chatter/internal/citation"
	"music-chatter/internal/transcript"
)

const resetCmd = "reset_ctx"

// BotFactory builds one chat bot per Telegram user. Satisfied by
// bot.Factory via a kind-binding closure; see NewFromFactory.
type BotFactory func() (bot.Bot, error)

type Bot struct {
	api      *tgbotapi.BotAPI
	s        sender
	authSvc  *auth.Service
	factory  BotFactory
	recorder transcript.Recorder

	mu       sync.Mutex
	sessions map[int64]bot.Bot
}

func New(botToken string, authSvc *auth.Service, factory BotFactory, recorder transcript.Recorder) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:      api,
		s:        botAPISender{api: api},
		authSvc:  authSvc,
		factory:  factory,
		recorder: recorder,
		sessions: make(map[int64]bot.Bot),
	}, nil
}

// NewFromFactory binds a variant of the bot factory for per-user bots.
func NewFromFactory(f *bot.Factory, kind string) BotFactory {
	return func() (bot.Bot, error) { return f.New(kind) }
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				b.handleCallback(update.CallbackQuery)
				continue
			}
		}
	}
}

// userBot returns the per-user bot instance, creating it on first contact.
func (b *Bot) userBot(userID int64) (bot.Bot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ub, ok := b.sessions[userID]; ok {
		return ub, nil
	}
	ub, err := b.factory()
	if err != nil {
		return nil, fmt.Errorf("create bot for user %d: %w", userID, err)
	}
	b.sessions[userID] = ub
	return ub, nil
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !b.authSvc.IsAllowed(msg.From.ID) {
		log.Printf("unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		b.sendMessage(msg.Chat.ID, "Sorry, this bot is private.")
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	log.Printf("incoming message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	ub, err := b.userBot(msg.From.ID)
	if err != nil {
		log.Printf("failed to create user bot: %v", err)
		b.sendMessage(msg.Chat.ID, "Sorry, something went wrong.")
		return
	}

	reply := ub.Chat(ctx, msg.Text)
	if reply.Err != nil {
		log.Printf("[%s] turn failed for user %d: %v", ub.Name(), msg.From.ID, reply.Err)
	}

	if b.recorder != nil {
		event := transcript.Event{
			Timestamp:   time.Now(),
			Session:     fmt.Sprintf("telegram:%d", msg.From.ID),
			Bot:         ub.Name(),
			UserMessage: msg.Text,
			BotMessage:  reply.Message,
			Citations:   reply.Citations,
		}
		if err := b.recorder.Append(event); err != nil {
			log.Printf("failed to record transcript event: %v", err)
		}
	}

	final := reply.Message
	if footer := citationsFooter(reply.Citations); footer != "" {
		final += "\n\n" + footer
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Reset context", resetCmd),
		),
	)

	msgOut := tgbotapi.NewMessage(msg.Chat.ID, final)
	msgOut.ReplyMarkup = kb
	if _, err := b.s.Send(msgOut); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Data == resetCmd {
		b.mu.Lock()
		delete(b.sessions, cb.From.ID)
		b.mu.Unlock()
		// Callbacks on messages older than 48h arrive without the message.
		chatID := cb.From.ID
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
		}
		edit := tgbotapi.NewMessage(chatID, "Context cleared.")
		if _, err := b.s.Send(edit); err != nil {
			log.Printf("failed to send reset confirmation: %v", err)
		}
		return
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

// citationsFooter renders the records backing the reply, one line each.
func citationsFooter(citations []citation.Citation) string {
	if len(citations) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Sources:")
	for _, c := range citations {
		fmt.Fprintf(&sb, "\n• %s — %s (%s, %d)", c.Record.Title, c.Record.Authors, c.Record.Genre, c.Record.Year)
	}
	return sb.String()
}
