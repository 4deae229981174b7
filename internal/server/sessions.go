package server

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"music-chatter/internal/bot"
)

// BotFactory builds bot instances per variant. Satisfied by bot.Factory.
type BotFactory interface {
	New(kind string) (bot.Bot, error)
	Available() []string
}

type session struct {
	bots     map[string]bot.Bot
	lastSeen time.Time
}

// Sessions owns the per-conversation bot instances of the HTTP API. Each
// (session, variant) pair gets its own bot so histories never mix. Idle
// sessions are evicted by a periodic janitor.
type Sessions struct {
	mu       sync.Mutex
	factory  BotFactory
	sessions map[string]*session
	ttl      time.Duration
	cron     *cron.Cron
}

func NewSessions(factory BotFactory, ttl time.Duration) *Sessions {
	return &Sessions{
		factory:  factory,
		sessions: make(map[string]*session),
		ttl:      ttl,
		cron:     cron.New(cron.WithLocation(time.UTC)),
	}
}

// Get returns the bot for a session, creating session and bot on first use.
func (s *Sessions) Get(sessionID, kind string) (bot.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{bots: make(map[string]bot.Bot)}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = time.Now()

	if b, ok := sess.bots[kind]; ok {
		return b, nil
	}
	b, err := s.factory.New(kind)
	if err != nil {
		return nil, fmt.Errorf("create bot for session %q: %w", sessionID, err)
	}
	sess.bots[kind] = b
	return b, nil
}

// Reset drops a session entirely; the next request starts a fresh history.
func (s *Sessions) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) evictIdle() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			log.Printf("evicted idle session %q", id)
		}
	}
}

// StartJanitor schedules periodic eviction of idle sessions.
func (s *Sessions) StartJanitor() error {
	if s.ttl <= 0 {
		return nil
	}
	if _, err := s.cron.AddFunc("@every 5m", s.evictIdle); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// StopJanitor stops the eviction schedule and waits for a running pass.
func (s *Sessions) StopJanitor() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
