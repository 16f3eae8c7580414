package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sales_view/internal/salesview"
)

const sessionCookie = "ventas_sesion"

// session is one visitor's page and the controller bound to it.
type session struct {
	id         string
	page       *Page
	controller *salesview.Controller
	lastSeen   time.Time
}

// Sessions keeps a page per visitor, keyed by the session cookie. Sessions
// idle for longer than the configured duration are dropped by Sweep.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]*session

	api    salesview.SalesAPI
	idle   time.Duration
	logger *zap.Logger
	opts   []salesview.Option
	now    func() time.Time
}

// NewSessions creates an empty session store. Every new session gets its own
// page, notice board and controller built from api and opts.
func NewSessions(api salesview.SalesAPI, idle time.Duration, logger *zap.Logger, opts ...salesview.Option) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Sessions{
		byID:   make(map[string]*session),
		api:    api,
		idle:   idle,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// get returns the live session for id. An empty, unknown or expired id starts
// a new session; created reports that case.
func (s *Sessions) get(id string) (sess *session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.byID[id]; ok && now.Sub(existing.lastSeen) < s.idle {
		existing.lastSeen = now
		return existing, false
	}
	delete(s.byID, id)

	page := NewPage(salesview.NewNoticeBoard(salesview.NoticeTTL))
	sess = &session{
		id:         uuid.NewString(),
		page:       page,
		controller: salesview.New(s.api, page, s.logger, s.opts...),
		lastSeen:   now,
	}
	s.byID[sess.id] = sess
	return sess, true
}

// Len returns the number of sessions held.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Sweep drops the sessions idle for longer than the idle duration.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for id, sess := range s.byID {
		if now.Sub(sess.lastSeen) >= s.idle {
			delete(s.byID, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("idle sessions dropped", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}
