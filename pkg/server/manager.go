package server

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	rerrors "github.com/vango-dev/reflow/internal/errors"
)

// SessionManager tracks sessions from the page request that renders them
// to the end of their WebSocket.
//
// A session starts pending: it has been rendered and its page sent, but
// the browser has not connected yet. Claim moves it to live exactly once;
// pending sessions not claimed within the handshake timeout are closed.
type SessionManager struct {
	mu      sync.Mutex
	pending map[string]*Session
	live    map[string]*Session

	config      *SessionConfig
	maxSessions int
	metrics     *Metrics

	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	totalExpired atomic.Uint64
	peak         int

	cleanupInterval time.Duration
	done            chan struct{}
	cleanupDone     chan struct{}
	shutdownOnce    sync.Once

	logger *slog.Logger
}

// ManagerStats is a snapshot of session counts.
type ManagerStats struct {
	Pending      int
	Live         int
	Peak         int
	TotalCreated uint64
	TotalClosed  uint64
	TotalExpired uint64
}

// NewSessionManager creates a SessionManager and starts its cleanup loop.
// maxSessions 0 means no limit.
func NewSessionManager(config *SessionConfig, maxSessions int, metrics *Metrics, logger *slog.Logger) *SessionManager {
	if config == nil {
		config = DefaultSessionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	interval := config.HandshakeTimeout / 2
	if interval <= 0 || interval > 30*time.Second {
		interval = 30 * time.Second
	}

	sm := &SessionManager{
		pending:         make(map[string]*Session),
		live:            make(map[string]*Session),
		config:          config,
		maxSessions:     maxSessions,
		metrics:         metrics,
		cleanupInterval: interval,
		done:            make(chan struct{}),
		cleanupDone:     make(chan struct{}),
		logger:          logger.With("component", "session_manager"),
	}
	go sm.cleanupLoop()
	return sm
}

// add registers a freshly rendered session as pending.
func (sm *SessionManager) add(s *Session) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.maxSessions > 0 && len(sm.pending)+len(sm.live) >= sm.maxSessions {
		return ErrMaxSessionsReached
	}
	sm.pending[s.ID] = s
	s.onClose = sm.remove
	sm.totalCreated.Add(1)
	if n := len(sm.pending) + len(sm.live); n > sm.peak {
		sm.peak = n
	}
	sm.metrics.sessionCreated()
	return nil
}

// Claim hands the pending session with the given ID to its WebSocket. A
// session can be claimed once; later claims and unknown IDs return an
// error wrapping ErrSessionNotFound.
func (sm *SessionManager) Claim(id string) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s, ok := sm.pending[id]
	if !ok {
		return nil, rerrors.New("E123").WithDetail("session " + id).Wrap(ErrSessionNotFound)
	}
	delete(sm.pending, id)
	sm.live[id] = s
	s.connected.Store(true)
	sm.metrics.sessionConnected()
	return s, nil
}

// Get returns the pending or live session with the given ID, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.live[id]; ok {
		return s
	}
	return sm.pending[id]
}

// remove forgets a closed session.
func (sm *SessionManager) remove(s *Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.live[s.ID]; ok {
		delete(sm.live, s.ID)
		sm.totalClosed.Add(1)
		sm.metrics.sessionClosed()
		return
	}
	if _, ok := sm.pending[s.ID]; ok {
		delete(sm.pending, s.ID)
		sm.totalClosed.Add(1)
		sm.metrics.sessionExpired()
	}
}

// Count returns the number of pending and live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.pending) + len(sm.live)
}

// Stats returns a snapshot of session counts.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return ManagerStats{
		Pending:      len(sm.pending),
		Live:         len(sm.live),
		Peak:         sm.peak,
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
		TotalExpired: sm.totalExpired.Load(),
	}
}

func (sm *SessionManager) cleanupLoop() {
	defer close(sm.cleanupDone)
	ticker := time.NewTicker(sm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			sm.expirePending(now)
		case <-sm.done:
			return
		}
	}
}

// expirePending closes the pending sessions created more than the
// handshake timeout before now. It returns how many were closed.
func (sm *SessionManager) expirePending(now time.Time) int {
	cutoff := now.Add(-sm.config.HandshakeTimeout)

	sm.mu.Lock()
	var expired []*Session
	for _, s := range sm.pending {
		if s.CreatedAt.Before(cutoff) {
			expired = append(expired, s)
		}
	}
	sm.mu.Unlock()

	for _, s := range expired {
		sm.totalExpired.Add(1)
		sm.logger.Debug("pending session expired", "session_id", s.ID, "age", now.Sub(s.CreatedAt))
		s.closeWithError(ErrSessionExpired)
	}
	return len(expired)
}

// Shutdown stops the cleanup loop and closes every session.
func (sm *SessionManager) Shutdown() {
	sm.shutdownOnce.Do(func() {
		close(sm.done)
		<-sm.cleanupDone
	})

	sm.mu.Lock()
	all := make([]*Session, 0, len(sm.pending)+len(sm.live))
	for _, s := range sm.pending {
		all = append(all, s)
	}
	for _, s := range sm.live {
		all = append(all, s)
	}
	sm.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	sm.logger.Info("sessions closed", "count", len(all))
}
