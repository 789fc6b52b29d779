package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	rerrors "github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/reconcile"
	"github.com/vango-dev/reflow/pkg/transcript"
	"github.com/vango-dev/reflow/pkg/tree"
)

// PopStateEvent is sent by the client, with an empty path and a "url"
// payload, when the user moves through the browser history.
const PopStateEvent = "popstate"

// transcriptTimeout bounds the store write when a session closes.
const transcriptTimeout = 10 * time.Second

// Session is one rendered tree and the browser connection driving it.
//
// A Session is created by the page request that renders it. Serve then
// runs it over a WebSocket: events read from the socket are delivered to
// handlers, and every update pass is diffed against the previous tree and
// sent back as ops.
type Session struct {
	// ID is the session's unique identifier.
	ID string

	// CreatedAt is when the page for the session was rendered.
	CreatedAt time.Time

	sched   *reconcile.Scheduler
	initial tree.Node
	prev    tree.Node // last tree sent; owned by the render loop

	mu   sync.Mutex
	conn *websocket.Conn

	writeMu    sync.Mutex
	events     chan tree.Event
	dispatches chan func()

	actionsMu sync.Mutex
	actions   []protocol.Action
	flush     chan struct{} // actions queued with no pass pending

	recorder *transcript.Recorder

	config  *SessionConfig
	metrics *Metrics
	tracer  trace.Tracer
	logger  *slog.Logger

	connected atomic.Bool

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	onClose   func(*Session)
}

type sessionOptions struct {
	config  *SessionConfig
	metrics *Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
	store   transcript.Store
}

// newSession mounts root at location and renders it once.
func newSession(root any, location string, opts sessionOptions) (*Session, error) {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		events:     make(chan tree.Event, opts.config.MaxEventQueue),
		dispatches: make(chan func(), opts.config.MaxEventQueue),
		flush:      make(chan struct{}, 1),
		config:    opts.config,
		metrics:   opts.metrics,
		tracer:    opts.tracer,
		logger:    opts.logger.With("session_id", id),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	s.sched = reconcile.New(root,
		reconcile.WithLocation(location),
		reconcile.WithNavigator(s.navigate),
		reconcile.WithLogger(s.logger),
		reconcile.WithTracer(opts.tracer),
	)

	res, err := s.sched.Render()
	if err != nil {
		cancel()
		return nil, err
	}
	s.initial, s.prev = res, res

	if opts.store != nil {
		s.recorder = transcript.NewRecorder(opts.store, id, location, s.CreatedAt)
		s.record(func(r *transcript.Recorder) error { return r.Tree(res) })
	}
	return s, nil
}

// Tree returns the tree rendered when the session was created.
func (s *Session) Tree() tree.Node {
	return s.initial
}

// Result returns the session's current tree.
func (s *Session) Result() tree.Node {
	return s.sched.Result()
}

// Location returns the session's current location.
func (s *Session) Location() string {
	return s.sched.Location()
}

// Connected reports whether a WebSocket has claimed the session.
func (s *Session) Connected() bool {
	return s.connected.Load()
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that closed the session, if any.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.closeErr
	default:
		return nil
	}
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Serve runs the session over conn until the connection drops, a pass
// fails, or the session is closed. It returns the error that closed the
// session, nil for a normal close.
func (s *Session) Serve(conn *websocket.Conn) error {
	s.mu.Lock()
	if s.IsClosed() {
		s.mu.Unlock()
		_ = conn.Close()
		return ErrSessionClosed
	}
	s.conn = conn
	s.mu.Unlock()

	s.logger.Info("session connected", "location", s.Location())

	go s.readLoop(conn)
	go s.eventLoop()
	go s.heartbeat(conn)
	s.renderLoop()

	s.Close()
	return s.closeErr
}

func (s *Session) readLoop(conn *websocket.Conn) {
	defer s.Close()

	conn.SetReadLimit(s.config.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) && !s.IsClosed() {
				s.logger.Warn("read error", "error", err)
				s.metrics.wsError("read")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		ev, err := protocol.ParseEvent(msg)
		if err != nil {
			s.logger.Warn("malformed event", "error", err)
			s.metrics.event("", "malformed", 0)
			continue
		}

		select {
		case s.events <- ev:
		case <-s.done:
			return
		default:
			s.metrics.eventDropped()
			s.logger.Warn("event dropped", "event", ev.Type, "error", ErrEventQueueFull)
		}
	}
}

func (s *Session) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.handleEvent(ev)
		case fn := <-s.dispatches:
			s.runDispatch(fn)
		}
	}
}

// Dispatch queues fn to run on the session's event loop, serialized with
// event handlers and update passes. Goroutines started by components, such
// as timers, use it to change state. Functions queued before the session
// connects run once it does.
func (s *Session) Dispatch(fn func()) error {
	if s.IsClosed() {
		return ErrSessionClosed
	}
	select {
	case s.dispatches <- fn:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		s.metrics.eventDropped()
		return ErrEventQueueFull
	}
}

func (s *Session) runDispatch(fn func()) {
	start := time.Now()
	status := "ok"
	if err := s.sched.Dispatch(fn); err != nil {
		status = "panic"
		s.logger.Error("dispatched function failed", "error", err)
		s.record(func(r *transcript.Recorder) error { return r.Error(err, false) })
	}
	s.metrics.event("dispatch", status, time.Since(start))
}

func (s *Session) handleEvent(ev tree.Event) {
	s.record(func(r *transcript.Recorder) error { return r.Event(ev) })

	if ev.Type == PopStateEvent && len(ev.Path) == 0 {
		url, _ := ev.Payload["url"].(string)
		if url == "" {
			s.metrics.event(ev.Type, "malformed", 0)
			return
		}
		s.sched.SetLocation(url)
		s.record(func(r *transcript.Recorder) error { return r.Location(url) })
		s.metrics.event(ev.Type, "ok", 0)
		return
	}

	_, span := s.tracer.Start(s.ctx, "reflow.event", trace.WithAttributes(
		attribute.String("reflow.session_id", s.ID),
		attribute.String("reflow.event.type", ev.Type),
		attribute.IntSlice("reflow.event.path", ev.Path),
	))
	start := time.Now()
	err := s.sched.Invoke(ev)

	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, reconcile.ErrAddress):
		// The client acted on a tree it had not yet updated.
		status = "stale"
		s.logger.Debug("event target gone", "event", ev.Type, "path", ev.Path, "error", err)
	case errors.Is(err, reconcile.ErrHandlerPanic):
		status = "panic"
		s.logger.Error("event handler failed", "event", ev.Type, "path", ev.Path, "error", err)
		s.record(func(r *transcript.Recorder) error { return r.Error(err, false) })
	default:
		status = "error"
		s.logger.Error("event failed", "event", ev.Type, "error", err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
	s.metrics.event(ev.Type, status, time.Since(start))
}

// renderLoop runs a pass every time the scheduler wakes and sends the
// resulting ops. It is the only sender of navigation actions, so they
// always follow the ops of the pass they were queued in.
func (s *Session) renderLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.sched.Wake():
		case <-s.flush:
		}

		start := time.Now()
		res, changed, err := s.sched.RerenderContext(s.ctx)
		if err != nil {
			if s.IsClosed() {
				return
			}
			s.metrics.pass("error", time.Since(start))
			s.record(func(r *transcript.Recorder) error { return r.Error(err, true) })
			s.closeWithError(err)
			return
		}
		if !changed {
			s.flushActions()
			continue
		}

		ops := tree.Diff(s.prev, res)
		s.prev = res
		s.metrics.pass("ok", time.Since(start))

		msg := protocol.Message{Ops: ops, Actions: s.takeActions()}
		if msg.Empty() {
			continue
		}
		if len(ops) > 0 {
			s.record(func(r *transcript.Recorder) error { return r.Ops(ops) })
		}
		if err := s.send(msg); err != nil {
			s.logger.Warn("send failed", "error", err)
			s.Close()
			return
		}
	}
}

func (s *Session) heartbeat(conn *websocket.Conn) {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.metrics.wsError("ping")
				s.logger.Debug("ping failed", "error", err)
				s.Close()
				return
			}
		}
	}
}

// navigate is the scheduler's navigator. It runs while the scheduler is
// held by a handler, so it only queues the action.
func (s *Session) navigate(url string, replace bool) {
	action := protocol.PushURL(url)
	if replace {
		action = protocol.ReplaceURL(url)
	}
	s.actionsMu.Lock()
	s.actions = append(s.actions, action)
	s.actionsMu.Unlock()

	s.record(func(r *transcript.Recorder) error { return r.Location(url) })

	select {
	case s.flush <- struct{}{}:
	default:
	}
}

func (s *Session) takeActions() []protocol.Action {
	s.actionsMu.Lock()
	defer s.actionsMu.Unlock()
	actions := s.actions
	s.actions = nil
	return actions
}

// flushActions sends queued actions that no pass will carry.
func (s *Session) flushActions() {
	actions := s.takeActions()
	if len(actions) == 0 {
		return
	}
	if err := s.send(protocol.Message{Actions: actions}); err != nil {
		s.logger.Warn("send failed", "error", err)
		s.Close()
	}
}

func (s *Session) send(msg protocol.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return NewSessionError(s.ID, "encode", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNoConnection
	}

	_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.metrics.wsError("write")
		return NewSessionError(s.ID, "send", err)
	}
	s.metrics.sent(len(msg.Ops), len(data))
	return nil
}

func (s *Session) record(fn func(*transcript.Recorder) error) {
	if s.recorder == nil {
		return
	}
	if err := fn(s.recorder); err != nil && !errors.Is(err, transcript.ErrClosed) {
		s.logger.Warn("transcript write failed", "error", err)
	}
}

// Close closes the session: the connection is closed, the tree unmounted
// with every ref cleanup run, and the transcript stored. Closing a closed
// session is a no-op.
func (s *Session) Close() {
	s.closeWithError(nil)
}

func (s *Session) closeWithError(cause error) {
	s.closeOnce.Do(func() {
		s.closeErr = cause
		close(s.done)
		s.cancel()

		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn != nil {
			code, reason := websocket.CloseNormalClosure, ""
			if cause != nil {
				code, reason = websocket.CloseInternalServerErr, closeReason(cause)
				if len(reason) > maxCloseReason {
					reason = reason[:maxCloseReason]
				}
			}
			deadline := time.Now().Add(s.config.WriteTimeout)
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
			_ = conn.Close()
		}

		if err := s.sched.Close(); err != nil {
			s.logger.Warn("unmount failed", "error", err)
		}

		if s.recorder != nil {
			ctx, cancel := context.WithTimeout(context.Background(), transcriptTimeout)
			if err := s.recorder.Close(ctx); err != nil {
				s.logger.Error("transcript store failed", "error", err)
			}
			cancel()
		}

		if s.onClose != nil {
			s.onClose(s)
		}

		if cause != nil && !errors.Is(cause, ErrSessionExpired) {
			s.logger.Error("session closed", "reason", closeReason(cause), "error", cause)
		} else {
			s.logger.Info("session closed", "reason", closeReason(cause))
		}
	})
}

func closeReason(cause error) string {
	if cause == nil {
		return "normal"
	}
	if errors.Is(cause, ErrSessionExpired) {
		return "expired"
	}
	var coded *rerrors.Error
	if errors.As(cause, &coded) {
		return coded.FormatCompact()
	}
	return cause.Error()
}

// maxCloseReason is the longest reason a close frame can carry.
const maxCloseReason = 123
