package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	rerrors "github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/render"
)

// Server serves a root component: every page request renders a new
// session, and the page's client script connects back to it over a
// WebSocket to drive updates.
type Server struct {
	root     any
	config   *ServerConfig
	sessions *SessionManager
	metrics  *Metrics
	tracer   trace.Tracer
	renderer *render.Renderer
	upgrader websocket.Upgrader
	router   chi.Router

	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server for root, which is coerced like a render result.
// Unset config fields take their defaults.
func New(root any, config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	} else {
		c := *config
		config = &c
		config.fillDefaults()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	var metrics *Metrics
	if config.Registry != nil {
		metrics = NewMetrics(config.Registry, config.MetricsNamespace)
	}

	s := &Server{
		root:     root,
		config:   config,
		sessions: NewSessionManager(config.SessionConfig, config.MaxSessions, metrics, logger),
		metrics:  metrics,
		tracer:   otel.Tracer(config.TracerName),
		renderer: render.NewRenderer(render.RendererConfig{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.serveHealth)
	r.Get(render.DefaultClientScript, s.serveClient)
	r.Head(render.DefaultClientScript, s.serveClient)
	r.Get("/ws/{session}", s.serveWebSocket)
	if s.config.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	}
	r.Get("/favicon.ico", http.NotFound)
	r.Get("/*", s.servePage)
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// logRequests logs every request except WebSocket upgrades, which are
// logged by their session.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte("ok\n"))
}

// servePage renders a new session at the request URI and writes its page.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	location := r.URL.RequestURI()

	sess, err := newSession(s.root, location, sessionOptions{
		config:  s.config.SessionConfig,
		metrics: s.metrics,
		tracer:  s.tracer,
		logger:  s.logger,
		store:   s.config.TranscriptStore,
	})
	if err != nil {
		s.logger.Error("page render failed", "location", location, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.add(sess); err != nil {
		s.logger.Warn("session rejected", "error", err)
		sess.Close()
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	err = s.renderer.RenderDocument(&buf, sess.Tree(), render.Document{
		Title:       s.config.Title,
		StyleSheets: s.config.StyleSheets,
		SessionID:   sess.ID,
	})
	if err != nil {
		s.logger.Error("page write failed", "location", location, "error", err)
		sess.Close()
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// serveWebSocket claims the session named in the URL and serves it until
// it closes.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")
	sess, err := s.sessions.Claim(id)
	if err != nil {
		s.logger.Debug("websocket rejected", "error", err)
		http.Error(w, "Session Not Found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the response.
		s.metrics.wsError("upgrade")
		sess.closeWithError(rerrors.New("E124").Wrap(err))
		return
	}

	if err := sess.Serve(conn); err != nil && !errors.Is(err, ErrSessionClosed) {
		s.logger.Warn("session ended with error", "session_id", sess.ID, "error", err)
	}
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return rerrors.New("E181").WithDetail(s.config.Address).Wrap(err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session, then shuts the HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.sessions.Shutdown()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration with defaults filled in.
func (s *Server) Config() *ServerConfig {
	return s.config
}
