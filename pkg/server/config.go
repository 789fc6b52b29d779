package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/reflow/pkg/transcript"
)

// SessionConfig holds configuration for individual sessions.
type SessionConfig struct {
	// Timeouts

	// ReadTimeout is the maximum time to wait for a message from the client,
	// including heartbeat pongs.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HandshakeTimeout is how long a session rendered by a page request
	// waits for its WebSocket before it is discarded.
	// Default: 30 seconds.
	HandshakeTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 25 seconds.
	HeartbeatInterval time.Duration

	// Limits

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxEventQueue is the size of the event channel buffer. Events
	// arriving while it is full are dropped.
	// Default: 256.
	MaxEventQueue int
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HandshakeTimeout:  30 * time.Second,
		HeartbeatInterval: 25 * time.Second,
		MaxMessageSize:    64 * 1024, // 64KB
		MaxEventQueue:     256,
	}
}

// Clone returns a copy of the SessionConfig.
func (c *SessionConfig) Clone() *SessionConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func (c *SessionConfig) fillDefaults() {
	defaults := DefaultSessionConfig()
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaults.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.MaxEventQueue == 0 {
		c.MaxEventQueue = defaults.MaxEventQueue
	}
}

// ServerConfig holds configuration for the HTTP/WebSocket server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: ":8080".
	Address string

	// Page

	// Title is the document title of rendered pages.
	Title string

	// StyleSheets are linked from every page.
	StyleSheets []string

	// WebSocket buffer sizes

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin is called to validate the request origin.
	// Default: same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// Session configuration

	// SessionConfig is the configuration for individual sessions.
	// Default: DefaultSessionConfig().
	SessionConfig *SessionConfig

	// MaxSessions is the maximum number of live and pending sessions.
	// 0 means no limit.
	MaxSessions int

	// Server lifecycle

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout is the HTTP server's header read timeout.
	// Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// IdleTimeout is the HTTP server's keep-alive timeout.
	// Default: 120 seconds.
	IdleTimeout time.Duration

	// Observability

	// Registry receives the server's Prometheus metrics and backs the
	// /metrics endpoint. Nil disables metrics.
	Registry *prometheus.Registry

	// MetricsNamespace prefixes metric names.
	// Default: "reflow".
	MetricsNamespace string

	// TracerName names the OpenTelemetry tracer used for event spans.
	// Default: "github.com/vango-dev/reflow/pkg/server".
	TracerName string

	// Logger is the server logger.
	// Default: slog.Default().
	Logger *slog.Logger

	// Transcripts

	// TranscriptStore, when set, receives a transcript of every session.
	TranscriptStore transcript.Store
}

// DefaultTracerName is the default tracer name.
const DefaultTracerName = "github.com/vango-dev/reflow/pkg/server"

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		SessionConfig:     DefaultSessionConfig(),
		ShutdownTimeout:   30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MetricsNamespace:  "reflow",
		TracerName:        DefaultTracerName,
	}
}

// fillDefaults sets every unset field to its default.
func (c *ServerConfig) fillDefaults() {
	defaults := DefaultServerConfig()
	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = defaults.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = defaults.WriteBufferSize
	}
	if c.SessionConfig == nil {
		c.SessionConfig = defaults.SessionConfig
	} else {
		c.SessionConfig = c.SessionConfig.Clone()
		c.SessionConfig.fillDefaults()
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaults.IdleTimeout
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = defaults.MetricsNamespace
	}
	if c.TracerName == "" {
		c.TracerName = defaults.TracerName
	}
}
