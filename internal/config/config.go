package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/reflow/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reflow.json"

	// DefaultAddress is the default listen address.
	DefaultAddress = ":8080"

	// DefaultTranscriptDir is where the file driver stores transcripts.
	DefaultTranscriptDir = "transcripts"

	// DefaultMetricsNamespace prefixes metric names.
	DefaultMetricsNamespace = "reflow"
)

// Transcript drivers.
const (
	DriverNone = "none"
	DriverFile = "file"
	DriverS3   = "s3"
)

// Environment variables that override the file.
const (
	EnvAddress       = "REFLOW_ADDR"
	EnvTranscriptDir = "REFLOW_TRANSCRIPT_DIR"
	EnvLogLevel      = "REFLOW_LOG_LEVEL"
)

// Config represents reflow.json.
type Config struct {
	// Name is the application name, used as the page title when the
	// server section has none.
	Name string `json:"name,omitempty"`

	// Server contains HTTP and session settings.
	Server ServerConfig `json:"server,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Transcript selects where session transcripts are stored.
	Transcript TranscriptConfig `json:"transcript,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP and session settings.
type ServerConfig struct {
	// Address is the listen address.
	Address string `json:"address,omitempty"`

	// Title is the page title.
	Title string `json:"title,omitempty"`

	// StyleSheets are linked from every page.
	StyleSheets []string `json:"styleSheets,omitempty"`

	// MaxSessions limits live and pending sessions. 0 means no limit.
	MaxSessions int `json:"maxSessions,omitempty"`

	// MaxMessageSize is the largest event message accepted, in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty"`

	// MaxEventQueue is the per-session event buffer.
	MaxEventQueue int `json:"maxEventQueue,omitempty"`

	HandshakeTimeout  Duration `json:"handshakeTimeout,omitempty"`
	ReadTimeout       Duration `json:"readTimeout,omitempty"`
	WriteTimeout      Duration `json:"writeTimeout,omitempty"`
	HeartbeatInterval Duration `json:"heartbeatInterval,omitempty"`
	ShutdownTimeout   Duration `json:"shutdownTimeout,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled serves /metrics.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace prefixes metric names.
	Namespace string `json:"namespace,omitempty"`
}

// TranscriptConfig selects the transcript store.
type TranscriptConfig struct {
	// Driver is none, file or s3.
	Driver string `json:"driver,omitempty"`

	// Dir is the file driver's directory, relative to the config file.
	Dir string `json:"dir,omitempty"`

	// S3 settings.
	Bucket    string `json:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address: DefaultAddress,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
		Transcript: TranscriptConfig{
			Driver: DriverNone,
			Dir:    DefaultTranscriptDir,
		},
	}
}

// Load reads reflow.json from dir. A missing file is not an error: the
// defaults are returned.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := New()
		cfg.configPath = path
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E140").WithDetail("cannot read " + path).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E140").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E140").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E140").WithDetail("cannot write " + path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.Title == "" {
		c.Server.Title = c.Name
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Transcript.Driver == "" {
		c.Transcript.Driver = DriverNone
	}
	if c.Transcript.Dir == "" {
		c.Transcript.Dir = DefaultTranscriptDir
	}
}

// ApplyEnv overrides settings from the environment. getenv is usually
// os.Getenv. Setting REFLOW_TRANSCRIPT_DIR selects the file driver.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAddress); v != "" {
		c.Server.Address = v
	}
	if v := getenv(EnvTranscriptDir); v != "" {
		c.Transcript.Driver = DriverFile
		c.Transcript.Dir = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("E141").WithDetail(detail)
	}

	if c.Server.MaxSessions < 0 {
		return invalid("server.maxSessions must not be negative")
	}
	if c.Server.MaxMessageSize < 0 || c.Server.MaxEventQueue < 0 {
		return invalid("server limits must not be negative")
	}
	for name, d := range map[string]Duration{
		"handshakeTimeout":  c.Server.HandshakeTimeout,
		"readTimeout":       c.Server.ReadTimeout,
		"writeTimeout":      c.Server.WriteTimeout,
		"heartbeatInterval": c.Server.HeartbeatInterval,
		"shutdownTimeout":   c.Server.ShutdownTimeout,
	} {
		if d < 0 {
			return invalid("server." + name + " must not be negative")
		}
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid("unknown log level " + c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("unknown log format " + c.Log.Format)
	}

	switch c.Transcript.Driver {
	case DriverNone:
	case DriverFile:
		if c.Transcript.Dir == "" {
			return invalid("transcript.dir is required for the file driver")
		}
	case DriverS3:
		if c.Transcript.Bucket == "" {
			return invalid("transcript.bucket is required for the s3 driver")
		}
	default:
		return invalid("unknown transcript driver " + c.Transcript.Driver)
	}
	return nil
}

// TranscriptDir returns the file driver's directory, resolved against the
// config file's directory.
func (c *Config) TranscriptDir() string {
	if filepath.IsAbs(c.Transcript.Dir) {
		return c.Transcript.Dir
	}
	return filepath.Join(c.Dir(), c.Transcript.Dir)
}

// LogLevel returns the configured slog level, info if it is unknown.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

// Logger builds the configured logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
