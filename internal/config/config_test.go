package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/reflow/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q, want %q", cfg.Server.Address, DefaultAddress)
	}
	if cfg.Transcript.Driver != DriverNone {
		t.Errorf("Transcript.Driver = %q, want %q", cfg.Transcript.Driver, DriverNone)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// A missing file yields the defaults.
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}

	configJSON := `{
  "name": "demo",
  "server": {
    "address": "127.0.0.1:9000",
    "maxSessions": 50,
    "handshakeTimeout": "5s",
    "styleSheets": ["/app.css"]
  },
  "log": {"level": "debug", "format": "json"},
  "metrics": {"enabled": false},
  "transcript": {"driver": "s3", "bucket": "sessions", "prefix": "prod/", "pathStyle": true}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Server.Title != "demo" {
		t.Errorf("Server.Title = %q, want name as default", cfg.Server.Title)
	}
	if cfg.Server.MaxSessions != 50 {
		t.Errorf("Server.MaxSessions = %d", cfg.Server.MaxSessions)
	}
	if cfg.Server.HandshakeTimeout.Std() != 5*time.Second {
		t.Errorf("Server.HandshakeTimeout = %v", cfg.Server.HandshakeTimeout.Std())
	}
	if len(cfg.Server.StyleSheets) != 1 || cfg.Server.StyleSheets[0] != "/app.css" {
		t.Errorf("Server.StyleSheets = %v", cfg.Server.StyleSheets)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q", cfg.Metrics.Namespace)
	}
	if cfg.Transcript.Driver != DriverS3 || cfg.Transcript.Bucket != "sessions" || !cfg.Transcript.PathStyle {
		t.Errorf("Transcript = %+v", cfg.Transcript)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "E140") {
		t.Errorf("Expected E140 error, got: %v", err)
	}
}

func TestLoadFile_BadDuration(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(configPath, []byte(`{"server":{"readTimeout":"soon"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(configPath); err == nil || !strings.Contains(err.Error(), "E140") {
		t.Errorf("LoadFile = %v, want E140", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "E140") {
		t.Errorf("LoadFile = %v, want E140", err)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Server.Address = ":9000"
	cfg.Server.ReadTimeout = Duration(90 * time.Second)

	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"readTimeout": "1m30s"`) {
		t.Errorf("durations not written as strings:\n%s", data)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Server.Address != ":9000" || loaded.Server.ReadTimeout.Std() != 90*time.Second {
		t.Errorf("loaded Server = %+v", loaded.Server)
	}

	loaded.Server.Address = ":9001"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	reloaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if reloaded.Server.Address != ":9001" {
		t.Errorf("Server.Address = %q, want :9001", reloaded.Server.Address)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"negative sessions", func(c *Config) { c.Server.MaxSessions = -1 }, "maxSessions"},
		{"negative timeout", func(c *Config) { c.Server.WriteTimeout = Duration(-time.Second) }, "writeTimeout"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log format"},
		{"driver", func(c *Config) { c.Transcript.Driver = "tape" }, "driver"},
		{"s3 bucket", func(c *Config) { c.Transcript.Driver = DriverS3 }, "bucket"},
		{"file dir", func(c *Config) { c.Transcript.Driver = DriverFile; c.Transcript.Dir = "" }, "dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate passed")
			}
			e, ok := err.(*errors.Error)
			if !ok || e.Code != "E141" || !strings.Contains(e.Detail, tt.want) {
				t.Errorf("Validate = %v, want E141 mentioning %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAddress:       ":7000",
		EnvTranscriptDir: "/var/lib/reflow",
		EnvLogLevel:      "warn",
	}
	cfg := New()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Server.Address != ":7000" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Transcript.Driver != DriverFile || cfg.TranscriptDir() != "/var/lib/reflow" {
		t.Errorf("Transcript = %+v", cfg.Transcript)
	}
	if cfg.LogLevel() != slog.LevelWarn {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}

	untouched := New()
	untouched.ApplyEnv(func(string) string { return "" })
	if untouched.Server.Address != DefaultAddress || untouched.Transcript.Driver != DriverNone {
		t.Error("empty environment changed the config")
	}
}

func TestTranscriptDir(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := New()
	if err := cfg.SaveTo(filepath.Join(tmpDir, ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	if got := cfg.TranscriptDir(); got != filepath.Join(tmpDir, DefaultTranscriptDir) {
		t.Errorf("TranscriptDir() = %q", got)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Logger(&buf).Info("hello", "n", 1)
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("json log = %q", buf.String())
	}

	buf.Reset()
	cfg.Log.Format = "text"
	cfg.Logger(&buf).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug logged at info level: %q", buf.String())
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()
	if Exists(tmpDir) {
		t.Error("Exists() true for empty dir")
	}
	if err := New().SaveTo(filepath.Join(tmpDir, ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Error("Exists() false after SaveTo")
	}
}
