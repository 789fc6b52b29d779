package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/reflow/internal/config"
	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/transcript"
	"github.com/vango-dev/reflow/pkg/tree"
	"github.com/vango-dev/reflow/pkg/vdom"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func code(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Code
	}
	return ""
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != version+"\n" {
		t.Errorf("version = %q", out)
	}
}

func TestVersionCodes(t *testing.T) {
	out, err := run(t, "version", "--codes")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"E101  render", "More refs used than previous render", "E180  cli"} {
		if !strings.Contains(out, want) {
			t.Errorf("codes missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "E101") > strings.Index(out, "E180") {
		t.Errorf("codes not sorted:\n%s", out)
	}
}

func TestErrorOutput(t *testing.T) {
	t.Cleanup(errors.EnableColors)

	report := func(args ...string) string {
		t.Helper()
		root := rootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs(args)
		err := root.Execute()
		if err == nil {
			t.Fatalf("%v succeeded", args)
		}
		var b bytes.Buffer
		reportError(&b, root, err)
		return b.String()
	}

	out := report("render", "tetris", "--json")
	if !strings.HasPrefix(out, `{"code":"E180","category":"cli",`) {
		t.Errorf("json output = %q", out)
	}

	out = report("render", "tetris", "--no-color")
	if !strings.Contains(out, "ERROR E180: Unknown demo") || strings.Contains(out, "\033[") {
		t.Errorf("plain output = %q", out)
	}
}

func TestRender(t *testing.T) {
	out, err := run(t, "render", "counter")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<span class="count">0</span>`) {
		t.Errorf("render output = %s", out)
	}

	out, err = run(t, "render", "nav", "--location", "/about", "--page")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "<title>nav</title>", "<h1>About</h1>"} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(out, "<script") {
		t.Error("static page includes the client script")
	}
}

func TestRenderUnknownDemo(t *testing.T) {
	_, err := run(t, "render", "tetris")
	if code(err) != "E180" {
		t.Errorf("err = %v, want E180", err)
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")

	if _, err := run(t, "init", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !config.Exists(dir) {
		t.Fatal("reflow.json not written")
	}

	if _, err := run(t, "init", dir); code(err) != "E141" {
		t.Errorf("second init = %v, want E141", err)
	}
	if _, err := run(t, "init", dir, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestReplayFile(t *testing.T) {
	dir := t.TempDir()
	store, err := transcript.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	start := &tree.Element{Tag: "p", Props: vdom.Props{}, Children: []tree.Child{
		{Key: vdom.Key{Kind: vdom.KeyExplicit, Name: "0"}, Node: tree.Text("count: 0")},
	}}
	next := &tree.Element{Tag: "p", Props: vdom.Props{}, Children: []tree.Child{
		{Key: vdom.Key{Kind: vdom.KeyExplicit, Name: "0"}, Node: tree.Text("count: 1")},
	}}

	rec := transcript.NewRecorder(store, "abc", "/", time.Now())
	if err := rec.Tree(start); err != nil {
		t.Fatal(err)
	}
	if err := rec.Event(tree.Event{Type: "click", Path: []int{0}}); err != nil {
		t.Fatal(err)
	}
	if err := rec.Ops(tree.Diff(start, next)); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "replay", filepath.Join(dir, "abc"+transcript.Extension), "--html")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	for _, want := range []string{"session abc at /", "initial tree", "click [0]", "<p>count: 1</p>"} {
		if !strings.Contains(out, want) {
			t.Errorf("replay output missing %q:\n%s", want, out)
		}
	}
}

func TestReplayWithoutStore(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), config.ConfigFileName)
	if err := config.New().SaveTo(cfgPath); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvTranscriptDir, "")

	_, err := run(t, "replay", "missing-id", "--config", cfgPath)
	if code(err) != "E160" {
		t.Errorf("err = %v, want E160", err)
	}
}

func TestOpenStore(t *testing.T) {
	cfg := config.New()
	if s, err := openStore(context.Background(), cfg); err != nil || s != nil {
		t.Errorf("none driver = %v, %v", s, err)
	}

	cfg.Transcript.Driver = config.DriverFile
	cfg.Transcript.Dir = filepath.Join(t.TempDir(), "t")
	s, err := openStore(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*transcript.FileStore); !ok {
		t.Errorf("file driver = %T", s)
	}
	if _, err := os.Stat(cfg.Transcript.Dir); err != nil {
		t.Errorf("transcript dir not created: %v", err)
	}

	awsDir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(awsDir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(awsDir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	cfg.Transcript.Driver = config.DriverS3
	cfg.Transcript.Bucket = "b"
	cfg.Transcript.Region = "us-east-1"
	s, err = openStore(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*transcript.S3Store); !ok {
		t.Errorf("s3 driver = %T", s)
	}
}
