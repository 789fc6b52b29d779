package main

import (
	"context"
	"os"

	"github.com/vango-dev/reflow/internal/config"
	"github.com/vango-dev/reflow/pkg/transcript"
)

// loadConfig reads the config at path, or ./reflow.json when path is
// empty, applies environment overrides and validates the result.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore returns the transcript store selected by cfg, or nil for the
// none driver.
func openStore(ctx context.Context, cfg *config.Config) (transcript.Store, error) {
	switch cfg.Transcript.Driver {
	case config.DriverFile:
		return transcript.NewFileStore(cfg.TranscriptDir())
	case config.DriverS3:
		client, err := transcript.NewS3Client(ctx, transcript.S3Options{
			Region:    cfg.Transcript.Region,
			Endpoint:  cfg.Transcript.Endpoint,
			PathStyle: cfg.Transcript.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return transcript.NewS3Store(client, cfg.Transcript.Bucket, cfg.Transcript.Prefix), nil
	default:
		return nil, nil
	}
}
