// Package config provides configuration parsing for reflow servers.
//
// The configuration is stored in reflow.json. Every field is optional;
// Load returns the defaults when the file does not exist.
//
// # Configuration File Structure
//
//	{
//	  "name": "todo",
//	  "server": {
//	    "address": ":8080",
//	    "maxSessions": 1000,
//	    "handshakeTimeout": "30s",
//	    "styleSheets": ["/static/app.css"]
//	  },
//	  "log": {"level": "info", "format": "json"},
//	  "metrics": {"enabled": true, "namespace": "reflow"},
//	  "transcript": {
//	    "driver": "s3",
//	    "bucket": "reflow-transcripts",
//	    "prefix": "prod/",
//	    "region": "us-east-1"
//	  }
//	}
//
// REFLOW_ADDR, REFLOW_TRANSCRIPT_DIR and REFLOW_LOG_LEVEL override the
// file; see Config.ApplyEnv.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.ApplyEnv(os.Getenv)
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
