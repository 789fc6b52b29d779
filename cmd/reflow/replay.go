package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/render"
	"github.com/vango-dev/reflow/pkg/transcript"
)

func replayCmd(configPath *string) *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "replay <file|id>",
		Short: "Replay a session transcript",
		Long: `Replay a recorded session transcript step by step.

The argument is a transcript file, or the ID of a transcript in the
store configured in reflow.json. Op batches are applied the way the
browser applies them; the final tree is printed as HTML.

Examples:
  reflow replay transcripts/6f1c....rft
  reflow replay 6f1c... --html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readTranscript(cmd.Context(), *configPath, args[0])
			if err != nil {
				return err
			}
			return runReplay(cmd.OutOrStdout(), data, html)
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Print the tree after every step")

	return cmd
}

func readTranscript(ctx context.Context, configPath, arg string) ([]byte, error) {
	if _, err := os.Stat(arg); err == nil {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, errors.New("E161").Wrap(err)
		}
		return data, nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("E160").
			WithDetail(arg + " is not a file and no transcript store is configured").
			WithSuggestion("Set transcript.driver in reflow.json or pass a file path")
	}
	return store.Get(ctx, arg)
}

func runReplay(w io.Writer, data []byte, html bool) error {
	var last transcript.Step
	err := transcript.ReplayBytes(data, func(s transcript.Step) error {
		last = s
		fmt.Fprintf(w, "%4d  %-8s %s\n", s.Index, s.Type, describe(s))
		if html && s.Tree != nil && (s.Type == protocol.FrameTree || s.Type == protocol.FrameOps) {
			fmt.Fprintf(w, "      %s\n", render.HTML(s.Tree))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if last.Tree != nil {
		fmt.Fprintf(w, "\n%s\n", render.HTML(last.Tree))
	}
	return nil
}

func describe(s transcript.Step) string {
	switch s.Type {
	case protocol.FrameStart:
		return fmt.Sprintf("session %s at %s (%s)", s.Start.SessionID, s.Start.Location, s.Start.Time.Format("2006-01-02 15:04:05Z07:00"))
	case protocol.FrameTree:
		return "initial tree"
	case protocol.FrameOps:
		return fmt.Sprintf("%d ops", len(s.Ops))
	case protocol.FrameEvent:
		return fmt.Sprintf("%s %v", s.Event.Type, s.Event.Path)
	case protocol.FrameLocation:
		return s.Location
	case protocol.FrameError:
		if s.Fatal {
			return "fatal " + s.Error.Code + ": " + s.Error.Message
		}
		return s.Error.Code + ": " + s.Error.Message
	}
	return ""
}
