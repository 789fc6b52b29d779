package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reflow/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬─┐┌─┐┌─┐┬  ┌─┐┬ ┬
  ├┬┘├┤ ├┤ │  │ ││││
  ┴└─└─┘└  ┴─┘└─┘└┴┘
`

func main() {
	root := rootCmd()
	if err := root.Execute(); err != nil {
		reportError(os.Stderr, root, err)
		os.Exit(1)
	}
}

// reportError prints err in the format chosen by the root flags.
func reportError(w io.Writer, root *cobra.Command, err error) {
	if asJSON, _ := root.PersistentFlags().GetBool("json"); asJSON {
		errors.PrintErrorJSON(w, err)
		return
	}
	errors.PrintError(w, err)
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		noColor    bool
	)

	root := &cobra.Command{
		Use:   "reflow",
		Short: "Server-driven UI trees over a WebSocket",
		Long: `reflow renders component trees on the server and keeps the
browser in sync by sending the ops between successive trees.

Commands serve the bundled demos, render them to static HTML, and
replay recorded session transcripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				errors.DisableColors()
			} else {
				errors.EnableColors()
			}
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to reflow.json (default: ./reflow.json if present)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored error output")
	root.PersistentFlags().Bool("json", false, "Print errors as JSON")

	root.AddCommand(
		serveCmd(&configPath),
		renderCmd(),
		replayCmd(&configPath),
		transcriptsCmd(&configPath),
		initCmd(),
		versionCmd(),
	)
	return root
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
