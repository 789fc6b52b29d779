package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reflow/internal/demo"
	"github.com/vango-dev/reflow/pkg/reconcile"
	"github.com/vango-dev/reflow/pkg/render"
)

func renderCmd() *cobra.Command {
	var (
		location string
		pretty   bool
		page     bool
	)

	cmd := &cobra.Command{
		Use:   "render <demo>",
		Short: "Render a demo to static HTML",
		Long: `Render a demo once at the given location and print the HTML.

Examples:
  reflow render counter
  reflow render nav --location /about --pretty
  reflow render todo --page > todo.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), args[0], location, pretty, page)
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "/", "Location to render at")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the output")
	cmd.Flags().BoolVar(&page, "page", false, "Wrap the output in a complete HTML document")

	return cmd
}

func runRender(w io.Writer, name, location string, pretty, page bool) error {
	app, err := demo.Lookup(name)
	if err != nil {
		return err
	}

	sched := reconcile.New(app.Root(),
		reconcile.WithLocation(location),
		reconcile.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	defer sched.Close()

	res, err := sched.Render()
	if err != nil {
		return err
	}

	r := render.NewRenderer(render.RendererConfig{Pretty: pretty})
	if page {
		return r.RenderDocument(w, res, render.Document{Title: app.Name})
	}
	if err := r.RenderToWriter(w, res); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
