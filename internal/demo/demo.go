// Package demo holds the example applications served by the reflow CLI.
package demo

import (
	"slices"
	"strings"

	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// App is a named demo application.
type App struct {
	Name        string
	Description string
	Root        func() vdom.Node
}

var apps = map[string]App{
	"counter": {
		Name:        "counter",
		Description: "A counter with increment, decrement and reset",
		Root:        func() vdom.Node { return Counter.New(vdom.Props{"start": 0}) },
	},
	"todo": {
		Name:        "todo",
		Description: "A keyed todo list with add, toggle, remove and reverse",
		Root:        func() vdom.Node { return Todo.New(nil) },
	},
	"nav": {
		Name:        "nav",
		Description: "Pages switched by location with history-aware links",
		Root:        func() vdom.Node { return Nav.New(nil) },
	},
}

// Names returns the demo names in order.
func Names() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the demo with the given name.
func Lookup(name string) (App, error) {
	app, ok := apps[name]
	if !ok {
		return App{}, errors.New("E180").
			WithDetail("no demo named " + name).
			WithSuggestion("Available demos: " + strings.Join(Names(), ", "))
	}
	return app, nil
}
