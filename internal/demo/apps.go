package demo

import (
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/reflow/pkg/hooks"
	"github.com/vango-dev/reflow/pkg/server"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// Counter renders a number with buttons to change it. Prop "start" (int)
// is the initial value.
var Counter = vdom.Define("Counter", func(s vdom.Scope, props vdom.Props) any {
	start := props.Int("start")
	count, set := hooks.UseState(s, start)

	add := func(n int) func() {
		return func() { set.Update(func(c int) int { return c + n }) }
	}

	return vdom.Div(vdom.Class("counter"),
		vdom.Button(vdom.OnClick(add(-1)), "-"),
		vdom.Span(vdom.Class("count"), strconv.Itoa(count)),
		vdom.Button(vdom.OnClick(add(1)), "+"),
		vdom.Button(vdom.Disabled(count == start), vdom.OnClick(func() { set.Set(start) }), "reset"),
	)
})

type todo struct {
	id    int
	title string
	done  bool
}

type todoList struct {
	next  int
	items []todo
}

func (l todoList) with(fn func([]todo) []todo) todoList {
	return todoList{next: l.next, items: fn(slices.Clone(l.items))}
}

// Todo is a keyed list. Items keep their identity, and their state, when
// the list is reordered.
var Todo = vdom.Define("Todo", func(s vdom.Scope, _ vdom.Props) any {
	list, setList := hooks.UseState(s, todoList{next: 1})
	draft, setDraft := hooks.UseState(s, "")

	onInput := hooks.UseCallback(s, func(ev vdom.Event) {
		v, _ := ev.Payload["value"].(string)
		setDraft.Set(v)
	})

	add := vdom.PreventDefault(func() {
		title := strings.TrimSpace(setDraft.Get())
		if title == "" {
			return
		}
		setList.Update(func(l todoList) todoList {
			l = l.with(func(items []todo) []todo {
				return append(items, todo{id: l.next, title: title})
			})
			l.next++
			return l
		})
		setDraft.Set("")
	})

	toggle := func(id int) func() {
		return func() {
			setList.Update(func(l todoList) todoList {
				return l.with(func(items []todo) []todo {
					for i := range items {
						if items[i].id == id {
							items[i].done = !items[i].done
						}
					}
					return items
				})
			})
		}
	}
	remove := func(id int) func() {
		return func() {
			setList.Update(func(l todoList) todoList {
				return l.with(func(items []todo) []todo {
					return slices.DeleteFunc(items, func(t todo) bool { return t.id == id })
				})
			})
		}
	}
	reverse := func() {
		setList.Update(func(l todoList) todoList {
			return l.with(func(items []todo) []todo {
				slices.Reverse(items)
				return items
			})
		})
	}

	rows := make([]vdom.Node, 0, len(list.items))
	left := 0
	for _, t := range list.items {
		if !t.done {
			left++
		}
		rows = append(rows, TodoItem.New(vdom.Props{
			vdom.KeyProp: t.id,
			"title":      t.title,
			"done":       t.done,
			"onToggle":   vdom.ToCallback(toggle(t.id)),
			"onRemove":   vdom.ToCallback(remove(t.id)),
		}))
	}

	return vdom.Div(vdom.Class("todo"),
		vdom.Form(vdom.OnSubmit(add),
			vdom.Input(vdom.Type("text"), vdom.Placeholder("What needs doing?"), vdom.Value(draft), vdom.OnInput(onInput)),
			vdom.Button(vdom.Type("submit"), vdom.Disabled(strings.TrimSpace(draft) == ""), "add"),
		),
		vdom.Ul(rows),
		vdom.P(vdom.Class("summary"), strconv.Itoa(left), " left"),
		vdom.Button(vdom.Disabled(len(list.items) < 2), vdom.OnClick(reverse), "reverse"),
	)
})

// TodoItem renders one todo. Props: "title", "done", "onToggle" and
// "onRemove".
var TodoItem = vdom.Define("TodoItem", func(s vdom.Scope, props vdom.Props) any {
	return vdom.Li(vdom.ClassIf(props.Bool("done"), "done"),
		vdom.Input(vdom.Type("checkbox"), vdom.Checked(props.Bool("done")), vdom.On("change", props["onToggle"])),
		vdom.Span(props.String("title")),
		vdom.Button(vdom.On("click", props["onRemove"]), "x"),
	)
})

// Nav switches pages on the location. Links navigate through the session,
// so the counter keeps its state while the user moves between pages.
var Nav = vdom.Define("Nav", func(s vdom.Scope, _ vdom.Props) any {
	location := hooks.UseLocation(s)
	path, _, _ := strings.Cut(location, "?")

	link := func(href, label string) vdom.Node {
		return server.Link(href, vdom.ClassIf(path == href, "active"), label)
	}

	var page vdom.Node
	switch path {
	case "/":
		page = vdom.H1("Home")
	case "/about":
		page = vdom.Div(vdom.H1("About"), vdom.P("Pages are rendered on the server and patched over a WebSocket."))
	case "/counter":
		page = Counter.New(vdom.Props{"start": 0})
	default:
		page = vdom.Div(vdom.H1("Not found"), vdom.P(path), server.Link("/", vdom.Prop("replace", true), "home"))
	}

	return vdom.Div(vdom.Class("nav"),
		vdom.Nav(link("/", "home"), " ", link("/about", "about"), " ", link("/counter", "counter")),
		vdom.Main(page),
	)
})
