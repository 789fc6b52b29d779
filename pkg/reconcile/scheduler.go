package reconcile

import (
	"context"
	"iter"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	rerrors "github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/pathtrie"
	"github.com/vango-dev/reflow/pkg/tree"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// TracerName is the instrumentation name used for spans.
const TracerName = "github.com/vango-dev/reflow/pkg/reconcile"

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the initial location.
func WithLocation(location string) Option {
	return func(s *Scheduler) {
		s.location = location
	}
}

// WithNavigator sets the function called when a render function or a
// handler navigates. It runs after the location has been updated.
func WithNavigator(fn func(url string, replace bool)) Option {
	return func(s *Scheduler) {
		s.navigator = fn
	}
}

// WithTracer sets the tracer used for update passes.
func WithTracer(t trace.Tracer) Option {
	return func(s *Scheduler) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Scheduler owns a mounted tree and runs update passes over the paths
// marked dirty since the previous pass.
//
// Render, Rerender, Invoke, Dispatch and Close are serialized. Event
// handlers run while Invoke holds the scheduler, so they must not call back
// into it; setters and navigation are fine.
type Scheduler struct {
	mu sync.Mutex

	root      vdom.Node
	ctx       *Context
	wake      chan struct{}
	location  string
	navigator func(url string, replace bool)

	state    any
	result   tree.Node
	rendered bool
	err      error

	logger *slog.Logger
	tracer trace.Tracer
}

// New creates a Scheduler for root. root is coerced like a render result.
func New(root any, opts ...Option) *Scheduler {
	s := &Scheduler{
		root:     vdom.Coerce(root),
		wake:     make(chan struct{}, 1),
		location: "/",
		logger:   slog.Default(),
		tracer:   otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "reconcile")
	s.ctx = newContext(s.wake, s.location, s.navigator, s.logger)
	return s
}

// Wake returns the channel signalled whenever a path is marked dirty or the
// location changes. It holds at most one pending signal.
func (s *Scheduler) Wake() <-chan struct{} {
	return s.wake
}

// Render mounts the root under a fresh Context and returns the full
// Result tree. A previously mounted tree is unmounted first.
func (s *Scheduler) Render() (tree.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rendered {
		if err := s.unmountLocked(); err != nil {
			s.logger.Warn("unmount before render failed", "error", err)
		}
	}

	s.ctx = newContext(s.wake, s.ctx.Location(), s.navigator, s.logger)
	c := s.ctx

	start := time.Now()
	var (
		st  any
		res tree.Node
	)
	if err := c.protect(func() { st, res = c.render(s.root) }); err != nil {
		s.err = err
		s.logger.Error("render failed", "error", err)
		return nil, err
	}
	s.state, s.result, s.rendered, s.err = st, res, true, nil
	s.logger.Debug("rendered", "duration", time.Since(start))
	return res, nil
}

// Rerender runs one update pass. See RerenderContext.
func (s *Scheduler) Rerender() (tree.Node, bool, error) {
	return s.RerenderContext(context.Background())
}

// RerenderContext runs one update pass over the paths marked dirty since
// the previous pass. It reports false when nothing was dirty, in which case
// the returned tree is the current one. Marks made while the pass runs are
// left for the next pass.
//
// After an error the scheduler is stopped and every later call returns the
// same error.
func (s *Scheduler) RerenderContext(ctx context.Context) (tree.Node, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, false, s.err
	}
	if !s.rendered {
		return nil, false, rerrors.New("E107").Wrap(ErrNotRendered)
	}

	c := s.ctx
	pending := c.takeDirty()
	if pending.IsEmpty() {
		return s.result, false, nil
	}

	_, span := s.tracer.Start(ctx, "reflow.rerender",
		trace.WithAttributes(attribute.Int("reflow.dirty_paths", pending.Len())),
	)
	defer span.End()
	start := time.Now()

	var (
		st       any
		res      tree.Node
		rendered int
	)
	err := c.protect(func() { st, res, rendered = s.pass(pending) })
	if err != nil {
		s.err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("update pass failed", "error", err)
		return nil, false, err
	}

	s.state, s.result = st, res
	span.SetAttributes(attribute.Int("reflow.rerendered", rendered))
	span.SetStatus(codes.Ok, "")
	s.logger.Debug("update pass",
		"dirty", pending.Len(),
		"rerendered", rendered,
		"duration", time.Since(start),
	)
	return res, true, nil
}

type frame struct {
	key    vdom.Key
	node   vdom.Node
	state  any
	result tree.Node
}

// pass visits the pending paths in order, keeping a stack of extracted
// ancestors so that paths sharing a prefix are reached without climbing
// back to the root. It returns the new root state and result.
func (s *Scheduler) pass(pending *pathtrie.Trie[vdom.Key, struct{}]) (any, tree.Node, int) {
	c := s.ctx
	c.pending = pending
	c.path = c.path[:0]

	node, st, res := s.root, s.state, s.result
	var stack []frame

	ascend := func() {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pst, pres, err := inject(f.node, f.state, f.result, f.key, st, res)
		if err != nil {
			panic(fatalError{err: err})
		}
		node, st, res = f.node, pst, pres
		c.pop()
	}

	n := 0
	for _, p := range pending.Paths() {
		path := vdom.Path(p)
		if !pending.Contains(path) {
			// cleared or purged earlier in this pass
			continue
		}
		for len(stack) > 0 && !path.HasPrefix(c.path) {
			ascend()
		}

		reached := true
		for _, k := range path[len(c.path):] {
			cn, cst, cres, err := extract(node, st, res, k)
			if err != nil {
				s.logger.Debug("dirty path skipped", "path", path, "error", err)
				reached = false
				break
			}
			stack = append(stack, frame{key: k, node: node, state: st, result: res})
			c.push(k)
			node, st, res = cn, cst, cres
		}
		if !reached {
			continue
		}

		pending.Delete(path)
		st, res = c.rerender(node, st, res)
		n++
	}
	for len(stack) > 0 {
		ascend()
	}

	c.pending = nil
	return st, res, n
}

// Results returns the sequence of Result trees: the full render first, then
// one tree after each update pass. It blocks between passes until the tree
// is woken or ctx is done. Ranging over it again restarts from a fresh
// render. The sequence ends after the first error.
func (s *Scheduler) Results(ctx context.Context) iter.Seq2[tree.Node, error] {
	return func(yield func(tree.Node, error) bool) {
		res, err := s.Render()
		if !yield(res, err) || err != nil {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
			}
			res, changed, err := s.RerenderContext(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !changed {
				continue
			}
			if !yield(res, nil) {
				return
			}
		}
	}
}

// Invoke delivers ev to the handler found at ev.Path in the current Result
// tree. A path that does not resolve, or an element without a handler for
// the event, returns an error wrapping ErrAddress. A panicking handler
// returns an error wrapping ErrHandlerPanic; the tree keeps running.
func (s *Scheduler) Invoke(ev tree.Event) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.rendered {
		return rerrors.New("E107").Wrap(ErrNotRendered)
	}

	n, ok := tree.Lookup(s.result, ev.Path)
	if !ok {
		return addressError(indexPath(ev.Path), "")
	}
	el, ok := n.(*tree.Element)
	if !ok {
		return addressError(indexPath(ev.Path), "event target is text")
	}
	h, ok := el.Props[ev.HandlerProp()].(tree.Handler)
	if !ok {
		return addressError(indexPath(ev.Path), "no "+ev.HandlerProp()+" handler on <"+el.Tag+">")
	}

	defer func() {
		if r := recover(); r != nil {
			detail := "handler for " + ev.Type + " on <" + el.Tag + "> panicked"
			var owner vdom.Path
			if rh, ok := h.(*Handler); ok {
				owner = rh.Path()
				detail += " (element " + owner.String() + ")"
			}
			err = rerrors.New("E106").
				WithPath(indexPath(ev.Path)).
				WithDetail(detail).
				WithStack(debug.Stack()).
				Wrap(ErrHandlerPanic)
			s.logger.Error("event handler panicked", "event", ev.Type, "path", ev.Path, "element", owner, "panic", r)
		}
	}()
	h.HandleEvent(ev.VDOM())
	return nil
}

// Dispatch runs fn serialized with passes and event handlers. Work started
// outside the tree, such as a timer or a background fetch, uses it to touch
// state that render functions read. Like a handler, fn must not call back
// into the Scheduler. A panic in fn is returned as an error wrapping
// ErrHandlerPanic.
func (s *Scheduler) Dispatch(fn func()) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = rerrors.New("E106").
				WithDetail("dispatched function panicked").
				WithStack(debug.Stack()).
				Wrap(ErrHandlerPanic)
			s.logger.Error("dispatched function panicked", "panic", r)
		}
	}()
	fn()
	return nil
}

// Result returns the current Result tree, or nil before Render.
func (s *Scheduler) Result() tree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Location returns the current location.
func (s *Scheduler) Location() string {
	s.mu.Lock()
	c := s.ctx
	s.mu.Unlock()
	return c.Location()
}

// SetLocation changes the location, marking every component that reads it
// dirty. The change is picked up by the next pass.
func (s *Scheduler) SetLocation(location string) {
	s.mu.Lock()
	c := s.ctx
	s.mu.Unlock()
	c.SetLocation(location)
}

// Dirty reports whether a pass is pending.
func (s *Scheduler) Dirty() bool {
	s.mu.Lock()
	c := s.ctx
	s.mu.Unlock()
	return c.Dirty()
}

// Close unmounts the tree, running every ref cleanup. Closing an unmounted
// scheduler is a no-op.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rendered {
		return nil
	}
	return s.unmountLocked()
}

func (s *Scheduler) unmountLocked() error {
	c := s.ctx
	c.path = c.path[:0]
	err := c.protect(func() { c.unmount(s.root, s.state) })
	s.state, s.result, s.rendered = nil, nil, false
	c.takeDirty()
	return err
}

// protect runs fn, converting a panic into an error. Invariant violations
// come back as their coded error; anything else is a RenderError.
func (c *Context) protect(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if f, ok := r.(fatalError); ok {
			err = f.err
			return
		}
		stack := debug.Stack()
		err = newRenderError(c.path.Clone(), r, stack)
		c.logger.Error("render panicked", "path", c.path, "panic", r)
	}()
	fn()
	return nil
}

func indexPath(p []int) string {
	b := make([]byte, 0, 2*len(p)+1)
	for _, i := range p {
		b = append(b, '/')
		b = strconv.AppendInt(b, int64(i), 10)
	}
	if len(b) == 0 {
		return "/"
	}
	return string(b)
}
