package reconcile

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/reflow/pkg/pathtrie"
	"github.com/vango-dev/reflow/pkg/vdom"
)

// Context is the shared state of one reconciliation tree: the dirty set,
// the traversal path of the pass in progress and the location
// subscriptions.
//
// Invalidate and SetLocation may be called from any goroutine. Everything
// else runs on the goroutine driving the Scheduler.
type Context struct {
	mu        sync.Mutex
	dirty     *pathtrie.Trie[vdom.Key, struct{}]
	watchers  *pathtrie.Trie[vdom.Key, int]
	location  string
	navigator func(url string, replace bool)
	wake      chan struct{}

	// Owned by the pass in progress.
	path    vdom.Path
	pending *pathtrie.Trie[vdom.Key, struct{}]

	logger *slog.Logger
}

func newContext(wake chan struct{}, location string, navigator func(string, bool), logger *slog.Logger) *Context {
	return &Context{
		dirty:     pathtrie.New[vdom.Key, struct{}](vdom.CompareKeys),
		watchers:  pathtrie.New[vdom.Key, int](vdom.CompareKeys),
		location:  location,
		navigator: navigator,
		wake:      wake,
		logger:    logger,
	}
}

// Invalidate marks path dirty and wakes the scheduler. It never renders.
func (c *Context) Invalidate(path vdom.Path) {
	c.mu.Lock()
	c.dirty.Insert(path)
	c.mu.Unlock()
	c.signal()
}

func (c *Context) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Dirty reports whether any path is waiting for a pass.
func (c *Context) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.dirty.IsEmpty()
}

// takeDirty swaps the live dirty set for an empty one and returns the old
// set. Marks made during the pass land in the new set.
func (c *Context) takeDirty() *pathtrie.Trie[vdom.Key, struct{}] {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.dirty
	c.dirty = pathtrie.New[vdom.Key, struct{}](vdom.CompareKeys)
	return d
}

// clearMark removes the mark on path itself, leaving descendants marked.
func (c *Context) clearMark(path vdom.Path) {
	if c.pending != nil {
		c.pending.Delete(path)
	}
	c.mu.Lock()
	c.dirty.Delete(path)
	c.mu.Unlock()
}

// purge drops every mark at or below path.
func (c *Context) purge(path vdom.Path) {
	if c.pending != nil {
		c.pending.DeleteSubtree(path)
	}
	c.mu.Lock()
	c.dirty.DeleteSubtree(path)
	c.mu.Unlock()
}

func (c *Context) push(k vdom.Key) {
	c.path = append(c.path, k)
}

func (c *Context) pop() {
	c.path = c.path[:len(c.path)-1]
}

// Location returns the current logical location.
func (c *Context) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// SetLocation updates the location and marks every subscribed path dirty.
func (c *Context) SetLocation(location string) {
	c.mu.Lock()
	if c.location == location {
		c.mu.Unlock()
		return
	}
	c.location = location
	n := 0
	for p := range c.watchers.All() {
		c.dirty.Insert(p)
		n++
	}
	c.mu.Unlock()

	c.logger.Debug("location changed", "location", location, "watchers", n)
	if n > 0 {
		c.signal()
	}
}

func (c *Context) watchLocation(path vdom.Path) func() {
	p := path.Clone()
	c.mu.Lock()
	n, _ := c.watchers.Get(p)
	c.watchers.Set(p, n+1)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			n, ok := c.watchers.Get(p)
			switch {
			case !ok:
			case n <= 1:
				c.watchers.Delete(p)
			default:
				c.watchers.Set(p, n-1)
			}
		})
	}
}

func (c *Context) navigate(url string, replace bool) {
	c.SetLocation(url)
	if c.navigator != nil {
		c.navigator(url, replace)
	}
}

// scope is the vdom.Scope handed to a render function.
type scope struct {
	ctx   *Context
	path  vdom.Path
	alloc *refAllocator
}

func (s *scope) NextRef() *vdom.Ref {
	if s.alloc == nil {
		panic("reconcile: NextRef called outside of render")
	}
	return s.alloc.next(s.path)
}

func (s *scope) Path() vdom.Path {
	return s.path.Clone()
}

func (s *scope) Invalidate(path vdom.Path) {
	s.ctx.Invalidate(path)
}

func (s *scope) Location() string {
	return s.ctx.Location()
}

func (s *scope) WatchLocation(path vdom.Path) func() {
	return s.ctx.watchLocation(path)
}

func (s *scope) Navigate(url string, replace bool) {
	s.ctx.navigate(url, replace)
}

// refAllocator hands out refs for one activation. On a first render it
// creates them; on later renders it replays the previous slice.
type refAllocator struct {
	refs   []*vdom.Ref
	n      int
	replay bool
}

func (a *refAllocator) next(path vdom.Path) *vdom.Ref {
	if a.replay {
		if a.n >= len(a.refs) {
			panic(fatal("E101", path, ErrRefCountMismatch))
		}
		r := a.refs[a.n]
		a.n++
		return r
	}
	r := &vdom.Ref{}
	a.refs = append(a.refs, r)
	a.n++
	return r
}

func (a *refAllocator) finish(path vdom.Path) {
	if a.replay && a.n < len(a.refs) {
		panic(fatal("E102", path, ErrRefCountMismatch))
	}
}
