package vdom

// Ref is a persistent slot owned by a Component instance. Refs are handed
// out in allocation order; the n-th ref requested during one activation is
// the same object as the n-th ref requested during every later activation.
type Ref struct {
	Value any

	initialized bool
	cleanup     func()
}

// Initialized reports whether Init has been called.
func (r *Ref) Initialized() bool {
	return r.initialized
}

// Init stores the first value of the ref.
func (r *Ref) Init(v any) {
	r.Value = v
	r.initialized = true
}

// OnCleanup registers fn to run when the owning Component is unmounted.
// A later registration replaces an earlier one.
func (r *Ref) OnCleanup(fn func()) {
	r.cleanup = fn
}

// Cleanup runs the registered cleanup, at most once.
func (r *Ref) Cleanup() {
	if fn := r.cleanup; fn != nil {
		r.cleanup = nil
		fn()
	}
}

// Scope is the view a render function has of the reconciler while it runs.
// It is only valid for the duration of the render call; hooks capture what
// they need from it.
type Scope interface {
	// NextRef allocates the next ref on first render and recalls it on
	// every later render.
	NextRef() *Ref

	// Path returns the path of the Component being rendered.
	Path() Path

	// Invalidate marks path dirty and wakes the scheduler. It is safe to
	// call from any goroutine and never renders synchronously.
	Invalidate(path Path)

	// Location returns the current logical location (URL path).
	Location() string

	// WatchLocation registers path as depending on the location. The
	// returned func releases the registration.
	WatchLocation(path Path) (release func())

	// Navigate moves the tree to url. When replace is true the client
	// replaces its current history entry instead of pushing one.
	Navigate(url string, replace bool)
}
