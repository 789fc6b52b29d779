package transcript

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/tree"
)

// ErrClosed is returned when recording into a closed Recorder.
var ErrClosed = errors.New("transcript: recorder closed")

// Recorder buffers the frames of one session and hands the transcript to
// a Store when closed. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	id     string
	store  Store
	buf    bytes.Buffer
	frames int
	closed bool
}

// NewRecorder creates a Recorder that stores into store under id and
// writes the FrameStart frame.
func NewRecorder(store Store, id, location string, at time.Time) *Recorder {
	r := &Recorder{id: id, store: store}
	r.write(protocol.FrameStart, 0, protocol.EncodeStart(protocol.Start{
		SessionID: id,
		Location:  location,
		Time:      at,
	}))
	return r
}

// ID returns the transcript ID.
func (r *Recorder) ID() string {
	return r.id
}

// Frames returns the number of frames recorded so far.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *Recorder) write(ft protocol.FrameType, flags protocol.FrameFlags, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if err := protocol.WriteFrame(&r.buf, &protocol.Frame{Type: ft, Flags: flags, Payload: payload}); err != nil {
		return err
	}
	r.frames++
	return nil
}

// Tree records a full Result tree.
func (r *Recorder) Tree(root tree.Node) error {
	return r.write(protocol.FrameTree, 0, protocol.EncodeTree(root))
}

// Ops records the op batch of one pass.
func (r *Recorder) Ops(ops []tree.Op) error {
	return r.write(protocol.FrameOps, 0, protocol.EncodeOps(ops))
}

// Event records an inbound event.
func (r *Recorder) Event(ev tree.Event) error {
	payload, err := protocol.EncodeEvent(ev)
	if err != nil {
		return err
	}
	return r.write(protocol.FrameEvent, 0, payload)
}

// Location records a location change.
func (r *Recorder) Location(url string) error {
	return r.write(protocol.FrameLocation, 0, protocol.EncodeLocation(url))
}

// Error records err. fatal marks an error that ended the session.
func (r *Recorder) Error(err error, fatal bool) error {
	var flags protocol.FrameFlags
	if fatal {
		flags = protocol.FlagFatal
	}
	return r.write(protocol.FrameError, flags, protocol.EncodeError(err))
}

// Bytes returns a copy of the transcript recorded so far.
func (r *Recorder) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return bytes.Clone(r.buf.Bytes())
}

// Close stops recording and stores the transcript. Closing twice is a
// no-op.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	data := bytes.Clone(r.buf.Bytes())
	r.mu.Unlock()

	return r.store.Put(ctx, r.id, data)
}
