package transcript

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	rerrors "github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/tree"
)

// Step is one decoded frame of a transcript, together with the tree as
// the client saw it after the frame.
type Step struct {
	// Index is the frame's position in the transcript.
	Index int

	// Type is the frame type.
	Type protocol.FrameType

	// Tree is the reconstructed client tree. It is nil until the first
	// FrameTree.
	Tree tree.Node

	// Start is set for FrameStart.
	Start protocol.Start

	// Ops is set for FrameOps.
	Ops []tree.Op

	// Event is set for FrameEvent.
	Event tree.Event

	// Location is set for FrameLocation.
	Location string

	// Error and Fatal are set for FrameError.
	Error protocol.ErrorInfo
	Fatal bool
}

// Replay decodes the transcript in r frame by frame, applying op batches
// to the tree the way the client does, and calls fn for each step.
// It stops at the first error from fn.
func Replay(r io.Reader, fn func(Step) error) error {
	var current tree.Node
	for i := 0; ; i++ {
		f, err := protocol.ReadFrame(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return rerrors.FromError(err, "E121")
		}

		step := Step{Index: i, Type: f.Type}
		switch f.Type {
		case protocol.FrameStart:
			step.Start, err = protocol.DecodeStart(f.Payload)
		case protocol.FrameTree:
			current, err = protocol.DecodeTree(f.Payload)
		case protocol.FrameOps:
			step.Ops, err = protocol.DecodeOps(f.Payload)
			if err == nil {
				if current == nil {
					err = rerrors.New("E121").WithDetail("ops before the first tree")
					break
				}
				if current, err = tree.Apply(current, step.Ops); err != nil {
					err = rerrors.New("E121").WithDetail(fmt.Sprintf("frame %d", i)).Wrap(err)
				}
			}
		case protocol.FrameEvent:
			step.Event, err = protocol.DecodeEvent(f.Payload)
		case protocol.FrameLocation:
			step.Location, err = protocol.DecodeLocation(f.Payload)
		case protocol.FrameError:
			step.Error, err = protocol.DecodeError(f.Payload)
			step.Fatal = f.Flags.Has(protocol.FlagFatal)
		}
		if err != nil {
			return err
		}

		step.Tree = current
		if err := fn(step); err != nil {
			return err
		}
	}
}

// ReplayBytes replays an in-memory transcript.
func ReplayBytes(data []byte, fn func(Step) error) error {
	return Replay(bytes.NewReader(data), fn)
}

// Final returns the client tree at the end of a transcript.
func Final(data []byte) (tree.Node, error) {
	var last tree.Node
	err := ReplayBytes(data, func(s Step) error {
		last = s.Tree
		return nil
	})
	return last, err
}
