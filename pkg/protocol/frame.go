package protocol

import (
	"errors"
	"io"
	"strconv"

	rerrors "github.com/vango-dev/reflow/internal/errors"
)

const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 6

	// MaxPayloadSize is the largest payload a frame may carry.
	MaxPayloadSize = DefaultMaxAllocation
)

// FrameType identifies what a transcript frame records.
type FrameType uint8

const (
	FrameStart    FrameType = 0x00 // Session metadata
	FrameTree     FrameType = 0x01 // Full Result tree
	FrameOps      FrameType = 0x02 // Op batch from one pass
	FrameEvent    FrameType = 0x03 // Inbound event
	FrameLocation FrameType = 0x04 // Location change
	FrameError    FrameType = 0x05 // Error report
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameStart:
		return "Start"
	case FrameTree:
		return "Tree"
	case FrameOps:
		return "Ops"
	case FrameEvent:
		return "Event"
	case FrameLocation:
		return "Location"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags are optional per-frame flags.
type FrameFlags uint8

const (
	FlagFatal FrameFlags = 0x01 // The error ended the session
	FlagFinal FrameFlags = 0x02 // Last frame of the transcript
)

// Has reports whether ff contains flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is a header plus payload.
//
// Wire format (6 byte header, big-endian length):
//
//	┌────────────┬────────────┬──────────────────────────┐
//	│ Frame Type │ Flags      │ Payload Length           │
//	│ (1 byte)   │ (1 byte)   │ (4 bytes)                │
//	└────────────┴────────────┴──────────────────────────┘
//	│ Payload (variable length)                          │
//	└────────────────────────────────────────────────────┘
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a frame with no flags.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode returns the frame including its header.
func (f *Frame) Encode() []byte {
	length := len(f.Payload)
	buf := make([]byte, FrameHeaderSize+length)
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	buf[2] = byte(length >> 24)
	buf[3] = byte(length >> 16)
	buf[4] = byte(length >> 8)
	buf[5] = byte(length)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return rerrors.New("E122").Wrap(ErrFrameTooLarge)
	}
	_, err := w.Write(f.Encode())
	return err
}

// ReadFrame reads one frame from r. It returns io.EOF when r is exhausted
// at a frame boundary and io.ErrUnexpectedEOF inside a frame.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	ft := FrameType(header[0])
	if ft > FrameError {
		return nil, rerrors.New("E121").WithDetail("frame type "+strconv.Itoa(int(ft))).Wrap(ErrInvalidFrameType)
	}
	length := int(header[2])<<24 | int(header[3])<<16 | int(header[4])<<8 | int(header[5])
	if length > MaxPayloadSize {
		return nil, rerrors.New("E122").Wrap(ErrFrameTooLarge)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &Frame{Type: ft, Flags: FrameFlags(header[1]), Payload: payload}, nil
}
