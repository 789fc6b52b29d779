// Package protocol defines the formats reflow speaks.
//
// # Client Messages
//
// The browser and the server exchange JSON text messages over a WebSocket.
// The client sends one event per message:
//
//	["click", 0, 1, {}]
//
// an event type, the index path of the target element in the flattened
// tree below the mount element, and an optional payload object. ParseEvent
// validates and decodes it.
//
// The server answers with a Message: the ops of a rendering pass followed
// by navigation actions, all in one array:
//
//	[["replace", 0, 1, " count: 2 "], ["push_url", "/about"]]
//
// # Transcripts
//
// Sessions can be recorded as a sequence of binary frames. Each frame has
// a 6 byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameStart (0x00): session ID, initial location, start time
//   - FrameTree (0x01): full tree after the first render
//   - FrameOps (0x02): op batch of one pass
//   - FrameEvent (0x03): inbound event
//   - FrameLocation (0x04): location change
//   - FrameError (0x05): error, FlagFatal when it ended the session
//
// # Encoding
//
// Payloads use the Encoder and Decoder in this package:
//
//   - Varint: compact encoding for lengths, indices and counts
//   - ZigZag: signed integers encoded as unsigned varints
//   - Length-prefixed: strings and byte arrays prefixed with varint length
//   - Big-endian: fixed-width integers (uint32, uint64)
//
// Decoding is bounded: strings are capped at DefaultMaxAllocation, lists at
// MaxCollectionCount and trees at MaxNodeDepth.
package protocol
