// Package transcript records sessions and replays them.
//
// A Recorder captures the frames of one session (the start metadata, the
// first full tree, every op batch, inbound events, location changes and
// errors) in the binary format defined by package protocol. On Close the
// transcript is handed to a Store:
//
//	store, _ := transcript.NewFileStore("transcripts")
//	rec := transcript.NewRecorder(store, sessionID, "/", time.Now())
//	rec.Tree(result)
//	rec.Ops(ops)
//	rec.Close(ctx)
//
// FileStore keeps one file per transcript; S3Store keeps one object per
// transcript under a key prefix.
//
// Replay decodes a transcript and re-applies its op batches the way the
// client does, so the tree of every step is what the browser displayed.
package transcript
