// Package pipeline implements the long-running audio transcription pipeline:
// acquire a recording from the object store, probe its duration, cut it into
// overlapping bounded-size segments, transcribe the segments concurrently
// through a speech-to-text provider, and stitch the per-segment transcripts
// back into one document.
//
// The orchestrator drives the phases as a strictly forward state machine and
// reports progress to the job store. Progress writes and workspace cleanup
// are best-effort; every other failure is terminal for the job.
package pipeline
