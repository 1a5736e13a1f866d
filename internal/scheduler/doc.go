// Package scheduler drives batch transcription: a fixed-size worker pool
// pulls pending files from the job ledger and runs each through the full
// extract, transcribe, chunk, and assemble pipeline.
//
// The ledger is the only shared-mutable state. Workers never write it
// directly; they report transitions over a channel to a single coordinator
// goroutine, which serializes every update. One file's failure never stops
// the batch — the lone exception is a model load error, which no later file
// could survive either, so it aborts the whole run. Cancellation stops
// workers from pulling new files but lets in-flight files finish.
package scheduler
