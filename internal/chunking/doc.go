// Package chunking splits transcripts into retrieval-sized document chunks.
//
// Three interchangeable strategies share one contract: every strategy consumes
// the ordered segment sequence, never reorders or drops text, and emits chunks
// whose core texts concatenate back to the original transcript text. Overlap
// between adjacent chunks is carried as a word-aligned prefix so downstream
// search gets context without breaking the round-trip property.
package chunking
