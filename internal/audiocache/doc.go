// Package audiocache stores extracted 16 kHz mono WAV artifacts keyed by a
// fingerprint of the source file, so repeat runs over the same media skip
// audio extraction entirely.
package audiocache
