// Package document assembles scored, tagged chunks into the final document
// model and serializes it.
//
// Two encodings are supported: a structured text format for human reading
// with a metadata header and one section per chunk, and a key-value (JSON)
// format mirroring the model field for field. Both round-trip losslessly
// apart from free-text whitespace.
package document
