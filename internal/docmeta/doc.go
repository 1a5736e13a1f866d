// Package docmeta derives retrieval metadata — keywords, entities, and topic
// tags — from chunk text using deterministic lexical heuristics. There is
// deliberately no statistical model here: every output is reproducible from
// the input text alone.
package docmeta
