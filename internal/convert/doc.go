// Package convert wires the conversion pipeline: PGS decoding, display set
// composition, OCR with optional result caching, and SRT assembly.
package convert
