// Package pgs decodes Blu-ray Presentation Graphic Stream (.sup) subtitle
// data into typed segments and display sets.
//
// A stream is a sequence of functional segments, each prefixed by a header
// carrying the "PG" magic and 90 kHz presentation/decoding timestamps. The
// segment kinds are the Presentation Composition Segment (PCS), Window
// Definition Segment (WDS), Palette Definition Segment (PDS), Object
// Definition Segment (ODS) and the END segment that closes a display set.
package pgs
