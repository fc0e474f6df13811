// Package main hosts the sup2srt CLI entrypoint and command graph.
//
// The Cobra-based command tree converts PGS subtitle streams into SRT
// documents, inspects stream structure, dumps composed subtitle bitmaps, and
// scaffolds configuration. Running the binary without a subcommand converts
// standard input to standard output, so it works as a pipeline filter.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
