// Package logging wraps log/slog with the handlers and helpers used across
// sup2srt. Logs default to stderr because stdout carries the generated SRT
// document.
package logging
