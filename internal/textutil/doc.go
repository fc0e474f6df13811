// Package textutil cleans up recognized subtitle text.
//
// Tesseract output carries artifacts that have no place in a subtitle
// document: stray whitespace, blank lines, and a handful of characters the
// engine habitually confuses on stylized subtitle fonts. CleanOCR normalizes
// a recognition result into presentable cue text.
package textutil
