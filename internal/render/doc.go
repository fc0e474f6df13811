// Package render composes decoded PGS display sets into timed RGBA subtitle
// bitmaps and prepares them for OCR or export.
package render
