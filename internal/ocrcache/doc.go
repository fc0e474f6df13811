// Package ocrcache persists recognized subtitle text keyed by bitmap
// content. The same subtitle bitmaps recur across episodes of a series, so
// caching OCR output avoids re-running Tesseract on identical frames.
package ocrcache
