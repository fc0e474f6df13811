// Package ocr recognizes text in subtitle bitmaps. The production engine
// wraps Tesseract through gosseract; the pool fans a batch of images out to
// one engine instance per worker.
package ocr
