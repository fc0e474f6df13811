package ocr

import "context"

// Engine recognizes text in a single PNG-encoded image. Engines are not
// safe for concurrent use; the pool gives each worker its own instance.
type Engine interface {
	Recognize(ctx context.Context, png []byte) (string, error)
	Close() error
}

// EngineFactory creates a fresh engine for a pool worker.
type EngineFactory func() (Engine, error)
