package ocr

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// RecognizeAll runs OCR over images using up to workers parallel engines
// and returns the recognized text in input order. The first engine or
// recognition error cancels the remaining work.
func RecognizeAll(ctx context.Context, newEngine EngineFactory, images [][]byte, workers int) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(images) {
		workers = len(images)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	texts := make([]string, len(images))
	jobs := make(chan int)

	var mu sync.Mutex
	var firstErr error
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine, err := newEngine()
			if err != nil {
				fail(fmt.Errorf("create ocr engine: %w", err))
				return
			}
			defer engine.Close()
			for idx := range jobs {
				text, err := engine.Recognize(ctx, images[idx])
				if err != nil {
					fail(fmt.Errorf("image %d: %w", idx, err))
					return
				}
				texts[idx] = text
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := range images {
			select {
			case jobs <- idx:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}
