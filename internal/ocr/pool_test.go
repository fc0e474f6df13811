package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

type fakeEngine struct {
	recognize func(ctx context.Context, png []byte) (string, error)
	closed    *atomic.Int32
}

func (e *fakeEngine) Recognize(ctx context.Context, png []byte) (string, error) {
	return e.recognize(ctx, png)
}

func (e *fakeEngine) Close() error {
	if e.closed != nil {
		e.closed.Add(1)
	}
	return nil
}

func TestRecognizeAllPreservesOrder(t *testing.T) {
	images := make([][]byte, 20)
	for i := range images {
		images[i] = []byte(fmt.Sprintf("image-%d", i))
	}

	factory := func() (Engine, error) {
		return &fakeEngine{recognize: func(_ context.Context, png []byte) (string, error) {
			return "text:" + string(png), nil
		}}, nil
	}

	texts, err := RecognizeAll(context.Background(), factory, images, 4)
	if err != nil {
		t.Fatalf("RecognizeAll: %v", err)
	}
	if len(texts) != len(images) {
		t.Fatalf("got %d texts, want %d", len(texts), len(images))
	}
	for i, text := range texts {
		want := fmt.Sprintf("text:image-%d", i)
		if text != want {
			t.Errorf("texts[%d]: got %q, want %q", i, text, want)
		}
	}
}

func TestRecognizeAllEmptyBatch(t *testing.T) {
	factory := func() (Engine, error) {
		t.Fatal("factory should not be called for an empty batch")
		return nil, nil
	}
	texts, err := RecognizeAll(context.Background(), factory, nil, 4)
	if err != nil || texts != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", texts, err)
	}
}

func TestRecognizeAllClosesEngines(t *testing.T) {
	var closed atomic.Int32
	factory := func() (Engine, error) {
		return &fakeEngine{
			recognize: func(context.Context, []byte) (string, error) { return "x", nil },
			closed:    &closed,
		}, nil
	}
	images := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}
	if _, err := RecognizeAll(context.Background(), factory, images, 2); err != nil {
		t.Fatalf("RecognizeAll: %v", err)
	}
	if got := closed.Load(); got != 2 {
		t.Errorf("closed engines: got %d, want 2", got)
	}
}

func TestRecognizeAllPropagatesRecognitionError(t *testing.T) {
	wantErr := errors.New("boom")
	factory := func() (Engine, error) {
		return &fakeEngine{recognize: func(_ context.Context, png []byte) (string, error) {
			if string(png) == "bad" {
				return "", wantErr
			}
			return "ok", nil
		}}, nil
	}
	images := [][]byte{[]byte("a"), []byte("bad"), []byte("c")}
	if _, err := RecognizeAll(context.Background(), factory, images, 2); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestRecognizeAllPropagatesFactoryError(t *testing.T) {
	wantErr := errors.New("no tesseract")
	factory := func() (Engine, error) { return nil, wantErr }
	images := [][]byte{[]byte("a")}
	if _, err := RecognizeAll(context.Background(), factory, images, 1); !errors.Is(err, wantErr) {
		t.Fatalf("expected factory error, got %v", err)
	}
}

func TestRecognizeAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factory := func() (Engine, error) {
		return &fakeEngine{recognize: func(ctx context.Context, _ []byte) (string, error) {
			return "", ctx.Err()
		}}, nil
	}
	images := [][]byte{[]byte("a"), []byte("b")}
	if _, err := RecognizeAll(ctx, factory, images, 1); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
