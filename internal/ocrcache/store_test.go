package ocrcache

import (
	"context"
	"errors"
	"testing"
)

func TestStoreAndLookup(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	langs := []string{"eng"}
	key := Key(langs, []byte("png-bytes"))

	if _, ok, err := store.Lookup(ctx, key); err != nil || ok {
		t.Fatalf("lookup before store: ok=%v err=%v", ok, err)
	}

	if err := store.Store(ctx, key, langs, "Hello there."); err != nil {
		t.Fatalf("Store: %v", err)
	}

	text, ok, err := store.Lookup(ctx, key)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || text != "Hello there." {
		t.Errorf("lookup: got (%q, %v)", text, ok)
	}

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 1 {
		t.Errorf("Len: got %d, want 1", n)
	}
}

func TestStoreOverwrite(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	key := Key([]string{"eng"}, []byte("img"))
	if err := store.Store(ctx, key, []string{"eng"}, "first"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := store.Store(ctx, key, []string{"eng"}, "second"); err != nil {
		t.Fatalf("Store overwrite: %v", err)
	}
	text, ok, err := store.Lookup(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Lookup: ok=%v err=%v", ok, err)
	}
	if text != "second" {
		t.Errorf("text: got %q, want %q", text, "second")
	}
}

func TestStoreEmptyText(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	key := Key([]string{"eng"}, []byte("blank"))
	if err := store.Store(ctx, key, []string{"eng"}, ""); err != nil {
		t.Fatalf("Store: %v", err)
	}
	text, ok, err := store.Lookup(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Lookup: ok=%v err=%v", ok, err)
	}
	if text != "" {
		t.Errorf("text: got %q, want empty", text)
	}
}

func TestKeyDependsOnLanguages(t *testing.T) {
	png := []byte("same-image")
	if Key([]string{"eng"}, png) == Key([]string{"deu"}, png) {
		t.Error("keys for different languages should differ")
	}
	if Key([]string{"eng"}, png) != Key([]string{"eng"}, png) {
		t.Error("key derivation should be deterministic")
	}
}

func TestOpenSecondInstanceBusy(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, err := Open(dir, nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	key := Key([]string{"eng"}, []byte("persisted"))

	store, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Store(ctx, key, []string{"eng"}, "survives reopen"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = Open(dir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	text, ok, err := store.Lookup(ctx, key)
	if err != nil || !ok || text != "survives reopen" {
		t.Fatalf("lookup after reopen: (%q, %v, %v)", text, ok, err)
	}
}
