package ocrcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"sup2srt/internal/logging"
)

// ErrBusy is returned when another process holds the cache lock.
var ErrBusy = errors.New("ocrcache: cache is locked by another process")

// Store is an SQLite-backed OCR result cache.
type Store struct {
	db     *sql.DB
	lock   *flock.Flock
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the cache database in dir. The directory
// is created when missing. A file lock serializes access across processes;
// Open fails with ErrBusy instead of blocking when the lock is taken.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	logger = logging.NewComponentLogger(logger, "ocrcache")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, "cache.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, ErrBusy
	}

	dbPath := filepath.Join(dir, "ocrcache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: dbPath, logger: logger}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS ocr_results (
        content_hash TEXT PRIMARY KEY,
        languages TEXT NOT NULL,
        text TEXT NOT NULL,
        created_at TEXT NOT NULL
    )`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply cache schema: %w", err)
	}
	return nil
}

// Key derives the cache key for an image recognized with the given
// languages.
func Key(languages []string, png []byte) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(languages, "+")))
	h.Write([]byte{0})
	h.Write(png)
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached text for key. ok is false on a miss.
func (s *Store) Lookup(ctx context.Context, key string) (text string, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT text FROM ocr_results WHERE content_hash = ?`, key)
	switch err := row.Scan(&text); {
	case err == nil:
		return text, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	default:
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}
}

// Store records recognized text for key. Empty text is stored too; knowing
// a bitmap holds no readable text is as valuable as the text itself.
func (s *Store) Store(ctx context.Context, key string, languages []string, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ocr_results (content_hash, languages, text, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(content_hash) DO UPDATE SET text = excluded.text`,
		key,
		strings.Join(languages, "+"),
		text,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Len reports the number of cached entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ocr_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

// Close releases the database and the cache lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
