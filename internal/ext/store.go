package ext

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store persists header summaries across runs, keyed by a hash of the
// header and manifest contents.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("summary cache path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("summary cache path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open summary cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping summary cache %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize summary cache schema %q: %w", cleanPath, err)
	}
	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Load returns the summary stored under key. The location of the returned
// summary is always the caller's, since equal contents may live in several places.
func (s *Store) Load(key, location string) (*Summary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var body string
	err := s.withRetry("load summary", func() error {
		return s.db.QueryRow(`SELECT body FROM summaries WHERE content_key = ?`, key).Scan(&body)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary Summary
	if err := yaml.Unmarshal([]byte(body), &summary); err != nil {
		return nil, false, fmt.Errorf("decode cached summary: %w", err)
	}
	summary.Location = location
	return &summary, true, nil
}

func (s *Store) Save(key string, summary *Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return s.withRetry("save summary", func() error {
		_, err := s.db.Exec(`
INSERT INTO summaries (content_key, location, body) VALUES (?, ?, ?)
ON CONFLICT(content_key) DO UPDATE SET location=excluded.location, body=excluded.body
`, key, summary.Location, string(body))
		return err
	})
}

// Count returns the number of cached summaries.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.withRetry("count summaries", func() error {
		return s.db.QueryRow(`SELECT COUNT(*) FROM summaries`).Scan(&n)
	})
	return n, err
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
