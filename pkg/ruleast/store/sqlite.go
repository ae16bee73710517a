package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists rules to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db       *sql.DB
	mu       sync.RWMutex
	closed   bool
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithCompression stores trees zstd-compressed. Rows written without
// compression remain readable.
func WithCompression() SQLiteOption {
	return func(s *SQLiteStore) {
		s.compress = true
	}
}

// NewSQLiteStore creates a new SQLite rule store.
// The path should be a file path (e.g., "./rules.db") or ":memory:" for testing.
func NewSQLiteStore(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	s := &SQLiteStore{}
	for _, opt := range opts {
		opt(s)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	s.encoder, s.decoder = enc, dec

	db, err := sql.Open("sqlite", path)
	if err != nil {
		s.closeCodecs()
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each :memory: connection is a separate database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		s.closeCodecs()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rules (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL,
			size INTEGER NOT NULL,
			compressed INTEGER NOT NULL,
			tree BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		s.closeCodecs()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_rules_created_at
		ON rules(created_at)
	`); err != nil {
		db.Close()
		s.closeCodecs()
		return nil, fmt.Errorf("create index: %w", err)
	}

	s.db = db
	return s, nil
}

func (s *SQLiteStore) closeCodecs() {
	s.encoder.Close()
	s.decoder.Close()
}

// Save implements Store.
func (s *SQLiteStore) Save(r Rule) error {
	if r.ID == "" {
		return ErrInvalidRule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	blob, compressed := r.Tree, 0
	if s.compress {
		blob, compressed = s.encoder.EncodeAll(r.Tree, nil), 1
	}
	if blob == nil {
		blob = []byte{}
	}

	_, err := s.db.Exec(`
		INSERT INTO rules (id, name, text, created_at, size, compressed, tree)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			text = excluded.text,
			size = excluded.size,
			compressed = excluded.compressed,
			tree = excluded.tree
	`, r.ID, r.Name, r.Text, r.CreatedAt.UTC().Format(timeLayout), len(r.Tree), compressed, blob)
	if err != nil {
		return fmt.Errorf("save rule: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(id string) (Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Rule{}, ErrStoreClosed
	}

	var (
		r          Rule
		createdAt  string
		compressed int
		blob       []byte
	)
	err := s.db.QueryRow(`
		SELECT id, name, text, created_at, compressed, tree FROM rules
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &r.Text, &createdAt, &compressed, &blob)

	if errors.Is(err, sql.ErrNoRows) {
		return Rule{}, ErrNotFound
	}
	if err != nil {
		return Rule{}, fmt.Errorf("load rule: %w", err)
	}

	r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	r.Tree = blob
	if compressed != 0 {
		if r.Tree, err = s.decoder.DecodeAll(blob, nil); err != nil {
			return Rule{}, fmt.Errorf("decompress rule %s: %w", id, err)
		}
	}
	return r, nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, name, text, created_at, size
		FROM rules
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var info Info
		var createdAt string
		if err := rows.Scan(&info.ID, &info.Name, &info.Text, &createdAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scan rule info: %w", err)
		}
		info.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	res, err := s.db.Exec(`DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	s.closeCodecs()
	return s.db.Close()
}
