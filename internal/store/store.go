package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	_ "modernc.org/sqlite"
)

// builder renders every repository statement in the SQLite dialect.
var builder = entsql.Dialect(dialect.SQLite)

// Store is the SQLite implementation of Repos. Tables are created or
// widened on Open, so a fresh path is a valid database.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequence
}

// pragmas run on the single pooled connection right after it opens.
var pragmas = []string{
	"journal_mode = WAL",
	"busy_timeout = 5000",
	"foreign_keys = ON",
	"synchronous = NORMAL",
}

// Open connects to the database at dsn, which may be a file path or
// ":memory:".
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A second connection would see a different :memory: database and
	// would not carry the pragmas.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	s, err := initStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func initStore(ctx context.Context, db *sql.DB) (*Store, error) {
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, "PRAGMA "+p); err != nil {
			return nil, fmt.Errorf("pragma %s: %w", p, err)
		}
	}
	drv := entsql.OpenDB(dialect.SQLite, db)
	m, err := schema.NewMigrate(drv, schema.WithDropIndex(true))
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := m.Create(ctx, tables()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	seq, err := newSequence(ctx, db)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, drv: drv, seq: seq}, nil
}

// DB exposes the handle for tests and ad hoc inspection.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.drv.Close() }

func (s *Store) Students() StudentRepo        { return &studentRepo{db: s.db} }
func (s *Store) Mistakes() MistakeRepo        { return &mistakeRepo{db: s.db} }
func (s *Store) Cards() CardRepo              { return &cardRepo{db: s.db} }
func (s *Store) Performance() PerformanceRepo { return &performanceRepo{db: s.db} }
func (s *Store) Curricula() CurriculumRepo    { return &curriculumRepo{db: s.db} }
func (s *Store) Feedback() FeedbackRepo       { return &feedbackRepo{db: s.db} }
func (s *Store) Plans() PlanRepo              { return &planRepo{db: s.db} }
func (s *Store) Trackers() TrackerRepo        { return &trackerRepo{db: s.db} }
func (s *Store) Events() EventRepo            { return &eventRepo{db: s.db, seq: s.seq} }

// DefaultDBPath is tutorloop.db under the XDG data directory, falling back
// to ~/.local/share. The directory is created if missing.
func DefaultDBPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	p := filepath.Join(dataHome, "tutorloop", "tutorloop.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the directory that will hold the file at path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
