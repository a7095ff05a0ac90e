// Package sqlite implements store.Store on a local SQLite database with
// FTS5 full-text indexes. The FTS tables use the trigram tokenizer so that
// text without word boundaries can be searched by substring; queries shorter
// than a trigram, or rejected by the FTS5 parser, fall back to LIKE.
//
// FTS5 needs mattn/go-sqlite3 built with the sqlite_fts5 tag. Without it the
// store still works, searching with LIKE only; a database created by an
// FTS5 build is reopened with its sync triggers dropped.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-sqlite3"

	"github.com/MikeSquared-Agency/faqbase/internal/store"
)

// minTrigramQuery is the shortest term the trigram tokenizer can match.
const minTrigramQuery = 3

// driverName registers go-sqlite3 with the normalize_question SQL function.
const driverName = "sqlite3_faqbase"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("normalize_question", store.NormalizeQuestion, true)
		},
	})
}

type Store struct {
	db     *sql.DB
	fts    bool
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// New opens or creates the database at path and ensures the schema exists.
func New(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open(driverName, path+sep+"_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("close database", "error", err)
	}
}

// FullText reports whether FTS5 indexes are available.
func (s *Store) FullText() bool {
	return s.fts
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS faqs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		category TEXT,
		tags TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		view_count INTEGER DEFAULT 0,
		helpful_count INTEGER DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_faqs_category ON faqs(category)`,
	`CREATE TABLE IF NOT EXISTS search_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		found INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS admin_settings (
		id INTEGER PRIMARY KEY,
		password_hash TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT,
		tags TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// ftsIndex is one FTS5 table over a content table and the triggers that
// keep it in sync.
type ftsIndex struct {
	name     string
	create   string
	triggers map[string]string
}

var ftsIndexes = []ftsIndex{
	{
		name: "faqs_fts",
		create: `CREATE VIRTUAL TABLE faqs_fts USING fts5(
			question, answer, category, tags,
			content='faqs', content_rowid='id', tokenize='trigram'
		)`,
		triggers: map[string]string{
			"faqs_fts_insert": `CREATE TRIGGER IF NOT EXISTS faqs_fts_insert AFTER INSERT ON faqs BEGIN
				INSERT INTO faqs_fts(rowid, question, answer, category, tags)
				VALUES (new.id, new.question, new.answer, new.category, new.tags);
			END`,
			"faqs_fts_delete": `CREATE TRIGGER IF NOT EXISTS faqs_fts_delete AFTER DELETE ON faqs BEGIN
				INSERT INTO faqs_fts(faqs_fts, rowid, question, answer, category, tags)
				VALUES ('delete', old.id, old.question, old.answer, old.category, old.tags);
			END`,
			"faqs_fts_update": `CREATE TRIGGER IF NOT EXISTS faqs_fts_update AFTER UPDATE OF question, answer, category, tags ON faqs BEGIN
				INSERT INTO faqs_fts(faqs_fts, rowid, question, answer, category, tags)
				VALUES ('delete', old.id, old.question, old.answer, old.category, old.tags);
				INSERT INTO faqs_fts(rowid, question, answer, category, tags)
				VALUES (new.id, new.question, new.answer, new.category, new.tags);
			END`,
		},
	},
	{
		name: "documents_fts",
		create: `CREATE VIRTUAL TABLE documents_fts USING fts5(
			title, content, category, tags,
			content='documents', content_rowid='id', tokenize='trigram'
		)`,
		triggers: map[string]string{
			"documents_fts_insert": `CREATE TRIGGER IF NOT EXISTS documents_fts_insert AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, title, content, category, tags)
				VALUES (new.id, new.title, new.content, new.category, new.tags);
			END`,
			"documents_fts_delete": `CREATE TRIGGER IF NOT EXISTS documents_fts_delete AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, content, category, tags)
				VALUES ('delete', old.id, old.title, old.content, old.category, old.tags);
			END`,
			"documents_fts_update": `CREATE TRIGGER IF NOT EXISTS documents_fts_update AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, content, category, tags)
				VALUES ('delete', old.id, old.title, old.content, old.category, old.tags);
				INSERT INTO documents_fts(rowid, title, content, category, tags)
				VALUES (new.id, new.title, new.content, new.category, new.tags);
			END`,
		},
	},
}

func (s *Store) createSchema(ctx context.Context) error {
	for _, stmt := range tables {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}

	s.fts = true
	for _, idx := range ftsIndexes {
		err := s.ensureFTS(ctx, idx)
		if err == nil {
			continue
		}
		if !isMissingModule(err) {
			return fmt.Errorf("create %s: %w", idx.name, err)
		}
		s.logger.Warn("fts5 unavailable, searching with LIKE only", "table", idx.name)
		s.fts = false
		return s.dropFTSTriggers(ctx)
	}
	return nil
}

// ensureFTS creates idx if needed, checks that an existing table can be
// read by this build, and restores missing sync triggers. The index is
// rebuilt whenever it was created or a trigger was missing.
func (s *Store) ensureFTS(ctx context.Context, idx ftsIndex) error {
	var exists int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, idx.name,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check %s: %w", idx.name, err)
	}
	if exists > 0 {
		if _, err := s.db.ExecContext(ctx, `SELECT 1 FROM `+idx.name+` LIMIT 0`); err != nil {
			return err
		}
	}

	names := make([]any, 0, len(idx.triggers))
	for name := range idx.triggers {
		names = append(names, name)
	}
	var triggers int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'trigger' AND name IN (`+placeholders(len(names))+`)`,
		names...,
	).Scan(&triggers); err != nil {
		return fmt.Errorf("check %s triggers: %w", idx.name, err)
	}
	if exists > 0 && triggers == len(idx.triggers) {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmts := make([]string, 0, len(idx.triggers)+2)
	if exists == 0 {
		stmts = append(stmts, idx.create)
	}
	for _, stmt := range idx.triggers {
		stmts = append(stmts, stmt)
	}
	stmts = append(stmts, `INSERT INTO `+idx.name+`(`+idx.name+`) VALUES ('rebuild')`)
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// dropFTSTriggers removes the sync triggers so that writes keep working
// when the FTS tables cannot be used.
func (s *Store) dropFTSTriggers(ctx context.Context) error {
	for _, idx := range ftsIndexes {
		for name := range idx.triggers {
			if _, err := s.db.ExecContext(ctx, `DROP TRIGGER IF EXISTS `+name); err != nil {
				return fmt.Errorf("drop trigger %s: %w", name, err)
			}
		}
	}
	return nil
}

func isMissingModule(err error) bool {
	return strings.Contains(err.Error(), "no such module")
}

// useFTS reports whether query can be sent to MATCH. Every term must be
// long enough for the trigram tokenizer, otherwise MATCH finds nothing.
func (s *Store) useFTS(query string) bool {
	if !s.fts {
		return false
	}
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if utf8.RuneCountInString(term) < minTrigramQuery {
			return false
		}
	}
	return true
}

// likePattern wraps q for a substring LIKE ... ESCAPE '\' match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
