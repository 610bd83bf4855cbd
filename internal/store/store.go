// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists document records, scan cursors, and consolidated
// structured data in a SQLite database, and maintains a full-text index
// over consolidated article content.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/legis-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "legis.db"
)

// Store manages the legis-engine SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the SQLite database at dataDir/index/legis.db.
// It creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			document_id TEXT PRIMARY KEY,
			doc_type TEXT NOT NULL,
			year INTEGER NOT NULL,
			number INTEGER NOT NULL,
			status TEXT NOT NULL,
			source_url TEXT,
			pdf_path TEXT,
			ocr_path TEXT,
			json_path TEXT,
			error_message TEXT,
			updated_at TEXT NOT NULL,
			UNIQUE(doc_type, year, number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status)`,
		`CREATE TABLE IF NOT EXISTS fetch_cursors (
			doc_type TEXT NOT NULL,
			cursor_type TEXT NOT NULL,
			current_year INTEGER NOT NULL,
			current_number INTEGER NOT NULL,
			PRIMARY KEY (doc_type, cursor_type)
		)`,
		`CREATE TABLE IF NOT EXISTS consolidations (
			document_id TEXT PRIMARY KEY REFERENCES documents(document_id),
			title TEXT,
			promulgation_date TEXT,
			promulgation_city TEXT,
			confidence REAL NOT NULL,
			method TEXT NOT NULL,
			consolidated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL REFERENCES documents(document_id),
			idx INTEGER NOT NULL,
			content TEXT NOT NULL,
			UNIQUE(document_id, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_document_id ON articles(document_id)`,
		`CREATE TABLE IF NOT EXISTS signatories (
			document_id TEXT NOT NULL REFERENCES documents(document_id),
			position INTEGER NOT NULL,
			role TEXT NOT NULL,
			name TEXT NOT NULL,
			mandate_start TEXT,
			mandate_end TEXT,
			PRIMARY KEY (document_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS fix_results (
			run_id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			issue_type TEXT NOT NULL,
			status TEXT NOT NULL,
			action TEXT,
			details TEXT,
			retry_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fix_results_document ON fix_results(document_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(content, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO articles_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

const documentColumns = `document_id, doc_type, year, number, status, source_url,
	pdf_path, ocr_path, json_path, error_message, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*types.LegalDocument, error) {
	var d types.LegalDocument
	var sourceURL, pdfPath, ocrPath, jsonPath, errMsg sql.NullString
	var updatedAt string
	err := row.Scan(&d.DocumentID, &d.Type, &d.Year, &d.Number, &d.Status,
		&sourceURL, &pdfPath, &ocrPath, &jsonPath, &errMsg, &updatedAt)
	if err != nil {
		return nil, err
	}
	d.SourceURL = sourceURL.String
	d.PDFPath = pdfPath.String
	d.OCRPath = ocrPath.String
	d.JSONPath = jsonPath.String
	d.ErrorMessage = errMsg.String
	if t, perr := time.Parse(time.RFC3339Nano, updatedAt); perr == nil {
		d.UpdatedAt = t
	}
	return &d, nil
}

// FindByID returns the document with the given ID, or nil when it does
// not exist.
func (s *Store) FindByID(ctx context.Context, documentID string) (*types.LegalDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE document_id = ?`, documentID)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", documentID, err)
	}
	return doc, nil
}

// FindByTypeYearNumber returns the document for an identity triple, or nil
// when it does not exist.
func (s *Store) FindByTypeYearNumber(ctx context.Context, docType string, year, number int) (*types.LegalDocument, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE doc_type = ? AND year = ? AND number = ?`,
		docType, year, number)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying document %s: %w", types.DocumentID(docType, year, number), err)
	}
	return doc, nil
}

// FindByStatus returns up to limit documents in the given status, oldest
// update first so stalled documents surface before fresh ones. A limit of
// 0 means no cap.
func (s *Store) FindByStatus(ctx context.Context, status types.DocumentStatus, limit int) ([]*types.LegalDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE status = ? ORDER BY updated_at ASC`
	args := []any{string(status)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents by status %s: %w", status, err)
	}
	defer rows.Close()

	var docs []*types.LegalDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Save upserts a document by its ID and stamps updated_at.
func (s *Store) Save(ctx context.Context, doc *types.LegalDocument) error {
	doc.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			status = excluded.status,
			source_url = excluded.source_url,
			pdf_path = excluded.pdf_path,
			ocr_path = excluded.ocr_path,
			json_path = excluded.json_path,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at`,
		doc.DocumentID, doc.Type, doc.Year, doc.Number, string(doc.Status),
		doc.SourceURL, doc.PDFPath, doc.OCRPath, doc.JSONPath, doc.ErrorMessage,
		doc.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving document %s: %w", doc.DocumentID, err)
	}
	return nil
}

// SaveAll upserts documents in a single transaction.
func (s *Store) SaveAll(ctx context.Context, docs []*types.LegalDocument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, doc := range docs {
		doc.UpdatedAt = now
		_, err := tx.ExecContext(ctx, `
			INSERT INTO documents (`+documentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(document_id) DO UPDATE SET
				status = excluded.status,
				source_url = excluded.source_url,
				pdf_path = excluded.pdf_path,
				ocr_path = excluded.ocr_path,
				json_path = excluded.json_path,
				error_message = excluded.error_message,
				updated_at = excluded.updated_at`,
			doc.DocumentID, doc.Type, doc.Year, doc.Number, string(doc.Status),
			doc.SourceURL, doc.PDFPath, doc.OCRPath, doc.JSONPath, doc.ErrorMessage,
			doc.UpdatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("saving document %s: %w", doc.DocumentID, err)
		}
	}
	return tx.Commit()
}

// DeleteByID removes a document and all its consolidated data. Intended
// for explicit administrative purges only.
func (s *Store) DeleteByID(ctx context.Context, documentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM articles WHERE document_id = ?`,
		`DELETE FROM signatories WHERE document_id = ?`,
		`DELETE FROM consolidations WHERE document_id = ?`,
		`DELETE FROM documents WHERE document_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, documentID); err != nil {
			return fmt.Errorf("deleting document %s: %w", documentID, err)
		}
	}
	return tx.Commit()
}

// CountByStatus returns the number of documents in each status.
func (s *Store) CountByStatus(ctx context.Context) (map[types.DocumentStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, count(*) FROM documents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.DocumentStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count row: %w", err)
		}
		counts[types.DocumentStatus(status)] = n
	}
	return counts, rows.Err()
}

// LoadCursor returns the persisted cursor for (docType, cursorType), or
// nil when no scan has checkpointed yet.
func (s *Store) LoadCursor(ctx context.Context, docType string, cursorType types.CursorType) (*types.FetchCursor, error) {
	var c types.FetchCursor
	err := s.db.QueryRowContext(ctx, `
		SELECT doc_type, cursor_type, current_year, current_number
		FROM fetch_cursors WHERE doc_type = ? AND cursor_type = ?`,
		docType, string(cursorType)).
		Scan(&c.DocumentType, &c.CursorType, &c.CurrentYear, &c.CurrentNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cursor %s/%s: %w", docType, cursorType, err)
	}
	return &c, nil
}

// SaveCursor upserts a scan cursor. Callers must follow the single-writer
// discipline: only the scanner owning the cursor type writes it.
func (s *Store) SaveCursor(ctx context.Context, c types.FetchCursor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fetch_cursors (doc_type, cursor_type, current_year, current_number)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(doc_type, cursor_type) DO UPDATE SET
			current_year = excluded.current_year,
			current_number = excluded.current_number`,
		c.DocumentType, string(c.CursorType), c.CurrentYear, c.CurrentNumber)
	if err != nil {
		return fmt.Errorf("saving cursor %s/%s: %w", c.DocumentType, c.CursorType, err)
	}
	return nil
}
