// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pdiddy/legis-engine/pkg/types"
)

// ConsolidatedConfidence returns the stored confidence for a document's
// consolidated data. ok is false when the document has never been
// consolidated.
func (s *Store) ConsolidatedConfidence(ctx context.Context, documentID string) (confidence float64, ok bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT confidence FROM consolidations WHERE document_id = ?`, documentID).
		Scan(&confidence)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying consolidation for %s: %w", documentID, err)
	}
	return confidence, true, nil
}

// ReplaceConsolidation writes a document's structured data, replacing the
// entire prior article and signatory set in one transaction so no stale
// rows survive a re-extraction with a different shape.
func (s *Store) ReplaceConsolidation(ctx context.Context, result *types.ExtractionResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := result.DocumentID

	for _, stmt := range []string{
		`DELETE FROM articles WHERE document_id = ?`,
		`DELETE FROM signatories WHERE document_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("clearing prior consolidation for %s: %w", id, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO consolidations (document_id, title, promulgation_date, promulgation_city,
			confidence, method, consolidated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			title = excluded.title,
			promulgation_date = excluded.promulgation_date,
			promulgation_city = excluded.promulgation_city,
			confidence = excluded.confidence,
			method = excluded.method,
			consolidated_at = excluded.consolidated_at`,
		id, result.Metadata.Title, result.Metadata.PromulgationDate,
		result.Metadata.PromulgationCity, result.Confidence, string(result.Method),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("writing consolidation for %s: %w", id, err)
	}

	for _, a := range result.Articles {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO articles (document_id, idx, content) VALUES (?, ?, ?)`,
			id, a.Index, a.Content)
		if err != nil {
			return fmt.Errorf("writing article %d for %s: %w", a.Index, id, err)
		}
	}

	for pos, sig := range result.Metadata.Signatories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO signatories (document_id, position, role, name, mandate_start, mandate_end)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, pos+1, sig.Role, sig.Name, sig.MandateStart, sig.MandateEnd)
		if err != nil {
			return fmt.Errorf("writing signatory %d for %s: %w", pos+1, id, err)
		}
	}

	return tx.Commit()
}

// ConsolidatedDocument reads back a document's consolidated data, or nil
// when none exists.
func (s *Store) ConsolidatedDocument(ctx context.Context, documentID string) (*types.ExtractionResult, error) {
	result := &types.ExtractionResult{DocumentID: documentID}

	var method string
	var consolidatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT title, promulgation_date, promulgation_city, confidence, method, consolidated_at
		FROM consolidations WHERE document_id = ?`, documentID).
		Scan(&result.Metadata.Title, &result.Metadata.PromulgationDate,
			&result.Metadata.PromulgationCity, &result.Confidence, &method, &consolidatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading consolidation for %s: %w", documentID, err)
	}
	result.Method = types.ExtractionMethod(method)
	if t, perr := time.Parse(time.RFC3339Nano, consolidatedAt); perr == nil {
		result.Timestamp = t
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, content FROM articles WHERE document_id = ? ORDER BY idx`, documentID)
	if err != nil {
		return nil, fmt.Errorf("reading articles for %s: %w", documentID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var a types.Article
		if err := rows.Scan(&a.Index, &a.Content); err != nil {
			return nil, fmt.Errorf("scanning article row: %w", err)
		}
		result.Articles = append(result.Articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sigRows, err := s.db.QueryContext(ctx, `
		SELECT role, name, COALESCE(mandate_start, ''), COALESCE(mandate_end, '')
		FROM signatories WHERE document_id = ? ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("reading signatories for %s: %w", documentID, err)
	}
	defer sigRows.Close()
	for sigRows.Next() {
		var sig types.Signatory
		if err := sigRows.Scan(&sig.Role, &sig.Name, &sig.MandateStart, &sig.MandateEnd); err != nil {
			return nil, fmt.Errorf("scanning signatory row: %w", err)
		}
		result.Metadata.Signatories = append(result.Metadata.Signatories, sig)
	}
	return result, sigRows.Err()
}

// ArticleHit is one full-text search match.
type ArticleHit struct {
	DocumentID string `json:"document_id" yaml:"document_id"`
	Index      int    `json:"index" yaml:"index"`
	Snippet    string `json:"snippet" yaml:"snippet"`
}

// SearchArticles runs an FTS5 query over consolidated article content and
// returns up to limit matches ranked by relevance.
func (s *Store) SearchArticles(ctx context.Context, query string, limit int) ([]ArticleHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.document_id, a.idx, snippet(articles_fts, 0, '[', ']', '…', 12)
		FROM articles_fts f
		JOIN articles a ON a.rowid = f.rowid
		WHERE articles_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching articles: %w", err)
	}
	defer rows.Close()

	var hits []ArticleHit
	for rows.Next() {
		var h ArticleHit
		if err := rows.Scan(&h.DocumentID, &h.Index, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
