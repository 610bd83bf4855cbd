// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/legis-engine/pkg/types"
)

// SaveFixResults appends the audit records of one doctor run.
func (s *Store) SaveFixResults(ctx context.Context, results []types.FixResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fix_results (run_id, document_id, issue_type, status, action, details, retry_count, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, r.DocumentID, string(r.IssueType), string(r.Status), r.Action, r.Details, r.RetryCount, now,
		); err != nil {
			return fmt.Errorf("inserting fix result for %s: %w", r.DocumentID, err)
		}
	}
	return tx.Commit()
}

// CountFixAttempts returns how many successful fixes have been recorded
// for a document and issue type across all doctor runs.
func (s *Store) CountFixAttempts(ctx context.Context, documentID string, issueType types.IssueType) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM fix_results WHERE document_id = ? AND issue_type = ? AND status = ?`,
		documentID, string(issueType), string(types.FixSuccess),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting fix attempts for %s: %w", documentID, err)
	}
	return n, nil
}

// FixHistory returns a document's fix audit records, newest first.
func (s *Store) FixHistory(ctx context.Context, documentID string) ([]types.FixResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, document_id, issue_type, status, action, details, retry_count
		 FROM fix_results WHERE document_id = ? ORDER BY created_at DESC, rowid DESC`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying fix history for %s: %w", documentID, err)
	}
	defer rows.Close()

	var results []types.FixResult
	for rows.Next() {
		var r types.FixResult
		var issueType, status string
		if err := rows.Scan(&r.RunID, &r.DocumentID, &issueType, &status, &r.Action, &r.Details, &r.RetryCount); err != nil {
			return nil, fmt.Errorf("scanning fix result: %w", err)
		}
		r.IssueType = types.IssueType(issueType)
		r.Status = types.FixStatus(status)
		results = append(results, r)
	}
	return results, rows.Err()
}
