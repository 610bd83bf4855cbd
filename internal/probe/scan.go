// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package probe

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/legis-engine/pkg/types"
)

// DocumentStore is the slice of the storage layer the scanners need.
type DocumentStore interface {
	FindByTypeYearNumber(ctx context.Context, docType string, year, number int) (*types.LegalDocument, error)
	Save(ctx context.Context, doc *types.LegalDocument) error
	LoadCursor(ctx context.Context, docType string, cursorType types.CursorType) (*types.FetchCursor, error)
	SaveCursor(ctx context.Context, c types.FetchCursor) error
}

// Summary holds the outcome counts of a scan pass.
type Summary struct {
	Found       int
	NotFound    int
	RateLimited int
	Failed      int
	Skipped     int
}

// Total returns the number of positions visited.
func (s Summary) Total() int {
	return s.Found + s.NotFound + s.RateLimited + s.Failed + s.Skipped
}

// resolved reports whether an existing record already answers the probe
// question, so the scanner can skip the position without a network call.
// PENDING and RATE_LIMITED records stay eligible for the same probe.
func resolved(doc *types.LegalDocument) bool {
	return doc != nil && doc.Status != types.StatusPending && doc.Status != types.StatusRateLimited
}

// ScanCurrentYear enumerates numbers 1..MaxPerYear for the given year
// across all configured document types. Not-found positions are not
// persisted: the current year is still growing and yesterday's 404 is
// tomorrow's law. Found, rate-limited, and failed outcomes are recorded.
//
// A rate-limited probe ends the pass early; the publisher has said no,
// and the remaining positions will be visited on the next invocation.
func ScanCurrentYear(ctx context.Context, st DocumentStore, prober Prober, cfg types.ProbeConfig, year int, w io.Writer) (Summary, error) {
	var sum Summary

	for _, docType := range cfg.DocumentTypes {
		for n := 1; n <= cfg.MaxPerYear; n++ {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			default:
			}

			existing, err := st.FindByTypeYearNumber(ctx, docType, year, n)
			if err != nil {
				return sum, err
			}
			if resolved(existing) {
				sum.Skipped++
				continue
			}

			doc := existing
			if doc == nil {
				doc = types.NewLegalDocument(docType, year, n)
			}

			res := prober.Probe(ctx, docType, year, n)
			switch Apply(doc, res) {
			case types.StatusFetched:
				if err := st.Save(ctx, doc); err != nil {
					return sum, err
				}
				fmt.Fprintf(w, "found:   %s\n", doc.DocumentID)
				sum.Found++
			case types.StatusNotFound:
				sum.NotFound++
			case types.StatusRateLimited:
				if err := st.Save(ctx, doc); err != nil {
					return sum, err
				}
				fmt.Fprintf(w, "rate limited at %s, stopping pass\n", doc.DocumentID)
				sum.RateLimited++
				return sum, nil
			default:
				if err := st.Save(ctx, doc); err != nil {
					return sum, err
				}
				fmt.Fprintf(w, "failed:  %s (%s)\n", doc.DocumentID, doc.ErrorMessage)
				sum.Failed++
			}
		}
	}

	return sum, nil
}

// ScanPreviousYears walks backward from (currentYear-1, 1) to FloorYear,
// persisting every outcome including NOT_FOUND, and checkpoints a cursor
// so a restart resumes at the exact next position. Scan order is strictly
// descending year, ascending number within a year; the cursor always
// records the highest position fully dispatched.
func ScanPreviousYears(ctx context.Context, st DocumentStore, prober Prober, cfg types.ProbeConfig, currentYear int, w io.Writer) (Summary, error) {
	var sum Summary
	probes := 0

	for _, docType := range cfg.DocumentTypes {
		cursor, err := st.LoadCursor(ctx, docType, types.CursorPreviousYears)
		if err != nil {
			return sum, err
		}

		startYear, startNumber := currentYear-1, 1
		if cursor != nil {
			startYear, startNumber = cursor.CurrentYear, cursor.CurrentNumber
		}

		for year := startYear; year >= cfg.FloorYear; year-- {
			firstNumber := 1
			if year == startYear {
				firstNumber = startNumber
			}

			for n := firstNumber; n <= cfg.MaxPerYear; n++ {
				select {
				case <-ctx.Done():
					return sum, checkpoint(context.WithoutCancel(ctx), st, docType, cfg, year, n, ctx.Err())
				default:
				}

				// Budget exhausted: checkpoint this position and stop
				// rather than scanning further.
				if cfg.MaxItems > 0 && probes >= cfg.MaxItems {
					fmt.Fprintf(w, "budget of %d probes reached, checkpointing %s at %d-%d\n",
						cfg.MaxItems, docType, year, n)
					return sum, checkpoint(ctx, st, docType, cfg, year, n, nil)
				}

				existing, err := st.FindByTypeYearNumber(ctx, docType, year, n)
				if err != nil {
					return sum, checkpoint(ctx, st, docType, cfg, year, n, err)
				}
				if resolved(existing) {
					sum.Skipped++
					continue
				}

				doc := existing
				if doc == nil {
					doc = types.NewLegalDocument(docType, year, n)
				}

				res := prober.Probe(ctx, docType, year, n)
				status := Apply(doc, res)
				probes++

				if err := st.Save(ctx, doc); err != nil {
					return sum, checkpoint(ctx, st, docType, cfg, year, n, err)
				}

				switch status {
				case types.StatusFetched:
					fmt.Fprintf(w, "found:   %s\n", doc.DocumentID)
					sum.Found++
				case types.StatusNotFound:
					sum.NotFound++
				case types.StatusRateLimited:
					fmt.Fprintf(w, "rate limited at %s, stopping pass\n", doc.DocumentID)
					sum.RateLimited++
					return sum, checkpoint(ctx, st, docType, cfg, year, n, nil)
				default:
					fmt.Fprintf(w, "failed:  %s (%s)\n", doc.DocumentID, doc.ErrorMessage)
					sum.Failed++
				}

				if cfg.CheckpointEvery > 0 && probes%cfg.CheckpointEvery == 0 {
					nextYear, nextNumber := nextPosition(year, n, cfg.MaxPerYear)
					if err := checkpoint(ctx, st, docType, cfg, nextYear, nextNumber, nil); err != nil {
						return sum, err
					}
				}
			}
		}

		// Scan complete for this type: park the cursor below the floor so
		// a rerun starts clean only after the floor is lowered.
		if err := checkpoint(ctx, st, docType, cfg, cfg.FloorYear-1, 1, nil); err != nil {
			return sum, err
		}
	}

	return sum, nil
}

// nextPosition advances one step in scan order.
func nextPosition(year, number, maxPerYear int) (int, int) {
	if number < maxPerYear {
		return year, number + 1
	}
	return year - 1, 1
}

// checkpoint persists the cursor at (year, number) and returns cause,
// which carries an in-flight error through the early-termination paths.
func checkpoint(ctx context.Context, st DocumentStore, docType string, cfg types.ProbeConfig, year, number int, cause error) error {
	err := st.SaveCursor(ctx, types.FetchCursor{
		DocumentType:  docType,
		CursorType:    types.CursorPreviousYears,
		CurrentYear:   year,
		CurrentNumber: number,
	})
	if cause != nil {
		return cause
	}
	return err
}
