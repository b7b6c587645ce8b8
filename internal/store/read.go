package store

import (
	"context"
	"fmt"
	"time"

	"github.com/indutny/sneequals/internal/report"
)

// ListRuns returns up to limit recorded runs, newest first with id as a
// deterministic tiebreaker. limit <= 0 means no limit.
//
// Returns an empty slice (not nil) when no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]report.Run, error) {
	query := `
		SELECT id, created_at, old_path, new_path, old_fingerprint, new_fingerprint, read_specs, changed, affected_paths
		FROM runs
		ORDER BY created_at DESC, id COLLATE BINARY ASC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []report.Run{}
	for rows.Next() {
		var (
			run       report.Run
			createdAt string
			specs     string
			changed   int
			paths     string
		)
		if err := rows.Scan(
			&run.ID,
			&createdAt,
			&run.OldPath,
			&run.NewPath,
			&run.OldFingerprint,
			&run.NewFingerprint,
			&specs,
			&changed,
			&paths,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		run.ReadSpecs, err = report.UnmarshalStrings(specs)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		run.AffectedPaths, err = report.UnmarshalStrings(paths)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		run.Changed = changed != 0

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}
