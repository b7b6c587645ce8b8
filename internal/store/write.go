package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/indutny/sneequals/internal/report"
)

// WriteRun inserts a run record. A missing ID is filled with a fresh UUID
// and a zero CreatedAt with the current UTC time; the (possibly updated)
// run is returned. Duplicate IDs are silently ignored so replays of the
// same recording are idempotent.
func (s *Store) WriteRun(ctx context.Context, run report.Run) (report.Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	specsJSON, err := report.MarshalStrings(run.ReadSpecs)
	if err != nil {
		return report.Run{}, fmt.Errorf("write run: %w", err)
	}
	pathsJSON, err := report.MarshalStrings(run.AffectedPaths)
	if err != nil {
		return report.Run{}, fmt.Errorf("write run: %w", err)
	}

	changed := 0
	if run.Changed {
		changed = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, old_path, new_path, old_fingerprint, new_fingerprint, read_specs, changed, affected_paths)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.OldPath,
		run.NewPath,
		run.OldFingerprint,
		run.NewFingerprint,
		specsJSON,
		changed,
		pathsJSON,
	)
	if err != nil {
		return report.Run{}, fmt.Errorf("write run: %w", err)
	}

	return run, nil
}
