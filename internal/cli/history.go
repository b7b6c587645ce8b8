package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/indutny/sneequals/internal/report"
	"github.com/indutny/sneequals/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// HistoryEntry is one run in the history command's output payload.
type HistoryEntry struct {
	ID             string   `json:"id"`
	CreatedAt      string   `json:"created_at"`
	OldPath        string   `json:"old_path"`
	NewPath        string   `json:"new_path"`
	OldFingerprint string   `json:"old_fingerprint"`
	NewFingerprint string   `json:"new_fingerprint"`
	ReadSpecs      []string `json:"read_specs"`
	Changed        bool     `json:"changed"`
	AffectedPaths  []string `json:"affected_paths"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded diff runs",
		Long: `List diff runs recorded with 'sneq diff --record', newest first.

Examples:
  sneq history --db ./sneq.db
  sneq history --db ./sneq.db --limit 10 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "sneq.db", "history database path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum runs to list (0 = all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(opts.Database); err != nil {
		wrapped := WrapExitError(ExitCommandError, fmt.Sprintf("history database %s", opts.Database), err)
		out.Error(ErrCodeNotFound, wrapped.Error(), nil)
		return wrapped
	}

	db, err := store.Open(opts.Database)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "open history database", err)
		out.Error(ErrCodeStore, wrapped.Error(), nil)
		return wrapped
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "list runs", err)
		out.Error(ErrCodeStore, wrapped.Error(), nil)
		return wrapped
	}

	entries := make([]HistoryEntry, len(runs))
	for i, r := range runs {
		entries[i] = toHistoryEntry(r)
	}

	if opts.Format == "json" {
		return out.Success(entries)
	}
	return out.Success(formatHistoryText(entries))
}

func toHistoryEntry(r report.Run) HistoryEntry {
	return HistoryEntry{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt.Format("2006-01-02 15:04:05"),
		OldPath:        r.OldPath,
		NewPath:        r.NewPath,
		OldFingerprint: r.OldFingerprint,
		NewFingerprint: r.NewFingerprint,
		ReadSpecs:      r.ReadSpecs,
		Changed:        r.Changed,
		AffectedPaths:  r.AffectedPaths,
	}
}

func formatHistoryText(entries []HistoryEntry) string {
	if len(entries) == 0 {
		return "(no recorded runs)"
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		verdict := "unchanged"
		if e.Changed {
			verdict = "changed"
		}
		fmt.Fprintf(&b, "%s  %s  %s -> %s  %s  reads: %s",
			e.CreatedAt, shortID(e.ID), e.OldPath, e.NewPath, verdict,
			strings.Join(e.ReadSpecs, ", "))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
