package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/indutny/sneequals"
	"github.com/indutny/sneequals/internal/report"
	"github.com/indutny/sneequals/internal/selector"
	"github.com/indutny/sneequals/internal/store"
	"github.com/indutny/sneequals/value"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Reads    []string
	Record   bool
	Database string
}

// DiffResult is the diff command's output payload.
type DiffResult struct {
	OldPath       string   `json:"old_path"`
	NewPath       string   `json:"new_path"`
	ReadSpecs     []string `json:"read_specs"`
	Changed       bool     `json:"changed"`
	AffectedPaths []string `json:"affected_paths"`
	RunID         string   `json:"run_id,omitempty"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare two documents over recorded reads only",
		Long: `Compare two documents using sneaky structural equality.

The old document is tracked, the --read specs are executed against it to
record exactly which fields a derivation would consult, and the new
document is then compared over those recorded accesses alone. Fields the
specs never touch can differ freely without counting as a change.

Exit codes: 0 when sneaky-equal, 1 when changed, 2 on command error.

Examples:
  sneq diff old.yaml new.yaml --read user.name --read items[*]
  sneq diff old.json new.json --read 'config.*' --record --db ./sneq.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Reads, "read", nil, "read spec to execute against OLD (repeatable)")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record this run in the history database")
	cmd.Flags().StringVar(&opts.Database, "db", "sneq.db", "history database path (with --record)")
	cmd.MarkFlagRequired("read")

	return cmd
}

func runDiff(cmd *cobra.Command, opts *DiffOptions, oldPath, newPath string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, oldDoc, newDoc, err := diffDocuments(opts, oldPath, newPath)
	if err != nil {
		out.Error(errCodeFor(err), err.Error(), nil)
		return err
	}

	if opts.Record {
		runID, err := recordRun(cmd.Context(), opts, result, oldDoc, newDoc)
		if err != nil {
			out.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "record run", err)
		}
		result.RunID = runID
	}

	if opts.Format == "json" {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		out.Success(formatDiffText(result))
	}

	if result.Changed {
		return NewExitError(ExitChanged, "documents differ over recorded reads")
	}
	return nil
}

// diffDocuments runs one full tracking session: track OLD, execute the
// reads, unwrap, then compare NEW against the ledger. The loaded documents
// are returned alongside the result so recording fingerprints exactly what
// was compared, not whatever is on disk afterwards.
func diffDocuments(opts *DiffOptions, oldPath, newPath string) (*DiffResult, value.Value, value.Value, error) {
	specs, err := selector.Compile(opts.Reads)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "compile read specs", err)
	}

	oldDoc, err := LoadDocument(oldPath)
	if err != nil {
		return nil, nil, nil, err
	}
	newDoc, err := LoadDocument(newPath)
	if err != nil {
		return nil, nil, nil, err
	}

	s := sneequals.NewSession()
	tracked := s.Track(oldDoc)

	derived, err := selector.Execute(tracked, specs)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "execute read specs", err)
	}
	s.Unwrap(derived)
	s.End()

	result := &DiffResult{
		OldPath:       oldPath,
		NewPath:       newPath,
		ReadSpecs:     opts.Reads,
		Changed:       s.IsChanged(oldDoc, newDoc),
		AffectedPaths: s.AffectedPaths(oldDoc),
	}
	return result, oldDoc, newDoc, nil
}

// recordRun fingerprints the compared documents and appends the run to the
// history store.
func recordRun(ctx context.Context, opts *DiffOptions, result *DiffResult, oldDoc, newDoc value.Value) (string, error) {
	oldFP, err := report.Fingerprint(oldDoc)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", result.OldPath, err)
	}
	newFP, err := report.Fingerprint(newDoc)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", result.NewPath, err)
	}

	db, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer db.Close()

	run, err := db.WriteRun(ctx, report.Run{
		OldPath:        result.OldPath,
		NewPath:        result.NewPath,
		OldFingerprint: oldFP,
		NewFingerprint: newFP,
		ReadSpecs:      result.ReadSpecs,
		Changed:        result.Changed,
		AffectedPaths:  result.AffectedPaths,
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func formatDiffText(r *DiffResult) string {
	var b strings.Builder
	verdict := "unchanged"
	if r.Changed {
		verdict = "changed"
	}
	fmt.Fprintf(&b, "%s -> %s: %s\n", r.OldPath, r.NewPath, verdict)
	fmt.Fprintf(&b, "reads: %s\n", strings.Join(r.ReadSpecs, ", "))
	b.WriteString("affected paths:")
	if len(r.AffectedPaths) == 0 {
		b.WriteString(" (none)")
	}
	for _, p := range r.AffectedPaths {
		b.WriteString("\n  " + p)
	}
	if r.RunID != "" {
		fmt.Fprintf(&b, "\nrecorded as run %s", r.RunID)
	}
	return b.String()
}

// errCodeFor maps a command error to a CLI response code.
func errCodeFor(err error) string {
	var parseErr *selector.ParseError
	var execErr *selector.ExecError
	switch {
	case errors.As(err, &parseErr):
		return ErrCodeBadSpec
	case errors.As(err, &execErr):
		return ErrCodeExec
	default:
		// Loader failures: unreadable, unparseable, or unsupported files.
		return ErrCodeBadFormat
	}
}
