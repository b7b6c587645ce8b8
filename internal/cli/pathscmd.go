package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/indutny/sneequals"
	"github.com/indutny/sneequals/internal/selector"
)

// PathsOptions holds flags for the paths command.
type PathsOptions struct {
	*RootOptions
	Reads []string
}

// PathsResult is the paths command's output payload.
type PathsResult struct {
	Document      string   `json:"document"`
	ReadSpecs     []string `json:"read_specs"`
	AffectedPaths []string `json:"affected_paths"`
}

// NewPathsCommand creates the paths command.
func NewPathsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PathsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "paths DOC",
		Short: "Show which paths a set of read specs touches",
		Long: `Execute read specs against a document and report every recorded access
as a path string. Diagnostic only: the output mirrors what diff would
compare, without comparing anything.

Examples:
  sneq paths doc.yaml --read user.name --read 'user.*'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaths(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Reads, "read", nil, "read spec to execute (repeatable)")
	cmd.MarkFlagRequired("read")

	return cmd
}

func runPaths(cmd *cobra.Command, opts *PathsOptions, docPath string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	specs, err := selector.Compile(opts.Reads)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "compile read specs", err)
		out.Error(ErrCodeBadSpec, wrapped.Error(), nil)
		return wrapped
	}

	doc, err := LoadDocument(docPath)
	if err != nil {
		out.Error(ErrCodeBadFormat, err.Error(), nil)
		return err
	}

	s := sneequals.NewSession()
	tracked := s.Track(doc)
	derived, err := selector.Execute(tracked, specs)
	if err != nil {
		wrapped := WrapExitError(ExitCommandError, "execute read specs", err)
		out.Error(ErrCodeExec, wrapped.Error(), nil)
		return wrapped
	}
	s.Unwrap(derived)
	s.End()

	result := &PathsResult{
		Document:      docPath,
		ReadSpecs:     opts.Reads,
		AffectedPaths: s.AffectedPaths(doc),
	}

	if opts.Format == "json" {
		return out.Success(result)
	}
	if len(result.AffectedPaths) == 0 {
		return out.Success("(no affected paths)")
	}
	return out.Success(strings.Join(result.AffectedPaths, "\n"))
}
