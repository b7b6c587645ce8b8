package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the sneq version, overridable at link time:
//
//	go build -ldflags "-X github.com/indutny/sneequals/internal/cli.Version=v1.2.3"
var Version = "dev"

// VersionInfo is the version command's output payload.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &OutputFormatter{
				Format:  rootOpts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: rootOpts.Verbose,
			}
			info := VersionInfo{
				Version:   Version,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			if rootOpts.Format == "json" {
				return out.Success(info)
			}
			return out.Success(fmt.Sprintf("sneq %s (%s, %s)", info.Version, info.GoVersion, info.Platform))
		},
	}
}
