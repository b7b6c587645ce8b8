package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/indutny/sneequals/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			// The changed verdict is ordinary output, already printed.
			if exitErr.Code != cli.ExitChanged {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			return exitErr.Code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}
	return cli.ExitSuccess
}
