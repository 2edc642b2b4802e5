// Command stagehand stages release candidates: it validates a release
// trigger into a canonical version/rc pair, runs the build matrix, and
// collects the artifacts into per-candidate bundles.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/stagehand/cli/internal/cmd"
	serrors "github.com/stagehand/cli/internal/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cmd.NewRootCmd().Execute()
	if err == nil {
		return 0
	}

	var exitErr *serrors.ExitError
	if errors.As(err, &exitErr) {
		// The command layer may have rendered the error already.
		if !exitErr.Printed {
			fmt.Fprintln(os.Stderr, err)
		}
		return exitErr.Code
	}

	fmt.Fprintln(os.Stderr, err)
	return serrors.ExitCodeFromError(err)
}
