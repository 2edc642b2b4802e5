package output

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether stdout is an interactive terminal. Spinners and
// other animated output are suppressed when it returns false.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
