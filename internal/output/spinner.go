package output

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner runs action while a spinner animates on the terminal.
// Without a TTY the action runs directly so no control sequences land in
// captured output. The action's error is returned either way.
func RunWithSpinner(ctx context.Context, title string, action func() error) error {
	if !IsTTY() {
		return action()
	}

	// The done channel is closed rather than sent on so both the spinner
	// body and the final select observe completion.
	var actionErr error
	done := make(chan struct{})
	go func() {
		actionErr = action()
		close(done)
	}()

	spinErr := spinner.New().Title(title).Action(func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
	}).Run()
	if spinErr != nil {
		return fmt.Errorf("spinner error: %w", spinErr)
	}

	select {
	case <-done:
		return actionErr
	case <-ctx.Done():
		return ctx.Err()
	}
}
