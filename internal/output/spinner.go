package output

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner runs action while a spinner titled title is shown. Off a
// terminal the action runs plainly.
func RunWithSpinner(ctx context.Context, title string, action func(ctx context.Context) error) error {
	if !IsTTY() {
		return action(ctx)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- action(ctx) }()

	var actionErr error
	err := spinner.New().
		Title(title).
		Action(func() {
			select {
			case actionErr = <-errCh:
			case <-ctx.Done():
				actionErr = ctx.Err()
			}
		}).
		Run()
	if err != nil {
		return fmt.Errorf("spinner: %w", err)
	}
	return actionErr
}
