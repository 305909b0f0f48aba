package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/strawlab/vmbc-go/pkg/vmb"
)

// Process exit codes, one per failure class.
const (
	ExitOK = iota
	ExitFailure
	ExitLoad
	ExitAPI
	ExitTimedOut
	ExitBufferTooSmall
	ExitEnumerationRace
)

// ExitCode maps the first failure of a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var loadErr *vmb.LoadError
	var apiErr *vmb.APIError
	switch {
	case errors.As(err, &loadErr):
		return ExitLoad
	case errors.Is(err, vmb.ErrTimedOut):
		return ExitTimedOut
	case errors.Is(err, vmb.ErrBufferTooSmall):
		return ExitBufferTooSmall
	case errors.Is(err, vmb.ErrEnumerationRace):
		return ExitEnumerationRace
	case errors.As(err, &apiErr):
		return ExitAPI
	}
	return ExitFailure
}

// describeError renders err for the terminal. Errors that stand for a Vmb
// result code always show its symbolic name and numeric value.
func describeError(err error) string {
	msg := err.Error()
	var apiErr *vmb.APIError
	if errors.Is(err, vmb.ErrTimedOut) && !errors.As(err, &apiErr) {
		msg += fmt.Sprintf(" [%s (%d)]", vmb.ErrorTimeout, int32(vmb.ErrorTimeout))
	}
	return msg
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), describeError(err))
}

// firstError keeps the earliest failure; later ones are only logged.
func firstError(first *error, err error, what string) {
	if err == nil {
		return
	}
	if *first == nil {
		*first = err
		return
	}
	logger().Warn("cleanup failed", "step", what, "error", err)
}
