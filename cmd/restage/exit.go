package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/restage/restage"
)

// Exit codes of the CLI surface.
const (
	exitFailure          = 1
	exitNotFound         = 2
	exitPartial          = 3
	exitPermissionDenied = 4
	exitBusy             = 5
)

// exitError carries a process exit code alongside a message.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// wrapExit maps an operation error (or a degraded report) onto the
// CLI exit code.
func wrapExit(err error, report *restage.Report) error {
	if err != nil {
		code := exitFailure
		switch {
		case errors.Is(err, restage.ErrNotFound):
			code = exitNotFound
		case errors.Is(err, restage.ErrPermissionDenied):
			code = exitPermissionDenied
		case errors.Is(err, restage.ErrBusy):
			code = exitBusy
		}
		return &exitError{code: code, msg: err.Error()}
	}
	if report != nil && report.Partial() {
		return &exitError{code: exitPartial}
	}
	return nil
}

func printReport(verb string, r *restage.Report) {
	applied, partial, failed := r.Counts()
	fmt.Printf("workspace %q %s: %d applied, %d partial, %d failed (%s)\n",
		r.Workspace, verb, applied, partial, failed, r.Took.Round(time.Millisecond))
	for _, e := range r.Results {
		if e.Outcome.Kind == "applied" {
			continue
		}
		fmt.Printf("  %s: %s", e.AppID, e.Outcome.Kind)
		for _, reason := range e.Outcome.Reasons {
			fmt.Printf("\n    %s", reason)
		}
		fmt.Println()
	}
}
