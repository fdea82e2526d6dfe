package output

import (
	"errors"

	"github.com/shivasurya/code-pathfinder/pathreduce/graph/cfg"
	"github.com/shivasurya/code-pathfinder/pathreduce/graph/reducer"
	"github.com/shivasurya/code-pathfinder/pathreduce/nativeabi"
)

// ExitCode represents the exit code for the CLI.
type ExitCode int

const (
	// ExitCodeSuccess indicates the operation completed normally.
	ExitCodeSuccess ExitCode = 0

	// ExitCodeInvalid indicates an invalid path resolved under a non-fatal
	// PATH_REDUCTION_ON_ERROR policy (FULL_PATH/EMPTY_PATH): the CLI still
	// printed a fingerprint, but the path did not conform to its entry
	// function's regex. The "reduce" command sets this itself when
	// reducePath reports a resolved-but-invalid query; DetermineExitCode
	// returns it only for a bare InvalidPath that no policy resolved.
	ExitCodeInvalid ExitCode = 1

	// ExitCodeFatal indicates a construction-time error (DuplicateFirstBlock,
	// MalformedCFG) or a FatalAbort: an invalid path under the fatal
	// (unset/unrecognized) error policy, which terminates the run
	// immediately.
	ExitCodeFatal ExitCode = 2
)

// DetermineExitCode maps a build/reduce error to the CLI's exit code.
// A nil error is success.
func DetermineExitCode(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	var abort *nativeabi.FatalAbort
	if errors.As(err, &abort) {
		return ExitCodeFatal
	}

	var invalid *reducer.InvalidPath
	if errors.As(err, &invalid) {
		return ExitCodeInvalid
	}

	var dup *reducer.DuplicateFirstBlock
	if errors.As(err, &dup) {
		return ExitCodeFatal
	}

	var malformed *cfg.MalformedCFG
	if errors.As(err, &malformed) {
		return ExitCodeFatal
	}

	return ExitCodeFatal
}
