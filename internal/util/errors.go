package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure modes
var (
	// ErrMalformedInput indicates the source CSV is unreadable or lacks required columns
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrStore indicates the warehouse file could not be created, written or read
	ErrStore = errors.New("store error")

	// ErrNoFactsLoaded indicates a non-empty source produced no fact rows
	ErrNoFactsLoaded = errors.New("no fact rows loaded")

	// ErrPartialLoad indicates fact rows were dropped and the run was strict
	ErrPartialLoad = errors.New("partial load")
)

// Exit codes returned by the dw binary.
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitUsageError     = 2
	ExitPartialLoad    = 3
	ExitConfigError    = 10
	ExitMalformedInput = 11
	ExitStoreError     = 12
	ExitNoFactsLoaded  = 13
	ExitNotFound       = 14
)

// MalformedInputError describes a structurally invalid source file
type MalformedInputError struct {
	Path    string
	Missing []string // required columns absent from the header
	Err     error    // underlying read error, if any
}

func (e *MalformedInputError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("malformed input %s: missing required columns: %s",
			e.Path, strings.Join(e.Missing, ", "))
	case e.Err != nil:
		return fmt.Sprintf("malformed input %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("malformed input %s", e.Path)
	}
}

// Unwrap exposes the underlying read error
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrMalformedInput
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// ExitCodeForError maps an error returned by a command to a process exit code
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrMalformedInput):
		return ExitMalformedInput
	case errors.Is(err, ErrNoFactsLoaded):
		return ExitNoFactsLoaded
	case errors.Is(err, ErrPartialLoad):
		return ExitPartialLoad
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrStore):
		return ExitStoreError
	}

	// cobra reports flag problems as plain errors
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown command") ||
		strings.Contains(msg, "flag needs an argument") ||
		strings.HasPrefix(msg, "invalid argument") {
		return ExitUsageError
	}

	return ExitGeneralError
}
