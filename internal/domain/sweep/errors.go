package sweep

import (
	"errors"
	"fmt"
	"strings"
)

// Fatal pre-run errors.
var (
	// ErrSimulatorNotFound indicates the simulator executable is missing
	// from PATH. Nothing was dispatched; the run aborts.
	ErrSimulatorNotFound = errors.New("sweep: simulator executable not found")
)

// InvalidAxisError indicates an axis specification that cannot produce a
// valid sweep dimension.
type InvalidAxisError struct {
	Axis   string
	Reason string
}

func (e *InvalidAxisError) Error() string {
	return fmt.Sprintf("sweep: invalid axis %q: %s", e.Axis, e.Reason)
}

// TimeoutError indicates a job exceeded its per-job deadline. Job-scoped
// and retryable.
type TimeoutError struct {
	Point GridPoint
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("sweep: simulation timed out at %s", e.Point.Index)
}

// SimulationError indicates the simulator exited non-zero or failed to
// converge. Job-scoped; the run continues.
type SimulationError struct {
	Point    GridPoint
	ExitCode int
	Detail   string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("sweep: simulation failed at %s (exit %d): %s",
		e.Point.Index, e.ExitCode, e.Detail)
}

// MissingQuantityError indicates the simulator output lacked a marker for
// a requested quantity. Job-scoped; named rather than defaulted.
type MissingQuantityError struct {
	Point    GridPoint
	Quantity Quantity
}

func (e *MissingQuantityError) Error() string {
	return fmt.Sprintf("sweep: quantity %q missing from output at %s", e.Quantity, e.Point.Index)
}

// IncompleteTableError is returned by seal when at least one grid
// coordinate has no successful record.
type IncompleteTableError struct {
	Device  string
	Missing []Index
}

func (e *IncompleteTableError) Error() string {
	coords := make([]string, 0, len(e.Missing))
	for _, ix := range e.Missing {
		coords = append(coords, ix.String())
	}
	return fmt.Sprintf("sweep: table for %s incomplete, %d unresolved points: %s",
		e.Device, len(e.Missing), strings.Join(coords, " "))
}

// JobError ties a job-scoped failure to its grid index for reporting.
type JobError struct {
	Index   Index
	Linear  int
	Wrapped error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s: %v", e.Index, e.Wrapped)
}

func (e *JobError) Unwrap() error { return e.Wrapped }
