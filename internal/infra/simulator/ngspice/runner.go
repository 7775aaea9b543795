package ngspice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/analogtools/gmsweep/internal/ctxlog"
	"github.com/analogtools/gmsweep/internal/domain/sweep"
)

// Runner executes rendered decks against the ngspice binary.
type Runner struct {
	Path    string        // simulator executable, e.g. "ngspice"
	Timeout time.Duration // per-job deadline
}

func NewRunner(path string, timeout time.Duration) *Runner {
	return &Runner{Path: path, Timeout: timeout}
}

// Probe implements sweep.Runner. Called once before any job dispatch so a
// missing binary aborts the run instead of failing every job.
func (r *Runner) Probe() error {
	if _, err := exec.LookPath(r.Path); err != nil {
		return fmt.Errorf("%w: %q", sweep.ErrSimulatorNotFound, r.Path)
	}
	return nil
}

// Run implements sweep.Runner. The deck is written to a transient file
// that is removed on every exit path.
func (r *Runner) Run(ctx context.Context, job sweep.SimulationJob) (sweep.RawResult, error) {
	f, err := os.CreateTemp("", "gmsweep-*.sp")
	if err != nil {
		return sweep.RawResult{}, fmt.Errorf("ngspice: create deck file: %w", err)
	}
	deckPath := f.Name()
	defer os.Remove(deckPath)

	if _, err := f.WriteString(job.Netlist); err != nil {
		f.Close()
		return sweep.RawResult{}, fmt.Errorf("ngspice: write deck file: %w", err)
	}
	if err := f.Close(); err != nil {
		return sweep.RawResult{}, fmt.Errorf("ngspice: close deck file: %w", err)
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.Path, "-b", deckPath)
	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return sweep.RawResult{}, &sweep.TimeoutError{Point: job.Point}
		}
		if runCtx.Err() != nil {
			// Run-level abort: the subprocess was killed by cancellation.
			return sweep.RawResult{}, runCtx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return sweep.RawResult{}, &sweep.SimulationError{
				Point:    job.Point,
				ExitCode: exitErr.ExitCode(),
				Detail:   lastLine(output),
			}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return sweep.RawResult{}, fmt.Errorf("%w: %q", sweep.ErrSimulatorNotFound, r.Path)
		}
		return sweep.RawResult{}, fmt.Errorf("ngspice: run: %w", err)
	}

	if detail, bad := convergenceFailure(output); bad {
		ctxlog.FromContext(ctx).Debug("convergence failure", "index", job.Point.Index.String())
		return sweep.RawResult{}, &sweep.SimulationError{
			Point:  job.Point,
			Detail: detail,
		}
	}

	return sweep.RawResult{Point: job.Point, Output: output}, nil
}

// convergenceFailure detects ngspice aborting an analysis while still
// exiting zero.
func convergenceFailure(output string) (string, bool) {
	for _, marker := range []string{
		"No convergence",
		"no convergence",
		"simulation(s) aborted",
		"analysis aborted",
	} {
		if strings.Contains(output, marker) {
			return marker, true
		}
	}
	return "", false
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
