// Package characterize implements the sweep use-case: enumerate the grid,
// dispatch simulation jobs across the worker pool, assemble the lookup
// table, persist it, and record the run.
package characterize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/analogtools/gmsweep/internal/application"
	"github.com/analogtools/gmsweep/internal/ctxlog"
	"github.com/analogtools/gmsweep/internal/domain/sweep"
	"github.com/analogtools/gmsweep/internal/domain/table"
)

// ArchiveCodec abstracts the persisted table format.
type ArchiveCodec interface {
	Write(path string, t *table.LookupTable) error
}

// Service wires the sweep ports into the characterization use-case.
// Safe for concurrent use; Progress may be read while a run is active.
type Service struct {
	Builder   sweep.Builder
	Runner    sweep.Runner
	Parser    sweep.Parser
	Archive   ArchiveCodec
	Artifacts sweep.ArtifactStore // optional
	Runs      sweep.RunRepository // optional
	Clock     application.Clock

	Workers int
	Retries int

	total     atomic.Int64
	attempted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// RunSweepCommand describes one device characterization run.
type RunSweepCommand struct {
	Device      string
	Description string
	Grid        sweep.Grid
	Quantities  []sweep.Quantity
	OutputDir   string
	Upload      bool
}

// RunSummary reports the outcome of a run, with failed coordinates
// preserved for targeted re-runs.
type RunSummary struct {
	RunID       sweep.RunID         `json:"run_id"`
	Device      string              `json:"device"`
	Status      sweep.Status        `json:"status"`
	Attempted   int                 `json:"attempted"`
	Succeeded   int                 `json:"succeeded"`
	Failed      []sweep.FailedPoint `json:"failed,omitempty"`
	ArchivePath string              `json:"archive_path,omitempty"`
	ArchiveURL  string              `json:"archive_url,omitempty"`
	DurationMS  int64               `json:"duration_ms"`
}

// Progress is a live snapshot of the current run.
type Progress struct {
	Total     int `json:"total"`
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Progress returns the current run counters.
func (s *Service) Progress() Progress {
	return Progress{
		Total:     int(s.total.Load()),
		Attempted: int(s.attempted.Load()),
		Succeeded: int(s.succeeded.Load()),
		Failed:    int(s.failed.Load()),
	}
}

// RunSweep executes the full sweep for one device: probe simulator, build
// every job ahead of dispatch, coordinate execution, seal the table, write
// the archive, optionally upload it, and persist the run row.
//
// Job-scoped failures never abort the sweep; they surface in the summary
// and make Seal fail, which is reported alongside the summary.
func (s *Service) RunSweep(ctx context.Context, cmd RunSweepCommand) (RunSummary, error) {
	logger := ctxlog.FromContext(ctx).With("device", cmd.Device)
	start := s.Clock.Now()

	if err := s.Runner.Probe(); err != nil {
		return RunSummary{}, err
	}

	quantities := cmd.Quantities
	if len(quantities) == 0 {
		quantities = sweep.DefaultQuantities()
	}

	points := cmd.Grid.Points()
	jobs := make([]sweep.SimulationJob, len(points))
	for i, p := range points {
		job, err := s.Builder.Build(p)
		if err != nil {
			return RunSummary{}, fmt.Errorf("build job %s: %w", p.Index, err)
		}
		jobs[i] = job
	}

	runID := sweep.RunID(fmt.Sprintf("%s-%s", uuid.New().String(), cmd.Device))
	summary := RunSummary{RunID: runID, Device: cmd.Device, Attempted: len(jobs)}
	logger = logger.With("runID", string(runID))
	logger.Info("sweep started", "points", len(jobs), "workers", s.Workers)

	s.total.Store(int64(len(jobs)))
	s.attempted.Store(0)
	s.succeeded.Store(0)
	s.failed.Store(0)

	if s.Runs != nil {
		initial := &sweep.Run{
			ID:          runID,
			Device:      cmd.Device,
			TriggeredAt: start,
			Status:      sweep.StatusRunning,
			Attempted:   len(jobs),
		}
		if err := s.Runs.Save(ctx, initial); err != nil {
			return summary, fmt.Errorf("save initial run: %w", err)
		}
	}

	asm := table.NewAssembler(cmd.Device, cmd.Description, cmd.Grid, quantities)
	coord := &coordinator{
		runner:  s.Runner,
		parser:  s.Parser,
		workers: s.Workers,
		retries: s.Retries,
		onSuccess: func(rec sweep.MeasurementRecord) {
			// Each record lands on its own disjoint arena slice.
			if err := asm.Insert(rec); err != nil {
				logger.Error("arena insert failed", "index", rec.Point.Index.String(), "error", err)
			}
		},
		onDone: func(failed bool) {
			s.attempted.Add(1)
			if failed {
				s.failed.Add(1)
			} else {
				s.succeeded.Add(1)
			}
		},
	}

	results := coord.execute(ctx, jobs)
	for _, res := range results {
		if res.Err != nil {
			var jerr *sweep.JobError
			fp := sweep.FailedPoint{Reason: res.Err.Error()}
			if errors.As(res.Err, &jerr) {
				fp.Index = jerr.Index
				fp.Linear = jerr.Linear
			}
			summary.Failed = append(summary.Failed, fp)
		}
	}
	summary.Succeeded = summary.Attempted - len(summary.Failed)

	lut, sealErr := asm.Seal()
	if sealErr == nil {
		path := filepath.Join(cmd.OutputDir, cmd.Device+".npz")
		if err := os.MkdirAll(cmd.OutputDir, 0o755); err != nil {
			return summary, fmt.Errorf("create output dir: %w", err)
		}
		if err := s.Archive.Write(path, lut); err != nil {
			return summary, fmt.Errorf("write archive: %w", err)
		}
		summary.ArchivePath = path
		summary.Status = sweep.StatusSuccess

		if cmd.Upload && s.Artifacts != nil {
			key := fmt.Sprintf("%s/%s", cmd.Device, filepath.Base(path))
			url, err := s.Artifacts.Upload(ctx, path, key)
			if err != nil {
				logger.Error("artifact upload failed", "error", err)
			} else {
				summary.ArchiveURL = url
			}
		}
	} else {
		summary.Status = sweep.StatusPartial
		if summary.Succeeded == 0 {
			summary.Status = sweep.StatusFailed
		}
	}

	summary.DurationMS = s.Clock.Now().Sub(start).Milliseconds()
	s.saveFinal(ctx, start, summary)

	logger.Info("sweep finished",
		"status", string(summary.Status),
		"succeeded", summary.Succeeded,
		"failed", len(summary.Failed),
		"durationMS", summary.DurationMS)

	return summary, sealErr
}

// saveFinal persists the run row; persistence problems are logged, not
// allowed to mask the sweep outcome.
func (s *Service) saveFinal(ctx context.Context, start time.Time, summary RunSummary) {
	if s.Runs == nil {
		return
	}
	run := &sweep.Run{
		ID:          summary.RunID,
		Device:      summary.Device,
		TriggeredAt: start,
		Status:      summary.Status,
		Attempted:   summary.Attempted,
		Succeeded:   summary.Succeeded,
		Failed:      summary.Failed,
		ArchivePath: summary.ArchivePath,
		ArchiveURL:  summary.ArchiveURL,
		DurationMS:  summary.DurationMS,
	}
	if err := s.Runs.Save(ctx, run); err != nil {
		ctxlog.FromContext(ctx).Error("save run failed", "runID", string(run.ID), "error", err)
	}
}

// Latest returns recent runs from the repository.
func (s *Service) Latest(ctx context.Context, limit int) ([]*sweep.Run, error) {
	if s.Runs == nil {
		return nil, nil
	}
	return s.Runs.Latest(ctx, limit)
}

// Get returns one run by id.
func (s *Service) Get(ctx context.Context, id sweep.RunID) (*sweep.Run, error) {
	if s.Runs == nil {
		return nil, nil
	}
	return s.Runs.Get(ctx, id)
}
