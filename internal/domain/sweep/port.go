package sweep

import "context"

// Builder port: renders one grid point into a simulation job.
// Implementations must be deterministic and side-effect-free.
type Builder interface {
	Build(point GridPoint) (SimulationJob, error)
}

// Runner port: executes one job against the external simulator.
type Runner interface {
	Run(ctx context.Context, job SimulationJob) (RawResult, error)
	// Probe verifies the simulator executable is reachable before any
	// job is dispatched.
	Probe() error
}

// Parser port: extracts the requested quantities from raw output.
type Parser interface {
	Parse(raw RawResult, job SimulationJob) (MeasurementRecord, error)
}

// ArtifactStore port: uploads sealed table archives.
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}

// RunRepository port: run-history persistence for targeted re-runs.
type RunRepository interface {
	Save(ctx context.Context, r *Run) error
	Get(ctx context.Context, id RunID) (*Run, error)
	Latest(ctx context.Context, limit int) ([]*Run, error)
}
