package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/analogtools/gmsweep/internal/application"
	"github.com/analogtools/gmsweep/internal/application/characterize"
	"github.com/analogtools/gmsweep/internal/config"
	"github.com/analogtools/gmsweep/internal/ctxlog"
	"github.com/analogtools/gmsweep/internal/domain/sweep"
	mysqlp "github.com/analogtools/gmsweep/internal/infra/db/mysql"
	postgresp "github.com/analogtools/gmsweep/internal/infra/db/postgres"
	"github.com/analogtools/gmsweep/internal/infra/httpserver"
	"github.com/analogtools/gmsweep/internal/infra/simulator/ngspice"
	minioStore "github.com/analogtools/gmsweep/internal/infra/storage"
	"github.com/analogtools/gmsweep/internal/middleware"
)

func main() {
	configPath := flag.String("config", "", "Path to the yaml config file (default config.yaml, or $CONFIG_PATH).")
	outputDir := flag.String("output-dir", "", "Override the configured output directory.")
	workers := flag.Int("workers", 0, "Override the configured worker count.")
	timeout := flag.Int("timeout", 0, "Override the per-job timeout in seconds.")
	retries := flag.Int("retries", -1, "Override the per-job retry count.")
	device := flag.String("device", "", "Run only the named device instead of every configured one.")
	upload := flag.Bool("upload", false, "Upload sealed archives to object storage.")
	logLevel := flag.String("log-level", "info", "Logging level: debug, info, warn, error.")
	logFormat := flag.String("log-format", "text", "Log output format: text or json.")
	flag.Parse()

	logger, err := newLogger(*logLevel, *logFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	os.Exit(run(logger, options{
		configPath: *configPath,
		outputDir:  *outputDir,
		workers:    *workers,
		timeout:    *timeout,
		retries:    *retries,
		device:     *device,
		upload:     *upload,
	}))
}

type options struct {
	configPath string
	outputDir  string
	workers    int
	timeout    int
	retries    int
	device     string
	upload     bool
}

// run holds the whole lifecycle so deferred cleanup survives the exit path.
func run(logger *slog.Logger, opts options) int {
	path := opts.configPath
	if path == "" {
		path = "config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if opts.outputDir != "" {
		cfg.Sweep.OutputDir = opts.outputDir
	}
	if opts.workers > 0 {
		cfg.Sweep.Workers = opts.workers
	}
	if opts.timeout > 0 {
		cfg.Sweep.TimeoutSeconds = opts.timeout
	}
	if opts.retries >= 0 {
		cfg.Sweep.Retries = opts.retries
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	if cfg.PDK.Root == "" {
		log.Fatalf("PDK root not set: configure pdk.root or export PDK_ROOT")
	}
	cornerLib := filepath.Join(cfg.PDK.Root, cfg.PDK.CornerLib)
	if _, err := os.Stat(cornerLib); err != nil {
		log.Fatalf("corner library not found: %s (verify PDK root)", cornerLib)
	}

	runner := ngspice.NewRunner(cfg.Simulator.Path, cfg.JobTimeout())
	if err := runner.Probe(); err != nil {
		log.Fatalf("simulator probe failed: %v", err)
	}

	svc := &characterize.Service{
		Runner:  runner,
		Parser:  ngspice.NewParser(),
		Archive: minioStore.NewNPZCodec(),
		Clock:   application.SystemClock{},
		Workers: cfg.Sweep.Workers,
		Retries: cfg.Sweep.Retries,
	}

	checkers := map[string]middleware.HealthChecker{
		"simulator": &middleware.SimulatorHealthChecker{Probe: runner.Probe},
	}

	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		svc.Runs = mysqlp.NewRunRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		svc.Runs = postgresp.NewRunRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	case "":
		// run history disabled
	default:
		log.Fatalf("unknown database driver: %q", cfg.Database.Driver)
	}

	if opts.upload {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		svc.Artifacts = store
	}

	if cfg.Server.Port > 0 {
		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      httpserver.NewRouter(svc, checkers),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info("status server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("status server error: %v", err)
			}
		}()
		defer func() {
			ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx2)
		}()
	}

	devices := cfg.Devices
	if opts.device != "" {
		devices = nil
		for _, d := range cfg.Devices {
			if d.Name == opts.device {
				devices = append(devices, d)
			}
		}
		if len(devices) == 0 {
			log.Fatalf("device %q not in config", opts.device)
		}
	}

	exitCode := 0
	for i, d := range devices {
		logger.Info("characterizing device",
			"device", d.Name, "progress", fmt.Sprintf("[%d/%d]", i+1, len(devices)))

		grid, err := buildGrid(d)
		if err != nil {
			log.Fatalf("device %s: %v", d.Name, err)
		}

		svc.Builder = ngspice.NewBuilder(ngspice.Options{
			Device:      d.Name,
			Instance:    d.Instance,
			Symbol:      d.Symbol,
			Width:       d.Width,
			NG:          d.NG,
			M:           d.M,
			CornerLib:   cornerLib,
			Section:     cfg.PDK.Section,
			Temperature: cfg.Simulator.Temperature,
		})

		summary, err := svc.RunSweep(ctx, characterize.RunSweepCommand{
			Device:    d.Name,
			Grid:      grid,
			OutputDir: cfg.Sweep.OutputDir,
			Upload:    opts.upload,
		})
		printSummary(summary)
		if err != nil {
			var incomplete *sweep.IncompleteTableError
			if errors.As(err, &incomplete) {
				logger.Error("table incomplete", "device", d.Name, "missing", len(incomplete.Missing))
				exitCode = 1
				continue
			}
			log.Fatalf("sweep error: %v", err)
		}

		if ctx.Err() != nil {
			logger.Warn("aborted by signal")
			exitCode = 1
			break
		}
	}
	return exitCode
}

// buildGrid resolves a device's axis specs into a validated grid.
func buildGrid(d config.DeviceConfig) (sweep.Grid, error) {
	length, err := sweep.NewAxis(sweep.AxisLength, "m", d.Axes.Length)
	if err != nil {
		return sweep.Grid{}, err
	}
	vgs, err := sweep.NewAxis(sweep.AxisVGS, "V", d.Axes.VGS)
	if err != nil {
		return sweep.Grid{}, err
	}
	vds, err := sweep.NewAxis(sweep.AxisVDS, "V", d.Axes.VDS)
	if err != nil {
		return sweep.Grid{}, err
	}
	vbs, err := sweep.NewAxis(sweep.AxisVBS, "V", d.Axes.VBS)
	if err != nil {
		return sweep.Grid{}, err
	}
	return sweep.NewGrid(length, vgs, vds, vbs)
}

// printSummary writes the human-readable run report to stdout.
func printSummary(s characterize.RunSummary) {
	fmt.Printf("device=%s status=%s attempted=%d succeeded=%d failed=%d duration=%dms\n",
		s.Device, s.Status, s.Attempted, s.Succeeded, len(s.Failed), s.DurationMS)
	if s.ArchivePath != "" {
		fmt.Printf("  archive: %s\n", s.ArchivePath)
	}
	if s.ArchiveURL != "" {
		fmt.Printf("  uploaded: %s\n", s.ArchiveURL)
	}
	for _, fp := range s.Failed {
		fmt.Printf("  failed %s (linear %d): %s\n", fp.Index, fp.Linear, fp.Reason)
	}
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log-format: must be 'text' or 'json'")
	}
}
