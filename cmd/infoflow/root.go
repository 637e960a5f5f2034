package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-infoflow/pkg/config"
	"github.com/dd0wney/cluso-infoflow/pkg/edgelist"
	"github.com/dd0wney/cluso-infoflow/pkg/engine"
	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
	"github.com/dd0wney/cluso-infoflow/pkg/metrics"
	"github.com/dd0wney/cluso-infoflow/pkg/telemetry"
)

const version = "0.3.0"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	graphFile string
	pgDSN     string
	pgTable   string
	pgOrderBy string

	configPath string
	cfg        *config.Config // flag targets; merged over file and env values

	json         bool
	metricsFile  string
	trace        bool
	otlpEndpoint string
}

func newRootCmd() *cobra.Command {
	f := &globalFlags{cfg: config.Default()}

	root := &cobra.Command{
		Use:           "infoflow",
		Short:         "Community detection and message propagation over edge-list graphs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.graphFile, "graph-file", "", "edge list: path, path.sz or s3://bucket/key")
	pf.StringVar(&f.pgDSN, "pg-dsn", "", "Postgres DSN to read edges from instead of --graph-file")
	pf.StringVar(&f.pgTable, "pg-table", "edges", "table with from_node and to_node columns")
	pf.StringVar(&f.pgOrderBy, "pg-order-by", "", "column fixing edge order when reading from Postgres")
	pf.StringVar(&f.configPath, "config", "", "YAML configuration file")

	pf.StringVar(&f.cfg.Mode, "mode", f.cfg.Mode, "parameter mode: dynamic or fixed (dynamic needs a non-empty graph or --graph-size)")
	pf.Float64Var(&f.cfg.BaseShareProbability, "base-share-prob", f.cfg.BaseShareProbability, "base probability of sharing a message")
	pf.IntVar(&f.cfg.BaseViralThreshold, "base-viral-threshold", f.cfg.BaseViralThreshold, "base share count for viral status")
	pf.IntVar(&f.cfg.BaseSharedThreshold, "base-shared-threshold", f.cfg.BaseSharedThreshold, "base share count for shared status")
	pf.Float64Var(&f.cfg.BaseMisinfoThreshold, "base-misinfo-threshold", f.cfg.BaseMisinfoThreshold, "base spread ratio for misinformation")
	pf.IntVar(&f.cfg.GraphSize, "graph-size", 0, "node count used for scaling (0 = loaded graph)")
	pf.Uint64Var(&f.cfg.Seed, "seed", 0, "random seed (0 = clock)")
	pf.BoolVar(&f.cfg.Parallel, "parallel", false, "optimize connected components concurrently")
	pf.IntVar(&f.cfg.Workers, "workers", 0, "worker count for parallel work (0 = automatic)")
	pf.IntVar(&f.cfg.MaxPasses, "max-passes", 0, "cap on local-move passes (0 = until stable)")
	pf.StringSliceVar(&f.cfg.Keywords, "keywords", f.cfg.Keywords, "misinformation keywords")
	pf.StringVar(&f.cfg.LogLevel, "log-level", f.cfg.LogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&f.cfg.S3Region, "s3-region", "", "AWS region for s3:// graph files")

	pf.BoolVar(&f.json, "json", false, "print JSON instead of a styled report")
	pf.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.BoolVar(&f.trace, "trace", false, "print trace spans to stderr")
	pf.StringVar(&f.otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP endpoint for trace export")

	root.AddCommand(
		newAnalyzeCmd(f),
		newCommunitiesCmd(f),
		newInspectCmd(f),
		newSimulateCmd(f),
	)
	return root
}

// flagKeys maps flag names to the config fields they override.
var flagKeys = []string{
	"mode", "base-share-prob", "base-viral-threshold", "base-shared-threshold",
	"base-misinfo-threshold", "graph-size", "seed", "parallel", "workers",
	"max-passes", "keywords", "log-level", "s3-region",
}

// resolveConfig layers defaults, the config file, INFOFLOW_* variables and
// explicitly set flags, in that order.
func (f *globalFlags) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for _, name := range flagKeys {
		if !flags.Changed(name) {
			continue
		}
		switch name {
		case "mode":
			cfg.Mode = f.cfg.Mode
		case "base-share-prob":
			cfg.BaseShareProbability = f.cfg.BaseShareProbability
		case "base-viral-threshold":
			cfg.BaseViralThreshold = f.cfg.BaseViralThreshold
		case "base-shared-threshold":
			cfg.BaseSharedThreshold = f.cfg.BaseSharedThreshold
		case "base-misinfo-threshold":
			cfg.BaseMisinfoThreshold = f.cfg.BaseMisinfoThreshold
		case "graph-size":
			cfg.GraphSize = f.cfg.GraphSize
		case "seed":
			cfg.Seed = f.cfg.Seed
		case "parallel":
			cfg.Parallel = f.cfg.Parallel
		case "workers":
			cfg.Workers = f.cfg.Workers
		case "max-passes":
			cfg.MaxPasses = f.cfg.MaxPasses
		case "keywords":
			cfg.Keywords = f.cfg.Keywords
		case "log-level":
			cfg.LogLevel = f.cfg.LogLevel
		case "s3-region":
			cfg.S3Region = f.cfg.S3Region
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is one loaded graph plus the engine and instrumentation around it.
type session struct {
	cfg     *config.Config
	engine  *engine.Engine
	logger  logging.Logger
	metrics *metrics.Registry

	flags    *globalFlags
	shutdown telemetry.Shutdown
}

func (f *globalFlags) open(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	cfg, err := f.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel)).
		With(logging.Component("infoflow"), logging.Operation(cmd.Name()))

	topts := telemetry.Options{ServiceName: "infoflow", ServiceVersion: version, Endpoint: f.otlpEndpoint}
	if f.trace {
		topts.Writer = cmd.ErrOrStderr()
	}
	shutdown, err := telemetry.Init(ctx, topts)
	if err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()
	g, err := f.loadGraph(ctx, cfg, logger, reg)
	if err != nil {
		shutdown(ctx)
		return nil, err
	}

	opts := engine.OptionsFromConfig(cfg)
	opts.Logger = logger
	opts.Metrics = reg
	eng, err := engine.New(g, opts)
	if err != nil {
		shutdown(ctx)
		return nil, err
	}

	return &session{cfg: cfg, engine: eng, logger: logger, metrics: reg, flags: f, shutdown: shutdown}, nil
}

func (f *globalFlags) loadGraph(ctx context.Context, cfg *config.Config, logger logging.Logger, reg *metrics.Registry) (*graph.Graph, error) {
	loader := edgelist.NewLoader(logger, reg)
	loader.S3Region = cfg.S3Region

	if f.pgDSN != "" {
		pool, err := edgelist.NewPostgresPool(ctx, f.pgDSN)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return loader.LoadPostgres(ctx, pool, edgelist.PostgresSource{Table: f.pgTable, OrderBy: f.pgOrderBy})
	}

	if f.graphFile == "" {
		return nil, fmt.Errorf("one of --graph-file or --pg-dsn is required")
	}
	return loader.Load(ctx, f.graphFile)
}

// close flushes traces and writes the metrics file if one was requested.
func (s *session) close(ctx context.Context) error {
	var firstErr error
	if s.flags.metricsFile != "" {
		if err := s.metrics.WriteTextfile(s.flags.metricsFile); err != nil {
			firstErr = fmt.Errorf("write metrics: %w", err)
		}
	}
	if err := s.shutdown(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("flush traces: %w", err)
	}
	return firstErr
}

// run opens a session, hands it to fn and always closes it.
func (f *globalFlags) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) (err error) {
	s, err := f.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(cmd.Context()); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(cmd.Context(), s)
}
