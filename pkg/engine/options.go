package engine

import (
	"github.com/dd0wney/cluso-infoflow/pkg/algorithms"
	"github.com/dd0wney/cluso-infoflow/pkg/config"
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
	"github.com/dd0wney/cluso-infoflow/pkg/metrics"
	"github.com/dd0wney/cluso-infoflow/pkg/propagation"
)

// Options configures an Engine.
type Options struct {
	// Mode is config.ModeDynamic or config.ModeFixed.
	Mode string
	// Base holds the parameters used as-is in fixed mode and as scaling
	// bases in dynamic mode.
	Base propagation.Params
	// GraphSize overrides the node count used for scaling when positive.
	GraphSize int
	// Seed fixes the random source when non-zero.
	Seed uint64
	// Random replaces the seeded source, mainly for tests.
	Random propagation.RandomSource

	Detect   algorithms.DetectOptions
	Keywords []string

	Logger  logging.Logger
	Metrics *metrics.Registry
}

// DefaultOptions returns dynamic mode with the default bases.
func DefaultOptions() Options {
	return Options{
		Mode:   config.ModeDynamic,
		Base:   propagation.FixedParams(),
		Detect: algorithms.DefaultDetectOptions(),
	}
}

// OptionsFromConfig maps a validated configuration onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mode:      cfg.Mode,
		Base:      cfg.BaseParams(),
		GraphSize: cfg.GraphSize,
		Seed:      cfg.Seed,
		Detect:    cfg.DetectOptions(),
		Keywords:  cfg.Keywords,
	}
}
