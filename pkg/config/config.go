// Package config loads engine settings from YAML, environment overrides and
// defaults, and validates them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-infoflow/pkg/algorithms"
	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/propagation"
)

// Parameter modes.
const (
	ModeDynamic = "dynamic"
	ModeFixed   = "fixed"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INFOFLOW_"

var validate = validator.New()

// Config holds every tunable of an analysis run.
type Config struct {
	Mode string `yaml:"mode" validate:"oneof=dynamic fixed"`

	BaseShareProbability float64 `yaml:"base_share_probability" validate:"gt=0,lte=1"`
	BaseViralThreshold   int     `yaml:"base_viral_threshold" validate:"gte=0"`
	BaseSharedThreshold  int     `yaml:"base_shared_threshold" validate:"gte=0"`
	BaseMisinfoThreshold float64 `yaml:"base_misinfo_threshold" validate:"gte=0"`

	// GraphSize overrides the node count used for dynamic scaling; 0 uses the loaded graph.
	GraphSize int `yaml:"graph_size" validate:"gte=0"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed uint64 `yaml:"seed"`

	Parallel  bool `yaml:"parallel"`
	Workers   int  `yaml:"workers" validate:"gte=0,lte=1024"`
	MaxPasses int  `yaml:"max_passes" validate:"gte=0"`

	Keywords []string `yaml:"keywords" validate:"dive,required"`
	LogLevel string   `yaml:"log_level" validate:"oneof=debug info warn error"`
	S3Region string   `yaml:"s3_region"`
}

// Default returns dynamic mode with the default bases.
func Default() *Config {
	return &Config{
		Mode:                 ModeDynamic,
		BaseShareProbability: propagation.DefaultShareProbability,
		BaseViralThreshold:   propagation.DefaultViralThreshold,
		BaseSharedThreshold:  propagation.DefaultSharedThreshold,
		BaseMisinfoThreshold: propagation.DefaultMisinfoSpreadThreshold,
		Keywords:             append([]string(nil), propagation.DefaultKeywords...),
		LogLevel:             "info",
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, graph.IOError("load config", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, graph.NewError("load config", graph.ErrConfig).Source(path).Cause(err).Err()
	}
	return cfg, nil
}

// ApplyEnv overrides fields from INFOFLOW_* variables, e.g. INFOFLOW_MODE or
// INFOFLOW_BASE_SHARE_PROBABILITY.
func (c *Config) ApplyEnv() error {
	for _, o := range c.overrides() {
		raw, ok := os.LookupEnv(EnvPrefix + o.name)
		if !ok {
			continue
		}
		if err := o.set(strings.TrimSpace(raw)); err != nil {
			return graph.NewError("apply env", graph.ErrConfig).
				Context(EnvPrefix + o.name).Cause(err).Err()
		}
	}
	return nil
}

type override struct {
	name string
	set  func(string) error
}

func (c *Config) overrides() []override {
	str := func(p *string) func(string) error {
		return func(s string) error { *p = s; return nil }
	}
	integer := func(p *int) func(string) error {
		return func(s string) (err error) { *p, err = strconv.Atoi(s); return }
	}
	float := func(p *float64) func(string) error {
		return func(s string) (err error) { *p, err = strconv.ParseFloat(s, 64); return }
	}

	return []override{
		{"MODE", str(&c.Mode)},
		{"BASE_SHARE_PROBABILITY", float(&c.BaseShareProbability)},
		{"BASE_VIRAL_THRESHOLD", integer(&c.BaseViralThreshold)},
		{"BASE_SHARED_THRESHOLD", integer(&c.BaseSharedThreshold)},
		{"BASE_MISINFO_THRESHOLD", float(&c.BaseMisinfoThreshold)},
		{"GRAPH_SIZE", integer(&c.GraphSize)},
		{"SEED", func(s string) (err error) { c.Seed, err = strconv.ParseUint(s, 10, 64); return }},
		{"PARALLEL", func(s string) (err error) { c.Parallel, err = strconv.ParseBool(s); return }},
		{"WORKERS", integer(&c.Workers)},
		{"MAX_PASSES", integer(&c.MaxPasses)},
		{"KEYWORDS", func(s string) error { c.Keywords = strings.Fields(strings.ReplaceAll(s, ",", " ")); return nil }},
		{"LOG_LEVEL", str(&c.LogLevel)},
		{"S3_REGION", str(&c.S3Region)},
	}
}

// Validate checks field constraints and reports the first violation as a config error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return graph.ConfigError("validate config", formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	e := verrs[0]
	if e.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s (got %v)", e.Namespace(), e.Tag(), e.Param(), e.Value())
	}
	return fmt.Sprintf("%s: failed %s (got %v)", e.Namespace(), e.Tag(), e.Value())
}

// BaseParams returns the unscaled propagation parameters.
func (c *Config) BaseParams() propagation.Params {
	return propagation.Params{
		ShareProbability:       c.BaseShareProbability,
		SharedThreshold:        c.BaseSharedThreshold,
		ViralThreshold:         c.BaseViralThreshold,
		MisinfoSpreadThreshold: c.BaseMisinfoThreshold,
	}
}

// DetectOptions returns the optimizer settings.
func (c *Config) DetectOptions() algorithms.DetectOptions {
	return algorithms.DetectOptions{
		MaxPasses: c.MaxPasses,
		Parallel:  c.Parallel,
		Workers:   c.Workers,
	}
}
