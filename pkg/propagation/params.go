package propagation

import (
	"fmt"
	"math"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// Params controls sharing and classification.
type Params struct {
	ShareProbability       float64 `json:"share_probability"`
	SharedThreshold        int     `json:"shared_threshold"`
	ViralThreshold         int     `json:"viral_threshold"`
	MisinfoSpreadThreshold float64 `json:"misinfo_spread_threshold"`
}

// Default base values, also used unchanged in fixed mode.
const (
	DefaultShareProbability       = 0.3
	DefaultSharedThreshold        = 10
	DefaultViralThreshold         = 100
	DefaultMisinfoSpreadThreshold = 0.1
)

// FixedParams returns the constants used when parameters are not scaled.
func FixedParams() Params {
	return Params{
		ShareProbability:       DefaultShareProbability,
		SharedThreshold:        DefaultSharedThreshold,
		ViralThreshold:         DefaultViralThreshold,
		MisinfoSpreadThreshold: DefaultMisinfoSpreadThreshold,
	}
}

// DynamicParams scales base parameters by the graph size n:
//
//	share   = base / log10(n+1)
//	viral   = round(base * log10(n+1))
//	shared  = round(base * sqrt(log10(n+1)))
//	misinfo = base / log10(n+1)
//
// An n for which log10(n+1) <= 0 is rejected with a config error.
func DynamicParams(base Params, n int) (Params, error) {
	if n+1 <= 1 {
		return Params{}, graph.ConfigError("dynamic params",
			fmt.Sprintf("graph size %d gives a non-positive log10(n+1)", n))
	}
	scale := math.Log10(float64(n) + 1)

	return Params{
		ShareProbability:       base.ShareProbability / scale,
		ViralThreshold:         int(math.Round(float64(base.ViralThreshold) * scale)),
		SharedThreshold:        int(math.Round(float64(base.SharedThreshold) * math.Sqrt(scale))),
		MisinfoSpreadThreshold: base.MisinfoSpreadThreshold / scale,
	}, nil
}

// Thresholds returns the share-count thresholds for new messages.
func (p Params) Thresholds() Thresholds {
	return Thresholds{Shared: p.SharedThreshold, Viral: p.ViralThreshold}
}
