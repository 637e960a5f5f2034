package main

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-infoflow/pkg/propagation"
)

type simulateReport struct {
	Source         int            `json:"source"`
	Content        string         `json:"content"`
	Runs           int            `json:"runs"`
	MeanAffected   float64        `json:"mean_affected"`
	MinAffected    int            `json:"min_affected"`
	MaxAffected    int            `json:"max_affected"`
	MeanSpread     float64        `json:"mean_spread"`
	Misinformation int            `json:"misinformation_runs"`
	States         map[string]int `json:"states"`
}

func newSimulateCmd(f *globalFlags) *cobra.Command {
	var (
		source  int
		message string
		runs    int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Propagate the same message many times and summarize the spread",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1, got %d", runs)
			}
			return f.run(cmd, func(ctx context.Context, s *session) error {
				reqs := make([]propagation.Request, runs)
				for i := range reqs {
					reqs[i] = propagation.Request{Source: source, Content: message}
				}

				results, err := s.engine.SimulateBatch(ctx, reqs, s.cfg.Workers)
				if err != nil {
					return err
				}

				report := summarize(source, message, results)
				if f.json {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSimulation(report))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&source, "source", 0, "node the message starts from")
	cmd.Flags().StringVar(&message, "message", "", "message content")
	cmd.Flags().IntVar(&runs, "runs", 100, "independent propagation runs")
	cmd.MarkFlagRequired("source")
	return cmd
}

func summarize(source int, content string, results []*propagation.Result) simulateReport {
	r := simulateReport{
		Source:      source,
		Content:     content,
		Runs:        len(results),
		MinAffected: math.MaxInt,
		States:      make(map[string]int),
	}

	total, spread := 0, 0.0
	for _, res := range results {
		n := res.Spread.Count()
		total += n
		spread += res.Percentage
		r.MinAffected = min(r.MinAffected, n)
		r.MaxAffected = max(r.MaxAffected, n)
		if res.Misinformation {
			r.Misinformation++
		}
		r.States[res.Message.State().String()]++
	}

	if len(results) > 0 {
		r.MeanAffected = float64(total) / float64(len(results))
		r.MeanSpread = spread / float64(len(results))
	} else {
		r.MinAffected = 0
	}
	return r
}

func renderSimulation(r simulateReport) string {
	rows := []row{
		{"Runs", fmt.Sprint(r.Runs)},
		{"Affected nodes (mean)", fmt.Sprintf("%.2f", r.MeanAffected)},
		{"Affected nodes (min / max)", fmt.Sprintf("%d / %d", r.MinAffected, r.MaxAffected)},
		{"Spread percentage (mean)", fmt.Sprintf("%.2f%%", r.MeanSpread*100)},
		{"Misinformation verdicts", verdict(r.Misinformation > 0,
			fmt.Sprintf("%d of %d runs", r.Misinformation, r.Runs), "none")},
	}
	for _, st := range []propagation.State{propagation.StateCreated, propagation.StateShared, propagation.StateViral} {
		rows = append(rows, row{"Final state " + st.String(), fmt.Sprint(r.States[st.String()])})
	}
	return section(fmt.Sprintf("Simulation from node %d", r.Source), rows...)
}
