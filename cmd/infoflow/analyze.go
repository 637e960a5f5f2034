package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-infoflow/pkg/logging"
)

// demoMessages are sent before the target is analyzed.
var demoMessages = []struct {
	source  int
	content string
}{
	{1, "This is a normal message."},
	{10, "FAKE: Earth is flat! Share this conspiracy theory!"},
	{100, "COVID-19 vaccine contains microchips. This is a hoax!"},
}

type analyzeReport struct {
	Params    *paramsView   `json:"params,omitempty"`
	Detection detectionView `json:"detection"`
	Messages  []messageView `json:"messages"`
	Impact    *impactView   `json:"impact,omitempty"`
	Node      *nodeView     `json:"node,omitempty"`
}

func newAnalyzeCmd(f *globalFlags) *cobra.Command {
	var (
		target  int
		message string
		noDemo  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect communities, send demonstration messages and analyze a target node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return f.run(cmd, func(ctx context.Context, s *session) error {
				var report analyzeReport
				if s.engine.ParamsErr() == nil {
					p := newParamsView(s.cfg.Mode, s.engine.Params())
					report.Params = &p
				}

				det, err := detect(ctx, s)
				if err != nil {
					return err
				}
				report.Detection = det

				if !noDemo {
					for _, m := range demoMessages {
						msg, err := s.engine.InitiateMessage(m.source, m.content)
						if err != nil {
							s.logger.Warn("demonstration message skipped", logging.NodeID(m.source), logging.Error(err))
							continue
						}
						report.Messages = append(report.Messages, newMessageView(msg))
					}
				}

				if cmd.Flags().Changed("target") {
					impact, err := s.engine.AnalyzeMessageImpact(target, message)
					if err != nil {
						return err
					}
					report.Impact = newImpactView(impact)

					info, err := s.engine.GetNodeInfo(target)
					if err != nil {
						return err
					}
					report.Node = newNodeView(info)
				}

				return printAnalyze(cmd, f.json, report)
			})
		},
	}

	cmd.Flags().IntVar(&target, "target", 0, "node to analyze (skipped when unset)")
	cmd.Flags().StringVar(&message, "message", "", "message sent from the target (default: a sample message)")
	cmd.Flags().BoolVar(&noDemo, "no-demo", false, "skip the demonstration messages")
	return cmd
}

// detect runs community detection and describes the outcome.
func detect(ctx context.Context, s *session) (detectionView, error) {
	start := time.Now()
	count, err := s.engine.DetectCommunities(ctx)
	if err != nil {
		return detectionView{}, err
	}
	elapsed := time.Since(start)

	g := s.engine.Graph()
	v := detectionView{
		Nodes:       g.NodeCount(),
		Edges:       g.EdgeCount(),
		Communities: count,
		Modularity:  s.engine.Modularity(),
		Seconds:     elapsed.Seconds(),
	}
	if r := s.engine.DetectionResult(); r != nil {
		v.Passes, v.Moves, v.Converged = r.Passes, r.Moves, r.Converged
	}
	return v, nil
}

func printAnalyze(cmd *cobra.Command, asJSON bool, r analyzeReport) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, r)
	}

	fmt.Fprintln(out, renderDetection(r.Detection))
	if r.Params != nil {
		fmt.Fprintln(out, renderParams(*r.Params))
	}
	if len(r.Messages) > 0 {
		fmt.Fprintln(out, renderMessages(r.Messages))
	}
	if r.Impact != nil {
		fmt.Fprintln(out, renderImpact(r.Impact))
	}
	if r.Node != nil {
		fmt.Fprintln(out, renderNode(r.Node))
	}
	return nil
}
