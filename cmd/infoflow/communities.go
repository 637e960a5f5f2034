package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type communitiesReport struct {
	Detection   detectionView   `json:"detection"`
	Communities []communityView `json:"communities"`
}

func newCommunitiesCmd(f *globalFlags) *cobra.Command {
	var (
		top     int
		members bool
	)

	cmd := &cobra.Command{
		Use:   "communities",
		Short: "Print the community count, modularity and largest communities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return f.run(cmd, func(ctx context.Context, s *session) error {
				det, err := detect(ctx, s)
				if err != nil {
					return err
				}

				report := communitiesReport{Detection: det}
				for _, c := range s.engine.Communities() {
					v := communityView{ID: c.ID, Size: c.Size}
					if members {
						v.Nodes = c.Nodes
					}
					report.Communities = append(report.Communities, v)
				}

				out := cmd.OutOrStdout()
				if f.json {
					return writeJSON(out, report)
				}
				fmt.Fprintln(out, renderDetection(report.Detection))
				if len(report.Communities) > 0 {
					fmt.Fprintln(out, renderCommunities(report.Communities, top))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "communities listed in the styled report (0 = all)")
	cmd.Flags().BoolVar(&members, "members", false, "include member node ids in JSON output")
	return cmd
}
