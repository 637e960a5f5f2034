package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCmd(f *globalFlags) *cobra.Command {
	var node int

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Detect communities and describe one node's neighborhood",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return f.run(cmd, func(ctx context.Context, s *session) error {
				if _, err := s.engine.DetectCommunities(ctx); err != nil {
					return err
				}
				info, err := s.engine.GetNodeInfo(node)
				if err != nil {
					return err
				}

				v := newNodeView(info)
				if f.json {
					return writeJSON(cmd.OutOrStdout(), v)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderNode(v))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&node, "node", 0, "node to inspect")
	cmd.MarkFlagRequired("node")
	return cmd
}
